package user

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/images"
)

// LocalUserID is the fiber local holding the authenticated user's id.
const LocalUserID = "user_id"

// ImageSaver persists an uploaded picture and returns its public path.
type ImageSaver interface {
	Save(r io.Reader) (string, error)
}

// Handler exposes user directory endpoints.
type Handler struct {
	svc    *Service
	images ImageSaver
}

func NewHandler(svc *Service, images ImageSaver) *Handler {
	return &Handler{svc: svc, images: images}
}

// Me returns the caller's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	return h.respondProfile(c, callerID(c))
}

// UpdateMe applies a partial update to the caller.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.BadRequest(err.Error())
	}
	// Role fields are admin-only; the image is set through the upload endpoint.
	in.Type, in.Status, in.Customer, in.Admin, in.Image = "", "", "", "", ""
	if _, err := h.svc.UpdateUser(c.UserContext(), callerID(c), in); err != nil {
		return err
	}
	return h.respondProfile(c, callerID(c))
}

// UploadImage stores a multipart "image" file and sets it as the caller's picture.
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	if h.images == nil {
		return apperr.New(http.StatusServiceUnavailable, "Image uploads are disabled!")
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.BadRequest("Please upload an image!")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	path, err := h.images.Save(f)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrUnsupported):
			return apperr.BadRequest("Please upload a gif, jpeg or png image!")
		case errors.Is(err, images.ErrTooLarge):
			return apperr.BadRequest("Image dimensions are too large!")
		}
		return err
	}
	if _, err := h.svc.UpdateUser(c.UserContext(), callerID(c), UpdateInput{Image: path}); err != nil {
		return err
	}
	return h.respondProfile(c, callerID(c))
}

// List searches users page by page.
func (h *Handler) List(c *fiber.Ctx) error {
	in := SearchInput{
		Type:    c.Query("type"),
		Keyword: c.Query("keyword"),
		Exclude: callerID(c),
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
	}
	page, err := h.svc.GetUsers(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       page.Data,
		"totalCount": page.TotalCount,
		"totalPages": page.TotalPages,
	})
}

// Get returns one user's profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	return h.respondProfile(c, c.Params("id"))
}

// Update applies an admin update to any user.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.BadRequest(err.Error())
	}
	u, err := h.svc.UpdateUser(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": u})
}

// Delete removes a user.
func (h *Handler) Delete(c *fiber.Ctx) error {
	u, err := h.svc.DeleteUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": u})
}

func (h *Handler) respondProfile(c *fiber.Ctx, id string) error {
	p, err := h.svc.GetUser(c.UserContext(), Query{ID: id})
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("User not found!")
	}
	return c.JSON(fiber.Map{"success": true, "data": p})
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func queryInt(c *fiber.Ctx, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

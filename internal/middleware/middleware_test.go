package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/logging"
	"github.com/linkvault/linkvault_api/internal/profile"
	"github.com/linkvault/linkvault_api/internal/session"
	"github.com/linkvault/linkvault_api/internal/user"
)

func errorApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(errorStatus(err)).SendString(err.Error())
	}})
}

func loginRequest(email string) *http.Request {
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := errorApp()
	app.Post("/login", LoginRateLimit(cache, 2, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(loginRequest("jane@example.com"))
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i+1, resp.StatusCode)
		}
	}
	resp, _ := app.Test(loginRequest("JANE@example.com"))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third attempt, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(loginRequest("other@example.com"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("other emails must not be limited, got %d", resp.StatusCode)
	}

	mr.FastForward(time.Minute + time.Second)
	resp, _ = app.Test(loginRequest("jane@example.com"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the window to reset, got %d", resp.StatusCode)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := user.NewService(user.NewMemoryRepository(), profile.NewService(profile.NewMemoryRepository()), nil, logging.Discard())
	issuer := session.NewIssuer("secret", "test", time.Hour)

	customer, err := users.AddUser(ctx, user.NewUserInput{Email: "jane@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	admin, err := users.AddUser(ctx, user.NewUserInput{Email: "root@example.com", Password: "secret", Type: user.TypeAdmin})
	if err != nil {
		t.Fatalf("add admin: %v", err)
	}
	sign := func(u user.User) string {
		tok, err := issuer.Sign(session.Subject{ID: u.ID, Email: u.Email, Type: u.Type})
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return "Bearer " + tok
	}

	action, err := issuer.SignAction(session.Subject{ID: customer.ID, Email: customer.Email, Type: customer.Type})
	if err != nil {
		t.Fatalf("sign action: %v", err)
	}

	app := errorApp()
	authn := Authenticate(issuer, users)
	app.Get("/me", authn, func(c *fiber.Ctx) error {
		id, _ := c.Locals(user.LocalUserID).(string)
		return c.SendString(id)
	})
	app.Get("/admin", authn, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/customer", authn, RequireCustomer(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	cases := []struct {
		name   string
		path   string
		authz  string
		status int
	}{
		{"missing token", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"emailed action token", "/me", "Bearer " + action, http.StatusUnauthorized},
		{"customer", "/me", sign(customer), http.StatusOK},
		{"customer on admin route", "/admin", sign(customer), http.StatusForbidden},
		{"admin on admin route", "/admin", sign(admin), http.StatusOK},
		{"admin on customer route", "/customer", sign(admin), http.StatusForbidden},
		{"customer on customer route", "/customer", sign(customer), http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
		if tc.authz != "" {
			req.Header.Set(fiber.HeaderAuthorization, tc.authz)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.status, resp.StatusCode)
		}
	}

	if _, err := users.UpdateUser(ctx, customer.ID, user.UpdateInput{Status: user.StatusSuspended}); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, sign(customer))
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("suspended user: expected 403 got %d", resp.StatusCode)
	}
}

func TestMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	app := errorApp()
	app.Use(m.Handler())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperr.NotFound("User not found!") })

	for _, path := range []string{"/ok", "/ok", "/missing"} {
		if _, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil)); err != nil {
			t.Fatalf("app.Test: %v", err)
		}
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "test_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			counts[labels["route"]+" "+labels["status"]] = metric.GetCounter().GetValue()
		}
	}
	if counts["/ok 200"] != 2 {
		t.Fatalf("expected 2 ok requests, got %v", counts)
	}
	if counts["/missing 404"] != 1 {
		t.Fatalf("expected 1 not found request, got %v", counts)
	}
}

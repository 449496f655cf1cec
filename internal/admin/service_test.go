package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/logging"
)

type countingPurger struct {
	calls int
	err   error
}

func (p *countingPurger) Purge(context.Context) error {
	p.calls++
	return p.err
}

func TestCleanDBPurgesEveryTarget(t *testing.T) {
	a, b := &countingPurger{}, &countingPurger{}
	svc := NewService(logging.Discard(), Target{Name: "users", Purger: a}, Target{Name: "tokens", Purger: b})
	if err := svc.CleanDB(context.Background()); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("expected each store purged once, got %d and %d", a.calls, b.calls)
	}
}

func TestCleanDBStopsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	a, b := &countingPurger{err: boom}, &countingPurger{}
	svc := NewService(logging.Discard(), Target{Name: "users", Purger: a}, Target{Name: "tokens", Purger: b})
	if err := svc.CleanDB(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if b.calls != 0 {
		t.Fatal("later stores must not be purged after a failure")
	}
}

func TestCleanDBHandlerRequiresSecret(t *testing.T) {
	p := &countingPurger{}
	h := NewHandler(NewService(logging.Discard(), Target{Name: "users", Purger: p}), "s3cret")
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(apperr.StatusOf(err)).SendString(err.Error())
	}})
	app.Delete("/clean", h.CleanDB)

	req := httptest.NewRequest(fiber.MethodDelete, "/clean", nil)
	req.Header.Set("secret", "wrong")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest || p.calls != 0 {
		t.Fatalf("expected 400 without purge, got %d (%d purges)", resp.StatusCode, p.calls)
	}

	req = httptest.NewRequest(fiber.MethodDelete, "/clean", nil)
	req.Header.Set("secret", "s3cret")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK || p.calls != 1 {
		t.Fatalf("expected 200 with purge, got %d (%d purges)", resp.StatusCode, p.calls)
	}
}

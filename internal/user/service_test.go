package user

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/linkvault/linkvault_api/internal/apperr"
	"github.com/linkvault/linkvault_api/internal/logging"
	"github.com/linkvault/linkvault_api/internal/profile"
)

type recordingImages struct {
	deleted []string
}

func (r *recordingImages) Delete(path string) error {
	r.deleted = append(r.deleted, path)
	return nil
}

func newTestService(t *testing.T) (*Service, *profile.Service, *recordingImages) {
	t.Helper()
	profiles := profile.NewService(profile.NewMemoryRepository())
	images := &recordingImages{}
	return NewService(NewMemoryRepository(), profiles, images, logging.Discard()), profiles, images
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", status)
	}
	if got := apperr.StatusOf(err); got != status {
		t.Fatalf("expected status %d, got %d (%v)", status, got, err)
	}
}

func TestAddUserHashesPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, NewUserInput{Email: " Jane@Example.com ", Password: "secret", Phone: "+15550100", Type: TypeCustomer})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if string(user.PasswordHash) == "secret" {
		t.Fatal("password stored in plain text")
	}
	if !svc.CheckPassword(user, "secret") || svc.CheckPassword(user, "nope") {
		t.Fatal("password check mismatch")
	}
	if user.Status != StatusActive {
		t.Fatalf("expected active status, got %s", user.Status)
	}
}

func TestAddUserValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddUser(ctx, NewUserInput{Password: "secret"})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.AddUser(ctx, NewUserInput{Email: "a@b.com"})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.AddUser(ctx, NewUserInput{Email: "a@b.com", Password: "secret", Type: "vendor"})
	expectStatus(t, err, http.StatusBadRequest)

	if _, err := svc.AddUser(ctx, NewUserInput{Email: "a@b.com", Password: "secret"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	_, err = svc.AddUser(ctx, NewUserInput{Email: "A@B.com", Password: "secret"})
	expectStatus(t, err, http.StatusConflict)
}

func TestUpdateUserIdentifierChecks(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateUser(ctx, "", UpdateInput{})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateUser(ctx, "not-an-id", UpdateInput{})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateUser(ctx, uuid.NewString(), UpdateInput{})
	expectStatus(t, err, http.StatusNotFound)
}

func TestUpdateUserMergesFields(t *testing.T) {
	svc, _, images := newTestService(t)
	ctx := context.Background()
	user, err := svc.AddUser(ctx, NewUserInput{Email: "a@b.com", Password: "secret", Phone: "1"})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}

	online := true
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		IsOnline:    &online,
		Image:       "public/images/one.jpg",
		Coordinates: []float64{74.3, 31.5},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", updated.Name)
	}
	if updated.Phone != "1" || updated.Email != "a@b.com" {
		t.Fatal("unsupplied fields must be preserved")
	}
	if !updated.IsOnline {
		t.Fatal("expected online flag")
	}
	if updated.Location == nil || updated.Location.Coordinates[0] != 74.3 {
		t.Fatalf("unexpected location %+v", updated.Location)
	}

	offline := false
	updated, err = svc.UpdateUser(ctx, user.ID, UpdateInput{LastName: "Byron", IsOnline: &offline, Image: "public/images/two.jpg"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ada Byron" || updated.IsOnline {
		t.Fatalf("unexpected state %+v", updated)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "public/images/one.jpg" {
		t.Fatalf("expected previous image to be deleted, got %v", images.deleted)
	}
}

func TestUpdateUserPairInvariants(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user, _ := svc.AddUser(ctx, NewUserInput{Email: "a@b.com", Password: "secret"})

	_, err := svc.UpdateUser(ctx, user.ID, UpdateInput{Coordinates: []float64{1}})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateUser(ctx, user.ID, UpdateInput{Coordinates: []float64{}})
	expectStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateUser(ctx, user.ID, UpdateInput{FCM: &FCM{Token: "t"}})
	expectStatus(t, err, http.StatusBadRequest)

	if _, err := svc.UpdateUser(ctx, user.ID, UpdateInput{FCM: &FCM{Device: "ios", Token: "t1"}}); err != nil {
		t.Fatalf("fcm: %v", err)
	}
	if _, err := svc.UpdateUser(ctx, user.ID, UpdateInput{FCM: &FCM{Device: "web", Token: "w1"}}); err != nil {
		t.Fatalf("fcm: %v", err)
	}
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateInput{FCM: &FCM{Device: "ios", Token: "t2"}})
	if err != nil {
		t.Fatalf("fcm: %v", err)
	}
	if len(updated.FCMs) != 2 || updated.FCMs[0].Token != "t2" {
		t.Fatalf("expected ios token replaced in place, got %+v", updated.FCMs)
	}
}

func TestUpdateUserLinksProfiles(t *testing.T) {
	svc, profiles, _ := newTestService(t)
	ctx := context.Background()
	user, _ := svc.AddUser(ctx, NewUserInput{Email: "a@b.com", Password: "secret"})

	_, err := svc.UpdateUser(ctx, user.ID, UpdateInput{Customer: uuid.NewString()})
	expectStatus(t, err, http.StatusNotFound)

	c, err := profiles.AddCustomer(ctx, user.ID)
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateInput{Customer: c.ID})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !updated.IsCustomer || updated.CustomerID != c.ID {
		t.Fatalf("expected customer link, got %+v", updated)
	}

	p, err := svc.GetUser(ctx, Query{Email: "a@b.com"})
	if err != nil || p == nil {
		t.Fatalf("get user: %v", err)
	}
	if p.Customer == nil || p.Customer.ID != c.ID {
		t.Fatalf("expected populated customer profile, got %+v", p.Customer)
	}
}

func TestGetUserEmptyQuery(t *testing.T) {
	svc, _, _ := newTestService(t)
	p, err := svc.GetUser(context.Background(), Query{})
	if err != nil || p != nil {
		t.Fatalf("expected nil result, got %+v %v", p, err)
	}
}

func TestDeleteUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user, _ := svc.AddUser(ctx, NewUserInput{Email: "a@b.com", Password: "secret"})

	if _, err := svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := svc.DeleteUser(ctx, user.ID)
	expectStatus(t, err, http.StatusNotFound)
	_, err = svc.DeleteUser(ctx, "bad")
	expectStatus(t, err, http.StatusBadRequest)
}

func TestGetUsersPagination(t *testing.T) {
	profiles := profile.NewService(profile.NewMemoryRepository())
	repo := NewMemoryRepository()
	svc := NewService(repo, profiles, nil, logging.Discard())
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		err := repo.Create(ctx, User{
			ID:        uuid.NewString(),
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Type:      TypeCustomer,
			Status:    StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := repo.Create(ctx, User{ID: uuid.NewString(), Email: "root@example.com", Type: TypeAdmin, CreatedAt: base}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	first, err := svc.GetUsers(ctx, SearchInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("get users: %v", err)
	}
	if first.TotalCount != 23 || first.TotalPages != 3 {
		t.Fatalf("expected 23 users over 3 pages, got %d/%d", first.TotalCount, first.TotalPages)
	}
	if len(first.Data) != 10 || first.Data[0].Email != "user22@example.com" {
		t.Fatalf("expected newest first, got %d rows starting %s", len(first.Data), first.Data[0].Email)
	}

	zero, _ := svc.GetUsers(ctx, SearchInput{})
	if len(zero.Data) != 10 || zero.Data[0].ID != first.Data[0].ID {
		t.Fatal("page 0 and page 1 must both select the first page")
	}

	last, _ := svc.GetUsers(ctx, SearchInput{Page: 3, Limit: 10})
	if len(last.Data) != 3 {
		t.Fatalf("expected 3 rows on last page, got %d", len(last.Data))
	}

	beyond, _ := svc.GetUsers(ctx, SearchInput{Page: 9})
	if len(beyond.Data) != 0 || beyond.TotalCount != 23 {
		t.Fatalf("unexpected page beyond range %+v", beyond)
	}

	admins, _ := svc.GetUsers(ctx, SearchInput{Type: TypeAdmin})
	if admins.TotalCount != 1 {
		t.Fatalf("expected explicit admin filter to find 1, got %d", admins.TotalCount)
	}
}

func TestGetUsersExtremePaging(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.AddUser(ctx, NewUserInput{Email: fmt.Sprintf("user%d@example.com", i), Password: "secret"}); err != nil {
			t.Fatalf("add user: %v", err)
		}
	}

	cases := []SearchInput{
		{Page: math.MaxInt64/4 + 2, Limit: 4},
		{Page: math.MaxInt64, Limit: math.MaxInt64},
		{Page: 2, Limit: 100000000},
		{Page: math.MinInt64, Limit: math.MinInt64},
	}
	for _, in := range cases {
		page, err := svc.GetUsers(ctx, in)
		if err != nil {
			t.Fatalf("get users %+v: %v", in, err)
		}
		if page.TotalCount != 3 {
			t.Fatalf("get users %+v: expected total 3, got %d", in, page.TotalCount)
		}
	}

	capped, _ := svc.GetUsers(ctx, SearchInput{Page: 1, Limit: 100000000})
	if len(capped.Data) != 3 || capped.TotalPages != 1 {
		t.Fatalf("expected one capped page with every user, got %d rows over %d pages", len(capped.Data), capped.TotalPages)
	}
}

func TestGetUsersKeyword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a, _ := svc.AddUser(ctx, NewUserInput{Email: "alice@example.com", Password: "x"})
	b, _ := svc.AddUser(ctx, NewUserInput{Email: "bob@example.com", Password: "x"})
	if _, err := svc.UpdateUser(ctx, b.ID, UpdateInput{FirstName: "Alicia"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	page, err := svc.GetUsers(ctx, SearchInput{Keyword: "  ALI "})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("expected email and name matches, got %d", page.TotalCount)
	}

	page, _ = svc.GetUsers(ctx, SearchInput{Keyword: "ali", Exclude: a.ID})
	if page.TotalCount != 1 || page.Data[0].ID != b.ID {
		t.Fatalf("expected exclusion to drop alice, got %+v", page)
	}

	empty, _ := svc.GetUsers(ctx, SearchInput{Keyword: "zzz"})
	if empty.Data == nil || empty.TotalCount != 0 || empty.TotalPages != 0 {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

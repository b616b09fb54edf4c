package user_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
)

func TestResolveActingUserID(t *testing.T) {
	db := testutil.NewDB(t)
	authID := "auth|kim"
	byAuth := user.User{Email: "kim@example.com", AuthID: &authID, Active: true}
	byEmail := user.User{Email: "Lee@Example.com", Active: true}
	for _, u := range []*user.User{&byAuth, &byEmail} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	dir := user.NewDirectory(db)
	ctx := context.Background()

	cases := []struct {
		name string
		id   auth.Identity
		want *int64
	}{
		{"auth id wins", auth.Identity{Subject: "auth|kim", Email: "lee@example.com"}, &byAuth.ID},
		{"email fallback is case-insensitive", auth.Identity{Subject: "unknown", Email: " LEE@example.com "}, &byEmail.ID},
		{"no match", auth.Identity{Subject: "unknown", Email: "x@example.com"}, nil},
		{"empty identity", auth.Identity{}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dir.ResolveActingUserID(ctx, tc.id)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil, got %d", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected %d, got %v", *tc.want, got)
			}
		})
	}
}

func TestUserHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	h := user.NewHandler(db)

	staff := testutil.Router(&testutil.Staff)
	h.RegisterRoutes(staff)
	body := map[string]string{"email": "bob@example.com", "password": "pw", "fullName": "Bob"}
	if w := testutil.Do(t, staff, http.MethodPost, "/users", body); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", w.Code)
	}

	admin := testutil.Router(&testutil.Admin)
	h.RegisterRoutes(admin)
	w := testutil.Do(t, admin, http.MethodPost, "/users", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := testutil.Decode(t, w)
	if created["role"] != "STAFF" {
		t.Fatalf("default role should be STAFF, got %v", created["role"])
	}
	if _, leaked := created["passwordHash"]; leaked {
		t.Fatalf("password hash must not be returned")
	}
	id := strconv.FormatInt(int64(created["id"].(float64)), 10)

	if w := testutil.Do(t, admin, http.MethodPost, "/users", map[string]string{"email": "x@example.com"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without password, got %d", w.Code)
	}

	w = testutil.Do(t, staff, http.MethodGet, "/users?q=bob", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if data := testutil.Decode(t, w)["data"].([]interface{}); len(data) != 1 {
		t.Fatalf("expected 1 user, got %d", len(data))
	}

	w = testutil.Do(t, admin, http.MethodPut, "/users/"+id, map[string]string{"role": "admin"})
	if w.Code != http.StatusOK || testutil.Decode(t, w)["role"] != "ADMIN" {
		t.Fatalf("role update failed: %d %s", w.Code, w.Body.String())
	}

	if w := testutil.Do(t, admin, http.MethodDelete, "/users/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	var u user.User
	db.First(&u, id)
	if u.Active {
		t.Fatalf("user should be deactivated")
	}
	if w := testutil.Do(t, staff, http.MethodGet, "/users/9999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

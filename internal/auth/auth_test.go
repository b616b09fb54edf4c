package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
)

const secret = "test-secret"

func login(t *testing.T, h *auth.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Login(c)
	return w
}

func TestLogin_Success(t *testing.T) {
	db := testutil.NewDB(t)

	password := "secret123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	authID := "auth|alice"
	u := user.User{Email: "Alice@Example.com", PasswordHash: string(hash), FullName: "Alice", AuthID: &authID, Role: auth.RoleAdmin, Active: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	h := auth.NewHandler(db, secret)
	w := login(t, h, `{"email":"alice@example.com","password":"secret123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d, body: %s", w.Code, w.Body.String())
	}

	var resp auth.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "alice@example.com" || resp.User.Role != "ADMIN" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	claims := &auth.UserClaims{}
	if _, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != authID || claims.UserID != u.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLogin_Failures(t *testing.T) {
	db := testutil.NewDB(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.DefaultCost)
	inactive := user.User{Email: "gone@example.com", PasswordHash: string(hash), Active: false}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	h := auth.NewHandler(db, secret)

	if w := login(t, h, "notjson"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", w.Code)
	}
	if w := login(t, h, `{"email":"nobody@example.com","password":"pw"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", w.Code)
	}
	if w := login(t, h, `{"email":"gone@example.com","password":"pw"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive user, got %d", w.Code)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &auth.Handler{Secret: []byte(secret)}

	r := gin.New()
	r.Use(h.AuthMiddleware())
	r.GET("/me", func(c *gin.Context) {
		cu, _ := auth.GetCurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": cu.ID, "subject": cu.Subject, "admin": cu.IsAdmin()})
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := call(""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", w.Code)
	}
	if w := call("Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}

	claims := auth.UserClaims{
		UserID: 5,
		Email:  "staff@example.com",
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth|5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	other := &auth.Handler{Secret: []byte("other")}
	forged, _ := other.Sign(claims)
	if w := call("Bearer " + forged); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signature, got %d", w.Code)
	}

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expired, _ := h.Sign(claims)
	if w := call("Bearer " + expired); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}

	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	valid, _ := h.Sign(claims)
	w := call("Bearer " + valid)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.Decode(t, w)
	if resp["id"] != float64(5) || resp["subject"] != "auth|5" || resp["admin"] != true {
		t.Fatalf("unexpected current user %v", resp)
	}
}

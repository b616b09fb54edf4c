// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	gsqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/assistant"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/compliance"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/driver"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/route"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/school"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/vehicle"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)

// NewDB opens a private in-memory sqlite DB for t and auto-migrates all models.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + unsafeName.ReplaceAllString(t.Name(), "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(gsqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite memory DB: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&user.User{},
		&school.School{},
		&vehicle.Vehicle{},
		&driver.Driver{},
		&assistant.PassengerAssistant{},
		&route.Route{},
		&notification.Notification{},
		&compliance.Case{},
		&compliance.Update{},
	); err != nil {
		t.Fatalf("automigrate failed: %v", err)
	}
	return db
}

// Admin and Staff are ready-made callers.
var (
	Admin = auth.CurrentUser{ID: 1, Email: "admin@example.com", Subject: "1", Role: auth.RoleAdmin}
	Staff = auth.CurrentUser{ID: 2, Email: "staff@example.com", Subject: "2", Role: auth.RoleStaff}
)

// Router returns a gin engine that injects cu (when not nil) as the current user.
func Router(cu *auth.CurrentUser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if cu != nil {
		u := *cu
		r.Use(func(c *gin.Context) {
			c.Set(auth.ContextUserKey, u)
			c.Next()
		})
	}
	return r
}

// Do performs a request against h with an optional JSON body.
func Do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Decode unmarshals the recorder body into a generic map.
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return out
}

func Ptr[T any](v T) *T {
	return &v
}

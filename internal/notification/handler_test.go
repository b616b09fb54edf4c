package notification_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
)

func TestSendEmailHandler_Unauthorized(t *testing.T) {
	e := setup(t, false)
	h := notification.NewHandler(e.d, false)
	router := testutil.Router(nil)
	h.RegisterSendRoute(router)

	w := testutil.Do(t, router, http.MethodPost, "/notifications/send-email", map[string]interface{}{"notificationId": e.notif.ID})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSendEmailHandler_Errors(t *testing.T) {
	e := setup(t, false)
	h := notification.NewHandler(e.d, false)
	router := testutil.Router(&testutil.Staff)
	h.RegisterSendRoute(router)

	w := testutil.Do(t, router, http.MethodPost, "/notifications/send-email", map[string]interface{}{"notificationId": 12345})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := testutil.Decode(t, w); resp["error"] != "Notification not found" {
		t.Fatalf("unexpected error body %v", resp)
	}

	if err := e.db.Model(&notification.Notification{}).Where("id = ?", e.notif.ID).Update("recipient_email", "").Error; err != nil {
		t.Fatalf("blank recipient: %v", err)
	}
	w = testutil.Do(t, router, http.MethodPost, "/notifications/send-email", map[string]interface{}{"notificationId": e.notif.ID})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := testutil.Decode(t, w); resp["error"] != "No recipient email address" {
		t.Fatalf("unexpected error body %v", resp)
	}
}

func TestSendEmailHandler_EmailContentOnlyOutsideProduction(t *testing.T) {
	for _, production := range []bool{false, true} {
		t.Run("production="+strconv.FormatBool(production), func(t *testing.T) {
			e := setup(t, false)
			h := notification.NewHandler(e.d, production)
			router := testutil.Router(&testutil.Staff)
			h.RegisterSendRoute(router)

			w := testutil.Do(t, router, http.MethodPost, "/notifications/send-email", map[string]interface{}{
				"notificationId": e.notif.ID,
				"hold":           false,
			})
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			resp := testutil.Decode(t, w)
			if resp["success"] != true {
				t.Fatalf("expected success, got %v", resp)
			}
			content, has := resp["emailContent"].(map[string]interface{})
			if production && has {
				t.Fatalf("emailContent must not be returned in production")
			}
			if !production {
				if !has {
					t.Fatalf("emailContent expected outside production")
				}
				if content["uploadLink"] != "https://example.test/upload-document/"+e.notif.EmailToken {
					t.Fatalf("unexpected upload link %v", content["uploadLink"])
				}
			}
		})
	}
}

func TestListAndGetNotifications(t *testing.T) {
	e := setup(t, false)
	h := notification.NewHandler(e.d, false)
	router := testutil.Router(&testutil.Staff)
	h.RegisterRoutes(router)

	w := testutil.Do(t, router, http.MethodGet, "/notifications?status=pending&entityType=driver", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.Decode(t, w)
	if data, _ := resp["data"].([]interface{}); len(data) != 1 {
		t.Fatalf("expected one notification, got %v", resp["data"])
	}

	w = testutil.Do(t, router, http.MethodGet, "/notifications?status=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", w.Code)
	}

	w = testutil.Do(t, router, http.MethodGet, "/notifications/"+strconv.FormatInt(e.notif.ID, 10), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, leaked := testutil.Decode(t, w)["emailToken"]; leaked {
		t.Fatalf("email token must not be serialised")
	}

	w = testutil.Do(t, router, http.MethodGet, "/notifications/777", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetByToken(t *testing.T) {
	e := setup(t, false)
	h := notification.NewHandler(e.d, false)
	router := testutil.Router(nil)
	h.RegisterPublicRoutes(router)

	w := testutil.Do(t, router, http.MethodGet, "/public/notifications/"+e.notif.EmailToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.Decode(t, w)
	if resp["entityName"] != "Dana Driver" || resp["expiryDate"] != "2025-03-01" {
		t.Fatalf("unexpected payload %v", resp)
	}
	if _, ok := resp["recipientEmail"]; ok {
		t.Fatalf("recipient email must not be exposed publicly")
	}

	w = testutil.Do(t, router, http.MethodGet, "/public/notifications/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

package assistant_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/assistant"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
)

func TestAssistantHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	h := assistant.NewHandler(db)
	staff := testutil.Router(&testutil.Staff)
	h.RegisterRoutes(staff)
	admin := testutil.Router(&testutil.Admin)
	h.RegisterRoutes(admin)

	if w := testutil.Do(t, staff, http.MethodPost, "/assistants", map[string]string{"email": "x@example.com"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without fullName, got %d", w.Code)
	}

	w := testutil.Do(t, staff, http.MethodPost, "/assistants", map[string]string{
		"fullName":           "Alex Assistant",
		"tasBadgeExpiryDate": "2099-01-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := testutil.Decode(t, w)
	if created["canWork"] != false {
		t.Fatalf("assistant without DBS should not be able to work")
	}
	id := strconv.FormatInt(int64(created["id"].(float64)), 10)

	w = testutil.Do(t, staff, http.MethodPut, "/assistants/"+id, map[string]string{"dbsExpiryDate": "2099-06-01"})
	if w.Code != http.StatusOK || testutil.Decode(t, w)["canWork"] != true {
		t.Fatalf("assistant with both badges should be able to work: %d %s", w.Code, w.Body.String())
	}

	w = testutil.Do(t, staff, http.MethodGet, "/assistants/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if certs := testutil.Decode(t, w)["certificates"].([]interface{}); len(certs) != 2 {
		t.Fatalf("expected 2 certificates, got %d", len(certs))
	}

	if w := testutil.Do(t, staff, http.MethodGet, "/assistants?active=yes", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad active filter, got %d", w.Code)
	}
	if w := testutil.Do(t, staff, http.MethodDelete, "/assistants/"+id, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := testutil.Do(t, admin, http.MethodDelete, "/assistants/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = testutil.Do(t, staff, http.MethodGet, "/assistants?active=true", nil)
	if data := testutil.Decode(t, w)["data"].([]interface{}); len(data) != 0 {
		t.Fatalf("deleted assistant should not be listed as active")
	}
	if w := testutil.Do(t, staff, http.MethodGet, "/assistants/404", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

package vehicle_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/vehicle"
)

func compliantBody(reg string) map[string]interface{} {
	return map[string]interface{}{
		"registrationNumber":     reg,
		"make":                   "Ford",
		"model":                  "Transit",
		"seats":                  16,
		"registrationExpiryDate": "2099-01-01",
		"plateExpiryDate":        "2099-01-01",
		"insuranceExpiryDate":    "2099-01-01",
		"motDate":                "2099-01-01",
		"taxDate":                "2099-01-01",
	}
}

func TestCreateVehicle_ComputesGate(t *testing.T) {
	db := testutil.NewDB(t)
	r := testutil.Router(&testutil.Staff)
	vehicle.NewHandler(db).RegisterRoutes(r)

	w := testutil.Do(t, r, http.MethodPost, "/vehicles", compliantBody(" ab12 cde "))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.Decode(t, w)
	if resp["registrationNumber"] != "AB12 CDE" || resp["offTheRoad"] != false {
		t.Fatalf("unexpected vehicle %v", resp)
	}

	body := compliantBody("XY34 ZZZ")
	delete(body, "motDate")
	w = testutil.Do(t, r, http.MethodPost, "/vehicles", body)
	if w.Code != http.StatusCreated || testutil.Decode(t, w)["offTheRoad"] != true {
		t.Fatalf("vehicle without MOT should be off the road: %s", w.Body.String())
	}

	body = compliantBody("BAD1")
	body["taxDate"] = "01/02/2025"
	if w := testutil.Do(t, r, http.MethodPost, "/vehicles", body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
	if w := testutil.Do(t, r, http.MethodPost, "/vehicles", map[string]string{"make": "Ford"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without registration, got %d", w.Code)
	}
}

func TestVehicleLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	h := vehicle.NewHandler(db)
	staff := testutil.Router(&testutil.Staff)
	h.RegisterRoutes(staff)
	admin := testutil.Router(&testutil.Admin)
	h.RegisterRoutes(admin)

	w := testutil.Do(t, staff, http.MethodPost, "/vehicles", compliantBody("AB12 CDE"))
	id := strconv.FormatInt(int64(testutil.Decode(t, w)["id"].(float64)), 10)

	w = testutil.Do(t, staff, http.MethodPut, "/vehicles/"+id, map[string]string{"insuranceExpiryDate": "2000-01-01"})
	if w.Code != http.StatusOK || testutil.Decode(t, w)["offTheRoad"] != true {
		t.Fatalf("expired insurance should block the vehicle: %d %s", w.Code, w.Body.String())
	}

	w = testutil.Do(t, staff, http.MethodGet, "/vehicles?offTheRoad=true", nil)
	if data := testutil.Decode(t, w)["data"].([]interface{}); len(data) != 1 {
		t.Fatalf("expected 1 blocked vehicle, got %d", len(data))
	}
	if w := testutil.Do(t, staff, http.MethodGet, "/vehicles?onHold=maybe", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", w.Code)
	}

	w = testutil.Do(t, staff, http.MethodGet, "/vehicles/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if certs := testutil.Decode(t, w)["certificates"].([]interface{}); len(certs) != 8 {
		t.Fatalf("expected 8 certificates, got %d", len(certs))
	}

	if w := testutil.Do(t, staff, http.MethodDelete, "/vehicles/"+id, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff delete, got %d", w.Code)
	}
	if w := testutil.Do(t, admin, http.MethodDelete, "/vehicles/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := testutil.Do(t, admin, http.MethodDelete, "/vehicles/999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestVehicleGate_UsesHandlerClock(t *testing.T) {
	restore := vehicle.SetClock(func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) })
	defer restore()

	db := testutil.NewDB(t)
	r := testutil.Router(&testutil.Staff)
	vehicle.NewHandler(db).RegisterRoutes(r)

	body := compliantBody("AB12 CDE")
	body["motDate"] = "2030-06-01"
	w := testutil.Do(t, r, http.MethodPost, "/vehicles", body)
	if w.Code != http.StatusCreated || testutil.Decode(t, w)["offTheRoad"] != true {
		t.Fatalf("MOT lapsed before the handler clock should block the vehicle: %d %s", w.Code, w.Body.String())
	}
	id := strconv.FormatInt(int64(testutil.Decode(t, w)["id"].(float64)), 10)

	w = testutil.Do(t, r, http.MethodPut, "/vehicles/"+id, map[string]string{"motDate": "2032-06-01"})
	if w.Code != http.StatusOK || testutil.Decode(t, w)["offTheRoad"] != false {
		t.Fatalf("renewed MOT should clear the gate: %d %s", w.Code, w.Body.String())
	}
}

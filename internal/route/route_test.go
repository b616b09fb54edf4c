package route_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/route"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/school"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
)

func TestRouteHandlers(t *testing.T) {
	db := testutil.NewDB(t)
	s := school.School{Name: "Hillside Primary", Active: true}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create school: %v", err)
	}

	h := route.NewHandler(db)
	staff := testutil.Router(&testutil.Staff)
	h.RegisterRoutes(staff)
	admin := testutil.Router(&testutil.Admin)
	h.RegisterRoutes(admin)

	if w := testutil.Do(t, staff, http.MethodPost, "/routes", map[string]interface{}{"vehicleId": 1}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without routeNumber, got %d", w.Code)
	}

	w := testutil.Do(t, staff, http.MethodPost, "/routes", map[string]interface{}{
		"routeNumber": "R1", "schoolId": s.ID, "vehicleId": 7, "driverId": 100,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := strconv.FormatInt(int64(testutil.Decode(t, w)["id"].(float64)), 10)
	testutil.Do(t, staff, http.MethodPost, "/routes", map[string]interface{}{"routeNumber": "R2", "driverId": 200})

	w = testutil.Do(t, staff, http.MethodGet, "/routes?driverId=100", nil)
	data := testutil.Decode(t, w)["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 route for driver 100, got %d", len(data))
	}
	if row := data[0].(map[string]interface{}); row["schoolName"] != "Hillside Primary" || row["routeNumber"] != "R1" {
		t.Fatalf("unexpected row %v", row)
	}
	if w := testutil.Do(t, staff, http.MethodGet, "/routes?driverId=abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	w = testutil.Do(t, staff, http.MethodGet, "/vehicles/7/routes", nil)
	if data := testutil.Decode(t, w)["data"].([]interface{}); len(data) != 1 {
		t.Fatalf("expected 1 route for vehicle 7, got %d", len(data))
	}

	// 0 clears an assignment
	w = testutil.Do(t, staff, http.MethodPut, "/routes/"+id, map[string]interface{}{"vehicleId": 0})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := testutil.Decode(t, w); resp["vehicleId"] != nil || resp["driverId"] != float64(100) {
		t.Fatalf("unexpected assignment after update %v", resp)
	}

	w = testutil.Do(t, staff, http.MethodGet, "/routes?onHold=false", nil)
	if total := testutil.Decode(t, w)["pagination"].(map[string]interface{})["total"]; total != float64(2) {
		t.Fatalf("expected 2 routes not on hold, got %v", total)
	}

	if w := testutil.Do(t, staff, http.MethodDelete, "/routes/"+id, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := testutil.Do(t, admin, http.MethodDelete, "/routes/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := testutil.Do(t, staff, http.MethodGet, "/routes/999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

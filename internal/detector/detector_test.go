package detector_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/assistant"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/compliance"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/detector"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/driver"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/testutil"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/vehicle"
)

type fakePublisher struct {
	ids []int64
}

func (f *fakePublisher) Publish(_ context.Context, id int64) error {
	f.ids = append(f.ids, id)
	return nil
}

func day(s string) *time.Time {
	t, err := time.Parse(fleet.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var today = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	owner := "owner@example.com"
	rows := []interface{}{
		&vehicle.Vehicle{
			ID: 1, RegistrationNumber: "AB12 CDE", Active: true,
			RegistrationExpiryDate: day("2026-01-01"),
			PlateExpiryDate:        day("2026-01-01"),
			InsuranceExpiryDate:    day("2025-03-05"), // expired
			MOTDate:                day("2025-03-20"), // 10 days
			TaxDate:                day("2025-06-01"), // outside window
			OwnerEmail:             &owner,
		},
		// inactive rows are skipped entirely
		&vehicle.Vehicle{ID: 2, RegistrationNumber: "ZZ99 ZZZ", MOTDate: day("2025-03-01")},
		&driver.Driver{
			EmployeeID: 100, FullName: "Dana Driver", Active: true, CanWork: true,
			TASBadgeExpiryDate:       day("2026-01-01"),
			TaxiBadgeExpiryDate:      day("2025-03-25"),
			DrivingLicenseExpiryDate: day("2030-01-01"),
			// no DBS date -> blocked
		},
		&assistant.PassengerAssistant{
			ID: 7, FullName: "Alex Assistant", Active: true, CanWork: false,
			TASBadgeExpiryDate: day("2026-01-01"),
			DBSExpiryDate:      day("2026-01-01"),
		},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

func newDetector(db *gorm.DB, pub detector.Publisher) *detector.Detector {
	d := detector.New(db, pub, 30, "fleet@example.com", nil)
	d.Now = func() time.Time { return today }
	return d
}

func TestDaysUntil(t *testing.T) {
	cases := []struct {
		expiry string
		want   int
	}{
		{"2025-03-10", 0},
		{"2025-03-11", 1},
		{"2025-03-09", -1},
		{"2025-04-09", 30},
	}
	for _, tc := range cases {
		if got := detector.DaysUntil(*day(tc.expiry), today); got != tc.want {
			t.Errorf("DaysUntil(%s) = %d, want %d", tc.expiry, got, tc.want)
		}
	}
}

func TestRun_GatesAndNotifications(t *testing.T) {
	db := testutil.NewDB(t)
	seed(t, db)
	pub := &fakePublisher{}

	res, err := newDetector(db, pub).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Scanned != 3 || res.Blocked != 2 {
		t.Fatalf("scanned=%d blocked=%d", res.Scanned, res.Blocked)
	}
	if len(res.Created) != 3 || len(pub.ids) != 3 {
		t.Fatalf("created=%v published=%v", res.Created, pub.ids)
	}

	var v vehicle.Vehicle
	db.First(&v, 1)
	if !v.OffTheRoad {
		t.Fatalf("vehicle with expired insurance should be off the road")
	}
	var dr driver.Driver
	db.First(&dr, "employee_id = ?", 100)
	if dr.CanWork {
		t.Fatalf("driver without DBS should not be able to work")
	}
	var a assistant.PassengerAssistant
	db.First(&a, 7)
	if !a.CanWork {
		t.Fatalf("compliant assistant should be able to work")
	}

	var notes []notification.Notification
	db.Order("id").Find(&notes)
	got := map[string]notification.Notification{}
	for _, n := range notes {
		got[string(n.EntityType)+":"+n.CertificateType] = n
	}
	mot, ok := got["vehicle:mot_date"]
	if !ok || mot.DaysUntilExpiry != 10 || mot.Status != notification.StatusPending {
		t.Fatalf("unexpected MOT notification %+v", mot)
	}
	if mot.RecipientEmail == nil || *mot.RecipientEmail != "owner@example.com" {
		t.Fatalf("MOT recipient = %v", mot.RecipientEmail)
	}
	if ins := got["vehicle:insurance_expiry_date"]; ins.DaysUntilExpiry != -5 {
		t.Fatalf("insurance days = %d", ins.DaysUntilExpiry)
	}
	taxi, ok := got["driver:taxi_badge_expiry_date"]
	if !ok || taxi.RecipientEmail == nil || *taxi.RecipientEmail != "fleet@example.com" {
		t.Fatalf("driver notification should fall back to the fleet address: %+v", taxi)
	}
	if _, ok := got["vehicle:tax_date"]; ok {
		t.Fatalf("tax date is outside the window")
	}

	var cases int64
	db.Model(&compliance.Case{}).Count(&cases)
	if cases != 3 {
		t.Fatalf("expected one case per notification, got %d", cases)
	}
}

func TestRun_NoDuplicatesAndStableToken(t *testing.T) {
	db := testutil.NewDB(t)
	seed(t, db)
	det := newDetector(db, nil)

	if _, err := det.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	var before notification.Notification
	db.Where("certificate_type = ?", "mot_date").First(&before)

	det.Now = func() time.Time { return today.AddDate(0, 0, 1) }
	res, err := det.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(res.Created) != 0 || res.Refreshed != 3 {
		t.Fatalf("second run created=%v refreshed=%d", res.Created, res.Refreshed)
	}

	var count int64
	db.Model(&notification.Notification{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 notifications, got %d", count)
	}
	var after notification.Notification
	db.First(&after, before.ID)
	if after.EmailToken != before.EmailToken {
		t.Fatalf("token changed across runs")
	}
	if after.DaysUntilExpiry != 9 {
		t.Fatalf("days should be refreshed to 9, got %d", after.DaysUntilExpiry)
	}
}

func TestRun_RenewedCertificateStartsNewCycle(t *testing.T) {
	db := testutil.NewDB(t)
	seed(t, db)
	det := newDetector(db, nil)
	if _, err := det.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	db.Model(&vehicle.Vehicle{}).Where("id = ?", 1).Update("mot_date", day("2025-04-05"))
	res, err := det.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("expected a notification for the new expiry date, got %v", res.Created)
	}
}

func TestDetectHandler(t *testing.T) {
	db := testutil.NewDB(t)
	seed(t, db)
	h := detector.NewHandler(newDetector(db, nil), false)

	staff := testutil.Router(&testutil.Staff)
	h.RegisterRoutes(staff)
	if w := testutil.Do(t, staff, http.MethodPost, "/notifications/detect", nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", w.Code)
	}

	admin := testutil.Router(&testutil.Admin)
	h.RegisterRoutes(admin)
	w := testutil.Do(t, admin, http.MethodPost, "/notifications/detect", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := testutil.Decode(t, w); resp["scanned"] != float64(3) {
		t.Fatalf("unexpected body %v", resp)
	}
}

package fleet

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of fleet resource subject to compliance tracking.
type Kind string

const (
	KindVehicle   Kind = "vehicle"
	KindDriver    Kind = "driver"
	KindAssistant Kind = "assistant"
)

// Ref points at one vehicle, driver or passenger assistant.
type Ref struct {
	Kind Kind  `json:"entityType"`
	ID   int64 `json:"entityId"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// Target describes where an entity kind lives in the database.
type Target struct {
	Table       string
	KeyColumn   string
	RouteColumn string // FK column on routes
	NameColumn  string
}

const (
	VehiclesTable   = "vehicles"
	DriversTable    = "drivers"
	AssistantsTable = "passenger_assistants"
	RoutesTable     = "routes"
)

var targets = map[Kind]Target{
	KindVehicle:   {Table: VehiclesTable, KeyColumn: "id", RouteColumn: "vehicle_id", NameColumn: "registration_number"},
	KindDriver:    {Table: DriversTable, KeyColumn: "employee_id", RouteColumn: "driver_id", NameColumn: "full_name"},
	KindAssistant: {Table: AssistantsTable, KeyColumn: "id", RouteColumn: "passenger_assistant_id", NameColumn: "full_name"},
}

// TargetFor returns the table mapping for k.
func TargetFor(k Kind) (Target, bool) {
	t, ok := targets[k]
	return t, ok
}

// ParseKind accepts "vehicle", "driver", "assistant" (case-insensitive).
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := targets[k]
	return k, ok
}

// Kinds returns every known kind in a fixed order.
func Kinds() []Kind {
	return []Kind{KindVehicle, KindDriver, KindAssistant}
}

// Hold is the on-hold payload shared by entity and route rows.
// on_hold is a manual workflow flag, independent of the certificate gate.
type Hold struct {
	OnHold               bool       `json:"onHold"               gorm:"column:on_hold;not null;default:false"`
	OnHoldReason         *string    `json:"onHoldReason"         gorm:"column:on_hold_reason"`
	OnHoldNotificationID *int64     `json:"onHoldNotificationId" gorm:"column:on_hold_notification_id;index"`
	OnHoldSetBy          *int64     `json:"onHoldSetBy"          gorm:"column:on_hold_set_by"`
	OnHoldSetAt          *time.Time `json:"onHoldSetAt"          gorm:"column:on_hold_set_at"`
	OnHoldClearedAt      *time.Time `json:"onHoldClearedAt"      gorm:"column:on_hold_cleared_at"`
}

// Certificate is one dated compliance document of an entity.
type Certificate struct {
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	Expiry   *time.Time `json:"expiry"`
	Required bool       `json:"required"`
}

// Certified is implemented by every entity model with certificate fields.
type Certified interface {
	Ref() Ref
	Certificates() []Certificate
}

// Date truncates t to a calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil = floor((expiry - today) in days), calendar based. Negative means expired.
func DaysUntil(expiry, today time.Time) int {
	diff := Date(expiry).Sub(Date(today))
	return int(diff.Hours() / 24)
}

// Compliant reports whether every required certificate is present and not yet expired.
func Compliant(certs []Certificate, today time.Time) bool {
	for _, c := range certs {
		if !c.Required {
			continue
		}
		if c.Expiry == nil || DaysUntil(*c.Expiry, today) < 0 {
			return false
		}
	}
	return true
}

// Missing returns the required certificates that have no expiry date at all.
func Missing(certs []Certificate) []Certificate {
	var out []Certificate
	for _, c := range certs {
		if c.Required && c.Expiry == nil {
			out = append(out, c)
		}
	}
	return out
}

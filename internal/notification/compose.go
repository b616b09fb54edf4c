package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
)

const defaultBaseURL = "http://localhost:3000"

// Links are the recipient self-service URLs for one notification.
type Links struct {
	Upload      string `json:"uploadLink"`
	Appointment string `json:"appointmentLink"`
}

// BaseURL picks the first non-empty of app URL, site URL and request origin.
func BaseURL(appURL, siteURL, origin string) string {
	for _, v := range []string{appURL, siteURL, origin} {
		if v = strings.TrimSpace(v); v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return defaultBaseURL
}

func LinksFor(baseURL, token string) Links {
	return Links{
		Upload:      baseURL + "/upload-document/" + token,
		Appointment: baseURL + "/book-appointment/" + token,
	}
}

// UrgencyTag: EXPIRED below zero, EXPIRING SOON within a week.
func UrgencyTag(days int) string {
	switch {
	case days < 0:
		return "EXPIRED"
	case days <= 7:
		return "EXPIRING SOON"
	default:
		return "Expiring Soon"
	}
}

func DefaultSubject(n Notification, entityName string) string {
	return fmt.Sprintf("%s: %s - %s", UrgencyTag(n.DaysUntilExpiry), n.CertificateName, entityName)
}

func statusLine(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("EXPIRED %d days ago", -days)
	case days == -1:
		return "EXPIRED yesterday"
	case days == 0:
		return "Expires today"
	case days == 1:
		return "Expires tomorrow"
	default:
		return fmt.Sprintf("Expires in %d days", days)
	}
}

// DefaultBody builds the templated reminder text.
func DefaultBody(n Notification, entityName string, links Links, includeAppointment bool) string {
	var b strings.Builder
	b.WriteString("Dear Sir/Madam,\n\n")
	fmt.Fprintf(&b, "This is a compliance reminder regarding the %s for %s.\n\n", n.CertificateName, entityName)
	fmt.Fprintf(&b, "**Certificate:** %s\n", n.CertificateName)
	fmt.Fprintf(&b, "**%s:** %s\n", entityLabel(n.EntityType), entityName)
	fmt.Fprintf(&b, "**Expiry Date:** %s\n", n.ExpiryDate.Format("02 January 2006"))
	fmt.Fprintf(&b, "**Status:** %s\n\n", statusLine(n.DaysUntilExpiry))

	b.WriteString("**Documents required:**\n")
	for _, doc := range fleet.RequiredDocuments(n.EntityType, n.CertificateType) {
		fmt.Fprintf(&b, "- %s\n", doc)
	}

	b.WriteString("\nPlease upload the updated documents here:\n")
	fmt.Fprintf(&b, "[Upload documents](%s)\n", links.Upload)
	if includeAppointment {
		b.WriteString("\nIf you need an inspection or appointment, book a slot here:\n")
		fmt.Fprintf(&b, "[Book an appointment](%s)\n", links.Appointment)
	}

	b.WriteString("\nKind regards,\nCompliance Team")
	return b.String()
}

// CustomBody appends the appointment link to a caller supplied body unless it is already there.
func CustomBody(body string, links Links, includeAppointment bool) string {
	if includeAppointment && !strings.Contains(body, links.Appointment) {
		body = strings.TrimRight(body, "\n") + "\n\n[Book an appointment](" + links.Appointment + ")"
	}
	return body
}

// StripAppointmentLinks drops every line that carries a booking link.
func StripAppointmentLinks(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.Contains(l, "/book-appointment/") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

func entityLabel(k fleet.Kind) string {
	switch k {
	case fleet.KindVehicle:
		return "Vehicle"
	case fleet.KindDriver:
		return "Driver"
	case fleet.KindAssistant:
		return "Passenger Assistant"
	}
	return "Entity"
}

// EntityDisplayName is the fallback when the entity row has no name.
func EntityDisplayName(ref fleet.Ref, name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fmt.Sprintf("%s #%d", entityLabel(ref.Kind), ref.ID)
}

func formatDate(t time.Time) string {
	return t.Format(fleet.DateLayout)
}

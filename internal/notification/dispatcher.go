package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/fleet"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/hold"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/mailer"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/user"
)

// Holder applies a hold after a successful dispatch.
type Holder interface {
	Apply(ctx context.Context, req hold.Request) (hold.Report, error)
}

// SendInput: nil pointers fall back to defaults (generated subject/body, hold and link on).
type SendInput struct {
	NotificationID         int64
	Subject                *string
	Body                   *string
	Hold                   *bool
	IncludeAppointmentLink *bool
	Origin                 string
	Actor                  *auth.Identity
}

type SendResult struct {
	Notification Notification   `json:"-"`
	Message      mailer.Message `json:"-"`
	Links        Links          `json:"links"`
	SMTPSkipped  bool           `json:"smtpSkipped"`
	Hold         *hold.Report   `json:"hold,omitempty"`
}

// Dispatcher composes, sends and stamps notification emails.
type Dispatcher struct {
	Store   *Store
	Mailer  mailer.Sender
	Holds   Holder
	Users   user.ActingUserResolver
	AppURL  string
	SiteURL string
	Logger  *slog.Logger
	Now     func() time.Time
}

func NewDispatcher(db *gorm.DB, m mailer.Sender, holds Holder, users user.ActingUserResolver, appURL, siteURL string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		Store:   NewStore(db),
		Mailer:  m,
		Holds:   holds,
		Users:   users,
		AppURL:  appURL,
		SiteURL: siteURL,
		Logger:  logger,
		Now:     time.Now,
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// EntityName resolves the display name of the notification's entity through the fleet registry.
func (d *Dispatcher) EntityName(ctx context.Context, ref fleet.Ref) (string, error) {
	target, ok := fleet.TargetFor(ref.Kind)
	if !ok {
		return EntityDisplayName(ref, ""), nil
	}
	var names []string
	err := d.Store.DB.WithContext(ctx).
		Table(target.Table).
		Where(target.KeyColumn+" = ?", ref.ID).
		Limit(1).
		Pluck(target.NameColumn, &names).Error
	if err != nil {
		return "", apperr.Persistence(errors.Wrapf(err, "load name of %s", ref))
	}
	if len(names) == 0 {
		return EntityDisplayName(ref, ""), nil
	}
	return EntityDisplayName(ref, names[0]), nil
}

// Compose builds the message for n without sending anything.
func (d *Dispatcher) Compose(ctx context.Context, n Notification, in SendInput) (mailer.Message, Links, error) {
	entityName, err := d.EntityName(ctx, n.Ref())
	if err != nil {
		return mailer.Message{}, Links{}, err
	}

	links := LinksFor(BaseURL(d.AppURL, d.SiteURL, in.Origin), n.EmailToken)
	includeAppointment := boolOr(in.IncludeAppointmentLink, true)

	subject := DefaultSubject(n, entityName)
	if in.Subject != nil && strings.TrimSpace(*in.Subject) != "" {
		subject = strings.TrimSpace(*in.Subject)
	}

	var body string
	if in.Body != nil && strings.TrimSpace(*in.Body) != "" {
		body = CustomBody(*in.Body, links, includeAppointment)
	} else {
		body = DefaultBody(n, entityName, links, includeAppointment)
	}
	if !includeAppointment {
		body = StripAppointmentLinks(body)
	}

	msg := mailer.Message{
		To:      strings.TrimSpace(*n.RecipientEmail),
		Subject: subject,
		Text:    mailer.RenderPlain(body),
		HTML:    mailer.RenderHTML(body),
	}
	return msg, links, nil
}

// Send runs the dispatch workflow: compose, send (skipped when SMTP is not configured),
// stamp the notification as sent and, unless disabled, hold the entity.
func (d *Dispatcher) Send(ctx context.Context, in SendInput) (SendResult, error) {
	var res SendResult
	if in.Actor == nil {
		return res, apperr.ErrAuth
	}

	n, err := d.Store.Get(ctx, in.NotificationID)
	if err != nil {
		return res, err
	}
	if n.RecipientEmail == nil || strings.TrimSpace(*n.RecipientEmail) == "" {
		return res, apperr.Invalid("No recipient email address")
	}

	msg, links, err := d.Compose(ctx, n, in)
	if err != nil {
		return res, err
	}
	res.Message = msg
	res.Links = links

	withHold := boolOr(in.Hold, true)
	audit := datatypes.JSONMap{
		"subject":     msg.Subject,
		"recipient":   msg.To,
		"hold":        withHold,
		"expiry_date": formatDate(n.ExpiryDate),
	}

	if d.Mailer == nil || !d.Mailer.Configured() {
		d.Logger.Warn("SMTP not configured, email not sent", "notification_id", n.ID, "to", msg.To)
		res.SMTPSkipped = true
	} else if err := d.Mailer.Send(ctx, msg); err != nil {
		audit["error"] = err.Error()
		if markErr := d.Store.MarkFailed(ctx, n.ID, audit); markErr != nil {
			d.Logger.Error("failed to mark notification failed", "notification_id", n.ID, "error", markErr)
		}
		return res, errors.Wrap(err, "failed to send email")
	}
	audit["smtp_skipped"] = res.SMTPSkipped

	sentAt := d.now()
	if err := d.Store.MarkSent(ctx, n.ID, sentAt, audit); err != nil {
		return res, err
	}
	n.Status = StatusSent
	n.EmailSentAt = &sentAt
	n.LastEmail = audit
	res.Notification = n

	if withHold && d.Holds != nil {
		var actingUserID *int64
		if d.Users != nil {
			actingUserID, err = d.Users.ResolveActingUserID(ctx, *in.Actor)
			if err != nil {
				return res, apperr.Persistence(errors.Wrap(err, "resolve acting user"))
			}
		}
		report, err := d.Holds.Apply(ctx, hold.Request{
			Ref:            n.Ref(),
			NotificationID: n.ID,
			Reason:         HoldReason(n),
			ActingUserID:   actingUserID,
		})
		if err != nil {
			return res, err
		}
		res.Hold = &report
	}

	d.Logger.Info("notification dispatched",
		"notification_id", n.ID,
		"entity", n.Ref().String(),
		"smtp_skipped", res.SMTPSkipped,
		"hold", res.Hold != nil,
	)
	return res, nil
}

// HoldReason is the on_hold_reason written for holds caused by a notification.
func HoldReason(n Notification) string {
	verb := "expires"
	if n.DaysUntilExpiry < 0 {
		verb = "expired"
	}
	return fmt.Sprintf("Compliance notification #%d: %s %s on %s",
		n.ID, n.CertificateName, verb, n.ExpiryDate.Format("02 January 2006"))
}

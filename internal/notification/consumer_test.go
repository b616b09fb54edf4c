package notification_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/apperr"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/notification"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/queue"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/vehicle"
)

var sender = auth.Identity{Subject: "system:sender"}

func TestQueueHandler_RetriesFailedSend(t *testing.T) {
	e := setup(t, true)
	handle := e.d.QueueHandler(true, sender)
	msg := queue.Message{NotificationID: e.notif.ID}

	e.mail.err = errors.New("connection refused")
	err := handle(context.Background(), msg)
	if err == nil {
		t.Fatalf("expected transport error on first delivery")
	}
	if status := apperr.Status(err); status < http.StatusInternalServerError {
		t.Fatalf("transport failure must be requeued, got status %d", status)
	}
	if n := e.reloadNotification(t); n.Status != notification.StatusFailed {
		t.Fatalf("expected failed after first delivery, got %s", n.Status)
	}

	// redelivery
	e.mail.err = nil
	if err := handle(context.Background(), msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	n := e.reloadNotification(t)
	if n.Status != notification.StatusSent || n.EmailSentAt == nil {
		t.Fatalf("expected sent after redelivery, got %s %v", n.Status, n.EmailSentAt)
	}
	if len(e.mail.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(e.mail.sent))
	}

	var v vehicle.Vehicle
	if err := e.db.First(&v, e.vehicle.ID).Error; err != nil {
		t.Fatalf("reload vehicle: %v", err)
	}
	if !v.OnHold || v.OnHoldSetBy != nil {
		t.Fatalf("expected hold with no acting user, got %+v", v.Hold)
	}
}

func TestQueueHandler_SkipsSent(t *testing.T) {
	e := setup(t, true)
	handle := e.d.QueueHandler(false, sender)
	msg := queue.Message{NotificationID: e.notif.ID}

	if err := handle(context.Background(), msg); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := handle(context.Background(), msg); err != nil {
		t.Fatalf("duplicate delivery: %v", err)
	}
	if len(e.mail.sent) != 1 {
		t.Fatalf("duplicate delivery must not mail again, got %d emails", len(e.mail.sent))
	}
	var v vehicle.Vehicle
	if err := e.db.First(&v, e.vehicle.ID).Error; err != nil {
		t.Fatalf("reload vehicle: %v", err)
	}
	if v.OnHold {
		t.Fatalf("auto hold was off")
	}
}

func TestQueueHandler_UnknownNotification(t *testing.T) {
	e := setup(t, true)
	err := e.d.QueueHandler(true, sender)(context.Background(), queue.Message{NotificationID: 9999})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

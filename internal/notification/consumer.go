package notification

import (
	"context"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/auth"
	"github.com/ali-abouelaish/FleetManager-sub003/internal/queue"
)

// QueueHandler sends each queued notification. Rows already marked sent are skipped so a
// redelivery never mails twice. Pending and failed rows are (re)sent; a transport error
// is returned as-is so the broker requeues the message once.
func (d *Dispatcher) QueueHandler(autoHold bool, actor auth.Identity) queue.HandlerFunc {
	return func(ctx context.Context, msg queue.Message) error {
		n, err := d.Store.Get(ctx, msg.NotificationID)
		if err != nil {
			return err
		}
		if n.Status == StatusSent {
			d.Logger.Info("Notification already sent, skipping", "notification_id", n.ID)
			return nil
		}
		if n.Status == StatusFailed {
			d.Logger.Info("Retrying failed notification", "notification_id", n.ID)
		}

		withHold := autoHold
		by := actor
		_, err = d.Send(ctx, SendInput{
			NotificationID: n.ID,
			Hold:           &withHold,
			Actor:          &by,
		})
		return err
	}
}

package notify

import (
	"context"
	"time"

	"fitclass/internal/booking"
	"fitclass/internal/class"
	"fitclass/internal/logger"
)

// Mailer is the subset of the e-mail queue the notifier uses.
type Mailer interface {
	SendSeatConfirmed(ctx context.Context, to, name, className string, when time.Time) error
	SendWaitlisted(ctx context.Context, to, name, className string, when time.Time) error
	SendDemoted(ctx context.Context, to, name, className string, when time.Time) error
}

type Notifier struct {
	directory Directory
	mailer    Mailer
}

var _ booking.Notifier = (*Notifier)(nil)

func NewNotifier(directory Directory, mailer Mailer) *Notifier {
	return &Notifier{directory: directory, mailer: mailer}
}

type sendFunc func(ctx context.Context, to, name, className string, when time.Time) error

func (n *Notifier) SeatConfirmed(ctx context.Context, b booking.Booking, c class.Session) {
	n.deliver(ctx, "seat_confirmed", b, c, n.mailer.SendSeatConfirmed)
}

func (n *Notifier) Waitlisted(ctx context.Context, b booking.Booking, c class.Session) {
	n.deliver(ctx, "waitlisted", b, c, n.mailer.SendWaitlisted)
}

func (n *Notifier) Demoted(ctx context.Context, b booking.Booking, c class.Session) {
	n.deliver(ctx, "demoted", b, c, n.mailer.SendDemoted)
}

func (n *Notifier) deliver(ctx context.Context, kind string, b booking.Booking, c class.Session, send sendFunc) {
	contact, err := n.directory.Contact(ctx, b.MemberID)
	if err != nil {
		logger.Warn("no contact for notification", "kind", kind, "member_id", b.MemberID, "error", err)
		return
	}
	if err := send(ctx, contact.Email, contact.Name, c.Name, c.StartAt); err != nil {
		logger.Warn("notification not queued", "kind", kind, "booking_id", b.ID, "error", err)
	}
}

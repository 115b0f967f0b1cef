// Package notifier sends the delivery-ready email to a capsule recipient.
package notifier

import "context"

// Notifier delivers one notification email. Implementations must bound the
// call's duration; a timeout is reported as a send failure.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

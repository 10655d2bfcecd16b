package dispatch

import "context"

// Sender is an interface that defines a method for delivering a push alert
// to a single device endpoint. Delivery is best-effort: implementations do
// not retry, and callers decide what a failure means.
type Sender interface {
	Send(ctx context.Context, token, title, body string) error
}

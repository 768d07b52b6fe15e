/*
Package notify delivers message chunks and fallback notices to the
configured channels: a Telegram channel and, optionally, email.
*/
package notify

import (
	"context"
	"fmt"

	"github.com/shanehull/inforanger/internal/types"
)

// Deliverer is the outbound message capability the orchestrator sends
// through. Delivery is at-least-once; the transport does not guarantee
// idempotency, so callers must tolerate duplicates on retry.
type Deliverer interface {
	// Deliver sends one chunk. The link is attached as a button only when
	// the chunk carries the link affordance.
	Deliver(ctx context.Context, chunk types.MessageChunk, link string) error

	// Notify sends a best-effort plain notice for fatal-error reporting.
	Notify(ctx context.Context, text string) error
}

// DeliveryError is a notification transport failure.
type DeliveryError struct {
	Channel string
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %s", e.Channel, e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

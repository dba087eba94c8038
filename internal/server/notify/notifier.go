// Package notify delivers account emails as a fire-and-forget side effect.
// The core enqueues a message and moves on: delivery runs on a worker
// goroutine, and a failed or dropped notification never affects the account
// operation that triggered it.
package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// Kind selects the message template.
type Kind string

const (
	KindWelcome      Kind = "welcome"
	KindCancellation Kind = "cancellation"
)

// Message is one outbound notification.
type Message struct {
	Email string
	Name  string
	Kind  Kind
}

// Subject renders the message subject line.
func (m Message) Subject() string {
	switch m.Kind {
	case KindWelcome:
		return fmt.Sprintf("Thanks for joining in, %s!", m.Name)
	case KindCancellation:
		return fmt.Sprintf("Sorry to see you go, %s", m.Name)
	default:
		return string(m.Kind)
	}
}

// Body renders the message body.
func (m Message) Body() string {
	switch m.Kind {
	case KindWelcome:
		return fmt.Sprintf("Welcome to the app, %s! Let me know how you get along with the app.", m.Name)
	case KindCancellation:
		return fmt.Sprintf("Dear %s! We'd like to thank you for spending your time with us. Please let us know if there is anything we could have done to keep you on board.", m.Name)
	default:
		return ""
	}
}

// Sender performs the actual delivery (SMTP, SendGrid-like API, ...).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender records outbound mail in the log instead of delivering it.
// Default Sender for development setups without a mail backend.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "outbound mail",
		"to", msg.Email, "kind", string(msg.Kind), "subject", msg.Subject())
	return nil
}

// Notifier is the queue handoff between the core and the Sender.
type Notifier struct {
	queue  chan Message
	sender Sender
	logger logging.Logger
}

// NewNotifier builds a notifier with the given queue capacity.
func NewNotifier(sender Sender, queueSize int, l logging.Logger) *Notifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Notifier{
		queue:  make(chan Message, queueSize),
		sender: sender,
		logger: l.With("module", "notify"),
	}
}

// Enqueue hands a message to the worker without blocking. When the queue is
// full the message is dropped with a warning; callers never see an error.
func (n *Notifier) Enqueue(ctx context.Context, msg Message) {
	select {
	case n.queue <- msg:
	default:
		n.logger.Warn(ctx, "notification queue full, dropping message",
			"to", msg.Email, "kind", string(msg.Kind))
	}
}

// Run delivers queued messages until ctx is cancelled, then drains what is
// already queued. Delivery errors are logged and swallowed.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case msg := <-n.queue:
			n.deliver(ctx, msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-n.queue:
					n.deliver(context.Background(), msg)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, msg Message) {
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error(ctx, "notification delivery failed",
			"to", msg.Email, "kind", string(msg.Kind), "error", err.Error())
	}
}

// Package notifier
package notifier

// Notifier sends best-effort out-of-band notifications (round summaries,
// step failures). Send errors are logged by callers, never escalated.
type Notifier interface {
	Send(msg string) error
}

// Noop discards all notifications. Used when no Telegram credentials are
// configured.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Send(string) error { return nil }

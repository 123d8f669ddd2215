package bridge

import (
	"time"

	"webide-cli/internal/logging"

	"go.uber.org/zap"
)

// Notifier wraps a Host and delivers toasts and haptic pulses to local sinks
// instead of the wrapped host. Everything else is passed through, so a remote
// host's toasts surface in the process that triggered them.
type Notifier struct {
	Host
	toast   func(Toast)
	vibrate func(time.Duration)
	log     *zap.Logger
}

// WithSinks returns h with its notification surface redirected. Either sink
// may be nil, in which case the event is only logged.
func WithSinks(h Host, toast func(Toast), vibrate func(time.Duration)) *Notifier {
	return &Notifier{Host: h, toast: toast, vibrate: vibrate, log: logging.Named("notify")}
}

func (n *Notifier) ShowToast(message, duration string) {
	n.log.Debug("toast", zap.String("message", message), zap.String("duration", duration))
	if n.toast != nil {
		n.toast(Toast{Message: message, Long: duration == ToastLong})
	}
}

func (n *Notifier) Vibrate(ms int64) {
	if n.vibrate != nil {
		n.vibrate(time.Duration(ms) * time.Millisecond)
	}
}

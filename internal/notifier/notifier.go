// Package notifier maintains the persistent push subscription to the
// upstream admin channel and converts NEW_COMPLAINT events into refresh
// triggers. One subscription exists per active view and is torn down with
// the view.
package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/linnemanlabs/go-core/log"
)

// EventNewComplaint is the only message type currently acted upon. Other
// types pass through the ignore hook, an extensibility point.
const EventNewComplaint = "NEW_COMPLAINT"

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// envelope is the minimal shape of a push message; payloads beyond the type
// tag are not inspected because every event triggers a full resync.
type envelope struct {
	Type string `json:"type"`
}

// Hooks receives notifier lifecycle callbacks, typically wired to metrics.
// Nil funcs are skipped.
type Hooks struct {
	OnEvent     func(eventType string, acted bool)
	OnReconnect func()
}

// Notifier subscribes to the push channel and fires the trigger callback on
// each new-complaint event.
type Notifier struct {
	url     string
	token   string
	trigger func()
	logger  log.Logger
	hooks   Hooks
	dialer  *websocket.Dialer
	done    chan struct{}
}

// New creates a notifier for the given websocket URL. trigger is invoked
// once per NEW_COMPLAINT event; coalescing is the trigger's concern.
func New(url, token string, trigger func(), logger log.Logger, hooks Hooks) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		url:     url,
		token:   token,
		trigger: trigger,
		logger:  logger,
		hooks:   hooks,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		done:    make(chan struct{}),
	}
}

// Run dials the push channel and processes events until ctx is cancelled,
// reconnecting with capped exponential backoff when the stream drops.
func (n *Notifier) Run(ctx context.Context) {
	defer close(n.done)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		hdr := http.Header{}
		if n.token != "" {
			hdr.Set("Authorization", "Bearer "+n.token)
		}

		conn, resp, err := n.dialer.DialContext(ctx, n.url, hdr)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			n.logger.Error(ctx, err, "push channel dial failed", "url", n.url, "retry_in", backoff.String())
			if n.hooks.OnReconnect != nil {
				n.hooks.OnReconnect()
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		n.logger.Info(ctx, "push channel connected", "url", n.url)
		backoff = initialBackoff
		n.readLoop(ctx, conn)
	}
}

// Done is closed when Run has returned.
func (n *Notifier) Done() <-chan struct{} {
	return n.done
}

func (n *Notifier) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock ReadJSON on teardown by closing the connection.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()
	defer close(stop)
	defer func() { _ = conn.Close() }()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() == nil {
				n.logger.Warn(ctx, "push channel closed", "error", err.Error())
			}
			return
		}

		acted := env.Type == EventNewComplaint
		if n.hooks.OnEvent != nil {
			n.hooks.OnEvent(env.Type, acted)
		}
		if acted {
			n.trigger()
		}
	}
}

package render

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/vrpbench/internal/artifact"
	"github.com/specialistvlad/vrpbench/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by Live.
const (
	EventGraph  = "graph"
	EventRoutes = "routes"
	EventCosts  = "costs"
)

// ErrNotConnected is returned when a scene is emitted on a closed connection.
var ErrNotConnected = errors.New("socket.io client is not connected")

// LiveOptions configures the socket.io connection.
type LiveOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Live emits scenes as socket.io events so a dashboard can follow a sweep.
type Live struct {
	client *socket.Socket
}

// DialLive connects to a socket.io server and waits for the handshake.
func DialLive(ctx context.Context, o LiveOptions) (*Live, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "live", "url", o.URL)
	logger.Info("Connecting to live renderer...")

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("live renderer URL %q needs a scheme and host", o.URL)
	}
	timeout := o.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Live renderer connected.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Live{client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Close disconnects the client.
func (l *Live) Close() error {
	if l.client != nil {
		l.client.Disconnect()
	}
	return nil
}

func (l *Live) emit(ctx context.Context, event string, payload any) error {
	if l.client == nil || !l.client.Connected() {
		return ErrNotConnected
	}
	ctxlog.FromContext(ctx).Debug("Emitting live scene.", "event", event)
	l.client.Emit(event, payload)
	return nil
}

func (l *Live) RenderGraph(ctx context.Context, s artifact.GraphScene) error {
	return l.emit(ctx, EventGraph, graphPayload(s))
}

func (l *Live) RenderRoutes(ctx context.Context, s artifact.RouteScene) error {
	return l.emit(ctx, EventRoutes, routesPayload(s))
}

func (l *Live) RenderCosts(ctx context.Context, s artifact.CostScene) error {
	return l.emit(ctx, EventCosts, costsPayload(s))
}

package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.PushChannel = (*Push)(nil)
	_ domain.PushChannel = NoPush{}
)

// Event names on the push channel.
const (
	EventNavigationCommand = "navigation_command"
	EventVoiceCommandDebug = "voice_command_debug"
	EventVoiceCommand      = "voice_command"
	// EventRedirect is the older server's way of sending the user home.
	EventRedirect = "redirect"
)

// Engine.IO / Socket.IO packet prefixes used over a websocket transport.
const (
	eioOpen    = "0"
	eioClose   = "1"
	eioPing    = "2"
	eioPong    = "3"
	eioMessage = "4"

	sioConnect      = "0"
	sioDisconnect   = "1"
	sioEvent        = "2"
	sioConnectError = "4"
)

type navigationPayload struct {
	Command string `json:"command"`
}

type debugPayload struct {
	Message string `json:"message"`
}

type redirectPayload struct {
	URL string `json:"url"`
}

type voiceCommandPayload struct {
	Command string `json:"command"`
}

// Push is a Socket.IO client on the default namespace. Inbound handlers
// run on the read goroutine; registering a handler replaces the previous
// one.
type Push struct {
	conn *websocket.Conn
	log  *logger.Logger

	writeMu sync.Mutex

	mu       sync.RWMutex
	onNav    func(domain.NavigationCommand)
	onDebug  func(string)
	closeErr error

	done      chan struct{}
	closeOnce sync.Once
}

// PushOption configures Dial.
type PushOption func(*pushOptions)

type pushOptions struct {
	dialer *websocket.Dialer
	header http.Header
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) PushOption {
	return func(o *pushOptions) { o.dialer = d }
}

// Dial connects to the Socket.IO endpoint of the server at baseURL and
// joins the default namespace.
func Dial(ctx context.Context, baseURL string, log *logger.Logger, opts ...PushOption) (*Push, error) {
	o := pushOptions{dialer: websocket.DefaultDialer, header: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}

	wsURL, err := socketURL(baseURL)
	if err != nil {
		return nil, err
	}
	conn, _, err := o.dialer.DialContext(ctx, wsURL, o.header)
	if err != nil {
		return nil, fmt.Errorf("push: connect %s: %w", wsURL, err)
	}

	p := &Push{conn: conn, log: log, done: make(chan struct{})}
	if err := p.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	go p.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = p.Close()
		case <-p.done:
		}
	}()
	return p, nil
}

// socketURL maps http(s)://host/ to ws(s)://host/socket.io/?EIO=4&transport=websocket.
func socketURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("push: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("push: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/socket.io/"
	q := url.Values{}
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// handshake reads the Engine.IO open packet and joins the default
// namespace.
func (p *Push) handshake() error {
	_, msg, err := p.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("push: read open packet: %w", err)
	}
	if !strings.HasPrefix(string(msg), eioOpen) {
		return fmt.Errorf("push: expected open packet, got %q", msg)
	}
	if err := p.write(eioMessage + sioConnect); err != nil {
		return fmt.Errorf("push: join namespace: %w", err)
	}

	for {
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("push: read connect ack: %w", err)
		}
		packet := string(msg)
		switch {
		case packet == eioPing:
			if err := p.write(eioPong); err != nil {
				return fmt.Errorf("push: pong: %w", err)
			}
		case strings.HasPrefix(packet, eioMessage+sioConnect):
			p.log.Debug("push: connected %s", strings.TrimPrefix(packet, eioMessage+sioConnect))
			return nil
		case strings.HasPrefix(packet, eioMessage+sioConnectError):
			return fmt.Errorf("push: connect refused: %s", strings.TrimPrefix(packet, eioMessage+sioConnectError))
		default:
			p.log.Debug("push: ignoring %q before connect ack", packet)
		}
	}
}

// OnNavigationCommand registers the navigation handler.
func (p *Push) OnNavigationCommand(handler func(domain.NavigationCommand)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onNav = handler
}

// OnDebugTrace registers the handler for server debug traces.
func (p *Push) OnDebugTrace(handler func(message string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDebug = handler
}

// EmitVoiceCommand sends one recognised utterance to the server.
func (p *Push) EmitVoiceCommand(ctx context.Context, command string) error {
	select {
	case <-p.done:
		return domain.ErrNoPushChannel
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	packet, err := encodeEvent(EventVoiceCommand, voiceCommandPayload{Command: command})
	if err != nil {
		return err
	}
	if err := p.write(packet); err != nil {
		return fmt.Errorf("push: emit %s: %w", EventVoiceCommand, err)
	}
	return nil
}

// Done is closed when the connection ends.
func (p *Push) Done() <-chan struct{} { return p.done }

// Err returns the error that ended the connection, if any.
func (p *Push) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closeErr
}

// Close leaves the namespace and closes the connection. It is idempotent.
func (p *Push) Close() error {
	p.closeOnce.Do(func() {
		_ = p.write(eioMessage + sioDisconnect)
		_ = p.conn.Close()
	})
	<-p.done
	return nil
}

func (p *Push) write(packet string) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, []byte(packet))
}

func (p *Push) readLoop() {
	defer close(p.done)
	for {
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			p.setErr(err)
			return
		}
		packet := string(msg)
		switch {
		case packet == eioPing:
			if err := p.write(eioPong); err != nil {
				p.setErr(err)
				return
			}
		case packet == eioClose, packet == eioMessage+sioDisconnect:
			p.log.Info("push: server closed the channel")
			_ = p.conn.Close()
			return
		case strings.HasPrefix(packet, eioMessage+sioEvent):
			p.dispatch(strings.TrimPrefix(packet, eioMessage+sioEvent))
		default:
			p.log.Debug("push: ignoring packet %q", packet)
		}
	}
}

func (p *Push) setErr(err error) {
	if errors.Is(err, net.ErrClosed) || websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}
	p.mu.Lock()
	if p.closeErr == nil {
		p.closeErr = err
	}
	p.mu.Unlock()
	p.log.Warn("push: connection lost: %v", err)
}

// dispatch decodes an event frame body: an optional ack id followed by a
// JSON array of [name, payload].
func (p *Push) dispatch(body string) {
	body = strings.TrimLeft(body, "0123456789")
	var frame []json.RawMessage
	if err := json.Unmarshal([]byte(body), &frame); err != nil || len(frame) == 0 {
		p.log.Warn("push: malformed event %q", body)
		return
	}
	var name string
	if err := json.Unmarshal(frame[0], &name); err != nil {
		p.log.Warn("push: event without a name: %q", body)
		return
	}
	var data json.RawMessage
	if len(frame) > 1 {
		data = frame[1]
	}

	p.mu.RLock()
	onNav, onDebug := p.onNav, p.onDebug
	p.mu.RUnlock()

	switch name {
	case EventNavigationCommand:
		var nav navigationPayload
		if err := json.Unmarshal(data, &nav); err != nil {
			p.log.Warn("push: bad %s payload: %v", name, err)
			return
		}
		if onNav != nil {
			onNav(domain.NavigationCommand{Command: nav.Command})
		}
	case EventRedirect:
		var r redirectPayload
		if err := json.Unmarshal(data, &r); err != nil {
			p.log.Warn("push: bad %s payload: %v", name, err)
			return
		}
		if r.URL != "/" {
			p.log.Info("push: ignoring redirect to %q", r.URL)
			return
		}
		if onNav != nil {
			onNav(domain.NavigationCommand{Command: domain.NavGoHome})
		}
	case EventVoiceCommandDebug:
		var d debugPayload
		if err := json.Unmarshal(data, &d); err != nil {
			p.log.Warn("push: bad %s payload: %v", name, err)
			return
		}
		if onDebug != nil {
			onDebug(d.Message)
		}
	default:
		p.log.Debug("push: unhandled event %q", name)
	}
}

func encodeEvent(name string, payload any) (string, error) {
	frame, err := json.Marshal([]any{name, payload})
	if err != nil {
		return "", fmt.Errorf("push: encode %s: %w", name, err)
	}
	return eioMessage + sioEvent + string(frame), nil
}

// ── NoPush ───────────────────────────────────────────────────────

// NoPush stands in when the push channel could not be established.
type NoPush struct{}

// OnNavigationCommand does nothing.
func (NoPush) OnNavigationCommand(func(domain.NavigationCommand)) {}

// OnDebugTrace does nothing.
func (NoPush) OnDebugTrace(func(string)) {}

// EmitVoiceCommand always fails with domain.ErrNoPushChannel.
func (NoPush) EmitVoiceCommand(context.Context, string) error { return domain.ErrNoPushChannel }

// Close does nothing.
func (NoPush) Close() error { return nil }

package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// socketServer speaks just enough Socket.IO to drive Push. script runs
// after the namespace is joined.
func socketServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/socket.io/" || r.URL.Query().Get("EIO") != "4" {
			t.Errorf("unexpected socket path %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"abc","pingInterval":25000,"pingTimeout":20000}`))
		_, msg, err := conn.ReadMessage()
		if err != nil || string(msg) != "40" {
			t.Errorf("expected namespace join, got %q (%v)", msg, err)
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"xyz"}`))
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Errorf("server read: %v", err)
		return ""
	}
	return string(msg)
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:5000", "ws://localhost:5000/socket.io/?EIO=4&transport=websocket"},
		{"https://kitchen.example/", "wss://kitchen.example/socket.io/?EIO=4&transport=websocket"},
	}
	for _, tt := range tests {
		got, err := socketURL(tt.in)
		if err != nil {
			t.Fatalf("socketURL(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("socketURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := socketURL("ftp://x"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

func TestPushDeliversNavigationAndAnswersPing(t *testing.T) {
	serverDone := make(chan struct{})
	ponged := make(chan struct{})
	srv := socketServer(t, func(conn *websocket.Conn) {
		defer close(serverDone)
		if got := readText(t, conn); got != `42["voice_command",{"command":"capture"}]` {
			t.Errorf("unexpected outbound frame %q", got)
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`42["voice_command_debug",{"message":"heard capture"}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`42["navigation_command",{"command":"go_home"}]`))
		conn.WriteMessage(websocket.TextMessage, []byte("2"))
		if got := readText(t, conn); got != "3" {
			t.Errorf("expected pong, got %q", got)
		}
		close(ponged)
		readText(t, conn) // disconnect
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nav := make(chan domain.NavigationCommand, 1)
	debug := make(chan string, 1)

	p, err := Dial(ctx, srv.URL, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	p.OnNavigationCommand(func(cmd domain.NavigationCommand) { nav <- cmd })
	p.OnDebugTrace(func(msg string) { debug <- msg })
	if err := p.EmitVoiceCommand(ctx, "capture"); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case cmd := <-nav:
		if cmd.Command != domain.NavGoHome {
			t.Errorf("unexpected command %q", cmd.Command)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("navigation command not delivered")
	}
	select {
	case msg := <-debug:
		if msg != "heard capture" {
			t.Errorf("unexpected debug trace %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debug trace not delivered")
	}

	select {
	case <-ponged:
	case <-time.After(2 * time.Second):
		t.Fatal("ping not answered")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-serverDone

	if err := p.EmitVoiceCommand(ctx, "late"); err != domain.ErrNoPushChannel {
		t.Errorf("expected ErrNoPushChannel after close, got %v", err)
	}
}

func TestPushMapsLegacyRedirectToGoHome(t *testing.T) {
	srv := socketServer(t, func(conn *websocket.Conn) {
		readText(t, conn) // client is ready
		conn.WriteMessage(websocket.TextMessage, []byte(`42["redirect",{"url":"/elsewhere"}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`42["redirect",{"url":"/"}]`))
		readText(t, conn)
	})

	p, err := Dial(context.Background(), srv.URL, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer p.Close()

	nav := make(chan domain.NavigationCommand, 2)
	p.OnNavigationCommand(func(cmd domain.NavigationCommand) { nav <- cmd })
	if err := p.EmitVoiceCommand(context.Background(), "go home"); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case cmd := <-nav:
		if cmd.Command != domain.NavGoHome {
			t.Errorf("unexpected command %q", cmd.Command)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("redirect not mapped")
	}
	select {
	case cmd := <-nav:
		t.Errorf("redirect elsewhere should be ignored, got %+v", cmd)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPushConnectRefused(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"abc"}`))
		conn.ReadMessage()
		conn.WriteMessage(websocket.TextMessage, []byte(`44{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	_, err := Dial(context.Background(), srv.URL, logger.New(logger.LevelOff, nil))
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected connect refusal, got %v", err)
	}
}

func TestNoPush(t *testing.T) {
	var p domain.PushChannel = NoPush{}
	p.OnNavigationCommand(func(domain.NavigationCommand) { t.Error("unexpected call") })
	if err := p.EmitVoiceCommand(context.Background(), "x"); err != domain.ErrNoPushChannel {
		t.Errorf("expected ErrNoPushChannel, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

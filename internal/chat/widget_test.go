package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// chatServer фиксирует открытие/закрытие потоков и отвечает эхом на каждое сообщение
type chatServer struct {
	mu       sync.Mutex
	events   []string
	open     int
	maxOpen  int
	received []map[string]string
	paths    []string
}

func (cs *chatServer) record(event string, delta int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.events = append(cs.events, event)
	cs.open += delta
	if cs.open > cs.maxOpen {
		cs.maxOpen = cs.open
	}
}

func (cs *chatServer) handler(t *testing.T) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		require.Len(t, parts, 4)
		recipient := parts[3]

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		cs.mu.Lock()
		cs.paths = append(cs.paths, r.URL.EscapedPath())
		cs.mu.Unlock()
		cs.record("open:"+recipient, 1)

		closed := false
		conn.SetCloseHandler(func(code int, _ string) error {
			closed = true
			cs.record("close:"+recipient, -1)
			msg := websocket.FormatCloseMessage(code, "")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		})

		for {
			var env map[string]string
			if err := conn.ReadJSON(&env); err != nil {
				if !closed {
					cs.record("close:"+recipient, -1)
				}
				return
			}
			cs.mu.Lock()
			cs.received = append(cs.received, env)
			cs.mu.Unlock()

			_ = conn.WriteJSON(map[string]string{
				"sender":    recipient,
				"recipient": env["sender"],
				"content":   "re: " + env["message"],
			})
		}
	}
}

func startServer(t *testing.T) (*chatServer, string) {
	cs := &chatServer{}
	srv := httptest.NewServer(cs.handler(t))
	t.Cleanup(srv.Close)
	return cs, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSwitchingRecipientClosesPreviousStream(t *testing.T) {
	cs, wsURL := startServer(t)
	w := NewWidget(wsURL, "anna@example.com", nil, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, w.Select(ctx, "tutor1", "", nil))
	require.NoError(t, w.Select(ctx, "tutor2", "", nil))
	require.NoError(t, w.Select(ctx, "tutor3", "", nil))
	w.Close()

	require.Eventually(t, func() bool {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		return len(cs.events) == 6
	}, 2*time.Second, 10*time.Millisecond)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	assert.Equal(t, []string{
		"open:tutor1", "close:tutor1",
		"open:tutor2", "close:tutor2",
		"open:tutor3", "close:tutor3",
	}, cs.events)
	assert.Equal(t, 1, cs.maxOpen)
	assert.Equal(t, "/ws/chat/anna%40example.com/tutor1/", cs.paths[0])
}

func TestSendEnvelopeAndReceive(t *testing.T) {
	cs, wsURL := startServer(t)

	incoming := make(chan model.Message, 1)
	w := NewWidget(wsURL, "anna@example.com", nil, func(m model.Message) { incoming <- m }, zap.NewNop())
	t.Cleanup(w.Close)

	history := []model.Message{{Sender: "tutor1", Content: "hello"}}
	require.NoError(t, w.Select(context.Background(), "tutor1", "", history))
	assert.Equal(t, "tutor1", w.Recipient())

	require.NoError(t, w.Send("  can we move the lesson?  "))

	select {
	case m := <-incoming:
		assert.Equal(t, "tutor1", m.Sender)
		assert.Equal(t, "re: can we move the lesson?", m.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("no message from server")
	}

	cs.mu.Lock()
	require.Len(t, cs.received, 1)
	raw, _ := json.Marshal(cs.received[0])
	cs.mu.Unlock()
	assert.JSONEq(t, `{"message":"can we move the lesson?","recipient":"tutor1","sender":"anna@example.com"}`, string(raw))

	transcript := w.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, "hello", transcript[0].Content)
	assert.Equal(t, model.YouSender, transcript[1].Sender)
	assert.Equal(t, "re: can we move the lesson?", transcript[2].Content)
}

func TestSendWithoutStream(t *testing.T) {
	w := NewWidget("ws://127.0.0.1:1", "anna@example.com", nil, nil, zap.NewNop())
	assert.ErrorIs(t, w.Send("hi"), ErrNoStream)
	assert.ErrorIs(t, w.Send("   "), ErrEmptyMessage)
	assert.Error(t, w.Select(context.Background(), " ", "", nil))
}

func TestDroppedStreamIsNotRedialed(t *testing.T) {
	var (
		mu    sync.Mutex
		dials int
	)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		dials++
		mu.Unlock()
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	w := NewWidget("ws"+strings.TrimPrefix(srv.URL, "http"), "anna@example.com", nil, nil, zap.NewNop())
	t.Cleanup(w.Close)
	ctx := context.Background()

	waitDropped := func() {
		w.mu.Lock()
		s := w.current
		w.mu.Unlock()
		require.NotNil(t, s)
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("stream still open")
		}
	}

	require.NoError(t, w.Select(ctx, "tutor1", "", nil))
	waitDropped()

	assert.ErrorIs(t, w.Send("hi"), ErrNoStream)
	assert.ErrorIs(t, w.Send("again"), ErrNoStream)
	assert.Empty(t, w.Transcript())

	mu.Lock()
	assert.Equal(t, 1, dials)
	mu.Unlock()

	require.NoError(t, w.Select(ctx, "tutor1", "", nil))
	waitDropped()

	mu.Lock()
	assert.Equal(t, 2, dials)
	mu.Unlock()
}

func TestHubKeepsOneWidgetPerUser(t *testing.T) {
	_, wsURL := startServer(t)

	var mu sync.Mutex
	delivered := map[int64]int{}
	hub := NewHub(wsURL, func(id int64, _ model.Message) {
		mu.Lock()
		delivered[id]++
		mu.Unlock()
	}, zap.NewNop())
	t.Cleanup(hub.CloseAll)

	a := hub.Widget(1, "a@example.com")
	assert.Same(t, a, hub.Widget(1, "a@example.com"))
	assert.NotSame(t, a, hub.Widget(2, "b@example.com"))

	w := hub.Widget(1, "a@example.com")
	require.NoError(t, w.Select(context.Background(), "tutor", "", nil))
	require.NoError(t, w.Send("ping"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered[1] == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Close(1)
	_, ok := hub.Lookup(1)
	assert.False(t, ok)
}

func TestStreamURL(t *testing.T) {
	assert.Equal(t, "wss://api.example.com/ws/chat/jan%2Bkid%40example.com/Maria%20K/",
		StreamURL("wss://api.example.com/", "jan+kid@example.com", "Maria K"))
	assert.Equal(t, "ws://h/ws/chat/jan%20kid%40example.com/tutor/",
		StreamURL("ws://h", "jan kid@example.com", "tutor"))
}

func TestDecodeFrame(t *testing.T) {
	msg, err := decodeFrame([]byte(`{"sender":"anna","recipient":"bob","content":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, model.Message{Sender: "anna", Recipient: "bob", Content: "hi"}, msg)

	msg, err = decodeFrame([]byte(`{"sender":{"username":"anna","email":"a@example.com"},"content":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "anna", msg.Sender)

	msg, err = decodeFrame([]byte(`{"sender":{"email":"a@example.com"},"content":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", msg.Sender)

	_, err = decodeFrame([]byte(`{"sender":"anna","content":""}`))
	assert.Error(t, err)

	_, err = decodeFrame([]byte(`not json`))
	assert.Error(t, err)
}

func TestHubClosesOldWidgetOnEmailChange(t *testing.T) {
	cs, wsURL := startServer(t)
	hub := NewHub(wsURL, nil, zap.NewNop())
	t.Cleanup(hub.CloseAll)
	ctx := context.Background()

	old := hub.Widget(1, "a@example.com")
	require.NoError(t, old.Select(ctx, "tutor", "", nil))

	fresh := hub.Widget(1, "b@example.com")
	assert.NotSame(t, old, fresh)
	assert.Empty(t, old.Recipient())

	cs.mu.Lock()
	assert.Equal(t, []string{"open:tutor", "close:tutor"}, cs.events)
	cs.mu.Unlock()

	require.NoError(t, fresh.Select(ctx, "tutor", "", nil))
	fresh.Close()

	require.Eventually(t, func() bool {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		return len(cs.events) == 4
	}, 2*time.Second, 10*time.Millisecond)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	assert.Equal(t, 1, cs.maxOpen)
	assert.Equal(t, "/ws/chat/b%40example.com/tutor/", cs.paths[1])
}

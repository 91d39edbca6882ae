package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/metrics"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

var (
	// ErrNoStream собеседник не выбран или соединение уже закрыто
	ErrNoStream = errors.New("no open chat stream")
	// ErrEmptyMessage пустой текст не отправляется
	ErrEmptyMessage = errors.New("empty message")
)

const closeWait = 2 * time.Second

// stream одно соединение с конкретным собеседником
type stream struct {
	recipient string
	conn      *websocket.Conn
	done      chan struct{}
	writeMu   sync.Mutex
}

// Widget чат одного пользователя: не больше одного открытого потока.
// Смена собеседника закрывает старый поток до открытия нового.
type Widget struct {
	wsURL     string
	email     string
	dialer    *websocket.Dialer
	onMessage func(model.Message)
	logger    *zap.Logger

	switchMu sync.Mutex // сериализует Select и Close

	mu         sync.Mutex
	current    *stream
	transcript []model.Message
}

// NewWidget; onMessage вызывается из горутины чтения для каждого входящего сообщения
func NewWidget(wsURL, email string, dialer *websocket.Dialer, onMessage func(model.Message), logger *zap.Logger) *Widget {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &Widget{
		wsURL:     strings.TrimRight(wsURL, "/"),
		email:     email,
		dialer:    dialer,
		onMessage: onMessage,
		logger:    logger,
	}
}

// StreamURL адрес потока: /ws/chat/<email>/<recipient>/
func StreamURL(wsURL, email, recipient string) string {
	return fmt.Sprintf("%s/ws/chat/%s/%s/",
		strings.TrimRight(wsURL, "/"),
		escapeComponent(email),
		url.PathEscape(recipient))
}

// escapeComponent кодирует сегмент как encodeURIComponent: пробел в %20, а не в +
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Select переключает чат на recipient. history заменяет текущую переписку.
func (w *Widget) Select(ctx context.Context, recipient, token string, history []model.Message) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("select recipient: empty name")
	}

	w.switchMu.Lock()
	defer w.switchMu.Unlock()

	w.closeCurrent()

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := w.dialer.DialContext(ctx, StreamURL(w.wsURL, w.email, recipient), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial chat stream: %w", err)
	}

	s := &stream{recipient: recipient, conn: conn, done: make(chan struct{})}

	w.mu.Lock()
	w.current = s
	w.transcript = append([]model.Message(nil), history...)
	w.mu.Unlock()

	metrics.ChatStreamOpened()
	w.logger.Debug("Chat stream opened", zap.String("recipient", recipient))

	go w.readLoop(s)
	return nil
}

// Send отправляет сообщение текущему собеседнику и сразу добавляет его в переписку
func (w *Widget) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	w.mu.Lock()
	s := w.current
	w.mu.Unlock()
	if s == nil {
		return ErrNoStream
	}
	select {
	case <-s.done:
		return ErrNoStream
	default:
	}

	out := model.Outgoing{Message: text, Recipient: s.recipient, Sender: w.email}
	s.writeMu.Lock()
	err := s.conn.WriteJSON(out)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("send chat message: %w", err)
	}
	metrics.ChatMessage("out")

	w.mu.Lock()
	if w.current == s {
		w.transcript = append(w.transcript, model.Message{Sender: model.YouSender, Recipient: s.recipient, Content: text})
	}
	w.mu.Unlock()
	return nil
}

// Recipient текущий собеседник; пусто если поток не открыт
func (w *Widget) Recipient() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return ""
	}
	return w.current.recipient
}

// Transcript копия переписки в порядке получения
func (w *Widget) Transcript() []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Message(nil), w.transcript...)
}

// Close закрывает текущий поток
func (w *Widget) Close() {
	w.switchMu.Lock()
	defer w.switchMu.Unlock()
	w.closeCurrent()
}

// closeCurrent шлёт close frame и ждёт завершения чтения; вызывается под switchMu
func (w *Widget) closeCurrent() {
	w.mu.Lock()
	s := w.current
	w.current = nil
	w.mu.Unlock()
	if s == nil {
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	s.writeMu.Unlock()

	select {
	case <-s.done:
	case <-time.After(closeWait):
	}
	_ = s.conn.Close()
	<-s.done

	w.logger.Debug("Chat stream closed", zap.String("recipient", s.recipient))
}

func (w *Widget) readLoop(s *stream) {
	defer func() {
		metrics.ChatStreamClosed()
		close(s.done)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Debug("Chat stream stopped", zap.String("recipient", s.recipient), zap.Error(err))
			}
			return
		}

		msg, err := decodeFrame(data)
		if err != nil {
			w.logger.Warn("Skipping chat frame", zap.Error(err))
			continue
		}
		metrics.ChatMessage("in")

		w.mu.Lock()
		if w.current != s {
			w.mu.Unlock()
			return
		}
		w.transcript = append(w.transcript, msg)
		w.mu.Unlock()

		if w.onMessage != nil {
			w.onMessage(msg)
		}
	}
}

// frame входящий кадр; sender приходит строкой, в старых версиях сервера объектом
type frame struct {
	Sender    json.RawMessage `json:"sender"`
	Recipient string          `json:"recipient"`
	Content   string          `json:"content"`
}

type senderObject struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// decodeFrame входящий кадр {"sender","recipient","content"}
func decodeFrame(data []byte) (model.Message, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Message{}, fmt.Errorf("decode chat frame: %w", err)
	}
	if f.Content == "" {
		return model.Message{}, fmt.Errorf("decode chat frame: empty content")
	}

	msg := model.Message{Recipient: f.Recipient, Content: f.Content}
	if len(f.Sender) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(f.Sender, &msg.Sender); err == nil {
		return msg, nil
	}
	var obj senderObject
	if err := json.Unmarshal(f.Sender, &obj); err != nil {
		return model.Message{}, fmt.Errorf("decode chat sender: %w", err)
	}
	msg.Sender = obj.Username
	if msg.Sender == "" {
		msg.Sender = obj.Email
	}
	return msg, nil
}

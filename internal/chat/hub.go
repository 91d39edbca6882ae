package chat

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// DeliverFunc пересылает входящее сообщение пользователю Telegram
type DeliverFunc func(telegramID int64, msg model.Message)

// Hub держит по одному чату на пользователя Telegram
type Hub struct {
	wsURL   string
	dialer  *websocket.Dialer
	deliver DeliverFunc
	logger  *zap.Logger

	mu      sync.Mutex
	widgets map[int64]*Widget
}

func NewHub(wsURL string, deliver DeliverFunc, logger *zap.Logger) *Hub {
	return &Hub{
		wsURL:   wsURL,
		dialer:  websocket.DefaultDialer,
		deliver: deliver,
		logger:  logger.Named("chat"),
		widgets: make(map[int64]*Widget),
	}
}

// Widget возвращает чат пользователя; при смене email старый чат закрывается
func (h *Hub) Widget(telegramID int64, email string) *Widget {
	h.mu.Lock()
	old, ok := h.widgets[telegramID]
	if ok && old.email == email {
		h.mu.Unlock()
		return old
	}

	w := NewWidget(h.wsURL, email, h.dialer, func(msg model.Message) {
		if h.deliver != nil {
			h.deliver(telegramID, msg)
		}
	}, h.logger.With(zap.Int64("telegram_id", telegramID)))
	h.widgets[telegramID] = w
	h.mu.Unlock()

	if ok {
		old.Close()
	}
	return w
}

// Lookup чат без создания
func (h *Hub) Lookup(telegramID int64) (*Widget, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.widgets[telegramID]
	return w, ok
}

// Close закрывает и забывает чат пользователя (выход, /cancel)
func (h *Hub) Close(telegramID int64) {
	h.mu.Lock()
	w, ok := h.widgets[telegramID]
	delete(h.widgets, telegramID)
	h.mu.Unlock()

	if ok {
		w.Close()
	}
}

// CloseAll при остановке бота
func (h *Hub) CloseAll() {
	h.mu.Lock()
	widgets := h.widgets
	h.widgets = make(map[int64]*Widget)
	h.mu.Unlock()

	for _, w := range widgets {
		w.Close()
	}
}

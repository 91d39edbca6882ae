package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring_bot",
		Name:      "api_requests_total",
		Help:      "Requests to the tutoring API by endpoint and status code.",
	}, []string{"method", "endpoint", "code"})

	sessionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring_bot",
		Name:      "session_checks_total",
		Help:      "Session guard outcomes.",
	}, []string{"outcome"})

	sessionRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring_bot",
		Name:      "session_refresh_total",
		Help:      "Access token refresh attempts by result.",
	}, []string{"result"})

	chatStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tutoring_bot",
		Name:      "chat_streams_open",
		Help:      "Currently open chat WebSocket streams.",
	})

	chatMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring_bot",
		Name:      "chat_messages_total",
		Help:      "Chat messages by direction.",
	}, []string{"direction"})

	reminders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tutoring_bot",
		Name:      "lesson_reminders_sent_total",
		Help:      "Lesson reminders delivered to Telegram.",
	})
)

// APIRequest учитывает запрос к API; code 0 означает сетевую ошибку
func APIRequest(method, endpoint string, code int) {
	apiRequests.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
}

// SessionCheck outcome: valid, refreshed, redirected
func SessionCheck(outcome string) {
	sessionChecks.WithLabelValues(outcome).Inc()
}

func SessionRefresh(ok bool) {
	result := "failed"
	if ok {
		result = "ok"
	}
	sessionRefreshes.WithLabelValues(result).Inc()
}

func ChatStreamOpened() { chatStreams.Inc() }
func ChatStreamClosed() { chatStreams.Dec() }

// ChatMessage direction: in, out
func ChatMessage(direction string) {
	chatMessages.WithLabelValues(direction).Inc()
}

func ReminderSent() { reminders.Inc() }

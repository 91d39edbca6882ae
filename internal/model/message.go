package model

// YouSender отправитель собственных сообщений в переписке
const YouSender = "You"

// Message сообщение переписки. Порядок определяется порядком получения.
type Message struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient,omitempty"`
	Content   string `json:"content"`
}

// Outgoing конверт исходящего сообщения в чат-сокет
type Outgoing struct {
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

// Contact собеседник из списка переписок
type Contact struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

package rabbitmq

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// NotificationsExchange is the fanout exchange consumed by the push
// notification workers that reach resident devices.
const NotificationsExchange = "resident_notifications"

// ResidentNotification is the payload delivered to a resident's devices
type ResidentNotification struct {
	ResidentID  string `json:"resident_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	SessionID   string `json:"session_id,omitempty"`
	ApprovalID  string `json:"approval_id,omitempty"`
	DetectionID string `json:"detection_id,omitempty"`
	SentAt      string `json:"sent_at"`
}

// Publisher defines the interface for publishing messages to RabbitMQ.
type Publisher interface {
	Publish(exchange string, body []byte) error
	NotifyResident(notification ResidentNotification) error
}

type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher creates a new AMQPPublisher and connects to RabbitMQ.
func NewAMQPPublisher(amqpURL string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

// Publish publishes a message to the given exchange.
func (p *AMQPPublisher) Publish(exchange string, body []byte) error {
	err := p.channel.ExchangeDeclare(
		exchange,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}
	return p.channel.Publish(
		exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// NotifyResident publishes a resident notification on the notifications
// exchange. Delivery past the broker is fire-and-forget.
func (p *AMQPPublisher) NotifyResident(notification ResidentNotification) error {
	notification.SentAt = time.Now().UTC().Format(time.RFC3339)
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return p.Publish(NotificationsExchange, body)
}

// Close closes the RabbitMQ connection and channel.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

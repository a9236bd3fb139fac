package outbox

import "time"

// OutboxMessage represents a message stored in the transactional outbox.
type OutboxMessage struct {
	ID           int64     `json:"id"`
	QueueName    string    `json:"queueName"`
	ExchangeName string    `json:"exchangeName"`
	RoutingKey   string    `json:"routingKey"`
	Payload      []byte    `json:"payload"`
	ContentType  string    `json:"contentType"`
	RetryCount   int       `json:"retryCount"`
	MaxRetries   int       `json:"maxRetries"`
	LastError    string    `json:"lastError"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	NextRetryAt  time.Time `json:"nextRetryAt"`
}

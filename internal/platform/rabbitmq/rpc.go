package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RPC sends request messages and pairs their replies by correlation id over
// an exclusive reply queue. It implements the action client's Requester.
type RPC struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
	replyQueue string

	mu      sync.Mutex
	pending map[string]chan []byte
}

// NewRPC opens a channel, declares a server-named exclusive reply queue and
// starts routing replies to their waiting requests.
func NewRPC(connection *amqp.Connection, exchange, routingKey string) (*RPC, error) {
	channel, err := connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("can't open channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("can't declare reply queue: %w", err)
	}

	consumerID, err := uuid.NewUUID()
	if err != nil {
		return nil, fmt.Errorf("can't create consumer ID: %w", err)
	}

	replies, err := channel.Consume(
		queue.Name,
		consumerID.String(),
		true, // auto acknowledge
		true, // exclusive
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("can't consume reply queue: %w", err)
	}

	rpc := &RPC{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		replyQueue: queue.Name,
		pending:    make(map[string]chan []byte),
	}

	go rpc.routeReplies(replies)

	return rpc, nil
}

// Request publishes message and blocks until its reply arrives or ctx ends.
func (r *RPC) Request(ctx context.Context, message []byte) ([]byte, error) {
	correlationID := uuid.NewString()

	replyChan := make(chan []byte, 1)
	r.mu.Lock()
	r.pending[correlationID] = replyChan
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, correlationID)
		r.mu.Unlock()
	}()

	msg := amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		ReplyTo:       r.replyQueue,
		Body:          message,
	}

	err := r.channel.PublishWithContext(ctx, r.exchange, r.routingKey, false, false, msg)
	if err != nil {
		return nil, fmt.Errorf("can't publish request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-replyChan:
		return reply, nil
	}
}

func (r *RPC) routeReplies(replies <-chan amqp.Delivery) {
	for reply := range replies {
		r.mu.Lock()
		replyChan, waiting := r.pending[reply.CorrelationId]
		if waiting {
			delete(r.pending, reply.CorrelationId)
		}
		r.mu.Unlock()

		if waiting {
			replyChan <- reply.Body
		}
	}
}

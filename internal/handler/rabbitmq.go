package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"pricetracker/internal/platform/rabbitmq"
)

// RMQHandler serves the action protocol over RabbitMQ.
type RMQHandler struct {
	rmq    *rabbitmq.RabbitMQ
	ledger Ledger
	logger *zerolog.Logger
}

// NewHandler returns new RMQHandler.
func NewHandler(rmq *rabbitmq.RabbitMQ, ledger Ledger, logger *zerolog.Logger) *RMQHandler {
	return &RMQHandler{
		rmq:    rmq,
		ledger: ledger,
		logger: logger,
	}
}

// Start starts consuming and handling action requests from queue.
func (h *RMQHandler) Start(ctx context.Context, queue string) error {
	errorsChan, err := h.rmq.Consume(ctx, queue, func(ctx context.Context, delivery rabbitmq.Delivery) ([]byte, error) {
		response := Dispatch(ctx, h.ledger, delivery.Body)

		if !response.Success {
			h.logger.Debug().
				Str("error", response.Error).
				Msg("request failed")
		}

		reply, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("can't encode response: %w", err)
		}

		return reply, nil
	})
	if err != nil {
		return err
	}

	go func() {
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return nil
}

package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"delivered-status-service/internal/dto"
	"delivered-status-service/internal/model"
	"delivered-status-service/internal/service"
)

// OrderInitializer crea la orden a partir del evento.
type OrderInitializer interface {
	InitOrder(ctx context.Context, req dto.InitOrderRequest) (*model.Order, error)
}

type PlaceOrderConsumer struct {
	Service OrderInitializer
	logger  *slog.Logger
}

func NewPlaceOrderConsumer(s OrderInitializer, logger *slog.Logger) *PlaceOrderConsumer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PlaceOrderConsumer{Service: s, logger: logger}
}

// Mensaje publicado en el exchange order_placed.
type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Exchange      string `json:"exchange"`
	RoutingKey    string `json:"routing_key"`
	Message       struct {
		OrderID  string  `json:"orderId"`
		Number   string  `json:"number"`
		CartID   string  `json:"cartId"`
		UserID   string  `json:"userId"`
		Currency string  `json:"currency"`
		Total    float64 `json:"total"`
		Articles []struct {
			ArticleID string  `json:"articleId"`
			Name      string  `json:"name"`
			Quantity  int     `json:"quantity"`
			Total     float64 `json:"total"`
		} `json:"articles"`
		// Si el JSON no trae "billing" queda vacío y la orden no recibe email.
		Billing dto.BillingDTO `json:"billing"`
	} `json:"message"`
}

func (c *PlaceOrderConsumer) Handle(ctx context.Context, msg []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.logger.ErrorContext(ctx, "place_order: invalid message", "error", err)
		return err
	}

	req := dto.InitOrderRequest{
		OrderID:  event.Message.OrderID,
		Number:   event.Message.Number,
		UserID:   event.Message.UserID,
		Currency: event.Message.Currency,
		Total:    event.Message.Total,
		Billing:  event.Message.Billing,
	}
	for _, a := range event.Message.Articles {
		req.Items = append(req.Items, dto.LineItemDTO{
			ProductID: a.ArticleID,
			Name:      a.Name,
			Quantity:  a.Quantity,
			Total:     a.Total,
		})
	}

	_, err := c.Service.InitOrder(ctx, req)
	if errors.Is(err, service.ErrOrderAlreadyExists) {
		c.logger.InfoContext(ctx, "place_order: order already initialized", "order_id", req.OrderID)
		return nil
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "place_order: init failed", "order_id", req.OrderID, "error", err)
		return err
	}

	c.logger.InfoContext(ctx, "place_order: order initialized", "order_id", req.OrderID, "correlation_id", event.CorrelationID)
	return nil
}

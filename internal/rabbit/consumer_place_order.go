package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"course-order-service/internal/service"
)

type PlaceOrderConsumer struct {
	Service *service.OrderService
	log     *slog.Logger
}

func NewPlaceOrderConsumer(s *service.OrderService, log *slog.Logger) *PlaceOrderConsumer {
	return &PlaceOrderConsumer{Service: s, log: log}
}

// PlacedOrderMessage es la compra hecha por fuera de nuestro checkout
// (otra tienda del grupo publica al mismo exchange). Trae al comprador
// completo porque acá no hay token del que sacar la identidad.
type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Message       struct {
		CourseID string  `json:"courseId"`
		Amount   float64 `json:"amount"`
		User     struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
		} `json:"user"`
	} `json:"message"`
}

func (c *PlaceOrderConsumer) Handle(msg []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.log.Error("parsing order_placed message", slog.Any("error", err))
		return err
	}

	order, err := c.Service.Create(
		context.Background(),
		service.Identity{
			Name:  event.Message.User.Name,
			Email: event.Message.User.Email,
			Phone: event.Message.User.Phone,
		},
		event.Message.CourseID,
		event.Message.Amount,
	)
	if err != nil {
		// Duplicado no es un error acá: el exchange es fanout y el mismo
		// evento puede llegar más de una vez.
		if errors.Is(err, service.ErrAlreadyPurchased) {
			c.log.Info("order_placed ignored, active purchase exists",
				slog.String("course", event.Message.CourseID),
				slog.String("user", event.Message.User.Email))
			return nil
		}
		c.log.Error("creating order from order_placed", slog.Any("error", err))
		return err
	}

	c.log.Info("order created from order_placed",
		slog.String("order_id", order.OrderID),
		slog.String("correlation_id", event.CorrelationID))
	return nil
}

// setup.go
package rabbit

import (
	"log/slog"

	"course-order-service/internal/service"

	"github.com/rabbitmq/amqp091-go"
)

func SetupConsumers(ch *amqp091.Channel, svc *service.OrderService, log *slog.Logger) {
	consumer := NewPlaceOrderConsumer(svc, log)

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		"course_order_service_orders", // cola exclusiva para este micro
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("declaring queue", slog.Any("error", err))
		return
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"",             // fanout ignora routing key
		"order_placed", // compras hechas fuera del checkout propio
		false,
		nil,
	)
	if err != nil {
		log.Error("binding exchange", slog.Any("error", err))
		return
	}

	// 3. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Error("consuming queue", slog.Any("error", err))
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Info("subscribed to exchange order_placed (fanout)")
}

// Imitación del cliente de checkout: corre la secuencia completa de compra
// contra un servidor vivo. Útil para probar el flujo de punta a punta sin
// frontend.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"course-order-service/internal/checkout"
)

func main() {
	var (
		baseURL   = flag.String("base", "http://localhost:8080", "URL del servicio de órdenes")
		token     = flag.String("token", "", "token Bearer del usuario")
		redisAddr = flag.String("redis", "localhost:6379", "almacenamiento local del cliente")
		courseID  = flag.String("course", "", "id del curso a comprar")
		title     = flag.String("title", "Curso de prueba", "título del curso")
		amount    = flag.Float64("amount", 999, "monto a cobrar")
		name      = flag.String("name", "Cliente Imitado", "nombre del perfil")
		email     = flag.String("email", "imitacion@example.com", "email del perfil")
		phone     = flag.String("phone", "5550000", "teléfono del perfil")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *token == "" || *courseID == "" {
		log.Error("faltan -token o -course")
		os.Exit(1)
	}

	ctx := context.Background()
	store := checkout.NewRedisStore(redis.NewClient(&redis.Options{Addr: *redisAddr}))
	api := checkout.NewClient(*baseURL, *token)
	profile := checkout.BillingDetails{Name: *name, Email: *email, Phone: *phone}

	flow := checkout.NewFlow(api, store, profile, log)
	if err := flow.Load(ctx); err != nil {
		log.Error("cargando sesión", slog.Any("error", err))
		os.Exit(1)
	}

	course := checkout.CourseItem{CourseID: *courseID, Title: *title, Amount: *amount}

	steps := []checkout.Event{
		checkout.AddToCart{Course: course},
		checkout.SelectCourse{Course: course, Profile: flow.Profile()},
		checkout.SubmitBilling{},
		checkout.SetPaymentDetails{Payment: checkout.PaymentDetails{
			Method:      "credit-card",
			CardNumber:  "4111111111111111",
			AcceptTerms: true,
		}},
	}
	for _, ev := range steps {
		if err := flow.Dispatch(ctx, ev); err != nil {
			log.Error("evento rechazado", slog.Any("event", ev), slog.Any("error", err))
			os.Exit(1)
		}
	}

	receipt, err := flow.Pay(ctx)
	if err != nil {
		log.Error("pago fallido", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("compra confirmada",
		slog.String("order_id", receipt.OrderID),
		slog.String("transaction_id", receipt.TransactionID),
		slog.Int("purchased_courses", len(flow.Purchased())))
}

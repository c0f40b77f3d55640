package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"course-order-service/internal/config"
	"course-order-service/internal/controller"
	"course-order-service/internal/metrics"
	"course-order-service/internal/middleware"
	"course-order-service/internal/rabbit"
	"course-order-service/internal/repository"
	"course-order-service/internal/service"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Conexión a MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Error("connecting to mongo", slog.Any("error", err))
		os.Exit(1)
	}
	db := client.Database(cfg.MongoDBName)

	// Repositorio e índices (incluye el índice único de compra activa)
	repo := repository.NewMongoOrderRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Error("creating indexes", slog.Any("error", err))
		os.Exit(1)
	}

	// Servicios y colaboradores externos
	courses := service.NewCourseService(cfg.CoursesURL)
	orderService := service.NewOrderService(repo, courses, log)
	authService := service.NewAuthService(cfg.AuthURL)

	metrics.Register()

	// Handlers
	ctl := controller.NewOrderController(orderService)

	// Router
	r := gin.Default()

	// Rutas públicas
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rutas protegidas (requieren token)
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.POST("/orders", ctl.CreateOrder)
	auth.GET("/orders/my-orders", ctl.GetMyOrders)
	auth.GET("/orders/:orderId", ctl.GetOrder)
	auth.PUT("/orders/:orderId/complete-payment", ctl.CompletePayment)

	// Rutas admin
	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", ctl.GetAllOrders)
	admin.GET("/orders/stats", ctl.GetStats)
	admin.PUT("/orders/:orderId/status", ctl.UpdateStatus)
	admin.DELETE("/orders/:orderId", ctl.DeleteOrder)

	// Conexión a RabbitMQ (compras que entran por fuera del checkout)
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Error("connecting to rabbit", slog.Any("error", err))
		os.Exit(1)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Error("opening rabbit channel", slog.Any("error", err))
		os.Exit(1)
	}

	rabbit.SetupConsumers(ch, orderService, log)

	// Ejecutar servidor
	log.Info("course order service listening", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

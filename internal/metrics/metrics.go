package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Number of orders created",
		},
	)

	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_rejected_total",
			Help: "Number of order creations rejected",
		},
		[]string{"reason"},
	)

	StatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Number of order status transitions",
		},
		[]string{"status"},
	)

	OrdersDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Number of orders deleted by an admin",
		},
	)
)

func Register() {
	prometheus.MustRegister(OrdersCreated, OrdersRejected, StatusUpdates, OrdersDeleted)
}

// models.go
package model

import "time"

// Estados posibles de una orden. "completed" y "delivered" son el mismo
// estado final ("pagada y entregada") bajo dos nombres históricos.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

type Order struct {
	OrderID     string         `bson:"order_id" json:"orderId"`
	User        UserSnapshot   `bson:"user" json:"user"`
	Course      CourseSnapshot `bson:"course" json:"course"`
	Amount      float64        `bson:"amount" json:"amount"`
	OrderStatus string         `bson:"order_status" json:"orderStatus"`
	// Día calendario de la compra (YYYY-MM-DD), independiente del timestamp.
	OrderDate string    `bson:"order_date" json:"orderDate"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserSnapshot es una copia de los datos del usuario al momento de la compra.
// NUNCA se actualiza después de crear la orden, aunque el perfil cambie.
type UserSnapshot struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// CourseSnapshot protege las órdenes históricas de ediciones o borrados
// posteriores del curso. Price queda como el string que muestra la tienda.
// ID se guarda para que el cliente pueda reconciliar su cache de comprados;
// la deduplicación sigue comparando por Title (ver ActiveStatuses).
type CourseSnapshot struct {
	ID    string `bson:"course_id" json:"courseId"`
	Title string `bson:"title" json:"title"`
	Price string `bson:"price" json:"price"`
	Image string `bson:"image" json:"image"`
}

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func ValidStatus(s string) bool {
	return validStatuses[s]
}

// Estados finales
var terminalStatuses = map[string]bool{
	StatusCompleted: true,
	StatusDelivered: true,
	StatusCancelled: true,
}

func TerminalStatus(s string) bool {
	return terminalStatuses[s]
}

// RevenueStatus indica si la orden cuenta para el revenue total.
func RevenueStatus(s string) bool {
	return s == StatusCompleted || s == StatusDelivered
}

// ActiveStatuses son los estados que bloquean una segunda compra del mismo
// curso por el mismo usuario. "delivered" NO bloquea (comportamiento heredado
// de la tienda original, mantenido por compatibilidad).
var ActiveStatuses = []string{StatusProcessing, StatusCompleted}

// RevenueStatuses devuelve los estados que suman al revenue, para usar en
// filtros y pipelines de agregación.
func RevenueStatuses() []string {
	return []string{StatusCompleted, StatusDelivered}
}

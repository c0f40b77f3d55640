// dto.go
package dto

import "course-order-service/internal/model"

// CreateOrderRequest lo envía el cliente de checkout al presionar "Pay".
// Amount es puntero porque 0 es un monto válido (cursos gratis).
type CreateOrderRequest struct {
	CourseID string   `json:"courseId" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	// Force permite a un admin sacar una orden de un estado final.
	Force bool `json:"force"`
}

type OrderResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

type OrderListResponse struct {
	Message string         `json:"message,omitempty"`
	Orders  []*model.Order `json:"orders"`
}

// Pagination acompaña al listado de admin.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// OverviewStats es el bloque de agregados del dashboard de admin.
// Con colección vacía devuelve todos los campos en cero, nunca error.
type OverviewStats struct {
	TotalOrders       int64   `json:"totalOrders" bson:"total_orders"`
	TotalRevenue      float64 `json:"totalRevenue" bson:"total_revenue"`
	AverageOrderValue float64 `json:"averageOrderValue" bson:"average_order_value"`
	PendingOrders     int64   `json:"pendingOrders" bson:"pending_orders"`
	ProcessingOrders  int64   `json:"processingOrders" bson:"processing_orders"`
	CompletedOrders   int64   `json:"completedOrders" bson:"completed_orders"`
	CancelledOrders   int64   `json:"cancelledOrders" bson:"cancelled_orders"`
}

// MonthlyStat es un punto de la serie mensual de revenue del año en curso.
type MonthlyStat struct {
	Year    int     `json:"year" bson:"year"`
	Month   int     `json:"month" bson:"month"`
	Revenue float64 `json:"revenue" bson:"revenue"`
	Orders  int64   `json:"orders" bson:"orders"`
}

type AdminOrderListResponse struct {
	Orders     []*model.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
	Stats      OverviewStats  `json:"stats"`
}

type StatsResponse struct {
	Overview     OverviewStats `json:"overview"`
	MonthlyStats []MonthlyStat `json:"monthlyStats"`
}

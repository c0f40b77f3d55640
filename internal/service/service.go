package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"course-order-service/internal/dto"
	"course-order-service/internal/metrics"
	"course-order-service/internal/model"
	"course-order-service/internal/repository"
)

// Errores de negocio exportados (los usa el controller)
var (
	ErrForbidden        = errors.New("forbidden")
	ErrMissingFields    = errors.New("courseId y amount son obligatorios")
	ErrInvalidAmount    = errors.New("el monto no puede ser negativo")
	ErrCourseNotFound   = errors.New("curso no encontrado")
	ErrAlreadyPurchased = errors.New("ya tenés una compra activa o completada de este curso")
	ErrInvalidStatus    = errors.New("estado inválido")
	ErrFinalState       = errors.New("no se puede cambiar el estado de una orden en estado final")
	ErrNotPayable       = errors.New("la orden no está pendiente de pago")
	ErrDeleteInProgress = errors.New("no se pueden borrar órdenes en proceso o entregadas")
)

// Identity son los datos del comprador que adjunta el middleware de auth.
// Van snapshoteados dentro de la orden.
type Identity struct {
	Name  string
	Email string
	Phone string
}

// Course es lo que devuelve el catálogo: {title, price, imageUrl}.
type Course struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	ImageURL string `json:"imageUrl"`
}

// CourseCatalog es el colaborador externo de cursos.
type CourseCatalog interface {
	GetCourse(ctx context.Context, courseID string) (*Course, error)
}

const defaultPageSize = 10

type OrderService struct {
	repo    repository.OrderRepository
	catalog CourseCatalog
	log     *slog.Logger
}

func NewOrderService(repo repository.OrderRepository, catalog CourseCatalog, log *slog.Logger) *OrderService {
	return &OrderService{repo: repo, catalog: catalog, log: log}
}

// newOrderID genera el id legible de la orden: ORD + 6 dígitos del reloj,
// como los emitía la tienda original. El índice único de order_id respalda
// la (improbable) colisión.
func newOrderID() string {
	return fmt.Sprintf("ORD%06d", time.Now().UnixMilli()%1000000)
}

// Create valida, deduplica y persiste la orden en estado pending,
// snapshoteando usuario y curso. El pre-chequeo de duplicados da el error
// amable; el índice único parcial cierra la carrera si dos requests del
// mismo usuario pasan el chequeo a la vez.
func (s *OrderService) Create(ctx context.Context, user Identity, courseID string, amount float64) (*model.Order, error) {
	if courseID == "" || user.Email == "" {
		metrics.OrdersRejected.WithLabelValues("validation").Inc()
		return nil, ErrMissingFields
	}
	if amount < 0 {
		metrics.OrdersRejected.WithLabelValues("validation").Inc()
		return nil, ErrInvalidAmount
	}

	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			metrics.OrdersRejected.WithLabelValues("course_not_found").Inc()
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("consultando el catálogo: %w", err)
	}

	// Deduplicación por (email, título snapshoteado): una compra activa o
	// completada por curso por usuario a la vez.
	exists, err := s.repo.HasActiveOrder(ctx, user.Email, course.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.OrdersRejected.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadyPurchased
	}

	phone := user.Phone
	if phone == "" {
		phone = "N/A"
	}

	now := time.Now().UTC()
	order := &model.Order{
		OrderID: newOrderID(),
		User: model.UserSnapshot{
			Name:  user.Name,
			Email: user.Email,
			Phone: phone,
		},
		Course: model.CourseSnapshot{
			ID:    courseID,
			Title: course.Title,
			Price: course.Price,
			Image: course.ImageURL,
		},
		Amount:      amount,
		OrderStatus: model.StatusPending,
		OrderDate:   now.Format("2006-01-02"),
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			metrics.OrdersRejected.WithLabelValues("duplicate").Inc()
			return nil, ErrAlreadyPurchased
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	s.log.Info("order created",
		slog.String("order_id", order.OrderID),
		slog.String("course", order.Course.Title),
		slog.String("user", order.User.Email))
	return order, nil
}

// MyOrders devuelve las órdenes del usuario, más nuevas primero.
func (s *OrderService) MyOrders(ctx context.Context, email string) ([]*model.Order, error) {
	orders, err := s.repo.FindByUserEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return orders, nil
}

// GetByOrderID aplica el chequeo dueño-o-admin.
func (s *OrderService) GetByOrderID(ctx context.Context, orderID, requesterEmail string, isAdmin bool) (*model.Order, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.User.Email != requesterEmail {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListAdmin lista con filtro, búsqueda y paginación. Parámetros de paginado
// malformados caen a página 1 / tamaño 10 en vez de fallar (política
// deliberadamente permisiva).
func (s *OrderService) ListAdmin(ctx context.Context, q repository.ListQuery) (*dto.AdminOrderListResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}

	res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	totalPages := (res.Total + int64(q.Limit) - 1) / int64(q.Limit)
	return &dto.AdminOrderListResponse{
		Orders: res.Orders,
		Pagination: dto.Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      res.Total,
			TotalPages: totalPages,
		},
		Stats: res.Stats,
	}, nil
}

// UpdateStatus guarda el estado pedido por un admin. Entre estados no
// finales se permite cualquier transición; salir de un estado final
// (completed/delivered/cancelled) requiere el flag force explícito.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string, force bool) (*model.Order, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus == status {
		return order, nil
	}
	if model.TerminalStatus(order.OrderStatus) && !force {
		return nil, ErrFinalState
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	metrics.StatusUpdates.WithLabelValues(status).Inc()
	s.log.Info("order status updated",
		slog.String("order_id", orderID),
		slog.String("from", order.OrderStatus),
		slog.String("to", status))
	return updated, nil
}

// CompletePayment es la transición automática post-pago que dispara el
// cliente de checkout: solo el dueño, y solo pending → delivered.
// Si la orden ya está delivered es un no-op idempotente (el cliente
// reintenta esta llamada).
func (s *OrderService) CompletePayment(ctx context.Context, orderID, requesterEmail string) (*model.Order, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.User.Email != requesterEmail {
		return nil, ErrForbidden
	}
	if order.OrderStatus == model.StatusDelivered {
		return order, nil
	}
	if order.OrderStatus != model.StatusPending {
		return nil, ErrNotPayable
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, model.StatusDelivered)
	if err != nil {
		return nil, err
	}
	metrics.StatusUpdates.WithLabelValues(model.StatusDelivered).Inc()
	return updated, nil
}

// Delete borra una orden, solo si está pending o cancelled. Las órdenes en
// proceso o completadas son registro financiero y no se tocan.
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.OrderStatus != model.StatusPending && order.OrderStatus != model.StatusCancelled {
		return ErrDeleteInProgress
	}

	if err := s.repo.Delete(ctx, orderID); err != nil {
		return err
	}
	metrics.OrdersDeleted.Inc()
	s.log.Info("order deleted", slog.String("order_id", orderID))
	return nil
}

// Stats arma el bloque del dashboard: overview en una sola pasada de
// agregación más la serie mensual del año en curso.
func (s *OrderService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	overview, err := s.repo.Overview(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.repo.MonthlyRevenue(ctx, time.Now().UTC().Year())
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{Overview: overview, MonthlyStats: monthly}, nil
}

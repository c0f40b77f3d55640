package controller

import (
	"errors"
	"net/http"
	"strconv"

	"course-order-service/internal/dto"
	"course-order-service/internal/repository"
	"course-order-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *service.OrderService
}

func NewOrderController(s *service.OrderService) *OrderController {
	return &OrderController{Service: s}
}

// Mapea los errores de negocio a códigos HTTP. Ninguno se traga en
// silencio: todo vuelve al caller como status + mensaje legible.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyPurchased):
		return http.StatusConflict
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrFinalState),
		errors.Is(err, service.ErrNotPayable),
		errors.Is(err, service.ErrDeleteInProgress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func identityFromContext(c *gin.Context) service.Identity {
	return service.Identity{
		Name:  c.GetString("userName"),
		Email: c.GetString("userEmail"),
		Phone: c.GetString("userPhone"),
	}
}

// POST /orders — requiere token
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrMissingFields.Error()})
		return
	}

	order, err := ctl.Service.Create(c.Request.Context(), identityFromContext(c), req.CourseID, *req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OrderResponse{
		Message: "Order created successfully",
		Order:   order,
	})
}

// GET /orders/my-orders — órdenes del usuario autenticado, más nuevas primero
func (ctl *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := ctl.Service.MyOrders(c.Request.Context(), c.GetString("userEmail"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Message: "Orders fetched successfully",
		Orders:  orders,
	})
}

// GET /orders/:orderId — dueño o admin
func (ctl *OrderController) GetOrder(c *gin.Context) {
	order, err := ctl.Service.GetByOrderID(
		c.Request.Context(),
		c.Param("orderId"),
		c.GetString("userEmail"),
		c.GetBool("isAdmin"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderResponse{
		Message: "Order fetched successfully",
		Order:   order,
	})
}

// PUT /orders/:orderId/complete-payment — dueño; transición post-pago
func (ctl *OrderController) CompletePayment(c *gin.Context) {
	order, err := ctl.Service.CompletePayment(c.Request.Context(), c.Param("orderId"), c.GetString("userEmail"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderResponse{
		Message: "Payment completed",
		Order:   order,
	})
}

// GET /admin/orders — listado paginado con filtro, búsqueda y stats.
// Paginado malformado cae a página 1 / tamaño 10, no falla.
func (ctl *OrderController) GetAllOrders(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	res, err := ctl.Service.ListAdmin(c.Request.Context(), repository.ListQuery{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /admin/orders/stats — overview + serie mensual del año en curso
func (ctl *OrderController) GetStats(c *gin.Context) {
	stats, err := ctl.Service.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PUT /admin/orders/:orderId/status — admin; force para salir de estado final
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, err := ctl.Service.UpdateStatus(c.Request.Context(), c.Param("orderId"), req.Status, req.Force)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderResponse{
		Message: "Order status updated successfully",
		Order:   order,
	})
}

// DELETE /admin/orders/:orderId — solo órdenes pending o cancelled
func (ctl *OrderController) DeleteOrder(c *gin.Context) {
	if err := ctl.Service.Delete(c.Request.Context(), c.Param("orderId")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

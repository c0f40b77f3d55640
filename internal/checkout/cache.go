package checkout

import (
	"time"

	"course-order-service/internal/model"
)

// PurchasedCourse es una entrada de la proyección local "qué compró este
// usuario". Tentative marca el alta optimista hecha durante el checkout,
// antes de que el servidor confirme; nunca sobrevive a una reconciliación.
type PurchasedCourse struct {
	CourseID     string    `json:"courseId"`
	Title        string    `json:"title"`
	Image        string    `json:"image"`
	Price        string    `json:"price"`
	PurchaseDate time.Time `json:"purchaseDate"`
	OrderStatus  string    `json:"orderStatus"`
	Tentative    bool      `json:"pendingLocal,omitempty"`
}

type PurchasedList []PurchasedCourse

// Add inserta deduplicando por courseId: como máximo una entrada por curso.
func (l PurchasedList) Add(c PurchasedCourse) PurchasedList {
	if l.Contains(c.CourseID) {
		return l
	}
	return append(append(PurchasedList(nil), l...), c)
}

func (l PurchasedList) Contains(courseID string) bool {
	for _, c := range l {
		if c.CourseID == courseID {
			return true
		}
	}
	return false
}

// ReconcileFromOrders reconstruye la proyección entera desde el listado
// my-orders del servidor: reemplazo total, no merge, así nunca deriva de la
// verdad del servidor. Cualquier estado que no sea cancelled cuenta como
// "comprado" (política laxa: el acceso no se pierde mientras el estado es
// apenas pending).
func ReconcileFromOrders(orders []*model.Order) PurchasedList {
	out := PurchasedList{}
	for _, o := range orders {
		if o.OrderStatus == model.StatusCancelled {
			continue
		}
		out = out.Add(PurchasedCourse{
			CourseID:     o.Course.ID,
			Title:        o.Course.Title,
			Image:        o.Course.Image,
			Price:        o.Course.Price,
			PurchaseDate: o.CreatedAt,
			OrderStatus:  o.OrderStatus,
		})
	}
	return out
}

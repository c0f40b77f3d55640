package checkout

import (
	"context"
	"errors"
)

// Store es el almacenamiento local durable del cliente: carrito y lista de
// comprados sobreviven un reload. Un miss no es error para el caller del
// paquete; se traduce a estado vacío en Flow.Load.
type Store interface {
	LoadCart(ctx context.Context, userKey string) ([]CourseItem, error)
	SaveCart(ctx context.Context, userKey string, items []CourseItem) error
	LoadPurchased(ctx context.Context, userKey string) (PurchasedList, error)
	SavePurchased(ctx context.Context, userKey string, list PurchasedList) error
}

var ErrCacheMiss = errors.New("cache miss")

package checkout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"course-order-service/internal/model"

	"github.com/google/uuid"
)

var ErrPaymentInvalid = errors.New("datos de pago incompletos o términos sin aceptar")

// Receipt es lo que queda en mano del usuario al confirmar.
type Receipt struct {
	OrderID       string
	TransactionID string
}

// Flow orquesta una sesión de checkout: un solo flujo lineal por sesión,
// las llamadas de red van en secuencia (nunca en paralelo) para preservar
// el orden create → alta optimista → delay → complete-payment → limpiar
// carrito → reconciliar.
type Flow struct {
	session   Session
	purchased PurchasedList
	store     Store
	api       OrdersAPI
	profile   BillingDetails
	userKey   string
	payDelay  time.Duration
	log       *slog.Logger
}

func NewFlow(api OrdersAPI, store Store, profile BillingDetails, log *slog.Logger) *Flow {
	return &Flow{
		session:  NewSession(),
		store:    store,
		api:      api,
		profile:  profile,
		userKey:  profile.Email,
		payDelay: 2 * time.Second, // pago simulado, como la tienda original
		log:      log,
	}
}

// SetPayDelay acorta el pago simulado (tests).
func (f *Flow) SetPayDelay(d time.Duration) { f.payDelay = d }

func (f *Flow) Session() Session         { return f.session }
func (f *Flow) Purchased() PurchasedList { return f.purchased }
func (f *Flow) Profile() BillingDetails  { return f.profile }

// Load restaura carrito y comprados del almacenamiento local y reconcilia
// la lista de comprados contra el servidor. El paso arranca siempre en cart;
// los formularios en curso no sobreviven un reload.
func (f *Flow) Load(ctx context.Context) error {
	f.session = NewSession()

	cart, err := f.store.LoadCart(ctx, f.userKey)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	f.session.CartItems = cart

	purchased, err := f.store.LoadPurchased(ctx, f.userKey)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	f.purchased = purchased

	// La reconciliación puede fallar sin red; la copia local alcanza para
	// arrancar y se vuelve a intentar en la próxima compra.
	if err := f.Reconcile(ctx); err != nil {
		f.log.Warn("purchased reconciliation on load failed", slog.Any("error", err))
	}
	return nil
}

// Dispatch aplica un evento al reducer y persiste el carrito si cambió.
func (f *Flow) Dispatch(ctx context.Context, e Event) error {
	next, err := Apply(f.session, e)
	if err != nil {
		return err
	}

	cartChanged := len(next.CartItems) != len(f.session.CartItems)
	f.session = next

	if cartChanged {
		if err := f.store.SaveCart(ctx, f.userKey, f.session.CartItems); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) IsPurchased(courseID string) bool {
	return f.purchased.Contains(courseID)
}

// Pay corre la secuencia completa de pago. Si create-order falla, el paso se
// queda en payment y el error sube al usuario: sin avances parciales. Si el
// complete-payment falla después de agotar los reintentos, igual avanzamos a
// confirmation (el pago ya "salió bien" para el usuario) y dejamos la
// inconsistencia logueada.
func (f *Flow) Pay(ctx context.Context) (*Receipt, error) {
	if f.session.Step != StepPayment || f.session.SelectedCourse == nil {
		return nil, ErrWrongStep
	}
	if !f.session.Payment.Valid() {
		return nil, ErrPaymentInvalid
	}
	course := *f.session.SelectedCourse

	// 1. Crear la orden en el servidor.
	order, err := f.api.CreateOrder(ctx, course.CourseID, course.Amount)
	if err != nil {
		return nil, err
	}

	// 2. Alta optimista local, antes de que el servidor confirme el estado
	// final: así no hay ventana donde un curso recién comprado aparezca como
	// no comprado. La entrada queda marcada tentativa y la pisa la
	// reconciliación del paso 6.
	f.purchased = f.purchased.Add(PurchasedCourse{
		CourseID:     course.CourseID,
		Title:        course.Title,
		Image:        course.Image,
		Price:        course.Price,
		PurchaseDate: time.Now().UTC(),
		OrderStatus:  model.StatusPending,
		Tentative:    true,
	})
	if err := f.store.SavePurchased(ctx, f.userKey, f.purchased); err != nil {
		f.log.Warn("saving optimistic purchase failed", slog.Any("error", err))
	}

	// 3. Pago simulado.
	time.Sleep(f.payDelay)
	txn := uuid.NewString()

	// 4. Transición post-pago (con reintentos dentro del cliente).
	if _, err := f.api.CompletePayment(ctx, order.OrderID); err != nil {
		f.log.Warn("post-payment status update failed, order stays pending",
			slog.String("order_id", order.OrderID),
			slog.Any("error", err))
	}

	// 5. Vaciar el carrito.
	f.session.CartItems = nil
	if err := f.store.SaveCart(ctx, f.userKey, nil); err != nil {
		f.log.Warn("clearing cart failed", slog.Any("error", err))
	}

	// 6. Reconciliar la lista de comprados con la verdad del servidor.
	if err := f.Reconcile(ctx); err != nil {
		f.log.Warn("post-purchase reconciliation failed", slog.Any("error", err))
	}

	next, err := Apply(f.session, PaymentSucceeded{})
	if err != nil {
		return nil, err
	}
	f.session = next

	return &Receipt{OrderID: order.OrderID, TransactionID: txn}, nil
}

// Reconcile reemplaza la proyección local entera con my-orders del
// servidor (reemplazo, no merge). Las entradas tentativas del alta optimista
// no sobreviven a este paso.
func (f *Flow) Reconcile(ctx context.Context) error {
	orders, err := f.api.MyOrders(ctx)
	if err != nil {
		return err
	}
	f.purchased = ReconcileFromOrders(orders)
	return f.store.SavePurchased(ctx, f.userKey, f.purchased)
}

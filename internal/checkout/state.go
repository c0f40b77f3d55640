// Package checkout es el lado cliente del flujo de compra: la secuencia
// cart → billing → payment → confirmation, el proyecto local de cursos
// comprados y el cliente HTTP contra el servicio de órdenes.
package checkout

import "errors"

type Step string

const (
	StepCart         Step = "cart"
	StepBilling      Step = "billing"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var (
	ErrWrongStep         = errors.New("transición no permitida desde el paso actual")
	ErrAlreadyInCart     = errors.New("el curso ya está en el carrito")
	ErrNoSelectedCourse  = errors.New("no hay curso seleccionado")
	ErrIncompleteBilling = errors.New("faltan datos de facturación")
)

// CourseItem es un curso candidato en el carrito.
type CourseItem struct {
	CourseID string  `json:"courseId"`
	Title    string  `json:"title"`
	Price    string  `json:"price"`
	Image    string  `json:"image"`
	Amount   float64 `json:"amount"`
}

// BillingDetails es una proyección de solo lectura del perfil autenticado:
// no la edita el usuario, así el snapshot de la orden coincide con la
// cuenta de registro.
type BillingDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (b BillingDetails) Complete() bool {
	return b.Name != "" && b.Email != "" && b.Phone != ""
}

type PaymentDetails struct {
	Method      string `json:"paymentMethod"`
	CardNumber  string `json:"cardNumber"`
	UPIID       string `json:"upiId"`
	AcceptTerms bool   `json:"acceptTerms"`
}

func (p PaymentDetails) Valid() bool {
	if !p.AcceptTerms {
		return false
	}
	switch p.Method {
	case "credit-card", "debit-card":
		return p.CardNumber != ""
	case "upi":
		return p.UPIID != ""
	case "free":
		return true
	default:
		return false
	}
}

// Session es el estado serializable del checkout. El carrito y la lista de
// comprados sobreviven un reload (los guarda el Store); el paso y los
// formularios no: una carga fresca arranca siempre en cart.
type Session struct {
	CartItems      []CourseItem   `json:"cartItems"`
	SelectedCourse *CourseItem    `json:"selectedCourse"`
	Step           Step           `json:"currentStep"`
	Billing        BillingDetails `json:"billingDetails"`
	Payment        PaymentDetails `json:"paymentDetails"`
}

func NewSession() Session {
	return Session{Step: StepCart, Payment: PaymentDetails{Method: "credit-card"}}
}

// Event es un evento del checkout; Apply es el reducer puro que los procesa.
type Event interface{ isEvent() }

type AddToCart struct{ Course CourseItem }

type RemoveFromCart struct{ CourseID string }

// SelectCourse dispara cart → billing: fija el curso que entra a checkout y
// copia el perfil autenticado al bloque de facturación.
type SelectCourse struct {
	Course  CourseItem
	Profile BillingDetails
}

// SubmitBilling dispara billing → payment. Se rechaza si el snapshot de
// facturación está incompleto: protege contra crear una orden con un
// snapshot de usuario a medias.
type SubmitBilling struct{}

// SetPaymentDetails actualiza el formulario de pago (solo en el paso payment).
type SetPaymentDetails struct{ Payment PaymentDetails }

// PaymentSucceeded dispara payment → confirmation. Lo emite el Flow recién
// cuando create-order y complete-payment resolvieron.
type PaymentSucceeded struct{}

// Reset vuelve a cart desde cualquier paso, conservando el carrito.
type Reset struct{}

func (AddToCart) isEvent()         {}
func (RemoveFromCart) isEvent()    {}
func (SelectCourse) isEvent()      {}
func (SubmitBilling) isEvent()     {}
func (SetPaymentDetails) isEvent() {}
func (PaymentSucceeded) isEvent()  {}
func (Reset) isEvent()             {}

// Apply es una función pura (estado, evento) → estado. El paso solo avanza
// hacia adelante o se resetea entero; no hay salteos.
func Apply(s Session, e Event) (Session, error) {
	switch ev := e.(type) {
	case AddToCart:
		for _, item := range s.CartItems {
			if item.CourseID == ev.Course.CourseID {
				return s, ErrAlreadyInCart
			}
		}
		s.CartItems = append(append([]CourseItem(nil), s.CartItems...), ev.Course)
		return s, nil

	case RemoveFromCart:
		items := make([]CourseItem, 0, len(s.CartItems))
		for _, item := range s.CartItems {
			if item.CourseID != ev.CourseID {
				items = append(items, item)
			}
		}
		s.CartItems = items
		return s, nil

	case SelectCourse:
		if s.Step != StepCart {
			return s, ErrWrongStep
		}
		course := ev.Course
		s.SelectedCourse = &course
		s.Billing = ev.Profile
		s.Step = StepBilling
		return s, nil

	case SubmitBilling:
		if s.Step != StepBilling {
			return s, ErrWrongStep
		}
		if s.SelectedCourse == nil {
			return s, ErrNoSelectedCourse
		}
		if !s.Billing.Complete() {
			return s, ErrIncompleteBilling
		}
		s.Step = StepPayment
		return s, nil

	case SetPaymentDetails:
		if s.Step != StepPayment {
			return s, ErrWrongStep
		}
		s.Payment = ev.Payment
		return s, nil

	case PaymentSucceeded:
		if s.Step != StepPayment {
			return s, ErrWrongStep
		}
		if s.SelectedCourse == nil {
			return s, ErrNoSelectedCourse
		}
		s.Step = StepConfirmation
		return s, nil

	case Reset:
		s.Step = StepCart
		s.SelectedCourse = nil
		s.Billing = BillingDetails{}
		s.Payment = PaymentDetails{Method: "credit-card"}
		return s, nil
	}
	return s, ErrWrongStep
}

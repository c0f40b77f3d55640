package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCourse  = CourseItem{CourseID: "course-1", Title: "Go desde cero", Price: "₹999", Amount: 999}
	testProfile = BillingDetails{Name: "Ana", Email: "ana@example.com", Phone: "555123"}
	testPayment = PaymentDetails{Method: "credit-card", CardNumber: "4111", AcceptTerms: true}
)

func TestApply_HappyPath(t *testing.T) {
	s := NewSession()

	s, err := Apply(s, AddToCart{Course: testCourse})
	require.NoError(t, err)
	require.Len(t, s.CartItems, 1)

	s, err = Apply(s, SelectCourse{Course: testCourse, Profile: testProfile})
	require.NoError(t, err)
	assert.Equal(t, StepBilling, s.Step)
	require.NotNil(t, s.SelectedCourse)
	assert.Equal(t, "course-1", s.SelectedCourse.CourseID)
	// El bloque de facturación es la proyección del perfil
	assert.Equal(t, testProfile, s.Billing)

	s, err = Apply(s, SubmitBilling{})
	require.NoError(t, err)
	assert.Equal(t, StepPayment, s.Step)

	s, err = Apply(s, SetPaymentDetails{Payment: testPayment})
	require.NoError(t, err)

	s, err = Apply(s, PaymentSucceeded{})
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, s.Step)
}

func TestApply_AddToCartDeduplicates(t *testing.T) {
	s := NewSession()

	s, err := Apply(s, AddToCart{Course: testCourse})
	require.NoError(t, err)

	_, err = Apply(s, AddToCart{Course: testCourse})
	assert.ErrorIs(t, err, ErrAlreadyInCart)
	assert.Len(t, s.CartItems, 1)
}

// billing → payment se rechaza con el snapshot de facturación incompleto
// y el paso se queda en billing.
func TestApply_IncompleteBillingRefused(t *testing.T) {
	s := NewSession()
	s, err := Apply(s, SelectCourse{
		Course:  testCourse,
		Profile: BillingDetails{Name: "Ana", Email: "ana@example.com"}, // sin teléfono
	})
	require.NoError(t, err)

	next, err := Apply(s, SubmitBilling{})
	assert.ErrorIs(t, err, ErrIncompleteBilling)
	assert.Equal(t, StepBilling, next.Step)
}

// El paso solo avanza hacia adelante: no hay salteos.
func TestApply_NoStepSkipping(t *testing.T) {
	s := NewSession()

	_, err := Apply(s, SubmitBilling{})
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = Apply(s, PaymentSucceeded{})
	assert.ErrorIs(t, err, ErrWrongStep)

	s, err = Apply(s, SelectCourse{Course: testCourse, Profile: testProfile})
	require.NoError(t, err)

	// desde billing no se puede volver a seleccionar
	_, err = Apply(s, SelectCourse{Course: testCourse, Profile: testProfile})
	assert.ErrorIs(t, err, ErrWrongStep)
}

// Reset vuelve a cart desde cualquier paso conservando el carrito.
func TestApply_ResetKeepsCart(t *testing.T) {
	s := NewSession()
	s, err := Apply(s, AddToCart{Course: testCourse})
	require.NoError(t, err)
	s, err = Apply(s, SelectCourse{Course: testCourse, Profile: testProfile})
	require.NoError(t, err)

	s, err = Apply(s, Reset{})
	require.NoError(t, err)
	assert.Equal(t, StepCart, s.Step)
	assert.Nil(t, s.SelectedCourse)
	assert.Equal(t, BillingDetails{}, s.Billing)
	assert.Len(t, s.CartItems, 1)
}

func TestPaymentDetails_Valid(t *testing.T) {
	assert.False(t, PaymentDetails{Method: "credit-card", CardNumber: "4111"}.Valid()) // sin términos
	assert.False(t, PaymentDetails{Method: "credit-card", AcceptTerms: true}.Valid())  // sin tarjeta
	assert.False(t, PaymentDetails{Method: "efectivo", AcceptTerms: true}.Valid())     // método desconocido
	assert.True(t, PaymentDetails{Method: "upi", UPIID: "ana@upi", AcceptTerms: true}.Valid())
	assert.True(t, PaymentDetails{Method: "free", AcceptTerms: true}.Valid())
}

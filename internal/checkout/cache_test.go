package checkout

import (
	"testing"
	"time"

	"course-order-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchasedList_AddDeduplicates(t *testing.T) {
	var list PurchasedList

	list = list.Add(PurchasedCourse{CourseID: "A", OrderStatus: model.StatusPending})
	list = list.Add(PurchasedCourse{CourseID: "A", OrderStatus: model.StatusDelivered})
	list = list.Add(PurchasedCourse{CourseID: "B", OrderStatus: model.StatusPending})

	require.Len(t, list, 2)
	assert.True(t, list.Contains("A"))
	// la primera entrada gana: Add nunca pisa
	assert.Equal(t, model.StatusPending, list[0].OrderStatus)
}

// Reconciliar es reemplazo total, no merge: la copia local previa (incluso
// el alta optimista tentativa) no sobrevive.
func TestReconcileFromOrders_ReplacesNotMerges(t *testing.T) {
	local := PurchasedList{
		{CourseID: "A", OrderStatus: model.StatusPending, Tentative: true},
	}

	server := []*model.Order{
		{
			Course:      model.CourseSnapshot{ID: "A", Title: "Go desde cero", Price: "₹999", Image: "go.jpg"},
			OrderStatus: model.StatusDelivered,
			CreatedAt:   time.Now().UTC(),
		},
	}

	got := ReconcileFromOrders(server)

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].CourseID)
	assert.Equal(t, model.StatusDelivered, got[0].OrderStatus)
	assert.False(t, got[0].Tentative)
	// la lista vieja quedó atrás, no se mezcló
	assert.NotEqual(t, local, got)
}

// Cualquier estado que no sea cancelled cuenta como comprado.
func TestReconcileFromOrders_FiltersCancelledOnly(t *testing.T) {
	server := []*model.Order{
		{Course: model.CourseSnapshot{ID: "A"}, OrderStatus: model.StatusPending},
		{Course: model.CourseSnapshot{ID: "B"}, OrderStatus: model.StatusProcessing},
		{Course: model.CourseSnapshot{ID: "C"}, OrderStatus: model.StatusCompleted},
		{Course: model.CourseSnapshot{ID: "D"}, OrderStatus: model.StatusDelivered},
		{Course: model.CourseSnapshot{ID: "E"}, OrderStatus: model.StatusCancelled},
	}

	got := ReconcileFromOrders(server)

	require.Len(t, got, 4)
	assert.False(t, got.Contains("E"))
}

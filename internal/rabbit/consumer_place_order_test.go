package rabbit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"course-order-service/internal/model"
	"course-order-service/internal/repository"
	"course-order-service/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct{}

func (stubCatalog) GetCourse(ctx context.Context, courseID string) (*service.Course, error) {
	return &service.Course{Title: "Kubernetes", Price: "₹1299", ImageURL: "/img/k8s.png"}, nil
}

func newTestConsumer(repo repository.OrderRepository) *PlaceOrderConsumer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPlaceOrderConsumer(service.NewOrderService(repo, stubCatalog{}, log), log)
}

const placedMsg = `{
	"correlation_id": "corr-1",
	"message": {
		"courseId": "course-7",
		"amount": 1299,
		"user": {"name": "Leo", "email": "leo@example.com", "phone": "555999"}
	}
}`

func TestHandle_CreatesOrderFromMessage(t *testing.T) {
	repo := repository.NewMemoryOrderRepository()
	c := newTestConsumer(repo)

	require.NoError(t, c.Handle([]byte(placedMsg)))

	orders, err := repo.FindByUserEmail(context.Background(), "leo@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Kubernetes", orders[0].Course.Title)
	assert.Equal(t, float64(1299), orders[0].Amount)
	assert.Equal(t, model.StatusPending, orders[0].OrderStatus)
}

// El exchange es fanout: el mismo evento puede llegar repetido. Un duplicado
// activo no debe devolver error (eso reencolaría el mensaje para siempre).
func TestHandle_DuplicateActiveIsNotAnError(t *testing.T) {
	repo := repository.NewMemoryOrderRepository()
	c := newTestConsumer(repo)

	require.NoError(t, c.Handle([]byte(placedMsg)))

	orders, err := repo.FindByUserEmail(context.Background(), "leo@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	_, err = repo.UpdateStatus(context.Background(), orders[0].OrderID, model.StatusProcessing)
	require.NoError(t, err)

	assert.NoError(t, c.Handle([]byte(placedMsg)))

	orders, err = repo.FindByUserEmail(context.Background(), "leo@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestHandle_MalformedPayload(t *testing.T) {
	c := newTestConsumer(repository.NewMemoryOrderRepository())
	assert.Error(t, c.Handle([]byte(`{not json`)))
}

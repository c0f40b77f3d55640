package repository

import (
	"context"
	"testing"
	"time"

	"course-order-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id, email, title, status string, createdAt time.Time) *model.Order {
	return &model.Order{
		OrderID:     id,
		User:        model.UserSnapshot{Name: "User " + id, Email: email, Phone: "5550001"},
		Course:      model.CourseSnapshot{ID: "c-" + id, Title: title, Price: "₹999"},
		Amount:      100,
		OrderStatus: status,
		CreatedAt:   createdAt,
	}
}

// El repo en memoria emula el índice único parcial de Mongo: dos órdenes
// activas del mismo (email, título) no entran.
func TestMemoryInsert_EnforcesActiveUniqueness(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, order("ORD000001", "ana@example.com", "Go", model.StatusProcessing, now)))

	err := repo.Insert(ctx, order("ORD000002", "ana@example.com", "Go", model.StatusProcessing, now))
	assert.ErrorIs(t, err, ErrDuplicateActive)

	// pending no es estado activo, no choca con el índice
	require.NoError(t, repo.Insert(ctx, order("ORD000003", "ana@example.com", "Go", model.StatusPending, now)))
}

func TestMemoryList_SearchAndOrdering(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, order("ORD000001", "ana@example.com", "Go desde cero", model.StatusPending, now)))
	require.NoError(t, repo.Insert(ctx, order("ORD000002", "bob@example.com", "Rust avanzado", model.StatusPending, now.Add(time.Minute))))

	res, err := repo.List(ctx, ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)
	assert.Equal(t, "ORD000002", res.Orders[0].OrderID) // más nueva primero

	// Busca en order_id, nombre, email y título, case-insensitive
	for _, q := range []string{"ord000001", "ANA@", "go DESDE"} {
		res, err := repo.List(ctx, ListQuery{Page: 1, Limit: 10, Search: q})
		require.NoError(t, err, q)
		require.Len(t, res.Orders, 1, q)
		assert.Equal(t, "ORD000001", res.Orders[0].OrderID, q)
	}
}

func TestMemoryFindByUserEmail_NewestFirst(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, order("ORD000001", "ana@example.com", "Curso A", model.StatusPending, now)))
	require.NoError(t, repo.Insert(ctx, order("ORD000002", "ana@example.com", "Curso B", model.StatusPending, now.Add(time.Minute))))
	require.NoError(t, repo.Insert(ctx, order("ORD000003", "bob@example.com", "Curso C", model.StatusPending, now)))

	orders, err := repo.FindByUserEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD000002", orders[0].OrderID)
}

func TestMemoryMonthlyRevenue_OnlyCompletedOfYear(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	year := time.Now().UTC().Year()
	feb := time.Date(year, time.February, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(year, time.March, 5, 0, 0, 0, 0, time.UTC)
	lastYear := feb.AddDate(-1, 0, 0)

	require.NoError(t, repo.Insert(ctx, order("ORD000001", "a@example.com", "A", model.StatusCompleted, feb)))
	require.NoError(t, repo.Insert(ctx, order("ORD000002", "b@example.com", "B", model.StatusDelivered, mar)))
	require.NoError(t, repo.Insert(ctx, order("ORD000003", "c@example.com", "C", model.StatusPending, mar)))
	require.NoError(t, repo.Insert(ctx, order("ORD000004", "d@example.com", "D", model.StatusCompleted, lastYear)))

	series, err := repo.MonthlyRevenue(ctx, year)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 2, series[0].Month)
	assert.Equal(t, 3, series[1].Month)
	assert.Equal(t, 100.0, series[0].Revenue)
}

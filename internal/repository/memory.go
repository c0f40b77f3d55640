package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"course-order-service/internal/dto"
	"course-order-service/internal/model"
)

// MemoryOrderRepository implementa el mismo contrato que Mongo en memoria,
// incluyendo la unicidad de compra activa. Se usa en tests.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*model.Order)}
}

func (r *MemoryOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Emula el índice único parcial de Mongo.
	for _, existing := range r.orders {
		if existing.User.Email == o.User.Email &&
			existing.Course.Title == o.Course.Title &&
			activeStatus(existing.OrderStatus) && activeStatus(o.OrderStatus) {
			return ErrDuplicateActive
		}
	}

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	cp := *o
	r.orders[o.OrderID] = &cp
	return nil
}

func activeStatus(s string) bool {
	for _, a := range model.ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (r *MemoryOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOrderRepository) FindByUserEmail(ctx context.Context, email string) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Order
	for _, o := range r.orders {
		if o.User.Email == email {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryOrderRepository) HasActiveOrder(ctx context.Context, email, courseTitle string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.User.Email == email && o.Course.Title == courseTitle && activeStatus(o.OrderStatus) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []*model.Order
	for _, o := range r.orders {
		if q.Status != "" && o.OrderStatus != q.Status {
			continue
		}
		if q.Search != "" && !matchesSearch(o, q.Search) {
			continue
		}
		cp := *o
		filtered = append(filtered, &cp)
	}
	sortNewestFirst(filtered)

	total := int64(len(filtered))
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	page := []*model.Order{}
	if start < len(filtered) {
		if end > len(filtered) {
			end = len(filtered)
		}
		page = filtered[start:end]
	}

	return &ListResult{Orders: page, Total: total, Stats: r.overviewLocked()}, nil
}

func matchesSearch(o *model.Order, search string) bool {
	s := strings.ToLower(search)
	for _, field := range []string{o.OrderID, o.User.Name, o.User.Email, o.Course.Title} {
		if strings.Contains(strings.ToLower(field), s) {
			return true
		}
	}
	return false
}

func sortNewestFirst(orders []*model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	o.OrderStatus = status
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return ErrNotFound
	}
	delete(r.orders, orderID)
	return nil
}

func (r *MemoryOrderRepository) Overview(ctx context.Context) (dto.OverviewStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overviewLocked(), nil
}

func (r *MemoryOrderRepository) overviewLocked() dto.OverviewStats {
	var stats dto.OverviewStats
	var amountSum float64

	for _, o := range r.orders {
		stats.TotalOrders++
		amountSum += o.Amount
		if model.RevenueStatus(o.OrderStatus) {
			stats.TotalRevenue += o.Amount
			stats.CompletedOrders++
		}
		switch o.OrderStatus {
		case model.StatusPending:
			stats.PendingOrders++
		case model.StatusProcessing:
			stats.ProcessingOrders++
		case model.StatusCancelled:
			stats.CancelledOrders++
		}
	}
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = amountSum / float64(stats.TotalOrders)
	}
	return stats
}

func (r *MemoryOrderRepository) MonthlyRevenue(ctx context.Context, year int) ([]dto.MonthlyStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byMonth := make(map[int]*dto.MonthlyStat)
	for _, o := range r.orders {
		if !model.RevenueStatus(o.OrderStatus) || o.CreatedAt.UTC().Year() != year {
			continue
		}
		month := int(o.CreatedAt.UTC().Month())
		st, ok := byMonth[month]
		if !ok {
			st = &dto.MonthlyStat{Year: year, Month: month}
			byMonth[month] = st
		}
		st.Revenue += o.Amount
		st.Orders++
	}

	out := []dto.MonthlyStat{}
	for m := 1; m <= 12; m++ {
		if st, ok := byMonth[m]; ok {
			out = append(out, *st)
		}
	}
	return out, nil
}

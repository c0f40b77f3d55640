package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"course-order-service/internal/dto"
	"course-order-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("orden no encontrada")
	// ErrDuplicateActive lo dispara el índice único parcial: ya existe una
	// orden activa (processing/completed) del mismo usuario para el mismo curso.
	ErrDuplicateActive = errors.New("compra activa duplicada")
)

const activePurchaseIndex = "uniq_active_purchase"

// ListQuery son los parámetros ya normalizados del listado de admin.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// ListResult trae la página, el total y el bloque de stats en un solo viaje.
type ListResult struct {
	Orders []*model.Order
	Total  int64
	Stats  dto.OverviewStats
}

type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindByUserEmail(ctx context.Context, email string) ([]*model.Order, error)
	HasActiveOrder(ctx context.Context, email, courseTitle string) (bool, error)
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error)
	Delete(ctx context.Context, orderID string) error
	Overview(ctx context.Context) (dto.OverviewStats, error)
	MonthlyRevenue(ctx context.Context, year int) ([]dto.MonthlyStat, error)
}

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

// EnsureIndexes crea los índices de la colección. El índice único parcial
// sobre (user.email, course.title) con filtro de estados activos cierra la
// carrera del chequeo lee-luego-escribe de la deduplicación: aunque dos
// requests pasen el pre-chequeo a la vez, solo una inserta.
func (m *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user.email", Value: 1}, {Key: "course.title", Value: 1}},
			Options: options.Index().
				SetName(activePurchaseIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"order_status": bson.M{"$in": model.ActiveStatuses},
				}),
		},
		{Keys: bson.D{{Key: "order_status", Value: 1}}},
		{Keys: bson.D{{Key: "user.email", Value: 1}}},
	})
	return err
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), activePurchaseIndex) {
		return ErrDuplicateActive
	}
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) FindByUserEmail(ctx context.Context, email string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{"user.email": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// HasActiveOrder es el pre-chequeo de deduplicación. Compara contra el
// título snapshoteado, no contra el id del curso: un curso renombrado
// esquiva el chequeo (comportamiento heredado, documentado).
func (m *MongoOrderRepository) HasActiveOrder(ctx context.Context, email, courseTitle string) (bool, error) {
	filter := bson.M{
		"user.email":   email,
		"course.title": courseTitle,
		"order_status": bson.M{"$in": model.ActiveStatuses},
	}
	count, err := m.col.CountDocuments(ctx, filter)
	return count > 0, err
}

// overviewGroup es el $group único que calcula todos los agregados del
// dashboard en una sola pasada (sin N+1).
func overviewGroup() bson.D {
	countIf := func(status string) bson.D {
		return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$order_status", status}}}, 1, 0,
		}}}}}
	}
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "total_orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "total_revenue", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{"$order_status", model.RevenueStatuses()}}}, "$amount", 0,
		}}}}}},
		{Key: "average_order_value", Value: bson.D{{Key: "$avg", Value: "$amount"}}},
		{Key: "pending_orders", Value: countIf(model.StatusPending)},
		{Key: "processing_orders", Value: countIf(model.StatusProcessing)},
		{Key: "completed_orders", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{"$order_status", model.RevenueStatuses()}}}, 1, 0,
		}}}}}},
		{Key: "cancelled_orders", Value: countIf(model.StatusCancelled)},
	}}}
}

// List usa $facet para traer página, total y stats en un solo round-trip.
// Las stats se calculan sobre TODA la colección (como el dashboard original),
// el filtro aplica solo a la página y al total.
func (m *MongoOrderRepository) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	match := bson.M{}
	if q.Status != "" {
		match["order_status"] = q.Status
	}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		match["$or"] = bson.A{
			bson.M{"order_id": re},
			bson.M{"user.name": re},
			bson.M{"user.email": re},
			bson.M{"course.title": re},
		}
	}

	skip := (q.Page - 1) * q.Limit
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "orders", Value: bson.A{
				bson.D{{Key: "$match", Value: match}},
				bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
				bson.D{{Key: "$skip", Value: skip}},
				bson.D{{Key: "$limit", Value: q.Limit}},
			}},
			{Key: "total", Value: bson.A{
				bson.D{{Key: "$match", Value: match}},
				bson.D{{Key: "$count", Value: "count"}},
			}},
			{Key: "stats", Value: bson.A{overviewGroup()}},
		}}},
	}

	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raw []struct {
		Orders []*model.Order `bson:"orders"`
		Total  []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
		Stats []dto.OverviewStats `bson:"stats"`
	}
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}

	res := &ListResult{Orders: []*model.Order{}}
	if len(raw) == 0 {
		return res, nil
	}
	if raw[0].Orders != nil {
		res.Orders = raw[0].Orders
	}
	if len(raw[0].Total) > 0 {
		res.Total = raw[0].Total[0].Count
	}
	if len(raw[0].Stats) > 0 {
		res.Stats = raw[0].Stats[0]
	}
	return res, nil
}

func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	update := bson.M{"$set": bson.M{
		"order_status": status,
		"updated_at":   time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var res model.Order
	err := m.col.FindOneAndUpdate(ctx, bson.M{"order_id": orderID}, update, opts).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) Delete(ctx context.Context, orderID string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) Overview(ctx context.Context) (dto.OverviewStats, error) {
	var stats dto.OverviewStats

	cur, err := m.col.Aggregate(ctx, mongo.Pipeline{overviewGroup()})
	if err != nil {
		return stats, err
	}
	defer cur.Close(ctx)

	var out []dto.OverviewStats
	if err := cur.All(ctx, &out); err != nil {
		return stats, err
	}
	// Colección vacía: $group no emite documentos, devolvemos ceros.
	if len(out) > 0 {
		stats = out[0]
	}
	return stats, nil
}

// MonthlyRevenue agrupa el revenue de órdenes completadas por mes calendario
// desde el 1 de enero del año pedido, ordenado cronológicamente.
func (m *MongoOrderRepository) MonthlyRevenue(ctx context.Context, year int) ([]dto.MonthlyStat, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"order_status": bson.M{"$in": model.RevenueStatuses()},
			"created_at":   bson.M{"$gte": from},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: "$created_at"}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: "$created_at"}}},
			}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "year", Value: "$_id.year"},
			{Key: "month", Value: "$_id.month"},
			{Key: "revenue", Value: 1},
			{Key: "orders", Value: 1},
		}}},
	}

	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []dto.MonthlyStat{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

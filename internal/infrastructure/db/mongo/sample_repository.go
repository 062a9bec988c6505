package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/query"
)

const collectionSamples = "samples"

// SampleRepository implements ports.SampleRepository using MongoDB.
type SampleRepository struct {
	col *mongo.Collection
}

// NewSampleRepository creates a new SampleRepository.
func NewSampleRepository(db *mongo.Database) *SampleRepository {
	return &SampleRepository{col: db.Collection(collectionSamples)}
}

// Find returns matching samples, newest first.
func (r *SampleRepository) Find(ctx context.Context, where query.Predicate) ([]domain.Sample, error) {
	filter, err := toFilter(where)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(pageSort))
	if err != nil {
		return nil, fmt.Errorf("find samples: %w", err)
	}
	samples := []domain.Sample{}
	if err := cur.All(ctx, &samples); err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}
	return samples, nil
}

// CountBySite groups matching samples by customer and counts them.
func (r *SampleRepository) CountBySite(ctx context.Context, where query.Predicate) ([]domain.SiteOrders, error) {
	filter, err := toFilter(where)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, siteOrdersPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("aggregate site orders: %w", err)
	}
	var rows []struct {
		CustomerID   string `bson:"customer_id"`
		CustomerName string `bson:"customer_name"`
		Orders       int64  `bson:"orders"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode site orders: %w", err)
	}

	out := make([]domain.SiteOrders, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SiteOrders{Site: row.CustomerName, Orders: row.Orders, CustomerID: row.CustomerID})
	}
	return out, nil
}

func siteOrdersPipeline(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "customer_id", Value: "$customer_id"},
				{Key: "customer_name", Value: "$customer_name"},
			}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "customer_id", Value: "$_id.customer_id"},
			{Key: "customer_name", Value: "$_id.customer_name"},
			{Key: "orders", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "customer_id", Value: 1}}}},
	}
}

// EnsureIndexes creates the indexes the report and site queries filter on.
func (r *SampleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldSampleSalesPerson, Value: 1}, {Key: domain.FieldCreatedAt, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldSampleDoctorName, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldSampleRegisteredAt, Value: 1}}},
	})
	return err
}

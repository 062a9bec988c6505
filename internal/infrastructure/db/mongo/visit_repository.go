package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/ports"
	"github.com/hapl/fieldsales/internal/core/query"
)

const collectionVisits = "visits"

type VisitRepository struct {
	col *mongo.Collection
}

func NewVisitRepository(db *mongo.Database) *VisitRepository {
	return &VisitRepository{col: db.Collection(collectionVisits)}
}

// Create inserts a new visit document and sets v.ID to the generated id.
func (r *VisitRepository) Create(ctx context.Context, v *domain.Visit) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *v
	doc.ID = ""
	res, err := r.col.InsertOne(ctx, &doc)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		v.ID = oid.Hex()
	}
	return nil
}

func (r *VisitRepository) FindByHaplID(ctx context.Context, haplID string) (*domain.Visit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var v domain.Visit
	if err := r.col.FindOne(ctx, bson.D{{Key: domain.FieldVisitHaplID, Value: haplID}}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, fmt.Errorf("find visit: %w", err)
	}
	return &v, nil
}

// ReplaceByHaplID overwrites the visit document and returns the stored result.
// The document id cannot change; id, business key and creation time are kept.
func (r *VisitRepository) ReplaceByHaplID(ctx context.Context, haplID string, v *domain.Visit) (*domain.Visit, error) {
	existing, err := r.FindByHaplID(ctx, haplID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *v
	doc.ID = ""
	doc.HaplID = existing.HaplID
	doc.CreatedAt = existing.CreatedAt

	var out domain.Visit
	err = r.col.FindOneAndReplace(ctx,
		bson.D{{Key: domain.FieldVisitHaplID, Value: haplID}},
		&doc,
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, fmt.Errorf("replace visit: %w", err)
	}
	return &out, nil
}

func (r *VisitRepository) DeleteByHaplID(ctx context.Context, haplID string) (*domain.Visit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out domain.Visit
	if err := r.col.FindOneAndDelete(ctx, bson.D{{Key: domain.FieldVisitHaplID, Value: haplID}}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, fmt.Errorf("delete visit: %w", err)
	}
	return &out, nil
}

func (r *VisitRepository) CountCapturedOn(ctx context.Context, day time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.D{{Key: domain.FieldVisitCapturedDate, Value: day}})
	if err != nil {
		return 0, fmt.Errorf("count captured visits: %w", err)
	}
	return n, nil
}

func (r *VisitRepository) Count(ctx context.Context, where query.Predicate) (int64, error) {
	filter, err := toFilter(where)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return n, nil
}

// Find returns matching visits in page order.
func (r *VisitRepository) Find(ctx context.Context, where query.Predicate, w ports.Window) ([]domain.Visit, error) {
	filter, err := pageFilter(where, w.After)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(pageSort)
	if w.Limit > 0 {
		opts.SetLimit(w.Limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find visits: %w", err)
	}
	visits := []domain.Visit{}
	if err := cur.All(ctx, &visits); err != nil {
		return nil, fmt.Errorf("decode visits: %w", err)
	}
	return visits, nil
}

func (r *VisitRepository) KeyOf(ctx context.Context, id string) (pagination.Key, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return pagination.Key{}, domain.ErrVisitNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	err = r.col.FindOne(ctx, bson.D{{Key: domain.FieldID, Value: oid}},
		options.FindOne().SetProjection(bson.D{{Key: domain.FieldCreatedAt, Value: 1}}),
	).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return pagination.Key{}, domain.ErrVisitNotFound
		}
		return pagination.Key{}, fmt.Errorf("find cursor visit: %w", err)
	}
	return pagination.Key{CreatedAt: row.CreatedAt.UTC(), ID: id}, nil
}

func (r *VisitRepository) ReportingManagers(ctx context.Context, limit int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := r.col.Distinct(ctx, domain.FieldVisitReportingMgr,
		bson.D{{Key: domain.FieldVisitReportingMgr, Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}})
	if err != nil {
		return nil, fmt.Errorf("distinct reporting managers: %w", err)
	}

	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	if limit > 0 && int64(len(names)) > limit {
		names = names[:limit]
	}
	return names, nil
}

// EnsureIndexes creates necessary indexes on the visits collection.
func (r *VisitRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldVisitHaplID, Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: domain.FieldVisitEmail, Value: 1}, {Key: domain.FieldCreatedAt, Value: -1}}},
		{Keys: pageSort},
		{Keys: bson.D{{Key: domain.FieldVisitCapturedDate, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldVisitReportingMgr, Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

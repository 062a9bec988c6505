package mongo

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/pagination"
	"github.com/hapl/fieldsales/internal/core/query"
)

// pageSort is the listing order shared by every paginated collection.
var pageSort = bson.D{{Key: domain.FieldCreatedAt, Value: -1}, {Key: domain.FieldID, Value: -1}}

// toFilter translates a predicate into a Mongo filter document. Conditions are
// combined under $and; each "any of" group becomes an $or.
func toFilter(p query.Predicate) (bson.D, error) {
	var clauses []bson.D
	for _, c := range p.Conditions() {
		clause, err := toClause(c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	for _, group := range p.Groups() {
		or := make(bson.A, 0, len(group))
		for _, c := range group {
			clause, err := toClause(c)
			if err != nil {
				return nil, err
			}
			or = append(or, clause)
		}
		clauses = append(clauses, bson.D{{Key: "$or", Value: or}})
	}
	return and(clauses...), nil
}

func and(clauses ...bson.D) bson.D {
	switch len(clauses) {
	case 0:
		return bson.D{}
	case 1:
		return clauses[0]
	}
	all := make(bson.A, len(clauses))
	for i, c := range clauses {
		all[i] = c
	}
	return bson.D{{Key: "$and", Value: all}}
}

func toClause(c query.Condition) (bson.D, error) {
	values := c.Values
	if c.Field == domain.FieldID {
		ids := make([]any, len(values))
		for i, v := range values {
			id, err := objectID(v)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		}
		values = ids
	}

	var expr any
	switch c.Op {
	case query.OpEq:
		expr = values[0]
	case query.OpIn:
		expr = bson.D{{Key: "$in", Value: bson.A(values)}}
	case query.OpInFold:
		patterns := make(bson.A, len(values))
		for i, v := range values {
			patterns[i] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(fmt.Sprint(v)) + "$", Options: "i"}
		}
		expr = bson.D{{Key: "$in", Value: patterns}}
	case query.OpNotNull:
		expr = bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}
	case query.OpGte:
		expr = bson.D{{Key: "$gte", Value: values[0]}}
	case query.OpLte:
		expr = bson.D{{Key: "$lte", Value: values[0]}}
	case query.OpContainsFold:
		expr = primitive.Regex{Pattern: regexp.QuoteMeta(fmt.Sprint(values[0])), Options: "i"}
	default:
		return nil, fmt.Errorf("unsupported operator %s on %s", c.Op, c.Field)
	}
	return bson.D{{Key: c.Field, Value: expr}}, nil
}

// afterKey matches documents listed strictly after k in page order.
func afterKey(k pagination.Key) (bson.D, error) {
	id, err := objectID(k.ID)
	if err != nil {
		return nil, err
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: domain.FieldCreatedAt, Value: bson.D{{Key: "$lt", Value: k.CreatedAt}}}},
		bson.D{
			{Key: domain.FieldCreatedAt, Value: k.CreatedAt},
			{Key: domain.FieldID, Value: bson.D{{Key: "$lt", Value: id}}},
		},
	}}}, nil
}

// pageFilter combines where with the window's position.
func pageFilter(where query.Predicate, after *pagination.Key) (bson.D, error) {
	filter, err := toFilter(where)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return filter, nil
	}
	pos, err := afterKey(*after)
	if err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return pos, nil
	}
	return and(filter, pos), nil
}

func objectID(v any) (primitive.ObjectID, error) {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id, nil
	case string:
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return primitive.NilObjectID, domain.Invalid("Invalid id " + id)
		}
		return oid, nil
	}
	return primitive.NilObjectID, fmt.Errorf("unsupported id type %T", v)
}

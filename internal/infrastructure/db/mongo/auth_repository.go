package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hapl/fieldsales/internal/core/domain"
)

const (
	usersCollection        = "users"
	verificationCollection = "verification_info"
	tokensCollection       = "auth"
)

// MongoAuthRepository reads the user directory and records issued tokens.
type MongoAuthRepository struct {
	users        *mongo.Collection
	verification *mongo.Collection
	tokens       *mongo.Collection
}

func NewAuthRepository(db *mongo.Database) *MongoAuthRepository {
	return &MongoAuthRepository{
		users:        db.Collection(usersCollection),
		verification: db.Collection(verificationCollection),
		tokens:       db.Collection(tokensCollection),
	}
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	Username     string             `bson:"username"`
	Role         string             `bson:"role"`
	ManagerEmail string             `bson:"manager_email,omitempty"`
	ManagerID    string             `bson:"manager_id,omitempty"`
	Hash         string             `bson:"hash"`
	Salt         string             `bson:"salt"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID.Hex(),
		Email:        mu.Email,
		Name:         mu.Name,
		Username:     mu.Username,
		Role:         mu.Role,
		ManagerEmail: mu.ManagerEmail,
		ManagerID:    mu.ManagerID,
		Hash:         mu.Hash,
		Salt:         mu.Salt,
		CreatedAt:    mu.CreatedAt,
		UpdatedAt:    mu.UpdatedAt,
	}
}

func (r *MongoAuthRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: domain.FieldUserEmail, Value: email}})
}

func (r *MongoAuthRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: domain.FieldID, Value: oid}})
}

func (r *MongoAuthRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// SubordinateEmails returns the emails of every user whose manager email
// equals managerEmail, ignoring case.
func (r *MongoAuthRepository) SubordinateEmails(ctx context.Context, managerEmail string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.users.Find(ctx, subordinatesFilter(managerEmail),
		options.Find().SetProjection(bson.D{{Key: domain.FieldUserEmail, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find subordinates: %w", err)
	}
	var rows []struct {
		Email string `bson:"email"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode subordinates: %w", err)
	}

	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		emails = append(emails, row.Email)
	}
	return emails, nil
}

func subordinatesFilter(managerEmail string) bson.D {
	return bson.D{{Key: domain.FieldUserManagerEmail, Value: primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(managerEmail) + "$",
		Options: "i",
	}}}
}

func (r *MongoAuthRepository) FindVerification(ctx context.Context, userID string) (*domain.VerificationInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var info domain.VerificationInfo
	if err := r.verification.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	return &info, nil
}

// SaveTokens upserts the token record of t.UserID.
func (r *MongoAuthRepository) SaveTokens(ctx context.Context, t *domain.AuthTokens) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.tokens.ReplaceOne(ctx, bson.D{{Key: "user_id", Value: t.UserID}}, t, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes of the directory collections.
func (r *MongoAuthRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldUserEmail, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldUserManagerEmail, Value: 1}}},
	}); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if _, err := r.verification.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("verification indexes: %w", err)
	}
	if _, err := r.tokens.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("token indexes: %w", err)
	}
	return nil
}

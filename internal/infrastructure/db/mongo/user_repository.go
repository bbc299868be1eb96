package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on MongoDB. Email and
// username uniqueness is enforced by unique indexes, so two concurrent
// registrations with the same email cannot both succeed regardless of any
// application-level check.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	Role               string             `bson:"role"`
	IsVerified         bool               `bson:"is_verified"`
	VerificationSecret string             `bson:"verification_secret,omitempty"`
	ResetSecret        string             `bson:"reset_secret,omitempty"`
	ResetSecretExpiry  *time.Time         `bson:"reset_secret_expiry,omitempty"`
	FirstName          string             `bson:"first_name,omitempty"`
	LastName           string             `bson:"last_name,omitempty"`
	AvatarRef          string             `bson:"avatar_ref,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 mu.ID.Hex(),
		Username:           mu.Username,
		Email:              mu.Email,
		PasswordHash:       mu.PasswordHash,
		Role:               mu.Role,
		IsVerified:         mu.IsVerified,
		VerificationSecret: mu.VerificationSecret,
		ResetSecret:        mu.ResetSecret,
		ResetSecretExpiry:  mu.ResetSecretExpiry,
		FirstName:          mu.FirstName,
		LastName:           mu.LastName,
		AvatarRef:          mu.AvatarRef,
		CreatedAt:          mu.CreatedAt,
		UpdatedAt:          mu.UpdatedAt,
	}
}

// parseID validates that id is a well-formed object id before it can reach a
// query, so crafted identifier input fails fast with ErrInvalidArgument.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidArgument
	}
	return oid, nil
}

func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Username:           user.Username,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		Role:               user.Role,
		IsVerified:         user.IsVerified,
		VerificationSecret: user.VerificationSecret,
		ResetSecret:        user.ResetSecret,
		ResetSecretExpiry:  user.ResetSecretExpiry,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		AvatarRef:          user.AvatarRef,
		CreatedAt:          user.CreatedAt.UTC(),
		UpdatedAt:          user.UpdatedAt.UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, wrapErr("insert user", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByVerificationSecret(ctx context.Context, secret string) (*domain.User, error) {
	if secret == "" {
		return nil, domain.ErrInvalidArgument
	}
	return r.findOne(ctx, bson.M{"verification_secret": secret})
}

// FindByResetSecret enforces the expiry predicate in the query itself: a
// secret whose stored expiry is not after notExpiredAsOf does not resolve.
func (r *UserRepository) FindByResetSecret(ctx context.Context, secret string, notExpiredAsOf time.Time) (*domain.User, error) {
	if secret == "" {
		return nil, domain.ErrInvalidArgument
	}
	return r.findOne(ctx, bson.M{
		"reset_secret":        secret,
		"reset_secret_expiry": bson.M{"$gt": notExpiredAsOf.UTC()},
	})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrapErr("find user", err)
	}
	return mu.toDomain(), nil
}

// Update applies the whole patch in a single UpdateOne, so a password change
// and its reset-secret clear land atomically.
func (r *UserRepository) Update(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if patch.IsZero() {
		return nil, domain.ErrInvalidArgument
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.IsVerified != nil {
		set["is_verified"] = *patch.IsVerified
	}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.AvatarRef != nil {
		set["avatar_ref"] = *patch.AvatarRef
	}

	update := bson.M{"$set": set}
	unset := bson.M{}
	if patch.ClearVerificationSecret {
		unset["verification_secret"] = ""
	}
	if patch.ClearResetSecret {
		unset["reset_secret"] = ""
		unset["reset_secret_expiry"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var mu mongoUser
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, wrapErr("update user", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, wrapErr("decode user", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, wrapErr("list users", err)
	}
	return users, nil
}

// MarkVerified sets is_verified and removes the verification secret in one
// write, making the secret single-use.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"verification_secret": ""},
	})
	if err != nil {
		return wrapErr("mark verified", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetResetSecret stores the secret and its expiry together; they are never
// set independently.
func (r *UserRepository) SetResetSecret(ctx context.Context, id, secret string, expiry time.Time) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if secret == "" {
		return domain.ErrInvalidArgument
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"reset_secret":        secret,
			"reset_secret_expiry": expiry.UTC(),
			"updated_at":          time.Now().UTC(),
		},
	})
	if err != nil {
		return wrapErr("set reset secret", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique constraints the uniqueness invariants rely
// on, plus lookup indexes for the one-time secrets.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verification_secret", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "reset_secret", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

const collectionAudit = "audit_logs"

// AuditRepository implements ports.AuditRepository on MongoDB. The collection
// is append-only; no update or delete path exists.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

type mongoAuditEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Actor         string             `bson:"actor"`
	Action        string             `bson:"action"`
	Detail        string             `bson:"detail,omitempty"`
	OriginAddress string             `bson:"origin_address"`
	Timestamp     time.Time          `bson:"timestamp"`
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	doc := mongoAuditEntry{
		Actor:         entry.Actor,
		Action:        entry.Action,
		Detail:        entry.Detail,
		OriginAddress: entry.OriginAddress,
		Timestamp:     entry.Timestamp.UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return wrapErr("insert audit entry", err)
	}
	return nil
}

// Query returns one page of entries sorted newest-first plus the total match
// count. Provided filter fields combine with AND semantics.
func (r *AuditRepository) Query(ctx context.Context, filter ports.AuditFilter, page, pageSize int) ([]*domain.AuditEntry, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Actor != "" {
		query["actor"] = bson.M{"$eq": filter.Actor}
	}
	if filter.Action != "" {
		query["action"] = bson.M{"$eq": filter.Action}
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		ts := bson.M{}
		if !filter.From.IsZero() {
			ts["$gte"] = filter.From.UTC()
		}
		if !filter.To.IsZero() {
			ts["$lte"] = filter.To.UTC()
		}
		query["timestamp"] = ts
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, wrapErr("count audit entries", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(page-1) * int64(pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, wrapErr("query audit entries", err)
	}
	defer cur.Close(ctx)

	entries := make([]*domain.AuditEntry, 0, pageSize)
	for cur.Next(ctx) {
		var me mongoAuditEntry
		if err := cur.Decode(&me); err != nil {
			return nil, 0, wrapErr("decode audit entry", err)
		}
		entries = append(entries, &domain.AuditEntry{
			ID:            me.ID.Hex(),
			Actor:         me.Actor,
			Action:        me.Action,
			Detail:        me.Detail,
			OriginAddress: me.OriginAddress,
			Timestamp:     me.Timestamp,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, 0, wrapErr("query audit entries", err)
	}
	return entries, total, nil
}

// EnsureIndexes creates the indexes the admin query surface sorts and filters on.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

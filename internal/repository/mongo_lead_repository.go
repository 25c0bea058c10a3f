package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/privatinsolvenz/lead-dashboard/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names
const (
	CollectionLeads  = "leads"
	CollectionTokens = "oauth_tokens"
)

// notDeleted matches documents that were never soft-deleted, including ones
// written before the flag existed
var notDeleted = bson.E{Key: "deleted", Value: bson.D{{Key: "$ne", Value: true}}}

// storeError marks connectivity failures as ErrUnavailable so callers can
// answer 503 while the client reconnects
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// MongoLeadRepository stores leads in a MongoDB collection
type MongoLeadRepository struct {
	coll    *mongo.Collection
	indexes EnsureOnce
}

func NewMongoLeadRepository(db *mongo.Database) *MongoLeadRepository {
	return &MongoLeadRepository{coll: db.Collection(CollectionLeads)}
}

// EnsureIndexes creates the unique task id index and the listing indexes.
// Until it succeeds it is retried before every write and on Ping, so a
// store that was down at startup gets its indexes once it is reachable.
func (r *MongoLeadRepository) EnsureIndexes(ctx context.Context) error {
	return r.indexes.Do(ctx, func(ctx context.Context) error {
		_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "taskId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
			{Keys: bson.D{{Key: "phase", Value: 1}, {Key: "qualified", Value: 1}}},
		})
		if err != nil {
			return fmt.Errorf("failed to create lead indexes: %w", storeError(err))
		}
		return nil
	})
}

// Create refuses to insert while the unique task id index is missing
func (r *MongoLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if err := r.EnsureIndexes(ctx); err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, lead); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("lead %s: %w", lead.TaskID, ErrDuplicate)
		}
		return storeError(err)
	}
	return nil
}

func (r *MongoLeadRepository) Save(ctx context.Context, lead *domain.Lead) error {
	if err := r.EnsureIndexes(ctx); err != nil {
		return err
	}
	filter := bson.D{{Key: "taskId", Value: lead.TaskID}}
	_, err := r.coll.ReplaceOne(ctx, filter, lead, options.Replace().SetUpsert(true))
	return storeError(err)
}

func (r *MongoLeadRepository) GetByTaskID(ctx context.Context, taskID string) (*domain.Lead, error) {
	return r.findOne(ctx, bson.D{{Key: "taskId", Value: taskID}, notDeleted})
}

func (r *MongoLeadRepository) FindByTaskID(ctx context.Context, taskID string) (*domain.Lead, error) {
	return r.findOne(ctx, bson.D{{Key: "taskId", Value: taskID}})
}

func (r *MongoLeadRepository) findOne(ctx context.Context, filter bson.D) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.coll.FindOne(ctx, filter).Decode(&lead); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeError(err)
	}
	return &lead, nil
}

func (r *MongoLeadRepository) List(ctx context.Context, page, pageSize int, filters LeadFilters) ([]domain.Lead, int64, error) {
	filter := bson.D{notDeleted}
	if filters.Search != "" {
		filter = append(filter, bson.E{Key: "leadName", Value: bson.Regex{
			Pattern: regexp.QuoteMeta(filters.Search),
			Options: "i",
		}})
	}
	if filters.Phase != nil {
		filter = append(filter, bson.E{Key: "phase", Value: *filters.Phase})
	}
	if filters.Qualified != nil {
		filter = append(filter, bson.E{Key: "qualified", Value: *filters.Qualified})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err)
	}

	findOpts := options.Find().
		SetSkip(int64(offsetFor(page, pageSize))).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "taskId", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, storeError(err)
	}
	defer cursor.Close(ctx)

	leads := []domain.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *MongoLeadRepository) ListActive(ctx context.Context) ([]domain.Lead, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{notDeleted}, findOpts)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	leads := []domain.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *MongoLeadRepository) Stats(ctx context.Context) (*LeadStats, error) {
	stats := newLeadStats()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{notDeleted}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$phase"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "qualified", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$qualified", 1, 0}},
			}}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Phase     domain.Phase `bson:"_id"`
		Count     int64        `bson:"count"`
		Qualified int64        `bson:"qualified"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByPhase[row.Phase] = row.Count
		stats.Total += row.Count
		stats.Qualified += row.Qualified
	}
	return stats, nil
}

func (r *MongoLeadRepository) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, nil); err != nil {
		return storeError(err)
	}
	return r.EnsureIndexes(ctx)
}

// MongoTokenRepository stores OAuth tokens in a MongoDB collection
type MongoTokenRepository struct {
	coll *mongo.Collection
}

func NewMongoTokenRepository(db *mongo.Database) *MongoTokenRepository {
	return &MongoTokenRepository{coll: db.Collection(CollectionTokens)}
}

func (r *MongoTokenRepository) Upsert(ctx context.Context, token *domain.OAuthToken) error {
	filter := bson.D{{Key: "provider", Value: token.Provider}}
	_, err := r.coll.ReplaceOne(ctx, filter, token, options.Replace().SetUpsert(true))
	return storeError(err)
}

func (r *MongoTokenRepository) GetLatest(ctx context.Context, provider string) (*domain.OAuthToken, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	var token domain.OAuthToken
	err := r.coll.FindOne(ctx, bson.D{{Key: "provider", Value: provider}}, opts).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeError(err)
	}
	return &token, nil
}

package persistence

import (
	"context"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const publishAuditCollection = "publish_audit"

// PublishAuditRepository appends publish attempts to a Mongo collection.
// With a nil client it records nothing and lists an empty history.
type PublishAuditRepository struct {
	mongoDb *mongo.Client
	dbName  string
}

func NewPublishAuditRepository(db *mongo.Client, dbName string) *PublishAuditRepository {
	return &PublishAuditRepository{mongoDb: db, dbName: dbName}
}

var _ repository.IPublishAudit = (*PublishAuditRepository)(nil)

func (r *PublishAuditRepository) Record(ctx context.Context, audit *model.PublishAudit) error {
	if r.mongoDb == nil {
		logger.GetLogger().WithField("platform", audit.Platform).Debug("MongoDB client is nil - publish audit skipped")
		return nil
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection().InsertOne(ctx, audit)
	return errors.Wrap(err, "insert publish audit")
}

func (r *PublishAuditRepository) ListByProperty(ctx context.Context, userID, propertyID string) ([]model.PublishAudit, error) {
	history := make([]model.PublishAudit, 0)
	if r.mongoDb == nil {
		return history, nil
	}
	filter := bson.D{{Key: "user_id", Value: userID}, {Key: "property_id", Value: propertyID}}
	cursor, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100))
	if err != nil {
		return nil, errors.Wrap(err, "find publish audit")
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	for cursor.Next(ctx) {
		var audit model.PublishAudit
		if err := cursor.Decode(&audit); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding publish audit")
			continue
		}
		history = append(history, audit)
	}
	return history, cursor.Err()
}

func (r *PublishAuditRepository) collection() *mongo.Collection {
	return r.mongoDb.Database(r.dbName).Collection(publishAuditCollection)
}

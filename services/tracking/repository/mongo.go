package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	nr "github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/trackmybus/internal/pkg/models"
	"github.com/piresc/trackmybus/internal/pkg/newrelic"
	"github.com/piresc/trackmybus/services/tracking"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLocationRepo struct {
	col *mongo.Collection
}

// NewMongoLocationRepo keeps one document per bus keyed by _id = busId
func NewMongoLocationRepo(col *mongo.Collection) tracking.LocationRepo {
	return &mongoLocationRepo{col: col}
}

func (r *mongoLocationRepo) Upsert(ctx context.Context, busID string, record *models.BusLocationRecord) error {
	doc := *record
	doc.BusID = busID

	return newrelic.WithDatastoreSegment(ctx, nr.DatastoreMongoDB, r.col.Name(), "replaceOne", func() error {
		_, err := r.col.ReplaceOne(ctx, bson.M{"_id": busID}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("%w: upsert %s: %w", models.ErrStoreUnavailable, busID, err)
		}
		return nil
	})
}

func (r *mongoLocationRepo) Get(ctx context.Context, busID string) (*models.BusLocationRecord, error) {
	var record models.BusLocationRecord
	err := newrelic.WithDatastoreSegment(ctx, nr.DatastoreMongoDB, r.col.Name(), "findOne", func() error {
		return r.col.FindOne(ctx, bson.M{"_id": busID}).Decode(&record)
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", models.ErrStoreUnavailable, busID, err)
	}
	return &record, nil
}

func (r *mongoLocationRepo) GetMany(ctx context.Context, busIDs []string) (map[string]*models.BusLocationRecord, error) {
	result := make(map[string]*models.BusLocationRecord, len(busIDs))
	if len(busIDs) == 0 {
		return result, nil
	}
	for _, id := range busIDs {
		result[id] = nil
	}

	var records []models.BusLocationRecord
	err := newrelic.WithDatastoreSegment(ctx, nr.DatastoreMongoDB, r.col.Name(), "find", func() error {
		cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": busIDs}})
		if err != nil {
			return err
		}
		return cursor.All(ctx, &records)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get many: %w", models.ErrStoreUnavailable, err)
	}

	for i := range records {
		result[records[i].BusID] = &records[i]
	}
	return result, nil
}

func (r *mongoLocationRepo) StopSharing(ctx context.Context, busID string, stoppedAt time.Time) (bool, error) {
	var matched int64
	update := bson.M{"$set": bson.M{
		"sharing_enabled": false,
		"stopped_at":      stoppedAt.UTC(),
	}}
	err := newrelic.WithDatastoreSegment(ctx, nr.DatastoreMongoDB, r.col.Name(), "updateOne", func() error {
		res, err := r.col.UpdateOne(ctx, bson.M{"_id": busID}, update)
		if err != nil {
			return err
		}
		matched = res.MatchedCount
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: stop sharing %s: %w", models.ErrStoreUnavailable, busID, err)
	}
	return matched > 0, nil
}

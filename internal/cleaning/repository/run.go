package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	cleaningerrors "custclean/internal/cleaning/errors"
	"custclean/pkg/config"
	"custclean/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Cleaning_runs"
)

type RunRepository interface {
	Save(ctx context.Context, run *model.Run) error
	FindByID(ctx context.Context, id string) (*model.Run, error)
	FindRecent(ctx context.Context, limit int) ([]*model.Report, error)
}

type mongoRunRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRunRepository(cfg *config.Config) RunRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRunRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout keeps an earlier caller deadline when it is shorter than timeout.
func (r *mongoRunRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRunRepository) Save(ctx context.Context, run *model.Run) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	run.StartedAt = run.StartedAt.UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to save cleaning run: %w", err)
	}
	return nil
}

func (r *mongoRunRepository) FindByID(ctx context.Context, id string) (*model.Run, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", cleaningerrors.ErrInvalidID, id)
	}

	var run model.Run
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", cleaningerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find cleaning run: %w", err)
	}
	return &run, nil
}

// FindRecent returns run reports newest first without their rows.
func (r *mongoRunRepository) FindRecent(ctx context.Context, limit int) ([]*model.Report, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetProjection(bson.M{"rows": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleaning runs: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*model.Report
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode cleaning runs: %w", err)
	}
	return reports, nil
}

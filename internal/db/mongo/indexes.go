package mongo

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	"norelock.dev/mongorepo/internal/db/mongo/repositories"
	"norelock.dev/mongorepo/internal/utils"
)

// IndexPlan lists the indexes each collection should carry, keyed by
// collection name.
type IndexPlan map[string][]mongo.IndexModel

// Add appends an index built with repositories.IndexModel to collection.
func (p IndexPlan) Add(collection string, fieldOrSpec any, opts *options.IndexOptionsBuilder) error {
	model, err := repositories.IndexModel(fieldOrSpec, opts)
	if err != nil {
		return fmt.Errorf("index for %s: %w", collection, err)
	}
	p[collection] = append(p[collection], model)
	return nil
}

// indexCreator is the part of mongo.IndexView used to apply a plan.
type indexCreator interface {
	CreateMany(ctx context.Context, models []mongo.IndexModel, opts ...options.Lister[options.CreateIndexesOptions]) ([]string, error)
}

// EnsureIndexes creates every index of plan, one collection per goroutine.
// The first failure cancels the remaining collections.
func EnsureIndexes(ctx context.Context, client *Client, plan IndexPlan) error {
	return ensureIndexes(ctx, plan, func(collection string) indexCreator {
		return client.Collection(collection).Indexes()
	}, client.Logger())
}

func ensureIndexes(ctx context.Context, plan IndexPlan, view func(string) indexCreator, logger *utils.Logger) error {
	logger = logger.With("operation", "EnsureIndexes")

	collections := lo.Keys(plan)
	slices.Sort(collections)

	g, ctx := errgroup.WithContext(ctx)
	for _, collection := range collections {
		indexes := plan[collection]
		if len(indexes) == 0 {
			continue
		}

		g.Go(func() error {
			names, err := view(collection).CreateMany(ctx, indexes)
			if err != nil {
				logger.Error("Failed to create indexes", err, "collection", collection)
				return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
			}
			logger.Info("Successfully created indexes", "collection", collection, "count", len(names))
			return nil
		})
	}

	return g.Wait()
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"norelock.dev/mongorepo/internal/models"
)

// IndexModel builds an index model from a field name, a list of field names,
// a key document or a ready model. Field names become ascending keys. A bson.M
// must hold exactly one key because map order is undefined.
func IndexModel(fieldOrSpec any, opts *options.IndexOptionsBuilder) (mongo.IndexModel, error) {
	var keys bson.D

	switch spec := fieldOrSpec.(type) {
	case string:
		if spec != "" {
			keys = bson.D{ascending(spec)}
		}
	case []string:
		keys = lo.Map(lo.Compact(spec), func(field string, _ int) bson.E {
			return ascending(field)
		})
	case bson.D:
		keys = spec
	case bson.M:
		if len(spec) != 1 {
			return mongo.IndexModel{}, fmt.Errorf("%w: compound keys need an ordered document", models.ErrInvalidIndex)
		}
		for field, dir := range spec {
			keys = bson.D{{Key: field, Value: dir}}
		}
	case mongo.IndexModel:
		if opts != nil {
			spec.Options = opts
		}
		return spec, nil
	default:
		return mongo.IndexModel{}, fmt.Errorf("%w: unsupported type %T", models.ErrInvalidIndex, fieldOrSpec)
	}

	if len(keys) == 0 {
		return mongo.IndexModel{}, fmt.Errorf("%w: no keys", models.ErrInvalidIndex)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}, nil
}

// CreateCollectionIndex creates one index and returns its name.
func (r *repository[T]) CreateCollectionIndex(ctx context.Context, fieldOrSpec any, opts *options.IndexOptionsBuilder) (_ string, err error) {
	defer r.observe("create_index", time.Now(), &err)

	model, err := IndexModel(fieldOrSpec, opts)
	if err != nil {
		return "", models.NewRepositoryError(err, r.name, "create_index")
	}

	ctx, cancel := r.begin(ctx)
	defer cancel()

	name, err := r.indexes.CreateOne(ctx, model)
	if err != nil {
		return "", r.fail("create_index", err)
	}
	r.logger.Info("Created index", "index", name)
	return name, nil
}

// CreateCollectionIndexes creates several indexes and returns their names.
func (r *repository[T]) CreateCollectionIndexes(ctx context.Context, specs []mongo.IndexModel) (_ []string, err error) {
	defer r.observe("create_indexes", time.Now(), &err)
	if len(specs) == 0 {
		return []string{}, nil
	}

	ctx, cancel := r.begin(ctx)
	defer cancel()

	names, err := r.indexes.CreateMany(ctx, specs)
	if err != nil {
		return nil, r.fail("create_indexes", err, "count", len(specs))
	}
	r.logger.Info("Created indexes", "count", len(names))
	return names, nil
}

// DropCollectionIndex drops the named index.
func (r *repository[T]) DropCollectionIndex(ctx context.Context, name string) (err error) {
	defer r.observe("drop_index", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	if err = r.indexes.DropOne(ctx, name); err != nil {
		return r.fail("drop_index", err, "index", name)
	}
	return nil
}

// DropCollectionIndexes drops every index except _id.
func (r *repository[T]) DropCollectionIndexes(ctx context.Context) (err error) {
	defer r.observe("drop_indexes", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	if err = r.indexes.DropAll(ctx); err != nil {
		return r.fail("drop_indexes", err)
	}
	return nil
}

// ListCollectionIndexes opens a cursor over the index specifications.
func (r *repository[T]) ListCollectionIndexes(ctx context.Context, opts ...options.Lister[options.ListIndexesOptions]) (_ *mongo.Cursor, err error) {
	defer r.observe("list_indexes", time.Now(), &err)

	cursor, err := r.indexes.List(ctx, opts...)
	if err != nil {
		return nil, r.fail("list_indexes", err)
	}
	return cursor, nil
}

// CollectionIndexes returns the full index specifications.
func (r *repository[T]) CollectionIndexes(ctx context.Context) (_ []bson.D, err error) {
	defer r.observe("collection_indexes", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	specs := []bson.D{}
	if err = r.listIndexes(ctx, &specs); err != nil {
		return nil, r.fail("collection_indexes", err)
	}
	return specs, nil
}

type indexKeys struct {
	Name string `bson:"name"`
	Key  bson.D `bson:"key"`
}

// CollectionIndexInformation maps index names to their key documents.
func (r *repository[T]) CollectionIndexInformation(ctx context.Context) (_ map[string]bson.D, err error) {
	defer r.observe("index_information", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	var specs []indexKeys
	if err = r.listIndexes(ctx, &specs); err != nil {
		return nil, r.fail("index_information", err)
	}
	return lo.SliceToMap(specs, func(s indexKeys) (string, bson.D) {
		return s.Name, s.Key
	}), nil
}

// CollectionIndexExists reports whether every named index exists. It is
// false when no names are given.
func (r *repository[T]) CollectionIndexExists(ctx context.Context, names ...string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	info, err := r.CollectionIndexInformation(ctx)
	if err != nil {
		return false, err
	}
	return lo.EveryBy(names, func(name string) bool {
		_, ok := info[name]
		return ok
	}), nil
}

func (r *repository[T]) listIndexes(ctx context.Context, out any) error {
	cursor, err := r.indexes.List(ctx)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"norelock.dev/mongorepo/internal/models"
	"norelock.dev/mongorepo/internal/utils"
	"norelock.dev/mongorepo/pkg/entry"
)

// Repository defines the data access operations for entities of type T.
//
// Query arguments are deep entries: nested documents, maps or structs that are
// flattened into dotted-path filters. A bson.ObjectID selects by _id and a
// []bson.ObjectID selects by _id with $in. Update arguments are entry.Update
// values or any document keyed by update operators.
type Repository[T any] interface {
	// Name returns the collection name.
	Name() string

	// Query always fails; MongoDB has no raw query language.
	Query(ctx context.Context, query string, params ...any) error

	// CreateQueryBuilder always fails; MongoDB has no query builder.
	CreateQueryBuilder(alias string) error

	// Find returns every entity matching q.
	Find(ctx context.Context, q any, opts ...options.Lister[options.FindOptions]) ([]*T, error)

	// GetOne returns the first entity matching q, or nil when none match.
	GetOne(ctx context.Context, q any, opts ...options.Lister[options.FindOneOptions]) (*T, error)

	// GetAndCountBy returns the entities matching q and their count.
	GetAndCountBy(ctx context.Context, q any) ([]*T, int64, error)

	// FindOneByID returns the entity with the given identifier, or nil.
	FindOneByID(ctx context.Context, id bson.ObjectID) (*T, error)

	// FindOneOrFail is GetOne, failing with models.ErrEntityNotFound when nothing matches.
	FindOneOrFail(ctx context.Context, q any, opts ...options.Lister[options.FindOneOptions]) (*T, error)

	// FindOneByOrFail is FindOneOrFail without options.
	FindOneByOrFail(ctx context.Context, q any) (*T, error)

	// CreateCursor opens a raw cursor over the entities matching q.
	CreateCursor(ctx context.Context, q any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)

	// CreateEntityCursor opens a cursor that decodes into T.
	CreateEntityCursor(ctx context.Context, q any, opts ...options.Lister[options.FindOptions]) (*EntityCursor[T], error)

	// Aggregate runs an aggregation pipeline.
	Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error)

	// AggregateEntity runs an aggregation pipeline and decodes results into T.
	AggregateEntity(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*EntityCursor[T], error)

	// BulkWrite executes write models as they are.
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error)

	// InitializeOrderedBulkOp starts a bulk operation executed serially.
	InitializeOrderedBulkOp() *BulkOperation

	// InitializeUnorderedBulkOp starts a bulk operation the server may reorder.
	InitializeUnorderedBulkOp() *BulkOperation

	// Count counts the entities matching q; nil counts all.
	Count(ctx context.Context, q any, opts ...options.Lister[options.CountOptions]) (int64, error)

	// CountDocuments is Count.
	CountDocuments(ctx context.Context, q any, opts ...options.Lister[options.CountOptions]) (int64, error)

	// CountBy is Count.
	CountBy(ctx context.Context, q any, opts ...options.Lister[options.CountOptions]) (int64, error)

	// EstimatedCount returns the count from collection metadata.
	EstimatedCount(ctx context.Context) (int64, error)

	// CreateCollectionIndex creates one index and returns its name.
	CreateCollectionIndex(ctx context.Context, fieldOrSpec any, opts *options.IndexOptionsBuilder) (string, error)

	// CreateCollectionIndexes creates several indexes and returns their names.
	CreateCollectionIndexes(ctx context.Context, specs []mongo.IndexModel) ([]string, error)

	// DropCollectionIndex drops the named index.
	DropCollectionIndex(ctx context.Context, name string) error

	// DropCollectionIndexes drops every index except _id.
	DropCollectionIndexes(ctx context.Context) error

	// CollectionIndexes returns the full index specifications.
	CollectionIndexes(ctx context.Context) ([]bson.D, error)

	// CollectionIndexExists reports whether every named index exists.
	CollectionIndexExists(ctx context.Context, names ...string) (bool, error)

	// CollectionIndexInformation maps index names to their key documents.
	CollectionIndexInformation(ctx context.Context) (map[string]bson.D, error)

	// ListCollectionIndexes opens a cursor over the index specifications.
	ListCollectionIndexes(ctx context.Context, opts ...options.Lister[options.ListIndexesOptions]) (*mongo.Cursor, error)

	// DeleteMany deletes every entity matching q.
	DeleteMany(ctx context.Context, q any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error)

	// DeleteOne deletes the first entity matching q.
	DeleteOne(ctx context.Context, q any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)

	// Distinct returns the distinct values of field among entities matching q.
	Distinct(ctx context.Context, field string, q any) ([]any, error)

	// FindOneAndDelete deletes the first entity matching q and returns it, or nil.
	FindOneAndDelete(ctx context.Context, q any, opts ...options.Lister[options.FindOneAndDeleteOptions]) (*T, error)

	// FindOneAndReplace replaces the first entity matching q and returns it, or nil.
	FindOneAndReplace(ctx context.Context, q any, replacement *T, opts ...options.Lister[options.FindOneAndReplaceOptions]) (*T, error)

	// FindOneAndUpdate updates the first entity matching q and returns it, or nil.
	FindOneAndUpdate(ctx context.Context, q, u any, opts ...options.Lister[options.FindOneAndUpdateOptions]) (*T, error)

	// InsertMany inserts entities, assigning identifiers and timestamps.
	InsertMany(ctx context.Context, entities []*T, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error)

	// InsertOne inserts entity and returns it with its identifier set.
	InsertOne(ctx context.Context, entity *T, opts ...options.Lister[options.InsertOneOptions]) (*T, error)

	// IsCapped reports whether the collection is capped.
	IsCapped(ctx context.Context) (bool, error)

	// Stats returns the collection statistics.
	Stats(ctx context.Context) (*CollectionStats, error)

	// ReplaceOne replaces the first entity matching q.
	ReplaceOne(ctx context.Context, q any, replacement *T, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)

	// UpdateMany applies u to every entity matching q.
	UpdateMany(ctx context.Context, q, u any, opts ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error)

	// UpdateOne applies u to the first entity matching q.
	UpdateOne(ctx context.Context, q, u any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

// repository is the MongoDB implementation of Repository.
type repository[T any] struct {
	collection collection
	indexes    indexView
	db         commander
	name       string
	logger     *utils.Logger
	settings
}

// NewRepository creates a repository over the named collection of db.
func NewRepository[T any](db *mongo.Database, name string, logger *utils.Logger, opts ...Option) (Repository[T], error) {
	if err := utils.ValidateVar(name, "collection_name"); err != nil {
		return nil, models.NewValidationError(models.ErrInvalidCollection, fmt.Sprintf("invalid collection name %q", name))
	}
	coll := db.Collection(name)
	return newRepository[T](coll, coll.Indexes(), db, logger, opts...), nil
}

func newRepository[T any](coll collection, idx indexView, db commander, logger *utils.Logger, opts ...Option) *repository[T] {
	if logger == nil {
		logger = utils.GetLogger()
	}
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &repository[T]{
		collection: coll,
		indexes:    idx,
		db:         db,
		name:       coll.Name(),
		logger:     logger.Named(coll.Name() + "_repository"),
		settings:   s,
	}
}

// Name returns the collection name.
func (r *repository[T]) Name() string {
	return r.name
}

// Query always fails.
func (r *repository[T]) Query(context.Context, string, ...any) error {
	return models.ErrQueriesUnsupported
}

// CreateQueryBuilder always fails.
func (r *repository[T]) CreateQueryBuilder(string) error {
	return models.ErrQueryBuilderUnsupported
}

// Find returns every entity matching q.
func (r *repository[T]) Find(ctx context.Context, q any, opts ...options.Lister[options.FindOptions]) (out []*T, err error) {
	defer r.observe("find", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, r.filter("find", q), r.findOptions(opts)...)
	if err != nil {
		return nil, r.fail("find", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &out); err != nil {
		return nil, r.fail("find", err)
	}
	return out, nil
}

// GetOne returns the first entity matching q, or nil when none match.
func (r *repository[T]) GetOne(ctx context.Context, q any, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	return orNil(r.findOne(ctx, "get_one", q, opts...))
}

// GetAndCountBy returns the entities matching q and their count.
func (r *repository[T]) GetAndCountBy(ctx context.Context, q any) ([]*T, int64, error) {
	entities, err := r.Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	count, err := r.CountBy(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return entities, count, nil
}

// FindOneByID returns the entity with the given identifier, or nil.
func (r *repository[T]) FindOneByID(ctx context.Context, id bson.ObjectID) (*T, error) {
	return orNil(r.findOne(ctx, "find_one_by_id", id))
}

// FindOneOrFail returns the first entity matching q or models.ErrEntityNotFound.
func (r *repository[T]) FindOneOrFail(ctx context.Context, q any, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	return r.findOne(ctx, "find_one_or_fail", q, opts...)
}

// FindOneByOrFail returns the first entity matching q or models.ErrEntityNotFound.
func (r *repository[T]) FindOneByOrFail(ctx context.Context, q any) (*T, error) {
	return r.findOne(ctx, "find_one_by_or_fail", q)
}

func (r *repository[T]) findOne(ctx context.Context, op string, q any, opts ...options.Lister[options.FindOneOptions]) (_ *T, err error) {
	defer r.observe(op, time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	return r.decodeOne(op, r.collection.FindOne(ctx, r.filter(op, q), opts...))
}

// CreateCursor opens a raw cursor over the entities matching q. The cursor
// outlives the call, so the operation timeout does not apply.
func (r *repository[T]) CreateCursor(ctx context.Context, q any, opts ...options.Lister[options.FindOptions]) (_ *mongo.Cursor, err error) {
	defer r.observe("create_cursor", time.Now(), &err)

	cursor, err := r.collection.Find(ctx, r.filter("create_cursor", q), r.findOptions(opts)...)
	if err != nil {
		return nil, r.fail("create_cursor", err)
	}
	return cursor, nil
}

// CreateEntityCursor opens a cursor that decodes into T.
func (r *repository[T]) CreateEntityCursor(ctx context.Context, q any, opts ...options.Lister[options.FindOptions]) (*EntityCursor[T], error) {
	cursor, err := r.CreateCursor(ctx, q, opts...)
	if err != nil {
		return nil, err
	}
	return NewEntityCursor[T](cursor), nil
}

// Aggregate runs an aggregation pipeline. The pipeline is passed through as is.
func (r *repository[T]) Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (_ *mongo.Cursor, err error) {
	defer r.observe("aggregate", time.Now(), &err)

	if r.batchSize > 0 {
		opts = append([]options.Lister[options.AggregateOptions]{options.Aggregate().SetBatchSize(r.batchSize)}, opts...)
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, r.fail("aggregate", err)
	}
	return cursor, nil
}

// AggregateEntity runs an aggregation pipeline and decodes results into T.
func (r *repository[T]) AggregateEntity(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*EntityCursor[T], error) {
	cursor, err := r.Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	return NewEntityCursor[T](cursor), nil
}

// BulkWrite executes write models as they are.
func (r *repository[T]) BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (_ *mongo.BulkWriteResult, err error) {
	defer r.observe("bulk_write", time.Now(), &err)
	if len(writes) == 0 {
		return nil, models.NewRepositoryError(models.ErrEmptyBulk, r.name, "bulk_write")
	}
	ctx, cancel := r.begin(ctx)
	defer cancel()

	res, err := r.collection.BulkWrite(ctx, writes, opts...)
	if err != nil {
		return nil, r.fail("bulk_write", err, "operations", len(writes))
	}
	return res, nil
}

// InitializeOrderedBulkOp starts a bulk operation executed serially.
func (r *repository[T]) InitializeOrderedBulkOp() *BulkOperation {
	return newBulkOperation(r.BulkWrite, true, r.now)
}

// InitializeUnorderedBulkOp starts a bulk operation the server may reorder.
func (r *repository[T]) InitializeUnorderedBulkOp() *BulkOperation {
	return newBulkOperation(r.BulkWrite, false, r.now)
}

// Count counts the entities matching q.
func (r *repository[T]) Count(ctx context.Context, q any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	return r.count(ctx, "count", q, opts...)
}

// CountDocuments counts the entities matching q.
func (r *repository[T]) CountDocuments(ctx context.Context, q any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	return r.count(ctx, "count_documents", q, opts...)
}

// CountBy counts the entities matching q.
func (r *repository[T]) CountBy(ctx context.Context, q any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	return r.count(ctx, "count_by", q, opts...)
}

func (r *repository[T]) count(ctx context.Context, op string, q any, opts ...options.Lister[options.CountOptions]) (n int64, err error) {
	defer r.observe(op, time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	n, err = r.collection.CountDocuments(ctx, r.filter(op, q), opts...)
	if err != nil {
		return 0, r.fail(op, err)
	}
	return n, nil
}

// EstimatedCount returns the count from collection metadata.
func (r *repository[T]) EstimatedCount(ctx context.Context) (n int64, err error) {
	defer r.observe("estimated_count", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	n, err = r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, r.fail("estimated_count", err)
	}
	return n, nil
}

// DeleteMany deletes every entity matching q.
func (r *repository[T]) DeleteMany(ctx context.Context, q any, opts ...options.Lister[options.DeleteManyOptions]) (_ *mongo.DeleteResult, err error) {
	defer r.observe("delete_many", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, r.filter("delete_many", q), opts...)
	if err != nil {
		return nil, r.fail("delete_many", err)
	}
	return res, nil
}

// DeleteOne deletes the first entity matching q.
func (r *repository[T]) DeleteOne(ctx context.Context, q any, opts ...options.Lister[options.DeleteOneOptions]) (_ *mongo.DeleteResult, err error) {
	defer r.observe("delete_one", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, r.filter("delete_one", q), opts...)
	if err != nil {
		return nil, r.fail("delete_one", err)
	}
	return res, nil
}

// Distinct returns the distinct values of field among entities matching q.
func (r *repository[T]) Distinct(ctx context.Context, field string, q any) (_ []any, err error) {
	defer r.observe("distinct", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	cmd := bson.D{cmdDistinct(r.name), cmdKey(field), cmdQuery(r.filter("distinct", q))}

	var reply struct {
		Values []any `bson:"values"`
	}
	if err = r.db.RunCommand(ctx, cmd).Decode(&reply); err != nil {
		return nil, r.fail("distinct", err, "field", field)
	}
	if reply.Values == nil {
		reply.Values = []any{}
	}
	return reply.Values, nil
}

// FindOneAndDelete deletes the first entity matching q and returns it, or nil.
func (r *repository[T]) FindOneAndDelete(ctx context.Context, q any, opts ...options.Lister[options.FindOneAndDeleteOptions]) (_ *T, err error) {
	defer r.observe("find_one_and_delete", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	return orNil(r.decodeOne("find_one_and_delete", r.collection.FindOneAndDelete(ctx, r.filter("find_one_and_delete", q), opts...)))
}

// FindOneAndReplace replaces the first entity matching q and returns it, or nil.
// The replacement is stored as it is.
func (r *repository[T]) FindOneAndReplace(ctx context.Context, q any, replacement *T, opts ...options.Lister[options.FindOneAndReplaceOptions]) (_ *T, err error) {
	defer r.observe("find_one_and_replace", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	r.touch(replacement)
	return orNil(r.decodeOne("find_one_and_replace", r.collection.FindOneAndReplace(ctx, r.filter("find_one_and_replace", q), replacement, opts...)))
}

// FindOneAndUpdate updates the first entity matching q and returns it, or nil.
func (r *repository[T]) FindOneAndUpdate(ctx context.Context, q, u any, opts ...options.Lister[options.FindOneAndUpdateOptions]) (_ *T, err error) {
	defer r.observe("find_one_and_update", time.Now(), &err)
	update, err := r.update("find_one_and_update", u)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.begin(ctx)
	defer cancel()

	return orNil(r.decodeOne("find_one_and_update", r.collection.FindOneAndUpdate(ctx, r.filter("find_one_and_update", q), update, opts...)))
}

// InsertMany inserts entities, assigning identifiers and timestamps.
func (r *repository[T]) InsertMany(ctx context.Context, entities []*T, opts ...options.Lister[options.InsertManyOptions]) (_ *mongo.InsertManyResult, err error) {
	defer r.observe("insert_many", time.Now(), &err)
	if len(entities) == 0 {
		return &mongo.InsertManyResult{}, nil
	}
	ctx, cancel := r.begin(ctx)
	defer cancel()

	now := r.now()
	for _, e := range entities {
		models.Prepare(e, now)
	}

	res, err := r.collection.InsertMany(ctx, entities, opts...)
	if err != nil {
		return nil, r.fail("insert_many", err, "count", len(entities))
	}
	return res, nil
}

// InsertOne inserts entity and returns it with its identifier set.
func (r *repository[T]) InsertOne(ctx context.Context, entity *T, opts ...options.Lister[options.InsertOneOptions]) (_ *T, err error) {
	defer r.observe("insert_one", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	models.Prepare(entity, r.now())

	res, err := r.collection.InsertOne(ctx, entity, opts...)
	if err != nil {
		return nil, r.fail("insert_one", err)
	}

	if e, ok := any(entity).(models.Identifiable); ok {
		if id, ok := res.InsertedID.(bson.ObjectID); ok {
			e.SetID(id)
		}
	}
	return entity, nil
}

// ReplaceOne replaces the first entity matching q.
func (r *repository[T]) ReplaceOne(ctx context.Context, q any, replacement *T, opts ...options.Lister[options.ReplaceOptions]) (_ *mongo.UpdateResult, err error) {
	defer r.observe("replace_one", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	r.touch(replacement)
	res, err := r.collection.ReplaceOne(ctx, r.filter("replace_one", q), replacement, opts...)
	if err != nil {
		return nil, r.fail("replace_one", err)
	}
	return res, nil
}

// UpdateMany applies u to every entity matching q.
func (r *repository[T]) UpdateMany(ctx context.Context, q, u any, opts ...options.Lister[options.UpdateManyOptions]) (_ *mongo.UpdateResult, err error) {
	defer r.observe("update_many", time.Now(), &err)
	update, err := r.update("update_many", u)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.begin(ctx)
	defer cancel()

	res, err := r.collection.UpdateMany(ctx, r.filter("update_many", q), update, opts...)
	if err != nil {
		return nil, r.fail("update_many", err)
	}
	return res, nil
}

// UpdateOne applies u to the first entity matching q.
func (r *repository[T]) UpdateOne(ctx context.Context, q, u any, opts ...options.Lister[options.UpdateOneOptions]) (_ *mongo.UpdateResult, err error) {
	defer r.observe("update_one", time.Now(), &err)
	update, err := r.update("update_one", u)
	if err != nil {
		return nil, err
	}
	ctx, cancel := r.begin(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, r.filter("update_one", q), update, opts...)
	if err != nil {
		return nil, r.fail("update_one", err)
	}
	return res, nil
}

// begin applies the operation timeout to ctx.
func (r *repository[T]) begin(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {}
}

// observe records the outcome of op; a missing entity is not a failure.
func (r *repository[T]) observe(op string, start time.Time, err *error) {
	failed := *err
	if errors.Is(failed, models.ErrEntityNotFound) {
		failed = nil
	}
	r.metrics.ObserveOperation(r.name, op, time.Since(start), failed)
}

func (r *repository[T]) filter(op string, q any) bson.D {
	f := entry.Query(q)
	if r.logFilters {
		r.logger.Debug("Flattened filter", "operation", op, "filter", f)
	}
	return f
}

func (r *repository[T]) update(op string, u any) (bson.D, error) {
	d := entry.ToUpdate(u)
	if len(d) == 0 {
		return nil, models.NewRepositoryError(models.ErrEmptyUpdate, r.name, op)
	}
	if r.logFilters {
		r.logger.Debug("Flattened update", "operation", op, "update", d)
	}
	return d, nil
}

func (r *repository[T]) findOptions(opts []options.Lister[options.FindOptions]) []options.Lister[options.FindOptions] {
	if r.batchSize <= 0 {
		return opts
	}
	return append([]options.Lister[options.FindOptions]{options.Find().SetBatchSize(r.batchSize)}, opts...)
}

// decodeOne decodes a single result, mapping a missing document onto
// models.ErrEntityNotFound without logging it.
func (r *repository[T]) decodeOne(op string, res *mongo.SingleResult) (*T, error) {
	var entity T
	if err := res.Decode(&entity); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewRepositoryError(err, r.name, op)
		}
		return nil, r.fail(op, err)
	}
	return &entity, nil
}

// touch refreshes the update timestamp of entities that carry one.
func (r *repository[T]) touch(entity *T) {
	if e, ok := any(entity).(models.Timestamped); ok {
		e.TimeUpdate(r.now())
	}
}

func (r *repository[T]) fail(op string, err error, fields ...any) error {
	r.logger.Error("Repository operation failed", err, append([]any{"operation", op}, fields...)...)
	return models.NewRepositoryError(err, r.name, op)
}

func orNil[T any](entity *T, err error) (*T, error) {
	if errors.Is(err, models.ErrEntityNotFound) {
		return nil, nil
	}
	return entity, err
}

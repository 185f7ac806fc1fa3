package repositories

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"norelock.dev/mongorepo/internal/models"
	"norelock.dev/mongorepo/internal/utils"
)

type address struct {
	City    string `bson:"city"`
	Country string `bson:"country,omitempty"`
}

type person struct {
	models.Base `bson:",inline"`
	Name        string   `bson:"name"`
	Age         int      `bson:"age"`
	Address     *address `bson:"address,omitempty"`
}

// call records what the repository handed to the driver.
type call struct {
	op          string
	filter      any
	update      any
	document    any
	hasDeadline bool
	opts        int
}

// fakeCollection answers driver calls from canned documents.
type fakeCollection struct {
	mu    sync.Mutex
	name  string
	docs  []any
	one   any
	count int64
	err   error
	calls []call
}

func newFakeCollection(name string) *fakeCollection {
	return &fakeCollection{name: name}
}

func (f *fakeCollection) record(ctx context.Context, c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, c.hasDeadline = ctx.Deadline()
	f.calls = append(f.calls, c)
}

func (f *fakeCollection) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeCollection) cursor() (*mongo.Cursor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func (f *fakeCollection) single() *mongo.SingleResult {
	switch {
	case f.err != nil:
		return mongo.NewSingleResultFromDocument(bson.D{}, f.err, nil)
	case f.one == nil:
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	default:
		return mongo.NewSingleResultFromDocument(f.one, nil, nil)
	}
}

func (f *fakeCollection) Name() string { return f.name }

func (f *fakeCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	f.record(ctx, call{op: "find", filter: filter, opts: len(opts)})
	return f.cursor()
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	f.record(ctx, call{op: "find_one", filter: filter, opts: len(opts)})
	return f.single()
}

func (f *fakeCollection) FindOneAndDelete(ctx context.Context, filter any, opts ...options.Lister[options.FindOneAndDeleteOptions]) *mongo.SingleResult {
	f.record(ctx, call{op: "find_one_and_delete", filter: filter, opts: len(opts)})
	return f.single()
}

func (f *fakeCollection) FindOneAndReplace(ctx context.Context, filter, replacement any, opts ...options.Lister[options.FindOneAndReplaceOptions]) *mongo.SingleResult {
	f.record(ctx, call{op: "find_one_and_replace", filter: filter, document: replacement, opts: len(opts)})
	return f.single()
}

func (f *fakeCollection) FindOneAndUpdate(ctx context.Context, filter, update any, opts ...options.Lister[options.FindOneAndUpdateOptions]) *mongo.SingleResult {
	f.record(ctx, call{op: "find_one_and_update", filter: filter, update: update, opts: len(opts)})
	return f.single()
}

func (f *fakeCollection) Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (*mongo.Cursor, error) {
	f.record(ctx, call{op: "aggregate", document: pipeline, opts: len(opts)})
	return f.cursor()
}

func (f *fakeCollection) BulkWrite(ctx context.Context, writes []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error) {
	f.record(ctx, call{op: "bulk_write", document: writes, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.BulkWriteResult{InsertedCount: int64(len(writes))}, nil
}

func (f *fakeCollection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	f.record(ctx, call{op: "count", filter: filter, opts: len(opts)})
	return f.count, f.err
}

func (f *fakeCollection) EstimatedDocumentCount(ctx context.Context, opts ...options.Lister[options.EstimatedDocumentCountOptions]) (int64, error) {
	f.record(ctx, call{op: "estimated_count", opts: len(opts)})
	return f.count, f.err
}

func (f *fakeCollection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	f.record(ctx, call{op: "delete_one", filter: filter, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func (f *fakeCollection) DeleteMany(ctx context.Context, filter any, opts ...options.Lister[options.DeleteManyOptions]) (*mongo.DeleteResult, error) {
	f.record(ctx, call{op: "delete_many", filter: filter, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{DeletedCount: f.count}, nil
}

func (f *fakeCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	f.record(ctx, call{op: "insert_one", document: document, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	var id any = bson.NewObjectID()
	if e, ok := document.(models.Identifiable); ok {
		id = e.GetID()
	}
	return &mongo.InsertOneResult{InsertedID: id}, nil
}

func (f *fakeCollection) InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error) {
	f.record(ctx, call{op: "insert_many", document: documents, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.InsertManyResult{}, nil
}

func (f *fakeCollection) ReplaceOne(ctx context.Context, filter, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error) {
	f.record(ctx, call{op: "replace_one", filter: filter, document: replacement, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	f.record(ctx, call{op: "update_one", filter: filter, update: update, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeCollection) UpdateMany(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongo.UpdateResult, error) {
	f.record(ctx, call{op: "update_many", filter: filter, update: update, opts: len(opts)})
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: f.count, ModifiedCount: f.count}, nil
}

// fakeIndexView keeps index models in memory.
type fakeIndexView struct {
	specs      []any
	created    []mongo.IndexModel
	dropped    []string
	droppedAll bool
	err        error
}

func (f *fakeIndexView) List(context.Context, ...options.Lister[options.ListIndexesOptions]) (*mongo.Cursor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(f.specs, nil, nil)
}

func (f *fakeIndexView) CreateOne(ctx context.Context, model mongo.IndexModel, opts ...options.Lister[options.CreateIndexesOptions]) (string, error) {
	names, err := f.CreateMany(ctx, []mongo.IndexModel{model}, opts...)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

func (f *fakeIndexView) CreateMany(_ context.Context, models []mongo.IndexModel, _ ...options.Lister[options.CreateIndexesOptions]) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		f.created = append(f.created, m)
		names = append(names, fmt.Sprintf("index_%d", len(f.created)))
	}
	return names, nil
}

func (f *fakeIndexView) DropOne(_ context.Context, name string, _ ...options.Lister[options.DropIndexesOptions]) error {
	if f.err != nil {
		return f.err
	}
	f.dropped = append(f.dropped, name)
	return nil
}

func (f *fakeIndexView) DropAll(context.Context, ...options.Lister[options.DropIndexesOptions]) error {
	if f.err != nil {
		return f.err
	}
	f.droppedAll = true
	return nil
}

// fakeCommander replies to every command with the same document.
type fakeCommander struct {
	reply    any
	err      error
	commands []any
}

func (f *fakeCommander) RunCommand(_ context.Context, cmd any, _ ...options.Lister[options.RunCmdOptions]) *mongo.SingleResult {
	f.commands = append(f.commands, cmd)
	if f.err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.err, nil)
	}
	return mongo.NewSingleResultFromDocument(f.reply, nil, nil)
}

type fixture struct {
	coll    *fakeCollection
	indexes *fakeIndexView
	db      *fakeCommander
	repo    *repository[person]
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		coll:    newFakeCollection("people"),
		indexes: &fakeIndexView{},
		db:      &fakeCommander{reply: bson.D{{Key: "ok", Value: 1}}},
	}
	f.repo = newRepository[person](f.coll, f.indexes, f.db, utils.NewNopLogger(), opts...)
	return f
}

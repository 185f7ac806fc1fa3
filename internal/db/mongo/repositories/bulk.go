package repositories

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"norelock.dev/mongorepo/internal/models"
	"norelock.dev/mongorepo/pkg/entry"
)

type bulkWriter func(ctx context.Context, writes []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error)

// BulkOperation accumulates write models and executes them in one BulkWrite.
// Filters and updates are flattened as they are added. A BulkOperation runs
// once; it is safe to fill from several goroutines.
type BulkOperation struct {
	mu       sync.Mutex
	write    bulkWriter
	ordered  bool
	now      func() time.Time
	writes   []mongo.WriteModel
	executed bool
}

func newBulkOperation(write bulkWriter, ordered bool, now func() time.Time) *BulkOperation {
	if now == nil {
		now = time.Now
	}
	return &BulkOperation{write: write, ordered: ordered, now: now}
}

// Insert queues document, assigning an identifier and timestamps when it supports them.
func (b *BulkOperation) Insert(document any) *BulkOperation {
	models.Prepare(document, b.now())
	return b.add(&mongo.InsertOneModel{Document: document})
}

// UpdateOne queues an update of the first entity matching q.
func (b *BulkOperation) UpdateOne(q, u any) *BulkOperation {
	return b.add(&mongo.UpdateOneModel{Filter: entry.Query(q), Update: entry.ToUpdate(u)})
}

// Upsert queues an update of the first entity matching q, inserting when none match.
func (b *BulkOperation) Upsert(q, u any) *BulkOperation {
	upsert := true
	return b.add(&mongo.UpdateOneModel{Filter: entry.Query(q), Update: entry.ToUpdate(u), Upsert: &upsert})
}

// UpdateMany queues an update of every entity matching q.
func (b *BulkOperation) UpdateMany(q, u any) *BulkOperation {
	return b.add(&mongo.UpdateManyModel{Filter: entry.Query(q), Update: entry.ToUpdate(u)})
}

// ReplaceOne queues a replacement of the first entity matching q.
func (b *BulkOperation) ReplaceOne(q, replacement any) *BulkOperation {
	if e, ok := replacement.(models.Timestamped); ok {
		e.TimeUpdate(b.now())
	}
	return b.add(&mongo.ReplaceOneModel{Filter: entry.Query(q), Replacement: replacement})
}

// DeleteOne queues a deletion of the first entity matching q.
func (b *BulkOperation) DeleteOne(q any) *BulkOperation {
	return b.add(&mongo.DeleteOneModel{Filter: entry.Query(q)})
}

// DeleteMany queues a deletion of every entity matching q.
func (b *BulkOperation) DeleteMany(q any) *BulkOperation {
	return b.add(&mongo.DeleteManyModel{Filter: entry.Query(q)})
}

// Len returns the number of queued operations.
func (b *BulkOperation) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.writes)
}

// Ordered reports whether operations run serially.
func (b *BulkOperation) Ordered() bool {
	return b.ordered
}

// Models returns a copy of the queued write models.
func (b *BulkOperation) Models() []mongo.WriteModel {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mongo.WriteModel(nil), b.writes...)
}

// Execute sends the queued operations.
func (b *BulkOperation) Execute(ctx context.Context, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error) {
	b.mu.Lock()
	if b.executed {
		b.mu.Unlock()
		return nil, models.ErrBulkExecuted
	}
	if len(b.writes) == 0 {
		b.mu.Unlock()
		return nil, models.ErrEmptyBulk
	}
	b.executed = true
	writes := b.writes
	b.mu.Unlock()

	opts = append([]options.Lister[options.BulkWriteOptions]{options.BulkWrite().SetOrdered(b.ordered)}, opts...)
	return b.write(ctx, writes, opts...)
}

func (b *BulkOperation) add(model mongo.WriteModel) *BulkOperation {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = append(b.writes, model)
	return b
}

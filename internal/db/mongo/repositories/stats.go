package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CollectionStats is the subset of the collStats reply the repository exposes.
type CollectionStats struct {
	Namespace      string  `bson:"ns"`
	Count          int64   `bson:"count"`
	Size           int64   `bson:"size"`
	AvgObjSize     float64 `bson:"avgObjSize"`
	StorageSize    int64   `bson:"storageSize"`
	TotalIndexSize int64   `bson:"totalIndexSize"`
	IndexCount     int64   `bson:"nindexes"`
	Capped         bool    `bson:"capped"`
	Max            int64   `bson:"max,omitempty"`
	MaxSize        int64   `bson:"maxSize,omitempty"`
}

// Stats returns the collection statistics.
func (r *repository[T]) Stats(ctx context.Context) (_ *CollectionStats, err error) {
	defer r.observe("stats", time.Now(), &err)
	ctx, cancel := r.begin(ctx)
	defer cancel()

	var stats CollectionStats
	if err = r.db.RunCommand(ctx, bson.D{cmdCollStats(r.name)}).Decode(&stats); err != nil {
		return nil, r.fail("stats", err)
	}
	return &stats, nil
}

// IsCapped reports whether the collection is capped.
func (r *repository[T]) IsCapped(ctx context.Context) (bool, error) {
	stats, err := r.Stats(ctx)
	if err != nil {
		return false, err
	}
	return stats.Capped, nil
}

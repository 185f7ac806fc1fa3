package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identifiable is implemented by entities whose identifier the repository
// assigns on insert.
type Identifiable interface {
	GetID() bson.ObjectID
	SetID(id bson.ObjectID)
}

// Timestamped is implemented by entities that record creation and update times.
type Timestamped interface {
	TimeCreate(t time.Time)
	TimeUpdate(t time.Time)
}

// Base is embedded (inline) in entities stored by the repository.
type Base struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	ObjectTimes `bson:",inline"`
}

// GetID returns the entity identifier.
func (b *Base) GetID() bson.ObjectID {
	return b.ID
}

// SetID sets the entity identifier.
func (b *Base) SetID(id bson.ObjectID) {
	b.ID = id
}

// ObjectTimes contains timestamps for created and updated objects.
// It should be embedded in other structs.
type ObjectTimes struct {
	// CreatedAt is the timestamp when the object was created.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt,omitempty"`

	// UpdatedAt is the timestamp when the object was last updated.
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// NewObjectTimes creates a new ObjectTimes instance with the given time.
// The created and updated timestamps are set to the same value.
func NewObjectTimes(t time.Time) ObjectTimes {
	return ObjectTimes{
		CreatedAt: t,
		UpdatedAt: t,
	}
}

// TimeCreate sets the created and updated timestamps to the given time.
func (o *ObjectTimes) TimeCreate(t time.Time) {
	o.CreatedAt = t
	o.UpdatedAt = t
}

// TimeUpdate sets the updated timestamp to the given time.
func (o *ObjectTimes) TimeUpdate(t time.Time) {
	o.UpdatedAt = t
}

// Prepare assigns an identifier and creation timestamps to entity when it
// supports them. Existing identifiers are kept.
func Prepare(entity any, now time.Time) {
	if e, ok := entity.(Identifiable); ok && e.GetID().IsZero() {
		e.SetID(bson.NewObjectID())
	}
	if e, ok := entity.(Timestamped); ok {
		e.TimeCreate(now)
	}
}

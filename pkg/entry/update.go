package entry

import "go.mongodb.org/mongo-driver/v2/bson"

// Update is an update-shaped entry restricted to the supported update
// operators. Each field holds a (possibly nested) partial entity; nil fields
// are left out.
//
//	entry.ToUpdate(entry.Update{
//		Set: bson.D{{Key: "name", Value: "Bob"}},
//		Inc: bson.D{{Key: "stats", Value: bson.D{{Key: "plays", Value: 1}}}},
//	})
//
// yields {$set: {name: "Bob"}, $inc: {"stats.plays": 1}}.
type Update struct {
	Set      any `bson:"$set,omitempty"`
	Inc      any `bson:"$inc,omitempty"`
	Min      any `bson:"$min,omitempty"`
	Max      any `bson:"$max,omitempty"`
	AddToSet any `bson:"$addToSet,omitempty"`
	Push     any `bson:"$push,omitempty"`
}

// IsZero reports whether no operator is set.
func (u Update) IsZero() bool {
	return u.Set == nil && u.Inc == nil && u.Min == nil &&
		u.Max == nil && u.AddToSet == nil && u.Push == nil
}

// ToUpdate flattens an update entry. u is usually an Update but any
// update-shaped entry (bson.D, bson.M, ...) is accepted, as is a deep partial
// entity used as a replacement-style update.
func ToUpdate(u any) bson.D {
	return Flatten(u, "")
}

// ToPartialUpdate flattens a deep partial entity into dotted paths, ready to
// be placed under $set.
func ToPartialUpdate(e any) bson.D {
	return Flatten(e, "")
}

package entry

import "go.mongodb.org/mongo-driver/v2/bson"

// IDField is the identifier field of every MongoDB document.
const IDField = "_id"

// ByIDs rewrites identifier queries into _id filters. A single ObjectID
// becomes {_id: id}; a list of ObjectIDs becomes {_id: {$in: ids}}.
//
// A typed []bson.ObjectID is always an identifier query: empty or nil, it
// becomes {_id: {$in: []}} and matches nothing. A nil *bson.ObjectID matches
// nothing the same way. Untyped lists (bson.A, []any) qualify only when their
// first element is an ObjectID, so an empty untyped list is not an identifier
// query and flattens as an ordinary entry, matching every document.
//
// The second result is false when q is not an identifier query.
func ByIDs(q any) (bson.D, bool) {
	switch t := q.(type) {
	case bson.ObjectID:
		return bson.D{{Key: IDField, Value: t}}, true
	case *bson.ObjectID:
		if t == nil {
			return inIDs([]bson.ObjectID{}), true
		}
		return bson.D{{Key: IDField, Value: *t}}, true
	case []bson.ObjectID:
		// An empty typed list matches nothing rather than everything.
		ids := t
		if ids == nil {
			ids = []bson.ObjectID{}
		}
		return inIDs(ids), true
	case bson.A:
		if isIDList(t) {
			return inIDs(t), true
		}
	case []any:
		if isIDList(t) {
			return inIDs(t), true
		}
	}
	return nil, false
}

// Query applies ByIDs and flattens the result, or flattens q as an entry
// when it is not an identifier query.
func Query(q any) bson.D {
	if filter, ok := ByIDs(q); ok {
		return ToFilter(filter)
	}
	return ToFilter(q)
}

func isIDList(items []any) bool {
	if len(items) == 0 {
		return false
	}
	_, ok := items[0].(bson.ObjectID)
	return ok
}

func inIDs(ids any) bson.D {
	return bson.D{{Key: IDField, Value: bson.D{{Key: "$in", Value: ids}}}}
}

package entry

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type address struct {
	City string `bson:"city,omitempty"`
	Zip  string `bson:"zip,omitempty"`
}

// money encodes itself as its amount in cents.
type money struct {
	Cents int64
}

func (m money) MarshalBSONValue() (byte, []byte, error) {
	t, data, err := bson.MarshalValue(m.Cents)
	return byte(t), data, err
}

type rawDoc struct {
	Body string
}

func (r *rawDoc) MarshalBSON() ([]byte, error) {
	return bson.Marshal(bson.D{{Key: "body", Value: r.Body}})
}

type person struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Name    string        `bson:"name,omitempty"`
	Age     *int          `bson:"age"`
	Address *address      `bson:"address,omitempty"`
	Tags    []string      `bson:"tags"`
	Ignored string        `bson:"-"`
	secret  string
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected bson.D
	}{
		{
			name:     "empty entry",
			input:    bson.D{},
			expected: bson.D{},
		},
		{
			name:     "empty map",
			input:    bson.M{},
			expected: bson.D{},
		},
		{
			name:     "nil entry",
			input:    nil,
			expected: bson.D{},
		},
		{
			name:     "literal field",
			input:    bson.D{{Key: "name", Value: "Alice"}},
			expected: bson.D{{Key: "name", Value: "Alice"}},
		},
		{
			name:     "undefined is dropped",
			input:    bson.D{{Key: "name", Value: bson.Undefined{}}, {Key: "age", Value: (*int)(nil)}},
			expected: bson.D{},
		},
		{
			name:     "explicit null is kept",
			input:    bson.D{{Key: "deletedAt", Value: nil}},
			expected: bson.D{{Key: "deletedAt", Value: nil}},
		},
		{
			name:     "nested field becomes a dot path",
			input:    bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: 1}}}},
			expected: bson.D{{Key: "a.b", Value: 1}},
		},
		{
			name: "deep nesting",
			input: bson.D{{Key: "a", Value: bson.D{
				{Key: "b", Value: bson.D{{Key: "c", Value: true}}},
				{Key: "d", Value: "x"},
			}}},
			expected: bson.D{{Key: "a.b.c", Value: true}, {Key: "a.d", Value: "x"}},
		},
		{
			name:     "operator under a field nests at the field path",
			input:    bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: 5}}}},
			expected: bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: 5}}}},
		},
		{
			name:     "operators on the same path merge",
			input:    bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: 1}, {Key: "$lt", Value: 5}}}},
			expected: bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: 1}, {Key: "$lt", Value: 5}}}},
		},
		{
			name: "operators on the same nested path merge",
			input: bson.D{{Key: "stats", Value: bson.D{{Key: "plays", Value: bson.D{
				{Key: "$gte", Value: 10},
				{Key: "$lte", Value: 20},
			}}}}},
			expected: bson.D{{Key: "stats.plays", Value: bson.D{{Key: "$gte", Value: 10}, {Key: "$lte", Value: 20}}}},
		},
		{
			name: "repeated field merges operator documents",
			input: bson.D{
				{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
				{Key: "age", Value: bson.D{{Key: "$lt", Value: 65}}},
			},
			expected: bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}, {Key: "$lt", Value: 65}}}},
		},
		{
			name:     "literal operator array stays under the field",
			input:    bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: bson.A{"active", "pending"}}}}},
			expected: bson.D{{Key: "status", Value: bson.D{{Key: "$in", Value: bson.A{"active", "pending"}}}}},
		},
		{
			name:     "top-level logical operator",
			input:    bson.D{{Key: "$or", Value: bson.A{bson.D{{Key: "x", Value: 1}}, bson.D{{Key: "y", Value: 2}}}}},
			expected: bson.D{{Key: "$or", Value: bson.A{bson.D{{Key: "x", Value: 1}}, bson.D{{Key: "y", Value: 2}}}}},
		},
		{
			name: "logical operator under a field moves to the front",
			input: bson.D{{Key: "a", Value: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "x", Value: 1}},
				bson.D{{Key: "y", Value: 2}},
			}}}}},
			expected: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "a.x", Value: 1}},
				bson.D{{Key: "a.y", Value: 2}},
			}}},
		},
		{
			name: "logical branches are flattened",
			input: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "address", Value: bson.D{{Key: "city", Value: "X"}}}},
				bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: 3}}}},
			}}},
			expected: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "address.city", Value: "X"}},
				bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: 3}}}},
			}}},
		},
		{
			name:     "front operator keeps the field path",
			input:    bson.D{{Key: "stats", Value: bson.D{{Key: "$inc", Value: bson.D{{Key: "plays", Value: 1}}}}}},
			expected: bson.D{{Key: "$inc", Value: bson.D{{Key: "stats.plays", Value: 1}}}},
		},
		{
			name:     "stop operator value is not flattened",
			input:    bson.D{{Key: "$set", Value: bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: 1}}}}}},
			expected: bson.D{{Key: "$set", Value: bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: 1}}}}}},
		},
		{
			name: "nested operator is flattened without the path",
			input: bson.D{{Key: "tags", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "name", Value: "x"},
				{Key: "score", Value: bson.D{{Key: "$gt", Value: 1}}},
			}}}}},
			expected: bson.D{{Key: "tags", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "name", Value: "x"},
				{Key: "score", Value: bson.D{{Key: "$gt", Value: 1}}},
			}}}}},
		},
		{
			name:     "negated operator",
			input:    bson.D{{Key: "age", Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$gt", Value: 5}}}}}},
			expected: bson.D{{Key: "age", Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$gt", Value: 5}}}}}},
		},
		{
			name: "top-level expression operator",
			input: bson.D{{Key: "$expr", Value: bson.D{{Key: "$gt", Value: bson.A{"$spent", "$budget"}}}}},
			expected: bson.D{{Key: "$expr", Value: bson.D{{Key: "$gt", Value: bson.A{"$spent", "$budget"}}}}},
		},
		{
			name:     "top-level literal operator",
			input:    bson.D{{Key: "$comment", Value: "audit"}},
			expected: bson.D{{Key: "$comment", Value: "audit"}},
		},
		{
			name:     "literal array",
			input:    bson.D{{Key: "tags", Value: []string{"a", "b"}}},
			expected: bson.D{{Key: "tags", Value: []string{"a", "b"}}},
		},
		{
			name:     "empty array is a literal",
			input:    bson.D{{Key: "tags", Value: bson.A{}}},
			expected: bson.D{{Key: "tags", Value: bson.A{}}},
		},
		{
			name: "array of sub-entries flattens each element in order",
			input: bson.D{{Key: "items", Value: bson.A{
				bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: 1}}}},
				bson.D{{Key: "c", Value: 2}},
			}}},
			expected: bson.D{{Key: "items", Value: bson.A{
				bson.D{{Key: "a.b", Value: 1}},
				bson.D{{Key: "c", Value: 2}},
			}}},
		},
		{
			name: "array under a field restarts the path",
			input: bson.D{{Key: "room", Value: bson.D{{Key: "items", Value: bson.A{
				bson.D{{Key: "a", Value: 1}},
			}}}}},
			expected: bson.D{{Key: "room.items", Value: bson.A{bson.D{{Key: "a", Value: 1}}}}},
		},
		{
			name: "non-document elements pass through",
			input: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "a", Value: 1}},
				"raw",
			}}},
			expected: bson.D{{Key: "$or", Value: bson.A{bson.D{{Key: "a", Value: 1}}, "raw"}}},
		},
		{
			name: "literal collision keeps the last value",
			input: bson.D{
				{Key: "a", Value: 1},
				{Key: "a", Value: 2},
			},
			expected: bson.D{{Key: "a", Value: 2}},
		},
		{
			name: "dot path collision keeps the last value",
			input: bson.D{
				{Key: "a", Value: bson.D{{Key: "b", Value: 1}}},
				{Key: "c", Value: 3},
				{Key: "a.b", Value: 2},
			},
			expected: bson.D{{Key: "a.b", Value: 2}, {Key: "c", Value: 3}},
		},
		{
			name: "scenario",
			input: bson.D{
				{Key: "name", Value: "Alice"},
				{Key: "address", Value: bson.D{{Key: "city", Value: "X"}}},
				{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
			},
			expected: bson.D{
				{Key: "name", Value: "Alice"},
				{Key: "address.city", Value: "X"},
				{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
			},
		},
		{
			name: "maps are read in key order",
			input: bson.M{
				"name":    "Alice",
				"address": bson.M{"zip": "10115", "city": "Berlin"},
			},
			expected: bson.D{
				{Key: "address.city", Value: "Berlin"},
				{Key: "address.zip", Value: "10115"},
				{Key: "name", Value: "Alice"},
			},
		},
		{
			name:     "typed maps",
			input:    map[string]map[string]int{"stats": {"plays": 3}},
			expected: bson.D{{Key: "stats.plays", Value: 3}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToFilter(tc.input))
		})
	}
}

func TestFlattenLeaves(t *testing.T) {
	id := bson.NewObjectID()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	t.Run("ObjectID", func(t *testing.T) {
		assert.Equal(t, bson.D{{Key: "_id", Value: id}}, ToFilter(bson.D{{Key: "_id", Value: id}}))
	})

	t.Run("time", func(t *testing.T) {
		filter := ToFilter(bson.D{{Key: "createdAt", Value: bson.D{{Key: "$lt", Value: now}}}})
		assert.Equal(t, bson.D{{Key: "createdAt", Value: bson.D{{Key: "$lt", Value: now}}}}, filter)
	})

	t.Run("regex", func(t *testing.T) {
		re := bson.Regex{Pattern: "^al", Options: "i"}
		assert.Equal(t, bson.D{{Key: "name", Value: re}}, ToFilter(bson.D{{Key: "name", Value: re}}))
	})

	t.Run("compiled regexp", func(t *testing.T) {
		filter := ToFilter(bson.D{{Key: "name", Value: regexp.MustCompile("^al")}})
		assert.Equal(t, bson.D{{Key: "name", Value: bson.Regex{Pattern: "^al"}}}, filter)
	})

	t.Run("regexp value", func(t *testing.T) {
		filter := ToFilter(bson.D{{Key: "name", Value: *regexp.MustCompile("^al")}})
		assert.Equal(t, bson.D{{Key: "name", Value: bson.Regex{Pattern: "^al"}}}, filter)
	})

	t.Run("compiled regexp inside $in", func(t *testing.T) {
		filter := ToFilter(bson.D{{Key: "name", Value: bson.D{
			{Key: "$in", Value: bson.A{regexp.MustCompile("^a"), "b"}},
		}}})
		assert.Equal(t, bson.D{{Key: "name", Value: bson.D{
			{Key: "$in", Value: bson.A{bson.Regex{Pattern: "^a"}, "b"}},
		}}}, filter)

		_, _, err := bson.MarshalValue(filter)
		require.NoError(t, err)
	})

	t.Run("typed regexp list", func(t *testing.T) {
		filter := ToFilter(bson.D{{Key: "tags", Value: bson.D{
			{Key: "$nin", Value: []*regexp.Regexp{regexp.MustCompile("x$")}},
		}}})
		assert.Equal(t, bson.D{{Key: "tags", Value: bson.D{
			{Key: "$nin", Value: bson.A{bson.Regex{Pattern: "x$"}}},
		}}}, filter)
	})

	t.Run("custom encoding", func(t *testing.T) {
		filter := ToFilter(bson.D{{Key: "price", Value: money{Cents: 5}}})
		assert.Equal(t, bson.D{{Key: "price", Value: money{Cents: 5}}}, filter)

		filter = ToFilter(bson.D{{Key: "price", Value: &money{Cents: 7}}})
		assert.Equal(t, bson.D{{Key: "price", Value: &money{Cents: 7}}}, filter)

		filter = ToFilter(bson.D{{Key: "payload", Value: rawDoc{Body: "x"}}})
		assert.Equal(t, bson.D{{Key: "payload", Value: rawDoc{Body: "x"}}}, filter)
	})

	t.Run("array of ObjectIDs", func(t *testing.T) {
		ids := []bson.ObjectID{id}
		filter := ToFilter(bson.D{{Key: "members", Value: bson.D{{Key: "$all", Value: ids}}}})
		assert.Equal(t, bson.D{{Key: "members", Value: bson.D{{Key: "$all", Value: ids}}}}, filter)
	})
}

func TestFlattenStruct(t *testing.T) {
	t.Run("partial entity", func(t *testing.T) {
		filter := ToFilter(person{
			Name:    "Alice",
			Address: &address{City: "X"},
			Ignored: "nope",
			secret:  "nope",
		})

		assert.Equal(t, bson.D{
			{Key: "name", Value: "Alice"},
			{Key: "address.city", Value: "X"},
		}, filter)
	})

	t.Run("pointer fields", func(t *testing.T) {
		age := 30
		filter := ToFilter(&person{Age: &age, Tags: []string{"a"}})

		require.Len(t, filter, 2)
		assert.Equal(t, "age", filter[0].Key)
		assert.Equal(t, &age, filter[0].Value)
		assert.Equal(t, bson.E{Key: "tags", Value: []string{"a"}}, filter[1])
	})

	t.Run("inline", func(t *testing.T) {
		type base struct {
			ID bson.ObjectID `bson:"_id,omitempty"`
		}
		type doc struct {
			base  `bson:",inline"`
			Title string `bson:"title"`
		}
		type exported struct {
			Base  base   `bson:",inline"`
			Title string `bson:"title"`
		}

		id := bson.NewObjectID()
		assert.Equal(t, bson.D{{Key: "title", Value: "t"}}, ToFilter(doc{Title: "t"}))
		assert.Equal(t,
			bson.D{{Key: "_id", Value: id}, {Key: "title", Value: "t"}},
			ToFilter(exported{Base: base{ID: id}, Title: "t"}),
		)
	})

	t.Run("default key", func(t *testing.T) {
		type doc struct {
			Title string
		}
		assert.Equal(t, bson.D{{Key: "title", Value: "t"}}, ToFilter(doc{Title: "t"}))
	})
}

func TestFlattenDoesNotModifyInput(t *testing.T) {
	input := bson.D{
		{Key: "a", Value: bson.D{{Key: "$gt", Value: 1}}},
		{Key: "a", Value: bson.D{{Key: "$lt", Value: 5}}},
	}
	snapshot := bson.D{
		{Key: "a", Value: bson.D{{Key: "$gt", Value: 1}}},
		{Key: "a", Value: bson.D{{Key: "$lt", Value: 5}}},
	}

	_ = ToFilter(input)
	assert.Equal(t, snapshot, input)
}

func TestFlattenCanonicalLeavesAreStable(t *testing.T) {
	flat := bson.D{
		{Key: "name", Value: "Alice"},
		{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
	}
	assert.Equal(t, flat, ToFilter(flat))
	assert.Equal(t, flat, ToFilter(ToFilter(flat)))
}

func TestFlattenWithPrefix(t *testing.T) {
	filter := Flatten(bson.D{{Key: "city", Value: "X"}, {Key: "$exists", Value: true}}, "address")
	assert.Equal(t, bson.D{
		{Key: "address.city", Value: "X"},
		{Key: "address", Value: bson.D{{Key: "$exists", Value: true}}},
	}, filter)
}

func TestToUpdate(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected bson.D
	}{
		{
			name: "set is kept verbatim and inc is flattened",
			input: Update{
				Set: bson.D{{Key: "profile", Value: bson.D{{Key: "bio", Value: "hi"}}}},
				Inc: bson.D{{Key: "stats", Value: bson.D{{Key: "plays", Value: 1}}}},
			},
			expected: bson.D{
				{Key: "$set", Value: bson.D{{Key: "profile", Value: bson.D{{Key: "bio", Value: "hi"}}}}},
				{Key: "$inc", Value: bson.D{{Key: "stats.plays", Value: 1}}},
			},
		},
		{
			name:  "min and max are flattened",
			input: Update{Min: bson.D{{Key: "stats", Value: bson.D{{Key: "low", Value: 1}}}}, Max: bson.D{{Key: "stats", Value: bson.D{{Key: "best", Value: 10}}}}},
			expected: bson.D{
				{Key: "$min", Value: bson.D{{Key: "stats.low", Value: 1}}},
				{Key: "$max", Value: bson.D{{Key: "stats.best", Value: 10}}},
			},
		},
		{
			name: "addToSet with each modifier",
			input: Update{AddToSet: bson.D{{Key: "tags", Value: bson.D{
				{Key: "$each", Value: bson.A{"a", "b"}},
			}}}},
			expected: bson.D{{Key: "$addToSet", Value: bson.D{{Key: "tags", Value: bson.D{
				{Key: "$each", Value: bson.A{"a", "b"}},
			}}}}},
		},
		{
			name: "push is kept verbatim",
			input: Update{Push: bson.D{{Key: "history", Value: bson.D{
				{Key: "$each", Value: bson.A{1}},
				{Key: "$slice", Value: -5},
			}}}},
			expected: bson.D{{Key: "$push", Value: bson.D{{Key: "history", Value: bson.D{
				{Key: "$each", Value: bson.A{1}},
				{Key: "$slice", Value: -5},
			}}}}},
		},
		{
			name:     "zero update",
			input:    Update{},
			expected: bson.D{},
		},
		{
			name:     "update-shaped map",
			input:    bson.M{"$inc": bson.M{"stats": bson.M{"plays": 2}}},
			expected: bson.D{{Key: "$inc", Value: bson.D{{Key: "stats.plays", Value: 2}}}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ToUpdate(tc.input))
		})
	}

	assert.True(t, Update{}.IsZero())
	assert.False(t, Update{Set: bson.M{"a": 1}}.IsZero())
}

func TestByIDs(t *testing.T) {
	a, b := bson.NewObjectID(), bson.NewObjectID()

	t.Run("single id", func(t *testing.T) {
		filter, ok := ByIDs(a)
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "_id", Value: a}}, filter)
	})

	t.Run("id list", func(t *testing.T) {
		filter, ok := ByIDs([]bson.ObjectID{a, b})
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []bson.ObjectID{a, b}}}}}, filter)
	})

	t.Run("untyped id list", func(t *testing.T) {
		filter, ok := ByIDs(bson.A{a, b})
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{a, b}}}}}, filter)
	})

	t.Run("empty id list matches nothing", func(t *testing.T) {
		filter, ok := ByIDs([]bson.ObjectID{})
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []bson.ObjectID{}}}}}, filter)
	})

	t.Run("nil id matches nothing", func(t *testing.T) {
		filter, ok := ByIDs((*bson.ObjectID)(nil))
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []bson.ObjectID{}}}}}, filter)

		var ids []bson.ObjectID
		filter, ok = ByIDs(ids)
		require.True(t, ok)
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []bson.ObjectID{}}}}}, filter)
	})

	t.Run("not an id query", func(t *testing.T) {
		_, ok := ByIDs(bson.A{"a", a})
		assert.False(t, ok)

		_, ok = ByIDs(bson.A{})
		assert.False(t, ok)

		_, ok = ByIDs(bson.D{{Key: "name", Value: "x"}})
		assert.False(t, ok)
	})

	t.Run("query", func(t *testing.T) {
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []bson.ObjectID{a}}}}}, Query([]bson.ObjectID{a}))
		assert.Equal(t, bson.D{{Key: "_id", Value: a}}, Query(&a))
		assert.Equal(t, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []bson.ObjectID{}}}}}, Query((*bson.ObjectID)(nil)))
		assert.Equal(t, bson.D{}, Query(bson.A{}))
		assert.Equal(t, bson.D{{Key: "a.b", Value: 1}}, Query(bson.D{{Key: "a", Value: bson.D{{Key: "b", Value: 1}}}}))
	})
}

func TestToPartialUpdate(t *testing.T) {
	partial := person{Name: "Bob", Address: &address{City: "Y"}}

	update := bson.D{{Key: "$set", Value: ToPartialUpdate(partial)}}
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: "Bob"},
		{Key: "address.city", Value: "Y"},
	}}}, update)
}

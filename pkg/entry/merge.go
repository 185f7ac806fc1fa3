package entry

import (
	"slices"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Merge shallow-merges src into a copy of dst. Fields of dst keep their
// position, fields present in both take the value from src, and new fields
// are appended in src order. Neither argument is modified.
func Merge(dst, src bson.D) bson.D {
	out := make(bson.D, len(dst), len(dst)+len(src))
	copy(out, dst)

	for _, e := range src {
		if i := indexOf(out, e.Key); i >= 0 {
			out[i].Value = e.Value
			continue
		}
		out = append(out, e)
	}
	return out
}

// Put returns doc with key set to value. When key already holds a document
// and value is a document too, the two are merged with Merge; any other
// collision replaces the old value in place. doc is not modified.
func Put(doc bson.D, key string, value any) bson.D {
	i := indexOf(doc, key)
	if i < 0 {
		return append(slices.Clip(doc), bson.E{Key: key, Value: value})
	}

	out := slices.Clone(doc)
	out[i].Value = mergeValues(doc[i].Value, value)
	return out
}

// PutAll folds every field of src into doc with Put.
func PutAll(doc, src bson.D) bson.D {
	for _, e := range src {
		doc = Put(doc, e.Key, e.Value)
	}
	return doc
}

func mergeValues(old, value any) any {
	if Classify(old) == KindContainer && Classify(value) == KindContainer {
		return Merge(documentOf(old), documentOf(value))
	}
	return value
}

func indexOf(doc bson.D, key string) int {
	return slices.IndexFunc(doc, func(e bson.E) bool {
		return e.Key == key
	})
}

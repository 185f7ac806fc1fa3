package entry

import (
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ToFilter flattens e into a filter document.
func ToFilter(e any) bson.D {
	return Flatten(e, "")
}

// Flatten walks e and returns a flat document whose keys are dot-joined paths
// below prefix. Fields are visited in e's enumeration order and undefined
// fields are dropped. Flatten never fails: shapes it does not recognise are
// flattened structurally or passed through.
func Flatten(e any, prefix string) bson.D {
	out := bson.D{}

	for _, field := range documentOf(e) {
		key, value := field.Key, field.Value
		if IsUndefined(value) {
			continue
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		operator := IsOperator(key)

		switch Classify(value) {
		case KindLiteral:
			if operator && prefix != "" {
				out = Put(out, prefix, bson.D{{Key: key, Value: literal(value)}})
			} else {
				out = Put(out, path, literal(value))
			}

		case KindArray:
			inner, target := "", path
			if operator {
				inner, target = prefix, key
			}
			items := lo.Map(elementsOf(value), func(item any, _ int) any {
				return flattenElement(item, inner)
			})
			out = Put(out, target, bson.A(items))

		case KindContainer:
			if !operator {
				out = PutAll(out, Flatten(value, path))
				continue
			}

			switch placement := PlacementOf(key); {
			case placement == PlacementStop:
				out = Put(out, key, value)
			case placement == PlacementFront || prefix == "":
				out = Put(out, key, Flatten(value, prefix))
			default:
				out = Put(out, prefix, bson.D{{Key: key, Value: Flatten(value, "")}})
			}
		}
	}

	return out
}

// flattenElement flattens one element of an array of sub-entries. Elements
// that are not documents are kept as they are.
func flattenElement(item any, prefix string) any {
	if IsUndefined(item) {
		return nil
	}
	if Classify(item) == KindContainer {
		return Flatten(item, prefix)
	}
	return literal(item)
}

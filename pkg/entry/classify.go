// Package entry turns nested, entity-shaped MongoDB entries into flat
// dot-notation filter and update documents.
//
// An entry mixes field names with "$"-prefixed operators:
//
//	bson.D{
//		{Key: "name", Value: "Alice"},
//		{Key: "address", Value: bson.D{{Key: "city", Value: "Berlin"}}},
//		{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
//	}
//
// flattens to
//
//	bson.D{
//		{Key: "name", Value: "Alice"},
//		{Key: "address.city", Value: "Berlin"},
//		{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}},
//	}
package entry

import (
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Kind is the structural class of an entry value.
type Kind int

const (
	// KindLiteral values are emitted as-is.
	KindLiteral Kind = iota
	// KindArray values are arrays of sub-entries, flattened element by element.
	KindArray
	// KindContainer values are documents the flattener recurses into.
	KindContainer
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindArray:
		return "array"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// leafTypes lists the document-shaped types that are still values:
// dates, identifiers, regular expressions and the remaining BSON primitives.
var leafTypes = map[reflect.Type]struct{}{
	reflect.TypeFor[time.Time]():          {},
	reflect.TypeFor[bson.DateTime]():      {},
	reflect.TypeFor[bson.ObjectID]():      {},
	reflect.TypeFor[bson.Regex]():         {},
	reflect.TypeFor[regexp.Regexp]():      {},
	reflect.TypeFor[bson.Timestamp]():     {},
	reflect.TypeFor[bson.Decimal128]():    {},
	reflect.TypeFor[bson.Binary]():        {},
	reflect.TypeFor[bson.Null]():          {},
	reflect.TypeFor[bson.MinKey]():        {},
	reflect.TypeFor[bson.MaxKey]():        {},
	reflect.TypeFor[bson.JavaScript]():    {},
	reflect.TypeFor[bson.Symbol]():        {},
	reflect.TypeFor[bson.CodeWithScope](): {},
	reflect.TypeFor[bson.DBPointer]():     {},
	reflect.TypeFor[bson.Raw]():           {},
	reflect.TypeFor[bson.RawValue]():      {},
	reflect.TypeFor[[]byte]():             {},
}

var documentType = reflect.TypeFor[bson.D]()

var marshalerTypes = []reflect.Type{
	reflect.TypeFor[bson.ValueMarshaler](),
	reflect.TypeFor[bson.Marshaler](),
}

// encodesItself reports whether t, or a pointer to t, carries its own BSON
// encoding. Such values are leaves whatever their underlying shape.
func encodesItself(t reflect.Type) bool {
	return lo.ContainsBy(marshalerTypes, func(m reflect.Type) bool {
		return t.Implements(m) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(m))
	})
}

// Classify reports how the flattener treats v. Arrays are literals when
// empty or when their first element is a literal.
func Classify(v any) Kind {
	if v == nil {
		return KindLiteral
	}

	rv := reflect.ValueOf(v)
	for {
		if encodesItself(rv.Type()) {
			return KindLiteral
		}
		if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface {
			break
		}
		if rv.IsNil() {
			return KindLiteral
		}
		rv = rv.Elem()
	}

	if _, ok := leafTypes[rv.Type()]; ok {
		return KindLiteral
	}
	if rv.Type() == documentType {
		return KindContainer
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindContainer
		}
	case reflect.Struct:
		return KindContainer
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 || Classify(rv.Index(0).Interface()) == KindLiteral {
			return KindLiteral
		}
		return KindArray
	}

	return KindLiteral
}

// IsUndefined reports whether v stands for an absent field. bson.Undefined
// and typed nils (unset pointers, maps and slices of a partial entity) are
// absent; an untyped nil is an explicit null.
func IsUndefined(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(bson.Undefined); ok {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

var (
	regexpType    = reflect.TypeFor[regexp.Regexp]()
	regexpPtrType = reflect.TypeFor[*regexp.Regexp]()
)

// literal converts values the driver cannot encode into their BSON form.
// Compiled expressions become bson.Regex, also inside literal arrays.
func literal(v any) any {
	switch t := v.(type) {
	case *regexp.Regexp:
		if t != nil {
			return bson.Regex{Pattern: t.String()}
		}
		return v
	case regexp.Regexp:
		return bson.Regex{Pattern: t.String()}
	}

	if !holdsRegexp(reflect.ValueOf(v)) {
		return v
	}
	return bson.A(lo.Map(elementsOf(v), func(item any, _ int) any {
		return literal(item)
	}))
}

// holdsRegexp reports whether rv is a slice or array with a compiled
// expression among its elements, at any depth.
func holdsRegexp(rv reflect.Value) bool {
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return false
	}
	if _, ok := leafTypes[rv.Type()]; ok {
		return false
	}

	switch elem := rv.Type().Elem(); {
	case elem == regexpType:
		return rv.Len() > 0
	case elem == regexpPtrType, elem.Kind() == reflect.Interface,
		elem.Kind() == reflect.Slice, elem.Kind() == reflect.Array:
	default:
		return false
	}

	for i := range rv.Len() {
		item := rv.Index(i)
		for item.Kind() == reflect.Interface && !item.IsNil() {
			item = item.Elem()
		}
		switch {
		case !item.IsValid():
		case item.Type() == regexpType:
			return true
		case item.Type() == regexpPtrType:
			if !item.IsNil() {
				return true
			}
		case holdsRegexp(item):
			return true
		}
	}
	return false
}

// documentOf returns the ordered fields of a container value. Maps are read in
// sorted key order, structs in field order honouring their bson tags.
func documentOf(v any) bson.D {
	switch t := v.(type) {
	case bson.D:
		return t
	case *bson.D:
		if t == nil {
			return nil
		}
		return *t
	case bson.M:
		return sortedFields(t)
	case map[string]any:
		return sortedFields(t)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		doc := make(bson.D, 0, len(keys))
		for _, k := range keys {
			doc = append(doc, bson.E{Key: k.String(), Value: rv.MapIndex(k).Interface()})
		}
		return doc
	case reflect.Struct:
		return structFields(rv)
	}

	return nil
}

func sortedFields[M ~map[string]any](m M) bson.D {
	doc := make(bson.D, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		doc = append(doc, bson.E{Key: k, Value: m[k]})
	}
	return doc
}

// structFields reads a struct the way the driver encodes it: the bson tag
// names the key (lowercased field name by default), "-" skips the field,
// "omitempty" skips zero values and "inline" splices a nested document.
func structFields(rv reflect.Value) bson.D {
	rt := rv.Type()
	doc := make(bson.D, 0, rt.NumField())

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("bson")
		if tag == "-" {
			continue
		}

		parts := strings.Split(tag, ",")
		name, flags := parts[0], parts[1:]
		fv := rv.Field(i)

		if lo.Contains(flags, "inline") || name == "inline" {
			doc = append(doc, documentOf(fv.Interface())...)
			continue
		}
		if lo.Contains(flags, "omitempty") && fv.IsZero() {
			continue
		}
		if name == "" {
			name = strings.ToLower(sf.Name)
		}

		doc = append(doc, bson.E{Key: name, Value: fv.Interface()})
	}

	return doc
}

// elementsOf returns the elements of an array value.
func elementsOf(v any) []any {
	switch t := v.(type) {
	case bson.A:
		return t
	case []any:
		return t
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

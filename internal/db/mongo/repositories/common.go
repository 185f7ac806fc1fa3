// Package repositories contains the generic MongoDB repository. Every
// operation accepts deep entries and rewrites them into dotted-path filters
// and update documents before they reach the driver.
package repositories

import "go.mongodb.org/mongo-driver/v2/bson"

// cmdCollStats - See https://www.mongodb.com/docs/manual/reference/command/collStats/
func cmdCollStats(collection string) bson.E {
	return bson.E{
		Key:   "collStats",
		Value: collection,
	}
}

// cmdDistinct - See https://www.mongodb.com/docs/manual/reference/command/distinct/
func cmdDistinct(collection string) bson.E {
	return bson.E{
		Key:   "distinct",
		Value: collection,
	}
}

func cmdKey(field string) bson.E {
	return bson.E{
		Key:   "key",
		Value: field,
	}
}

func cmdQuery(filter bson.D) bson.E {
	return bson.E{
		Key:   "query",
		Value: filter,
	}
}

// ascending builds a single ascending index key.
func ascending(field string) bson.E {
	return bson.E{
		Key:   field,
		Value: 1,
	}
}

package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// sortKey is the computed field used by ranked and folded sorts.
const sortKey = "_sort_key"

// buildFilter translates a store filter into a MongoDB query document. Each
// clause is ANDed; search fields are ORed among themselves.
func buildFilter(f ports.Filter) bson.M {
	var clauses []bson.M
	for k, v := range f.Equals {
		clauses = append(clauses, bson.M{k: v})
	}
	for k, set := range f.In {
		clauses = append(clauses, bson.M{k: bson.M{"$in": set}})
	}
	for k, v := range f.NotEqual {
		clauses = append(clauses, bson.M{k: bson.M{"$ne": v}})
	}
	if f.Search != nil && f.Search.Term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search.Term), Options: "i"}
		or := make(bson.A, 0, len(f.Search.Fields))
		for _, field := range f.Search.Fields {
			or = append(or, bson.M{field: pattern})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	}
	and := make(bson.A, 0, len(clauses))
	for _, c := range clauses {
		and = append(and, c)
	}
	return bson.M{"$and": and}
}

// buildUpdate translates a patch into an update document, omitting empty
// operators.
func buildUpdate(p ports.Patch) bson.M {
	update := bson.M{}
	if len(p.Set) > 0 {
		update["$set"] = bson.M(p.Set)
	}
	if len(p.Push) > 0 {
		update["$push"] = bson.M(p.Push)
	}
	if len(p.Pull) > 0 {
		update["$pull"] = bson.M(p.Pull)
	}
	return update
}

// needsPipeline reports whether s can only be executed as an aggregation.
func needsPipeline(s *ports.Sort) bool {
	return s != nil && (len(s.Rank) > 0 || s.Fold)
}

func direction(s ports.Sort) int {
	if s.Desc {
		return -1
	}
	return 1
}

// sortDoc orders by s.Field with _id ascending as tie-breaker.
func sortDoc(s ports.Sort) bson.D {
	return bson.D{{Key: s.Field, Value: direction(s)}, {Key: "_id", Value: 1}}
}

// sortExpr computes the value a ranked or folded sort orders by. Ranked
// values missing from the rank list sort after every listed value.
func sortExpr(s ports.Sort) any {
	field := "$" + s.Field
	if len(s.Rank) > 0 {
		return bson.M{"$let": bson.M{
			"vars": bson.M{"i": bson.M{"$indexOfArray": bson.A{s.Rank, field}}},
			"in": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$$i", -1}},
				len(s.Rank),
				"$$i",
			}},
		}}
	}
	return bson.M{"$toLower": field}
}

// buildPipeline returns the aggregation used for ranked or folded sorts.
func buildPipeline(f ports.Filter, s ports.Sort, page ports.Page) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildFilter(f)}},
		{{Key: "$addFields", Value: bson.M{sortKey: sortExpr(s)}}},
		{{Key: "$sort", Value: bson.D{{Key: sortKey, Value: direction(s)}, {Key: "_id", Value: 1}}}},
	}
	if page.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: page.Skip}})
	}
	if page.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: page.Limit}})
	}
	return append(pipeline, bson.D{{Key: "$project", Value: bson.M{sortKey: 0}}})
}

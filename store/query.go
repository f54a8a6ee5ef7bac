package store

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dcode-github/dealdirect/backend/models"
)

// containsRegex matches text anywhere in a field, case-insensitively. The
// text is escaped so user input never acts as a pattern.
func containsRegex(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

// exactRegex matches the whole field value, case-insensitively.
func exactRegex(text string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(text) + "$", Options: "i"}
}

// listingFilter builds the predicate on stored listing fields, everything
// except the text match.
func listingFilter(c models.ListingCriteria) bson.M {
	var andConditions []bson.M

	if c.ApprovedOnly {
		andConditions = append(andConditions, bson.M{"isApproved": true})
	}
	if c.PropertyType != nil {
		andConditions = append(andConditions, bson.M{"propertyType": *c.PropertyType})
	}
	if c.Category != nil {
		andConditions = append(andConditions, bson.M{"category": *c.Category})
	}
	if c.SubCategory != nil {
		andConditions = append(andConditions, bson.M{"subcategory": *c.SubCategory})
	}
	if city := strings.TrimSpace(c.City); city != "" {
		andConditions = append(andConditions, bson.M{"address.city": bson.M{"$regex": exactRegex(city)}})
	}
	if c.PriceFrom != nil || c.PriceTo != nil {
		price := bson.M{}
		if c.PriceFrom != nil {
			price["$gte"] = *c.PriceFrom
		}
		if c.PriceTo != nil {
			price["$lte"] = *c.PriceTo
		}
		andConditions = append(andConditions, bson.M{"price": price})
	}

	filter := bson.M{}
	if len(andConditions) > 0 {
		filter["$and"] = andConditions
	}
	return filter
}

// textFields lists the fields a text search inspects. Cross-entity matching
// reads the joined taxonomy names, so it must run after the lookups.
func textFields(crossEntity bool) []string {
	if crossEntity {
		return []string{"title", "address.city", "category.name", "subcategory.name", "propertyType.name"}
	}
	return []string{"title", "description", "address.city"}
}

func textFilter(c models.ListingCriteria) bson.M {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return nil
	}
	re := containsRegex(text)
	var orClauses bson.A
	for _, f := range textFields(c.CrossEntityText) {
		orClauses = append(orClauses, bson.M{f: bson.M{"$regex": re}})
	}
	return bson.M{"$or": orClauses}
}

// populateStages replaces each taxonomy reference with the referenced
// document. Dangling references leave the field absent.
func populateStages(refs map[string]string) mongo.Pipeline {
	var stages mongo.Pipeline
	for _, field := range []string{"propertyType", "category", "subcategory"} {
		from, ok := refs[field]
		if !ok {
			continue
		}
		stages = append(stages,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: from},
				{Key: "localField", Value: field},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: field},
			}}},
			bson.D{{Key: "$unwind", Value: bson.M{"path": "$" + field, "preserveNullAndEmptyArrays": true}}},
		)
	}
	return stages
}

func listingRefs() map[string]string {
	return map[string]string{
		"propertyType": PropertyTypesCollection,
		"category":     CategoriesCollection,
		"subcategory":  SubCategoriesCollection,
	}
}

// sortSpec orders by the requested key with _id in the same direction as the
// tie-break.
func sortSpec(order models.SortOrder) bson.D {
	switch order {
	case models.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

// ListingPipeline compiles criteria into one aggregation. Plain text search
// matches stored fields, so the joins run only on the returned page.
// Cross-entity text needs the joined names, so the joins run before it.
// A positive Limit wraps the tail in a $facet returning the page and the
// total count.
func ListingPipeline(c models.ListingCriteria) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	match := listingFilter(c)
	text := textFilter(c)
	if text != nil && !c.CrossEntityText {
		and, _ := match["$and"].([]bson.M)
		match["$and"] = append(and, text)
		text = nil
	}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	populate := populateStages(listingRefs())
	if c.CrossEntityText {
		pipeline = append(pipeline, populate...)
		populate = nil
		if text != nil {
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: text}})
		}
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortSpec(c.Sort)}})

	if c.Limit <= 0 {
		return append(pipeline, populate...)
	}

	page := bson.A{}
	if c.Skip > 0 {
		page = append(page, bson.D{{Key: "$skip", Value: c.Skip}})
	}
	page = append(page, bson.D{{Key: "$limit", Value: c.Limit}})
	for _, stage := range populate {
		page = append(page, stage)
	}
	return append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "data", Value: page},
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
	}}})
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dcode-github/dealdirect/backend/models"
)

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage[0].Key
	}
	return names
}

func floatPtr(f float64) *float64 { return &f }

func TestListingFilter(t *testing.T) {
	cat := primitive.NewObjectID()

	t.Run("empty criteria match everything", func(t *testing.T) {
		assert.Equal(t, bson.M{}, listingFilter(models.ListingCriteria{}))
	})

	t.Run("predicates are and-ed", func(t *testing.T) {
		f := listingFilter(models.ListingCriteria{
			ApprovedOnly: true,
			Category:     &cat,
			City:         "Pune",
			PriceFrom:    floatPtr(10),
			PriceTo:      floatPtr(50),
		})
		and, ok := f["$and"].([]bson.M)
		require.True(t, ok)
		require.Len(t, and, 4)
		assert.Equal(t, bson.M{"isApproved": true}, and[0])
		assert.Equal(t, bson.M{"category": cat}, and[1])
		assert.Equal(t, bson.M{"address.city": bson.M{"$regex": primitive.Regex{Pattern: "^Pune$", Options: "i"}}}, and[2])
		assert.Equal(t, bson.M{"price": bson.M{"$gte": 10.0, "$lte": 50.0}}, and[3])
	})

	t.Run("single price bound", func(t *testing.T) {
		f := listingFilter(models.ListingCriteria{PriceTo: floatPtr(5)})
		assert.Equal(t, bson.M{"$and": []bson.M{{"price": bson.M{"$lte": 5.0}}}}, f)
	})
}

func TestTextFilterEscapesInput(t *testing.T) {
	f := textFilter(models.ListingCriteria{Text: "  2+ BHK (new) "})
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	re := primitive.Regex{Pattern: `2\+ BHK \(new\)`, Options: "i"}
	assert.Equal(t, bson.M{"title": bson.M{"$regex": re}}, or[0])
	assert.Equal(t, bson.M{"description": bson.M{"$regex": re}}, or[1])
	assert.Equal(t, bson.M{"address.city": bson.M{"$regex": re}}, or[2])

	assert.Nil(t, textFilter(models.ListingCriteria{Text: "   "}))
}

func TestListingPipeline(t *testing.T) {
	t.Run("paginated search joins only the page", func(t *testing.T) {
		p := ListingPipeline(models.ListingCriteria{
			ApprovedOnly: true,
			Text:         "villa",
			Sort:         models.SortPriceAsc,
			Skip:         5,
			Limit:        5,
		})
		assert.Equal(t, []string{"$match", "$sort", "$facet"}, stageNames(p))

		match := p[0][0].Value.(bson.M)
		and := match["$and"].([]bson.M)
		require.Len(t, and, 2)
		assert.Contains(t, and[1], "$or")

		assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, p[1][0].Value)

		facet := p[2][0].Value.(bson.D)
		require.Len(t, facet, 2)
		assert.Equal(t, "data", facet[0].Key)
		data := facet[0].Value.(bson.A)
		require.Len(t, data, 8)
		assert.Equal(t, bson.D{{Key: "$skip", Value: int64(5)}}, data[0])
		assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, data[1])
		assert.Equal(t, "$lookup", data[2].(bson.D)[0].Key)
		assert.Equal(t, "total", facet[1].Key)
	})

	t.Run("first page omits skip", func(t *testing.T) {
		p := ListingPipeline(models.ListingCriteria{Limit: 12})
		assert.Equal(t, []string{"$sort", "$facet"}, stageNames(p))
		data := p[1][0].Value.(bson.D)[0].Value.(bson.A)
		assert.Equal(t, bson.D{{Key: "$limit", Value: int64(12)}}, data[0])
	})

	t.Run("cross entity text matches after the joins", func(t *testing.T) {
		p := ListingPipeline(models.ListingCriteria{
			ApprovedOnly:    true,
			Text:            "mumbai",
			CrossEntityText: true,
		})
		assert.Equal(t, []string{
			"$match",
			"$lookup", "$unwind",
			"$lookup", "$unwind",
			"$lookup", "$unwind",
			"$match",
			"$sort",
		}, stageNames(p))

		text := p[7][0].Value.(bson.M)["$or"].(bson.A)
		fields := make([]string, 0, len(text))
		for _, clause := range text {
			for k := range clause.(bson.M) {
				fields = append(fields, k)
			}
		}
		assert.ElementsMatch(t, []string{"title", "address.city", "category.name", "subcategory.name", "propertyType.name"}, fields)
		assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, p[8][0].Value)
	})

	t.Run("unpaginated listing joins after sorting", func(t *testing.T) {
		p := ListingPipeline(models.ListingCriteria{Sort: models.SortNewest})
		assert.Equal(t, []string{"$sort", "$lookup", "$unwind", "$lookup", "$unwind", "$lookup", "$unwind"}, stageNames(p))

		lookup := p[1][0].Value.(bson.D)
		assert.Equal(t, bson.D{
			{Key: "from", Value: PropertyTypesCollection},
			{Key: "localField", Value: "propertyType"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "propertyType"},
		}, lookup)
		assert.Equal(t, bson.M{"path": "$propertyType", "preserveNullAndEmptyArrays": true}, p[2][0].Value)
	})
}

func TestSortSpec(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}, sortSpec(models.SortPriceDesc))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, sortSpec(models.ParseSortOrder("bogus")))
}

func TestChangeSet(t *testing.T) {
	title := "Sea view flat"
	set := changeSet(models.ListingChanges{
		Input:  models.ListingInput{Title: &title, Amenities: []string{}},
		Images: []string{"a.jpg"},
	})
	assert.Equal(t, title, set["title"])
	assert.Equal(t, []string{}, set["amenities"])
	assert.Equal(t, []string{"a.jpg"}, set["images"])
	assert.NotContains(t, set, "isApproved")
	assert.NotContains(t, set, "price")
	assert.Contains(t, set, "updatedAt")
}

// Package memstore keeps taxonomy, listings and accounts in process memory.
// It backs STORE_DRIVER=memory and the service tests, and mirrors the
// semantics of the Mongo store: unique keys, not-found errors, newest-first
// listings and the same query criteria.
package memstore

import (
	"bytes"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
)

type Store struct {
	mu sync.RWMutex

	propertyTypes map[primitive.ObjectID]models.PropertyType
	categories    map[primitive.ObjectID]models.Category
	subCategories map[primitive.ObjectID]models.SubCategory
	properties    map[primitive.ObjectID]models.Property
	admins        map[primitive.ObjectID]models.Admin
	users         map[primitive.ObjectID]models.User
}

func New() *Store {
	return &Store{
		propertyTypes: make(map[primitive.ObjectID]models.PropertyType),
		categories:    make(map[primitive.ObjectID]models.Category),
		subCategories: make(map[primitive.ObjectID]models.SubCategory),
		properties:    make(map[primitive.ObjectID]models.Property),
		admins:        make(map[primitive.ObjectID]models.Admin),
		users:         make(map[primitive.ObjectID]models.User),
	}
}

func compareIDs(a, b primitive.ObjectID) int {
	return bytes.Compare(a[:], b[:])
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneFields(f models.ListingFields) models.ListingFields {
	f.Amenities = cloneStrings(f.Amenities)
	f.Flooring = cloneStrings(f.Flooring)
	f.Images = cloneStrings(f.Images)
	f.Address.Latitude = cloneFloat(f.Address.Latitude)
	f.Address.Longitude = cloneFloat(f.Address.Longitude)
	return f
}

func cloneProperty(p models.Property) *models.Property {
	p.ListingFields = cloneFields(p.ListingFields)
	return &p
}

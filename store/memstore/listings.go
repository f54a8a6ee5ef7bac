package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/cases"

	"github.com/dcode-github/dealdirect/backend/models"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

func (s *Store) Insert(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&p.ID)
	if _, ok := s.properties[p.ID]; ok {
		return models.DuplicateError("property %s already exists", p.ID.Hex())
	}
	s.properties[p.ID] = *cloneProperty(*p)
	return nil
}

func (s *Store) view(p models.Property) models.PropertyView {
	return models.PropertyView{
		ID:            p.ID,
		PropertyType:  s.ref(models.KindPropertyType, p.PropertyType),
		Category:      s.ref(models.KindCategory, p.Category),
		SubCategory:   s.ref(models.KindSubCategory, p.SubCategory),
		ListingFields: cloneFields(p.ListingFields),
	}
}

func (s *Store) Get(_ context.Context, id primitive.ObjectID) (*models.PropertyView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, models.NotFoundError("property not found")
	}
	v := s.view(p)
	return &v, nil
}

func (s *Store) Update(_ context.Context, id primitive.ObjectID, changes models.ListingChanges) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, models.NotFoundError("property not found")
	}

	in := changes.Input
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.SubCategory != nil {
		p.SubCategory = *in.SubCategory
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.PriceUnit != nil {
		p.PriceUnit = *in.PriceUnit
	}
	if in.Negotiable != nil {
		p.Negotiable = *in.Negotiable
	}
	if in.Area != nil {
		p.Area = *in.Area
	}
	if in.Amenities != nil {
		p.Amenities = cloneStrings(in.Amenities)
	}
	if in.Flooring != nil {
		p.Flooring = cloneStrings(in.Flooring)
	}
	if in.Parking != nil {
		p.Parking = *in.Parking
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if changes.Images != nil {
		p.Images = cloneStrings(changes.Images)
	}
	p.UpdatedAt = changes.UpdatedAt

	s.properties[id] = *cloneProperty(p)
	return cloneProperty(p), nil
}

func (s *Store) SetApproval(_ context.Context, id primitive.ObjectID, approved bool, at time.Time) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, models.NotFoundError("property not found")
	}
	p.IsApproved = approved
	p.UpdatedAt = at
	s.properties[id] = p
	return cloneProperty(p), nil
}

func (s *Store) Delete(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, models.NotFoundError("property not found")
	}
	delete(s.properties, id)
	return cloneProperty(p), nil
}

// Find evaluates the criteria in Go. Text matching is case-insensitive
// substring matching over folded strings, the same fields the Mongo pipeline
// matches.
func (s *Store) Find(_ context.Context, c models.ListingCriteria) (*models.ListingPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fold := cases.Fold()
	text := fold.String(c.Text)
	city := fold.String(strings.TrimSpace(c.City))

	matches := make([]models.PropertyView, 0)
	for _, p := range s.properties {
		if c.ApprovedOnly && !p.IsApproved {
			continue
		}
		if c.PropertyType != nil && p.PropertyType != *c.PropertyType {
			continue
		}
		if c.Category != nil && p.Category != *c.Category {
			continue
		}
		if c.SubCategory != nil && p.SubCategory != *c.SubCategory {
			continue
		}
		if city != "" && fold.String(strings.TrimSpace(p.Address.City)) != city {
			continue
		}
		if c.PriceFrom != nil && p.Price < *c.PriceFrom {
			continue
		}
		if c.PriceTo != nil && p.Price > *c.PriceTo {
			continue
		}

		v := s.view(p)
		if text != "" && !matchesText(fold, v, text, c.CrossEntityText) {
			continue
		}
		matches = append(matches, v)
	}

	sortViews(matches, c.Sort)

	total := int64(len(matches))
	if c.Skip > 0 {
		if c.Skip >= total {
			matches = matches[:0]
		} else {
			matches = matches[c.Skip:]
		}
	}
	if c.Limit > 0 && int64(len(matches)) > c.Limit {
		matches = matches[:c.Limit]
	}
	return &models.ListingPage{Data: matches, Total: total}, nil
}

func matchesText(fold cases.Caser, v models.PropertyView, text string, crossEntity bool) bool {
	fields := []string{v.Title, v.Address.City}
	if crossEntity {
		for _, ref := range []*models.TaxonomyRef{v.Category, v.SubCategory, v.PropertyType} {
			if ref != nil {
				fields = append(fields, ref.Name)
			}
		}
	} else {
		fields = append(fields, v.Description)
	}
	for _, f := range fields {
		if strings.Contains(fold.String(f), text) {
			return true
		}
	}
	return false
}

func sortViews(views []models.PropertyView, order models.SortOrder) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		switch order {
		case models.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return compareIDs(a.ID, b.ID) < 0
		case models.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return compareIDs(a.ID, b.ID) > 0
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return compareIDs(a.ID, b.ID) > 0
		}
	})
}

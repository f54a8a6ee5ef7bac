package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
)

func newestFirst(aAt, bAt time.Time, aID, bID primitive.ObjectID) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return compareIDs(aID, bID) > 0
}

func (s *Store) ref(kind models.TaxonomyKind, id primitive.ObjectID) *models.TaxonomyRef {
	var name string
	var ok bool
	switch kind {
	case models.KindPropertyType:
		var v models.PropertyType
		v, ok = s.propertyTypes[id]
		name = v.Name
	case models.KindCategory:
		var v models.Category
		v, ok = s.categories[id]
		name = v.Name
	case models.KindSubCategory:
		var v models.SubCategory
		v, ok = s.subCategories[id]
		name = v.Name
	}
	if !ok {
		return nil
	}
	return &models.TaxonomyRef{ID: id, Name: name}
}

// PropertyType

func (s *Store) CreatePropertyType(_ context.Context, pt *models.PropertyType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.propertyTypes {
		if existing.Name == pt.Name {
			return models.DuplicateError("property type %q already exists", pt.Name)
		}
	}
	ensureID(&pt.ID)
	s.propertyTypes[pt.ID] = *pt
	return nil
}

func (s *Store) GetPropertyType(_ context.Context, id primitive.ObjectID) (*models.PropertyType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pt, ok := s.propertyTypes[id]
	if !ok {
		return nil, models.NotFoundError("property type not found")
	}
	return &pt, nil
}

func (s *Store) ListPropertyTypes(_ context.Context) ([]models.PropertyType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PropertyType, 0, len(s.propertyTypes))
	for _, pt := range s.propertyTypes {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) FindPropertyTypeByName(_ context.Context, name string) (*models.PropertyType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, pt := range s.propertyTypes {
		if pt.Name == name {
			return &pt, nil
		}
	}
	return nil, models.NotFoundError("property type not found")
}

func (s *Store) UpdatePropertyType(_ context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.PropertyType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.propertyTypes[id]
	if !ok {
		return nil, models.NotFoundError("property type not found")
	}
	if upd.Name != nil {
		pt.Name = *upd.Name
	}
	for otherID, other := range s.propertyTypes {
		if otherID != id && other.Name == pt.Name {
			return nil, models.DuplicateError("property type %q already exists", pt.Name)
		}
	}
	pt.UpdatedAt = nowUTC()
	s.propertyTypes[id] = pt
	return &pt, nil
}

func (s *Store) DeletePropertyType(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.propertyTypes[id]; !ok {
		return models.NotFoundError("property type not found")
	}
	delete(s.propertyTypes, id)
	return nil
}

// Category

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == c.Name && existing.PropertyType == c.PropertyType {
			return models.DuplicateError("category %q already exists for this property type", c.Name)
		}
	}
	ensureID(&c.ID)
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, models.NotFoundError("category not found")
	}
	return &c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.CategoryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CategoryView, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, models.CategoryView{
			ID:           c.ID,
			Name:         c.Name,
			PropertyType: s.ref(models.KindPropertyType, c.PropertyType),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) FindCategory(_ context.Context, name string, propertyType primitive.ObjectID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name && c.PropertyType == propertyType {
			return &c, nil
		}
	}
	return nil, models.NotFoundError("category not found")
}

func (s *Store) UpdateCategory(_ context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, models.NotFoundError("category not found")
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.PropertyType != nil {
		c.PropertyType = *upd.PropertyType
	}
	for otherID, other := range s.categories {
		if otherID != id && other.Name == c.Name && other.PropertyType == c.PropertyType {
			return nil, models.DuplicateError("category %q already exists for this property type", c.Name)
		}
	}
	c.UpdatedAt = nowUTC()
	s.categories[id] = c
	return &c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return models.NotFoundError("category not found")
	}
	delete(s.categories, id)
	return nil
}

// SubCategory

func (s *Store) CreateSubCategory(_ context.Context, sub *models.SubCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subCategories {
		if existing.Name == sub.Name && existing.Category == sub.Category {
			return models.DuplicateError("subcategory %q already exists in this category", sub.Name)
		}
	}
	ensureID(&sub.ID)
	s.subCategories[sub.ID] = *sub
	return nil
}

func (s *Store) GetSubCategory(_ context.Context, id primitive.ObjectID) (*models.SubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subCategories[id]
	if !ok {
		return nil, models.NotFoundError("subcategory not found")
	}
	return &sub, nil
}

func (s *Store) ListSubCategories(_ context.Context) ([]models.SubCategoryView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SubCategoryView, 0, len(s.subCategories))
	for _, sub := range s.subCategories {
		out = append(out, models.SubCategoryView{
			ID:           sub.ID,
			Name:         sub.Name,
			Category:     s.ref(models.KindCategory, sub.Category),
			PropertyType: s.ref(models.KindPropertyType, sub.PropertyType),
			CreatedAt:    sub.CreatedAt,
			UpdatedAt:    sub.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) ListSubCategoriesByCategory(_ context.Context, category primitive.ObjectID) ([]models.SubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.SubCategory{}
	for _, sub := range s.subCategories {
		if sub.Category == category {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) FindSubCategory(_ context.Context, name string, category primitive.ObjectID) (*models.SubCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subCategories {
		if sub.Name == name && sub.Category == category {
			return &sub, nil
		}
	}
	return nil, models.NotFoundError("subcategory not found")
}

func (s *Store) UpdateSubCategory(_ context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.SubCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subCategories[id]
	if !ok {
		return nil, models.NotFoundError("subcategory not found")
	}
	if upd.Name != nil {
		sub.Name = *upd.Name
	}
	if upd.Category != nil {
		sub.Category = *upd.Category
	}
	if upd.PropertyType != nil {
		sub.PropertyType = *upd.PropertyType
	}
	for otherID, other := range s.subCategories {
		if otherID != id && other.Name == sub.Name && other.Category == sub.Category {
			return nil, models.DuplicateError("subcategory %q already exists in this category", sub.Name)
		}
	}
	sub.UpdatedAt = nowUTC()
	s.subCategories[id] = sub
	return &sub, nil
}

func (s *Store) DeleteSubCategory(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subCategories[id]; !ok {
		return models.NotFoundError("subcategory not found")
	}
	delete(s.subCategories, id)
	return nil
}

func (s *Store) CountDependents(_ context.Context, kind models.TaxonomyKind, id primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	switch kind {
	case models.KindPropertyType:
		for _, c := range s.categories {
			if c.PropertyType == id {
				n++
			}
		}
		for _, sub := range s.subCategories {
			if sub.PropertyType == id {
				n++
			}
		}
		for _, p := range s.properties {
			if p.PropertyType == id {
				n++
			}
		}
	case models.KindCategory:
		for _, sub := range s.subCategories {
			if sub.Category == id {
				n++
			}
		}
		for _, p := range s.properties {
			if p.Category == id {
				n++
			}
		}
	case models.KindSubCategory:
		for _, p := range s.properties {
			if p.SubCategory == id {
				n++
			}
		}
	default:
		return 0, models.ValidationError("unknown taxonomy kind %q", kind)
	}
	return n, nil
}

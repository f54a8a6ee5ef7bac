package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
)

// TaxonomyService manages the PropertyType -> Category -> SubCategory
// hierarchy. Parent references are advisory: inconsistencies are logged, not
// rejected, and deletes never cascade.
type TaxonomyService struct {
	store TaxonomyStore
	now   func() time.Time
}

func NewTaxonomyService(store TaxonomyStore) *TaxonomyService {
	return &TaxonomyService{store: store, now: time.Now}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.ValidationError("name is required")
	}
	return name, nil
}

// PropertyType

func (s *TaxonomyService) CreatePropertyType(ctx context.Context, name string) (*models.PropertyType, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindPropertyTypeByName(ctx, name)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.DuplicateError("property type %q already exists", name)
	}

	now := s.now().UTC()
	pt := &models.PropertyType{ID: primitive.NewObjectID(), Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreatePropertyType(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (s *TaxonomyService) ListPropertyTypes(ctx context.Context) ([]models.PropertyType, error) {
	return s.store.ListPropertyTypes(ctx)
}

func (s *TaxonomyService) GetPropertyType(ctx context.Context, id primitive.ObjectID) (*models.PropertyType, error) {
	return s.store.GetPropertyType(ctx, id)
}

func (s *TaxonomyService) UpdatePropertyType(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.PropertyType, error) {
	upd.PropertyType, upd.Category = nil, nil
	if err := normalizeUpdateName(&upd); err != nil {
		return nil, err
	}
	current, err := s.store.GetPropertyType(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return current, nil
	}
	if upd.Name != nil {
		existing, err := s.store.FindPropertyTypeByName(ctx, *upd.Name)
		if err := ignoreNotFound(err); err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, models.DuplicateError("property type %q already exists", *upd.Name)
		}
	}
	return s.store.UpdatePropertyType(ctx, id, upd)
}

func (s *TaxonomyService) DeletePropertyType(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.DeletePropertyType(ctx, id); err != nil {
		return err
	}
	s.reportOrphans(ctx, models.KindPropertyType, id)
	return nil
}

// Category

func (s *TaxonomyService) CreateCategory(ctx context.Context, name string, propertyType primitive.ObjectID) (*models.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if propertyType.IsZero() {
		return nil, models.ValidationError("propertyType is required")
	}

	existing, err := s.store.FindCategory(ctx, name, propertyType)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.DuplicateError("category %q already exists for this property type", name)
	}

	s.checkPropertyType(ctx, propertyType)

	now := s.now().UTC()
	c := &models.Category{ID: primitive.NewObjectID(), Name: name, PropertyType: propertyType, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.CategoryView, error) {
	return s.store.ListCategories(ctx)
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *TaxonomyService) UpdateCategory(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.Category, error) {
	upd.Category = nil
	if err := normalizeUpdateName(&upd); err != nil {
		return nil, err
	}
	current, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return current, nil
	}

	name, pt := current.Name, current.PropertyType
	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.PropertyType != nil {
		pt = *upd.PropertyType
		s.checkPropertyType(ctx, pt)
	}
	existing, err := s.store.FindCategory(ctx, name, pt)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, models.DuplicateError("category %q already exists for this property type", name)
	}
	return s.store.UpdateCategory(ctx, id, upd)
}

func (s *TaxonomyService) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.reportOrphans(ctx, models.KindCategory, id)
	return nil
}

// SubCategory

func (s *TaxonomyService) CreateSubCategory(ctx context.Context, name string, category, propertyType primitive.ObjectID) (*models.SubCategory, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if category.IsZero() {
		return nil, models.ValidationError("category is required")
	}
	if propertyType.IsZero() {
		return nil, models.ValidationError("propertyType is required")
	}

	existing, err := s.store.FindSubCategory(ctx, name, category)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.DuplicateError("subcategory %q already exists in this category", name)
	}

	s.checkSubCategoryParents(ctx, category, propertyType)

	now := s.now().UTC()
	sub := &models.SubCategory{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Category:     category,
		PropertyType: propertyType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateSubCategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *TaxonomyService) ListSubCategories(ctx context.Context) ([]models.SubCategoryView, error) {
	return s.store.ListSubCategories(ctx)
}

func (s *TaxonomyService) ListSubCategoriesByCategory(ctx context.Context, category primitive.ObjectID) ([]models.SubCategory, error) {
	return s.store.ListSubCategoriesByCategory(ctx, category)
}

func (s *TaxonomyService) GetSubCategory(ctx context.Context, id primitive.ObjectID) (*models.SubCategory, error) {
	return s.store.GetSubCategory(ctx, id)
}

func (s *TaxonomyService) UpdateSubCategory(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.SubCategory, error) {
	if err := normalizeUpdateName(&upd); err != nil {
		return nil, err
	}
	current, err := s.store.GetSubCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return current, nil
	}

	name, cat, pt := current.Name, current.Category, current.PropertyType
	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.Category != nil {
		cat = *upd.Category
	}
	if upd.PropertyType != nil {
		pt = *upd.PropertyType
	}
	if upd.Category != nil || upd.PropertyType != nil {
		s.checkSubCategoryParents(ctx, cat, pt)
	}

	existing, err := s.store.FindSubCategory(ctx, name, cat)
	if err := ignoreNotFound(err); err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, models.DuplicateError("subcategory %q already exists in this category", name)
	}
	return s.store.UpdateSubCategory(ctx, id, upd)
}

func (s *TaxonomyService) DeleteSubCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.DeleteSubCategory(ctx, id); err != nil {
		return err
	}
	s.reportOrphans(ctx, models.KindSubCategory, id)
	return nil
}

// ignoreNotFound passes through everything but not-found.
func ignoreNotFound(err error) error {
	if err == nil || errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}

func normalizeUpdateName(upd *models.TaxonomyUpdate) error {
	if upd.Name == nil {
		return nil
	}
	name, err := cleanName(*upd.Name)
	if err != nil {
		return err
	}
	upd.Name = &name
	return nil
}

func (s *TaxonomyService) checkPropertyType(ctx context.Context, id primitive.ObjectID) {
	if _, err := s.store.GetPropertyType(ctx, id); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("property_type", id.Hex()).
			Warn("Category references a property type that cannot be loaded")
	}
}

func (s *TaxonomyService) checkSubCategoryParents(ctx context.Context, category, propertyType primitive.ObjectID) {
	logger := logging.FromContext(ctx).WithField("category", category.Hex()).WithField("property_type", propertyType.Hex())

	cat, err := s.store.GetCategory(ctx, category)
	if err != nil {
		logger.WithError(err).Warn("Subcategory references a category that cannot be loaded")
		return
	}
	if cat.PropertyType != propertyType {
		logger.WithField("category_property_type", cat.PropertyType.Hex()).
			Warn("Subcategory property type differs from its category's")
	}
}

func (s *TaxonomyService) reportOrphans(ctx context.Context, kind models.TaxonomyKind, id primitive.ObjectID) {
	logger := logging.FromContext(ctx).WithField("kind", string(kind)).WithField("id", id.Hex())
	n, err := s.store.CountDependents(ctx, kind, id)
	if err != nil {
		logger.WithError(err).Warn("Could not count records referencing deleted taxonomy entry")
		return
	}
	if n > 0 {
		logger.WithField("orphaned", n).Warn("Deleted taxonomy entry is still referenced")
	}
}

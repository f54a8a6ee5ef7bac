package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
)

// TaxonomyStore persists the three taxonomy collections. Lookups of missing
// ids return models.ErrNotFound; unique-key collisions return
// models.ErrDuplicate.
type TaxonomyStore interface {
	CreatePropertyType(ctx context.Context, pt *models.PropertyType) error
	GetPropertyType(ctx context.Context, id primitive.ObjectID) (*models.PropertyType, error)
	ListPropertyTypes(ctx context.Context) ([]models.PropertyType, error)
	FindPropertyTypeByName(ctx context.Context, name string) (*models.PropertyType, error)
	UpdatePropertyType(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.PropertyType, error)
	DeletePropertyType(ctx context.Context, id primitive.ObjectID) error

	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.CategoryView, error)
	FindCategory(ctx context.Context, name string, propertyType primitive.ObjectID) (*models.Category, error)
	UpdateCategory(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error

	CreateSubCategory(ctx context.Context, s *models.SubCategory) error
	GetSubCategory(ctx context.Context, id primitive.ObjectID) (*models.SubCategory, error)
	ListSubCategories(ctx context.Context) ([]models.SubCategoryView, error)
	ListSubCategoriesByCategory(ctx context.Context, category primitive.ObjectID) ([]models.SubCategory, error)
	FindSubCategory(ctx context.Context, name string, category primitive.ObjectID) (*models.SubCategory, error)
	UpdateSubCategory(ctx context.Context, id primitive.ObjectID, upd models.TaxonomyUpdate) (*models.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id primitive.ObjectID) error

	// CountDependents counts categories, subcategories and listings whose
	// kind-named field references id.
	CountDependents(ctx context.Context, kind models.TaxonomyKind, id primitive.ObjectID) (int64, error)
}

type ListingStore interface {
	Insert(ctx context.Context, p *models.Property) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.PropertyView, error)
	Update(ctx context.Context, id primitive.ObjectID, changes models.ListingChanges) (*models.Property, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool, at time.Time) (*models.Property, error)
	// Delete removes the listing and returns it as it was.
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	Find(ctx context.Context, c models.ListingCriteria) (*models.ListingPage, error)
}

type AccountStore interface {
	CreateAdmin(ctx context.Context, a *models.Admin) error
	GetAdmin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	// UpsertAdminByEmail creates the account or overwrites its name, password
	// and role.
	UpsertAdminByEmail(ctx context.Context, a *models.Admin) (*models.Admin, error)
}

// UserStore persists client-site accounts. Emails are unique.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]models.User, error)
}

// FileCleaner schedules removal of stored upload files.
type FileCleaner interface {
	Enqueue(ctx context.Context, files []string) error
}

package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dcode-github/dealdirect/backend/controllers"
	"github.com/dcode-github/dealdirect/backend/images"
	"github.com/dcode-github/dealdirect/backend/middleware"
	"github.com/dcode-github/dealdirect/backend/services"
)

type Deps struct {
	Taxonomy *services.TaxonomyService
	Listings *services.ListingService
	Query    *services.QueryEngine
	Auth     *services.AuthService
	Users    *services.UserService
	Uploads  *images.DiskStore
	Limits   controllers.UploadLimits
	URLs     controllers.ImageURLs
}

func Routes(router *mux.Router, d Deps) {
	protected := middleware.AuthMiddleware(d.Auth, middleware.AgentPaths)
	secure := func(h http.HandlerFunc) http.Handler { return protected(h) }
	userOnly := middleware.UserAuthMiddleware(d.Users)

	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Uploads.Dir())))).Methods("GET")

	// Admin accounts
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.HandleFunc("/register", controllers.RegisterAdmin(d.Auth)).Methods("POST")
	admin.HandleFunc("/login", controllers.LoginAdmin(d.Auth)).Methods("POST")
	admin.Handle("/profile", secure(controllers.AdminProfile(d.Auth))).Methods("GET")

	// Client-site users
	users := router.PathPrefix("/api/users").Subrouter()
	users.HandleFunc("/register", controllers.RegisterUser(d.Users)).Methods("POST")
	users.HandleFunc("/login", controllers.LoginUser(d.Users)).Methods("POST")
	users.Handle("/list", secure(controllers.ListUsers(d.Users))).Methods("GET")
	users.Handle("/add-property", userOnly(controllers.AddProperty(d.Listings, d.Uploads, d.Limits, d.URLs))).Methods("POST")

	// Property routes; fixed paths are registered before /{id}
	properties := router.PathPrefix("/api/properties").Subrouter()
	properties.Handle("/add", secure(controllers.AddProperty(d.Listings, d.Uploads, d.Limits, d.URLs))).Methods("POST")
	properties.HandleFunc("/list", controllers.GetProperties(d.Query, d.URLs)).Methods("GET")
	properties.HandleFunc("/property-list", controllers.GetApprovedProperties(d.Query, d.URLs)).Methods("GET")
	properties.HandleFunc("/search", controllers.SearchProperties(d.Query, d.URLs)).Methods("GET")
	properties.HandleFunc("/filter", controllers.FilterProperties(d.Query, d.URLs)).Methods("GET")
	properties.Handle("/edit/{id}", secure(controllers.UpdateProperty(d.Listings, d.Uploads, d.Limits, d.URLs))).Methods("PUT")
	properties.Handle("/delete/{id}", secure(controllers.DeleteProperty(d.Listings))).Methods("DELETE")
	properties.Handle("/approve/{id}", secure(controllers.ApproveProperty(d.Listings, d.URLs))).Methods("PUT")
	properties.Handle("/disapprove/{id}", secure(controllers.DisapproveProperty(d.Listings, d.URLs))).Methods("PUT")
	properties.HandleFunc("/{id}", controllers.GetPropertyByID(d.Listings, d.URLs)).Methods("GET")

	// Property types
	propertyTypes := router.PathPrefix("/api/propertyTypes").Subrouter()
	propertyTypes.Handle("/add-property-type", secure(controllers.CreatePropertyType(d.Taxonomy))).Methods("POST")
	propertyTypes.HandleFunc("/list-propertytype", controllers.ListPropertyTypes(d.Taxonomy)).Methods("GET")
	propertyTypes.Handle("/edit/{id}", secure(controllers.UpdatePropertyType(d.Taxonomy))).Methods("PUT")
	propertyTypes.Handle("/delete/{id}", secure(controllers.DeletePropertyType(d.Taxonomy))).Methods("DELETE")
	propertyTypes.HandleFunc("/{id}", controllers.GetPropertyType(d.Taxonomy)).Methods("GET")

	// Categories
	categories := router.PathPrefix("/api/categories").Subrouter()
	categories.Handle("/add-category", secure(controllers.CreateCategory(d.Taxonomy))).Methods("POST")
	categories.HandleFunc("/list-category", controllers.ListCategories(d.Taxonomy)).Methods("GET")
	categories.Handle("/edit/{id}", secure(controllers.UpdateCategory(d.Taxonomy))).Methods("PUT")
	categories.Handle("/delete/{id}", secure(controllers.DeleteCategory(d.Taxonomy))).Methods("DELETE")
	categories.HandleFunc("/{id}", controllers.GetCategory(d.Taxonomy)).Methods("GET")

	// Subcategories
	subcategories := router.PathPrefix("/api/subcategories").Subrouter()
	subcategories.Handle("/add", secure(controllers.CreateSubCategory(d.Taxonomy))).Methods("POST")
	subcategories.HandleFunc("/list", controllers.ListSubCategories(d.Taxonomy)).Methods("GET")
	subcategories.HandleFunc("/byCategory/{categoryId}", controllers.ListSubCategoriesByCategory(d.Taxonomy)).Methods("GET")
	subcategories.Handle("/edit/{id}", secure(controllers.UpdateSubCategory(d.Taxonomy))).Methods("PUT")
	subcategories.Handle("/delete/{id}", secure(controllers.DeleteSubCategory(d.Taxonomy))).Methods("DELETE")
	subcategories.HandleFunc("/{id}", controllers.GetSubCategory(d.Taxonomy)).Methods("GET")
}

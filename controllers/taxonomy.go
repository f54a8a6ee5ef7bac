package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
	"github.com/dcode-github/dealdirect/backend/validation"
)

// taxonomyPayload is the body of every taxonomy create or edit. Parent ids
// arrive as hex strings.
type taxonomyPayload struct {
	Name         *string `json:"name"`
	PropertyType *string `json:"propertyType"`
	Category     *string `json:"category"`
}

func decodeTaxonomy(r *http.Request) (models.TaxonomyUpdate, error) {
	var p taxonomyPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		logging.FromContext(r.Context()).WithError(err).Info("Error decoding taxonomy payload")
		return models.TaxonomyUpdate{}, models.ValidationError("invalid request payload")
	}

	upd := models.TaxonomyUpdate{Name: p.Name}
	if p.PropertyType != nil {
		id, err := validation.ParseObjectID("propertyType", *p.PropertyType)
		if err != nil {
			return upd, err
		}
		upd.PropertyType = &id
	}
	if p.Category != nil {
		id, err := validation.ParseObjectID("category", *p.Category)
		if err != nil {
			return upd, err
		}
		upd.Category = &id
	}
	return upd, nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return validation.ParseObjectID(name, mux.Vars(r)[name])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func refOrZero(id *primitive.ObjectID) primitive.ObjectID {
	if id == nil {
		return primitive.NilObjectID
	}
	return *id
}

// Property types

func CreatePropertyType(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upd, err := decodeTaxonomy(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		pt, err := taxonomy.CreatePropertyType(r.Context(), deref(upd.Name))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusCreated, pt)
	}
}

func ListPropertyTypes(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := taxonomy.ListPropertyTypes(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, list)
	}
}

func GetPropertyType(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		pt, err := taxonomy.GetPropertyType(r.Context(), id)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, pt)
	}
}

func UpdatePropertyType(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		upd, err := decodeTaxonomy(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		pt, err := taxonomy.UpdatePropertyType(r.Context(), id, upd)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, pt)
	}
}

func DeletePropertyType(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if err := taxonomy.DeletePropertyType(r.Context(), id); err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Property type deleted successfully"})
	}
}

// Categories

func CreateCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upd, err := decodeTaxonomy(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		c, err := taxonomy.CreateCategory(r.Context(), deref(upd.Name), refOrZero(upd.PropertyType))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusCreated, c)
	}
}

func ListCategories(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := taxonomy.ListCategories(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, list)
	}
}

func GetCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		c, err := taxonomy.GetCategory(r.Context(), id)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, c)
	}
}

func UpdateCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		upd, err := decodeTaxonomy(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		c, err := taxonomy.UpdateCategory(r.Context(), id, upd)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, c)
	}
}

func DeleteCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if err := taxonomy.DeleteCategory(r.Context(), id); err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Category deleted successfully"})
	}
}

// Subcategories

func CreateSubCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upd, err := decodeTaxonomy(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		sub, err := taxonomy.CreateSubCategory(r.Context(), deref(upd.Name), refOrZero(upd.Category), refOrZero(upd.PropertyType))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusCreated, sub)
	}
}

func ListSubCategories(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := taxonomy.ListSubCategories(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, list)
	}
}

func ListSubCategoriesByCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathID(r, "categoryId")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		list, err := taxonomy.ListSubCategoriesByCategory(r.Context(), categoryID)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, list)
	}
}

func GetSubCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		sub, err := taxonomy.GetSubCategory(r.Context(), id)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, sub)
	}
}

func UpdateSubCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		upd, err := decodeTaxonomy(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		sub, err := taxonomy.UpdateSubCategory(r.Context(), id, upd)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, sub)
	}
}

func DeleteSubCategory(taxonomy *services.TaxonomyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if err := taxonomy.DeleteSubCategory(r.Context(), id); err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Subcategory deleted successfully"})
	}
}

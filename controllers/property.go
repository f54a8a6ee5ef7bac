package controllers

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dcode-github/dealdirect/backend/images"
	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
	"github.com/dcode-github/dealdirect/backend/validation"
)

const (
	imagesField     = "images"
	multipartMemory = 10 << 20
)

// ImageURLs rewrites stored image names into public URLs for a request.
type ImageURLs struct {
	PublicBaseURL string
	TrustProxy    bool
}

func (u ImageURLs) For(r *http.Request) images.Normalizer {
	return images.NewNormalizer(images.BaseURL(r, u.PublicBaseURL, u.TrustProxy))
}

type UploadLimits struct {
	MaxImages int
	MaxBytes  int64
}

// readListingForm accepts multipart, urlencoded and JSON listing payloads and
// returns the form values plus any uploaded image files.
func readListingForm(w http.ResponseWriter, r *http.Request, limits UploadLimits) (url.Values, []*multipart.FileHeader, error) {
	if limits.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		values, err := validation.FormFromJSON(r.Body)
		if err != nil {
			return nil, nil, bodyError(err, limits)
		}
		return values, nil, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, bodyError(err, limits)
		}
		files := r.MultipartForm.File[imagesField]
		if limits.MaxImages > 0 && len(files) > limits.MaxImages {
			return nil, nil, models.ValidationError("at most %d images may be uploaded", limits.MaxImages)
		}
		return url.Values(r.MultipartForm.Value), files, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, nil, bodyError(err, limits)
	}
	return r.PostForm, nil, nil
}

func bodyError(err error, limits UploadLimits) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return models.ValidationError("request body exceeds %d bytes", limits.MaxBytes)
	}
	if models.KindOf(err) == models.KindValidation {
		return err
	}
	return models.ValidationError("invalid request body: %v", err)
}

// discardUploads removes files saved for a request whose write failed.
func discardUploads(r *http.Request, uploads *images.DiskStore, names []string) {
	for _, name := range names {
		if err := uploads.Remove(name); err != nil {
			logging.FromContext(r.Context()).WithError(err).WithField("file", name).
				Error("Failed to remove upload of a rejected request")
		}
	}
}

func AddProperty(listings *services.ListingService, uploads *images.DiskStore, limits UploadLimits, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		createdBy, ok := creatorID(r.Context())
		if !ok {
			WriteError(w, r, models.UnauthorizedError("not authorized"))
			return
		}

		values, files, err := readListingForm(w, r, limits)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		input, err := validation.ParseListing(values)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		saved, err := uploads.SaveAll(files)
		if err != nil {
			WriteError(w, r, models.StorageError(err, "failed to store uploaded images"))
			return
		}

		property, err := listings.Add(r.Context(), input, saved, createdBy)
		if err != nil {
			discardUploads(r, uploads, saved)
			WriteError(w, r, err)
			return
		}

		urls.For(r).Apply(&property.ListingFields)
		RespondWithJSON(w, http.StatusCreated, property)
	}
}

func UpdateProperty(listings *services.ListingService, uploads *images.DiskStore, limits UploadLimits, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}

		values, files, err := readListingForm(w, r, limits)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		input, err := validation.ParseListing(values)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		saved, err := uploads.SaveAll(files)
		if err != nil {
			WriteError(w, r, models.StorageError(err, "failed to store uploaded images"))
			return
		}

		property, err := listings.Update(r.Context(), id, input, saved)
		if err != nil {
			discardUploads(r, uploads, saved)
			WriteError(w, r, err)
			return
		}

		urls.For(r).Apply(&property.ListingFields)
		RespondWithJSON(w, http.StatusOK, property)
	}
}

func DeleteProperty(listings *services.ListingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if err := listings.Delete(r.Context(), id); err != nil {
			WriteError(w, r, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Property deleted successfully"})
	}
}

func approval(listings *services.ListingService, urls ImageURLs, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}

		var property *models.Property
		if approve {
			property, err = listings.Approve(r.Context(), id)
		} else {
			property, err = listings.Disapprove(r.Context(), id)
		}
		if err != nil {
			WriteError(w, r, err)
			return
		}

		urls.For(r).Apply(&property.ListingFields)
		RespondWithJSON(w, http.StatusOK, property)
	}
}

func ApproveProperty(listings *services.ListingService, urls ImageURLs) http.HandlerFunc {
	return approval(listings, urls, true)
}

func DisapproveProperty(listings *services.ListingService, urls ImageURLs) http.HandlerFunc {
	return approval(listings, urls, false)
}

func GetPropertyByID(listings *services.ListingService, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		view, err := listings.Get(r.Context(), id)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		urls.For(r).Apply(&view.ListingFields)
		RespondWithJSON(w, http.StatusOK, view)
	}
}

// GetProperties lists every listing for the admin panel.
func GetProperties(query *services.QueryEngine, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := query.ListAll(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		urls.For(r).ApplyViews(views)
		RespondWithJSON(w, http.StatusOK, views)
	}
}

// GetApprovedProperties lists the publicly visible listings.
func GetApprovedProperties(query *services.QueryEngine, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := query.ListApproved(r.Context())
		if err != nil {
			WriteError(w, r, err)
			return
		}
		urls.For(r).ApplyViews(views)
		RespondWithJSON(w, http.StatusOK, ListResponse{Success: true, Data: views})
	}
}

func SearchProperties(query *services.QueryEngine, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		result, err := query.Search(r.Context(), services.SearchParams{
			Search:       q.Get("search"),
			Category:     q.Get("category"),
			SubCategory:  q.Get("subcategory"),
			PropertyType: q.Get("propertyType"),
			City:         q.Get("city"),
			PriceFrom:    q.Get("priceFrom"),
			PriceTo:      q.Get("priceTo"),
			Page:         q.Get("page"),
			Limit:        q.Get("limit"),
			Sort:         q.Get("sort"),
		})
		if err != nil {
			WriteError(w, r, err)
			return
		}
		urls.For(r).ApplyViews(result.Data)
		RespondWithJSON(w, http.StatusOK, result)
	}
}

func FilterProperties(query *services.QueryEngine, urls ImageURLs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		views, err := query.Filter(r.Context(), q.Get("search"), q.Get("sort"))
		if err != nil {
			WriteError(w, r, err)
			return
		}
		urls.For(r).ApplyViews(views)
		RespondWithJSON(w, http.StatusOK, ListResponse{Success: true, Data: views})
	}
}

package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// SearchParams are the raw query-string inputs of the public search.
type SearchParams struct {
	Search       string
	Category     string
	SubCategory  string
	PropertyType string
	City         string
	PriceFrom    string
	PriceTo      string
	Page         string
	Limit        string
	Sort         string
}

type SearchResult struct {
	Data  []models.PropertyView `json:"data"`
	Total int64                 `json:"total"`
	Page  int64                 `json:"page"`
	Pages int64                 `json:"pages"`
}

// QueryEngine answers every read over listings with one criteria type, so the
// paginated search and the cross-entity filter share a single code path.
type QueryEngine struct {
	store ListingStore
}

func NewQueryEngine(store ListingStore) *QueryEngine {
	return &QueryEngine{store: store}
}

// Search runs the paginated public search over approved listings.
func (q *QueryEngine) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	c := models.ListingCriteria{
		ApprovedOnly: true,
		Text:         strings.TrimSpace(p.Search),
		Sort:         models.ParseSortOrder(p.Sort),
	}

	var err error
	if c.PropertyType, err = optionalID("propertyType", p.PropertyType); err != nil {
		return nil, err
	}
	if c.Category, err = optionalID("category", p.Category); err != nil {
		return nil, err
	}
	if c.SubCategory, err = optionalID("subcategory", p.SubCategory); err != nil {
		return nil, err
	}

	if city := strings.TrimSpace(p.City); city != "" && !strings.EqualFold(city, "All") {
		c.City = city
	}
	c.PriceFrom = priceBound(ctx, "priceFrom", p.PriceFrom)
	c.PriceTo = priceBound(ctx, "priceTo", p.PriceTo)

	page := positiveInt(p.Page, DefaultPage)
	limit := positiveInt(p.Limit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// (page-1)*limit must stay within int64.
	if page-1 > math.MaxInt64/limit {
		page = math.MaxInt64/limit + 1
	}
	c.Skip = (page - 1) * limit
	c.Limit = limit

	res, err := q.store.Find(ctx, c)
	if err != nil {
		return nil, err
	}
	data := res.Data
	if data == nil {
		data = []models.PropertyView{}
	}
	return &SearchResult{
		Data:  data,
		Total: res.Total,
		Page:  page,
		Pages: int64(math.Ceil(float64(res.Total) / float64(limit))),
	}, nil
}

// Filter matches text against title, city and the resolved taxonomy names of
// approved listings and returns every match.
func (q *QueryEngine) Filter(ctx context.Context, search, sort string) ([]models.PropertyView, error) {
	return q.all(ctx, models.ListingCriteria{
		ApprovedOnly:    true,
		Text:            strings.TrimSpace(search),
		CrossEntityText: true,
		Sort:            models.ParseSortOrder(sort),
	})
}

// ListAll returns every listing, approved or not, newest first.
func (q *QueryEngine) ListAll(ctx context.Context) ([]models.PropertyView, error) {
	return q.all(ctx, models.ListingCriteria{Sort: models.SortNewest})
}

// ListApproved returns the publicly visible listings, newest first.
func (q *QueryEngine) ListApproved(ctx context.Context) ([]models.PropertyView, error) {
	return q.all(ctx, models.ListingCriteria{ApprovedOnly: true, Sort: models.SortNewest})
}

func (q *QueryEngine) all(ctx context.Context, c models.ListingCriteria) ([]models.PropertyView, error) {
	res, err := q.store.Find(ctx, c)
	if err != nil {
		return nil, err
	}
	if res.Data == nil {
		return []models.PropertyView{}, nil
	}
	return res.Data, nil
}

func optionalID(field, raw string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, models.ValidationError("invalid %s id %q", field, raw)
	}
	return &id, nil
}

// priceBound parses an inclusive price bound. Unparseable values are dropped.
func priceBound(ctx context.Context, field, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		logging.FromContext(ctx).WithField(field, raw).Warn("Ignoring malformed price bound")
		return nil
	}
	return &v
}

func positiveInt(raw string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

package validation

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/dealdirect/backend/models"
)

// ParseObjectID parses a hex id, reporting failures against field.
func ParseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, models.ValidationError("invalid %s id %q", field, hex)
	}
	return id, nil
}

// FormFromJSON flattens a JSON object body into form values so JSON and
// multipart submissions share one parser. Strings are taken verbatim, every
// other value keeps its JSON text, nulls are dropped.
func FormFromJSON(r io.Reader) (url.Values, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, models.ValidationError("invalid JSON body: %v", err)
	}

	values := url.Values{}
	for k, raw := range body {
		raw = bytes.TrimSpace(raw)
		switch {
		case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
			continue
		case raw[0] == '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, models.ValidationError("invalid %s: %v", k, err)
			}
			values.Set(k, s)
		default:
			values.Set(k, string(raw))
		}
	}
	return values, nil
}

// ParseListing turns submitted form values into a typed listing input.
// Required-field checks are left to the caller since edits are partial;
// isApproved is never read.
func ParseListing(values url.Values) (*models.ListingInput, error) {
	in := &models.ListingInput{}

	ids := []struct {
		field string
		dst   **primitive.ObjectID
	}{
		{"propertyType", &in.PropertyType},
		{"category", &in.Category},
		{"subcategory", &in.SubCategory},
	}
	for _, f := range ids {
		if v, ok := nonEmpty(values, f.field); ok {
			id, err := ParseObjectID(f.field, v)
			if err != nil {
				return nil, err
			}
			*f.dst = &id
		}
	}

	if v, ok := nonEmpty(values, "title"); ok {
		in.Title = &v
	}
	if v, ok := present(values, "description"); ok {
		v = strings.TrimSpace(v)
		in.Description = &v
	}
	if v, ok := nonEmpty(values, "priceUnit"); ok {
		in.PriceUnit = &v
	}

	if v, ok := nonEmpty(values, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, models.ValidationError("price must be a non-negative number, got %q", v)
		}
		in.Price = &price
	}

	if v, ok := nonEmpty(values, "negotiable"); ok {
		b, err := parseBool(v)
		if err != nil {
			return nil, models.ValidationError("negotiable must be a boolean, got %q", v)
		}
		in.Negotiable = &b
	}

	if v, ok := nonEmpty(values, "area"); ok {
		var a areaDoc
		if err := decodeAgainst("area", v, &a); err != nil {
			return nil, err
		}
		area := a.toModel()
		in.Area = &area
	}
	if v, ok := nonEmpty(values, "parking"); ok {
		var p parkingDoc
		if err := decodeAgainst("parking", v, &p); err != nil {
			return nil, err
		}
		parking := p.toModel()
		in.Parking = &parking
	}
	if v, ok := nonEmpty(values, "address"); ok {
		var a addressDoc
		if err := decodeAgainst("address", v, &a); err != nil {
			return nil, err
		}
		addr := a.toModel()
		if addr.Latitude != nil && math.Abs(*addr.Latitude) > 90 {
			return nil, models.ValidationError("invalid address: latitude out of range")
		}
		if addr.Longitude != nil && math.Abs(*addr.Longitude) > 180 {
			return nil, models.ValidationError("invalid address: longitude out of range")
		}
		in.Address = &addr
	}
	if v, ok := nonEmpty(values, "flooring"); ok {
		flooring := []string{}
		if err := decodeAgainst("flooring", v, &flooring); err != nil {
			return nil, err
		}
		in.Flooring = trimAll(flooring)
	}

	amenities, err := parseAmenities(values)
	if err != nil {
		return nil, err
	}
	in.Amenities = amenities

	return in, nil
}

// parseAmenities accepts repeated fields, a JSON array, or a comma separated
// string. A nil result means the field was not submitted.
func parseAmenities(values url.Values) ([]string, error) {
	raw, ok := values["amenities"]
	if !ok {
		raw, ok = values["amenities[]"]
	}
	if !ok {
		return nil, nil
	}

	if len(raw) == 1 && strings.HasPrefix(strings.TrimSpace(raw[0]), "[") {
		list := []string{}
		if err := decodeAgainst("amenities", raw[0], &list); err != nil {
			return nil, err
		}
		return trimAll(list), nil
	}

	out := []string{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out, nil
}

func present(values url.Values, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func nonEmpty(values url.Values, key string) (string, bool) {
	v, ok := present(values, key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

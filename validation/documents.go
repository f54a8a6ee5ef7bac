package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dcode-github/dealdirect/backend/models"
)

// flexFloat accepts a JSON number, a numeric string, an empty string or null.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		f.v = nil
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			f.v = nil
			return nil
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.v = &n
	return nil
}

func (f flexFloat) value() float64 {
	if f.v == nil {
		return 0
	}
	return *f.v
}

// flexString accepts a string or a number, keeping numbers' literal text.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	*s = flexString(b)
	return nil
}

type areaDoc struct {
	TotalSqft    flexFloat `json:"totalSqft"`
	CarpetSqft   flexFloat `json:"carpetSqft"`
	BuiltUpSqft  flexFloat `json:"builtUpSqft"`
	PricePerSqft flexFloat `json:"pricePerSqft"`
}

func (a areaDoc) toModel() models.Area {
	return models.Area{
		TotalSqft:    a.TotalSqft.value(),
		CarpetSqft:   a.CarpetSqft.value(),
		BuiltUpSqft:  a.BuiltUpSqft.value(),
		PricePerSqft: a.PricePerSqft.value(),
	}
}

type parkingDoc struct {
	Covered flexString `json:"covered"`
	Open    flexString `json:"open"`
}

func (p parkingDoc) toModel() models.Parking {
	return models.Parking{Covered: string(p.Covered), Open: string(p.Open)}
}

type addressDoc struct {
	Line      flexString `json:"line"`
	Area      flexString `json:"area"`
	City      flexString `json:"city"`
	State     flexString `json:"state"`
	Pincode   flexString `json:"pincode"`
	Latitude  flexFloat  `json:"latitude"`
	Longitude flexFloat  `json:"longitude"`
}

func (a addressDoc) toModel() models.Address {
	return models.Address{
		Line:      string(a.Line),
		Area:      string(a.Area),
		City:      string(a.City),
		State:     string(a.State),
		Pincode:   string(a.Pincode),
		Latitude:  a.Latitude.v,
		Longitude: a.Longitude.v,
	}
}

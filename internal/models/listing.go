// internal/models/listing.go
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Listing categories published by the directory.
const (
	CategoryCoworking     = "coworking"
	CategoryCafe          = "cafe"
	CategoryAccommodation = "accommodation"
)

var ErrInvalidListing = errors.New("invalid listing")

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
}

// Listing is a directory entry as delivered by the content store. Search treats
// it as read-only for the duration of a request.
type Listing struct {
	ID                  string       `json:"_id" bson:"_id" validate:"required"`
	Name                string       `json:"name" bson:"name" validate:"required"`
	Slug                string       `json:"slug" bson:"slug"`
	Category            string       `json:"category" bson:"category" validate:"required"`
	City                string       `json:"city" bson:"city"`
	Country             string       `json:"country,omitempty" bson:"country,omitempty"`
	DescriptionShort    string       `json:"descriptionShort,omitempty" bson:"description_short,omitempty"`
	EcoTags             []string     `json:"ecoTags" bson:"eco_focus_tags"`
	NomadFeatures       []string     `json:"nomadFeatures" bson:"digital_nomad_features"`
	PriceRange          string       `json:"priceRange,omitempty" bson:"price_range,omitempty" validate:"omitempty,oneof=$ $$ $$$ $$$$"`
	Rating              *float64     `json:"rating,omitempty" bson:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	SustainabilityScore *float64     `json:"sustainabilityScore,omitempty" bson:"sustainability_score,omitempty" validate:"omitempty,gte=0"`
	Verified            *bool        `json:"verified,omitempty" bson:"verified,omitempty"`
	Coordinates         *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	CreatedAt           time.Time    `json:"_createdAt" bson:"created_at"`
}

// PriceLevel returns the number of '$' signs in the price range, 0 when unset.
func (l *Listing) PriceLevel() int {
	return PriceLevelOf(l.PriceRange)
}

// PriceLevelOf parses a "$".."$$$$" price range. Anything else is level 0.
func PriceLevelOf(priceRange string) int {
	s := strings.TrimSpace(priceRange)
	if s == "" || len(s) > 4 || strings.Trim(s, "$") != "" {
		return 0
	}
	return len(s)
}

// Field returns the value of a filterable field. ok is false when the field is
// unknown or the record carries no value for it.
func (l *Listing) Field(name FieldName) (FieldValue, bool) {
	switch name {
	case FieldListingName:
		return stringValue(l.Name)
	case FieldSlug:
		return stringValue(l.Slug)
	case FieldCategory:
		return stringValue(l.Category)
	case FieldCity:
		return stringValue(l.City)
	case FieldCountry:
		return stringValue(l.Country)
	case FieldPriceRange:
		return stringValue(l.PriceRange)
	case FieldEcoTags:
		return listValue(l.EcoTags)
	case FieldNomadFeatures:
		return listValue(l.NomadFeatures)
	case FieldRating:
		return numberValue(l.Rating)
	case FieldSustainabilityScore:
		return numberValue(l.SustainabilityScore)
	case FieldVerified:
		if l.Verified == nil {
			return FieldValue{}, false
		}
		return BoolValue(*l.Verified), true
	}
	return FieldValue{}, false
}

func stringValue(s string) (FieldValue, bool) {
	if s == "" {
		return FieldValue{}, false
	}
	return StringValue(s), true
}

func listValue(items []string) (FieldValue, bool) {
	if len(items) == 0 {
		return FieldValue{}, false
	}
	return FieldValue{Kind: KindStringList, List: items}, true
}

func numberValue(n *float64) (FieldValue, bool) {
	if n == nil {
		return FieldValue{}, false
	}
	return NumberValue(*n), true
}

var listingValidator = newListingValidator()

func newListingValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the fields stores and search rely on. Errors name the JSON
// field that failed.
func (l *Listing) Validate() error {
	err := listingValidator.Struct(l)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	fe := fieldErrs[0]
	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Errorf("%w: listing %q: %s must satisfy %s",
		ErrInvalidListing, l.ID, strings.TrimPrefix(fe.Namespace(), "Listing."), rule)
}

// ValidateListings validates every listing and rejects duplicate ids.
func ValidateListings(listings []Listing) error {
	seen := make(map[string]bool, len(listings))
	for i := range listings {
		if err := listings[i].Validate(); err != nil {
			return err
		}
		if seen[listings[i].ID] {
			return fmt.Errorf("%w: duplicate _id %s", ErrInvalidListing, listings[i].ID)
		}
		seen[listings[i].ID] = true
	}
	return nil
}

// SearchResult is a listing matched by a search plus the per-request keys it
// was ranked on.
type SearchResult struct {
	Listing
	Relevance  *float64 `json:"relevance,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// CandidateQuery is the narrow push-down handed to a data source. Sources may
// ignore any of it; search re-applies every filter in process.
type CandidateQuery struct {
	Category string
	Limit    int
}

// internal/models/filters.go
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidFilter = errors.New("invalid filter")

type LogicalOperator string

const (
	OperatorAND LogicalOperator = "AND"
	OperatorOR  LogicalOperator = "OR"
)

func (o LogicalOperator) Valid() bool {
	return o == OperatorAND || o == OperatorOR
}

// OrDefault returns AND for the empty operator.
func (o LogicalOperator) OrDefault() LogicalOperator {
	if o == "" {
		return OperatorAND
	}
	return o
}

// FieldName is a listing field that structured filters may test.
type FieldName string

const (
	FieldListingName         FieldName = "name"
	FieldSlug                FieldName = "slug"
	FieldCategory            FieldName = "category"
	FieldCity                FieldName = "city"
	FieldCountry             FieldName = "country"
	FieldPriceRange          FieldName = "priceRange"
	FieldEcoTags             FieldName = "ecoTags"
	FieldNomadFeatures       FieldName = "nomadFeatures"
	FieldRating              FieldName = "rating"
	FieldSustainabilityScore FieldName = "sustainabilityScore"
	FieldVerified            FieldName = "verified"
)

type ValueKind int

const (
	KindString ValueKind = iota + 1
	KindNumber
	KindBool
	KindStringList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindStringList:
		return "string[]"
	}
	return "unknown"
}

var filterableFields = map[FieldName]ValueKind{
	FieldListingName:         KindString,
	FieldSlug:                KindString,
	FieldCategory:            KindString,
	FieldCity:                KindString,
	FieldCountry:             KindString,
	FieldPriceRange:          KindString,
	FieldEcoTags:             KindStringList,
	FieldNomadFeatures:       KindStringList,
	FieldRating:              KindNumber,
	FieldSustainabilityScore: KindNumber,
	FieldVerified:            KindBool,
}

// FieldKind reports the declared kind of a filterable field.
func FieldKind(name FieldName) (ValueKind, bool) {
	k, ok := filterableFields[name]
	return k, ok
}

// FilterableFields lists the field catalog, mainly for error messages.
func FilterableFields() []string {
	out := make([]string, 0, len(filterableFields))
	for _, f := range []FieldName{
		FieldListingName, FieldSlug, FieldCategory, FieldCity, FieldCountry, FieldPriceRange,
		FieldEcoTags, FieldNomadFeatures, FieldRating, FieldSustainabilityScore, FieldVerified,
	} {
		out = append(out, string(f))
	}
	return out
}

// FieldValue is a typed scalar or string list. Conditions only ever carry the
// scalar kinds; KindStringList appears on the record side.
type FieldValue struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	List []string
}

func StringValue(s string) FieldValue { return FieldValue{Kind: KindString, Str: s} }
func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Num: n} }
func BoolValue(b bool) FieldValue { return FieldValue{Kind: KindBool, Bool: b} }

func (v FieldValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindStringList:
		return strings.Join(v.List, ",")
	}
	return ""
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindStringList:
		return json.Marshal(v.List)
	}
	return []byte("null"), nil
}

// UnmarshalJSON keeps the JSON type of the value; "4" and 4 are different values.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: condition value is required", ErrInvalidFilter)
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: condition value must be a string, number or boolean", ErrInvalidFilter)
		}
		*v = NumberValue(n)
	}
	return nil
}

type FilterCondition struct {
	Field FieldName  `json:"field"`
	Value FieldValue `json:"value"`
	// Operator is display metadata; groups decide how conditions combine.
	Operator LogicalOperator `json:"operator,omitempty"`
}

type FilterGroup struct {
	Conditions []FilterCondition `json:"conditions"`
	Operator   LogicalOperator   `json:"operator"`
	IsEnabled  *bool             `json:"isEnabled,omitempty"`
	Label      string            `json:"label,omitempty"`
}

// Enabled is true unless isEnabled was explicitly set to false.
func (g FilterGroup) Enabled() bool {
	return g.IsEnabled == nil || *g.IsEnabled
}

// ListingFilters is the structured part of a search request.
type ListingFilters struct {
	SearchQuery         string          `json:"searchQuery,omitempty"`
	Category            string          `json:"category,omitempty"`
	Location            string          `json:"location,omitempty"`
	EcoTags             []string        `json:"ecoTags,omitempty"`
	NomadFeatures       []string        `json:"nomadFeatures,omitempty"`
	MinRating           *float64        `json:"minRating,omitempty"`
	MaxPriceRange       string          `json:"maxPriceRange,omitempty"`
	Combinations        []FilterGroup   `json:"combinations,omitempty"`
	CombinationOperator LogicalOperator `json:"combinationOperator,omitempty"`
}

// IsEmpty reports whether the filters constrain nothing.
func (f *ListingFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Category == "" && f.Location == "" && len(f.EcoTags) == 0 &&
		len(f.NomadFeatures) == 0 && f.MinRating == nil && f.MaxPriceRange == "" &&
		len(f.Combinations) == 0
}

// ValidateCondition checks a condition against the field catalog. Values are
// never coerced, so a number compared with a string field is rejected here.
func ValidateCondition(c FilterCondition) error {
	kind, ok := FieldKind(c.Field)
	if !ok {
		return fmt.Errorf("%w: unknown field %q (allowed: %s)", ErrInvalidFilter, c.Field,
			strings.Join(FilterableFields(), ", "))
	}
	if c.Operator != "" && !c.Operator.Valid() {
		return fmt.Errorf("%w: condition operator %q must be AND or OR", ErrInvalidFilter, c.Operator)
	}
	want := kind
	if kind == KindStringList {
		want = KindString
	}
	if c.Value.Kind != want {
		return fmt.Errorf("%w: field %q expects a %s value, got %s", ErrInvalidFilter, c.Field, want, c.Value.Kind)
	}
	if c.Value.Kind == KindNumber && (math.IsNaN(c.Value.Num) || math.IsInf(c.Value.Num, 0)) {
		return fmt.Errorf("%w: field %q has a non-finite value", ErrInvalidFilter, c.Field)
	}
	return nil
}

// ValidateGroup checks operator and conditions. Disabled groups are validated
// too but may be empty.
func ValidateGroup(g FilterGroup) error {
	if !g.Operator.OrDefault().Valid() {
		return fmt.Errorf("%w: group operator %q must be AND or OR", ErrInvalidFilter, g.Operator)
	}
	if g.Enabled() && len(g.Conditions) == 0 {
		return fmt.Errorf("%w: enabled group %q has no conditions", ErrInvalidFilter, g.Label)
	}
	for i, c := range g.Conditions {
		if err := ValidateCondition(c); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return nil
}

// ValidateFilters checks the whole structured filter set. A nil filter set is valid.
func ValidateFilters(f *ListingFilters) error {
	if f == nil {
		return nil
	}
	if f.MinRating != nil && (*f.MinRating < 0 || *f.MinRating > 5) {
		return fmt.Errorf("%w: minRating must be between 0 and 5", ErrInvalidFilter)
	}
	if f.MaxPriceRange != "" && PriceLevelOf(f.MaxPriceRange) == 0 {
		return fmt.Errorf("%w: maxPriceRange %q must be one to four '$' signs", ErrInvalidFilter, f.MaxPriceRange)
	}
	if f.CombinationOperator != "" && !f.CombinationOperator.Valid() {
		return fmt.Errorf("%w: combinationOperator %q must be AND or OR", ErrInvalidFilter, f.CombinationOperator)
	}
	for i, g := range f.Combinations {
		if err := ValidateGroup(g); err != nil {
			return fmt.Errorf("combinations[%d]: %w", i, err)
		}
	}
	return nil
}

// internal/models/sort.go
package models

type SortField string

const (
	SortRelevance           SortField = "relevance"
	SortPrice               SortField = "price"
	SortRating              SortField = "rating"
	SortSustainability      SortField = "sustainability"
	SortDistance            SortField = "distance"
	SortName                SortField = "name"
	SortSustainabilityScore SortField = "sustainabilityScore"
	SortPriceRange          SortField = "priceRange"
	SortCreatedAt           SortField = "_createdAt"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortOption struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
	Label     string        `json:"label,omitempty"`
}

// DefaultSortOptions is the only set of orderings callers may request.
var DefaultSortOptions = []SortOption{
	{Field: SortRelevance, Direction: SortDesc, Label: "Most relevant"},
	{Field: SortRating, Direction: SortDesc, Label: "Highest rated"},
	{Field: SortRating, Direction: SortAsc, Label: "Lowest rated"},
	{Field: SortPrice, Direction: SortAsc, Label: "Price: low to high"},
	{Field: SortPrice, Direction: SortDesc, Label: "Price: high to low"},
	{Field: SortPriceRange, Direction: SortAsc, Label: "Price range"},
	{Field: SortSustainability, Direction: SortDesc, Label: "Most sustainable"},
	{Field: SortSustainabilityScore, Direction: SortDesc, Label: "Sustainability score"},
	{Field: SortDistance, Direction: SortAsc, Label: "Nearest first"},
	{Field: SortName, Direction: SortAsc, Label: "Name A-Z"},
	{Field: SortName, Direction: SortDesc, Label: "Name Z-A"},
	{Field: SortCreatedAt, Direction: SortDesc, Label: "Newest"},
}

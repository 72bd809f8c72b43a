// Package predicate decides whether a single listing satisfies a single
// filter condition.
package predicate

import (
	"nomad-directory/internal/models"
)

// Matches reports whether listing satisfies condition. A field the listing
// does not carry never matches. Values are compared without coercion: a
// condition only matches a field value of the same kind, and list fields
// match when they contain the condition value.
func Matches(listing *models.Listing, condition models.FilterCondition) bool {
	if listing == nil {
		return false
	}
	actual, ok := listing.Field(condition.Field)
	if !ok {
		return false
	}
	return valueMatches(actual, condition.Value)
}

func valueMatches(actual, want models.FieldValue) bool {
	switch actual.Kind {
	case models.KindStringList:
		if want.Kind != models.KindString {
			return false
		}
		for _, item := range actual.List {
			if item == want.Str {
				return true
			}
		}
		return false
	case models.KindString:
		return want.Kind == models.KindString && actual.Str == want.Str
	case models.KindNumber:
		return want.Kind == models.KindNumber && actual.Num == want.Num
	case models.KindBool:
		return want.Kind == models.KindBool && actual.Bool == want.Bool
	}
	return false
}

// MatchesAll reports whether every condition matches. Used by callers that
// need the AND form without building a group.
func MatchesAll(listing *models.Listing, conditions []models.FilterCondition) bool {
	for _, c := range conditions {
		if !Matches(listing, c) {
			return false
		}
	}
	return true
}

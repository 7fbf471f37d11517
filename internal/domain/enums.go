// Package domain defines the persistence models for the four catalog
// collections (customers, products, action logs, reviews) together with the
// closed vocabularies they share. These types are mapped with GORM and form
// the core data layer of the recommendation backend.
package domain

import "sort"

// Skin profile types. A customer has exactly one; a product targets a set.
const (
	SkinDry            = "dry"
	SkinNormal         = "normal"
	SkinOily           = "oily"
	SkinCombination    = "combination"
	SkinDehydratedOily = "dehydrated_oily"
)

// Concern tags. Multi-valued on both customers and products; the shared
// vocabulary is what makes set-intersection filtering meaningful.
const (
	ConcernAcneTrouble         = "acne_trouble"
	ConcernPores               = "pores"
	ConcernWrinklesAging       = "wrinkles_aging"
	ConcernPigmentationBlemish = "pigmentation_blemish"
	ConcernRedness             = "redness"
	ConcernSevereDryness       = "severe_dryness"
	ConcernDullness            = "dullness"
)

// Action kinds, in lifecycle order.
const (
	ActionView     = "view"
	ActionCart     = "cart"
	ActionPurchase = "purchase"
)

// skinTypes is the closed set of valid profile values.
var skinTypes = map[string]struct{}{
	SkinDry:            {},
	SkinNormal:         {},
	SkinOily:           {},
	SkinCombination:    {},
	SkinDehydratedOily: {},
}

// concernTags is the closed set of valid concern values.
var concernTags = map[string]struct{}{
	ConcernAcneTrouble:         {},
	ConcernPores:               {},
	ConcernWrinklesAging:       {},
	ConcernPigmentationBlemish: {},
	ConcernRedness:             {},
	ConcernSevereDryness:       {},
	ConcernDullness:            {},
}

// productTypes is the closed set of valid catalog categories.
var productTypes = map[string]struct{}{
	"cleansing_foam":      {},
	"cleansing_oil_water": {},
	"exfoliator_peeling":  {},
	"toner":               {},
	"toner_pad":           {},
	"essence":             {},
	"serum":               {},
	"ampoule":             {},
	"lotion_emulsion":     {},
	"moisture_cream":      {},
	"eye_cream":           {},
	"face_oil":            {},
	"sheet_mask":          {},
	"wash_off_mask":       {},
	"sun_care":            {},
	"lip_care":            {},
}

// actionKinds is the closed set of valid behavioral event kinds.
var actionKinds = map[string]struct{}{
	ActionView:     {},
	ActionCart:     {},
	ActionPurchase: {},
}

// ValidSkinType reports whether s is a known profile type.
func ValidSkinType(s string) bool { _, ok := skinTypes[s]; return ok }

// ValidConcern reports whether s is a known concern tag.
func ValidConcern(s string) bool { _, ok := concernTags[s]; return ok }

// ValidProductType reports whether s is a known catalog category.
func ValidProductType(s string) bool { _, ok := productTypes[s]; return ok }

// ValidAction reports whether s is a known action kind.
func ValidAction(s string) bool { _, ok := actionKinds[s]; return ok }

// SkinTypes returns the profile vocabulary in sorted order.
func SkinTypes() []string { return sortedKeys(skinTypes) }

// Concerns returns the concern vocabulary in sorted order.
func Concerns() []string { return sortedKeys(concernTags) }

// ProductTypes returns the catalog category vocabulary in sorted order.
func ProductTypes() []string { return sortedKeys(productTypes) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidRate reports whether r is a rating in [1.0, 5.0] at 0.5 granularity.
func ValidRate(r float64) bool {
	if r < 1.0 || r > 5.0 {
		return false
	}
	doubled := r * 2
	return doubled == float64(int(doubled))
}

package ratingdomain

import (
	"strings"
)

// Category is the competitive level of a match. It selects the K-factor.
type Category string

const (
	CategoryFriendly             Category = "friendly"
	CategoryClubLeague           Category = "club_league"
	CategoryOfficialTournament   Category = "official_tournament"
	CategoryCorporateChallenge   Category = "corporate_challenge"
	CategoryNationalChampionship Category = "national_championship"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFriendly,
	CategoryClubLeague,
	CategoryOfficialTournament,
	CategoryCorporateChallenge,
	CategoryNationalChampionship,
}

var kFactors = map[Category]int{
	CategoryFriendly:             16,
	CategoryClubLeague:           32,
	CategoryOfficialTournament:   50,
	CategoryCorporateChallenge:   25,
	CategoryNationalChampionship: 75,
}

// categoryAliases maps the names the older four-tier scheme used onto the
// current categories. Only names are mapped; the K-factor always comes from
// kFactors.
var categoryAliases = map[string]Category{
	"league":     CategoryClubLeague,
	"tournament": CategoryOfficialTournament,
	"nationals":  CategoryNationalChampionship,
	"default":    CategoryFriendly,
}

// KFactorEntry is one row of the published weighting table.
type KFactorEntry struct {
	Category Category `json:"category"`
	KFactor  int      `json:"k_factor"`
}

// KFactor returns the weighting for c.
func KFactor(c Category) (int, error) {
	k, ok := kFactors[c]
	if !ok {
		return 0, validationf("unknown category %q", c)
	}
	return k, nil
}

// KFactorTable returns a copy of the weighting table in display order.
func KFactorTable() []KFactorEntry {
	out := make([]KFactorEntry, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, KFactorEntry{Category: c, KFactor: kFactors[c]})
	}
	return out
}

// ParseCategory normalizes s to a Category, accepting legacy names.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if _, ok := kFactors[Category(norm)]; ok {
		return Category(norm), nil
	}
	if c, ok := categoryAliases[norm]; ok {
		return c, nil
	}
	return "", validationf("unknown category %q", s)
}

func (c Category) Valid() bool {
	_, ok := kFactors[c]
	return ok
}

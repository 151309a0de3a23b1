package core

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category is one label from a closed enumeration.
type Category string

const (
	CategoryFood          Category = "食費"
	CategoryTransport     Category = "交通費"
	CategoryEntertainment Category = "娯楽"
	CategoryUtilities     Category = "光熱費"
	CategoryCommunication Category = "通信費"
	CategoryMedical       Category = "医療費"
	CategoryClothing      Category = "衣服"
	CategoryEducation     Category = "教育"
	CategoryOther         Category = "その他"
)

// categories is in declaration order; legends and option lists follow it.
var categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryCommunication,
	CategoryMedical,
	CategoryClothing,
	CategoryEducation,
	CategoryOther,
}

// English aliases accepted on input. Stored records always carry the label.
var categoryAliases = map[string]Category{
	"food":          CategoryFood,
	"transport":     CategoryTransport,
	"entertainment": CategoryEntertainment,
	"utilities":     CategoryUtilities,
	"communication": CategoryCommunication,
	"medical":       CategoryMedical,
	"clothing":      CategoryClothing,
	"education":     CategoryEducation,
	"other":         CategoryOther,
}

// Categories returns the fixed category set in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) String() string {
	return string(c)
}

// IsValid reports whether c is a member of the fixed set.
func (c Category) IsValid() bool {
	return c.Index() >= 0
}

// Index returns the declaration position of c, or -1.
func (c Category) Index() int {
	for i, known := range categories {
		if known == c {
			return i
		}
	}
	return -1
}

// ParseCategory resolves a label or an English alias.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if c := Category(s); c.IsValid() {
		return c, true
	}
	if c, ok := categoryAliases[strings.ToLower(s)]; ok {
		return c, true
	}
	return "", false
}

// SuggestCategory returns the closest known category for a misspelled input.
// Only near misses are suggested: at most two edits, and fewer edits than the
// input has characters.
func SuggestCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	limit := min(2, len([]rune(s))-1)

	best, bestDist := Category(""), limit+1
	for _, c := range categories {
		if d := levenshtein.ComputeDistance(s, string(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	for alias, c := range categoryAliases {
		d := levenshtein.ComputeDistance(lower, alias)
		if d < bestDist || (d == bestDist && best != "" && c.Index() < best.Index()) {
			best, bestDist = c, d
		}
	}
	if best == "" || bestDist > limit {
		return "", false
	}
	return best, true
}

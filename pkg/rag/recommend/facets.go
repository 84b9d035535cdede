package recommend

import (
	"sort"
	"strings"

	"library-assistant-be/internal/entity"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Facet string

const (
	FacetThemes Facet = "themes"
	FacetMoods  Facet = "moods"

	DefaultFacetLimit = 30
)

// TopTags counts title-cased theme or mood tags across books, most frequent
// first. Ties keep first-seen order.
func TopTags(books []*entity.Book, facet Facet, limit int) []string {
	if limit <= 0 {
		limit = DefaultFacetLimit
	}
	caser := cases.Title(language.English)

	counts := make(map[string]int)
	var order []string
	for _, b := range books {
		tags := b.Themes
		if facet == FacetMoods {
			tags = b.MoodTags
		}
		for _, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			tag = caser.String(tag)
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

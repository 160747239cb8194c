package product

import (
	"regexp"
	"strings"

	"github.com/dukerupert/larder/internal/model"
)

type keywordEntry struct {
	keyword  string
	category model.Category
}

// Keyword table for taxonomy tags. Ordered: for each tag the first matching
// keyword wins, so the sequence is a tie-break and must be preserved.
var tagKeywords = []keywordEntry{
	// Meats
	{"meat", model.CategoryMeats},
	{"beef", model.CategoryMeats},
	{"pork", model.CategoryMeats},
	{"chicken", model.CategoryMeats},
	{"poultry", model.CategoryMeats},
	{"fish", model.CategoryMeats},
	{"seafood", model.CategoryMeats},

	// Dairy
	{"dairy", model.CategoryDairy},
	{"milk", model.CategoryDairy},
	{"cheese", model.CategoryDairy},
	{"yogurt", model.CategoryDairy},

	// Produce
	{"fruit", model.CategoryProduce},
	{"vegetable", model.CategoryProduce},
	{"produce", model.CategoryProduce},

	// Frozen
	{"frozen", model.CategoryFrozen},

	// Beverages have no bucket of their own
	{"beverage", model.CategoryOther},

	// Pantry
	{"snack", model.CategoryPantry},
	{"condiment", model.CategoryPantry},
	{"sauce", model.CategoryPantry},
	{"spice", model.CategoryPantry},
	{"seasoning", model.CategoryPantry},
	{"pickled", model.CategoryPantry},
	{"pickle", model.CategoryPantry},
	{"ginger", model.CategoryPantry},
	{"canned", model.CategoryPantry},
	{"jarred", model.CategoryPantry},
	{"preserved", model.CategoryPantry},
	{"pasta", model.CategoryPantry},
	{"rice", model.CategoryPantry},
	{"cereal", model.CategoryPantry},
	{"bread", model.CategoryPantry},
	{"bakery", model.CategoryPantry},
}

// MapTags maps a set of taxonomy tags (e.g. "en:beef") to a storage
// category. Namespace prefixes are stripped and matching is by substring,
// first tag and first table entry winning. Unmatched tags yield
// CategoryOther.
func MapTags(tags []string) model.Category {
	for _, tag := range tags {
		name := strings.ToLower(tag)
		if i := strings.Index(name, ":"); i >= 0 {
			name = name[i+1:]
		}
		for _, entry := range tagKeywords {
			if strings.Contains(name, entry.keyword) {
				return entry.category
			}
		}
	}
	return model.CategoryOther
}

type tagPattern struct {
	re  *regexp.Regexp
	tag string
}

// Fallback tag synthesis for providers with no structured taxonomy.
// Ordered: first pattern to match the brand+title text decides the tag.
var textTagPatterns = []tagPattern{
	{regexp.MustCompile(`sauce|sriracha|ketchup|mustard|mayo|dressing`), "en:condiments"},
	{regexp.MustCompile(`spice|seasoning|pepper|salt|garlic`), "en:spices"},
	{regexp.MustCompile(`snack|chip|cracker|cookie`), "en:snacks"},
	{regexp.MustCompile(`cereal|oat|granola`), "en:cereals"},
	{regexp.MustCompile(`pasta|noodle|spaghetti`), "en:pasta"},
	{regexp.MustCompile(`soup|broth|stock`), "en:soups"},
	{regexp.MustCompile(`rice|grain|quinoa`), "en:grains"},
	{regexp.MustCompile(`oil|vinegar|cooking`), "en:cooking-aids"},
	{regexp.MustCompile(`bean|lentil|chickpea`), "en:legumes"},
}

// TagsFromText derives synthetic taxonomy tags from free-text brand and
// title so the result can feed back into MapTags. No match yields
// ["en:unknown"].
func TagsFromText(brand, title string) []string {
	text := strings.ToLower(brand + " " + title)

	for _, p := range textTagPatterns {
		if p.re.MatchString(text) {
			return []string{p.tag}
		}
	}
	return []string{"en:unknown"}
}

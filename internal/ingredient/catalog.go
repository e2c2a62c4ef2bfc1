// Package ingredient holds the fixed set of selectable ingredients.
package ingredient

import (
	"slices"
	"strings"
)

// Category is a named group of ingredients, sorted alphabetically.
type Category struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

var catalog = build([]Category{
	{Name: "Vegetables", Ingredients: []string{"carrots", "broccoli", "spinach", "kale", "tomatoes", "cucumbers", "bell peppers", "onions", "garlic", "ginger", "potatoes", "sweet potatoes", "zucchini", "mushrooms", "lettuce", "cabbage", "cauliflower", "asparagus", "green beans", "peas", "corn", "eggplant", "beets", "radishes", "celery", "squash", "pumpkin", "artichokes", "leeks", "fennel", "turnips", "rutabaga", "parsnips", "okra", "brussels sprouts"}},
	{Name: "Fruits", Ingredients: []string{"apples", "bananas", "oranges", "grapes", "strawberries", "blueberries", "raspberries", "blackberries", "kiwi", "pineapple", "mango", "peaches", "plums", "cherries", "watermelon", "cantaloupe", "honeydew", "papaya", "pomegranate", "figs", "dates", "passion fruit", "guava", "lychee", "dragon fruit", "star fruit", "persimmons", "cranberries", "apricots", "tangerines", "grapefruit", "lemons", "limes", "coconut", "avocado"}},
	{Name: "Dairy", Ingredients: []string{"milk", "yogurt", "cheese", "butter", "cream", "sour cream", "cream cheese", "cottage cheese", "ricotta", "mozzarella", "cheddar", "parmesan", "feta", "goat cheese", "blue cheese", "brie", "camembert", "gouda"}},
	{Name: "Meat", Ingredients: []string{"beef", "chicken", "pork", "lamb", "turkey", "duck", "goose", "quail", "rabbit", "venison", "elk", "bison", "boar", "ostrich", "emu", "kangaroo", "alligator", "snake", "turtle", "crab", "lobster", "shrimp", "prawns", "clams", "mussels", "scallops", "octopus", "squid", "calamari", "anchovies", "sardines", "mackerel", "herring", "trout", "salmon", "tuna", "cod", "halibut", "sole", "flounder", "catfish"}},
	{Name: "Grains", Ingredients: []string{"bread", "rice", "pasta", "couscous", "quinoa", "bulgur", "barley", "oats", "cornmeal", "polenta", "millet", "farro", "spelt", "teff", "amaranth", "buckwheat", "rye", "wheat", "sorghum", "kamut", "triticale", "wild rice", "brown rice", "white rice", "jasmine rice", "basmati rice", "arborio rice", "sushi rice", "short-grain rice", "long-grain rice"}},
})

// build lowercases and sorts every category in place.
func build(categories []Category) []Category {
	for i := range categories {
		items := categories[i].Ingredients
		for j, item := range items {
			items[j] = strings.ToLower(strings.TrimSpace(item))
		}
		slices.SortFunc(items, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		})
	}
	return categories
}

// ListCategories returns the catalog in its fixed category order
// (Vegetables, Fruits, Dairy, Meat, Grains). The result is a copy.
func ListCategories() []Category {
	out := make([]Category, len(catalog))
	for i, c := range catalog {
		out[i] = Category{Name: c.Name, Ingredients: slices.Clone(c.Ingredients)}
	}
	return out
}

// Names returns the category names in order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, c := range catalog {
		names[i] = c.Name
	}
	return names
}

// ParseOther splits a comma-separated list of free-form ingredients,
// trimming whitespace and dropping empty entries.
func ParseOther(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Merge appends the parsed free-form entries to the selected catalog items.
func Merge(selected []string, other string) []string {
	var out []string
	for _, s := range selected {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return append(out, ParseOther(other)...)
}

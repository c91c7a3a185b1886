package models

import "strings"

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// CategorySummary is a category with its active listing count.
type CategorySummary struct {
	Category
	Count int64 `json:"count"`
}

var Categories = []Category{
	{ID: 1, Name: "Textbooks", Slug: "textbooks", Description: "Buy and sell used textbooks for your courses"},
	{ID: 2, Name: "Electronics", Slug: "electronics", Description: "Laptops, phones, and other tech gadgets"},
	{ID: 3, Name: "Dorm Supplies", Slug: "dorm-supplies", Description: "Everything you need for your dorm room"},
	{ID: 4, Name: "Course Notes", Slug: "course-notes", Description: "Study materials and course notes"},
	{ID: 5, Name: "Bikes", Slug: "bikes", Description: "Bicycles and accessories for campus commuting"},
	{ID: 6, Name: "Accessories", Slug: "accessories", Description: "Fashion accessories and personal items"},
	{ID: 7, Name: "Furniture", Slug: "furniture", Description: "Dorm and apartment furniture"},
	{ID: 8, Name: "Clothing", Slug: "clothing", Description: "New and gently used clothing"},
	{ID: 9, Name: "Event Tickets", Slug: "event-tickets", Description: "Tickets for campus events and activities"},
}

// CategoryBySlug returns the catalogue entry for slug.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// CategorySlug resolves a slug or display name, ignoring case, to the
// catalogue slug.
func CategorySlug(value string) (string, bool) {
	v := strings.TrimSpace(value)
	for _, c := range Categories {
		if strings.EqualFold(c.Slug, v) || strings.EqualFold(c.Name, v) {
			return c.Slug, true
		}
	}
	return "", false
}

// CategorySlugs lists every catalogue slug in display order.
func CategorySlugs() []string {
	slugs := make([]string, len(Categories))
	for i, c := range Categories {
		slugs[i] = c.Slug
	}
	return slugs
}

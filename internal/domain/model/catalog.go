package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidCatalog is returned when a menu cannot be turned into a Catalog.
var ErrInvalidCatalog = errors.New("invalid catalog")

// CatalogError describes which entry of a menu failed validation.
type CatalogError struct {
	Category string
	Item     string
	Reason   string
}

func (e *CatalogError) Error() string {
	if e.Item == "" {
		return fmt.Sprintf("catalog category %q: %s", e.Category, e.Reason)
	}
	return fmt.Sprintf("catalog item %q in %q: %s", e.Item, e.Category, e.Reason)
}

func (e *CatalogError) Unwrap() error { return ErrInvalidCatalog }

// MenuItem is one priced item of a MenuSection.
type MenuItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuSection is the raw input for one category of a Catalog.
type MenuSection struct {
	Category string     `json:"category"`
	Items    []MenuItem `json:"items"`
}

// CatalogItem is a sellable item together with its category and unit price.
type CatalogItem struct {
	Name     string
	Category string
	Price    decimal.Decimal
}

// Catalog is an immutable, ordered category -> item -> price mapping.
// Order is the order of categories, then the order of items inside each category.
type Catalog struct {
	categories []string
	items      []CatalogItem
	itemIndex  map[string]int
	catIndex   map[string]int
}

// NewCatalog validates the sections and builds a Catalog.
// Item names must be unique across categories and prices must be positive.
func NewCatalog(sections []MenuSection) (*Catalog, error) {
	c := &Catalog{
		itemIndex: make(map[string]int),
		catIndex:  make(map[string]int),
	}

	for _, section := range sections {
		if section.Category == "" {
			return nil, &CatalogError{Reason: "empty category name"}
		}
		if _, exists := c.catIndex[section.Category]; exists {
			return nil, &CatalogError{Category: section.Category, Reason: "duplicate category"}
		}
		if len(section.Items) == 0 {
			return nil, &CatalogError{Category: section.Category, Reason: "category has no items"}
		}
		c.catIndex[section.Category] = len(c.categories)
		c.categories = append(c.categories, section.Category)

		for _, item := range section.Items {
			if item.Name == "" {
				return nil, &CatalogError{Category: section.Category, Reason: "empty item name"}
			}
			if !item.Price.IsPositive() {
				return nil, &CatalogError{Category: section.Category, Item: item.Name, Reason: "price must be positive"}
			}
			if _, exists := c.itemIndex[item.Name]; exists {
				return nil, &CatalogError{Category: section.Category, Item: item.Name, Reason: "item listed more than once"}
			}
			c.itemIndex[item.Name] = len(c.items)
			c.items = append(c.items, CatalogItem{
				Name:     item.Name,
				Category: section.Category,
				Price:    item.Price,
			})
		}
	}

	if len(c.items) == 0 {
		return nil, &CatalogError{Reason: "catalog has no items"}
	}

	return c, nil
}

// Len returns the number of items in the flattened catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Item returns the i-th item in catalog order.
func (c *Catalog) Item(i int) CatalogItem {
	return c.items[i]
}

// Items returns a copy of the flattened item list.
func (c *Catalog) Items() []CatalogItem {
	out := make([]CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Categories returns category names in catalog order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Lookup finds an item by name.
func (c *Catalog) Lookup(name string) (CatalogItem, bool) {
	i, ok := c.itemIndex[name]
	if !ok {
		return CatalogItem{}, false
	}
	return c.items[i], true
}

// ItemRank is the position of an item in catalog order.
func (c *Catalog) ItemRank(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.itemIndex[name]
	return i, ok
}

// CategoryRank is the position of a category in catalog order.
func (c *Catalog) CategoryRank(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.catIndex[name]
	return i, ok
}

// Sections converts the catalog back into its menu form.
func (c *Catalog) Sections() []MenuSection {
	sections := make([]MenuSection, 0, len(c.categories))
	for _, cat := range c.categories {
		sections = append(sections, MenuSection{Category: cat})
	}
	for _, item := range c.items {
		i := c.catIndex[item.Category]
		sections[i].Items = append(sections[i].Items, MenuItem{Name: item.Name, Price: item.Price})
	}
	return sections
}

// DefaultMenu is the coffee-shop menu used when no catalog file is configured.
func DefaultMenu() []MenuSection {
	p := decimal.RequireFromString
	return []MenuSection{
		{Category: "Coffee", Items: []MenuItem{
			{Name: "Espresso", Price: p("2.50")},
			{Name: "Latte", Price: p("4.00")},
			{Name: "Cappuccino", Price: p("3.75")},
			{Name: "Americano", Price: p("3.00")},
			{Name: "Mocha", Price: p("4.50")},
		}},
		{Category: "Tea", Items: []MenuItem{
			{Name: "Green Tea", Price: p("2.75")},
			{Name: "Black Tea", Price: p("2.50")},
			{Name: "Herbal Tea", Price: p("3.00")},
			{Name: "Chai Latte", Price: p("4.25")},
		}},
		{Category: "Bakery", Items: []MenuItem{
			{Name: "Croissant", Price: p("3.50")},
			{Name: "Muffin", Price: p("2.75")},
			{Name: "Scone", Price: p("3.00")},
			{Name: "Bagel", Price: p("2.50")},
		}},
		{Category: "Sandwich", Items: []MenuItem{
			{Name: "Ham & Cheese", Price: p("6.50")},
			{Name: "Veggie Wrap", Price: p("7.00")},
			{Name: "Turkey Club", Price: p("7.50")},
		}},
	}
}

// DefaultCatalog builds the Catalog for DefaultMenu.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultMenu())
	if err != nil {
		panic(err)
	}
	return c
}

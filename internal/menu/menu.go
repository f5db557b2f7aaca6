// Package menu holds the restaurant's static catalog. The menu is parsed
// once at startup and passed by reference into every handler; nothing
// mutates it afterwards, so concurrent reads need no locking.
package menu

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	apperrors "github.com/juberthrdzz/vapi-voice-agent/pkg/errors"
)

// Item is a single purchasable menu entry. Price is in cents.
type Item struct {
	ID       string `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category,omitempty"`
}

// menuFile mirrors the on-disk menu.json structure.
type menuFile struct {
	Categories map[string][]Item `json:"categories"`
}

// Menu is the immutable catalog: ordered categories, items in file order
// within each category, and an item_id index for O(1) lookup.
type Menu struct {
	categories []string
	byCategory map[string][]Item
	byID       map[string]Item
}

// Load parses the menu definition at the given path. It is a pure function
// of the file contents: loading the same file twice yields identical menus.
// Call it once at startup and inject the result; a read failure is fatal.
func Load(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Menu from raw JSON. Split from Load so tests can feed
// inline definitions without touching the filesystem.
func Parse(data []byte) (*Menu, error) {
	var mf menuFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if len(mf.Categories) == 0 {
		return nil, fmt.Errorf("parse menu: no categories defined")
	}

	m := &Menu{
		byCategory: make(map[string][]Item, len(mf.Categories)),
		byID:       make(map[string]Item),
	}

	for category, items := range mf.Categories {
		if category == "" {
			return nil, fmt.Errorf("parse menu: empty category name")
		}
		for i, item := range items {
			if item.ID == "" {
				return nil, fmt.Errorf("parse menu: category %q item %d has no item_id", category, i)
			}
			if item.Name == "" {
				return nil, fmt.Errorf("parse menu: item %q has no name", item.ID)
			}
			if item.Price < 0 {
				return nil, fmt.Errorf("parse menu: item %q has negative price %d", item.ID, item.Price)
			}
			if _, dup := m.byID[item.ID]; dup {
				return nil, fmt.Errorf("parse menu: duplicate item_id %q", item.ID)
			}
			item.Category = category
			m.byID[item.ID] = item
			m.byCategory[category] = append(m.byCategory[category], item)
		}
		m.categories = append(m.categories, category)
	}

	// JSON objects carry no ordering, so categories are sorted to keep
	// the exposed order deterministic across loads.
	sort.Strings(m.categories)

	return m, nil
}

// Categories returns the ordered category names.
func (m *Menu) Categories() []string {
	return m.categories
}

// Items returns the items of one category, or CATEGORY_NOT_FOUND.
func (m *Menu) Items(category string) ([]Item, error) {
	items, ok := m.byCategory[category]
	if !ok {
		return nil, apperrors.NotFound("CATEGORY_NOT_FOUND",
			fmt.Sprintf("category %q not found", category))
	}
	return items, nil
}

// Find returns the item with the given ID, or ITEM_NOT_FOUND.
func (m *Menu) Find(itemID string) (Item, error) {
	item, ok := m.byID[itemID]
	if !ok {
		return Item{}, apperrors.NotFound("ITEM_NOT_FOUND",
			fmt.Sprintf("menu item %q not found", itemID))
	}
	return item, nil
}

// ByCategory returns the full category-to-items mapping. Callers must treat
// the returned map and slices as read-only.
func (m *Menu) ByCategory() map[string][]Item {
	return m.byCategory
}

package model

import "time"

// PackingCategory groups packing items. Categories are global, not per trip.
type PackingCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PackingItem is one entry on a trip's packing list. CategoryID is a weak
// reference: deleting the category clears it instead of deleting the item.
type PackingItem struct {
	ID         string    `json:"id"`
	TripID     string    `json:"tripId"`
	CategoryID *string   `json:"categoryId"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	IsPacked   bool      `json:"isPacked"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PackingItemPatch enumerates the packing item fields that may be changed.
// An empty CategoryID removes the item from its category.
type PackingItemPatch struct {
	Name       *string `json:"name,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	IsPacked   *bool   `json:"isPacked,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

func (p PackingItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.IsPacked == nil && p.CategoryID == nil
}

func (p PackingItemPatch) Apply(item *PackingItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.IsPacked != nil {
		item.IsPacked = *p.IsPacked
	}
	if p.CategoryID != nil {
		item.CategoryID = optional(*p.CategoryID)
	}
}

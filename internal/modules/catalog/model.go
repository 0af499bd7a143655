package catalog

import (
	"fmt"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var (
	ErrMenuItemNotFound = fmt.Errorf("menu item %w", domain.ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", domain.ErrNotFound)
	ErrCategoryExists   = fmt.Errorf("%w: category name already used", domain.ErrConflict)
)

// CreateMenuItemRequest holds the data for a new menu item.
type CreateMenuItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Price       int    `json:"price" validate:"gte=1"`
	Category    string `json:"category"`
	Available   *bool  `json:"available"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// UpdateMenuItemRequest is a partial update; nil fields are left unchanged.
type UpdateMenuItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Price       *int    `json:"price" validate:"omitempty,gte=1"`
	Category    *string `json:"category"`
	Available   *bool   `json:"available"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func (u UpdateMenuItemRequest) apply(m *domain.MenuItem) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Price != nil {
		m.Price = *u.Price
	}
	if u.Category != nil {
		m.Category = *u.Category
	}
	if u.Available != nil {
		m.Available = *u.Available
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.Image != nil {
		m.Image = *u.Image
	}
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

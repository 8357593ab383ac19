package domain

import "strings"

// CategoryStats holds denormalized counters for a category.
// Maintained best-effort by ProductService/PostService as separate writes.
type CategoryStats struct {
	ProductCount int `json:"product_count"`
	PostCount    int `json:"post_count"`
}

// Category is a node in the catalog hierarchy.
//
// Ancestors, Level and Path are materialized from the parent chain:
//
//	ancestors = parent.ancestors + [parent.id]
//	level     = parent.level + 1
//	path      = parent.path + "/" + slug
//
// Root categories have no parent, an empty ancestor list, level 0 and
// path == slug. CategoryService recomputes all three whenever Parent or Slug
// changes, and cascades the recomputation to descendants so the materialized
// fields never disagree with the live parent chain.
type Category struct {
	Base
	Name         string        `json:"name" validate:"required,min=1,max=80"`
	Slug         string        `json:"slug"` // Unique, derived from Name.
	Description  string        `json:"description,omitempty" validate:"omitempty,max=1000"`
	ImageURL     string        `json:"image_url,omitempty" validate:"omitempty,url"`
	Parent       string        `json:"parent,omitempty"` // Weak reference; empty for roots.
	Ancestors    []string      `json:"ancestors"`
	Level        int           `json:"level"`
	Path         string        `json:"path"`
	DisplayOrder int           `json:"display_order"`
	IsActive     bool          `json:"is_active"`
	Stats        CategoryStats `json:"stats"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c *Category) IsRoot() bool {
	return c.Parent == ""
}

// HasAncestor reports whether categoryID appears in the materialized
// ancestor list.
func (c *Category) HasAncestor(categoryID string) bool {
	return containsID(c.Ancestors, categoryID)
}

// DeriveFromParent recomputes Parent, Ancestors, Level and Path from the
// given parent. Pass nil for a root category.
func (c *Category) DeriveFromParent(parent *Category) {
	if parent == nil {
		c.Parent = ""
		c.Ancestors = []string{}
		c.Level = 0
		c.Path = c.Slug
		return
	}

	c.Parent = parent.ID
	c.Ancestors = append(append([]string{}, parent.Ancestors...), parent.ID)
	c.Level = parent.Level + 1
	c.Path = parent.Path + "/" + c.Slug
}

// PathSegments splits the materialized path into its slug components.
func (c *Category) PathSegments() []string {
	if c.Path == "" {
		return nil
	}
	return strings.Split(c.Path, "/")
}

// CategoryNode is a category with its attached children, as produced by
// CategoryService.Tree.
type CategoryNode struct {
	*Category
	Children []*CategoryNode `json:"children,omitempty"`
}

package domain

// TagStats holds denormalized usage counters for a tag.
// ProductCount and PostCount are bumped best-effort by the owning services;
// TotalUsage is always their sum, recomputed on every save.
type TagStats struct {
	ProductCount int `json:"product_count"`
	PostCount    int `json:"post_count"`
	TotalUsage   int `json:"total_usage"`
}

// Tag labels products and posts across the platform.
// Slug is the canonical identity; clients transform for display:
// "summer-sale" → "Summer Sale".
type Tag struct {
	Base
	Name        string   `json:"name" validate:"required,min=1,max=50"`
	Slug        string   `json:"slug"` // Unique, derived from Name.
	Description string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       string   `json:"color,omitempty" validate:"omitempty,max=20"`
	IsActive    bool     `json:"is_active"`
	Stats       TagStats `json:"stats"`
}

// Recalculate overwrites the derived stat fields from their inputs.
// Invoked by TagService immediately before every persist.
func (t *Tag) Recalculate() {
	t.Stats.TotalUsage = t.Stats.ProductCount + t.Stats.PostCount
}

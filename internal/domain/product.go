package domain

import "time"

// ProductStatus represents where a product sits in its listing lifecycle.
type ProductStatus string

// Product statuses.
const (
	ProductStatusDraft        ProductStatus = "draft"
	ProductStatusActive       ProductStatus = "active"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Variant is a purchasable variation of a product (size, color, ...).
// Each variant carries its own SKU, price and stock. Variants are owned by
// the product and have no independent lifecycle.
type Variant struct {
	SKU        string            `json:"sku" validate:"required,max=64"`
	Name       string            `json:"name" validate:"required,max=100"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Price      int64             `json:"price" validate:"gte=0"` // Minor currency units.
	Stock      int               `json:"stock" validate:"gte=0"`
	IsActive   bool              `json:"is_active"`
}

// Promotion is a time-boxed discount window.
type Promotion struct {
	Name            string    `json:"name,omitempty"`
	DiscountPercent int       `json:"discount_percent" validate:"gte=1,lte=100"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// Covers reports whether the promotion window includes the given instant.
func (p *Promotion) Covers(now time.Time) bool {
	return !now.Before(p.StartsAt) && now.Before(p.EndsAt)
}

// ProductFlags holds derived boolean markers.
type ProductFlags struct {
	// IsOnSale is true iff an active promotion window covers now, or the
	// compare-at price exceeds the base price.
	IsOnSale   bool `json:"is_on_sale"`
	IsFeatured bool `json:"is_featured"`
}

// InventoryEntry records one stock movement. Append-only; entries are never
// mutated after insert.
type InventoryEntry struct {
	At     time.Time `json:"at"`
	Change int       `json:"change"` // Positive restock, negative sale/adjustment.
	Reason string    `json:"reason,omitempty"`
	SKU    string    `json:"sku,omitempty"` // Variant SKU, empty for the base product.
}

// PriceEntry records one price change. Append-only.
type PriceEntry struct {
	At       time.Time `json:"at"`
	OldPrice int64     `json:"old_price"`
	NewPrice int64     `json:"new_price"`
	SKU      string    `json:"sku,omitempty"`
}

// SaleEntry records one completed sale. Append-only.
type SaleEntry struct {
	At       time.Time `json:"at"`
	OrderID  string    `json:"order_id"`
	Quantity int       `json:"quantity"`
	SKU      string    `json:"sku,omitempty"`
}

// ProductStats holds denormalized aggregates over sales and reviews.
type ProductStats struct {
	TotalSold     int     `json:"total_sold"`
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

// Product is a sellable catalog item.
type Product struct {
	Base
	Name           string           `json:"name" validate:"required,min=1,max=200"`
	Slug           string           `json:"slug"`                           // Unique, derived from Name.
	SKU            string           `json:"sku" validate:"required,max=64"` // Unique.
	Description    string           `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category       string           `json:"category,omitempty"` // Weak reference.
	Tags           []string         `json:"tags,omitempty"`     // Weak references (tag IDs).
	ImageURLs      []string         `json:"image_urls,omitempty" validate:"dive,url"`
	Currency       string           `json:"currency" validate:"required,len=3"`
	BasePrice      int64            `json:"base_price" validate:"gte=0"` // Minor currency units.
	CompareAtPrice int64            `json:"compare_at_price,omitempty" validate:"gte=0"`
	Stock          int              `json:"stock" validate:"gte=0"`
	Variants       []Variant        `json:"variants,omitempty" validate:"dive"`
	HasVariants    bool             `json:"has_variants"` // Derived: len(Variants) > 0.
	Flags          ProductFlags     `json:"flags"`
	Promotion      *Promotion       `json:"promotion,omitempty"`
	Status         ProductStatus    `json:"status" validate:"required,oneof=draft active out_of_stock discontinued"`
	Stats          ProductStats     `json:"stats"`
	InventoryLog   []InventoryEntry `json:"inventory_log,omitempty"`
	PriceHistory   []PriceEntry     `json:"price_history,omitempty"`
	SalesHistory   []SaleEntry      `json:"sales_history,omitempty"`
}

// Recalculate overwrites every derived field from the current nested
// collections. Pure and total: empty collections yield zero values. Invoked
// by ProductService immediately before every persist.
func (p *Product) Recalculate(now time.Time) {
	p.HasVariants = len(p.Variants) > 0

	p.Flags.IsOnSale = p.CompareAtPrice > p.BasePrice
	if p.Promotion != nil && p.Promotion.Covers(now) {
		p.Flags.IsOnSale = true
	}

	total := 0
	for _, s := range p.SalesHistory {
		total += s.Quantity
	}
	p.Stats.TotalSold = total
}

// Variant finds a variant by SKU, or nil.
func (p *Product) Variant(sku string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}

// TotalStock sums base stock with every variant's stock.
func (p *Product) TotalStock() int {
	total := p.Stock
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// EffectivePrice returns the price a buyer pays right now, with any active
// promotion applied.
func (p *Product) EffectivePrice(now time.Time) int64 {
	if p.Promotion != nil && p.Promotion.Covers(now) {
		discount := p.BasePrice * int64(p.Promotion.DiscountPercent) / 100
		return p.BasePrice - discount
	}
	return p.BasePrice
}

// RecordInventoryChange appends a stock movement to the audit trail and
// applies it to the matching stock counter.
func (p *Product) RecordInventoryChange(now time.Time, sku string, change int, reason string) {
	p.InventoryLog = append(p.InventoryLog, InventoryEntry{
		At:     now,
		Change: change,
		Reason: reason,
		SKU:    sku,
	})

	if sku == "" {
		p.Stock += change
		return
	}
	if v := p.Variant(sku); v != nil {
		v.Stock += change
	}
}

// RecordPriceChange appends a price change to the audit trail and applies
// the new price.
func (p *Product) RecordPriceChange(now time.Time, sku string, newPrice int64) {
	if sku == "" {
		p.PriceHistory = append(p.PriceHistory, PriceEntry{At: now, OldPrice: p.BasePrice, NewPrice: newPrice})
		p.BasePrice = newPrice
		return
	}
	if v := p.Variant(sku); v != nil {
		p.PriceHistory = append(p.PriceHistory, PriceEntry{At: now, OldPrice: v.Price, NewPrice: newPrice, SKU: sku})
		v.Price = newPrice
	}
}

// RecordSale appends a completed sale to the audit trail.
// Stock movement is recorded separately via RecordInventoryChange.
func (p *Product) RecordSale(now time.Time, orderID, sku string, quantity int) {
	p.SalesHistory = append(p.SalesHistory, SaleEntry{
		At:       now,
		OrderID:  orderID,
		Quantity: quantity,
		SKU:      sku,
	})
}

// VariantSKUsUnique reports whether every variant SKU is distinct, returning
// the first duplicate found.
func (p *Product) VariantSKUsUnique() (string, bool) {
	seen := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		if seen[v.SKU] {
			return v.SKU, false
		}
		seen[v.SKU] = true
	}
	return "", true
}

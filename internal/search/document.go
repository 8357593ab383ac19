// Package search provides full-text search over the catalog using Bleve.
// Products and posts share one index with type discrimination, so the
// storefront's search box answers both in a single query.
package search

import (
	"time"

	"github.com/storefrontapp/storefront-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeProduct DocType = "product"
	DocTypePost    DocType = "post"
)

// Document is the unified structure for the Bleve index.
//
// Category and tag slugs are denormalized into each document so filtered
// queries never touch the document store.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary searchable text. Product: name, post: title.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Product-specific fields.
	SKU   string `json:"sku,omitempty"`
	Price int64  `json:"price,omitempty"` // Minor currency units.

	// Post-specific fields.
	Author string `json:"author,omitempty"` // Display name, denormalized.

	// Shared filter fields.
	Status       string   `json:"status"`
	CategorySlug string   `json:"category_slug,omitempty"`
	Tags         []string `json:"tags,omitempty"` // Tag slugs.

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names, but the index mapping declares
// lowercase names, so conversion is explicit.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"status":     d.Status,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.SKU != "" {
		m["sku"] = d.SKU
	}
	if d.Price > 0 {
		m["price"] = d.Price
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.CategorySlug != "" {
		m["category_slug"] = d.CategorySlug
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// ProductDocument converts a product to its index document.
// categorySlug and tagSlugs are denormalized by the caller; the search
// package does not depend on the store.
func ProductDocument(p *domain.Product, categorySlug string, tagSlugs []string) *Document {
	return &Document{
		ID:           p.ID,
		Type:         DocTypeProduct,
		Name:         p.Name,
		Description:  p.Description,
		SKU:          p.SKU,
		Price:        p.EffectivePrice(time.Now()),
		Status:       string(p.Status),
		CategorySlug: categorySlug,
		Tags:         tagSlugs,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
}

// PostDocument converts a post to its index document.
func PostDocument(p *domain.Post, authorName, categorySlug string, tagSlugs []string) *Document {
	return &Document{
		ID:           p.ID,
		Type:         DocTypePost,
		Name:         p.Title,
		Description:  p.Excerpt,
		Author:       authorName,
		Status:       string(p.Status),
		CategorySlug: categorySlug,
		Tags:         tagSlugs,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
}

// Package store provides the Badger-backed document store for all domain
// entities.
//
// Each entity type gets a typed Entity handle with declared secondary
// indexes. Unique indexes (email, username, slug, sku, order number, referral
// code) are enforced inside the same Badger transaction as the primary write;
// the index engine is the authoritative race resolver, any pre-checks in the
// services are optimizations only. Writes are atomic per document; nothing
// here spans documents transactionally.
package store

import (
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/storefrontapp/storefront-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users      *Entity[domain.User]
	Categories *Entity[domain.Category]
	Tags       *Entity[domain.Tag]
	Products   *Entity[domain.Product]
	Posts      *Entity[domain.Post]
	Orders     *Entity[domain.Order]
	Reviews    *Entity[domain.Review]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable("open database", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initCategories()
	store.initTags()
	store.initProducts()
	store.initPosts()
	store.initOrders()
	store.initReviews()

	if logger != nil {
		logger.Info("badger database opened", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}

// normalizeEmail lowercases an email address so the unique index is
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initUsers initializes the Users entity on the store.
// Email and username indexes are case-insensitive; the referral index is
// sparse (users without a code produce no index entry).
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithUniqueIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		).
		WithUniqueIndexTransform("username",
			func(u *domain.User) []string {
				return []string{strings.ToLower(u.Username)}
			},
			strings.ToLower,
		).
		WithUniqueIndex("referral_code", func(u *domain.User) []string {
			if u.ReferralCode == "" {
				return nil
			}
			return []string{u.ReferralCode}
		}).
		WithIndex("role", func(u *domain.User) []string {
			return []string{string(u.Role)}
		}).
		WithIndex("status", func(u *domain.User) []string {
			return []string{string(u.Status)}
		})
}

// initCategories initializes the Categories entity on the store.
// The ancestor index is multi-valued: one entry per materialized ancestor, so
// subtree queries never walk the whole collection.
func (s *Store) initCategories() {
	s.Categories = NewEntity[domain.Category](s, "category:").
		WithUniqueIndex("slug", func(c *domain.Category) []string {
			return []string{c.Slug}
		}).
		WithIndex("parent", func(c *domain.Category) []string {
			if c.Parent == "" {
				return []string{"root"}
			}
			return []string{c.Parent}
		}).
		WithIndex("ancestor", func(c *domain.Category) []string {
			return c.Ancestors
		})
}

// initTags initializes the Tags entity on the store.
func (s *Store) initTags() {
	s.Tags = NewEntity[domain.Tag](s, "tag:").
		WithUniqueIndex("slug", func(t *domain.Tag) []string {
			return []string{t.Slug}
		})
}

// initProducts initializes the Products entity on the store.
// Variant SKUs share the sku index with the base SKU, which makes a variant
// SKU colliding with any other product's SKU a duplicate error too.
func (s *Store) initProducts() {
	s.Products = NewEntity[domain.Product](s, "product:").
		WithUniqueIndex("slug", func(p *domain.Product) []string {
			return []string{p.Slug}
		}).
		WithUniqueIndex("sku", func(p *domain.Product) []string {
			skus := []string{p.SKU}
			for _, v := range p.Variants {
				skus = append(skus, v.SKU)
			}
			return skus
		}).
		WithIndex("category", func(p *domain.Product) []string {
			if p.Category == "" {
				return nil
			}
			return []string{p.Category}
		}).
		WithIndex("tag", func(p *domain.Product) []string {
			return p.Tags
		}).
		WithIndex("status", func(p *domain.Product) []string {
			return []string{string(p.Status)}
		})
}

// initPosts initializes the Posts entity on the store.
func (s *Store) initPosts() {
	s.Posts = NewEntity[domain.Post](s, "post:").
		WithUniqueIndex("slug", func(p *domain.Post) []string {
			return []string{p.Slug}
		}).
		WithIndex("author", func(p *domain.Post) []string {
			return []string{p.Author}
		}).
		WithIndex("category", func(p *domain.Post) []string {
			if p.Category == "" {
				return nil
			}
			return []string{p.Category}
		}).
		WithIndex("tag", func(p *domain.Post) []string {
			return p.Tags
		}).
		WithIndex("status", func(p *domain.Post) []string {
			return []string{string(p.Status)}
		})
}

// initOrders initializes the Orders entity on the store.
func (s *Store) initOrders() {
	s.Orders = NewEntity[domain.Order](s, "order:").
		WithUniqueIndex("order_number", func(o *domain.Order) []string {
			return []string{o.OrderNumber}
		}).
		WithIndex("user", func(o *domain.Order) []string {
			return []string{o.User}
		}).
		WithIndex("status", func(o *domain.Order) []string {
			return []string{string(o.Status)}
		})
}

// initReviews initializes the Reviews entity on the store.
// The target index is a composite of type and ID, so all reviews of one
// product (or post, user, order) share an index prefix.
func (s *Store) initReviews() {
	s.Reviews = NewEntity[domain.Review](s, "review:").
		WithIndex("author", func(r *domain.Review) []string {
			return []string{r.Author}
		}).
		WithIndex("target", func(r *domain.Review) []string {
			return []string{TargetKey(r.Target)}
		})
}

// TargetKey builds the composite index key for a review target.
func TargetKey(t domain.ReviewTarget) string {
	return string(t.Type) + ":" + t.ID
}

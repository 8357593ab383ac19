// Package main provides a tool to seed the database with demo catalog data.
//
// It creates a handful of users, a small category tree, tags, products,
// posts, orders and reviews so stats, search and the API have something to
// chew on during development.
//
// Usage:
//
//	DATA_PATH=~/storefront go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/storefrontapp/storefront-server/internal/domain"
	"github.com/storefrontapp/storefront-server/internal/service"
	"github.com/storefrontapp/storefront-server/internal/store"
	"github.com/storefrontapp/storefront-server/internal/validation"
)

var orderCount = flag.Int("orders", 10, "Number of demo orders to place")

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/storefront")
	}

	st, err := store.New(filepath.Join(dataPath, "documents"), nil)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	deps := service.Deps{
		Store:     st,
		Validator: validation.New(),
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}

	ctx := context.Background()
	if err := seed(ctx, deps); err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Println("Seed complete.")
}

func seed(ctx context.Context, deps service.Deps) error {
	users := service.NewUserService(deps)
	categories := service.NewCategoryService(deps)
	tags := service.NewTagService(deps)
	products := service.NewProductService(deps)
	posts := service.NewPostService(deps)
	orders := service.NewOrderService(deps)
	reviews := service.NewReviewService(deps)

	var userIDs []string
	for _, name := range []string{"ada", "grace", "linus", "margaret"} {
		u, err := users.Create(ctx, service.CreateUserParams{
			Email:    name + "@example.com",
			Username: name,
			Password: "correct-horse-battery",
			Profile:  domain.Profile{DisplayName: name},
		})
		if err != nil {
			return fmt.Errorf("create user %s: %w", name, err)
		}
		userIDs = append(userIDs, u.ID)
	}
	fmt.Printf("Created %d users\n", len(userIDs))

	electronics, err := categories.Create(ctx, service.CreateCategoryParams{Name: "Electronics"})
	if err != nil {
		return err
	}
	laptops, err := categories.Create(ctx, service.CreateCategoryParams{
		Name:   "Laptops",
		Parent: electronics.ID,
	})
	if err != nil {
		return err
	}
	audio, err := categories.Create(ctx, service.CreateCategoryParams{
		Name:   "Audio",
		Parent: electronics.ID,
	})
	if err != nil {
		return err
	}
	fmt.Println("Created category tree")

	var tagIDs []string
	for _, name := range []string{"New Arrival", "Sale", "Editor's Pick"} {
		tg, err := tags.Create(ctx, service.CreateTagParams{Name: name})
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tg.ID)
	}

	type productSeed struct {
		name     string
		sku      string
		category string
		price    int64
		stock    int
	}
	seeds := []productSeed{
		{"Featherweight Laptop 13", "FW13-BASE", laptops.ID, 129900, 25},
		{"Featherweight Laptop 16", "FW16-BASE", laptops.ID, 189900, 12},
		{"Studio Headphones", "SH-100", audio.ID, 24900, 60},
		{"Desk Speaker Pair", "DSP-2", audio.ID, 17900, 40},
	}
	var productIDs []string
	for _, ps := range seeds {
		p, err := products.Create(ctx, service.CreateProductParams{
			Name:      ps.name,
			SKU:       ps.sku,
			Category:  ps.category,
			Tags:      tagIDs[:1+rand.Intn(len(tagIDs))],
			Currency:  "USD",
			BasePrice: ps.price,
			Stock:     ps.stock,
			Status:    domain.ProductStatusActive,
		})
		if err != nil {
			return fmt.Errorf("create product %s: %w", ps.sku, err)
		}
		productIDs = append(productIDs, p.ID)
	}
	fmt.Printf("Created %d products\n", len(productIDs))

	for i, title := range []string{"Choosing your first laptop", "Why open-back headphones"} {
		_, err := posts.Create(ctx, service.CreatePostParams{
			Title:    title,
			Content:  "A longer body would go here. This is demo content for development.",
			Author:   userIDs[i%len(userIDs)],
			Category: electronics.ID,
			Tags:     tagIDs[:1],
			Status:   domain.PostStatusPublished,
		})
		if err != nil {
			return fmt.Errorf("create post %q: %w", title, err)
		}
	}
	fmt.Println("Created posts")

	for i := 0; i < *orderCount; i++ {
		_, err := orders.Create(ctx, service.CreateOrderParams{
			User: userIDs[rand.Intn(len(userIDs))],
			Items: []service.OrderItemParams{
				{Product: productIDs[rand.Intn(len(productIDs))], Quantity: 1 + rand.Intn(2)},
			},
			Currency: "USD",
			ShippingAddress: &domain.Address{
				Line1:      "1 Demo Street",
				City:       "Springfield",
				PostalCode: "62704",
				Country:    "US",
			},
		})
		if err != nil {
			// Stock can legitimately run out while seeding.
			fmt.Printf("Skipped order: %v\n", err)
		}
	}
	fmt.Printf("Placed up to %d orders\n", *orderCount)

	for i, pid := range productIDs {
		_, err := reviews.Create(ctx, service.CreateReviewParams{
			Author:  userIDs[(i+1)%len(userIDs)],
			Target:  domain.ReviewTarget{Type: domain.TargetProduct, ID: pid},
			Rating:  3 + rand.Intn(3),
			Content: "Demo review content written by the seed tool.",
		})
		if err != nil {
			return fmt.Errorf("create review: %w", err)
		}
	}
	fmt.Println("Created reviews")

	return nil
}

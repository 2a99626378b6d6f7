// cmd/seed/main.go

// Seeds the sample catalog into Firestore. No-op when the product
// collection already has documents, so it is safe to run on deploy.
package main

import (
	"context"
	"log"

	fs "littleshop/internal/adapters/out/firestore"
	"littleshop/internal/domain/product"
	"littleshop/internal/platform/di"
)

var sampleProducts = []product.Product{
	{ID: "1", Name: "Cute Floral Dress", Description: "Light and airy floral dress for girls.", Price: 25.99, ImageURL: "https://placehold.co/300x300/e0f2f7/000000?text=Floral+Dress", Category: "Girl Clothes"},
	{ID: "2", Name: "Sparkle Gold Earring", Description: "Small 18k gold earrings, perfect for daily wear.", Price: 120.00, ImageURL: "https://placehold.co/300x300/fef3c7/000000?text=Gold+Earring", Category: "Small Gold"},
	{ID: "3", Name: "Crispy Seaweed Snack", Description: "Delicious and healthy roasted seaweed snack.", Price: 3.50, ImageURL: "https://placehold.co/300x300/d1fae5/000000?text=Seaweed+Snack", Category: "Snacks"},
	{ID: "4", Name: "Princess Gown", Description: "Elegant gown for special occasions.", Price: 45.00, ImageURL: "https://placehold.co/300x300/fce7f3/000000?text=Princess+Gown", Category: "Girl Clothes"},
	{ID: "5", Name: "Mini Gold Bar (1g)", Description: "1 gram pure gold bar, investment grade.", Price: 75.00, ImageURL: "https://placehold.co/300x300/fef3c7/000000?text=Mini+Gold+Bar", Category: "Small Gold"},
	{ID: "6", Name: "Spicy Potato Chips", Description: "Crunchy potato chips with a kick.", Price: 2.75, ImageURL: "https://placehold.co/300x300/ffe4e6/000000?text=Spicy+Chips", Category: "Snacks"},
}

func main() {
	ctx := context.Background()

	inf, err := di.NewInfra(ctx)
	if err != nil {
		log.Fatalf("[seed] infra init: %v", err)
	}
	defer inf.Close()

	repo := fs.NewProductRepositoryFS(inf.Firestore, inf.AppID)

	existing, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("[seed] list products: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("[seed] catalog already has %d products, nothing to do", len(existing))
		return
	}

	for _, p := range sampleProducts {
		p := p
		if err := repo.Upsert(ctx, &p); err != nil {
			log.Fatalf("[seed] upsert product id=%s: %v", p.ID, err)
		}
	}

	log.Printf("[seed] seeded %d products appId=%s", len(sampleProducts), inf.AppID)
}

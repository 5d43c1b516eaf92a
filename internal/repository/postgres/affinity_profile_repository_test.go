//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"stylShop/business/personalize"
	"stylShop/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAffinityProfileRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewAffinityProfileRepository(db)
	ctx := context.Background()

	const userID = 424242
	t.Cleanup(func() { _ = repo.DeleteProfile(ctx, userID) })

	got, err := repo.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile on empty table: %v", err)
	}
	if got != nil {
		t.Fatalf("GetProfile = %+v, want nil", got)
	}

	p := personalize.NewAffinityProfile()
	p.TagWeight["denim"] = 2.985
	p.PriceTierWeight["high"] = -2.985
	p.SelectedCategories = []string{"casual"}
	p.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.SaveProfile(ctx, userID, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	p.TagWeight["denim"] = 5
	if err := repo.SaveProfile(ctx, userID, p); err != nil {
		t.Fatalf("SaveProfile upsert: %v", err)
	}

	got, err = repo.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Weight(personalize.FacetTag, "denim") != 5 {
		t.Errorf("tag weight = %v, want 5", got.Weight(personalize.FacetTag, "denim"))
	}
	if got.Weight(personalize.FacetPriceTier, "high") != -2.985 {
		t.Errorf("price tier weight = %v", got.Weight(personalize.FacetPriceTier, "high"))
	}
	if len(got.SelectedCategories) != 1 || got.SelectedCategories[0] != "casual" {
		t.Errorf("selected categories = %v", got.SelectedCategories)
	}
}

func TestProductRepository_FindActive(t *testing.T) {
	db := openTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	products := []*domain.Product{
		{Title: "Denim jacket", Image: "a.jpg", Brand: "Acme", Category: "casual", PriceTier: domain.PriceTierMid, Price: 80, Stock: 3, IsActive: true},
		{Title: "Wool coat", Image: "b.jpg", Brand: "North", Category: "formal", PriceTier: domain.PriceTierHigh, Price: 300, Stock: 1, IsActive: true},
		{Title: "Sold out tee", Image: "c.jpg", Brand: "Acme", Category: "casual", PriceTier: domain.PriceTierLow, Price: 15, Stock: 0, IsActive: true},
	}
	for _, p := range products {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		id := p.ID
		t.Cleanup(func() { _ = repo.Delete(ctx, id) })
	}

	got, err := repo.FindActive(ctx, []string{"casual"}, 0)
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	found := false
	for _, p := range got {
		if p.ID == products[2].ID {
			t.Error("out-of-stock product listed")
		}
		if p.Category != "casual" {
			t.Errorf("category filter ignored: %s", p.Category)
		}
		if p.ID == products[0].ID {
			found = true
		}
	}
	if !found {
		t.Error("active casual product missing")
	}
}

package domain

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     title       TEXT NOT NULL,
//     subtitle    TEXT,
//     image       TEXT NOT NULL,
//     brand       TEXT NOT NULL,
//     category    TEXT NOT NULL,
//     price_tier  TEXT NOT NULL,
//     price       NUMERIC NOT NULL,
//     tags        JSONB DEFAULT '[]',
//     colors      JSONB DEFAULT '[]',
//     stock       INT DEFAULT 0,
//     is_active   BOOLEAN DEFAULT TRUE,
//     created_at  TIMESTAMPTZ DEFAULT NOW(),
//     updated_at  TIMESTAMPTZ DEFAULT NOW()
// );

var ErrProductNotFound = errors.New("product not found")

var ProductCategories = []string{"casual", "formal", "streetwear", "seasonal", "special"}

type Product struct {
	ID        uint64                      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string                      `gorm:"column:title;type:text;not null" json:"title"`
	Subtitle  string                      `gorm:"column:subtitle;type:text" json:"subtitle"`
	Image     string                      `gorm:"column:image;type:text;not null" json:"image"`
	Brand     string                      `gorm:"column:brand;type:text;not null" json:"brand"`
	Category  string                      `gorm:"column:category;type:text;not null" json:"category"`
	PriceTier PriceTier                   `gorm:"column:price_tier;type:text;not null" json:"price_tier"`
	Price     float64                     `gorm:"column:price;type:numeric" json:"price"`
	Tags      datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	Colors    datatypes.JSONSlice[string] `gorm:"column:colors;type:jsonb" json:"colors"`
	Stock     int                         `gorm:"column:stock;default:0" json:"stock"`
	IsActive  bool                        `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time                   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Candidate projects a catalog product into the ranker's view. IDs are rendered in base 10.
func (p Product) Candidate() CandidateItem {
	return CandidateItem{
		ID:        strconv.FormatUint(p.ID, 10),
		Category:  p.Category,
		Brand:     p.Brand,
		Tags:      append([]string(nil), p.Tags...),
		Colors:    append([]string(nil), p.Colors...),
		PriceTier: p.PriceTier,
	}
}

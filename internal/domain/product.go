package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url,omitempty"`
	Category      string          `json:"category,omitempty"`
	AverageRating float64         `json:"average_rating"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductFilter narrows a catalog listing. Nil bounds are open.
type ProductFilter struct {
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
	MaxRating *float64
}

// Review is a user's rating of a product. A user has at most one review per
// product; submitting again replaces it.
type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductDetail is a product together with its reviews, newest first.
type ProductDetail struct {
	Product
	Reviews []Review `json:"reviews"`
}

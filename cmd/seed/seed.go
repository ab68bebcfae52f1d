package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/database"
)

type productDef struct {
	name        string
	description string
	category    string
	price       string
}

type couponDef struct {
	code     string
	discount string
}

var demoProducts = []productDef{
	{"Wireless Bluetooth Headphones", "Noise-cancelling over-ear headphones with 30-hour battery life.", "electronics", "79.99"},
	{"USB-C Hub Adapter", "7-in-1 hub with HDMI 4K output, 3x USB 3.0 ports and an SD card reader.", "electronics", "34.99"},
	{"Mechanical Keyboard", "RGB backlit keyboard with tactile switches and a detachable wrist rest.", "electronics", "89.99"},
	{"Classic Cotton T-Shirt", "Everyday tee made from organic cotton with a relaxed fit.", "clothing", "24.99"},
	{"Rain Jacket", "Waterproof breathable jacket with sealed seams and an adjustable hood.", "clothing", "79.99"},
	{"Coffee Maker", "12-cup programmable drip brewer with a thermal carafe.", "home-kitchen", "49.99"},
	{"Cast Iron Skillet", "Pre-seasoned 12-inch skillet, oven safe to 500F.", "home-kitchen", "34.99"},
	{"Yoga Mat Premium", "Non-slip 6mm exercise mat with alignment markings.", "sports-outdoors", "29.99"},
	{"Water Bottle Insulated", "Double-wall bottle that keeps drinks cold for 24 hours.", "sports-outdoors", "24.99"},
	{"The Go Programming Language", "Guide to Go covering the fundamentals and advanced topics.", "books", "39.99"},
	{"Designing Data-Intensive Apps", "The big ideas behind reliable, scalable and maintainable data systems.", "books", "44.99"},
}

var demoCoupons = []couponDef{
	{"WELCOME10", "10"},
	{"SAVE25", "25"},
	{"HALFOFF", "50"},
}

// seed inserts the demo catalog and coupons. It is safe to run repeatedly:
// products are matched by name and coupons by code.
func seed(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	inserted := 0
	for _, p := range demoProducts {
		tag, err := db.Exec(ctx,
			`INSERT INTO products (name, description, category, price)
			 SELECT $1, $2, $3, $4
			 WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`,
			p.name, p.description, p.category, decimal.RequireFromString(p.price),
		)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.name, err)
		}
		inserted += int(tag.RowsAffected())
	}
	logger.Info("products seeded", slog.Int("inserted", inserted), slog.Int("total", len(demoProducts)))

	for _, c := range demoCoupons {
		if _, err := db.Exec(ctx,
			`INSERT INTO coupons (code, discount_percentage, active)
			 VALUES ($1, $2, TRUE)
			 ON CONFLICT (code) DO UPDATE
			   SET discount_percentage = EXCLUDED.discount_percentage, active = TRUE`,
			c.code, decimal.RequireFromString(c.discount),
		); err != nil {
			return fmt.Errorf("seed coupon %q: %w", c.code, err)
		}
	}
	logger.Info("coupons seeded", slog.Int("count", len(demoCoupons)))
	return nil
}

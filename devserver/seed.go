package devserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oakmart/shopfront/core"
)

// Demo account credentials created by Seed.
const (
	DemoEmail    = "demo@shopfront.dev"
	DemoPassword = "demo"
)

var demoCatalog = []core.Product{
	{
		ID:          "p-espresso-cup",
		Name:        "Stoneware Espresso Cup",
		Description: "Hand-glazed 90ml espresso cup, dishwasher safe.",
		Price:       14.50,
		Stock:       120,
		Image:       "/images/espresso-cup.jpg",
	},
	{
		ID:          "p-pour-over",
		Name:        "Glass Pour-Over Brewer",
		Description: "Borosilicate 500ml brewer with walnut collar.",
		Price:       32.00,
		Stock:       45,
		Image:       "/images/pour-over.jpg",
	},
	{
		ID:          "p-burr-grinder",
		Name:        "Manual Burr Grinder",
		Description: "Steel conical burrs, 40 click-stop grind settings.",
		Price:       68.99,
		Stock:       30,
		Image:       "/images/burr-grinder.jpg",
	},
	{
		ID:          "p-kettle",
		Name:        "Gooseneck Kettle",
		Description: "1L stovetop kettle with thermometer lid.",
		Price:       54.00,
		Stock:       25,
		Image:       "/images/kettle.jpg",
	},
	{
		ID:          "p-beans-house",
		Name:        "House Blend Beans 250g",
		Description: "Medium roast, chocolate and hazelnut notes.",
		Price:       11.25,
		Stock:       200,
		Image:       "/images/beans-house.jpg",
	},
	{
		ID:          "p-beans-single",
		Name:        "Single Origin Beans 250g",
		Description: "Washed Ethiopian, floral and citrus.",
		Price:       15.75,
		Stock:       80,
		Image:       "/images/beans-single.jpg",
	},
	{
		ID:          "p-scale",
		Name:        "Brew Scale",
		Description: "0.1g precision scale with brew timer.",
		Price:       42.50,
		Stock:       0,
		Image:       "/images/scale.jpg",
	},
}

// Seed loads the demo catalog and the demo account into the store. It is
// idempotent: products are upserted and an existing demo user is left as-is.
func Seed(ctx context.Context, store Store) error {
	for _, p := range demoCatalog {
		if err := store.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("devserver: seeding product %s: %w", p.ID, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("devserver: hashing demo password: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        DemoEmail,
		Name:         "Demo Shopper",
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil
		}
		return fmt.Errorf("devserver: seeding demo user: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"log/slog"

	"solarflow/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is shared by every seeded account
const DemoPassword = "password123"

// Seed inserts the demo staff accounts and starter inventory. Rows are matched
// by email and item name, so running it twice changes nothing.
func Seed(ctx context.Context, db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := []model.User{
		{Name: "John Smith", Email: "admin@solarflow.com", Role: model.RoleAdmin},
		{Name: "Priya Singh", Email: "priya@solarflow.com", Role: model.RoleAgent},
		{Name: "Rohit Sharma", Email: "rohit@solarflow.com", Role: model.RoleAgent},
	}
	items := []model.InventoryItem{
		{ItemName: "Solar Panel (320W)", Description: strPtr("High efficiency monocrystalline solar panel"), Quantity: 25, Threshold: 50, UnitPrice: price(15000)},
		{ItemName: "Inverter (5KW)", Description: strPtr("Grid-tie solar inverter"), Quantity: 8, Threshold: 15, UnitPrice: price(45000)},
		{ItemName: "Lithium Battery (100Ah)", Description: strPtr("Deep cycle lithium ion battery"), Quantity: 12, Threshold: 20, UnitPrice: price(25000)},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			u.Password = string(hash)
			res := tx.Where(model.User{Email: u.Email}).FirstOrCreate(&u)
			if res.Error != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, res.Error)
			}
			if res.RowsAffected > 0 {
				slog.Info("seeded user", "email", u.Email, "role", u.Role)
			}
		}
		for _, item := range items {
			res := tx.Where(model.InventoryItem{ItemName: item.ItemName}).FirstOrCreate(&item)
			if res.Error != nil {
				return fmt.Errorf("seed inventory %s: %w", item.ItemName, res.Error)
			}
			if res.RowsAffected > 0 {
				slog.Info("seeded inventory item", "item", item.ItemName)
			}
		}
		return nil
	})
}

func strPtr(s string) *string { return &s }

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

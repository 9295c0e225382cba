package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/chatkey"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/config"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/db"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type seedListing struct {
	Title       string
	Description string
	Price       uint
	OwnerUID    string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(&model.Listing{}, &model.Message{}, &model.Notification{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&model.Listing{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("listings already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	listings := []seedListing{
		{"Apartamento T2 no centro", "Two-bedroom flat near the market square.", 750, "seed-owner-1"},
		{"Casa com quintal", "House with a backyard, pets welcome.", 1200, "seed-owner-2"},
		{"Estudio mobilado", "Furnished studio, utilities included.", 500, "seed-owner-1"},
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, sl := range listings {
			listing := model.Listing{
				Title:       sl.Title,
				Description: sl.Description,
				Price:       sl.Price,
				OwnerUID:    sl.OwnerUID,
			}
			if err := tx.Create(&listing).Error; err != nil {
				return err
			}
			if i == 0 {
				if err := seedConversation(tx, listing); err != nil {
					return err
				}
			}
		}
		log.Printf("seeded %d listings", len(listings))
		return nil
	})
}

// seedConversation writes a small two-way exchange so the conversation list
// and unread count have something to show in local development.
func seedConversation(tx *gorm.DB, listing model.Listing) error {
	tenant := "seed-tenant-1"
	key, err := chatkey.Derive(listing.ID, listing.OwnerUID, tenant)
	if err != nil {
		return err
	}
	msgs := []model.Message{
		{ConversationKey: key, ListingID: listing.ID, SenderUID: tenant, ReceiverUID: listing.OwnerUID, Body: "Is the flat still available?", Read: true},
		{ConversationKey: key, ListingID: listing.ID, SenderUID: listing.OwnerUID, ReceiverUID: tenant, Body: "Yes, you can visit this week."},
	}
	for i := range msgs {
		if err := tx.Create(&msgs[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

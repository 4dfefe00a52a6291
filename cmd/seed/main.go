package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/model"
	"marketplace/internal/repository"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	Products []seedProduct
}

type seedProduct struct {
	Name        string
	Description string
	Price       string
	Available   bool
}

var seedData = []seedUser{
	{
		Name:     "Admin",
		Email:    "admin@marketplace.local",
		Password: "admin-change-me",
		Role:     model.RoleAdmin,
	},
	{
		Name:     "Sample Seller",
		Email:    "seller@marketplace.local",
		Password: "seller-change-me",
		Role:     model.RoleUser,
		Products: []seedProduct{
			{Name: "Walnut desk", Description: "Solid walnut writing desk", Price: "349.99", Available: true},
			{Name: "Desk lamp", Description: "Adjustable brass desk lamp", Price: "59.50", Available: true},
			{Name: "Ergonomic chair", Description: "", Price: "225.00", Available: false},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Product{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	products := repository.NewProductRepository(gormDB)

	for _, su := range seedData {
		existing, err := users.FindByEmail(ctx, su.Email)
		if err != nil && err != gorm.ErrRecordNotFound {
			log.Fatalf("Failed to check user %s: %v", su.Email, err)
		}
		if existing != nil {
			log.Printf("User %s already exists, skipping", su.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", su.Email, err)
		}

		user := &model.User{
			Name:         su.Name,
			Email:        su.Email,
			PasswordHash: string(hash),
			Role:         su.Role,
			IsActive:     true,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Email, err)
		}
		log.Printf("Created user %s (%s)", su.Email, su.Role)

		for _, sp := range su.Products {
			price, err := decimal.NewFromString(sp.Price)
			if err != nil {
				log.Fatalf("Invalid seed price %q: %v", sp.Price, err)
			}
			product := &model.Product{
				Name:          sp.Name,
				Description:   sp.Description,
				Price:         price,
				IsAvailable:   sp.Available,
				CreatorUserID: user.ID,
			}
			if err := products.Create(ctx, product); err != nil {
				log.Fatalf("Failed to create product %s: %v", sp.Name, err)
			}
			log.Printf("Created product %s for %s", sp.Name, su.Email)
		}
	}

	log.Println("Seed completed")
}

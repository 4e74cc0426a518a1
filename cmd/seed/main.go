package main

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/sceneyard/sceneyard/internal/config"
	"github.com/sceneyard/sceneyard/internal/database"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/sceneyard/sceneyard/internal/utils"
)

// Starter catalog for a fresh deployment.
var seedCategories = []string{
	"Retro Wave",
	"Lower Thirds",
	"Logo Reveals",
	"Glitch",
	"Titles",
}

func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		log.Fatal("Missing environment variable: ADMIN_EMAIL")
	}

	var admin models.User
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error == nil {
		if admin.Role != models.RoleAdmin {
			if err := database.DB.Model(&admin).Update("role", models.RoleAdmin).Error; err != nil {
				log.Fatal("Failed to promote admin:", err)
			}
			log.Println("Promoted existing user to admin:", admin.Email)
		} else {
			log.Println("Admin user already exists:", admin.Email)
		}
	} else {
		admin = models.User{
			ID:       uuid.New(),
			Email:    adminEmail,
			Name:     "Admin",
			Role:     models.RoleAdmin,
			Provider: "seed",
		}
		if err := database.DB.Create(&admin).Error; err != nil {
			log.Fatal("Failed to create admin:", err)
		}
		log.Println("Admin user created:", admin.Email)
	}

	for _, name := range seedCategories {
		slug := utils.Slugify(name)

		var existing models.Category
		if err := database.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
			continue
		}

		category := models.Category{
			ID:   uuid.New(),
			Name: name,
			Slug: slug,
		}
		if err := database.DB.Create(&category).Error; err != nil {
			log.Fatal("Failed to seed category:", err)
		}
		log.Println("Seeded category:", name)
	}

	log.Println("Seed completed")
}

// Command recount recomputes every category's denormalized post counter
// from the published blogs actually in the database. Run it after manual
// data surgery or if the live counters ever drift.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/l2h-tech/blog-backend/database"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	store := storage.NewDatabaseStore(db)

	categories, err := store.ListCategories("all")
	if err != nil {
		log.Fatal("Failed to list categories:", err)
	}

	var fixed int
	for _, category := range categories {
		count, err := store.CountPublishedBlogsInCategory(category.ID)
		if err != nil {
			log.Fatalf("Failed to count blogs for category %q: %v", category.Name, err)
		}
		if category.PostCount == int(count) {
			continue
		}

		log.Printf("🔄 %q: %d -> %d", category.Name, category.PostCount, count)
		if err := store.SetPostCount(category.ID, int(count)); err != nil {
			log.Fatalf("Failed to update category %q: %v", category.Name, err)
		}
		fixed++
	}

	log.Printf("✅ Done: %d of %d categories corrected", fixed, len(categories))
}

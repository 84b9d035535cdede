package main

import (
	"log"

	"library-assistant-be/internal/config"
	"library-assistant-be/internal/model"
	"library-assistant-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production")
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Enabling pgvector...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: pgvector extension unavailable: %v", err)
	}

	log.Println("Step 2: Running AutoMigrate for the catalogue tables...")
	if err := db.AutoMigrate(&model.Book{}, &model.BookCopy{}, &model.UserPreference{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Creating search indexes...")
	postMigrationSQL := []string{
		// cosine ordering on the all-minilm embedding
		`CREATE INDEX IF NOT EXISTS idx_books_embedding_hnsw ON books USING hnsw (embedding vector_cosine_ops);`,
		`CREATE INDEX IF NOT EXISTS idx_book_copies_status ON book_copies (book_id, status);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Catalogue schema is up to date.")
}

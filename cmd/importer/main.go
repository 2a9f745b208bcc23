package main

import (
	"context"
	"flag"
	"log"
	"os"

	"joulina-backend/internal/config"
	"joulina-backend/internal/db"
	"joulina-backend/internal/importer"
	"joulina-backend/internal/repository/catalog"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to JSON catalog export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewJSONImporter(f, catalog.NewPostgres(pool))
	imported, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d products: %v", imported, err)
	}
	log.Printf("imported %d products", imported)
}

// Command catalog-seed loads a YAML exercise catalog into MongoDB. Exercises
// whose name already exists are skipped, so it is safe to run repeatedly.
//
// Usage: catalog-seed [-file catalog.yaml] [-config .]
package main

import (
	"alcyxob/fitness-tracker/internal/catalog"
	"alcyxob/fitness-tracker/internal/config"
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/logger"
	"alcyxob/fitness-tracker/internal/repository/mongo"
	"alcyxob/fitness-tracker/internal/service"
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	file := flag.String("file", "", "catalog YAML file (defaults to the bundled catalog)")
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var entries []domain.Exercise
	if *file != "" {
		entries, err = catalog.LoadFile(*file)
		if err != nil {
			log.Fatal("Could not read catalog", "file", *file, "error", err)
		}
	} else {
		entries = catalog.Default()
	}

	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("Could not connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongo.DisconnectDB(client); err != nil {
			log.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	db := client.Database(cfg.Database.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	mongo.EnsureExerciseIndexes(ctx, db.Collection("exercises"))

	exercises := service.NewExerciseService(mongo.NewMongoExerciseRepository(db), cfg.Catalog.Limit, log)
	created, skipped, err := exercises.SeedCatalog(ctx, entries)
	if err != nil {
		log.Fatal("Seeding stopped", "created", created, "skipped", skipped, "error", err)
	}
	log.Info("Catalog seeded", "entries", len(entries), "created", created, "skipped", skipped)
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/silosight/internal/config"
	"github.com/agenthands/silosight/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Falling back to defaults and environment", cfgPath, err)
		cfg = config.Default()
	}

	ctx := context.Background()
	srv, err := server.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	defer func() {
		if err := srv.Close(ctx); err != nil {
			log.Printf("Failed to close index connection: %v", err)
		}
	}()

	r := srv.SetupRouter()

	log.Printf("Starting server on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}

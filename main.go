package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kamilio/ai-studio/api"
	"github.com/kamilio/ai-studio/archive"
	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/storage"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	backend, err := newBackendFromEnv()
	if err != nil {
		log.Fatalf("failed to initialize storage backend: %v", err)
	}
	store := storage.NewStore(backend)

	client := gateway.NewClientFromEnv()

	archiver, err := archive.NewArchiverFromEnv(context.Background(), store)
	if err != nil {
		log.Fatalf("failed to initialize snapshot archive: %v", err)
	}

	r := api.NewRouter(api.NewServer(store, client, archiver))
	log.Printf("Starting studio server on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// newBackendFromEnv picks Redis when REDIS_ADDR is set and falls back to the
// local file backend otherwise.
func newBackendFromEnv() (storage.Backend, error) {
	if os.Getenv("REDIS_ADDR") != "" {
		backend, err := storage.NewRedisBackendFromEnv()
		if err != nil {
			return nil, err
		}
		return backend, nil
	}

	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = config.DefaultDataDir
	}
	backend, err := storage.NewFileBackend(dir)
	if err != nil {
		return nil, err
	}
	return backend, nil
}

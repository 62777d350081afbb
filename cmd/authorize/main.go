package main

// One-time interactive authorization:
//   go run ./cmd/authorize
//
// Performs the authorization-code exchange for the storage provider and
// writes the credential file the poller refreshes from.

import (
	"context"
	"log"
	"os"

	"invoice-courier/internal/creds"
	"invoice-courier/internal/shared/config"
)

func main() {
	cfg := config.Load()

	if cfg.DriveClientID == "" || cfg.DriveSecret == "" {
		log.Printf("DRIVE_CLIENT_ID and DRIVE_CLIENT_SECRET are required")
		os.Exit(1)
	}

	store := creds.New(cfg.DriveClientID, cfg.DriveSecret, cfg.TokenFile)
	if err := store.Authorize(context.Background(), os.Stdin, os.Stdout); err != nil {
		log.Printf("authorization failed: %v", err)
		os.Exit(1)
	}
}

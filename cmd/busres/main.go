// Command busres is the interactive bus reservation console.
package main

import (
	"context"
	"log"
	"os"

	"github.com/iliyamo/bus-seat-reservation/internal/app"
	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/console"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	adminHash, err := cfg.AdminHash()
	if err != nil {
		log.Fatalf("admin password: %v", err)
	}

	ctx := context.Background()
	svc, closeStore, err := app.NewService(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	if err := console.New(svc, os.Stdin, os.Stdout, adminHash).Run(ctx); err != nil {
		closeStore()
		os.Exit(1)
	}
}

// Package app wires the configured store into a ready-to-use reservation
// service.  It is shared by the console and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/database"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/service"
	"github.com/iliyamo/bus-seat-reservation/internal/store"
)

// OpenStore builds the store selected by cfg.StoreDriver.  The returned
// close function releases the database handle, if any.
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := database.Open(cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Printf("store: using mysql %s/%s", cfg.DB.Host, cfg.DB.Name)
		return store.NewMySQLStore(db), func() { _ = db.Close() }, nil
	default:
		log.Printf("store: using file %s", cfg.StorePath)
		return store.NewFileStore(cfg.StorePath), func() {}, nil
	}
}

// NewService opens the store, hydrates a service from it and enables
// booking events when configured.  Extra options are applied after the
// defaults.
func NewService(ctx context.Context, cfg config.Config, opts ...service.Option) (*service.Service, func(), error) {
	st, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.EventsEnabled {
		opts = append([]service.Option{service.WithPublisher(queue.NewPublisher(cfg.AMQPURL))}, opts...)
	}
	svc := service.New(st, opts...)
	repairs, err := svc.Open(ctx)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("load routes: %w", err)
	}
	if len(repairs) > 0 {
		log.Printf("store: repaired %d route(s); saving corrected counts", len(repairs))
		if err := svc.Flush(ctx); err != nil {
			log.Printf("store: %v", err)
		}
	}
	log.Printf("loaded %d route(s)", len(svc.Routes()))
	return svc, closeStore, nil
}

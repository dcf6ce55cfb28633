// Package app assembles every module over one database handle.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tair/shop-inventory/events"
	"github.com/tair/shop-inventory/internal/config"
	"github.com/tair/shop-inventory/internal/customer"
	"github.com/tair/shop-inventory/internal/inventory"
	"github.com/tair/shop-inventory/internal/repair"
	"github.com/tair/shop-inventory/internal/report"
	"github.com/tair/shop-inventory/internal/sales"
	"github.com/tair/shop-inventory/internal/todo"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/metrics"
)

// App is the fully wired shop engine.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Tx      *database.Transactor
	Bus     *events.Bus
	Metrics *metrics.Metrics

	Inventory *inventory.Module
	Todo      *todo.Module
	Customers *customer.Module
	Sales     *sales.Module
	Repairs   *repair.Module
	Reports   *report.Module
}

// NewApp builds the App and subscribes the task listener when
// auto-reconcile is enabled.
func NewApp(
	cfg *config.Config,
	db *gorm.DB,
	tx *database.Transactor,
	bus *events.Bus,
	m *metrics.Metrics,
	inv *inventory.Module,
	tasks *todo.Module,
	customers *customer.Module,
	s *sales.Module,
	repairs *repair.Module,
	reports *report.Module,
) *App {
	if cfg.Policy.AutoReconcile {
		tasks.Listener.Register(bus)
	}
	return &App{
		Config:    cfg,
		DB:        db,
		Tx:        tx,
		Bus:       bus,
		Metrics:   m,
		Inventory: inv,
		Todo:      tasks,
		Customers: customers,
		Sales:     s,
		Repairs:   repairs,
		Reports:   reports,
	}
}

// Models lists every table of the application.
func Models() []any {
	var models []any
	models = append(models, inventory.Models()...)
	models = append(models, customer.Models()...)
	models = append(models, sales.Models()...)
	models = append(models, repair.Models()...)
	models = append(models, todo.Models()...)
	return models
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info(ctx).Int("tables", len(Models())).Msg("Database migrated")
	return nil
}

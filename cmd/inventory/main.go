package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tair/shop-inventory/internal/app"
	"github.com/tair/shop-inventory/internal/config"
	"github.com/tair/shop-inventory/internal/report/export"
	"github.com/tair/shop-inventory/internal/report/usecase/query"
	"github.com/tair/shop-inventory/pkg/database"
	"github.com/tair/shop-inventory/pkg/logger"
	"github.com/tair/shop-inventory/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.App.Name, cfg.IsDevelopment())
	logger.SetLevel(cfg.Logger.Level)

	logger.Logger.Info().
		Str("service", cfg.App.Name).
		Str("environment", cfg.App.Env).
		Str("db_driver", cfg.Database.Driver).
		Msg("Starting shop inventory")

	if err := start(cfg); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Shop inventory run failed")
	}
}

func start(cfg *config.Config) error {
	tp, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to flush traces")
		}
	}()

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Migrate(ctx, db); err != nil {
		return err
	}

	a, err := app.InitializeApp(cfg, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return run(ctx, a)
}

func run(ctx context.Context, a *app.App) error {
	created, err := a.Todo.Reconcile.Handle(ctx)
	if err != nil {
		return err
	}

	low, err := a.Inventory.ListLowStock.Handle(ctx)
	if err != nil {
		return err
	}
	for _, p := range low {
		logger.Warn(ctx).
			Uint("product_id", p.ID).
			Str("name", p.Name).
			Int("store", p.StoreQuantity).
			Int("warehouse", p.WarehouseQuantity).
			Int("threshold", p.ReorderThreshold).
			Msg("Low stock")
	}

	high, err := a.Todo.HighPriority.Handle(ctx)
	if err != nil {
		return err
	}

	dash, err := a.Reports.Dashboard.Handle(ctx)
	if err != nil {
		return err
	}
	logger.Info(ctx).
		Int("products", dash.ProductCount).
		Int("low_stock", dash.LowStockCount).
		Int("tasks_created", len(created)).
		Int("high_priority_tasks", len(high)).
		Str("today_sales", dash.TodaySales.StringFixed(2)).
		Str("month_revenue", dash.MonthRevenue.StringFixed(2)).
		Msg("Inventory summary")

	if dir := a.Config.Reports.ExportDir; dir != "" {
		return exportReports(ctx, a, dir)
	}
	return nil
}

func exportReports(ctx context.Context, a *app.App, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	inv, err := a.Reports.Inventory.Handle(ctx)
	if err != nil {
		return err
	}
	breakdown, err := a.Reports.Breakdown.Handle(ctx)
	if err != nil {
		return err
	}

	files := map[string]export.Table{
		"inventory.csv": inv.Table(),
		"breakdown.csv": query.BreakdownTable(breakdown),
	}
	for name, table := range files {
		path := filepath.Join(dir, name)
		if err := export.WriteCSVFile(path, table); err != nil {
			return err
		}
		logger.Info(ctx).Str("path", path).Int("rows", len(table.Rows)).Msg("Report exported")
	}
	return nil
}

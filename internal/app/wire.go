//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/shop-inventory/internal/config"
)

// InitializeApp wires the application over an open database.
func InitializeApp(cfg *config.Config, db *gorm.DB) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}

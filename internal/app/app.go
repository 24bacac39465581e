// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/feedbot/config"
	"github.com/Conte777/feedbot/internal/domain"
	"github.com/Conte777/feedbot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, i18n, telegram bot, http)
		infrastructure.Module,

		// Domain (feed business logic)
		domain.Module,
	)
}

// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Conte777/feedbot/internal/infrastructure/http"
	"github.com/Conte777/feedbot/internal/infrastructure/i18n"
	"github.com/Conte777/feedbot/internal/infrastructure/logger"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
	"github.com/Conte777/feedbot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	i18n.Module,
	telegram.Module,
	http.Module,
)

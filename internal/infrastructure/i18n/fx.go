package i18n

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/feedbot/config"
)

// Module provides message catalogs for fx dependency injection
var Module = fx.Module("i18n",
	fx.Provide(LoadEmbedded),
	fx.Provide(provideLocalizer),
)

// provideLocalizer picks the bot language from config
func provideLocalizer(b *Bundle, cfg *config.I18nConfig, logger zerolog.Logger) *Localizer {
	l := b.Localizer(cfg.Language)
	logger.Info().
		Str("requested", cfg.Language).
		Str("language", l.Language()).
		Strs("available", b.Locales()).
		Msg("Message catalog loaded")
	return l
}

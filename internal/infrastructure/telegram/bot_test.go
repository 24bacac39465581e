package telegram

import (
	"context"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
)

type countingObserver struct {
	panics int
}

func (o *countingObserver) RecordPanic() {
	o.panics++
}

func TestRecoverer_SwallowsPanic(t *testing.T) {
	observer := &countingObserver{}
	handler := Recoverer(observer, zerolog.Nop())(func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		handler(context.Background(), nil, &models.Update{ID: 1})
	})
	assert.Equal(t, 1, observer.panics)
}

func TestRecoverer_NilMetricsObserver(t *testing.T) {
	var m *metrics.Metrics
	handler := Recoverer(m, zerolog.Nop())(func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		handler(context.Background(), nil, &models.Update{ID: 3})
	})
}

func TestRecoverer_PassesThrough(t *testing.T) {
	called := false
	handler := Recoverer(nil, zerolog.Nop())(func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
		called = true
	})

	handler(context.Background(), nil, &models.Update{ID: 2})
	assert.True(t, called)
}

func TestBot_DefaultHandlerDelegates(t *testing.T) {
	b := &Bot{logger: zerolog.Nop()}

	// no fallback registered yet
	assert.NotPanics(t, func() {
		b.defaultHandler(context.Background(), nil, &models.Update{})
	})

	var got int64
	b.SetDefaultHandler(func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
		got = update.ID
	})
	b.defaultHandler(context.Background(), nil, &models.Update{ID: 7})
	assert.Equal(t, int64(7), got)
}

func TestNewBot_RequiresToken(t *testing.T) {
	_, err := NewBot("", nil, zerolog.Nop())
	assert.Error(t, err)
}

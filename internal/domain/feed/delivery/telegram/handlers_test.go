package telegram

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/feedbot/internal/domain/feed/deps"
	"github.com/Conte777/feedbot/internal/domain/feed/entities"
	"github.com/Conte777/feedbot/internal/domain/feed/filter"
	"github.com/Conte777/feedbot/internal/domain/feed/repository/kafka"
	"github.com/Conte777/feedbot/internal/domain/feed/repository/memory"
	"github.com/Conte777/feedbot/internal/domain/feed/usecase/business"
	"github.com/Conte777/feedbot/internal/infrastructure/i18n"
	"github.com/Conte777/feedbot/internal/infrastructure/metrics"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*tgbot.SendMessageParams
	err  error
}

func (s *fakeSender) SendMessage(_ context.Context, params *tgbot.SendMessageParams) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, params)
	return &models.Message{}, s.err
}

func (s *fakeSender) last(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)
	return s.sent[len(s.sent)-1].Text
}

type fakeRegistrar struct {
	params *tgbot.SetMyCommandsParams
	err    error
}

func (r *fakeRegistrar) SetMyCommands(_ context.Context, params *tgbot.SetMyCommandsParams) (bool, error) {
	r.params = params
	return r.err == nil, r.err
}

type fixture struct {
	handlers *Handlers
	sender   *fakeSender
	store    deps.Store
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, store deps.Store) *fixture {
	t.Helper()

	bundle, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	translator := bundle.Localizer("en")

	m := metrics.NewMetrics(prometheus.NewRegistry())
	uc := business.NewUseCase(store, kafka.NopProducer{}, translator, m, zerolog.Nop())
	sender := &fakeSender{}

	return &fixture{
		handlers: NewHandlers(uc, sender, translator, m, zerolog.Nop()),
		sender:   sender,
		store:    store,
		metrics:  m,
	}
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			Text: text,
			From: &models.User{ID: 1001, Username: "alice", FirstName: "Alice"},
			Chat: models.Chat{ID: 1001},
		},
	}
}

func TestHandlers_AddAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewStore())

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add @news"))
	assert.Equal(t, "Channel @news has been added to your feed.", f.sender.last(t))
	assert.Equal(t, int64(1001), f.sender.sent[0].ChatID)

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add @news"))
	assert.Equal(t, "You have already added this channel.", f.sender.last(t))

	f.handlers.HandleDelete(ctx, nil, textUpdate("/del @news"))
	assert.Equal(t, "Channel @news has been deleted from your feed.", f.sender.last(t))

	f.handlers.HandleDelete(ctx, nil, textUpdate("/del @news"))
	assert.Equal(t, "Channel @news is not in your subscriptions.", f.sender.last(t))

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CommandsTotal.WithLabelValues("add", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.CommandsTotal.WithLabelValues("del", "success")))
}

func TestHandlers_ArgumentsAreJoined(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewStore())

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add@feedbot @news  digest"))
	assert.Equal(t, "Channel @newsdigest has been added to your feed.", f.sender.last(t))

	channel, err := f.store.FindChannel(ctx, filter.ChannelKey{Title: filter.Eq("@newsdigest")})
	require.NoError(t, err)
	assert.NotNil(t, channel)
}

func TestHandlers_ValidationReplies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewStore())

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add"))
	assert.Equal(t, "You didn't specify channel_name.", f.sender.last(t))

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add not_a_channel"))
	assert.Equal(t, "Channel name should start with '@' symbol. \nPlease try again.", f.sender.last(t))

	subs, err := f.store.FindSubscriptions(ctx, filter.SubscriptionCriteria{})
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestHandlers_PrefixRouteWithLongerWord(t *testing.T) {
	f := newFixture(t, memory.NewStore())

	f.handlers.HandleDelete(context.Background(), nil, textUpdate("/delete @news"))
	assert.Equal(t, "Unknown command. Use /help to get usage reference.", f.sender.last(t))
}

func TestHandlers_StartHelpList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, memory.NewStore())

	f.handlers.HandleStart(ctx, nil, textUpdate("/start"))
	assert.Equal(t, "Hello, Alice!\nFor usage reference please use /help command.", f.sender.last(t))

	f.handlers.HandleHelp(ctx, nil, textUpdate("/help"))
	assert.Contains(t, f.sender.last(t), "/add @channel_name")

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add @news"))
	f.handlers.HandleList(ctx, nil, textUpdate("/list"))
	assert.Equal(t, "Your channels:\n@news", f.sender.last(t))
}

func TestHandlers_StoreFailureRepliesGenerically(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &brokenStore{Store: memory.NewStore()})
	var logs bytes.Buffer
	f.handlers.logger = zerolog.New(&logs)

	f.handlers.HandleAdd(ctx, nil, textUpdate("/add @news"))
	assert.Equal(t, "Something went wrong. Please try again later.", f.sender.last(t))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CommandsTotal.WithLabelValues("add", "error")))

	assert.Contains(t, logs.String(), `"command":"add"`)
	assert.Contains(t, logs.String(), `"error_type":"internal"`)
	assert.Contains(t, logs.String(), "connection reset")
}

func TestHandlers_CommandSuffixes(t *testing.T) {
	ctx := context.Background()

	t.Run("start with payload", func(t *testing.T) {
		f := newFixture(t, memory.NewStore())
		f.handlers.HandleStart(ctx, nil, textUpdate("/start ref_42"))
		assert.Equal(t, "Hello, Alice!\nFor usage reference please use /help command.", f.sender.last(t))

		user, err := f.store.FindUser(ctx, filter.UserKey{TgID: filter.Eq(int64(1001))})
		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("start addressed to bot", func(t *testing.T) {
		f := newFixture(t, memory.NewStore())
		f.handlers.HandleStart(ctx, nil, textUpdate("/start@feedbot"))
		assert.Equal(t, "Hello, Alice!\nFor usage reference please use /help command.", f.sender.last(t))
	})

	t.Run("help and list addressed to bot", func(t *testing.T) {
		f := newFixture(t, memory.NewStore())
		f.handlers.HandleHelp(ctx, nil, textUpdate("/help@feedbot"))
		assert.Contains(t, f.sender.last(t), "/add @channel_name")

		f.handlers.HandleAdd(ctx, nil, textUpdate("/add @news"))
		f.handlers.HandleList(ctx, nil, textUpdate("/list@feedbot"))
		assert.Equal(t, "Your channels:\n@news", f.sender.last(t))
	})

	t.Run("longer word", func(t *testing.T) {
		f := newFixture(t, memory.NewStore())
		f.handlers.HandleStart(ctx, nil, textUpdate("/startle"))
		assert.Equal(t, "Unknown command. Use /help to get usage reference.", f.sender.last(t))
		f.handlers.HandleList(ctx, nil, textUpdate("/listing"))
		assert.Equal(t, "Unknown command. Use /help to get usage reference.", f.sender.last(t))
		assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.CommandsTotal.WithLabelValues("start", "success")))
	})
}

func TestHandlers_IgnoresUpdatesWithoutMessage(t *testing.T) {
	f := newFixture(t, memory.NewStore())

	f.handlers.HandleAdd(context.Background(), nil, &models.Update{ID: 1})
	f.handlers.HandleUnknown(context.Background(), nil, &models.Update{ID: 2})
	assert.Empty(t, f.sender.sent)
}

func TestHandlers_SendFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, memory.NewStore())
	f.sender.err = errors.New("network down")

	assert.NotPanics(t, func() {
		f.handlers.HandleHelp(context.Background(), nil, textUpdate("/help"))
	})
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		name string
		args []string
	}{
		{text: "/add @news", name: "add", args: []string{"@news"}},
		{text: "/del@feedbot @a b", name: "del", args: []string{"@a", "b"}},
		{text: "/list", name: "list", args: []string{}},
		{text: "hello", name: "", args: nil},
		{text: "", name: "", args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, args := parseCommand(tt.text)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestRouter_RegisterMenu(t *testing.T) {
	f := newFixture(t, memory.NewStore())
	router := NewRouter(f.handlers, zerolog.Nop())

	registrar := &fakeRegistrar{}
	require.NoError(t, router.RegisterMenu(context.Background(), registrar))
	require.NotNil(t, registrar.params)
	require.Len(t, registrar.params.Commands, 5)
	assert.Equal(t, "start", registrar.params.Commands[0].Command)
	assert.Equal(t, "del", registrar.params.Commands[3].Command)

	registrar.err = errors.New("unauthorized")
	assert.Error(t, router.RegisterMenu(context.Background(), registrar))
}

// brokenStore fails every channel lookup
type brokenStore struct {
	deps.Store
}

func (s *brokenStore) WithinTransaction(ctx context.Context, fn func(tx deps.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx deps.Store) error {
		return fn(&brokenStore{Store: tx})
	})
}

func (s *brokenStore) FindChannel(context.Context, filter.ChannelKey) (*entities.Channel, error) {
	return nil, errors.New("connection reset")
}

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "ru"}, b.Locales())
	assert.True(t, b.Has("ru", "channel_deleted"))
	assert.False(t, b.Has("ru", "no_such_key"))
}

func TestLocalizer_English(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	l := b.Localizer("en")
	assert.Equal(t, "en", l.Language())
	assert.Equal(t, "Channel @news has been added to your feed.", l.Text("channel_have_added", "@news"))
	assert.Equal(t, "You have already added this channel.", l.Text("you_already_add_this_channel"))
	assert.Equal(t, "Hello, Ann!\nFor usage reference please use /help command.", l.Text("start_msg_text", "Ann", "help"))
}

func TestLocalizer_Russian(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	l := b.Localizer("RU")
	assert.Equal(t, "ru", l.Language())
	assert.Equal(t, "Канал @news добавлен в вашу рассылку.", l.Text("channel_have_added", "@news"))
}

func TestLocalizer_FallsBackToBase(t *testing.T) {
	b, err := LoadEmbedded()
	require.NoError(t, err)

	for _, lang := range []string{"", "de", "not a language"} {
		l := b.Localizer(lang)
		assert.Equal(t, "en", l.Language(), "lang %q", lang)
	}
}

func TestLoadFromFS_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		want  string
	}{
		{
			name:  "no files",
			files: fstest.MapFS{},
			want:  "no catalog files found",
		},
		{
			name: "missing base locale",
			files: fstest.MapFS{
				"locales/ru.yaml": {Data: []byte("locale: ru\nmessages:\n  a: b\n")},
			},
			want: "base locale en is not defined",
		},
		{
			name: "missing key",
			files: fstest.MapFS{
				"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  a: A\n  b: B\n")},
				"locales/ru.yaml": {Data: []byte("locale: ru\nmessages:\n  a: А\n")},
			},
			want: `missing key "b"`,
		},
		{
			name: "blank locale",
			files: fstest.MapFS{
				"locales/en.yaml": {Data: []byte("messages:\n  a: A\n")},
			},
			want: "locale is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFS(tt.files)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

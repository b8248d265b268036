package i18n

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurida/helpline/internal/logging"
	"github.com/aurida/helpline/pkg/domain"
)

func TestCatalogsParse(t *testing.T) {
	tr, err := New(logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tr)
}

func TestCatalogsCoverSameKeys(t *testing.T) {
	tr, err := New(logging.NewNop())
	require.NoError(t, err)

	lt := tr.catalogs[domain.LanguageLT]
	en := tr.catalogs[domain.LanguageEN]
	require.NotEmpty(t, lt)

	for key := range lt {
		assert.Contains(t, en, key, "key %q missing from en catalog", key)
	}
	for key := range en {
		assert.Contains(t, lt, key, "key %q missing from lt catalog", key)
	}
}

func TestTLocalizes(t *testing.T) {
	tr, err := New(logging.NewNop())
	require.NoError(t, err)

	lt := tr.T(domain.LanguageLT, "greeting.welcome")
	en := tr.T(domain.LanguageEN, "greeting.welcome")
	assert.NotEmpty(t, lt)
	assert.NotEmpty(t, en)
	assert.NotEqual(t, lt, en)
}

func TestTFormatsArgs(t *testing.T) {
	tr, err := New(logging.NewNop())
	require.NoError(t, err)

	out := tr.T(domain.LanguageLT, "ticket.created", "TCK-42")
	assert.Contains(t, out, "TCK-42")
	assert.False(t, strings.Contains(out, "%s"))
}

func TestTUnknownLanguageFallsBackToLithuanian(t *testing.T) {
	tr, err := New(logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t,
		tr.T(domain.LanguageLT, "closing.goodbye"),
		tr.T(domain.Language("de"), "closing.goodbye"))
}

func TestTMissingKeyReturnsKey(t *testing.T) {
	tr, err := New(logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "no.such.key", tr.T(domain.LanguageLT, "no.such.key"))
}

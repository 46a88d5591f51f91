package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	assert.Equal(t, "turns", New("en").T("turns"))
	assert.Equal(t, "tours", New("fr").T("turns"))
	assert.Equal(t, "Mémoire", New("fr").T("soft_prefix"))
}

func TestFallbacks(t *testing.T) {
	de := New("de")
	assert.Equal(t, "en", de.Lang())
	assert.Equal(t, "turns", de.T("turns"))

	assert.Equal(t, "no_such_key", New("fr").T("no_such_key"))
	assert.Equal(t, "turns", Translator{}.T("turns"))
}

func TestCataloguesHaveSameKeys(t *testing.T) {
	for lang, msgs := range catalogues {
		for key := range catalogues[DefaultLang] {
			assert.Contains(t, msgs, key, "%s is missing %s", lang, key)
		}
	}
	assert.True(t, Supported("fr"))
	assert.False(t, Supported("de"))
}

package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcon_DefaultsToFirstVariant(t *testing.T) {
	p, _, _ := newTestPrefs()
	assert.Equal(t, IconVariants()[0], p.Icon())
}

func TestIcon_SetAndGet(t *testing.T) {
	p, _, _ := newTestPrefs()
	p.SetIcon(IconGlobe)
	assert.Equal(t, IconGlobe, p.Icon())
}

func TestIcon_UnknownPersistedValueFallsBack(t *testing.T) {
	p, store, _ := newTestPrefs()
	// A variant that was removed from the set in a later release.
	require.NoError(t, store.Write(KeyIcon, []byte(`"retired-icon"`)))
	assert.Equal(t, IconVariants()[0], p.Icon())
}

func TestSetIcon_UnknownValueIgnored(t *testing.T) {
	p, _, _ := newTestPrefs()
	p.SetIcon(IconChoice("nonsense"))
	assert.Equal(t, IconVariants()[0], p.Icon())
}

func TestIcon_MalformedDataFallsBack(t *testing.T) {
	p, store, _ := newTestPrefs()
	require.NoError(t, store.Write(KeyIcon, []byte("{")))
	assert.Equal(t, IconVariants()[0], p.Icon())
}

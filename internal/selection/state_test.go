package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDefaults(t *testing.T) {
	var s State
	v := s.Snapshot()
	assert.Nil(t, v.SelectedContactID)
	assert.Empty(t, v.SearchQuery)
	assert.False(t, v.ShowFavouritesOnly)
}

func TestStateSetters(t *testing.T) {
	var s State

	s.SetSelectedContactID("42")
	s.SetSearchQuery("ada")
	s.SetShowFavouritesOnly(true)

	v := s.Snapshot()
	require.NotNil(t, v.SelectedContactID)
	assert.Equal(t, "42", *v.SelectedContactID)
	assert.Equal(t, "ada", v.SearchQuery)
	assert.True(t, v.ShowFavouritesOnly)

	assert.False(t, s.ToggleShowFavouritesOnly())
	assert.True(t, s.ToggleShowFavouritesOnly())

	s.ClearSelection()
	assert.Nil(t, s.Snapshot().SelectedContactID)
}

func TestSnapshotIsACopy(t *testing.T) {
	var s State
	s.SetSelectedContactID("1")

	v := s.Snapshot()
	*v.SelectedContactID = "changed"

	assert.Equal(t, "1", *s.Snapshot().SelectedContactID)
}

package cmd

import (
	"testing"

	"github.com/huangsam/contacts/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFieldFlags(t *testing.T) {
	current := schema.ContactFields{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0101",
		Address:   "London",
		Favourite: true,
	}

	t.Run("unchanged flags keep values", func(t *testing.T) {
		assert.Equal(t, current, applyFieldFlags(editCmd, current))
	})

	t.Run("changed flags overlay", func(t *testing.T) {
		require.NoError(t, editCmd.Flags().Set("phone", "555-0199"))
		require.NoError(t, editCmd.Flags().Set("favourite", "false"))
		t.Cleanup(func() {
			_ = editCmd.Flags().Set("phone", "")
			_ = editCmd.Flags().Set("favourite", "false")
			editCmd.Flags().Lookup("phone").Changed = false
			editCmd.Flags().Lookup("favourite").Changed = false
		})

		got := applyFieldFlags(editCmd, current)
		assert.Equal(t, "555-0199", got.Phone)
		assert.False(t, got.Favourite)
		assert.Equal(t, current.Name, got.Name)
		assert.Equal(t, current.Address, got.Address)
	})
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "get", "add", "edit", "delete", "fav", "export", "serve", "mcp", "cache", "version"} {
		assert.True(t, names[want], want)
	}

	sub := map[string]bool{}
	for _, c := range cacheCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"clear": true, "status": true, "migrate": true, "prune": true}, sub)
}

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

func TestUpdateBuilder(t *testing.T) {
	t.Run("assignments keep call order and placeholder numbering", func(t *testing.T) {
		b := newUpdateBuilder("category")
		b.Set("name", "news")
		b.Set("description", "about news")

		query, args, err := b.Build("WHERE id = $3")
		require.NoError(t, err)
		assert.Equal(t, "UPDATE category SET name = $1, description = $2 WHERE id = $3", query)
		assert.Equal(t, []any{"news", "about news"}, args)
	})

	t.Run("bind continues the placeholder sequence", func(t *testing.T) {
		b := newUpdateBuilder("tags")
		b.Set("name", "golang")
		ph := b.Bind("some-id")
		assert.Equal(t, "$2", ph)

		query, args, err := b.Build("WHERE id = " + ph)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE tags SET name = $1 WHERE id = $2", query)
		assert.Equal(t, []any{"golang", "some-id"}, args)
	})

	t.Run("zero assignments are rejected", func(t *testing.T) {
		b := newUpdateBuilder("tags")
		_ = b.Bind("some-id")

		_, _, err := b.Build("WHERE id = $1")
		assert.ErrorIs(t, err, simplecms.ErrEmptyUpdate)
	})

	t.Run("empty reports assignment state", func(t *testing.T) {
		b := newUpdateBuilder("tags")
		assert.True(t, b.Empty())
		b.Set("name", "x")
		assert.False(t, b.Empty())
	})

	t.Run("values never appear in the statement text", func(t *testing.T) {
		b := newUpdateBuilder("category")
		b.Set("name", "'); DROP TABLE category; --")

		query, args, err := b.Build("WHERE id = $2")
		require.NoError(t, err)
		assert.Equal(t, "UPDATE category SET name = $1 WHERE id = $2", query)
		assert.Len(t, args, 1)
	})
}

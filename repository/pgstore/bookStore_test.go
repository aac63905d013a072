package pgstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kp7829294-create/libzone/model"
)

func Test_SearchQuery_NoFilter(t *testing.T) {
	q, args, err := searchQuery(model.BookFilter{})
	require.NoError(t, err)

	assert.Contains(t, q, `FROM "books"`)
	assert.NotContains(t, q, "WHERE")
	assert.Contains(t, q, `ORDER BY "created_at" DESC`)
	assert.Empty(t, args)
}

func Test_SearchQuery_TextAndCategory(t *testing.T) {
	q, args, err := searchQuery(model.BookFilter{Text: "go", Category: "Programming"})
	require.NoError(t, err)

	assert.Contains(t, q, `"title" ILIKE $1`)
	assert.Contains(t, q, `"author" ILIKE $2`)
	assert.Contains(t, q, " OR ")
	assert.Contains(t, q, `"category" = $3`)
	assert.Equal(t, []any{"%go%", "%go%", "Programming"}, args)
}

func Test_SearchQuery_CategoryOnly(t *testing.T) {
	q, args, err := searchQuery(model.BookFilter{Category: "History"})
	require.NoError(t, err)

	assert.NotContains(t, q, "ILIKE")
	assert.Contains(t, q, `"category" = $1`)
	assert.Equal(t, []any{"History"}, args)
}

func Test_EscapeLike_TreatsWildcardsLiterally(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSkipsEmptyRows(t *testing.T) {
	kb := NewBuilder().
		Row(Button("a", "x:1"), Button("b", "x:2")).
		Row().
		AddRow(nil).
		AddBackToMainButton().
		Build()

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "x:2", kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "back_to_main", kb.InlineKeyboard[1][0].CallbackData)
}

func TestPaginationButtons(t *testing.T) {
	assert.Nil(t, PaginationButtons("p:", 0, 1))

	first := PaginationButtons("p:", 0, 3)
	require.Len(t, first, 2)
	assert.Equal(t, "noop", first[0].CallbackData)
	assert.Equal(t, "p:1", first[1].CallbackData)

	middle := PaginationButtons("p:", 1, 3)
	require.Len(t, middle, 3)
	assert.Equal(t, "p:0", middle[0].CallbackData)
	assert.Equal(t, "📄 2/3", middle[1].Text)

	last := PaginationButtons("p:", 2, 3)
	assert.Equal(t, "p:1", last[0].CallbackData)
	assert.Len(t, last, 2)
}

func TestPage(t *testing.T) {
	start, end, cur, pages := Page(12, 5, 2)
	assert.Equal(t, []int{10, 12, 2, 3}, []int{start, end, cur, pages})

	start, end, cur, pages = Page(12, 5, 9)
	assert.Equal(t, []int{10, 12, 2, 3}, []int{start, end, cur, pages})

	start, end, cur, pages = Page(3, 5, -1)
	assert.Equal(t, []int{0, 3, 0, 1}, []int{start, end, cur, pages})

	_, _, _, pages = Page(0, 5, 0)
	assert.Zero(t, pages)
}

func TestRatingButtons(t *testing.T) {
	row := RatingButtons("rate:", 42)
	require.Len(t, row, 6)
	assert.Equal(t, "rate:42:0", row[0].CallbackData)
	assert.Equal(t, "rate:42:5", row[5].CallbackData)
}

func TestGrid(t *testing.T) {
	kb := NewBuilder().
		Grid(2, Button("1", "c:1"), Button("2", "c:2"), Button("3", "c:3")).
		Build()

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "c:3", kb.InlineKeyboard[1][0].CallbackData)

	assert.Empty(t, NewBuilder().Grid(0).Build().InlineKeyboard)
}

func TestAddBackButton(t *testing.T) {
	kb := NewBuilder().
		Row(Button("a", "x:1")).
		AddBackButton("lessons_tab:pending:0").
		Build()

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "⬅️ Назад", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "lessons_tab:pending:0", kb.InlineKeyboard[1][0].CallbackData)
}

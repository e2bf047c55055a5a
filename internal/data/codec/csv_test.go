package codec

import (
	"strings"
	"testing"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV_Decode(t *testing.T) {
	t.Run("two rows", func(t *testing.T) {
		data := strings.Join([]string{
			"1,First,,,false,2023-06-10T12:00:00Z,",
			"2,Second,важная,2023-08-10T12:00:00Z,true,2023-06-10T12:00:00Z,2023-07-10T12:00:00Z",
		}, "\n")

		got, err := CSV{}.Decode([]byte(data))
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "First", got[0].Text)
		assert.Equal(t, task.ImportanceNormal, got[0].Importance)
		assert.Nil(t, got[0].Deadline)
		assert.False(t, got[0].IsDone)
		assert.Nil(t, got[0].ModificationDate)

		assert.Equal(t, "2", got[1].ID)
		assert.Equal(t, task.ImportanceHigh, got[1].Importance)
		require.NotNil(t, got[1].Deadline)
		assert.True(t, got[1].Deadline.Equal(mustTime(t, "2023-08-10T12:00:00Z")))
		assert.True(t, got[1].IsDone)
		require.NotNil(t, got[1].ModificationDate)
	})

	t.Run("malformed rows skipped", func(t *testing.T) {
		data := strings.Join([]string{
			"short,row,only",
			"1,ok,,,false,2023-06-10T12:00:00Z,",
			"2,bad bool,,,maybe,2023-06-10T12:00:00Z,",
			"3,bad date,,,true,not-a-date,",
			"",
		}, "\n")

		got, err := CSV{}.Decode([]byte(data))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
	})

	t.Run("done flag is exactly true or false", func(t *testing.T) {
		data := strings.Join([]string{
			"1,numeric,,,1,2023-06-10T12:00:00Z,",
			"2,short,,,t,2023-06-10T12:00:00Z,",
			"3,upper,,,TRUE,2023-06-10T12:00:00Z,",
			"4,lower,,,true,2023-06-10T12:00:00Z,",
			"5,zero,,,0,2023-06-10T12:00:00Z,",
		}, "\n")

		got, err := CSV{}.Decode([]byte(data))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "4", got[0].ID)
		assert.True(t, got[0].IsDone)
	})

	t.Run("fields are trimmed", func(t *testing.T) {
		data := " 1 , padded , важная ,, true , 2023-06-10T12:00:00Z , \r\n"

		got, err := CSV{}.Decode([]byte(data))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "padded", got[0].Text)
		assert.Equal(t, task.ImportanceHigh, got[0].Importance)
		assert.True(t, got[0].IsDone)
	})

	t.Run("color column", func(t *testing.T) {
		got, err := CSV{}.Decode([]byte("1,x,,,false,2023-06-10T12:00:00Z,,#112233\n"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].Color)
		assert.Equal(t, "#112233", *got[0].Color)
	})
}

func TestCSV_Encode(t *testing.T) {
	created := mustTime(t, "2023-06-10T12:00:00Z")

	data, err := CSV{}.Encode([]task.Task{
		{ID: "1", Text: "First", CreationDate: created},
		{ID: "2", Text: "Second", Importance: task.ImportanceHigh, IsDone: true, CreationDate: created, Color: task.Ptr("#ABCDEF")},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"1,First,обычная,,false,2023-06-10T12:00:00Z,\n"+
			"2,Second,важная,,true,2023-06-10T12:00:00Z,,#ABCDEF\n",
		string(data))
}

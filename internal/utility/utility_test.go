package utility

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"qced_directory/internal/common"
)

func TestCache_TTLAndPrefix(t *testing.T) {
	c := NewCache(50*time.Millisecond, 0)
	defer c.Stop()

	c.Set("report:headcount", 1)
	c.Set("report:roles", 2)
	c.Set("user:1", 3)

	v, ok := c.Get("report:roles")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	c.DeletePrefix("report:")
	_, ok = c.Get("report:headcount")
	assert.False(t, ok)

	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("user:1")
	assert.False(t, ok, "item hết hạn phải bị bỏ qua")
}

func TestParseObjectIDs(t *testing.T) {
	ids, err := ParseObjectIDs([]string{"65f1a2b3c4d5e6f7a8b9c0d1", "65f1a2b3c4d5e6f7a8b9c0d2"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	_, err = ParseObjectIDs([]string{"65f1a2b3c4d5e6f7a8b9c0d1", "bad"})
	assert.ErrorIs(t, err, common.ErrInvalidID)

	ptr, err := ObjectIDPtr("")
	assert.NoError(t, err)
	assert.Nil(t, ptr)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Unique([]string{"a", "b", "a", "c", "b"}))
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	data, err := WriteXLSX(Sheet{
		Name:    "Employees",
		Headers: []string{"firstName", "lastName", "email"},
		Rows: [][]interface{}{
			{"Sara", "Alqahtani", "sara@qced.sa"},
			{"Omar", "", "omar@qced.sa"},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Employees"}, f.GetSheetList())
	_ = f.Close()

	records, err := ReadXLSXRecords(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Sara", records[0]["firstName"])
	assert.Equal(t, "omar@qced.sa", records[1]["email"])
}

func TestWriteCSV(t *testing.T) {
	data, err := WriteCSV(Sheet{Headers: []string{"name", "ext"}, Rows: [][]interface{}{{"Sara, A", 1203}, {"Omar", nil}}})
	require.NoError(t, err)
	text := strings.TrimPrefix(string(data), "\uFEFF")
	assert.Equal(t, "name,ext\n\"Sara, A\",1203\nOmar,\n", text)
}

func TestEscapeRegex(t *testing.T) {
	assert.Equal(t, `a\.b\(c\)\*`, EscapeRegex("a.b(c)*"))
}

package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type embeddedMeta struct {
	DeletionMark bool `db:"deletion_mark"`
	Version      int  `db:"version"`
}

type testRecord struct {
	embeddedMeta
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Ignored   []string  `db:"-"`
	Untagged  string    ``
	CreatedAt time.Time `db:"created_at"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testRecord]()

	expected := []string{"deletion_mark", "version", "id", "name", "created_at"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.Len(t, cols, len(expected))
	assert.NotContains(t, cols, "-")
}

func TestExtractDBColumns_Pointer(t *testing.T) {
	cols := ExtractDBColumns[*testRecord]()
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "version")
}

func TestStructToMap(t *testing.T) {
	now := time.Now()
	rec := testRecord{
		embeddedMeta: embeddedMeta{DeletionMark: true, Version: 3},
		ID:           "abc",
		Name:         "widget",
		Ignored:      []string{"x"},
		Untagged:     "skip me",
		CreatedAt:    now,
	}

	m := StructToMap(rec)

	assert.Equal(t, "abc", m["id"])
	assert.Equal(t, "widget", m["name"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 3, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 5)
}

func TestStructToMap_PointerAndNonStruct(t *testing.T) {
	rec := &testRecord{ID: "ptr"}
	m := StructToMap(rec)
	assert.Equal(t, "ptr", m["id"])

	assert.Nil(t, StructToMap(42))
}

func TestStructToMap_CachedMetadataStable(t *testing.T) {
	// Second conversion must see the same shape via the type cache.
	first := StructToMap(testRecord{ID: "a"})
	second := StructToMap(testRecord{ID: "b"})
	assert.Len(t, second, len(first))
	assert.Equal(t, "b", second["id"])
}

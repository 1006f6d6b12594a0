package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionalPayload struct {
	Notes  Optional[string]  `json:"notes"`
	Weight Optional[float64] `json:"weight"`
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var p optionalPayload
	require.NoError(t, json.Unmarshal([]byte(`{"notes":"heavy day","weight":null}`), &p))

	assert.True(t, p.Notes.Set)
	require.NotNil(t, p.Notes.Value)
	assert.Equal(t, "heavy day", *p.Notes.Value)

	assert.True(t, p.Weight.Set)
	assert.Nil(t, p.Weight.Value)

	var empty optionalPayload
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.False(t, empty.Notes.Set)
	assert.False(t, empty.Weight.Set)
}

func TestOptional_Apply(t *testing.T) {
	w := 80.5
	dst := &w

	Optional[float64]{}.Apply(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, 80.5, *dst)

	Some(82.0).Apply(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, 82.0, *dst)

	Null[float64]().Apply(&dst)
	assert.Nil(t, dst)
}

func TestOptional_ApplyValue(t *testing.T) {
	notes := "old"
	Optional[string]{}.ApplyValue(&notes)
	assert.Equal(t, "old", notes)

	Null[string]().ApplyValue(&notes)
	assert.Equal(t, "old", notes)

	Some("new").ApplyValue(&notes)
	assert.Equal(t, "new", notes)
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_PreservesInsertionOrder(t *testing.T) {
	var c Counter
	c.Inc("/pricing", 1)
	c.Inc("/", 3)
	c.Inc("/pricing", 2)
	c.Inc("", 1)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"/pricing":3,"/":3,"unknown":1}`, string(data))

	var decoded Counter
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, c.Entries(), decoded.Entries())
}

func TestCounter_TopBreaksTiesByFirstSeen(t *testing.T) {
	var c Counter
	require.NoError(t, json.Unmarshal([]byte(`{"/a":5,"/b":9,"/c":9}`), &c))

	assert.Equal(t, []CounterEntry{{Label: "/b", Value: 9}, {Label: "/c", Value: 9}}, c.Top(2))
	assert.Len(t, c.Top(0), 3)
}

func TestCounter_LegacyValues(t *testing.T) {
	tests := map[string][]CounterEntry{
		`null`:                  {},
		`7`:                     {},
		`{"x":"4","y":2.9}`:     {{Label: "x", Value: 4}, {Label: "y", Value: 2}},
		`{"x":null,"y":"many"}`: {{Label: "x", Value: 0}, {Label: "y", Value: 0}},
	}

	for input, expected := range tests {
		var c Counter
		require.NoError(t, json.Unmarshal([]byte(input), &c), input)
		assert.Equal(t, expected, c.Entries(), input)
	}
}

func TestVisitorSet_AddAndLegacyCount(t *testing.T) {
	s := NewVisitorSet("a", "b")
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())

	var legacy VisitorSet
	require.NoError(t, json.Unmarshal([]byte(`42`), &legacy))
	assert.Equal(t, 0, legacy.Len())

	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestVisitorSet_DecodeDropsDuplicatesAndNonStrings(t *testing.T) {
	var s VisitorSet
	require.NoError(t, json.Unmarshal([]byte(`["a","",3,"a","b"]`), &s))

	assert.Equal(t, []string{"a", "b"}, s.IDs())
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("z"))
}

package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGetter records how often each key is looked up.
type countingGetter struct {
	data  map[string]any
	calls map[string]int
}

func newCountingGetter(data map[string]any) *countingGetter {
	return &countingGetter{data: data, calls: make(map[string]int)}
}

func (g *countingGetter) Get(key string) (any, bool) {
	g.calls[key]++
	v, ok := g.data[key]
	return v, ok
}

type address struct {
	City    string `json:"city"`
	ZipCode string
	country string
}

type customer struct {
	Name    string
	Address *address `json:"address"`
}

func TestFind_NestedMap(t *testing.T) {
	s := New(map[string]any{"x": map[string]any{"y": 1}}, nil)

	v, ok := s.Find("x.y")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.Find("x.z")
	assert.False(t, ok)
}

func TestFind_EmptyPath(t *testing.T) {
	s := New(map[string]any{"": "empty key"}, nil)

	v, ok := s.Find("")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Empty(t, s.cache)
}

func TestFind_FallsBackToParent(t *testing.T) {
	parent := New(map[string]any{"z": "from parent", "shared": map[string]any{"v": 2}}, nil)
	child := parent.Child(map[string]any{"own": "local"})

	v, ok := child.Find("z")
	require.True(t, ok)
	assert.Equal(t, "from parent", v)

	v, ok = child.Find("own")
	require.True(t, ok)
	assert.Equal(t, "local", v)

	v, ok = child.Find("shared.v")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestFind_PartialLocalMatchDelegatesWholePath(t *testing.T) {
	parent := New(map[string]any{"a": map[string]any{"b": "parent"}}, nil)
	child := parent.Child(map[string]any{"a": map[string]any{"c": "child"}})

	v, ok := child.Find("a.b")
	require.True(t, ok)
	assert.Equal(t, "parent", v)
}

// A key that is present locally but false is a miss under the default
// policy, so the parent's value wins even though the key exists here.
func TestFind_FalseIsTreatedAsMissing(t *testing.T) {
	parent := New(map[string]any{"flag": "parent value", "none": "parent none"}, nil)
	child := parent.Child(map[string]any{"flag": false, "none": nil})

	v, ok := child.Find("flag")
	require.True(t, ok)
	assert.Equal(t, "parent value", v)

	v, ok = child.Find("none")
	require.True(t, ok)
	assert.Equal(t, "parent none", v)

	root := New(map[string]any{"flag": false}, nil)
	_, ok = root.Find("flag")
	assert.False(t, ok)
}

func TestFind_ZeroAndEmptyValuesArePresent(t *testing.T) {
	parent := New(map[string]any{"n": 7, "s": "parent", "l": []any{1}}, nil)
	child := parent.Child(map[string]any{"n": 0, "s": "", "l": []any{}})

	n, ok := child.Find("n")
	require.True(t, ok)
	assert.Equal(t, 0, n)

	s, ok := child.Find("s")
	require.True(t, ok)
	assert.Equal(t, "", s)

	l, ok := child.Find("l")
	require.True(t, ok)
	assert.Equal(t, []any{}, l)
}

func TestFind_MissOnNilKeepsFalse(t *testing.T) {
	parent := New(map[string]any{"flag": "parent value"}, nil, WithMissPolicy(MissOnNil))
	child := parent.Child(map[string]any{"flag": false, "none": nil})
	assert.Equal(t, MissOnNil, child.Policy())

	v, ok := child.Find("flag")
	require.True(t, ok)
	assert.Equal(t, false, v)

	_, ok = child.Find("none")
	assert.False(t, ok)
}

func TestFind_TypedNilIsMissing(t *testing.T) {
	var addr *address
	s := New(map[string]any{"address": addr}, nil)

	_, ok := s.Find("address")
	assert.False(t, ok)
}

func TestFind_Memoized(t *testing.T) {
	inner := newCountingGetter(map[string]any{"name": "Alice"})
	outer := newCountingGetter(map[string]any{"user": inner})
	s := New(outer, nil)

	first, ok := s.Find("user.name")
	require.True(t, ok)
	second, ok := s.Find("user.name")
	require.True(t, ok)

	assert.Equal(t, "Alice", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, outer.calls["user"])
	assert.Equal(t, 1, inner.calls["name"])
}

func TestFind_CacheIsPerScope(t *testing.T) {
	data := newCountingGetter(map[string]any{"k": "v"})
	a := New(data, nil)
	b := New(data, nil)

	_, _ = a.Find("k")
	_, _ = b.Find("k")
	_, _ = a.Find("k")

	assert.Equal(t, 2, data.calls["k"])
}

func TestFind_Structs(t *testing.T) {
	c := customer{
		Name:    "Bob",
		Address: &address{City: "Berlin", ZipCode: "10115", country: "DE"},
	}
	s := New(&c, nil)

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{path: "Name", want: "Bob", wantOK: true},
		{path: "name", want: "Bob", wantOK: true},
		{path: "address.city", want: "Berlin", wantOK: true},
		{path: "Address.City", want: "Berlin", wantOK: true},
		{path: "address.zipcode", want: "10115", wantOK: true},
		{path: "address.country", wantOK: false},
		{path: "address.street", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, ok := s.Find(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}

func TestFind_TypedMaps(t *testing.T) {
	type label string
	s := New(map[string]any{
		"prices": map[string]float64{"net": 10.5},
		"labels": map[label]string{"title": "Report"},
		"codes":  map[int]string{1: "one"},
	}, nil)

	v, ok := s.Find("prices.net")
	require.True(t, ok)
	assert.Equal(t, 10.5, v)

	v, ok = s.Find("labels.title")
	require.True(t, ok)
	assert.Equal(t, "Report", v)

	_, ok = s.Find("codes.1")
	assert.False(t, ok)
}

func TestFind_OrderedMap(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", 2)
	m.Set("a", 1)
	m.Set("b", 3)

	s := New(map[string]any{"m": m}, nil)
	v, ok := s.Find("m.b")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	assert.Equal(t, []any{3, 1}, m.Values())
	assert.Equal(t, 2, m.Len())
}

func TestIsNil(t *testing.T) {
	var m map[string]any
	var p *customer
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(m))
	assert.True(t, IsNil(p))
	assert.False(t, IsNil(0))
	assert.False(t, IsNil(""))
	assert.False(t, IsNil(false))
}

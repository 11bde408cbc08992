package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type counter struct {
	key string
	n   int
}

func TestStoreUpsertAndOrder(t *testing.T) {
	s := NewStore(func(key string) *counter { return &counter{key: key} })
	for _, key := range []string{"b", "a", "c", "a"} {
		s.Upsert(key).n++
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())

	values := s.Values()
	assert.Equal(t, "a", values[0].key)
	assert.Equal(t, 2, values[0].n)

	_, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestTagSetSorted(t *testing.T) {
	tags := tagSet{}
	tags.add("z")
	tags.add("a")
	tags.merge(tagSet{"m": {}, "a": {}})
	assert.Equal(t, []string{"a", "m", "z"}, tags.sorted())
	assert.Equal(t, []string{}, tagSet{}.sorted())
}

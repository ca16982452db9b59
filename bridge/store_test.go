package bridge

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_handles"})
	store := NewStore[string](gauge)

	first := store.Put("a")
	second := store.Put("b")
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, store.Len())
	assert.EqualValues(t, 2, testutil.ToFloat64(gauge))

	item, ok := store.Get(first)
	assert.True(t, ok)
	assert.Equal(t, "a", item)

	store.Insert(first, "c")
	assert.EqualValues(t, 2, testutil.ToFloat64(gauge))

	item, ok = store.Delete(first)
	assert.True(t, ok)
	assert.Equal(t, "c", item)
	_, ok = store.Delete(first)
	assert.False(t, ok)
	_, ok = store.Get(first)
	assert.False(t, ok)
	assert.EqualValues(t, 1, testutil.ToFloat64(gauge))

	store.Put("d")
	assert.ElementsMatch(t, []string{"b", "d"}, store.Drain())
	assert.Equal(t, 0, store.Len())
	assert.EqualValues(t, 0, testutil.ToFloat64(gauge))
}

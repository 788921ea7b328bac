package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qced_directory/internal/common"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("employees", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = r.Register("employees", 2)
	require.NoError(t, err)
	assert.False(t, isNew)

	v, ok := r.Get("employees")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = r.Register("", 3)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRegistry_GetOrCreateOnlyOnce(t *testing.T) {
	r := NewRegistry[string]()
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.GetOrCreate("hub", func() (string, error) {
				calls++
				return "created", nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)

	_, err := r.GetOrCreate("broken", func() (string, error) { return "", errors.New("boom") })
	assert.Error(t, err)
	_, ok := r.Get("broken")
	assert.False(t, ok)
}

func TestRegistry_ClearAndNames(t *testing.T) {
	r := NewRegistry[int]()
	_, _ = r.Register("b", 1)
	_, _ = r.Register("a", 2)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	cleaned := 0
	deleted, err := r.Clear("a", func(int) error { cleaned++; return nil })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, cleaned)

	deleted, err = r.Clear("missing", nil)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Panics(t, func() { r.MustGet("a") })
}

package plan

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/internal/config"
)

func TestCacheCompilesOnce(t *testing.T) {
	c := NewCache()
	key := NewKey(config.CreateNew, reflect.TypeFor[order](), reflect.TypeFor[orderDTO]())

	var calls atomic.Int32

	compile := func(k Key) (*Plan, error) {
		calls.Add(1)
		return &Plan{Key: k}, nil
	}

	var (
		wg    sync.WaitGroup
		plans = make([]*Plan, 16)
	)

	for i := range plans {
		wg.Add(1)

		go func() {
			defer wg.Done()

			p, err := c.Get(key, compile)
			assert.NoError(t, err)

			plans[i] = p
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())

	for _, p := range plans {
		assert.Same(t, plans[0], p)
	}

	assert.Equal(t, Stats{Plans: 1, Compilations: 1}, c.Stats())
}

func TestCacheKeepsFailures(t *testing.T) {
	c := NewCache()
	key := NewKey(config.Merge, reflect.TypeFor[int](), reflect.TypeFor[string]())
	errBroken := errors.New("broken")

	calls := 0
	compile := func(Key) (*Plan, error) {
		calls++
		return nil, errBroken
	}

	_, err := c.Get(key, compile)
	require.ErrorIs(t, err, errBroken)

	_, err = c.Get(key, compile)
	require.ErrorIs(t, err, errBroken)
	assert.Equal(t, 1, calls)
}

func TestCacheReset(t *testing.T) {
	c := NewCache()
	key := NewKey(config.CreateNew, reflect.TypeFor[order](), reflect.TypeFor[orderDTO]())

	compile := func(k Key) (*Plan, error) { return &Plan{Key: k}, nil }

	first, err := c.Get(key, compile)
	require.NoError(t, err)

	c.Reset()
	assert.Equal(t, Stats{Plans: 0, Compilations: 1}, c.Stats())

	second, err := c.Get(key, compile)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, Stats{Plans: 1, Compilations: 2}, c.Stats())
}

func TestKeyWithRuntime(t *testing.T) {
	declared := NewKey(config.CreateNew, reflect.TypeFor[*shape](), reflect.TypeFor[*orderDTO]())

	same := declared.WithRuntime(reflect.TypeFor[shape](), reflect.TypeFor[orderDTO]())
	assert.Equal(t, declared, same, "runtime types equal to declared ones are not recorded")

	concrete := declared.WithRuntime(reflect.TypeFor[*square](), nil)
	assert.NotEqual(t, declared, concrete)
	assert.Equal(t, reflect.TypeFor[square](), concrete.Source())
	assert.Equal(t, reflect.TypeFor[orderDTO](), concrete.Target())
	assert.Equal(t, "new plan.square -> plan.orderDTO", concrete.String())
}

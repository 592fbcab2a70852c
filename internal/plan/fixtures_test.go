package plan

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"object-mapper/internal/config"
	"object-mapper/node"
	"object-mapper/options"
)

type customer struct {
	Name  string
	Email string
}

type orderLine struct {
	ID       int
	Product  string
	Quantity int
}

type order struct {
	ID       int
	Customer customer
	Lines    []orderLine
	Tags     []string
	Notes    *string
}

type lineDTO struct {
	ID       int
	Product  string
	Quantity int
	Discount int
}

type orderDTO struct {
	ID           int
	CustomerName string
	Lines        []lineDTO
	Tags         []string
	Notes        *string
	Status       string
}

type link struct {
	Name string
	Next *link
}

type linkDTO struct {
	Name string
	Next *linkDTO
}

func newTestEngine(t *testing.T, cfg *config.Set, opts ...options.Option) *Engine {
	t.Helper()

	return NewEngine(cfg, options.Apply(opts...))
}

func mustCaster(t *testing.T, fn any) *node.Caster {
	t.Helper()

	c, err := node.ParseCaster(fn)
	require.NoError(t, err)

	return &c
}

func mustAction(t *testing.T, fn any) *node.Caster {
	t.Helper()

	c, err := node.ParseAction(fn)
	require.NoError(t, err)

	return &c
}

// mapInto maps src onto a value of T under ruleSet, updating existing when given.
func mapInto[T any](t *testing.T, e *Engine, ruleSet config.RuleSet, src any, existing any) (T, error) {
	t.Helper()

	var ev reflect.Value
	if existing != nil {
		ev = reflect.ValueOf(existing)
	}

	out, err := e.Map(context.Background(), ruleSet, reflect.ValueOf(src), reflect.TypeFor[T](), ev)
	if err != nil {
		var zero T
		return zero, err
	}

	return out.Interface().(T), nil
}

func sampleOrder() *order {
	return &order{
		ID:       1,
		Customer: customer{Name: "Ann", Email: "ann@example.com"},
		Lines: []orderLine{
			{ID: 1, Product: "pen", Quantity: 2},
			{ID: 2, Product: "ink", Quantity: 1},
		},
		Tags: []string{"a"},
	}
}

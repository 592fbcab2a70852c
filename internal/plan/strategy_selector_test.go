package plan

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/internal/analyze"
	"object-mapper/internal/config"
	"object-mapper/internal/match"
	"object-mapper/node"
	"object-mapper/options"
	"object-mapper/primitive"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		ruleSet      config.RuleSet
		kind         node.DispatcherEnum
		identifiable bool
		want         EnumerableStrategy
		expl         string
	}{
		{config.CreateNew, node.DispatcherSlice, true, StrategyCreateNew, explCreateNew},
		{config.CreateNew, node.DispatcherSet, false, StrategyCreateNew, explCreateNew},
		{config.Merge, node.DispatcherSlice, false, StrategyMergeAppend, explMergeAppend},
		{config.Merge, node.DispatcherSet, false, StrategyMergeAppend, explMergeSet},
		{config.Merge, node.DispatcherSlice, true, StrategyMergeByIdentity, explMergeByIdentity},
		{config.Merge, node.DispatcherArray, true, StrategyMergeByIdentity, explMergeArray},
		{config.Overwrite, node.DispatcherSlice, false, StrategyOverwriteInPlace, explOverwriteInPlace},
		{config.Overwrite, node.DispatcherArray, true, StrategyOverwriteByIdentity, explOverwriteByIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.ruleSet.String()+"/"+tt.want.String(), func(t *testing.T) {
			got, expl := selectStrategy(tt.ruleSet, tt.kind, tt.identifiable)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expl, expl)
		})
	}
}

func TestElementIdentifiers(t *testing.T) {
	finder := analyze.NewFinder(match.NewNaming(nil, nil, nil))

	src, tgt := elementIdentifiers(finder, reflect.TypeFor[orderLine](), reflect.TypeFor[*lineDTO]())
	if assert.NotNil(t, src) && assert.NotNil(t, tgt) {
		assert.Equal(t, "ID", src.Name)
		assert.Equal(t, "ID", tgt.Name)
	}

	src, tgt = elementIdentifiers(finder, reflect.TypeFor[string](), reflect.TypeFor[string]())
	assert.Nil(t, src)
	assert.Nil(t, tgt)

	src, _ = elementIdentifiers(finder, reflect.TypeFor[customer](), reflect.TypeFor[lineDTO]())
	assert.Nil(t, src, "customer has no identifier")
}

func TestEnumerableArrays(t *testing.T) {
	type slots struct{ Lines [2]lineDTO }
	type source struct{ Lines []orderLine }
	type arraySource struct{ Lines [2]orderLine }

	e := newTestEngine(t, nil)

	existing := &slots{Lines: [2]lineDTO{{ID: 2, Product: "old", Discount: 1}}}

	got, err := mapInto[*slots](t, e, config.Merge, &arraySource{Lines: [2]orderLine{
		{ID: 2, Product: "ink"},
		{ID: 3, Product: "pad"},
	}}, existing)
	if assert.NoError(t, err) {
		assert.Equal(t, [2]lineDTO{
			{ID: 2, Product: "ink", Discount: 1},
			{ID: 3, Product: "pad"},
		}, got.Lines, "merge updates by identity and fills zero slots")
	}

	cut, err := mapInto[slots](t, e, config.CreateNew, &source{Lines: []orderLine{{ID: 1}, {ID: 2}, {ID: 3}}}, nil)
	if assert.NoError(t, err, "unsafe array conversions cut the source") {
		assert.Equal(t, [2]lineDTO{{ID: 1}, {ID: 2}}, cut.Lines)
	}

	strict := newTestEngine(t, nil, options.WithoutConversions(primitive.CategoryUnsafeArray))

	_, err = mapInto[slots](t, strict, config.CreateNew, &source{Lines: make([]orderLine, 3)}, nil)
	assert.ErrorIs(t, err, primitive.ErrConversionFailed, "three elements do not fit")
}

func TestEnumerableSets(t *testing.T) {
	type tagged struct{ Tags []string }
	type tagSet struct{ Tags map[string]bool }

	e := newTestEngine(t, nil)
	existing := &tagSet{Tags: map[string]bool{"x": true}}

	got, err := mapInto[*tagSet](t, e, config.Merge, &tagged{Tags: []string{"a", "b"}}, existing)
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]bool{"x": true, "a": true, "b": true}, got.Tags)
	}

	got, err = mapInto[*tagSet](t, e, config.Overwrite, &tagged{Tags: []string{"c"}}, existing)
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]bool{"c": true}, got.Tags)
	}

	fresh, err := mapInto[tagSet](t, e, config.CreateNew, &tagged{Tags: []string{"a"}}, nil)
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]bool{"a": true}, fresh.Tags)
	}
}

func TestEnumerableSetToSlice(t *testing.T) {
	type tagSet struct{ Tags map[int]struct{} }
	type tagged struct{ Tags []string }

	e := newTestEngine(t, nil)

	got, err := mapInto[tagged](t, e, config.CreateNew, &tagSet{Tags: map[int]struct{}{3: {}, 1: {}, 2: {}}}, nil)
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"1", "2", "3"}, got.Tags, "set elements are sorted")
	}
}

func TestEnumerableElementMember(t *testing.T) {
	e := newTestEngine(t, nil)

	p, err := e.Plan(context.Background(), NewKey(config.CreateNew, reflect.TypeFor[[]string](), reflect.TypeFor[[]int]()))
	require.NoError(t, err)
	require.NotNil(t, p.Enumerable)

	elem := p.Enumerable.Element
	assert.Equal(t, analyze.MemberElement, elem.Member().Kind)
	assert.Equal(t, "[]", elem.Path())
	assert.Equal(t, reflect.TypeFor[int](), p.Enumerable.TargetElem)
	assert.Same(t, p.Target, elem.Parent())

	_, err = mapInto[[]int](t, e, config.CreateNew, []string{"1", "x"}, nil)
	require.ErrorIs(t, err, primitive.ErrConversionFailed)

	var me *MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "[]", me.Path, "element failures point at the element member")
}

package stategraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/stategraph/pkg/stategraph"
)

func TestSchema_FieldsAndPolicies(t *testing.T) {
	schema := testSchema()

	assert.Equal(t, []string{"value", "count", "items"}, schema.Fields())

	policy, ok := schema.PolicyOf("value")
	require.True(t, ok)
	assert.Equal(t, stategraph.MergeReplace, policy)

	policy, ok = schema.PolicyOf("items")
	require.True(t, ok)
	assert.Equal(t, stategraph.MergeAppend, policy)

	_, ok = schema.PolicyOf("undeclared")
	assert.False(t, ok)
}

func TestMergePolicy_String(t *testing.T) {
	assert.Equal(t, "replace", stategraph.MergeReplace.String())
	assert.Equal(t, "append", stategraph.MergeAppend.String())
	assert.Equal(t, "unknown", stategraph.MergePolicy(99).String())
}

func TestSchema_ReplaceZeroValueMeansUnchanged(t *testing.T) {
	// A node that returns a zero Value but a non-zero Count must leave
	// Value untouched.
	g := stategraph.NewGraph[testState]().
		WithSchema(testSchema()).
		AddNode("bump", func(_ stategraph.Context, s testState) (testState, error) {
			return testState{Count: s.Count + 1}, nil
		}).
		AddEdge("bump", stategraph.END).
		SetEntry("bump")

	compiled, err := g.Compile()
	require.NoError(t, err)

	final, err := compiled.Run(newTestContext(), testState{Value: "keep-me", Count: 1})
	require.NoError(t, err)

	assert.Equal(t, "keep-me", final.Value)
	assert.Equal(t, 2, final.Count)
}

func TestSchema_AppendAccumulates(t *testing.T) {
	g := stategraph.NewGraph[testState]().
		WithSchema(testSchema()).
		AddNode("first", appendNode("one")).
		AddNode("second", appendNode("two")).
		AddEdge("first", "second").
		AddEdge("second", stategraph.END).
		SetEntry("first")

	compiled, err := g.Compile()
	require.NoError(t, err)

	final, err := compiled.Run(newTestContext(), testState{Items: []string{"zero"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"zero", "one", "two"}, final.Items)
}

func TestSchema_UndeclaredFieldIgnored(t *testing.T) {
	type wideState struct {
		Declared   string
		Undeclared string
	}

	schema := stategraph.NewSchema[wideState]()
	stategraph.Replace(schema, "declared", func(s *wideState) *string { return &s.Declared })

	g := stategraph.NewGraph[wideState]().
		WithSchema(schema).
		AddNode("write", func(_ stategraph.Context, _ wideState) (wideState, error) {
			return wideState{Declared: "yes", Undeclared: "lost"}, nil
		}).
		AddEdge("write", stategraph.END).
		SetEntry("write")

	compiled, err := g.Compile()
	require.NoError(t, err)

	final, err := compiled.Run(newTestContext(), wideState{})
	require.NoError(t, err)

	assert.Equal(t, "yes", final.Declared)
	assert.Empty(t, final.Undeclared)
}

func TestNoSchema_WholeStateReplace(t *testing.T) {
	g := stategraph.NewGraph[testState]().
		AddNode("overwrite", func(_ stategraph.Context, _ testState) (testState, error) {
			return testState{Value: "new"}, nil
		}).
		AddEdge("overwrite", stategraph.END).
		SetEntry("overwrite")

	compiled, err := g.Compile()
	require.NoError(t, err)

	final, err := compiled.Run(newTestContext(), testState{Value: "old", Count: 7, Items: []string{"gone"}})
	require.NoError(t, err)

	// Without a schema the return value replaces the whole state.
	assert.Equal(t, testState{Value: "new"}, final)
}

// newTestContext builds a quiet execution context for tests.
func newTestContext(opts ...stategraph.ContextOption) stategraph.Context {
	return stategraph.NewContext(context.Background(), opts...)
}

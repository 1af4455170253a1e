package promotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		facts CartFacts
		want  bool
	}{
		{"empty is unconditional", "", CartFacts{}, true},
		{"total threshold met", "total >= 20.0", CartFacts{Total: 25}, true},
		{"total threshold missed", "total >= 20.0", CartFacts{Total: 19.99}, false},
		{"item count", "item_count > 2", CartFacts{ItemCount: 3}, true},
		{"combined", "total >= 10.0 && item_count >= 2", CartFacts{Total: 12, ItemCount: 2}, true},
		{"combined fails on one side", "total >= 10.0 && item_count >= 2", CartFacts{Total: 12, ItemCount: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.expr, tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateCondition_Errors(t *testing.T) {
	_, err := EvaluateCondition("total >>> 5", CartFacts{})
	assert.Error(t, err)

	_, err = EvaluateCondition("unknown_var > 5", CartFacts{})
	assert.Error(t, err)
}

func TestCheckCondition(t *testing.T) {
	assert.NoError(t, CheckCondition("total > 0.0"))
	assert.NoError(t, CheckCondition("item_count == 1"))

	// must compile
	assert.Error(t, CheckCondition("total >"))

	// must be boolean
	assert.Error(t, CheckCondition("total + 1.0"))
}

func TestEvaluateCondition_ReusesCompiledProgram(t *testing.T) {
	const expr = "total >= 123.45"

	ok, err := EvaluateCondition(expr, CartFacts{Total: 200})
	require.NoError(t, err)
	assert.True(t, ok)

	condProgMu.RLock()
	first, cached := condPrograms[expr]
	condProgMu.RUnlock()
	require.True(t, cached)

	ok, err = EvaluateCondition(expr, CartFacts{Total: 100})
	require.NoError(t, err)
	assert.False(t, ok)

	condProgMu.RLock()
	second := condPrograms[expr]
	condProgMu.RUnlock()
	assert.True(t, first == second, "second evaluation recompiled the expression")
}

func TestEvaluateCondition_BrokenExpressionNotCached(t *testing.T) {
	const expr = "total >>>"

	_, err := EvaluateCondition(expr, CartFacts{})
	require.Error(t, err)

	condProgMu.RLock()
	_, cached := condPrograms[expr]
	condProgMu.RUnlock()
	assert.False(t, cached)
}

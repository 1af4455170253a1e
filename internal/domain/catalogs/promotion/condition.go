package promotion

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// CartFacts are the cart aggregates a promotion condition may reference.
type CartFacts struct {
	// Total is the gross cart total before discounts
	Total float64
	// ItemCount is the number of line items
	ItemCount int64
}

var (
	condEnvOnce sync.Once
	condEnv     *cel.Env
	condEnvErr  error

	// compiled programs keyed by expression; promotions are few and
	// long-lived, so the cache is never evicted
	condProgMu   sync.RWMutex
	condPrograms = make(map[string]cel.Program)
)

func conditionEnv() (*cel.Env, error) {
	condEnvOnce.Do(func() {
		condEnv, condEnvErr = cel.NewEnv(
			cel.Variable("total", cel.DoubleType),
			cel.Variable("item_count", cel.IntType),
		)
	})
	return condEnv, condEnvErr
}

// conditionProgram compiles expr once and reuses the program on later calls.
// Failed compiles are not cached; invalid expressions are rejected at
// promotion validation, so they never reach steady-state evaluation.
func conditionProgram(expr string) (cel.Program, error) {
	condProgMu.RLock()
	prg, ok := condPrograms[expr]
	condProgMu.RUnlock()
	if ok {
		return prg, nil
	}

	env, err := conditionEnv()
	if err != nil {
		return nil, fmt.Errorf("condition env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile condition: %w", iss.Err())
	}

	prg, err = env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build condition program: %w", err)
	}

	condProgMu.Lock()
	condPrograms[expr] = prg
	condProgMu.Unlock()
	return prg, nil
}

// CheckCondition compiles expr to verify it is a valid boolean condition.
func CheckCondition(expr string) error {
	env, err := conditionEnv()
	if err != nil {
		return fmt.Errorf("condition env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return fmt.Errorf("compile condition: %w", iss.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("condition must evaluate to bool, got %s", ast.OutputType())
	}

	return nil
}

// EvaluateCondition evaluates expr against the cart facts.
// An empty expression is unconditionally true.
func EvaluateCondition(expr string, facts CartFacts) (bool, error) {
	if expr == "" {
		return true, nil
	}

	prg, err := conditionProgram(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{
		"total":      facts.Total,
		"item_count": facts.ItemCount,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate condition: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition returned %T, expected bool", out.Value())
	}

	return result, nil
}

package filter

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/enrichr/store"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// Compile compiles an expression into an executable filter.
//
// Expressions see every record field by its JSON name (titulo, year, tmdb_rating, ...),
// plus slug, enriched and the helper functions below. Missing fields are nil.
//
// The helpers hasText, hasPrefix and hasSuffix compare case-insensitively. The
// language's own contains, startsWith and endsWith are infix operators and stay
// case-sensitive, e.g. `titulo startsWith "El "`.
func Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	// Compile with static environment for validation
	program, err := expr.Compile(expression,
		expr.Env(createHelperFunctions()),
		expr.AllowUndefinedVariables(), // Allow record fields
		expr.AsBool(),                  // Ensure boolean result
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	return &exprFilter{
		expression: expression,
		program:    program,
	}, nil
}

// Evaluate evaluates the filter against a record
func (f *exprFilter) Evaluate(rec *store.Record) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(rec))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Slug:       rec.Slug,
			Reason:     "failed to run expression",
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

// addHelperFunctions adds all helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// String helpers
	env["hasText"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(rec *store.Record) map[string]any {
	env := rec.Values()

	// Record fields never shadow the helpers
	addHelperFunctions(env)

	env["slug"] = rec.Slug
	env["titulo"] = rec.Titulo
	env["enriched"] = rec.Enriched()

	return env
}

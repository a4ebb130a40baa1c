package policyopa

import "github.com/open-policy-agent/opa/ast"

// Admission rules only inspect the claim itself, so the evaluator keeps a
// small builtin surface: string and collection helpers plus comparisons.
// Anything that reaches outside the input (http.send, opa.runtime, time)
// stays out.
var allowedBuiltins = map[string]struct{}{
	"abs":          {},
	"assign":       {},
	"concat":       {},
	"contains":     {},
	"count":        {},
	"endswith":     {},
	"eq":           {},
	"equal":        {},
	"gt":           {},
	"gte":          {},
	"json.marshal": {},
	"lower":        {},
	"lt":           {},
	"lte":          {},
	"max":          {},
	"min":          {},
	"neq":          {},
	"object.get":   {},
	"regex.match":  {},
	"replace":      {},
	"sort":         {},
	"split":        {},
	"sprintf":      {},
	"startswith":   {},
	"substring":    {},
	"sum":          {},
	"trim":         {},
	"trim_left":    {},
	"trim_right":   {},
	"upper":        {},
}

func filterBuiltins(builtins []*ast.Builtin) []*ast.Builtin {
	kept := make([]*ast.Builtin, 0, len(builtins))
	for _, builtin := range builtins {
		if _, ok := allowedBuiltins[builtin.Name]; ok {
			kept = append(kept, builtin)
		}
	}
	return kept
}

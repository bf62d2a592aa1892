// Criteria-to-SQL-predicate translation for the load protocol's batch path.
package sqlite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// predicateOps whitelists the comparison operators accepted in a Cond.
var predicateOps = map[string]string{
	"=":    "=",
	"!=":   "!=",
	"<":    "<",
	"<=":   "<=",
	">":    ">",
	">=":   ">=",
	"like": "LIKE",
	"in":   "IN",
}

// ToPredicate translates criteria into a parameterized SQL predicate.
// Column names are emitted in sorted order so the generated SQL is
// deterministic. An empty criteria yields an empty predicate. The caller is
// responsible for validating column names against the table's schema.
func ToPredicate(criteria types.Criteria) (string, []any, error) {
	if len(criteria) == 0 {
		return "", nil, nil
	}

	names := make([]string, 0, len(criteria))
	for name := range criteria {
		names = append(names, name)
	}
	sort.Strings(names)

	var clauses []string
	var params []any
	for _, name := range names {
		clause, vals, err := clauseFor(name, criteria[name])
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		params = append(params, vals...)
	}
	return strings.Join(clauses, " AND "), params, nil
}

// clauseFor renders one criteria entry. A literal value compares with
// equality; a Cond uses its operator.
func clauseFor(name string, value any) (string, []any, error) {
	cond, ok := value.(types.Cond)
	if !ok {
		return fmt.Sprintf("%q = ?", name), []any{value}, nil
	}

	op, ok := predicateOps[strings.ToLower(cond.Op)]
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported operator %q", types.ErrInvalidCriteria, cond.Op)
	}

	if op == "IN" {
		vals, ok := cond.Value.([]any)
		if !ok || len(vals) == 0 {
			return "", nil, fmt.Errorf("%w: in operator requires a non-empty []any", types.ErrInvalidCriteria)
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
		return fmt.Sprintf("%q IN (%s)", name, marks), vals, nil
	}

	return fmt.Sprintf("%q %s ?", name, op), []any{cond.Value}, nil
}

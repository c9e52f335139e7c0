package cli

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query is a parsed jq expression for filtering command output. The
// expression is parsed once so flag errors surface before any work
// runs.
type Query struct {
	Expr  string
	query *gojq.Query
}

// ParseQuery parses a jq expression. An empty expression yields a nil
// Query, which Apply treats as identity.
func ParseQuery(expr string) (*Query, error) {
	if expr == "" {
		return nil, nil
	}
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	return &Query{Expr: expr, query: q}, nil
}

// Apply runs the query against v and returns all produced values. The
// input is round-tripped through JSON first, since jq operates on
// plain JSON values rather than Go structs.
func (q *Query) Apply(v any) ([]any, error) {
	if q == nil || q.query == nil {
		return []any{v}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal query input: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decode query input: %w", err)
	}

	var results []any
	iter := q.query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

// package opa loads and evaluates rego v1 policies that decide the prior
// validity of a sign-up
package opa

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// PreparedPolicy is a compiled policy query, safe to evaluate concurrently.
type PreparedPolicy struct {
	query rego.PreparedEvalQuery
	name  string
}

// PreparePolicy compiles policy and query once, at cold start.
func PreparePolicy(ctx context.Context, policy, query string) (*PreparedPolicy, error) {
	r := rego.New(
		rego.Query(query),
		rego.Module("signup.rego", policy),
		rego.SetRegoVersion(ast.RegoV1),
	)

	pq, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy: %w", err)
	}

	return &PreparedPolicy{query: pq, name: query}, nil
}

// LoadPolicy reads the policy at path and prepares query against it.
func LoadPolicy(ctx context.Context, path, query string) (*PreparedPolicy, error) {
	policy, err := ReadPolicy(path)
	if err != nil {
		return nil, err
	}
	return PreparePolicy(ctx, policy, query)
}

// Query returns the query the policy was prepared with.
func (p *PreparedPolicy) Query() string {
	return p.name
}

// Evaluate runs pp against input and decodes the first result into T.
func Evaluate[T any](ctx context.Context, pp *PreparedPolicy, input any) (*T, error) {
	rs, err := pp.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, fmt.Errorf("policy query %s is undefined", pp.name)
	}

	bs, err := json.Marshal(rs[0].Expressions[0].Value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy result: %w", err)
	}

	var out T
	if err := json.Unmarshal(bs, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy result: %w", err)
	}

	return &out, nil
}

func ReadPolicy(path string) (string, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read policy file: %w", err)
	}

	return string(p), nil
}

package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.smartbox.authz.allow"

// defaultRegoPolicy gates the administrative surface: only the bootstrapped
// super_admin role may approve accounts or read fleet-wide admin views.
const defaultRegoPolicy = `package smartbox.authz

default allow = false

allow if {
	input.role == "super_admin"
}
`

// OPAEvaluator evaluates admin authorization using an in-process OPA Rego
// policy, compiled once at construction.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the built-in policy and returns the evaluator.
// Returns an error if the policy does not compile.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	query, err := rego.New(
		rego.Query(policyQuery),
		rego.Module("authz.rego", defaultRegoPolicy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}
	return &OPAEvaluator{query: query}, nil
}

// Allow evaluates the policy for the given input.
func (e *OPAEvaluator) Allow(ctx context.Context, in Input) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"role":   in.Role,
		"action": in.Action,
	}))
	if err != nil {
		return false, fmt.Errorf("evaluate authz policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("authz policy returned non-boolean %T", results[0].Expressions[0].Value)
	}
	return allowed, nil
}

// HealthCheck verifies the compiled policy evaluates. Used by the health
// endpoint; does not touch the database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Allow(ctx, Input{Role: "admin", Action: "healthcheck"})
	return err
}

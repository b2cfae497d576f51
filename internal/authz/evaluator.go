// Package authz decides whether a caller's role may use the administrative
// surface. The decision is expressed as a Rego policy so the rule is explicit
// and replaceable rather than scattered through handlers.
package authz

import "context"

// Input is the policy input for one authorization decision.
type Input struct {
	// Role is the caller's role claim from the verified session token.
	Role string `json:"role"`
	// Action is the operation being attempted (e.g. "admin:list_pending").
	Action string `json:"action"`
}

// Evaluator answers admin-surface authorization questions.
type Evaluator interface {
	// Allow reports whether the caller may perform the action. A false
	// result is a policy denial, not an error; errors mean the policy
	// itself failed to evaluate.
	Allow(ctx context.Context, in Input) (bool, error)
}

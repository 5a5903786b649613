// Package authz builds the casbin enforcer that decides which roles may act
// on which resources.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"
)

// ErrInvalidPolicy is returned for a policy line that is not sub,obj,act.
var ErrInvalidPolicy = errors.New("authz: policy must be sub,obj,act")

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// DefaultPolicies grants admins every action on the manager surface and
// nothing else.
var DefaultPolicies = []string{"admin,manager,*"}

// NewEnforcer returns an in-memory enforcer loaded with policies, each written
// as "sub,obj,act". Empty input uses DefaultPolicies.
func NewEnforcer(policies []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}

	if len(policies) == 0 {
		policies = DefaultPolicies
	}

	rules := make([][]string, 0, len(policies))
	for _, line := range policies {
		rule, err := parsePolicy(line)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if _, err := e.AddPolicies(lo.UniqBy(rules, func(r []string) string {
		return strings.Join(r, ",")
	})); err != nil {
		return nil, fmt.Errorf("authz: add policies: %w", err)
	}

	return e, nil
}

func parsePolicy(line string) ([]string, error) {
	parts := lo.Map(strings.Split(line, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	if len(parts) != 3 || lo.Contains(parts, "") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, line)
	}

	return parts, nil
}

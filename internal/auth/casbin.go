package auth

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
)

// Subjects known to the policy.
const (
	Anonymous = "anonymous"
	Admin     = "admin"
)

// rbacModel grants a subject access to a path pattern and method. Roles
// inherit through g, paths use keyMatch2 and methods use regexMatch so a
// policy can list "(GET)|(POST)".
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// NewEnforcer creates and configures a new Casbin enforcer.
// Policies live in memory and are seeded by SeedDefaultPolicies.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	// keyMatch2 matches "/blog/:id" and "/static/*" style patterns.
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)

	return enforcer, nil
}

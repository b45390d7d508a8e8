package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Role names are a fixed enum; they also appear as the `role` column on
// employees and inside JWT claims.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// permission rows: role, resource, action. Department scoping for managers is
// not expressed here; services compare the resolved actor's department against
// the requester's so the policy table never has to query protected rows.
var policies = [][3]string{
	{RoleEmployee, "leave", "create"},
	{RoleEmployee, "leave", "read"},
	{RoleEmployee, "leave", "cancel"},
	{RoleEmployee, "balance", "read"},
	{RoleEmployee, "document", "create"},
	{RoleEmployee, "document", "read"},
	{RoleEmployee, "document", "delete"},
	{RoleEmployee, "leave_type", "read"},
	{RoleEmployee, "employee", "read"},
	{RoleEmployee, "department", "read"},
	{RoleEmployee, "company_document", "read"},
	{RoleEmployee, "notification", "read"},

	{RoleManager, "leave", "read_all"},
	{RoleManager, "leave", "approve"},
	{RoleManager, "balance", "read_all"},
	{RoleManager, "employee", "read_all"},

	{RoleHR, "employee", "read_all"},
	{RoleHR, "employee", "manage"},
	{RoleHR, "leave_type", "manage"},
	{RoleHR, "department", "manage"},
	{RoleHR, "company_document", "publish"},
	{RoleHR, "report", "read"},

	{RoleAdmin, "document", "manage"},
	{RoleAdmin, "leave", "delete"},
}

// role inheritance chain: admin > hr > manager > employee
var grouping = [][2]string{
	{RoleManager, RoleEmployee},
	{RoleHR, RoleManager},
	{RoleAdmin, RoleHR},
}

type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range grouping {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	return s.enforcer.Enforce(role, resource, action)
}

// ValidRole reports whether v is one of the known role names.
func ValidRole(v string) bool {
	switch v {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// Elevated reports whether the role may act across departments.
func Elevated(role string) bool {
	return role == RoleHR || role == RoleAdmin
}

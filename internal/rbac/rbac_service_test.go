package rbac_test

import (
	"testing"

	"leavehub/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func TestEnforce_PolicyMatrix(t *testing.T) {
	svc, err := rbac.NewService()
	assert.NoError(t, err)

	cases := []struct {
		name     string
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"employee creates leave", rbac.RoleEmployee, "leave", "create", true},
		{"employee reads own balance", rbac.RoleEmployee, "balance", "read", true},
		{"employee cannot approve leave", rbac.RoleEmployee, "leave", "approve", false},
		{"employee cannot read reports", rbac.RoleEmployee, "report", "read", false},
		{"employee cannot publish company documents", rbac.RoleEmployee, "company_document", "publish", false},

		{"manager approves leave", rbac.RoleManager, "leave", "approve", true},
		{"manager inherits employee leave create", rbac.RoleManager, "leave", "create", true},
		{"manager reads all balances", rbac.RoleManager, "balance", "read_all", true},
		{"manager cannot manage leave types", rbac.RoleManager, "leave_type", "manage", false},
		{"manager cannot delete leave", rbac.RoleManager, "leave", "delete", false},

		{"hr manages employees", rbac.RoleHR, "employee", "manage", true},
		{"hr inherits manager approve", rbac.RoleHR, "leave", "approve", true},
		{"hr publishes company documents", rbac.RoleHR, "company_document", "publish", true},
		{"hr reads reports", rbac.RoleHR, "report", "read", true},
		{"hr cannot delete leave", rbac.RoleHR, "leave", "delete", false},

		{"admin deletes leave", rbac.RoleAdmin, "leave", "delete", true},
		{"admin inherits hr report read", rbac.RoleAdmin, "report", "read", true},
		{"admin inherits employee notification read", rbac.RoleAdmin, "notification", "read", true},

		{"unknown role denied", "intern", "leave", "read", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := svc.Enforce(tc.role, tc.resource, tc.action)
			assert.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, rbac.ValidRole(rbac.RoleEmployee))
	assert.True(t, rbac.ValidRole(rbac.RoleAdmin))
	assert.False(t, rbac.ValidRole("superuser"))
	assert.False(t, rbac.ValidRole(""))
}

func TestElevated(t *testing.T) {
	assert.True(t, rbac.Elevated(rbac.RoleHR))
	assert.True(t, rbac.Elevated(rbac.RoleAdmin))
	assert.False(t, rbac.Elevated(rbac.RoleManager))
	assert.False(t, rbac.Elevated(rbac.RoleEmployee))
}

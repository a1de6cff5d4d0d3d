package retail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanExecuteDirectly(t *testing.T) {
	open := PolicyFlags{
		AllowAdminDeleteSales:   true,
		AllowAdminEditSales:     true,
		AllowAdminEditInventory: true,
	}
	strict := PolicyFlags{}

	cases := []struct {
		name   string
		flags  PolicyFlags
		role   Role
		action Action
		want   bool
	}{
		{"owner closes", strict, RoleOwner, ActionCloseDay, true},
		{"owner deletes", strict, RoleOwner, ActionDeleteSale, true},
		{"owner edits inventory", strict, RoleOwner, ActionEditInventory, true},
		{"admin closes by default", strict, RoleAdmin, ActionCloseDay, true},
		{"admin resolves by default", strict, RoleAdmin, ActionResolve, true},
		{"admin delete gated off", strict, RoleAdmin, ActionDeleteSale, false},
		{"admin delete gated on", open, RoleAdmin, ActionDeleteSale, true},
		{"admin edit sales gated off", strict, RoleAdmin, ActionEditSale, false},
		{"admin edit sales gated on", open, RoleAdmin, ActionEditSale, true},
		{"admin edit inventory gated off", strict, RoleAdmin, ActionEditInventory, false},
		{"admin edit inventory gated on", open, RoleAdmin, ActionEditInventory, true},
		{"seller never closes", open, RoleSeller, ActionCloseDay, false},
		{"seller never deletes via policy", open, RoleSeller, ActionDeleteSale, false},
		{"seller never resolves", open, RoleSeller, ActionResolve, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.flags.CanExecuteDirectly(tc.role, tc.action))
		})
	}
}

func TestPrivileged(t *testing.T) {
	f := PolicyFlags{}
	assert.True(t, f.Privileged(RoleOwner))
	assert.True(t, f.Privileged(RoleAdmin))
	assert.False(t, f.Privileged(RoleSeller))
}

package retail

// Action is a policy-gated operation kind.
type Action string

const (
	ActionCloseDay      Action = "close_day"
	ActionDeleteSale    Action = "delete_sale"
	ActionEditSale      Action = "edit_sale"
	ActionEditInventory Action = "edit_inventory"
	ActionResolve       Action = "resolve_notification"
)

// PolicyFlags are the administrator-toggled switches that widen the admin
// role's direct capabilities. Injected configuration, not snapshot state.
type PolicyFlags struct {
	AllowAdminDeleteSales   bool `yaml:"allow_admin_delete_sales" json:"allow_admin_delete_sales"`
	AllowAdminEditSales     bool `yaml:"allow_admin_edit_sales" json:"allow_admin_edit_sales"`
	AllowAdminEditInventory bool `yaml:"allow_admin_edit_inventory" json:"allow_admin_edit_inventory"`
}

// CanExecuteDirectly is the single capability table every operation
// consults. Owner does everything directly and never generates
// notifications; admin closes directly and gains the rest per flag;
// seller is never direct here — the ledger separately allows a seller to
// delete or edit their own registered sale.
func (f PolicyFlags) CanExecuteDirectly(role Role, action Action) bool {
	switch role {
	case RoleOwner:
		return true
	case RoleAdmin:
		switch action {
		case ActionCloseDay, ActionResolve:
			return true
		case ActionDeleteSale:
			return f.AllowAdminDeleteSales
		case ActionEditSale:
			return f.AllowAdminEditSales
		case ActionEditInventory:
			return f.AllowAdminEditInventory
		}
	}
	return false
}

// Privileged reports whether the role closes sales directly at creation
// time: a sale created by a privileged actor is born closed.
func (f PolicyFlags) Privileged(role Role) bool {
	return role == RoleOwner || role == RoleAdmin
}

package authz

// Resource and action literals used across the permission table, the
// navigation list and the route guards. Checks are exact and
// case-sensitive, so handlers must use these constants rather than ad hoc
// strings.
const (
	ResourceProducts = "products"
	ResourceOrders   = "orders"
	ResourceUsers    = "users"
	ResourceReports  = "reports"
	ResourceSettings = "settings"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// Permission is a (resource, action) pair.
type Permission struct {
	Resource string
	Action   string
}

// Table maps each role to the set of permissions it may exercise. The
// per-role sets are curated independently; nothing enforces that ADMIN is a
// superset of MANAGER, although the default table keeps it that way for
// shared resources.
type Table map[Role]map[Permission]struct{}

// DefaultTable builds the storefront permission table. It is constructed
// once at wiring time and never mutated afterwards, so concurrent reads
// from request handlers need no synchronization.
func DefaultTable() Table {
	grants := map[Role][]Permission{
		RoleUser: {
			{ResourceProducts, ActionRead},
			{ResourceOrders, ActionCreate},
			{ResourceOrders, ActionRead},
		},
		RoleManager: {
			{ResourceProducts, ActionRead},
			{ResourceProducts, ActionCreate},
			{ResourceProducts, ActionUpdate},
			{ResourceProducts, ActionDelete},
			{ResourceOrders, ActionCreate},
			{ResourceOrders, ActionRead},
			{ResourceOrders, ActionUpdate},
			{ResourceReports, ActionRead},
		},
		RoleAdmin: {
			{ResourceProducts, ActionRead},
			{ResourceProducts, ActionCreate},
			{ResourceProducts, ActionUpdate},
			{ResourceProducts, ActionDelete},
			{ResourceOrders, ActionCreate},
			{ResourceOrders, ActionRead},
			{ResourceOrders, ActionUpdate},
			{ResourceOrders, ActionDelete},
			{ResourceReports, ActionRead},
			{ResourceUsers, ActionRead},
			{ResourceUsers, ActionUpdate},
			{ResourceUsers, ActionDelete},
			{ResourceUsers, ActionManage},
			{ResourceSettings, ActionManage},
		},
	}

	table := make(Table, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		table[role] = set
	}
	return table
}

// Checker answers permission and role questions against an immutable table.
// It is injected into the route guards so authorization stays testable
// without a running router.
type Checker struct {
	table Table
}

func NewChecker(table Table) *Checker {
	return &Checker{table: table}
}

// HasPermission reports whether role may perform action on resource.
// Unknown roles have an empty permission set and always fail.
func (c *Checker) HasPermission(role Role, resource, action string) bool {
	set, ok := c.table[role]
	if !ok {
		return false
	}
	_, ok = set[Permission{Resource: resource, Action: action}]
	return ok
}

// HasRoleOrHigher defers to the package-level hierarchy check; exposed on
// Checker so guards depend on a single authorizer.
func (c *Checker) HasRoleOrHigher(actual, required Role) bool {
	return HasRoleOrHigher(actual, required)
}

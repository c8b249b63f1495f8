package authz

// NavItem is one entry in the admin navigation. The list is static; a
// role-specific view is derived per request by AccessibleNavItems.
type NavItem struct {
	Name       string      `json:"name"`
	Href       string      `json:"href"`
	Icon       string      `json:"icon"`
	Permission *Permission `json:"-"`
	AdminOnly  bool        `json:"-"`
}

// defaultNavItems lists the admin menu in display order. Every item
// requires at least a MANAGER-level permission, so plain users see an
// empty menu.
var defaultNavItems = []NavItem{
	{Name: "Dashboard", Href: "/admin", Icon: "home", Permission: &Permission{ResourceReports, ActionRead}},
	{Name: "Products", Href: "/admin/products", Icon: "package", Permission: &Permission{ResourceProducts, ActionCreate}},
	{Name: "Orders", Href: "/admin/orders", Icon: "shopping-cart", Permission: &Permission{ResourceOrders, ActionUpdate}},
	{Name: "Customers", Href: "/admin/customers", Icon: "users", Permission: &Permission{ResourceUsers, ActionRead}},
	{Name: "Reports", Href: "/admin/reports", Icon: "bar-chart", Permission: &Permission{ResourceReports, ActionRead}},
	{Name: "Settings", Href: "/admin/settings", Icon: "settings", Permission: &Permission{ResourceSettings, ActionManage}, AdminOnly: true},
}

// NavItems returns the full static navigation list.
func NavItems() []NavItem {
	return defaultNavItems
}

// AccessibleNavItems filters the static list down to what role may see,
// preserving the source order. AdminOnly items are excluded for everyone
// below ADMIN regardless of permissions.
func (c *Checker) AccessibleNavItems(role Role) []NavItem {
	out := make([]NavItem, 0, len(defaultNavItems))
	for _, item := range defaultNavItems {
		if item.AdminOnly && role != RoleAdmin {
			continue
		}
		if item.Permission != nil && !c.HasPermission(role, item.Permission.Resource, item.Permission.Action) {
			continue
		}
		out = append(out, item)
	}
	return out
}

package authz

import "testing"

func TestAccessibleNavItemsAdminSeesAll(t *testing.T) {
	c := newTestChecker()
	items := c.AccessibleNavItems(RoleAdmin)
	if len(items) != len(NavItems()) {
		t.Fatalf("ADMIN should see all %d items, got %d", len(NavItems()), len(items))
	}
}

func TestAccessibleNavItemsUserSeesNone(t *testing.T) {
	c := newTestChecker()
	if items := c.AccessibleNavItems(RoleUser); len(items) != 0 {
		t.Fatalf("USER should see no admin navigation, got %d items", len(items))
	}
}

func TestAccessibleNavItemsManagerView(t *testing.T) {
	c := newTestChecker()
	items := c.AccessibleNavItems(RoleManager)
	for _, item := range items {
		if item.AdminOnly {
			t.Fatalf("MANAGER must not see admin-only item %q", item.Name)
		}
		if item.Name == "Customers" {
			t.Fatal("MANAGER lacks users:read and must not see Customers")
		}
	}
	if len(items) == 0 {
		t.Fatal("MANAGER should see at least the dashboard")
	}
}

func TestAccessibleNavItemsPreservesOrder(t *testing.T) {
	c := newTestChecker()
	all := NavItems()
	items := c.AccessibleNavItems(RoleManager)

	idx := 0
	for _, item := range items {
		found := false
		for ; idx < len(all); idx++ {
			if all[idx].Name == item.Name {
				found = true
				idx++
				break
			}
		}
		if !found {
			t.Fatalf("item %q out of source order", item.Name)
		}
	}
}

func TestAccessibleNavItemsUnknownRole(t *testing.T) {
	c := newTestChecker()
	if items := c.AccessibleNavItems(Role("GUEST")); len(items) != 0 {
		t.Fatalf("unknown role should see nothing, got %d items", len(items))
	}
}

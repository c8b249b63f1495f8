package authz

import "testing"

func newTestChecker() *Checker { return NewChecker(DefaultTable()) }

func TestHasPermissionMembership(t *testing.T) {
	c := newTestChecker()

	if !c.HasPermission(RoleUser, ResourceProducts, ActionRead) {
		t.Fatal("USER should read products")
	}
	if c.HasPermission(RoleUser, ResourceProducts, ActionCreate) {
		t.Fatal("USER must not create products")
	}
	if c.HasPermission(RoleManager, ResourceUsers, ActionRead) {
		t.Fatal("MANAGER must not read users")
	}
	if !c.HasPermission(RoleManager, ResourceReports, ActionRead) {
		t.Fatal("MANAGER should read reports")
	}
	if !c.HasPermission(RoleAdmin, ResourceUsers, ActionManage) {
		t.Fatal("ADMIN should manage users")
	}
}

func TestHasPermissionUnlistedPairsAreDenied(t *testing.T) {
	c := newTestChecker()
	table := DefaultTable()
	roles := []Role{RoleUser, RoleManager, RoleAdmin}
	resources := []string{ResourceProducts, ResourceOrders, ResourceUsers, ResourceReports, ResourceSettings, "webhooks"}
	actions := []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionManage, "export"}

	for _, role := range roles {
		for _, res := range resources {
			for _, act := range actions {
				_, listed := table[role][Permission{Resource: res, Action: act}]
				if got := c.HasPermission(role, res, act); got != listed {
					t.Fatalf("HasPermission(%s, %s, %s) = %v, table says %v", role, res, act, got, listed)
				}
			}
		}
	}
}

func TestHasPermissionUnknownRoleFailsClosed(t *testing.T) {
	c := newTestChecker()
	if c.HasPermission(Role("GUEST"), ResourceProducts, ActionRead) {
		t.Fatal("unknown role must have an empty permission set")
	}
}

func TestHasPermissionIsCaseSensitive(t *testing.T) {
	c := newTestChecker()
	if c.HasPermission(RoleAdmin, "Products", ActionRead) {
		t.Fatal("resource comparison must be exact")
	}
	if c.HasPermission(RoleAdmin, ResourceProducts, "READ") {
		t.Fatal("action comparison must be exact")
	}
}

func TestHasPermissionNoWildcards(t *testing.T) {
	c := newTestChecker()
	if c.HasPermission(RoleAdmin, ResourceProducts, "*") {
		t.Fatal("wildcard actions are not supported")
	}
	if c.HasPermission(RoleAdmin, "*", ActionRead) {
		t.Fatal("wildcard resources are not supported")
	}
}

func TestHasPermissionIdempotent(t *testing.T) {
	c := newTestChecker()
	first := c.HasPermission(RoleManager, ResourceProducts, ActionUpdate)
	for i := 0; i < 10; i++ {
		if c.HasPermission(RoleManager, ResourceProducts, ActionUpdate) != first {
			t.Fatal("HasPermission must be pure")
		}
	}
}

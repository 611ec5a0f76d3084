package models

import "testing"

func TestRoleHelpers(t *testing.T) {
	tests := []struct {
		role      Role
		canEdit   bool
		canShare  bool
		invitable bool
	}{
		{RoleOwner, true, true, false},
		{RoleAdmin, true, true, true},
		{RoleEditor, true, false, true},
		{RoleViewer, false, false, true},
	}
	for _, tt := range tests {
		if got := tt.role.CanEdit(); got != tt.canEdit {
			t.Errorf("%s.CanEdit() = %v, want %v", tt.role, got, tt.canEdit)
		}
		if got := tt.role.CanShare(); got != tt.canShare {
			t.Errorf("%s.CanShare() = %v, want %v", tt.role, got, tt.canShare)
		}
		if !ValidRole(string(tt.role)) {
			t.Errorf("ValidRole(%q) = false", tt.role)
		}
		if got := InvitableRole(string(tt.role)); got != tt.invitable {
			t.Errorf("InvitableRole(%q) = %v, want %v", tt.role, got, tt.invitable)
		}
	}
	if ValidRole("superuser") {
		t.Error("unknown role accepted")
	}
	if InvitableRole("owner") {
		t.Error("ownership must not be grantable by invitation")
	}
}

func TestAccountOverQuota(t *testing.T) {
	a := &Account{ListQuota: 3, ListCount: 2}
	if a.OverQuota() {
		t.Error("under quota reported as over")
	}
	a.ListCount = 3
	if !a.OverQuota() {
		t.Error("at quota must count as over")
	}
	unlimited := &Account{ListQuota: 0, ListCount: 100}
	if unlimited.OverQuota() {
		t.Error("zero quota means unlimited")
	}
}

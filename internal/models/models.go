package models

import (
	"time"
)

// Role represents a user's permission level on a list.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanEdit reports whether the role may mutate list contents.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleEditor
}

// CanShare reports whether the role may manage permissions and invitations.
func (r Role) CanShare() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ValidRole checks a role string against the known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// InvitableRole checks a role string against the roles an invitation may
// grant. Ownership is never granted by invitation.
func InvitableRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Plan represents the account subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPlus Plan = "plus"
)

// Provenance marks whether an entity's fields reflect confirmed remote state
// or a pending local edit awaiting reconciliation.
type Provenance int

const (
	Confirmed Provenance = iota
	Pending
)

// List is a shareable todo list (one document in the sync backend).
type List struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	Role      Role       `json:"role"`
	ItemCount int        `json:"item_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Item is a single todo entry within a list.
type Item struct {
	ID        string     `json:"id"`
	ListID    string     `json:"list_id"`
	Title     string     `json:"title"`
	Note      string     `json:"note,omitempty"`
	Done      bool       `json:"done"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Permission grants a user a role on a list.
type Permission struct {
	ListID    string    `json:"list_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	GrantedBy string    `json:"granted_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Invitation is a pending, unaccepted grant of a role to an email address.
type Invitation struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Account describes the authenticated user and their plan limits.
type Account struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Plan      Plan   `json:"plan"`
	ListQuota int    `json:"list_quota"` // 0 means unlimited
	ListCount int    `json:"list_count"`
}

// OverQuota reports whether creating another list would exceed the plan.
func (a *Account) OverQuota() bool {
	return a.ListQuota > 0 && a.ListCount >= a.ListQuota
}

// Config holds client configuration persisted under the listd dotdir.
type Config struct {
	ServerURL   string `json:"server_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	DefaultList string `json:"default_list,omitempty"`
}

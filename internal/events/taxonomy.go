package events

import "strings"

// EntityType represents the canonical entity collections in the sync system.
type EntityType string

// Action represents the canonical change actions for notifications.
type Action string

// Canonical entity types
const (
	EntityLists       EntityType = "lists"
	EntityItems       EntityType = "items"
	EntityPermissions EntityType = "permissions"
	EntityInvitations EntityType = "invitations"
)

// Canonical actions
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// NormalizeEntityType normalizes an entity type string to its canonical form.
// Handles both singular and plural forms. Returns false for unknown types.
func NormalizeEntityType(entityType string) (EntityType, bool) {
	switch strings.ToLower(entityType) {
	case "list", "lists":
		return EntityLists, true
	case "item", "items", "todo", "todos":
		return EntityItems, true
	case "permission", "permissions", "member", "members":
		return EntityPermissions, true
	case "invitation", "invitations", "invite", "invites":
		return EntityInvitations, true
	default:
		return "", false
	}
}

// NormalizeAction normalizes an action string to its canonical form.
// Returns false for actions that do not affect local state (the listener
// ignores those rather than reloading).
func NormalizeAction(action string) (Action, bool) {
	switch strings.ToLower(action) {
	case "create", "created":
		return ActionCreated, true
	case "update", "updated", "rename", "reorder", "toggle":
		return ActionUpdated, true
	case "delete", "deleted", "remove", "removed":
		return ActionDeleted, true
	default:
		return "", false
	}
}

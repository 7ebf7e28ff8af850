package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeScopeAssigned       = "scope.assigned"
	EventTypeRoleBindingsChanged = "role.bindings_changed"
)

// ScopeAssignedEvent fires when a user's scope assignment is created or
// replaced. Subscribers use it to drop stale cached scope contexts.
type ScopeAssignedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Scope  string `json:"scope"`
}

func NewScopeAssignedEvent(userID int64, scope string) *ScopeAssignedEvent {
	return &ScopeAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeScopeAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"scope":   scope,
			},
		},
		UserID: userID,
		Scope:  scope,
	}
}

// RoleBindingsChangedEvent fires after assign/unassign/reconcile mutates a
// role's permission set.
type RoleBindingsChangedEvent struct {
	BaseEvent
	RoleID    int64 `json:"role_id"`
	Added     int   `json:"added"`
	Removed   int   `json:"removed"`
	Unchanged int   `json:"unchanged"`
}

func NewRoleBindingsChangedEvent(roleID int64, added, removed, unchanged int) *RoleBindingsChangedEvent {
	return &RoleBindingsChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRoleBindingsChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"role_id":   roleID,
				"added":     added,
				"removed":   removed,
				"unchanged": unchanged,
			},
		},
		RoleID:    roleID,
		Added:     added,
		Removed:   removed,
		Unchanged: unchanged,
	}
}

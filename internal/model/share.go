package model

import (
	"encoding/json"
	"time"
)

type ResourceType string

const (
	ResourceFile   ResourceType = "file"
	ResourceFolder ResourceType = "folder"
)

func (t ResourceType) Valid() bool {
	return t == ResourceFile || t == ResourceFolder
}

// Role is the access level a principal holds on a resource.
// Ordered: none < viewer < editor < owner.
type Role string

const (
	RoleNone   Role = "none"
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleNone:   0,
	RoleViewer: 1,
	RoleEditor: 2,
	RoleOwner:  3,
}

// AtLeast reports whether r grants everything want grants
func (r Role) AtLeast(want Role) bool {
	return roleRank[r] >= roleRank[want]
}

// Grantable reports whether the role can be handed out through a share
func (r Role) Grantable() bool {
	return r == RoleViewer || r == RoleEditor
}

// UserShare is a direct grant from a resource owner to another user.
type UserShare struct {
	ID            string       `db:"id" json:"id"`
	ResourceType  ResourceType `db:"resource_type" json:"resource_type"`
	ResourceID    string       `db:"resource_id" json:"resource_id"`
	GranteeUserID string       `db:"grantee_user_id" json:"grantee_user_id"`
	Role          Role         `db:"role" json:"role"`
	CreatedBy     string       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

// LinkShare is a public, token-addressed grant. Links only ever grant viewer.
type LinkShare struct {
	ID           string       `db:"id"`
	ResourceType ResourceType `db:"resource_type"`
	ResourceID   string       `db:"resource_id"`
	Token        string       `db:"token"`
	Role         Role         `db:"role"`
	PasswordHash *string      `db:"password_hash"`
	ExpiresAt    *time.Time   `db:"expires_at"`
	CreatedBy    string       `db:"created_by"`
	CreatedAt    time.Time    `db:"created_at"`
}

func (l *LinkShare) HasPassword() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

func (l *LinkShare) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// MarshalJSON never exposes the password hash.
func (l LinkShare) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           string       `json:"id"`
		ResourceType ResourceType `json:"resource_type"`
		ResourceID   string       `json:"resource_id"`
		Token        string       `json:"token"`
		Role         Role         `json:"role"`
		HasPassword  bool         `json:"has_password"`
		ExpiresAt    *time.Time   `json:"expires_at"`
		CreatedBy    string       `json:"created_by"`
		CreatedAt    time.Time    `json:"created_at"`
	}{
		ID:           l.ID,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		Token:        l.Token,
		Role:         l.Role,
		HasPassword:  l.HasPassword(),
		ExpiresAt:    l.ExpiresAt,
		CreatedBy:    l.CreatedBy,
		CreatedAt:    l.CreatedAt,
	})
}

// UserShareWithGrantee is a share row joined with the grantee's identity.
type UserShareWithGrantee struct {
	UserShare
	GranteeEmail string `db:"grantee_email" json:"grantee_email"`
	GranteeName  string `db:"grantee_name" json:"grantee_name"`
}

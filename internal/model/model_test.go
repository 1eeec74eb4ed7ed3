package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleEditor))
	assert.True(t, RoleEditor.AtLeast(RoleViewer))
	assert.True(t, RoleViewer.AtLeast(RoleViewer))
	assert.False(t, RoleViewer.AtLeast(RoleEditor))
	assert.False(t, RoleEditor.AtLeast(RoleOwner))
	assert.False(t, RoleNone.AtLeast(RoleViewer))

	assert.True(t, RoleViewer.Grantable())
	assert.True(t, RoleEditor.Grantable())
	assert.False(t, RoleOwner.Grantable())
	assert.False(t, Role("admin").Grantable())
}

func TestResourceAccessors(t *testing.T) {
	parent := "p1"
	folder := FolderResource(&Folder{ID: "f1", Name: "Docs", OwnerID: "u1", ParentID: &parent})
	assert.Equal(t, "f1", folder.ID())
	assert.Equal(t, "Docs", folder.Name())
	assert.Equal(t, "u1", folder.OwnerID())
	assert.Equal(t, &parent, folder.ParentID())

	file := FileResource(&File{ID: "x1", Name: "a.txt", OwnerID: "u2", IsDeleted: true})
	assert.Equal(t, "x1", file.ID())
	assert.Equal(t, "u2", file.OwnerID())
	assert.Nil(t, file.ParentID())
	assert.True(t, file.IsDeleted())

	assert.Panics(t, func() { Resource{Type: "blob"}.ID() })
}

func TestLinkShareJSONHidesHash(t *testing.T) {
	hash := "$2a$12$secret"
	link := LinkShare{ID: "l1", Token: "tok", Role: RoleViewer, PasswordHash: &hash}

	data, err := json.Marshal(link)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"has_password":true`)
}

func TestLinkShareIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&LinkShare{}).IsExpired(now))
	assert.True(t, (&LinkShare{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&LinkShare{ExpiresAt: &future}).IsExpired(now))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/drive/internal/model"
)

func TestAccessCheck(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")
	u3 := e.user(t, "u3")

	docs := e.folder(t, u1, "Docs", nil)
	inner := e.file(t, u1, "inner.txt", docs)

	res, err := e.access.Load(ctx, model.ResourceFolder, docs.ID)
	require.NoError(t, err)

	role, err := e.access.Check(ctx, u1.ID, res)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, role)

	role, err = e.access.Check(ctx, u2.ID, res)
	require.NoError(t, err)
	assert.Equal(t, model.RoleNone, role)

	_, err = e.shares.ShareWithUser(ctx, u1.ID, ShareRequest{
		ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: u2.ID, Role: model.RoleEditor,
	})
	require.NoError(t, err)

	role, err = e.access.Check(ctx, u2.ID, res)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, role)

	role, err = e.access.Check(ctx, u3.ID, res)
	require.NoError(t, err)
	assert.Equal(t, model.RoleNone, role)

	// No inheritance into the folder's contents
	_, err = e.access.Require(ctx, u2.ID, model.ResourceFile, inner.ID, model.RoleViewer)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.access.Require(ctx, u2.ID, model.ResourceFolder, docs.ID, model.RoleOwner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.access.Require(ctx, u2.ID, model.ResourceFolder, docs.ID, model.RoleViewer)
	assert.NoError(t, err)

	_, err = e.access.Load(ctx, model.ResourceType("album"), docs.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestShareWithUser_Upsert(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")

	docs := e.folder(t, u1, "Docs", nil)

	first, err := e.shares.ShareWithUser(ctx, u1.ID, ShareRequest{
		ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: u2.ID, Role: model.RoleViewer,
	})
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := e.shares.ShareWithUser(ctx, u1.ID, ShareRequest{
		ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeEmail: "U2@Example.com", Role: model.RoleEditor,
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Share.ID, second.Share.ID)
	assert.Equal(t, model.RoleEditor, second.Share.Role)

	list, err := e.shares.ListShares(ctx, u1.ID, model.ResourceFolder, docs.ID)
	require.NoError(t, err)
	require.Len(t, list.UserShares, 1, "upsert never duplicates a grant")
	assert.Equal(t, "u2@example.com", list.UserShares[0].GranteeEmail)
	assert.Empty(t, list.LinkShares)
}

func TestShareWithUser_Errors(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")

	docs := e.folder(t, u1, "Docs", nil)

	tests := []struct {
		name    string
		actor   string
		req     ShareRequest
		wantErr error
	}{
		{"owner role not grantable", u1.ID, ShareRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: u2.ID, Role: model.RoleOwner}, ErrValidation},
		{"bad type", u1.ID, ShareRequest{ResourceType: "album", ResourceID: docs.ID, GranteeUserID: u2.ID, Role: model.RoleViewer}, ErrValidation},
		{"no grantee", u1.ID, ShareRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID, Role: model.RoleViewer}, ErrValidation},
		{"self", u1.ID, ShareRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: u1.ID, Role: model.RoleViewer}, ErrValidation},
		{"unknown grantee", u1.ID, ShareRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: "ghost", Role: model.RoleViewer}, ErrNotFound},
		{"not owner", u2.ID, ShareRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: u1.ID, Role: model.RoleViewer}, ErrNotFound},
		{"missing resource", u1.ID, ShareRequest{ResourceType: model.ResourceFile, ResourceID: docs.ID, GranteeUserID: u2.ID, Role: model.RoleViewer}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.shares.ShareWithUser(ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")

	f := e.file(t, u1, "a.txt", nil)
	result, err := e.shares.ShareWithUser(ctx, u1.ID, ShareRequest{
		ResourceType: model.ResourceFile, ResourceID: f.ID, GranteeUserID: u2.ID, Role: model.RoleViewer,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, e.shares.Revoke(ctx, u2.ID, result.Share.ID), ErrForbidden, "grantees cannot revoke")
	assert.ErrorIs(t, e.shares.Revoke(ctx, u1.ID, "missing"), ErrNotFound)

	require.NoError(t, e.shares.Revoke(ctx, u1.ID, result.Share.ID))
	assert.ErrorIs(t, e.shares.Revoke(ctx, u1.ID, result.Share.ID), ErrNotFound)

	_, err = e.files.Download(ctx, u2.ID, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSharedWithMe(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")

	docs := e.folder(t, u1, "Docs", nil)
	f := e.file(t, u1, "a.txt", nil)

	for _, req := range []ShareRequest{
		{ResourceType: model.ResourceFolder, ResourceID: docs.ID, GranteeUserID: u2.ID, Role: model.RoleViewer},
		{ResourceType: model.ResourceFile, ResourceID: f.ID, GranteeUserID: u2.ID, Role: model.RoleEditor},
	} {
		_, err := e.shares.ShareWithUser(ctx, u1.ID, req)
		require.NoError(t, err)
	}

	shared, err := e.shares.SharedWithMe(ctx, u2.ID)
	require.NoError(t, err)
	assert.Len(t, shared, 2)

	require.NoError(t, e.hierarchy.Delete(ctx, u1.ID, model.ResourceFile, f.ID))

	shared, err = e.shares.SharedWithMe(ctx, u2.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, docs.ID, shared[0].ID())
	assert.Equal(t, model.RoleViewer, shared[0].Role)

	mine, err := e.shares.SharedWithMe(ctx, u1.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

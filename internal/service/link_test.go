package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/drive/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestCreateLink(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")
	f1 := e.file(t, u1, "f1.txt", nil)

	result, err := e.links.Create(ctx, u1.ID, LinkRequest{
		ResourceType: model.ResourceFile, ResourceID: f1.ID, Password: ptr("hunter22"),
	})
	require.NoError(t, err)

	link := result.Link
	assert.Equal(t, model.RoleViewer, link.Role)
	assert.Len(t, link.Token, 64, "32 random bytes, hex encoded")
	assert.Equal(t, "https://drive.example.com/link/"+link.Token, result.URL)
	require.NotNil(t, link.PasswordHash)
	assert.NotContains(t, *link.PasswordHash, "hunter22")
	assert.True(t, strings.HasPrefix(*link.PasswordHash, "$2"))

	other, err := e.links.Create(ctx, u1.ID, LinkRequest{ResourceType: model.ResourceFile, ResourceID: f1.ID})
	require.NoError(t, err)
	assert.NotEqual(t, link.Token, other.Link.Token)
	assert.False(t, other.Link.HasPassword())

	_, err = e.links.Create(ctx, u1.ID, LinkRequest{ResourceType: model.ResourceFile, ResourceID: f1.ID, Password: ptr("abc")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.links.Create(ctx, u2.ID, LinkRequest{ResourceType: model.ResourceFile, ResourceID: f1.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := e.shares.ListShares(ctx, u1.ID, model.ResourceFile, f1.ID)
	require.NoError(t, err)
	assert.Len(t, list.LinkShares, 2)
}

func TestResolveLink_Expired(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	f1 := e.file(t, u1, "f1.txt", nil)

	result, err := e.links.Create(ctx, u1.ID, LinkRequest{
		ResourceType: model.ResourceFile,
		ResourceID:   f1.ID,
		ExpiresAt:    ptr(e.clock.Now().Add(-time.Hour)),
		Password:     ptr("secret"),
	})
	require.NoError(t, err)

	// Expiry wins over every password outcome
	for _, password := range []string{"", "wrong", "secret"} {
		_, err := e.links.Resolve(ctx, result.Link.Token, password)
		assert.ErrorIs(t, err, ErrExpired, "password %q", password)
	}
}

func TestResolveLink_Order(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	f1 := e.file(t, u1, "f1.txt", nil)

	result, err := e.links.Create(ctx, u1.ID, LinkRequest{
		ResourceType: model.ResourceFile,
		ResourceID:   f1.ID,
		ExpiresAt:    ptr(e.clock.Now().Add(time.Hour)),
		Password:     ptr("secret"),
	})
	require.NoError(t, err)
	token := result.Link.Token

	_, err = e.links.Resolve(ctx, "unknown", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.links.Resolve(ctx, token, "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = e.links.Resolve(ctx, token, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	resolved, err := e.links.Resolve(ctx, token, "secret")
	require.NoError(t, err)
	assert.Equal(t, f1.ID, resolved.Resource.ID())
	assert.Equal(t, model.RoleViewer, resolved.Role)
	assert.Contains(t, resolved.DownloadURL, f1.StorageKey)

	e.clock.Advance(2 * time.Hour)
	_, err = e.links.Resolve(ctx, token, "secret")
	assert.ErrorIs(t, err, ErrExpired, "expiry is read at resolution time")
}

func TestResolveLink_DeletedResource(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	docs := e.folder(t, u1, "Docs", nil)

	result, err := e.links.Create(ctx, u1.ID, LinkRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID})
	require.NoError(t, err)

	resolved, err := e.links.Resolve(ctx, result.Link.Token, "")
	require.NoError(t, err)
	assert.Empty(t, resolved.DownloadURL, "folders have nothing to download")

	require.NoError(t, e.hierarchy.Delete(ctx, u1.ID, model.ResourceFolder, docs.ID))

	_, err = e.links.Resolve(ctx, result.Link.Token, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeLink(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")
	docs := e.folder(t, u1, "Docs", nil)

	result, err := e.links.Create(ctx, u1.ID, LinkRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, e.links.Revoke(ctx, u2.ID, result.Link.ID), ErrForbidden)
	require.NoError(t, e.links.Revoke(ctx, u1.ID, result.Link.ID))
	assert.ErrorIs(t, e.links.Revoke(ctx, u1.ID, result.Link.ID), ErrNotFound)

	_, err = e.links.Resolve(ctx, result.Link.Token, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPruneExpiredLinks(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	docs := e.folder(t, u1, "Docs", nil)

	now := e.clock.Now()
	for _, expires := range []*time.Time{ptr(now.Add(-48 * time.Hour)), ptr(now.Add(-time.Hour)), ptr(now.Add(time.Hour)), nil} {
		_, err := e.links.Create(ctx, u1.ID, LinkRequest{ResourceType: model.ResourceFolder, ResourceID: docs.ID, ExpiresAt: expires})
		require.NoError(t, err)
	}

	n, err := e.links.PruneExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = e.links.PruneExpired(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = e.links.PruneExpired(ctx, -time.Hour)
	assert.ErrorIs(t, err, ErrValidation)

	list, err := e.shares.ListShares(ctx, u1.ID, model.ResourceFolder, docs.ID)
	require.NoError(t, err)
	assert.Len(t, list.LinkShares, 2)
}

func TestGenerateLinkToken(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		token, err := GenerateLinkToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

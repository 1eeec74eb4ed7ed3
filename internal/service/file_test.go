package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/storage/storagetest"
)

func TestInitUpload(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	docs := e.folder(t, u1, "Docs", nil)

	ticket, err := e.files.InitUpload(ctx, u1.ID, UploadRequest{
		Name: "Report.PDF", MimeType: "application/pdf", SizeBytes: 1024, FolderID: &docs.ID,
	})
	require.NoError(t, err)

	file := ticket.File
	assert.Equal(t, "Report.PDF", file.Name)
	assert.Equal(t, "tenants/"+u1.ID+"/files/"+file.ID+".pdf", file.StorageKey)
	assert.Contains(t, ticket.UploadURL, file.StorageKey)
	assert.Contains(t, ticket.UploadURL, "size=1024", "upload url is bound to the declared size")
	assert.Equal(t, e.clock.Now().Add(2*time.Hour), ticket.ExpiresAt)
	require.NotNil(t, file.FolderID)
	assert.Equal(t, docs.ID, *file.FolderID)
	assert.Nil(t, file.Checksum)

	_, err = e.files.InitUpload(ctx, u1.ID, UploadRequest{
		Name: "Report.PDF", MimeType: "application/pdf", SizeBytes: 1024, FolderID: &docs.ID,
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestInitUpload_Policy(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")
	theirs := e.folder(t, u2, "Theirs", nil)

	tests := []struct {
		name    string
		req     UploadRequest
		wantErr error
	}{
		{"empty file", UploadRequest{Name: "a.txt", MimeType: "text/plain", SizeBytes: 0}, ErrValidation},
		{"too large", UploadRequest{Name: "a.txt", MimeType: "text/plain", SizeBytes: 1<<20 + 1}, ErrValidation},
		{"type not allowed", UploadRequest{Name: "a.zip", MimeType: "application/zip", SizeBytes: 10}, ErrValidation},
		{"bad name", UploadRequest{Name: "a/b.txt", MimeType: "text/plain", SizeBytes: 10}, ErrValidation},
		{"foreign folder", UploadRequest{Name: "a.txt", MimeType: "text/plain", SizeBytes: 10, FolderID: &theirs.ID}, ErrParentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.files.InitUpload(ctx, u1.ID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	ticket, err := e.files.InitUpload(ctx, u1.ID, UploadRequest{Name: "photo.jpg", MimeType: "IMAGE/JPEG", SizeBytes: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ticket.File.MimeType)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")

	file, err := e.files.Upload(ctx, u1.ID, UploadRequest{Name: "hello.txt", MimeType: "text/plain", SizeBytes: 5}, strings.NewReader("hello"))
	require.NoError(t, err)

	data, ok := e.store.Object(file.StorageKey)
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))

	e.store.Err = storagetest.ErrUnavailable
	_, err = e.files.Upload(ctx, u1.ID, UploadRequest{Name: "other.txt", MimeType: "text/plain", SizeBytes: 5}, strings.NewReader("world"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, CodeStoreUnavailable, CodeOf(err))

	e.store.Err = nil
	contents, err := e.hierarchy.Contents(ctx, u1.ID, nil)
	require.NoError(t, err)
	assert.Len(t, contents.Files, 1, "failed uploads leave no row behind")
}

func TestCompleteUpload(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")
	f := e.file(t, u1, "a.txt", nil)

	_, err := e.files.CompleteUpload(ctx, u1.ID, f.ID, nil)
	assert.ErrorIs(t, err, ErrValidation, "object not uploaded yet")

	e.store.Seed(f.StorageKey, []byte("hello"))

	_, err = e.files.CompleteUpload(ctx, u2.ID, f.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.shares.ShareWithUser(ctx, u1.ID, ShareRequest{
		ResourceType: model.ResourceFile, ResourceID: f.ID, GranteeUserID: u2.ID, Role: model.RoleEditor,
	})
	require.NoError(t, err)
	_, err = e.files.CompleteUpload(ctx, u2.ID, f.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	blank := "   "
	_, err = e.files.CompleteUpload(ctx, u1.ID, f.ID, &blank)
	assert.ErrorIs(t, err, ErrValidation)

	sum := "  sha256:abc  "
	done, err := e.files.CompleteUpload(ctx, u1.ID, f.ID, &sum)
	require.NoError(t, err)
	require.NotNil(t, done.Checksum)
	assert.Equal(t, "sha256:abc", *done.Checksum)
}

func TestCompleteUpload_SizeMismatch(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	f := e.file(t, u1, "a.txt", nil)

	e.store.Seed(f.StorageKey, bytes.Repeat([]byte("x"), 3<<20))

	_, err := e.files.CompleteUpload(ctx, u1.ID, f.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, ok := e.store.Object(f.StorageKey)
	assert.False(t, ok, "oversized object is removed")

	e.store.Seed(f.StorageKey, []byte("hell"))
	_, err = e.files.CompleteUpload(ctx, u1.ID, f.ID, nil)
	assert.ErrorIs(t, err, ErrValidation, "short uploads are rejected too")

	e.store.Seed(f.StorageKey, []byte("hello"))
	done, err := e.files.CompleteUpload(ctx, u1.ID, f.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), done.SizeBytes)
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	u1 := e.user(t, "u1")
	u2 := e.user(t, "u2")
	f := e.file(t, u1, "a.txt", nil)

	_, err := e.files.Download(ctx, u2.ID, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.shares.ShareWithUser(ctx, u1.ID, ShareRequest{
		ResourceType: model.ResourceFile, ResourceID: f.ID, GranteeUserID: u2.ID, Role: model.RoleViewer,
	})
	require.NoError(t, err)

	download, err := e.files.Download(ctx, u2.ID, f.ID)
	require.NoError(t, err)
	assert.Contains(t, download.URL, f.StorageKey)
	assert.Equal(t, e.clock.Now().Add(time.Hour), download.ExpiresAt)

	e.store.Err = storagetest.ErrUnavailable
	_, err = e.files.Download(ctx, u2.ID, f.ID)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, storagetest.ErrUnavailable)
	e.store.Err = nil

	require.NoError(t, e.hierarchy.Delete(ctx, u1.ID, model.ResourceFile, f.ID))
	_, err = e.files.Download(ctx, u1.ID, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "tenants/o/files/id.txt", storageKey("o", "id", "Notes.TXT"))
	assert.Equal(t, "tenants/o/files/id", storageKey("o", "id", "Makefile"))
	assert.Equal(t, "tenants/o/files/id", storageKey("o", "id", "weird.ext with space"))
}

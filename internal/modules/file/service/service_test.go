package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/file/dto"
	"vocalstudio.app/backend/pkg/apperror"
)

type fixture struct {
	repo    *fakeFileRepo
	store   *fakeStorage
	svc     FileService
	teacher entity.Actor
	student entity.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newFakeFileRepo(),
		store:   newFakeStorage(),
		teacher: entity.Actor{ID: uuid.New(), Role: entity.RoleTeacher},
		student: entity.Actor{ID: uuid.New(), Role: entity.RoleStudent},
	}
	f.repo.students[f.student.ID] = true
	guard := NewGuard(1024*1024, []string{"image/png", "application/pdf"})
	f.svc = NewFileService(f.repo, f.store, guard, "vocalstudio", zap.NewNop())
	return f
}

func strPtr(s string) *string { return &s }

func TestUploadRecordsFile(t *testing.T) {
	f := newFixture(t)
	header := formFiles(t, "file", map[string][]byte{"scale.png": pngHeader})[0]

	res, err := f.svc.Upload(context.Background(), f.teacher, header, dto.UploadFileInput{
		StudentID:   strPtr(f.student.ID.String()),
		Description: strPtr("Warm-up chart"),
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", res.FileType)
	assert.Equal(t, "scale.png", res.OriginalName)
	assert.Equal(t, int64(len(pngHeader)), res.FileSize)
	assert.Equal(t, "https://cdn.example.com/vocalstudio/files/scale.png", res.FileURL)
	assert.Equal(t, f.student.ID, *res.StudentID)
	assert.Len(t, f.store.uploaded, 1)
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	text := formFiles(t, "file", map[string][]byte{"notes.png": []byte("plain text pretending")})[0]
	_, err := f.svc.Upload(ctx, f.teacher, text, dto.UploadFileInput{})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	png := formFiles(t, "file", map[string][]byte{"a.png": pngHeader})[0]
	_, err = f.svc.Upload(ctx, f.teacher, png, dto.UploadFileInput{StudentID: strPtr(uuid.NewString())})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Empty(t, f.store.uploaded)
	assert.Empty(t, f.repo.files)
}

func TestUploadCleansStorageWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.repo.failNext = true
	header := formFiles(t, "file", map[string][]byte{"a.png": pngHeader})[0]

	_, err := f.svc.Upload(context.Background(), f.teacher, header, dto.UploadFileInput{})
	require.Error(t, err)
	assert.Empty(t, f.store.uploaded)
	assert.Len(t, f.store.deleted, 1)
}

func TestUploadWithoutStorage(t *testing.T) {
	f := newFixture(t)
	svc := NewFileService(f.repo, nil, NewGuard(1024, []string{"image/png"}), "x", zap.NewNop())
	header := formFiles(t, "file", map[string][]byte{"a.png": pngHeader})[0]

	_, err := svc.Upload(context.Background(), f.teacher, header, dto.UploadFileInput{})
	assert.ErrorIs(t, err, errStorageDisabled)
}

func TestVisibilityAndDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := entity.Actor{ID: uuid.New(), Role: entity.RoleStudent}

	shared := &entity.File{UploaderID: f.teacher.ID, FileType: "application/pdf", FileURL: "https://cdn.example.com/shared.pdf"}
	private := &entity.File{UploaderID: f.teacher.ID, StudentID: &f.student.ID, FileType: "image/png", FileURL: "https://cdn.example.com/p.png"}
	require.NoError(t, f.repo.Create(ctx, shared))
	require.NoError(t, f.repo.Create(ctx, private))

	mine, err := f.svc.List(ctx, f.student, dto.ListFilesQuery{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := f.svc.List(ctx, other, dto.ListFilesQuery{})
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	url, err := f.svc.DownloadURL(ctx, f.student, private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.FileURL, url)

	_, err = f.svc.DownloadURL(ctx, other, private.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.student, private.ID), apperror.ErrNotFound)
	require.NoError(t, f.svc.Delete(ctx, f.teacher, private.ID))
	assert.Equal(t, []string{private.FileURL}, f.store.deleted)
	assert.NotContains(t, f.repo.files, private.ID)
}

func TestStoreBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	headers := formFiles(t, "files", map[string][]byte{"a.png": pngHeader, "b.png": pngHeader})
	out, err := f.svc.Store(ctx, "files", headers)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "image/png", out[0].Mimetype)
	assert.Equal(t, "files", out[0].FieldName)

	many := map[string][]byte{}
	for i := 0; i <= MaxBatch; i++ {
		many[uuid.NewString()+".png"] = pngHeader
	}
	_, err = f.svc.Store(ctx, "files", formFiles(t, "files", many))
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestStoreBatchIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.store.failOn = "bad.png"

	headers := formFiles(t, "files", map[string][]byte{"good.png": pngHeader, "bad.png": pngHeader})
	_, err := f.svc.Store(context.Background(), "files", headers)
	require.Error(t, err)
	assert.Empty(t, f.store.uploaded)
}

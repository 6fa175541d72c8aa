package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"vocalstudio.app/backend/internal/entity"
	fileRepo "vocalstudio.app/backend/internal/modules/file/repository"
	"vocalstudio.app/backend/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// formFiles builds real multipart headers the way gin hands them over.
func formFiles(t *testing.T, field string, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field]
}

type fakeStorage struct {
	uploaded map[string][]byte
	deleted  []string
	failOn   string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, r io.Reader, folder, fileName string) (*storage.UploadResult, error) {
	if fileName == f.failOn {
		return nil, errors.New("storage unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	id := folder + "/" + fileName
	url := "https://cdn.example.com/" + id
	f.uploaded[url] = data
	return &storage.UploadResult{URL: url, PublicID: id, Bytes: int64(len(data))}, nil
}

func (f *fakeStorage) Delete(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	delete(f.uploaded, fileURL)
	return nil
}

type fakeFileRepo struct {
	files    map[uuid.UUID]*entity.File
	students map[uuid.UUID]bool
	failNext bool
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[uuid.UUID]*entity.File{}, students: map[uuid.UUID]bool{}}
}

func (f *fakeFileRepo) Create(_ context.Context, file *entity.File) error {
	if f.failNext {
		return errors.New("insert failed")
	}
	file.ID = uuid.New()
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (f *fakeFileRepo) List(_ context.Context, filter fileRepo.Filter) ([]entity.File, error) {
	var out []entity.File
	for _, file := range f.files {
		if filter.UploaderID != uuid.Nil && file.UploaderID != filter.UploaderID {
			continue
		}
		if filter.StudentID != uuid.Nil && (file.StudentID == nil || *file.StudentID != filter.StudentID) {
			continue
		}
		if filter.VisibleTo != uuid.Nil && file.StudentID != nil && *file.StudentID != filter.VisibleTo {
			continue
		}
		out = append(out, *file)
	}
	return out, nil
}

func (f *fakeFileRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.files, id)
	return nil
}

func (f *fakeFileRepo) IsStudent(_ context.Context, id uuid.UUID) (bool, error) {
	return f.students[id], nil
}

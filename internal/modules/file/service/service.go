package service

import (
	"context"
	"errors"
	"mime/multipart"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/modules/file/dto"
	fileRepo "vocalstudio.app/backend/internal/modules/file/repository"
	"vocalstudio.app/backend/pkg/apperror"
	"vocalstudio.app/backend/pkg/database"
	"vocalstudio.app/backend/pkg/sanitizer"
	"vocalstudio.app/backend/pkg/storage"
)

// MaxBatch caps how many files one multiple-upload request may carry.
const MaxBatch = 10

var errStorageDisabled = errors.New("file storage is not configured")

type FileService interface {
	List(ctx context.Context, actor entity.Actor, query dto.ListFilesQuery) ([]dto.FileResponse, error)
	Upload(ctx context.Context, actor entity.Actor, header *multipart.FileHeader, input dto.UploadFileInput) (*dto.FileResponse, error)
	// DownloadURL returns where the file can be fetched, if actor may see it.
	DownloadURL(ctx context.Context, actor entity.Actor, id uuid.UUID) (string, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	// Store pushes files to storage without recording them.
	Store(ctx context.Context, field string, headers []*multipart.FileHeader) ([]dto.StoredObject, error)
}

type fileService struct {
	repo    fileRepo.FileRepository
	storage storage.FileStorage
	guard   *Guard
	folder  string
	log     *zap.Logger
}

// NewFileService wires file handling. store may be nil when object storage
// is not configured; uploads then fail while listing keeps working.
func NewFileService(repo fileRepo.FileRepository, store storage.FileStorage, guard *Guard, folder string, log *zap.Logger) FileService {
	return &fileService{
		repo:    repo,
		storage: store,
		guard:   guard,
		folder:  folder,
		log:     log,
	}
}

func (s *fileService) List(ctx context.Context, actor entity.Actor, query dto.ListFilesQuery) ([]dto.FileResponse, error) {
	filter := fileRepo.Filter{TypePrefix: query.FileType}
	if actor.IsTeacher() {
		filter.UploaderID = actor.ID
		if query.StudentID != "" {
			studentID, err := uuid.Parse(query.StudentID)
			if err != nil {
				return nil, apperror.BadRequest("Invalid student_id")
			}
			filter.StudentID = studentID
		}
	} else {
		filter.VisibleTo = actor.ID
	}

	files, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewFileResponses(files), nil
}

// put validates and stores one multipart file.
func (s *fileService) put(ctx context.Context, header *multipart.FileHeader, folder string) (*storage.UploadResult, string, error) {
	if s.storage == nil {
		return nil, "", errStorageDisabled
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	mime, err := s.guard.Inspect(f, header.Size)
	if err != nil {
		return nil, "", err
	}

	res, err := s.storage.Upload(ctx, f, folder, header.Filename)
	if err != nil {
		return nil, "", err
	}
	return res, mime, nil
}

func (s *fileService) Upload(ctx context.Context, actor entity.Actor, header *multipart.FileHeader, input dto.UploadFileInput) (*dto.FileResponse, error) {
	var studentID *uuid.UUID
	if input.StudentID != nil && *input.StudentID != "" {
		id, err := uuid.Parse(*input.StudentID)
		if err != nil {
			return nil, apperror.BadRequest("Invalid student_id")
		}
		ok, err := s.repo.IsStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NotFound("Student not found")
		}
		studentID = &id
	}

	stored, mime, err := s.put(ctx, header, path.Join(s.folder, "files"))
	if err != nil {
		return nil, err
	}

	size := stored.Bytes
	if size == 0 {
		size = header.Size
	}
	file := &entity.File{
		UploaderID:   actor.ID,
		StudentID:    studentID,
		FileType:     mime,
		FileName:     stored.PublicID,
		OriginalName: sanitizer.Text(header.Filename),
		FileSize:     size,
		FileURL:      stored.URL,
		Description:  sanitizer.Ptr(input.Description),
	}
	if err := s.repo.Create(ctx, file); err != nil {
		s.discard(ctx, stored.URL)
		return nil, err
	}

	res := dto.NewFileResponse(file)
	return &res, nil
}

func (s *fileService) find(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.NotFound("File not found")
		}
		return nil, err
	}
	return file, nil
}

func (s *fileService) DownloadURL(ctx context.Context, actor entity.Actor, id uuid.UUID) (string, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if !file.VisibleTo(actor.ID) {
		return "", apperror.NotFound("File not found")
	}
	return file.FileURL, nil
}

func (s *fileService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	file, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if file.UploaderID != actor.ID {
		return apperror.NotFound("File not found")
	}

	if err := s.repo.Delete(ctx, file.ID); err != nil {
		return err
	}
	s.discard(ctx, file.FileURL)
	return nil
}

// discard removes a stored object, logging instead of failing.
func (s *fileService) discard(ctx context.Context, fileURL string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, fileURL); err != nil {
		s.log.Warn("failed to delete stored file", zap.String("url", fileURL), zap.Error(err))
	}
}

func (s *fileService) Store(ctx context.Context, field string, headers []*multipart.FileHeader) ([]dto.StoredObject, error) {
	if len(headers) > MaxBatch {
		return nil, apperror.BadRequest("Too many files. Maximum is %d", MaxBatch)
	}

	out := make([]dto.StoredObject, 0, len(headers))
	for _, h := range headers {
		stored, mime, err := s.put(ctx, h, path.Join(s.folder, "uploads"))
		if err != nil {
			// keep the batch all-or-nothing
			for _, done := range out {
				s.discard(ctx, done.URL)
			}
			return nil, err
		}
		out = append(out, dto.StoredObject{
			FieldName:    field,
			OriginalName: h.Filename,
			Filename:     stored.PublicID,
			Mimetype:     mime,
			Size:         h.Size,
			URL:          stored.URL,
			Key:          stored.PublicID,
		})
	}
	return out, nil
}

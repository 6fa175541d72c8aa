package dto

import "vocalstudio.app/backend/internal/entity"

type ListFilesQuery struct {
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	FileType  string `form:"file_type" binding:"omitempty,max=100"`
}

type UploadFileInput struct {
	StudentID   *string `form:"student_id" binding:"omitempty,uuid"`
	Description *string `form:"description" binding:"omitempty,max=1000"`
}

type FileResponse struct {
	entity.File
	Uploader *entity.UserSummary `json:"uploader,omitempty"`
	Student  *entity.UserSummary `json:"student,omitempty"`
}

func NewFileResponse(f *entity.File) FileResponse {
	return FileResponse{File: *f, Uploader: f.Uploader.Summary(), Student: f.Student.Summary()}
}

func NewFileResponses(files []entity.File) []FileResponse {
	res := make([]FileResponse, 0, len(files))
	for i := range files {
		res = append(res, NewFileResponse(&files[i]))
	}
	return res
}

// StoredObject describes a file pushed to storage by the upload endpoints.
type StoredObject struct {
	FieldName    string `json:"fieldName"`
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	Mimetype     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
	Key          string `json:"key"`
}

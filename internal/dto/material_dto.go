package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadMaterialResponse struct {
	JobId    uuid.UUID `json:"job_id"`
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
}

type MaterialStatusResponse struct {
	JobId    uuid.UUID `json:"job_id"`
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
	Chunks   int       `json:"chunks"`
}

type MaterialSummary struct {
	Id        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	CourseId  string    `json:"course_id"`
	Status    string    `json:"status"`
	Chunks    int       `json:"chunks"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMaterialsResponse struct {
	Materials []MaterialSummary `json:"materials"`
}

// IngestMaterialMessage is the queue payload that triggers ingestion
type IngestMaterialMessage struct {
	MaterialId uuid.UUID `json:"material_id"`
}

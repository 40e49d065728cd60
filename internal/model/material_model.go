package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Material struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      string         `gorm:"type:varchar(128);not null;index"`
	CourseId    string         `gorm:"type:varchar(128);not null;index"`
	Filename    string         `gorm:"type:varchar(512);not null"`
	ContentType string         `gorm:"type:varchar(128)"`
	StoragePath string         `gorm:"type:text"`
	SizeBytes   int64          `gorm:"default:0"`
	Status      string         `gorm:"type:varchar(32);default:'queued';index"`
	Progress    int            `gorm:"default:0"`
	Error       string         `gorm:"type:text"`
	ChunkCount  int            `gorm:"default:0"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Material) TableName() string {
	return "materials"
}

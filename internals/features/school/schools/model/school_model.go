// file: internals/features/school/schools/model/school_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type School struct {
	// PK
	SchoolID uuid.UUID `gorm:"column:school_id;type:uuid;primaryKey" json:"school_id"`

	SchoolName string `gorm:"column:school_name;type:varchar(100);not null" json:"school_name"`
	SchoolSlug string `gorm:"column:school_slug;type:varchar(120);not null;uniqueIndex" json:"school_slug"`

	SchoolCreatedAt time.Time      `gorm:"column:school_created_at;not null" json:"school_created_at"`
	SchoolUpdatedAt time.Time      `gorm:"column:school_updated_at;not null" json:"school_updated_at"`
	SchoolDeletedAt gorm.DeletedAt `gorm:"column:school_deleted_at;index" json:"-"`
}

func (School) TableName() string {
	return "schools"
}

func (m *School) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolID == uuid.Nil {
		m.SchoolID = uuid.New()
	}
	now := time.Now()
	if m.SchoolCreatedAt.IsZero() {
		m.SchoolCreatedAt = now
	}
	m.SchoolUpdatedAt = now
	return nil
}

func (m *School) BeforeUpdate(tx *gorm.DB) error {
	m.SchoolUpdatedAt = time.Now()
	return nil
}

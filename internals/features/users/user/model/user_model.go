// file: internals/features/users/user/model/user_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User adalah identitas global. ID immutable; entity lain hanya
// mereferensikan user, tidak pernah memilikinya.
type User struct {
	// PK
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`

	UserName     string `gorm:"column:user_name;type:varchar(100);not null" json:"user_name"`
	UserEmail    string `gorm:"column:user_email;type:varchar(120);not null;uniqueIndex" json:"user_email"`
	UserPassword string `gorm:"column:user_password;type:varchar(100);not null" json:"-"`

	// Base role global: siswa | guru | staff
	UserRole string `gorm:"column:user_role;type:varchar(20);not null;default:'siswa';index:ix_users_school_role,priority:2" json:"user_role"`

	// FK → schools(school_id)
	UserSchoolID uuid.UUID `gorm:"column:user_school_id;type:uuid;not null;index:ix_users_school_role,priority:1" json:"user_school_id"`

	UserCreatedAt time.Time      `gorm:"column:user_created_at;not null" json:"user_created_at"`
	UserUpdatedAt time.Time      `gorm:"column:user_updated_at;not null" json:"user_updated_at"`
	UserDeletedAt gorm.DeletedAt `gorm:"column:user_deleted_at;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (m *User) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	now := time.Now()
	if m.UserCreatedAt.IsZero() {
		m.UserCreatedAt = now
	}
	m.UserUpdatedAt = now
	return nil
}

func (m *User) BeforeUpdate(tx *gorm.DB) error {
	m.UserUpdatedAt = time.Now()
	return nil
}

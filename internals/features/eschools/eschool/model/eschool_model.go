// file: internals/features/eschools/eschool/model/eschool_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Eschool adalah tenant: satu kegiatan ekstrakurikuler di satu sekolah.
//
// Pointer koordinator/bendahara di sini adalah cache baca dari tabel
// memberships. Keduanya selalu ditulis dalam transaksi yang sama dengan
// row membership-nya; sumber kebenaran untuk cek invariant tetap
// tabel memberships.
type Eschool struct {
	// PK
	EschoolID uuid.UUID `gorm:"column:eschool_id;type:uuid;primaryKey" json:"eschool_id"`

	EschoolName string `gorm:"column:eschool_name;type:varchar(100);not null" json:"eschool_name"`

	// FK → schools(school_id)
	EschoolSchoolID uuid.UUID `gorm:"column:eschool_school_id;type:uuid;not null;index" json:"eschool_school_id"`

	// Denormalized pointers (cache dari memberships). Koordinator selalu
	// terisi saat eschool dibuat; NULL hanya transien di sela
	// remove-koordinator → assign-koordinator baru.
	EschoolCoordinatorID *uuid.UUID `gorm:"column:eschool_coordinator_id;type:uuid;index" json:"eschool_coordinator_id"`
	EschoolTreasurerID   *uuid.UUID `gorm:"column:eschool_treasurer_id;type:uuid;index" json:"eschool_treasurer_id,omitempty"`

	// Nominal kas bulanan (satuan terkecil mata uang)
	EschoolMonthlyKasAmount int `gorm:"column:eschool_monthly_kas_amount;not null;default:0;check:eschool_monthly_kas_amount>=0" json:"eschool_monthly_kas_amount"`

	// Hari jadwal latihan, array nama hari terurut, mis. ["monday","wednesday"]
	EschoolScheduleDays datatypes.JSON `gorm:"column:eschool_schedule_days;type:jsonb" json:"eschool_schedule_days,omitempty"`

	EschoolIsActive bool `gorm:"column:eschool_is_active;not null;default:true;index" json:"eschool_is_active"`

	EschoolCreatedAt time.Time      `gorm:"column:eschool_created_at;not null" json:"eschool_created_at"`
	EschoolUpdatedAt time.Time      `gorm:"column:eschool_updated_at;not null" json:"eschool_updated_at"`
	EschoolDeletedAt gorm.DeletedAt `gorm:"column:eschool_deleted_at;index" json:"-"`
}

func (Eschool) TableName() string {
	return "eschools"
}

func (m *Eschool) BeforeCreate(tx *gorm.DB) error {
	if m.EschoolID == uuid.Nil {
		m.EschoolID = uuid.New()
	}
	now := time.Now()
	if m.EschoolCreatedAt.IsZero() {
		m.EschoolCreatedAt = now
	}
	m.EschoolUpdatedAt = now
	return nil
}

func (m *Eschool) BeforeUpdate(tx *gorm.DB) error {
	m.EschoolUpdatedAt = time.Now()
	return nil
}

// file: internals/features/attendance/model/attendance_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendanceRecord: satu row per (eschool, member, tanggal) — dijaga
// unique index. Record ulang untuk kombinasi yang sama adalah conflict,
// bukan upsert, supaya bug double-submit kelihatan.
type AttendanceRecord struct {
	// PK
	AttendanceID uuid.UUID `gorm:"column:attendance_id;type:uuid;primaryKey" json:"attendance_id"`

	// FK → eschools(eschool_id)
	AttendanceEschoolID uuid.UUID `gorm:"column:attendance_eschool_id;type:uuid;not null;uniqueIndex:uniq_attendance_eschool_member_date,priority:1" json:"attendance_eschool_id"`

	// FK → users(user_id)
	AttendanceMemberID uuid.UUID `gorm:"column:attendance_member_id;type:uuid;not null;uniqueIndex:uniq_attendance_eschool_member_date,priority:2" json:"attendance_member_id"`

	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uniq_attendance_eschool_member_date,priority:3;index" json:"attendance_date"`

	AttendanceIsPresent bool    `gorm:"column:attendance_is_present;not null" json:"attendance_is_present"`
	AttendanceNotes     *string `gorm:"column:attendance_notes;type:varchar(255)" json:"attendance_notes,omitempty"`

	// FK → users(user_id), pencatat
	AttendanceRecorderID uuid.UUID `gorm:"column:attendance_recorder_id;type:uuid;not null" json:"attendance_recorder_id"`

	AttendanceCreatedAt time.Time `gorm:"column:attendance_created_at;not null" json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `gorm:"column:attendance_updated_at;not null" json:"attendance_updated_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

func (m *AttendanceRecord) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceID == uuid.Nil {
		m.AttendanceID = uuid.New()
	}
	now := time.Now()
	if m.AttendanceCreatedAt.IsZero() {
		m.AttendanceCreatedAt = now
	}
	m.AttendanceUpdatedAt = now
	return nil
}

func (m *AttendanceRecord) BeforeUpdate(tx *gorm.DB) error {
	m.AttendanceUpdatedAt = time.Now()
	return nil
}

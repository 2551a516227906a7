// file: internals/features/attendance/dto/attendance_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"eschoolku_backend/internals/features/attendance/model"
	"eschoolku_backend/internals/features/attendance/service"
	helper "eschoolku_backend/internals/helpers"
)

type AttendanceEntryDTO struct {
	MemberID  uuid.UUID `json:"member_id" validate:"required"`
	IsPresent bool      `json:"is_present"`
	Notes     *string   `json:"notes,omitempty"`
}

type RecordAttendanceDTO struct {
	EschoolID uuid.UUID            `json:"eschool_id" validate:"required"`
	Date      string               `json:"date" validate:"required"` // YYYY-MM-DD
	Entries   []AttendanceEntryDTO `json:"entries" validate:"required,min=1,dive"`
}

type UpdateAttendanceDTO struct {
	IsPresent *bool   `json:"is_present,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Date      *string `json:"date,omitempty"`
}

type AttendanceResponse struct {
	AttendanceID uuid.UUID `json:"attendance_id"`
	EschoolID    uuid.UUID `json:"eschool_id"`
	MemberID     uuid.UUID `json:"member_id"`
	Date         string    `json:"date"`
	IsPresent    bool      `json:"is_present"`
	Notes        *string   `json:"notes,omitempty"`
	RecorderID   uuid.UUID `json:"recorder_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d RecordAttendanceDTO) ToCmd(recorderID uuid.UUID) service.RecordAttendanceCmd {
	entries := make([]service.AttendanceEntry, 0, len(d.Entries))
	for _, e := range d.Entries {
		entries = append(entries, service.AttendanceEntry{
			MemberID:  e.MemberID,
			IsPresent: e.IsPresent,
			Notes:     e.Notes,
		})
	}
	return service.RecordAttendanceCmd{
		EschoolID:  d.EschoolID,
		RecorderID: recorderID,
		Date:       d.Date,
		Entries:    entries,
	}
}

func (d UpdateAttendanceDTO) ToCmd() service.UpdateAttendanceCmd {
	return service.UpdateAttendanceCmd{
		IsPresent: d.IsPresent,
		Notes:     d.Notes,
		Date:      d.Date,
	}
}

func ToAttendanceResponse(m model.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		AttendanceID: m.AttendanceID,
		EschoolID:    m.AttendanceEschoolID,
		MemberID:     m.AttendanceMemberID,
		Date:         m.AttendanceDate.Format(helper.DateLayout),
		IsPresent:    m.AttendanceIsPresent,
		Notes:        m.AttendanceNotes,
		RecorderID:   m.AttendanceRecorderID,
		CreatedAt:    m.AttendanceCreatedAt,
	}
}

func ToAttendanceResponses(list []model.AttendanceRecord) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(list))
	for _, v := range list {
		out = append(out, ToAttendanceResponse(v))
	}
	return out
}

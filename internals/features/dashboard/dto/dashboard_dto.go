// file: internals/features/dashboard/dto/dashboard_dto.go
package dto

import (
	"github.com/google/uuid"

	attendanceService "eschoolku_backend/internals/features/attendance/service"
	kasService "eschoolku_backend/internals/features/kas/service"
)

// ===== Student view =====

type StudentEschoolSummary struct {
	EschoolID        uuid.UUID `json:"eschool_id"`
	EschoolName      string    `json:"eschool_name"`
	Role             string    `json:"role"`
	AttendancePresent int      `json:"attendance_present"`
	AttendanceTotal   int      `json:"attendance_total"`
	AttendanceRate    float64  `json:"attendance_rate"`
	KasPaidTotal      int64    `json:"kas_paid_total"`
	KasOutstanding    int64    `json:"kas_outstanding"`
	CurrentMonthPaid  bool     `json:"current_month_paid"`
}

type StudentOverview struct {
	UserID                uuid.UUID               `json:"user_id"`
	Eschools              []StudentEschoolSummary `json:"eschools"`
	AverageAttendanceRate float64                 `json:"average_attendance_rate"`
	TotalKasPaid          int64                   `json:"total_kas_paid"`
	TotalKasOutstanding   int64                   `json:"total_kas_outstanding"`
}

// ===== Coordinator view =====

type RosterMember struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Role     string    `json:"role"`
}

type CoordinatorView struct {
	EschoolID  uuid.UUID                                `json:"eschool_id"`
	Roster     []RosterMember                           `json:"roster"`
	Attendance *attendanceService.AttendanceStatistics  `json:"attendance"`
	Kas        *kasService.KasSummary                   `json:"kas"`
}

// ===== Treasurer view =====

type OutstandingMember struct {
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Amount   int       `json:"amount"` // iuran bulanan yang belum dibayar
}

type TreasurerView struct {
	EschoolID   uuid.UUID              `json:"eschool_id"`
	Summary     *kasService.KasSummary `json:"summary"`
	Outstanding []OutstandingMember    `json:"outstanding"`
}

// ===== Staff rollup =====

type StaffEschoolRow struct {
	EschoolID      uuid.UUID `json:"eschool_id"`
	EschoolName    string    `json:"eschool_name"`
	MemberCount    int       `json:"member_count"`
	AttendanceRate float64   `json:"attendance_rate"`
	CollectionRate float64   `json:"collection_rate"`
	Balance        int64     `json:"balance"`
}

type StaffRollup struct {
	SchoolID              uuid.UUID         `json:"school_id"`
	EschoolCount          int               `json:"eschool_count"`
	MemberCount           int               `json:"member_count"`
	AverageAttendanceRate float64           `json:"average_attendance_rate"` // weighted by member count
	AverageCollectionRate float64           `json:"average_collection_rate"` // weighted by member count
	TotalBalance          int64             `json:"total_balance"`
	Eschools              []StaffEschoolRow `json:"eschools"`
}

// file: internals/features/eschools/eschool/dto/eschool_dto.go
package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"eschoolku_backend/internals/features/eschools/eschool/model"
	"eschoolku_backend/internals/features/eschools/eschool/service"
)

////////////////////////////////////////////////////////////////////////////////
// ESCHOOL — DTO
////////////////////////////////////////////////////////////////////////////////

// PersonRef: referensi user existing ATAU data user baru (tepat satu).
type PersonRef struct {
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty" validate:"omitempty,email"`
	Password string     `json:"password,omitempty"`
}

type EschoolCreateDTO struct {
	EschoolName             string     `json:"eschool_name" validate:"required,min=2,max=100"`
	EschoolSchoolID         uuid.UUID  `json:"eschool_school_id" validate:"required"`
	EschoolMonthlyKasAmount int        `json:"eschool_monthly_kas_amount" validate:"min=0"`
	EschoolScheduleDays     []string   `json:"eschool_schedule_days,omitempty"`
	Coordinator             PersonRef  `json:"coordinator" validate:"required"`
	Treasurer               *PersonRef `json:"treasurer,omitempty"`
}

type EschoolUpdateDTO struct {
	EschoolName             *string  `json:"eschool_name,omitempty"`
	EschoolMonthlyKasAmount *int     `json:"eschool_monthly_kas_amount,omitempty"`
	EschoolScheduleDays     []string `json:"eschool_schedule_days,omitempty"`
	EschoolIsActive         *bool    `json:"eschool_is_active,omitempty"`
}

type EschoolResponse struct {
	EschoolID               uuid.UUID  `json:"eschool_id"`
	EschoolName             string     `json:"eschool_name"`
	EschoolSchoolID         uuid.UUID  `json:"eschool_school_id"`
	EschoolCoordinatorID    *uuid.UUID `json:"eschool_coordinator_id"`
	EschoolTreasurerID      *uuid.UUID `json:"eschool_treasurer_id,omitempty"`
	EschoolMonthlyKasAmount int        `json:"eschool_monthly_kas_amount"`
	EschoolScheduleDays     []string   `json:"eschool_schedule_days,omitempty"`
	EschoolIsActive         bool       `json:"eschool_is_active"`
	EschoolCreatedAt        time.Time  `json:"eschool_created_at"`
	EschoolUpdatedAt        time.Time  `json:"eschool_updated_at"`
}

////////////////////////////////////////////////////////////////////////////////
// MAPPERS
////////////////////////////////////////////////////////////////////////////////

func (d EschoolCreateDTO) ToCmd() service.CreateEschoolCmd {
	cmd := service.CreateEschoolCmd{
		Name:             d.EschoolName,
		SchoolID:         d.EschoolSchoolID,
		MonthlyKasAmount: d.EschoolMonthlyKasAmount,
		ScheduleDays:     d.EschoolScheduleDays,
	}
	cmd.CoordinatorUserID, cmd.NewCoordinator = personRefToCmd(d.Coordinator)
	if d.Treasurer != nil {
		cmd.TreasurerUserID, cmd.NewTreasurer = personRefToCmd(*d.Treasurer)
	}
	return cmd
}

func personRefToCmd(p PersonRef) (*uuid.UUID, *service.NewUserInput) {
	if p.UserID != nil {
		return p.UserID, nil
	}
	return nil, &service.NewUserInput{Name: p.Name, Email: p.Email, Password: p.Password}
}

func (d EschoolUpdateDTO) ToCmd() service.UpdateEschoolCmd {
	return service.UpdateEschoolCmd{
		Name:             d.EschoolName,
		MonthlyKasAmount: d.EschoolMonthlyKasAmount,
		ScheduleDays:     d.EschoolScheduleDays,
		IsActive:         d.EschoolIsActive,
	}
}

func ToEschoolResponse(m model.Eschool) EschoolResponse {
	var days []string
	if len(m.EschoolScheduleDays) > 0 {
		_ = json.Unmarshal(m.EschoolScheduleDays, &days)
	}
	return EschoolResponse{
		EschoolID:               m.EschoolID,
		EschoolName:             m.EschoolName,
		EschoolSchoolID:         m.EschoolSchoolID,
		EschoolCoordinatorID:    m.EschoolCoordinatorID,
		EschoolTreasurerID:      m.EschoolTreasurerID,
		EschoolMonthlyKasAmount: m.EschoolMonthlyKasAmount,
		EschoolScheduleDays:     days,
		EschoolIsActive:         m.EschoolIsActive,
		EschoolCreatedAt:        m.EschoolCreatedAt,
		EschoolUpdatedAt:        m.EschoolUpdatedAt,
	}
}

func ToEschoolResponses(list []model.Eschool) []EschoolResponse {
	out := make([]EschoolResponse, 0, len(list))
	for _, v := range list {
		out = append(out, ToEschoolResponse(v))
	}
	return out
}

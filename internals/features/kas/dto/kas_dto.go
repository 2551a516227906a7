// file: internals/features/kas/dto/kas_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"eschoolku_backend/internals/features/kas/model"
	"eschoolku_backend/internals/features/kas/service"
	helper "eschoolku_backend/internals/helpers"
)

////////////////////////////////////////////////////////////////////////////////
// KAS — DTO
////////////////////////////////////////////////////////////////////////////////

type PaymentInputDTO struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Amount   int       `json:"amount" validate:"required,gt=0"`
	Month    int       `json:"month" validate:"required,min=1,max=12"`
	Year     int       `json:"year" validate:"required,min=2020,max=2100"`
}

type RecordIncomeDTO struct {
	EschoolID     uuid.UUID         `json:"eschool_id" validate:"required"`
	Description   string            `json:"description" validate:"required,max=255"`
	Date          string            `json:"date" validate:"required"` // YYYY-MM-DD
	Payments      []PaymentInputDTO `json:"payments" validate:"required,min=1,dive"`
	AdminOverride bool              `json:"admin_override,omitempty"`
}

type RecordExpenseDTO struct {
	EschoolID   uuid.UUID `json:"eschool_id" validate:"required"`
	Amount      int       `json:"amount" validate:"required,gt=0"`
	Description string    `json:"description" validate:"required,max=255"`
	Date        string    `json:"date" validate:"required"`
	Category    *string   `json:"category,omitempty"`
}

type KasRecordUpdateDTO struct {
	Description *string `json:"description,omitempty"`
	Amount      *int    `json:"amount,omitempty"`
}

type KasPaymentResponse struct {
	KasPaymentID uuid.UUID  `json:"kas_payment_id"`
	MemberID     uuid.UUID  `json:"member_id"`
	Amount       int        `json:"amount"`
	Month        int        `json:"month"`
	Year         int        `json:"year"`
	IsPaid       bool       `json:"is_paid"`
	PaidDate     *time.Time `json:"paid_date,omitempty"`
}

type KasRecordResponse struct {
	KasRecordID uuid.UUID            `json:"kas_record_id"`
	EschoolID   uuid.UUID            `json:"eschool_id"`
	Type        string               `json:"type"`
	Amount      int                  `json:"amount"`
	Description string               `json:"description"`
	Date        string               `json:"date"`
	Category    *string              `json:"category,omitempty"`
	RecorderID  uuid.UUID            `json:"recorder_id"`
	Payments    []KasPaymentResponse `json:"payments,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

////////////////////////////////////////////////////////////////////////////////
// MAPPERS
////////////////////////////////////////////////////////////////////////////////

func (d RecordIncomeDTO) ToCmd(recorderID uuid.UUID) service.RecordIncomeCmd {
	payments := make([]service.PaymentInput, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, service.PaymentInput{
			MemberID: p.MemberID,
			Amount:   p.Amount,
			Month:    p.Month,
			Year:     p.Year,
		})
	}
	return service.RecordIncomeCmd{
		EschoolID:     d.EschoolID,
		RecorderID:    recorderID,
		Description:   d.Description,
		Date:          d.Date,
		Payments:      payments,
		AdminOverride: d.AdminOverride,
	}
}

func (d RecordExpenseDTO) ToCmd(recorderID uuid.UUID) service.RecordExpenseCmd {
	return service.RecordExpenseCmd{
		EschoolID:   d.EschoolID,
		RecorderID:  recorderID,
		Amount:      d.Amount,
		Description: d.Description,
		Date:        d.Date,
		Category:    d.Category,
	}
}

func ToKasPaymentResponse(m model.KasPayment) KasPaymentResponse {
	return KasPaymentResponse{
		KasPaymentID: m.KasPaymentID,
		MemberID:     m.KasPaymentMemberID,
		Amount:       m.KasPaymentAmount,
		Month:        m.KasPaymentMonth,
		Year:         m.KasPaymentYear,
		IsPaid:       m.KasPaymentIsPaid,
		PaidDate:     m.KasPaymentPaidDate,
	}
}

func ToKasRecordResponse(m model.KasRecord) KasRecordResponse {
	resp := KasRecordResponse{
		KasRecordID: m.KasRecordID,
		EschoolID:   m.KasRecordEschoolID,
		Type:        string(m.KasRecordType),
		Amount:      m.KasRecordAmount,
		Description: m.KasRecordDescription,
		Date:        m.KasRecordDate.Format(helper.DateLayout),
		Category:    m.KasRecordCategory,
		RecorderID:  m.KasRecordRecorderID,
		CreatedAt:   m.KasRecordCreatedAt,
	}
	for _, p := range m.KasRecordPayments {
		resp.Payments = append(resp.Payments, ToKasPaymentResponse(p))
	}
	return resp
}

func ToKasRecordResponses(list []model.KasRecord) []KasRecordResponse {
	out := make([]KasRecordResponse, 0, len(list))
	for _, v := range list {
		out = append(out, ToKasRecordResponse(v))
	}
	return out
}

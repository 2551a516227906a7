// file: internals/features/kas/model/kas_payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KasPayment adalah alokasi satu member untuk satu periode (bulan+tahun)
// pada satu income record. Invariant yang dijaga service:
//   - Σ kas_payment_amount per record == kas_record_amount
//   - satu member tidak boleh punya dua payment is_paid untuk
//     (eschool, bulan, tahun) yang sama, kecuali admin override eksplisit
type KasPayment struct {
	// PK
	KasPaymentID uuid.UUID `gorm:"column:kas_payment_id;type:uuid;primaryKey" json:"kas_payment_id"`

	// FK → kas_records(kas_record_id)
	KasPaymentKasRecordID uuid.UUID `gorm:"column:kas_payment_kas_record_id;type:uuid;not null;index" json:"kas_payment_kas_record_id"`

	// FK → users(user_id), member yang membayar
	KasPaymentMemberID uuid.UUID `gorm:"column:kas_payment_member_id;type:uuid;not null;index:ix_kas_payment_member_period,priority:1" json:"kas_payment_member_id"`

	KasPaymentAmount int `gorm:"column:kas_payment_amount;not null;check:kas_payment_amount>0" json:"kas_payment_amount"`

	// Periode iuran
	KasPaymentMonth int `gorm:"column:kas_payment_month;not null;check:kas_payment_month BETWEEN 1 AND 12;index:ix_kas_payment_member_period,priority:2" json:"kas_payment_month"`
	KasPaymentYear  int `gorm:"column:kas_payment_year;not null;check:kas_payment_year BETWEEN 2020 AND 2100;index:ix_kas_payment_member_period,priority:3" json:"kas_payment_year"`

	KasPaymentIsPaid   bool       `gorm:"column:kas_payment_is_paid;not null;default:false;index" json:"kas_payment_is_paid"`
	KasPaymentPaidDate *time.Time `gorm:"column:kas_payment_paid_date" json:"kas_payment_paid_date,omitempty"`

	KasPaymentCreatedAt time.Time `gorm:"column:kas_payment_created_at;not null" json:"kas_payment_created_at"`
	KasPaymentUpdatedAt time.Time `gorm:"column:kas_payment_updated_at;not null" json:"kas_payment_updated_at"`
}

func (KasPayment) TableName() string {
	return "kas_payments"
}

func (m *KasPayment) BeforeCreate(tx *gorm.DB) error {
	if m.KasPaymentID == uuid.Nil {
		m.KasPaymentID = uuid.New()
	}
	now := time.Now()
	if m.KasPaymentCreatedAt.IsZero() {
		m.KasPaymentCreatedAt = now
	}
	m.KasPaymentUpdatedAt = now
	return nil
}

func (m *KasPayment) BeforeUpdate(tx *gorm.DB) error {
	m.KasPaymentUpdatedAt = time.Now()
	return nil
}

// file: internals/features/kas/model/kas_record_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// =========================================================
// ENUM — tipe kas record
// =========================================================

type KasRecordType string

const (
	KasRecordTypeIncome  KasRecordType = "income"
	KasRecordTypeExpense KasRecordType = "expense"
)

// =========================================================
// MODEL
// =========================================================

// KasRecord adalah satu entri buku kas eschool. Record income memiliki
// nol-atau-lebih KasPayment (alokasi per member); expense tidak punya.
// Setelah dibuat hanya description & amount yang boleh diubah, dan
// record tidak bisa dihapus selama masih punya payment.
type KasRecord struct {
	// PK
	KasRecordID uuid.UUID `gorm:"column:kas_record_id;type:uuid;primaryKey" json:"kas_record_id"`

	// FK → eschools(eschool_id)
	KasRecordEschoolID uuid.UUID `gorm:"column:kas_record_eschool_id;type:uuid;not null;index:ix_kas_record_eschool_date,priority:1" json:"kas_record_eschool_id"`

	// income | expense
	KasRecordType KasRecordType `gorm:"column:kas_record_type;type:varchar(10);not null;index" json:"kas_record_type"`

	// Satuan terkecil mata uang; selalu > 0
	KasRecordAmount int `gorm:"column:kas_record_amount;not null;check:kas_record_amount>0" json:"kas_record_amount"`

	KasRecordDescription string `gorm:"column:kas_record_description;type:varchar(255);not null" json:"kas_record_description"`

	KasRecordDate time.Time `gorm:"column:kas_record_date;type:date;not null;index:ix_kas_record_eschool_date,priority:2" json:"kas_record_date"`

	// Kategori bebas, hanya dipakai expense
	KasRecordCategory *string `gorm:"column:kas_record_category;type:varchar(50)" json:"kas_record_category,omitempty"`

	// FK → users(user_id), pencatat
	KasRecordRecorderID uuid.UUID `gorm:"column:kas_record_recorder_id;type:uuid;not null" json:"kas_record_recorder_id"`

	KasRecordCreatedAt time.Time `gorm:"column:kas_record_created_at;not null" json:"kas_record_created_at"`
	KasRecordUpdatedAt time.Time `gorm:"column:kas_record_updated_at;not null" json:"kas_record_updated_at"`

	// Relasi
	KasRecordPayments []KasPayment `gorm:"foreignKey:KasPaymentKasRecordID;references:KasRecordID" json:"kas_record_payments,omitempty"`
}

func (KasRecord) TableName() string {
	return "kas_records"
}

func (m *KasRecord) BeforeCreate(tx *gorm.DB) error {
	if m.KasRecordID == uuid.Nil {
		m.KasRecordID = uuid.New()
	}
	now := time.Now()
	if m.KasRecordCreatedAt.IsZero() {
		m.KasRecordCreatedAt = now
	}
	m.KasRecordUpdatedAt = now
	return nil
}

func (m *KasRecord) BeforeUpdate(tx *gorm.DB) error {
	m.KasRecordUpdatedAt = time.Now()
	return nil
}

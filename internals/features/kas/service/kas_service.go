// file: internals/features/kas/service/kas_service.go
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	"eschoolku_backend/internals/features/kas/model"
	helper "eschoolku_backend/internals/helpers"
)

// KasService adalah mesin buku kas per eschool. Semua mutasi yang
// menyentuh lebih dari satu row berjalan dalam satu transaksi; saldo
// selalu dihitung ulang saat dibaca, tidak pernah di-cache.
type KasService struct {
	DB *gorm.DB

	// Now bisa di-override di test untuk mengunci "bulan berjalan".
	Now func() time.Time
}

func NewKasService(db *gorm.DB) *KasService {
	return &KasService{DB: db, Now: time.Now}
}

// =========================================================
// RECORD INCOME
// =========================================================

type PaymentInput struct {
	MemberID uuid.UUID
	Amount   int
	Month    int
	Year     int
}

type RecordIncomeCmd struct {
	EschoolID   uuid.UUID
	RecorderID  uuid.UUID
	Description string
	Date        string // YYYY-MM-DD
	Payments    []PaymentInput

	// AdminOverride mengizinkan member membayar periode yang sudah lunas
	// (double dues). Harus eksplisit dari caller, tidak pernah implisit.
	AdminOverride bool
}

// RecordIncome mencatat pemasukan iuran dengan alokasi per member.
// kas_record_amount dihitung dari Σ alokasi, jadi invariant
// "amount == Σ payments" tidak mungkin dilanggar lewat jalur ini.
func (s *KasService) RecordIncome(ctx context.Context, cmd RecordIncomeCmd) (*model.KasRecord, error) {
	if len(cmd.Payments) == 0 {
		return nil, helper.ErrValidation("payments tidak boleh kosong")
	}
	if strings.TrimSpace(cmd.Description) == "" {
		return nil, helper.ErrValidation("description wajib diisi")
	}
	date, err := helper.ParseDate(cmd.Date)
	if err != nil {
		return nil, err
	}

	total := 0
	seen := map[string]bool{} // duplikat (member, month, year) dalam satu batch
	for _, p := range cmd.Payments {
		if p.Amount <= 0 {
			return nil, helper.ErrValidation("amount alokasi harus > 0")
		}
		if p.Month < 1 || p.Month > 12 {
			return nil, helper.ErrValidation("month harus 1..12")
		}
		if p.Year < 2020 || p.Year > 2100 {
			return nil, helper.ErrValidation("year harus 2020..2100")
		}
		key := fmt.Sprintf("%s|%d|%d", p.MemberID, p.Month, p.Year)
		if seen[key] {
			return nil, helper.ErrConflict("member yang sama membayar periode yang sama dua kali dalam satu batch")
		}
		seen[key] = true
		total += p.Amount
	}

	var out model.KasRecord
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roster, err := rosterSet(tx, cmd.EschoolID)
		if err != nil {
			return err
		}
		if len(roster) == 0 {
			return helper.ErrNotFound("eschool tidak ditemukan atau belum punya anggota")
		}

		for _, p := range cmd.Payments {
			if !roster[p.MemberID] {
				return helper.ErrValidation("member bukan anggota eschool ini: " + p.MemberID.String())
			}
			// Duplikat periode lintas record: conflict kecuali override admin.
			if !cmd.AdminOverride {
				var dup int64
				if err := tx.Model(&model.KasPayment{}).
					Joins("JOIN kas_records ON kas_records.kas_record_id = kas_payments.kas_payment_kas_record_id").
					Where("kas_records.kas_record_eschool_id = ?", cmd.EschoolID).
					Where("kas_payments.kas_payment_member_id = ? AND kas_payments.kas_payment_month = ? AND kas_payments.kas_payment_year = ? AND kas_payments.kas_payment_is_paid = ?",
						p.MemberID, p.Month, p.Year, true).
					Count(&dup).Error; err != nil {
					return err
				}
				if dup > 0 {
					return helper.ErrConflict(fmt.Sprintf("iuran periode %d/%d untuk member ini sudah lunas", p.Month, p.Year))
				}
			}
		}

		rec := model.KasRecord{
			KasRecordEschoolID:   cmd.EschoolID,
			KasRecordType:        model.KasRecordTypeIncome,
			KasRecordAmount:      total,
			KasRecordDescription: strings.TrimSpace(cmd.Description),
			KasRecordDate:        date,
			KasRecordRecorderID:  cmd.RecorderID,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		paidDate := date
		for _, p := range cmd.Payments {
			pay := model.KasPayment{
				KasPaymentKasRecordID: rec.KasRecordID,
				KasPaymentMemberID:    p.MemberID,
				KasPaymentAmount:      p.Amount,
				KasPaymentMonth:       p.Month,
				KasPaymentYear:        p.Year,
				KasPaymentIsPaid:      true,
				KasPaymentPaidDate:    &paidDate,
			}
			if err := tx.Create(&pay).Error; err != nil {
				return err
			}
			rec.KasRecordPayments = append(rec.KasRecordPayments, pay)
		}

		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// =========================================================
// RECORD EXPENSE
// =========================================================

type RecordExpenseCmd struct {
	EschoolID   uuid.UUID
	RecorderID  uuid.UUID
	Amount      int
	Description string
	Date        string
	Category    *string
}

func (s *KasService) RecordExpense(ctx context.Context, cmd RecordExpenseCmd) (*model.KasRecord, error) {
	if cmd.Amount <= 0 {
		return nil, helper.ErrValidation("amount harus > 0")
	}
	if strings.TrimSpace(cmd.Description) == "" {
		return nil, helper.ErrValidation("description wajib diisi")
	}
	date, err := helper.ParseDate(cmd.Date)
	if err != nil {
		return nil, err
	}

	rec := model.KasRecord{
		KasRecordEschoolID:   cmd.EschoolID,
		KasRecordType:        model.KasRecordTypeExpense,
		KasRecordAmount:      cmd.Amount,
		KasRecordDescription: strings.TrimSpace(cmd.Description),
		KasRecordDate:        date,
		KasRecordCategory:    cmd.Category,
		KasRecordRecorderID:  cmd.RecorderID,
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// =========================================================
// UPDATE / DELETE RECORD
// =========================================================

type UpdateRecordCmd struct {
	Description *string
	Amount      *int
}

// UpdateRecord hanya mengizinkan field terbatas. Amount tidak boleh
// diubah kalau record income sudah punya alokasi (invariant Σ payments
// == amount akan pecah).
func (s *KasService) UpdateRecord(ctx context.Context, id uuid.UUID, cmd UpdateRecordCmd) (*model.KasRecord, error) {
	var out model.KasRecord
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.KasRecord
		if err := tx.First(&rec, "kas_record_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("kas record tidak ditemukan")
			}
			return err
		}

		if cmd.Amount != nil {
			if *cmd.Amount <= 0 {
				return helper.ErrValidation("amount harus > 0")
			}
			n, err := paymentCount(tx, rec.KasRecordID)
			if err != nil {
				return err
			}
			if n > 0 {
				return helper.ErrConflict("amount record dengan alokasi pembayaran tidak bisa diubah")
			}
			rec.KasRecordAmount = *cmd.Amount
		}
		if cmd.Description != nil {
			if strings.TrimSpace(*cmd.Description) == "" {
				return helper.ErrValidation("description tidak boleh kosong")
			}
			rec.KasRecordDescription = strings.TrimSpace(*cmd.Description)
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecord: record yang sudah punya alokasi pembayaran tidak bisa
// dihapus.
func (s *KasService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.KasRecord
		if err := tx.First(&rec, "kas_record_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("kas record tidak ditemukan")
			}
			return err
		}
		n, err := paymentCount(tx, rec.KasRecordID)
		if err != nil {
			return err
		}
		if n > 0 {
			return helper.ErrConflict("record dengan alokasi pembayaran tidak bisa dihapus")
		}
		return tx.Delete(&rec).Error
	})
}

// =========================================================
// MARK PAID / UNPAID (settle alokasi per member)
// =========================================================

func (s *KasService) MarkPaymentPaid(ctx context.Context, id uuid.UUID, adminOverride bool) (*model.KasPayment, error) {
	var out model.KasPayment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pay model.KasPayment
		if err := tx.First(&pay, "kas_payment_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.ErrNotFound("kas payment tidak ditemukan")
			}
			return err
		}
		if pay.KasPaymentIsPaid {
			return helper.ErrConflict("payment sudah lunas")
		}

		var rec model.KasRecord
		if err := tx.First(&rec, "kas_record_id = ?", pay.KasPaymentKasRecordID).Error; err != nil {
			return err
		}

		if !adminOverride {
			var dup int64
			if err := tx.Model(&model.KasPayment{}).
				Joins("JOIN kas_records ON kas_records.kas_record_id = kas_payments.kas_payment_kas_record_id").
				Where("kas_records.kas_record_eschool_id = ?", rec.KasRecordEschoolID).
				Where("kas_payments.kas_payment_member_id = ? AND kas_payments.kas_payment_month = ? AND kas_payments.kas_payment_year = ? AND kas_payments.kas_payment_is_paid = ?",
					pay.KasPaymentMemberID, pay.KasPaymentMonth, pay.KasPaymentYear, true).
				Count(&dup).Error; err != nil {
				return err
			}
			if dup > 0 {
				return helper.ErrConflict("member sudah lunas untuk periode ini")
			}
		}

		now := s.Now()
		pay.KasPaymentIsPaid = true
		pay.KasPaymentPaidDate = &now
		if err := tx.Save(&pay).Error; err != nil {
			return err
		}
		out = pay
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *KasService) MarkPaymentUnpaid(ctx context.Context, id uuid.UUID) (*model.KasPayment, error) {
	var pay model.KasPayment
	if err := s.DB.WithContext(ctx).First(&pay, "kas_payment_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.ErrNotFound("kas payment tidak ditemukan")
		}
		return nil, err
	}
	pay.KasPaymentIsPaid = false
	pay.KasPaymentPaidDate = nil
	if err := s.DB.WithContext(ctx).Save(&pay).Error; err != nil {
		return nil, err
	}
	return &pay, nil
}

// =========================================================
// LOOKUP
// =========================================================

func (s *KasService) GetRecord(ctx context.Context, id uuid.UUID) (*model.KasRecord, error) {
	var rec model.KasRecord
	err := s.DB.WithContext(ctx).
		Preload("KasRecordPayments").
		First(&rec, "kas_record_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.ErrNotFound("kas record tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// EschoolOfPayment: eschool pemilik satu alokasi pembayaran, dipakai
// controller untuk cek akses sebelum settle.
func (s *KasService) EschoolOfPayment(ctx context.Context, paymentID uuid.UUID) (uuid.UUID, error) {
	var pay model.KasPayment
	err := s.DB.WithContext(ctx).First(&pay, "kas_payment_id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, helper.ErrNotFound("kas payment tidak ditemukan")
	}
	if err != nil {
		return uuid.Nil, err
	}
	var rec model.KasRecord
	if err := s.DB.WithContext(ctx).First(&rec, "kas_record_id = ?", pay.KasPaymentKasRecordID).Error; err != nil {
		return uuid.Nil, err
	}
	return rec.KasRecordEschoolID, nil
}

// =========================================================
// SUMMARY
// =========================================================

type CurrentMonthSummary struct {
	PaidCount         int     `json:"paid_count"`
	UnpaidCount       int     `json:"unpaid_count"`
	PaymentPercentage float64 `json:"payment_percentage"`
}

type KasSummary struct {
	TotalIncome  int64               `json:"total_income"`
	TotalExpense int64               `json:"total_expense"`
	Balance      int64               `json:"balance"`
	CurrentMonth CurrentMonthSummary `json:"current_month"`
}

// GetSummary: saldo = Σ income − Σ expense, dihitung on-read.
// paid/unpaid bulan berjalan dihitung terhadap roster anggota eschool;
// nol anggota berarti 0%, bukan NaN.
func (s *KasService) GetSummary(ctx context.Context, eschoolID uuid.UUID) (*KasSummary, error) {
	db := s.DB.WithContext(ctx)

	sumFor := func(t model.KasRecordType) (int64, error) {
		var v *int64
		err := db.Model(&model.KasRecord{}).
			Select("SUM(kas_record_amount)").
			Where("kas_record_eschool_id = ? AND kas_record_type = ?", eschoolID, t).
			Scan(&v).Error
		if err != nil || v == nil {
			return 0, err
		}
		return *v, nil
	}

	income, err := sumFor(model.KasRecordTypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := sumFor(model.KasRecordTypeExpense)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	month, year := int(now.Month()), now.Year()

	var roster []uuid.UUID
	if err := db.Model(&membershipModel.Membership{}).
		Where("membership_eschool_id = ?", eschoolID).
		Pluck("membership_user_id", &roster).Error; err != nil {
		return nil, err
	}

	var paidMembers []uuid.UUID
	if err := db.Model(&model.KasPayment{}).
		Distinct("kas_payment_member_id").
		Joins("JOIN kas_records ON kas_records.kas_record_id = kas_payments.kas_payment_kas_record_id").
		Where("kas_records.kas_record_eschool_id = ?", eschoolID).
		Where("kas_payments.kas_payment_month = ? AND kas_payments.kas_payment_year = ? AND kas_payments.kas_payment_is_paid = ?", month, year, true).
		Pluck("kas_payment_member_id", &paidMembers).Error; err != nil {
		return nil, err
	}

	paidSet := map[uuid.UUID]bool{}
	for _, id := range paidMembers {
		paidSet[id] = true
	}
	paid := 0
	for _, id := range roster {
		if paidSet[id] {
			paid++
		}
	}
	unpaid := len(roster) - paid

	return &KasSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income - expense,
		CurrentMonth: CurrentMonthSummary{
			PaidCount:         paid,
			UnpaidCount:       unpaid,
			PaymentPercentage: helper.Percent1(int64(paid), int64(len(roster))),
		},
	}, nil
}

// =========================================================
// LIST + EXPORT
// =========================================================

type ListRecordsFilter struct {
	Type     string // "", "income", "expense"
	DateFrom string
	DateTo   string
}

func (s *KasService) ListRecords(ctx context.Context, eschoolID uuid.UUID, f ListRecordsFilter, paging helper.Paging) ([]model.KasRecord, int64, error) {
	q, err := s.filteredRecords(ctx, eschoolID, f)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.KasRecord
	if err := q.
		Preload("KasRecordPayments").
		Order("kas_record_date DESC, kas_record_created_at DESC").
		Limit(paging.Limit).
		Offset(paging.Offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ExportCSV menghasilkan stream CSV (date,type,amount,description) untuk
// record terfilter. Murni read-side formatting.
func (s *KasService) ExportCSV(ctx context.Context, eschoolID uuid.UUID, f ListRecordsFilter) ([]byte, error) {
	q, err := s.filteredRecords(ctx, eschoolID, f)
	if err != nil {
		return nil, err
	}

	var list []model.KasRecord
	if err := q.Order("kas_record_date ASC, kas_record_created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "type", "amount", "description"}); err != nil {
		return nil, err
	}
	for _, r := range list {
		row := []string{
			r.KasRecordDate.Format(helper.DateLayout),
			string(r.KasRecordType),
			fmt.Sprintf("%d", r.KasRecordAmount),
			r.KasRecordDescription,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *KasService) filteredRecords(ctx context.Context, eschoolID uuid.UUID, f ListRecordsFilter) (*gorm.DB, error) {
	q := s.DB.WithContext(ctx).Model(&model.KasRecord{}).
		Where("kas_record_eschool_id = ?", eschoolID)

	if f.Type != "" {
		if f.Type != string(model.KasRecordTypeIncome) && f.Type != string(model.KasRecordTypeExpense) {
			return nil, helper.ErrValidation("type harus income atau expense")
		}
		q = q.Where("kas_record_type = ?", f.Type)
	}
	if f.DateFrom != "" {
		t, err := helper.ParseDate(f.DateFrom)
		if err != nil {
			return nil, err
		}
		q = q.Where("kas_record_date >= ?", t)
	}
	if f.DateTo != "" {
		t, err := helper.ParseDate(f.DateTo)
		if err != nil {
			return nil, err
		}
		q = q.Where("kas_record_date <= ?", t)
	}
	return q, nil
}

// ===== internal =====

func rosterSet(tx *gorm.DB, eschoolID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := tx.Model(&membershipModel.Membership{}).
		Where("membership_eschool_id = ?", eschoolID).
		Pluck("membership_user_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func paymentCount(tx *gorm.DB, recordID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.KasPayment{}).
		Where("kas_payment_kas_record_id = ?", recordID).
		Count(&n).Error
	return n, err
}

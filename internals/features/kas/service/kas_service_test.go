// file: internals/features/kas/service/kas_service_test.go
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"eschoolku_backend/internals/constants"
	eschoolModel "eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	"eschoolku_backend/internals/features/kas/model"
	schoolModel "eschoolku_backend/internals/features/school/schools/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

// Bulan berjalan dikunci ke Maret 2026 supaya summary deterministik.
var fixedNow = time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&schoolModel.School{},
		&userModel.User{},
		&eschoolModel.Eschool{},
		&membershipModel.Membership{},
		&model.KasRecord{},
		&model.KasPayment{},
	))
	return db
}

func newKasService(db *gorm.DB) *KasService {
	svc := NewKasService(db)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

type fixture struct {
	school  schoolModel.School
	eschool eschoolModel.Eschool
	members []userModel.User
}

var userSeq int

func seedFixture(t *testing.T, db *gorm.DB, memberCount int) fixture {
	t.Helper()
	school := schoolModel.School{SchoolName: "SMA 1", SchoolSlug: "sma-1-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&school).Error)

	esc := eschoolModel.Eschool{
		EschoolName:             "Futsal",
		EschoolSchoolID:         school.SchoolID,
		EschoolMonthlyKasAmount: 50000,
		EschoolIsActive:         true,
	}
	require.NoError(t, db.Create(&esc).Error)

	f := fixture{school: school, eschool: esc}
	for i := 0; i < memberCount; i++ {
		userSeq++
		u := userModel.User{
			UserName:     fmt.Sprintf("Member %d", userSeq),
			UserEmail:    fmt.Sprintf("member%d-%s@example.com", userSeq, uuid.NewString()[:8]),
			UserPassword: "x",
			UserRole:     constants.RoleSiswa,
			UserSchoolID: school.SchoolID,
		}
		require.NoError(t, db.Create(&u).Error)
		require.NoError(t, db.Create(&membershipModel.Membership{
			MembershipUserID:    u.UserID,
			MembershipEschoolID: esc.EschoolID,
			MembershipRole:      constants.EschoolRoleMember,
		}).Error)
		f.members = append(f.members, u)
	}
	return f
}

func TestRecordIncomeAmountIsSumOfAllocations(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 2)

	rec, err := svc.RecordIncome(context.Background(), RecordIncomeCmd{
		EschoolID:   f.eschool.EschoolID,
		RecorderID:  f.members[0].UserID,
		Description: "Iuran Maret",
		Date:        "2026-03-10",
		Payments: []PaymentInput{
			{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026},
			{MemberID: f.members[1].UserID, Amount: 50000, Month: 3, Year: 2026},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100000, rec.KasRecordAmount)
	assert.Equal(t, model.KasRecordTypeIncome, rec.KasRecordType)
	require.Len(t, rec.KasRecordPayments, 2)
	for _, p := range rec.KasRecordPayments {
		assert.True(t, p.KasPaymentIsPaid)
		require.NotNil(t, p.KasPaymentPaidDate)
		assert.Equal(t, "2026-03-10", p.KasPaymentPaidDate.Format(helper.DateLayout))
	}
}

func TestRecordIncomeRejectsBatchDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)

	_, err := svc.RecordIncome(context.Background(), RecordIncomeCmd{
		EschoolID:   f.eschool.EschoolID,
		RecorderID:  f.members[0].UserID,
		Description: "Iuran dobel",
		Date:        "2026-03-10",
		Payments: []PaymentInput{
			{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026},
			{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026},
		},
	})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))
}

func TestRecordIncomeRejectsPaidPeriodUnlessOverride(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	pay := []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}}

	_, err := svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret", Date: "2026-03-01", Payments: pay,
	})
	require.NoError(t, err)

	// Periode sudah lunas → conflict
	_, err = svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret lagi", Date: "2026-03-15", Payments: pay,
	})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))

	// Override eksplisit boleh (double dues)
	_, err = svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret (override)", Date: "2026-03-15",
		Payments: pay, AdminOverride: true,
	})
	require.NoError(t, err)
}

func TestRecordIncomeRejectsNonMember(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)

	_, err := svc.RecordIncome(context.Background(), RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: uuid.New(), Amount: 50000, Month: 3, Year: 2026}},
	})
	require.Error(t, err)
	assert.True(t, helper.IsValidation(err))
}

func TestUpdateRecordAmountGuardedByAllocations(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	income, err := svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)

	newAmount := 75000
	_, err = svc.UpdateRecord(ctx, income.KasRecordID, UpdateRecordCmd{Amount: &newAmount})
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))

	// Deskripsi tetap boleh diubah
	desc := "Iuran Maret (revisi)"
	updated, err := svc.UpdateRecord(ctx, income.KasRecordID, UpdateRecordCmd{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.KasRecordDescription)

	// Expense tanpa alokasi: amount bebas diubah
	expense, err := svc.RecordExpense(ctx, RecordExpenseCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Amount: 20000, Description: "Beli bola", Date: "2026-03-12",
	})
	require.NoError(t, err)
	updated, err = svc.UpdateRecord(ctx, expense.KasRecordID, UpdateRecordCmd{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, 75000, updated.KasRecordAmount)
}

func TestDeleteRecordGuardedByAllocations(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	income, err := svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)

	err = svc.DeleteRecord(ctx, income.KasRecordID)
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))

	expense, err := svc.RecordExpense(ctx, RecordExpenseCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Amount: 20000, Description: "Beli bola", Date: "2026-03-12",
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRecord(ctx, expense.KasRecordID))
}

func TestMarkPaymentPaidAndUnpaid(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	income, err := svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)
	payID := income.KasRecordPayments[0].KasPaymentID

	// Sudah lunas → conflict
	_, err = svc.MarkPaymentPaid(ctx, payID, false)
	require.Error(t, err)
	assert.True(t, helper.IsConflict(err))

	unpaid, err := svc.MarkPaymentUnpaid(ctx, payID)
	require.NoError(t, err)
	assert.False(t, unpaid.KasPaymentIsPaid)
	assert.Nil(t, unpaid.KasPaymentPaidDate)

	paid, err := svc.MarkPaymentPaid(ctx, payID, false)
	require.NoError(t, err)
	assert.True(t, paid.KasPaymentIsPaid)
	require.NotNil(t, paid.KasPaymentPaidDate)
	assert.Equal(t, fixedNow, *paid.KasPaymentPaidDate)
}

func TestGetSummaryBalanceAndCurrentMonth(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 2)
	ctx := context.Background()

	_, err := svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret", Date: "2026-03-10",
		Payments: []PaymentInput{
			{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026},
			{MemberID: f.members[1].UserID, Amount: 50000, Month: 3, Year: 2026},
		},
	})
	require.NoError(t, err)

	_, err = svc.RecordExpense(ctx, RecordExpenseCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Amount: 30000, Description: "Sewa lapangan", Date: "2026-03-12",
	})
	require.NoError(t, err)

	sum, err := svc.GetSummary(ctx, f.eschool.EschoolID)
	require.NoError(t, err)
	assert.EqualValues(t, 100000, sum.TotalIncome)
	assert.EqualValues(t, 30000, sum.TotalExpense)
	assert.EqualValues(t, 70000, sum.Balance)
	assert.Equal(t, 2, sum.CurrentMonth.PaidCount)
	assert.Equal(t, 0, sum.CurrentMonth.UnpaidCount)
	assert.Equal(t, 100.0, sum.CurrentMonth.PaymentPercentage)
}

func TestGetSummaryUnpaidMembers(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 2)
	ctx := context.Background()

	// Hanya member pertama yang bayar bulan berjalan
	_, err := svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)

	sum, err := svc.GetSummary(ctx, f.eschool.EschoolID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CurrentMonth.PaidCount)
	assert.Equal(t, 1, sum.CurrentMonth.UnpaidCount)
	assert.Equal(t, 50.0, sum.CurrentMonth.PaymentPercentage)
}

func TestExportCSVChronological(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, RecordExpenseCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Amount: 20000, Description: "Beli bola", Date: "2026-03-12",
	})
	require.NoError(t, err)
	_, err = svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)

	data, err := svc.ExportCSV(ctx, f.eschool.EschoolID, ListRecordsFilter{})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "type", "amount", "description"}, rows[0])
	assert.Equal(t, []string{"2026-03-10", "income", "50000", "Iuran Maret"}, rows[1])
	assert.Equal(t, []string{"2026-03-12", "expense", "20000", "Beli bola"}, rows[2])
}

func TestListRecordsFilterByType(t *testing.T) {
	db := newTestDB(t)
	svc := newKasService(db)
	f := seedFixture(t, db, 1)
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, RecordExpenseCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Amount: 20000, Description: "Beli bola", Date: "2026-03-12",
	})
	require.NoError(t, err)
	_, err = svc.RecordIncome(ctx, RecordIncomeCmd{
		EschoolID: f.eschool.EschoolID, RecorderID: f.members[0].UserID,
		Description: "Iuran Maret", Date: "2026-03-10",
		Payments: []PaymentInput{{MemberID: f.members[0].UserID, Amount: 50000, Month: 3, Year: 2026}},
	})
	require.NoError(t, err)

	list, total, err := svc.ListRecords(ctx, f.eschool.EschoolID,
		ListRecordsFilter{Type: "expense"}, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, model.KasRecordTypeExpense, list[0].KasRecordType)

	_, _, err = svc.ListRecords(ctx, f.eschool.EschoolID,
		ListRecordsFilter{Type: "transfer"}, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	require.Error(t, err)
	assert.True(t, helper.IsValidation(err))
}

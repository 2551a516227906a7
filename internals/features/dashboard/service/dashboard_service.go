// file: internals/features/dashboard/service/dashboard_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eschoolku_backend/internals/constants"
	attendanceService "eschoolku_backend/internals/features/attendance/service"
	"eschoolku_backend/internals/features/dashboard/dto"
	eschoolModel "eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	membershipService "eschoolku_backend/internals/features/eschools/membership/service"
	kasModel "eschoolku_backend/internals/features/kas/model"
	kasService "eschoolku_backend/internals/features/kas/service"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

// DashboardService read-only: mengkomposisi Membership, Kas, dan
// Attendance jadi ringkasan per role. Dispatch lewat Viewer capability,
// bukan perbandingan string role di tiap handler.
type DashboardService struct {
	DB          *gorm.DB
	Memberships *membershipService.MembershipService
	Kas         *kasService.KasService
	Attendance  *attendanceService.AttendanceService

	Now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		DB:          db,
		Memberships: membershipService.NewMembershipService(db),
		Kas:         kasService.NewKasService(db),
		Attendance:  attendanceService.NewAttendanceService(db),
		Now:         time.Now,
	}
}

// =========================================================
// STUDENT
// =========================================================

func (s *DashboardService) StudentOverview(ctx context.Context, viewer helperAuth.Viewer) (*dto.StudentOverview, error) {
	var memberships []membershipModel.Membership
	if err := s.DB.WithContext(ctx).
		Where("membership_user_id = ?", viewer.UserID).
		Order("membership_created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	now := s.Now()
	month, year := int(now.Month()), now.Year()

	out := &dto.StudentOverview{UserID: viewer.UserID}
	var sumPresent, sumTotal int

	for _, m := range memberships {
		var esc eschoolModel.Eschool
		if err := s.DB.WithContext(ctx).First(&esc, "eschool_id = ?", m.MembershipEschoolID).Error; err != nil {
			continue // tenant soft-deleted: lewati
		}

		present, total, err := s.Attendance.MemberRate(ctx, esc.EschoolID, viewer.UserID)
		if err != nil {
			return nil, err
		}

		paidTotal, err := s.memberPaidTotal(ctx, esc.EschoolID, viewer.UserID)
		if err != nil {
			return nil, err
		}
		currentPaid, err := s.memberPeriodPaid(ctx, esc.EschoolID, viewer.UserID, month, year)
		if err != nil {
			return nil, err
		}

		var outstanding int64
		if !currentPaid {
			outstanding = int64(esc.EschoolMonthlyKasAmount)
		}

		row := dto.StudentEschoolSummary{
			EschoolID:         esc.EschoolID,
			EschoolName:       esc.EschoolName,
			Role:              m.MembershipRole,
			AttendancePresent: present,
			AttendanceTotal:   total,
			AttendanceRate:    helper.Percent1(int64(present), int64(total)),
			KasPaidTotal:      paidTotal,
			KasOutstanding:    outstanding,
			CurrentMonthPaid:  currentPaid,
		}
		out.Eschools = append(out.Eschools, row)
		out.TotalKasPaid += paidTotal
		out.TotalKasOutstanding += outstanding
		sumPresent += present
		sumTotal += total
	}

	// Rata-rata lintas eschool dibobot jumlah record, bukan flat per
	// eschool, supaya eschool tanpa sesi tidak menyeret angka.
	out.AverageAttendanceRate = helper.Percent1(int64(sumPresent), int64(sumTotal))
	return out, nil
}

// =========================================================
// COORDINATOR
// =========================================================

func (s *DashboardService) CoordinatorView(ctx context.Context, viewer helperAuth.Viewer, eschoolID uuid.UUID) (*dto.CoordinatorView, error) {
	if err := s.requireRole(ctx, viewer, eschoolID, constants.EschoolRoleKoordinator); err != nil {
		return nil, err
	}

	roster, err := s.roster(ctx, eschoolID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Attendance.GetStatistics(ctx, eschoolID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Kas.GetSummary(ctx, eschoolID)
	if err != nil {
		return nil, err
	}

	return &dto.CoordinatorView{
		EschoolID:  eschoolID,
		Roster:     roster,
		Attendance: stats,
		Kas:        summary,
	}, nil
}

// =========================================================
// TREASURER
// =========================================================

func (s *DashboardService) TreasurerView(ctx context.Context, viewer helperAuth.Viewer, eschoolID uuid.UUID) (*dto.TreasurerView, error) {
	if err := s.requireRole(ctx, viewer, eschoolID, constants.EschoolRoleBendahara); err != nil {
		return nil, err
	}

	summary, err := s.Kas.GetSummary(ctx, eschoolID)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.outstandingMembers(ctx, eschoolID)
	if err != nil {
		return nil, err
	}

	return &dto.TreasurerView{
		EschoolID:   eschoolID,
		Summary:     summary,
		Outstanding: outstanding,
	}, nil
}

// =========================================================
// STAFF ROLLUP
// =========================================================

// StaffRollup merangkum semua eschool satu sekolah. Rate dirata-rata
// berbobot jumlah anggota; eschool tanpa anggota menyumbang 0 dan
// dikeluarkan dari penyebut, tidak ikut flat average.
//
// Viewer di luar sekolahnya dapat payload kosong, bukan error — read
// aggregate di-degrade, hanya mutasi yang fail hard.
func (s *DashboardService) StaffRollup(ctx context.Context, viewer helperAuth.Viewer, schoolID uuid.UUID) (*dto.StaffRollup, error) {
	out := &dto.StaffRollup{SchoolID: schoolID}
	if !viewer.CanViewSchoolRollup(schoolID) {
		return out, nil
	}

	var eschools []eschoolModel.Eschool
	if err := s.DB.WithContext(ctx).
		Where("eschool_school_id = ?", schoolID).
		Order("eschool_created_at ASC").
		Find(&eschools).Error; err != nil {
		return nil, err
	}

	var weightedAttendance, weightedCollection float64
	var weightSum int

	for _, esc := range eschools {
		memberIDs, err := s.Memberships.MemberIDs(ctx, esc.EschoolID)
		if err != nil {
			return nil, err
		}

		analytics, err := s.Attendance.GetAnalytics(ctx, esc.EschoolID)
		if err != nil {
			return nil, err
		}
		summary, err := s.Kas.GetSummary(ctx, esc.EschoolID)
		if err != nil {
			return nil, err
		}

		row := dto.StaffEschoolRow{
			EschoolID:      esc.EschoolID,
			EschoolName:    esc.EschoolName,
			MemberCount:    len(memberIDs),
			AttendanceRate: analytics.Overall.AttendanceRate,
			CollectionRate: summary.CurrentMonth.PaymentPercentage,
			Balance:        summary.Balance,
		}
		out.Eschools = append(out.Eschools, row)
		out.EschoolCount++
		out.MemberCount += row.MemberCount
		out.TotalBalance += row.Balance

		if row.MemberCount > 0 {
			weightedAttendance += row.AttendanceRate * float64(row.MemberCount)
			weightedCollection += row.CollectionRate * float64(row.MemberCount)
			weightSum += row.MemberCount
		}
	}

	if weightSum > 0 {
		out.AverageAttendanceRate = round1(weightedAttendance / float64(weightSum))
		out.AverageCollectionRate = round1(weightedCollection / float64(weightSum))
	}
	return out, nil
}

// =========================================================
// internal
// =========================================================

// requireRole: staff sekolah pemilik selalu boleh; selain itu viewer
// harus memegang role tsb di eschool-nya.
func (s *DashboardService) requireRole(ctx context.Context, viewer helperAuth.Viewer, eschoolID uuid.UUID, role string) error {
	var esc eschoolModel.Eschool
	if err := s.DB.WithContext(ctx).First(&esc, "eschool_id = ?", eschoolID).Error; err != nil {
		return helper.ErrNotFound("eschool tidak ditemukan")
	}
	if viewer.CanViewSchoolRollup(esc.EschoolSchoolID) {
		return nil
	}
	got, err := s.Memberships.RoleInEschool(ctx, eschoolID, viewer.UserID)
	if err != nil {
		return err
	}
	if got != role {
		return helper.ErrForbidden("role anda tidak berhak melihat dashboard ini")
	}
	return nil
}

func (s *DashboardService) roster(ctx context.Context, eschoolID uuid.UUID) ([]dto.RosterMember, error) {
	rows, _, err := s.Memberships.ListMembers(ctx, eschoolID, helper.Paging{Limit: 500, Offset: 0, Page: 1, PerPage: 500})
	if err != nil {
		return nil, err
	}
	out := make([]dto.RosterMember, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.RosterMember{
			UserID:   r.User.UserID,
			UserName: r.User.UserName,
			Role:     r.Membership.MembershipRole,
		})
	}
	return out, nil
}

// outstandingMembers: anggota tanpa payment lunas untuk periode berjalan.
func (s *DashboardService) outstandingMembers(ctx context.Context, eschoolID uuid.UUID) ([]dto.OutstandingMember, error) {
	var esc eschoolModel.Eschool
	if err := s.DB.WithContext(ctx).First(&esc, "eschool_id = ?", eschoolID).Error; err != nil {
		return nil, helper.ErrNotFound("eschool tidak ditemukan")
	}

	now := s.Now()
	month, year := int(now.Month()), now.Year()

	rows, _, err := s.Memberships.ListMembers(ctx, eschoolID, helper.Paging{Limit: 500, Offset: 0, Page: 1, PerPage: 500})
	if err != nil {
		return nil, err
	}

	out := []dto.OutstandingMember{}
	for _, r := range rows {
		paid, err := s.memberPeriodPaid(ctx, eschoolID, r.User.UserID, month, year)
		if err != nil {
			return nil, err
		}
		if !paid {
			out = append(out, dto.OutstandingMember{
				UserID:   r.User.UserID,
				UserName: r.User.UserName,
				Amount:   esc.EschoolMonthlyKasAmount,
			})
		}
	}
	return out, nil
}

func (s *DashboardService) memberPaidTotal(ctx context.Context, eschoolID, memberID uuid.UUID) (int64, error) {
	var v *int64
	err := s.DB.WithContext(ctx).Model(&kasModel.KasPayment{}).
		Select("SUM(kas_payments.kas_payment_amount)").
		Joins("JOIN kas_records ON kas_records.kas_record_id = kas_payments.kas_payment_kas_record_id").
		Where("kas_records.kas_record_eschool_id = ?", eschoolID).
		Where("kas_payments.kas_payment_member_id = ? AND kas_payments.kas_payment_is_paid = ?", memberID, true).
		Scan(&v).Error
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

func (s *DashboardService) memberPeriodPaid(ctx context.Context, eschoolID, memberID uuid.UUID, month, year int) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&kasModel.KasPayment{}).
		Joins("JOIN kas_records ON kas_records.kas_record_id = kas_payments.kas_payment_kas_record_id").
		Where("kas_records.kas_record_eschool_id = ?", eschoolID).
		Where("kas_payments.kas_payment_member_id = ? AND kas_payments.kas_payment_month = ? AND kas_payments.kas_payment_year = ? AND kas_payments.kas_payment_is_paid = ?",
			memberID, month, year, true).
		Count(&n).Error
	return n > 0, err
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

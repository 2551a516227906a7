// file: internals/features/attendance/controller/attendance_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eschoolku_backend/internals/constants"
	"eschoolku_backend/internals/features/attendance/dto"
	attendanceModel "eschoolku_backend/internals/features/attendance/model"
	"eschoolku_backend/internals/features/attendance/service"
	eschoolService "eschoolku_backend/internals/features/eschools/eschool/service"
	membershipService "eschoolku_backend/internals/features/eschools/membership/service"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

type AttendanceController struct {
	Service     *service.AttendanceService
	Eschools    *eschoolService.EschoolService
	Memberships *membershipService.MembershipService
	Validate    *validator.Validate
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{
		Service:     service.NewAttendanceService(db),
		Eschools:    eschoolService.NewEschoolService(db),
		Memberships: membershipService.NewMembershipService(db),
		Validate:    validator.New(),
	}
}

// requirePengurusOrStaff: pencatatan absensi hanya untuk pengurus
// eschool atau staff sekolah pemilik.
func (ctl *AttendanceController) requirePengurusOrStaff(c *fiber.Ctx, eschoolID uuid.UUID) (helperAuth.Viewer, error) {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return viewer, err
	}
	esc, err := ctl.Eschools.GetEschool(c.UserContext(), eschoolID)
	if err != nil {
		return viewer, err
	}
	if viewer.CanViewSchoolRollup(esc.EschoolSchoolID) {
		return viewer, nil
	}
	role, err := ctl.Memberships.RoleInEschool(c.UserContext(), eschoolID, viewer.UserID)
	if err != nil {
		return viewer, err
	}
	if role != constants.EschoolRoleKoordinator && role != constants.EschoolRoleBendahara {
		return viewer, helper.ErrForbidden("hanya pengurus eschool yang boleh mengelola absensi")
	}
	return viewer, nil
}

func (ctl *AttendanceController) eschoolOf(c *fiber.Ctx, attendanceID uuid.UUID) (uuid.UUID, error) {
	var rec attendanceModel.AttendanceRecord
	err := ctl.Service.DB.WithContext(c.UserContext()).
		First(&rec, "attendance_id = ?", attendanceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, helper.ErrNotFound("attendance record tidak ditemukan")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return rec.AttendanceEschoolID, nil
}

// Record (POST /attendance/record) — batch satu sesi
func (ctl *AttendanceController) Record(c *fiber.Ctx) error {
	var in dto.RecordAttendanceDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := ctl.Validate.Struct(in); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	viewer, err := ctl.requirePengurusOrStaff(c, in.EschoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	recs, err := ctl.Service.RecordAttendance(c.UserContext(), in.ToCmd(viewer.UserID))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "absensi tercatat", dto.ToAttendanceResponses(recs))
}

// Update (PUT /attendance/:id)
func (ctl *AttendanceController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.UpdateAttendanceDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}

	eschoolID, err := ctl.eschoolOf(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	rec, err := ctl.Service.UpdateAttendance(c.UserContext(), id, in.ToCmd())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "absensi diperbarui", dto.ToAttendanceResponse(*rec))
}

// Delete (DELETE /attendance/:id)
func (ctl *AttendanceController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	eschoolID, err := ctl.eschoolOf(c, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ctl.Service.DeleteAttendance(c.UserContext(), id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "absensi dihapus", fiber.Map{"attendance_id": id})
}

// ListRecords (GET /attendance/records?eschool_id=&date_from=&date_to=)
func (ctl *AttendanceController) ListRecords(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDQuery(c, "eschool_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	list, total, err := ctl.Service.ListRecords(c.UserContext(), eschoolID,
		c.Query("date_from"), c.Query("date_to"), paging)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToAttendanceResponses(list),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// GetStatistics (GET /attendance/statistics?eschool_id=)
func (ctl *AttendanceController) GetStatistics(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDQuery(c, "eschool_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	stats, err := ctl.Service.GetStatistics(c.UserContext(), eschoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", stats)
}

// GetAnalytics (GET /attendance/analytics?eschool_id=)
func (ctl *AttendanceController) GetAnalytics(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDQuery(c, "eschool_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	analytics, err := ctl.Service.GetAnalytics(c.UserContext(), eschoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", analytics)
}

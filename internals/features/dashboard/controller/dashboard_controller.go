// file: internals/features/dashboard/controller/dashboard_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eschoolku_backend/internals/features/dashboard/service"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

type DashboardController struct {
	Service *service.DashboardService
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{Service: service.NewDashboardService(db)}
}

// Student (GET /dashboard/student) — semua eschool milik viewer.
func (ctl *DashboardController) Student(c *fiber.Ctx) error {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := ctl.Service.StudentOverview(c.UserContext(), viewer)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// Coordinator (GET /dashboard/coordinator/:eschoolId)
func (ctl *DashboardController) Coordinator(c *fiber.Ctx) error {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	eschoolID, err := helper.ParseUUIDParam(c, "eschoolId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := ctl.Service.CoordinatorView(c.UserContext(), viewer, eschoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// Treasurer (GET /dashboard/treasurer/:eschoolId)
func (ctl *DashboardController) Treasurer(c *fiber.Ctx) error {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	eschoolID, err := helper.ParseUUIDParam(c, "eschoolId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := ctl.Service.TreasurerView(c.UserContext(), viewer, eschoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// Staff (GET /dashboard/staff?school_id=) — rollup sekolah; viewer di
// luar sekolahnya dapat payload kosong.
func (ctl *DashboardController) Staff(c *fiber.Ctx) error {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	schoolID := viewer.SchoolID
	if q := c.Query("school_id"); q != "" {
		schoolID, err = helper.ParseUUIDQuery(c, "school_id")
		if err != nil {
			return helper.FromFiberError(c, err)
		}
	}
	out, err := ctl.Service.StaffRollup(c.UserContext(), viewer, schoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

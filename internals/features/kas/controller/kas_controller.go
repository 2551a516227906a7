// file: internals/features/kas/controller/kas_controller.go
package controller

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eschoolku_backend/internals/constants"
	eschoolService "eschoolku_backend/internals/features/eschools/eschool/service"
	membershipService "eschoolku_backend/internals/features/eschools/membership/service"
	"eschoolku_backend/internals/features/kas/dto"
	"eschoolku_backend/internals/features/kas/service"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

type KasController struct {
	Service     *service.KasService
	Eschools    *eschoolService.EschoolService
	Memberships *membershipService.MembershipService
	Validate    *validator.Validate
}

func NewKasController(db *gorm.DB) *KasController {
	return &KasController{
		Service:     service.NewKasService(db),
		Eschools:    eschoolService.NewEschoolService(db),
		Memberships: membershipService.NewMembershipService(db),
		Validate:    validator.New(),
	}
}

// requirePengurusOrStaff: mutasi kas hanya untuk pengurus eschool
// (koordinator/bendahara) atau staff sekolah pemilik.
func (ctl *KasController) requirePengurusOrStaff(c *fiber.Ctx, eschoolID uuid.UUID) (helperAuth.Viewer, error) {
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
		return viewer, helper.ErrForbidden("hanya pengurus eschool yang boleh mengelola kas")
	}
	return viewer, nil
}

// eschoolOf: cari eschool pemilik satu kas record (untuk route by record id).
func (ctl *KasController) eschoolOf(c *fiber.Ctx, recordID uuid.UUID) (uuid.UUID, error) {
	rec, err := ctl.Service.GetRecord(c.UserContext(), recordID)
	if err != nil {
		return uuid.Nil, err
	}
	return rec.KasRecordEschoolID, nil
}

// RecordIncome (POST /kas/income)
func (ctl *KasController) RecordIncome(c *fiber.Ctx) error {
	var in dto.RecordIncomeDTO
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

	rec, err := ctl.Service.RecordIncome(c.UserContext(), in.ToCmd(viewer.UserID))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "pemasukan tercatat", dto.ToKasRecordResponse(*rec))
}

// RecordExpense (POST /kas/expense)
func (ctl *KasController) RecordExpense(c *fiber.Ctx) error {
	var in dto.RecordExpenseDTO
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

	rec, err := ctl.Service.RecordExpense(c.UserContext(), in.ToCmd(viewer.UserID))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "pengeluaran tercatat", dto.ToKasRecordResponse(*rec))
}

// UpdateRecord (PUT /kas/records/:id)
func (ctl *KasController) UpdateRecord(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.KasRecordUpdateDTO
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

	rec, err := ctl.Service.UpdateRecord(c.UserContext(), id, service.UpdateRecordCmd{
		Description: in.Description,
		Amount:      in.Amount,
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "kas record diperbarui", dto.ToKasRecordResponse(*rec))
}

// DeleteRecord (DELETE /kas/records/:id)
func (ctl *KasController) DeleteRecord(c *fiber.Ctx) error {
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

	if err := ctl.Service.DeleteRecord(c.UserContext(), id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "kas record dihapus", fiber.Map{"kas_record_id": id})
}

// MarkPaymentPaid (PUT /kas/payments/:id/mark-paid?admin_override=true)
func (ctl *KasController) MarkPaymentPaid(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	eschoolID, err := ctl.Service.EschoolOfPayment(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	override := c.Query("admin_override") == "true"
	pay, err := ctl.Service.MarkPaymentPaid(c.UserContext(), id, override)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "payment ditandai lunas", dto.ToKasPaymentResponse(*pay))
}

// MarkPaymentUnpaid (PUT /kas/payments/:id/mark-unpaid)
func (ctl *KasController) MarkPaymentUnpaid(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	eschoolID, err := ctl.Service.EschoolOfPayment(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	pay, err := ctl.Service.MarkPaymentUnpaid(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "payment ditandai belum lunas", dto.ToKasPaymentResponse(*pay))
}

// GetSummary (GET /kas/summary?eschool_id=)
func (ctl *KasController) GetSummary(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDQuery(c, "eschool_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}
	sum, err := ctl.Service.GetSummary(c.UserContext(), eschoolID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}

// ListRecords (GET /kas/records?eschool_id=&type=&date_from=&date_to=)
func (ctl *KasController) ListRecords(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDQuery(c, "eschool_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}
	f := service.ListRecordsFilter{
		Type:     c.Query("type"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	paging := helper.ResolvePaging(c, 20, 100)

	list, total, err := ctl.Service.ListRecords(c.UserContext(), eschoolID, f, paging)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToKasRecordResponses(list),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// ExportCSV (GET /kas/export/csv?eschool_id=&type=&date_from=&date_to=)
func (ctl *KasController) ExportCSV(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDQuery(c, "eschool_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}
	f := service.ListRecordsFilter{
		Type:     c.Query("type"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}

	data, err := ctl.Service.ExportCSV(c.UserContext(), eschoolID, f)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="kas_%s.csv"`, eschoolID))
	return c.Send(data)
}

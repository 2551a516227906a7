// file: internals/features/eschools/eschool/controller/eschool_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eschoolku_backend/internals/features/eschools/eschool/dto"
	"eschoolku_backend/internals/features/eschools/eschool/service"
	userDTO "eschoolku_backend/internals/features/users/user/dto"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

type EschoolController struct {
	Service  *service.EschoolService
	Validate *validator.Validate
}

func NewEschoolController(db *gorm.DB) *EschoolController {
	return &EschoolController{
		Service:  service.NewEschoolService(db),
		Validate: validator.New(),
	}
}

// requireStaffOfSchool: mutasi tenant hanya untuk staff sekolah ybs.
func requireStaffOfSchool(c *fiber.Ctx, schoolID uuid.UUID) (helperAuth.Viewer, error) {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return viewer, err
	}
	if !viewer.CanViewSchoolRollup(schoolID) {
		return viewer, helper.ErrForbidden("hanya staff sekolah ini yang boleh mengelola eschool")
	}
	return viewer, nil
}

// Create (POST /eschools) — compound: eschool + koordinator (+bendahara)
// atomic; gagal sebagian = rollback semuanya.
func (ctl *EschoolController) Create(c *fiber.Ctx) error {
	var in dto.EschoolCreateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := ctl.Validate.Struct(in); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if _, err := requireStaffOfSchool(c, in.EschoolSchoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	esc, err := ctl.Service.CreateEschool(c.UserContext(), in.ToCmd())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "eschool dibuat", dto.ToEschoolResponse(*esc))
}

// Update (PUT /eschools/:id)
func (ctl *EschoolController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.EschoolUpdateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}

	esc, err := ctl.Service.GetEschool(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := requireStaffOfSchool(c, esc.EschoolSchoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	updated, err := ctl.Service.UpdateEschool(c.UserContext(), id, in.ToCmd())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "eschool diperbarui", dto.ToEschoolResponse(*updated))
}

// Delete (DELETE /eschools/:id) — soft delete
func (ctl *EschoolController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	esc, err := ctl.Service.GetEschool(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := requireStaffOfSchool(c, esc.EschoolSchoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ctl.Service.DeleteEschool(c.UserContext(), id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "eschool dihapus", fiber.Map{"eschool_id": id})
}

// GetByID (GET /eschools/:id)
func (ctl *EschoolController) GetByID(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	esc, err := ctl.Service.GetEschool(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToEschoolResponse(*esc))
}

// List (GET /eschools?school_id=)
func (ctl *EschoolController) List(c *fiber.Ctx) error {
	schoolID, err := helper.ParseUUIDQuery(c, "school_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	list, total, err := ctl.Service.ListEschools(c.UserContext(), schoolID, paging)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToEschoolResponses(list),
		helper.BuildPagination(total, paging.Page, paging.PerPage))
}

// ListEligibleTreasurers (GET /eschools/users/treasurers?school_id=)
func (ctl *EschoolController) ListEligibleTreasurers(c *fiber.Ctx) error {
	schoolID, err := helper.ParseUUIDQuery(c, "school_id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	users, err := ctl.Service.ListEligibleTreasurers(c.UserContext(), schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "school tidak ditemukan")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", userDTO.ToUserResponses(users))
}

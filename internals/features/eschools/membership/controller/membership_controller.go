// file: internals/features/eschools/membership/controller/membership_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eschoolku_backend/internals/constants"
	eschoolService "eschoolku_backend/internals/features/eschools/eschool/service"
	"eschoolku_backend/internals/features/eschools/membership/dto"
	"eschoolku_backend/internals/features/eschools/membership/service"
	helper "eschoolku_backend/internals/helpers"
	helperAuth "eschoolku_backend/internals/helpers/auth"
)

type MembershipController struct {
	Service  *service.MembershipService
	Eschools *eschoolService.EschoolService
	Validate *validator.Validate
}

func NewMembershipController(db *gorm.DB) *MembershipController {
	return &MembershipController{
		Service:  service.NewMembershipService(db),
		Eschools: eschoolService.NewEschoolService(db),
		Validate: validator.New(),
	}
}

// requirePengurusOrStaff: mutasi membership boleh oleh staff sekolah
// pemilik atau koordinator eschool ybs.
func (ctl *MembershipController) requirePengurusOrStaff(c *fiber.Ctx, eschoolID uuid.UUID) error {
	viewer, err := helperAuth.GetViewer(c)
	if err != nil {
		return err
	}
	esc, err := ctl.Eschools.GetEschool(c.UserContext(), eschoolID)
	if err != nil {
		return err
	}
	if viewer.CanViewSchoolRollup(esc.EschoolSchoolID) {
		return nil
	}
	role, err := ctl.Service.RoleInEschool(c.UserContext(), eschoolID, viewer.UserID)
	if err != nil {
		return err
	}
	if role != constants.EschoolRoleKoordinator {
		return helper.ErrForbidden(constants.RoleErrorKoordinator("pengelolaan anggota"))
	}
	return nil
}

// AssignRole (POST /eschool/:id/members/assign-role)
func (ctl *MembershipController) AssignRole(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.AssignRoleDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := ctl.Validate.Struct(in); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	m, err := ctl.Service.AssignRole(c.UserContext(), eschoolID, in.UserID, in.Role)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "role diberikan", dto.ToMembershipResponse(*m))
}

// UpdateRole (PUT /eschool/:id/members/:userId/update-role)
func (ctl *MembershipController) UpdateRole(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.ParseUUIDParam(c, "userId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var in dto.UpdateRoleDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := ctl.Validate.Struct(in); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	m, err := ctl.Service.UpdateRole(c.UserContext(), eschoolID, userID, in.Role)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "role diperbarui", dto.ToMembershipResponse(*m))
}

// RemoveRole (DELETE /eschool/:id/members/:userId/remove-role)
func (ctl *MembershipController) RemoveRole(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	userID, err := helper.ParseUUIDParam(c, "userId")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctl.requirePengurusOrStaff(c, eschoolID); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ctl.Service.RemoveRole(c.UserContext(), eschoolID, userID); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "role dicopot", fiber.Map{
		"eschool_id": eschoolID,
		"user_id":    userID,
	})
}

// ListMembers (GET /eschool/:id/members)
func (ctl *MembershipController) ListMembers(c *fiber.Ctx) error {
	eschoolID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctl.Service.ListMembers(c.UserContext(), eschoolID, paging)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out := make([]dto.MemberResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.MemberResponse{
			MembershipID: r.Membership.MembershipID,
			UserID:       r.User.UserID,
			UserName:     r.User.UserName,
			UserEmail:    r.User.UserEmail,
			Role:         r.Membership.MembershipRole,
			JoinedAt:     r.Membership.MembershipCreatedAt,
		})
	}
	return helper.JsonList(c, "ok", out, helper.BuildPagination(total, paging.Page, paging.PerPage))
}

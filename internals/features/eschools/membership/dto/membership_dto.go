// file: internals/features/eschools/membership/dto/membership_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"eschoolku_backend/internals/features/eschools/membership/model"
)

type AssignRoleDTO struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=koordinator bendahara member"`
}

type UpdateRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=koordinator bendahara member"`
}

type MembershipResponse struct {
	MembershipID        uuid.UUID `json:"membership_id"`
	MembershipUserID    uuid.UUID `json:"membership_user_id"`
	MembershipEschoolID uuid.UUID `json:"membership_eschool_id"`
	MembershipRole      string    `json:"membership_role"`
	MembershipCreatedAt time.Time `json:"membership_created_at"`
}

func ToMembershipResponse(m model.Membership) MembershipResponse {
	return MembershipResponse{
		MembershipID:        m.MembershipID,
		MembershipUserID:    m.MembershipUserID,
		MembershipEschoolID: m.MembershipEschoolID,
		MembershipRole:      m.MembershipRole,
		MembershipCreatedAt: m.MembershipCreatedAt,
	}
}

// Roster row: membership + identitas user.
type MemberResponse struct {
	MembershipID uuid.UUID `json:"membership_id"`
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
}

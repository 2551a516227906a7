// file: internals/features/users/user/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"eschoolku_backend/internals/features/users/user/model"
)

type RegisterDTO struct {
	UserName     string    `json:"user_name" validate:"required,min=2,max=100"`
	UserEmail    string    `json:"user_email" validate:"required,email"`
	UserPassword string    `json:"user_password" validate:"required,min=8"`
	UserRole     string    `json:"user_role" validate:"required,oneof=siswa guru staff"`
	UserSchoolID uuid.UUID `json:"user_school_id" validate:"required"`
}

type LoginDTO struct {
	UserEmail    string `json:"user_email" validate:"required,email"`
	UserPassword string `json:"user_password" validate:"required"`
}

type UserResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	UserRole      string    `json:"user_role"`
	UserSchoolID  uuid.UUID `json:"user_school_id"`
	UserCreatedAt time.Time `json:"user_created_at"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

func ToUserResponse(m model.User) UserResponse {
	return UserResponse{
		UserID:        m.UserID,
		UserName:      m.UserName,
		UserEmail:     m.UserEmail,
		UserRole:      m.UserRole,
		UserSchoolID:  m.UserSchoolID,
		UserCreatedAt: m.UserCreatedAt,
	}
}

func ToUserResponses(list []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, v := range list {
		out = append(out, ToUserResponse(v))
	}
	return out
}

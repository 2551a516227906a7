// file: internals/features/users/user/controller/auth_controller.go
package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"eschoolku_backend/internals/configs"
	"eschoolku_backend/internals/features/users/user/dto"
	"eschoolku_backend/internals/features/users/user/model"
	helper "eschoolku_backend/internals/helpers"
)

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validate: validator.New()}
}

// Register (POST /auth/register)
func (ctl *AuthController) Register(c *fiber.Ctx) error {
	var in dto.RegisterDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := ctl.Validate.Struct(in); err != nil {
		return helper.JsonValidationError(c, fieldErrors(err))
	}

	email := strings.ToLower(strings.TrimSpace(in.UserEmail))

	var taken int64
	if err := ctl.DB.Model(&model.User{}).Where("user_email = ?", email).Count(&taken).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if taken > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "email sudah terpakai")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.UserPassword), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	u := model.User{
		UserName:     strings.TrimSpace(in.UserName),
		UserEmail:    email,
		UserPassword: string(hash),
		UserRole:     in.UserRole,
		UserSchoolID: in.UserSchoolID,
	}
	if err := ctl.DB.Create(&u).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "user terdaftar", dto.ToUserResponse(u))
}

// Login (POST /auth/login) — terbitkan access token HMAC dengan claims
// user_id, base_role, school_id.
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var in dto.LoginDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if err := ctl.Validate.Struct(in); err != nil {
		return helper.JsonValidationError(c, fieldErrors(err))
	}

	var u model.User
	err := ctl.DB.First(&u, "user_email = ?", strings.ToLower(strings.TrimSpace(in.UserEmail))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "email atau password salah")
	}
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if bcrypt.CompareHashAndPassword([]byte(u.UserPassword), []byte(in.UserPassword)) != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "email atau password salah")
	}

	claims := jwt.MapClaims{
		"user_id":   u.UserID.String(),
		"base_role": u.UserRole,
		"school_id": u.UserSchoolID.String(),
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
		"iat":       time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "login berhasil", dto.LoginResponse{
		AccessToken: token,
		User:        dto.ToUserResponse(u),
	})
}

// fieldErrors: validator.ValidationErrors → map field → pesan tag.
func fieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = append(out[fe.Field()], fe.Tag())
		}
	}
	return out
}

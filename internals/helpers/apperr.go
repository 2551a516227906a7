// file: internals/helpers/apperr.go
package helper

import "github.com/gofiber/fiber/v2"

// Konstruktor error domain. Service selalu mengembalikan *fiber.Error
// supaya controller tinggal meneruskan via FromFiberError.
//
//   - ErrValidation : input malformed / out-of-range      → 422
//   - ErrConflict   : pelanggaran invariant (duplikat dsb) → 409
//   - ErrNotFound   : id tidak dikenal                     → 404
//   - ErrForbidden  : role tidak berhak di tenant tsb      → 403

func ErrValidation(msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
}

func ErrConflict(msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusConflict, msg)
}

func ErrNotFound(msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, msg)
}

func ErrForbidden(msg string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, msg)
}

// IsConflict / IsNotFound / IsValidation — untuk assert di test & branching tipis.
func errCode(err error) int {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return 0
}

func IsConflict(err error) bool   { return errCode(err) == fiber.StatusConflict }
func IsNotFound(err error) bool   { return errCode(err) == fiber.StatusNotFound }
func IsValidation(err error) bool { return errCode(err) == fiber.StatusUnprocessableEntity }
func IsForbidden(err error) bool  { return errCode(err) == fiber.StatusForbidden }

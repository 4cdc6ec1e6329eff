// file: internals/features/school/errs/http.go
package errs

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MapToStatus memetakan error domain → (status HTTP, pesan aman untuk user).
// ConflictError punya payload collision sendiri dan ditangani langsung di controller.
func MapToStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound, ErrNotFound.Error()
	case errors.Is(err, ErrImmutableState):
		return fiber.StatusConflict, ErrImmutableState.Error()
	case errors.Is(err, ErrAlreadyPublished):
		return fiber.StatusConflict, ErrAlreadyPublished.Error()
	case errors.Is(err, ErrStaleState):
		return fiber.StatusConflict, ErrStaleState.Error()
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusUnprocessableEntity, ve.Error()
	}
	var ee *EmptyExamError
	if errors.As(err, &ee) {
		return fiber.StatusUnprocessableEntity, ee.Error()
	}

	switch PgCode(err) {
	case PgUniqueViolation:
		return fiber.StatusConflict, "Data duplikat terdeteksi"
	case PgFKViolation:
		return fiber.StatusBadRequest, "Referensi data tidak valid"
	case PgExclusionViolation:
		return fiber.StatusConflict, "Jadwal bentrok terdeteksi oleh constraint"
	}

	return fiber.StatusInternalServerError, "Terjadi kesalahan pada server"
}

// file: internals/features/school/marks/route/user_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	marksCtl "schoolku_backend/internals/features/school/marks/controller"
)

// MarksUserRoutes: /api/u/... — siswa melihat nilai published miliknya.
func MarksUserRoutes(user fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := marksCtl.New(db, v)

	user.Get("/marks/me", ctl.MyMarks)
}

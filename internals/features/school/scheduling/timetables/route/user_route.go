// file: internals/features/school/scheduling/timetables/route/user_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ttCtl "schoolku_backend/internals/features/school/scheduling/timetables/controller"
)

// TimetableUserRoutes: /api/u/timetables — read-only jadwal aktif.
func TimetableUserRoutes(user fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := ttCtl.New(db, v)

	r := user.Group("/timetables")
	r.Get("/current", ctl.Current)
}

// file: internals/features/school/scheduling/rooms/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	roomCtl "schoolku_backend/internals/features/school/scheduling/rooms/controller"
)

// RoomAdminRoutes: /api/a/:school_id/rooms
func RoomAdminRoutes(admin fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := roomCtl.New(db, v)

	r := admin.Group("/:school_id/rooms")
	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Patch("/:id", ctl.Patch)
	r.Delete("/:id", ctl.Delete)
}

// file: internals/features/school/scheduling/timetables/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ttCtl "schoolku_backend/internals/features/school/scheduling/timetables/controller"
)

// TimetableAdminRoutes: /api/a/:school_id/timetables
func TimetableAdminRoutes(admin fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := ttCtl.New(db, v)

	r := admin.Group("/:school_id/timetables")
	r.Post("/", ctl.CreateDraft)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Get("/:id/conflicts", ctl.DetectConflicts)
	r.Get("/:id/room-utilization", ctl.RoomUtilization)
	r.Post("/:id/publish", ctl.Publish)
	r.Post("/:id/archive", ctl.Archive)
	r.Post("/:id/entries", ctl.AddEntry)
	r.Patch("/:id/entries/:entry_id", ctl.UpdateEntry)
	r.Delete("/:id/entries/:entry_id", ctl.DeleteEntry)
}

// file: internals/features/school/scheduling/substitutions/route/staff_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	subCtl "schoolku_backend/internals/features/school/scheduling/substitutions/controller"
)

// SubstitutionStaffRoutes: /api/s/:school_id/substitutions
func SubstitutionStaffRoutes(staff fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := subCtl.New(db, v)

	r := staff.Group("/:school_id/substitutions")
	r.Post("/", ctl.Create)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Get("/:id/available-teachers", ctl.AvailableTeachers)
	r.Post("/:id/assign", ctl.Assign)
	r.Post("/:id/complete", ctl.Complete)
	r.Post("/:id/cancel", ctl.Cancel)

	staff.Get("/:school_id/teachers", ctl.ListTeachers)
}

// file: internals/features/school/exams/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	examCtl "schoolku_backend/internals/features/school/exams/controller"
)

// ExamAdminRoutes: /api/a/:school_id/exams
func ExamAdminRoutes(admin fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := examCtl.New(db, v)

	r := admin.Group("/:school_id/exams")
	r.Post("/", ctl.CreateExam)
	r.Get("/", ctl.List)
	r.Get("/:id", ctl.GetByID)
	r.Get("/:id/timetable", ctl.GetTimetable)
	r.Get("/:id/conflicts", ctl.CheckConflicts)
	r.Post("/:id/publish", ctl.Publish)
	r.Post("/:id/unpublish", ctl.Unpublish)
	r.Post("/:id/start", ctl.Start)
	r.Post("/:id/complete", ctl.Complete)
	r.Post("/:id/papers", ctl.AddPaper)
	r.Patch("/:id/papers/:paper_id", ctl.UpdatePaper)
	r.Delete("/:id/papers/:paper_id", ctl.DeletePaper)
}

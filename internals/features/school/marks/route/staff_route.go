// file: internals/features/school/marks/route/staff_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	marksCtl "schoolku_backend/internals/features/school/marks/controller"
	"schoolku_backend/internals/middlewares"
)

// MarksStaffRoutes: /api/s/:school_id/... — entry & moderasi nilai.
// Dipasang di group staff (admin/moderator/teacher).
func MarksStaffRoutes(staff fiber.Router, db *gorm.DB) {
	v := validator.New(validator.WithRequiredStructEnabled())
	ctl := marksCtl.New(db, v)

	papers := staff.Group("/:school_id/papers")
	papers.Get("/:paper_id/marks", ctl.ListMarks)
	papers.Post("/:paper_id/marks", ctl.EnterMark)
	papers.Post("/:paper_id/marks/bulk", middlewares.BulkWriteRateLimiter(), ctl.BulkEnterMarks)
	papers.Get("/:paper_id/marks/validate", ctl.ValidateMarks)
	papers.Post("/:paper_id/marks/submit", ctl.SubmitForModeration)
	papers.Post("/:paper_id/marks/publish", ctl.PublishMarks)
	papers.Get("/:paper_id/statistics", ctl.Statistics)
	papers.Post("/:paper_id/result-artifact", ctl.GenerateArtifact)

	mods := staff.Group("/:school_id/moderations")
	mods.Get("/", ctl.ListModerationRequests)
	mods.Get("/:request_id", ctl.GetModerationRequest)
	mods.Post("/:request_id/assign", ctl.AssignModerator)
	mods.Post("/:request_id/approve", ctl.Approve)
	mods.Post("/:request_id/reject", ctl.Reject)

	marks := staff.Group("/:school_id/marks")
	marks.Post("/:mark_id/corrections", ctl.AddCorrection)
	marks.Get("/:mark_id/history", ctl.ListHistory)
}

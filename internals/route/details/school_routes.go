// file: internals/route/details/school_routes.go
package details

import (
	ExamRoutes "schoolku_backend/internals/features/school/exams/route"
	MarksRoutes "schoolku_backend/internals/features/school/marks/route"
	RoomRoutes "schoolku_backend/internals/features/school/scheduling/rooms/route"
	SubstitutionRoutes "schoolku_backend/internals/features/school/scheduling/substitutions/route"
	TimetableRoutes "schoolku_backend/internals/features/school/scheduling/timetables/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

/* ===================== USER (PRIVATE) ===================== */
// Endpoint yang butuh login user biasa (token user)
func SchoolUserRoutes(r fiber.Router, db *gorm.DB) {
	TimetableRoutes.TimetableUserRoutes(r, db)
	MarksRoutes.MarksUserRoutes(r, db)
}

/* ===================== STAFF (admin/moderator/teacher) ===================== */
// Entry & moderasi nilai plus substitusi — guru dan moderator ikut pakai
func SchoolStaffRoutes(r fiber.Router, db *gorm.DB) {
	MarksRoutes.MarksStaffRoutes(r, db)
	SubstitutionRoutes.SubstitutionStaffRoutes(r, db)
}

/* ===================== ADMIN (per school) ===================== */
func SchoolAdminRoutes(r fiber.Router, db *gorm.DB) {
	TimetableRoutes.TimetableAdminRoutes(r, db)
	ExamRoutes.ExamAdminRoutes(r, db)
	RoomRoutes.RoomAdminRoutes(r, db)
}

// file: internals/route/index.go
package routes

import (
	"log"
	"os"

	schoolkuMiddleware "schoolku_backend/internals/middlewares/auth_school"
	featuresMiddleware "schoolku_backend/internals/middlewares/features"

	routeDetails "schoolku_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE (scoped) group...")
	privateScoped := app.Group("/api/u",
		schoolkuMiddleware.AuthJWT(schoolkuMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		featuresMiddleware.UseSchoolScope(),
	)

	// ===================== STAFF (per school) =====================
	// guru/moderator/admin: entry nilai, moderasi, substitusi.
	// Prefix sendiri (/api/s) — middleware group Fiber menempel di prefix,
	// jadi staff tidak boleh berbagi prefix dengan group admin.
	log.Println("[INFO] Setting up STAFF group (Auth + Scope + StaffCheck)...")
	staff := app.Group("/api/s",
		schoolkuMiddleware.AuthJWT(schoolkuMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		featuresMiddleware.UseSchoolScope(),
		featuresMiddleware.RequirePathScopeMatch(),
		featuresMiddleware.IsSchoolStaff(),
	)

	// ===================== ADMIN (per school) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + Scope + RoleCheck)...")
	admin := app.Group("/api/a",
		schoolkuMiddleware.AuthJWT(schoolkuMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		featuresMiddleware.UseSchoolScope(),
		featuresMiddleware.RequirePathScopeMatch(),
		featuresMiddleware.IsSchoolAdmin(),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting School routes...")
	routeDetails.SchoolUserRoutes(privateScoped, db)
	routeDetails.SchoolStaffRoutes(staff, db)
	routeDetails.SchoolAdminRoutes(admin, db)
}

// file: internals/helpers/auth/auth_helper.go
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* =======================================================
   LOCALS KEYS (diisi oleh middleware AuthJWT)
======================================================= */

const (
	LocUserID         = "user_id"
	LocRole           = "role"
	LocRolesGlobal    = "roles_global"
	LocSchoolRoles    = "school_roles"
	LocIsOwner        = "is_owner"
	LocActiveSchoolID = "active_school_id"
	LocSchoolID       = "school_id"
	LocTeacherID      = "teacher_id"
	LocStudentID      = "student_id"
)

// SchoolRolesEntry: satu school + daftar role user di school tsb (dari klaim token).
type SchoolRolesEntry struct {
	SchoolID uuid.UUID `json:"school_id"`
	Roles    []string  `json:"roles"`
}

// RolesClaim: bentuk ter-struktur klaim roles (diset ke Locals("roles_claim")).
type RolesClaim struct {
	RolesGlobal []string           `json:"roles_global"`
	SchoolRoles []SchoolRolesEntry `json:"school_roles"`
}

/* =======================================================
   GETTERS
======================================================= */

func localUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	v := c.Locals(key)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" tidak ditemukan di token")
	}
	switch t := v.(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" kosong")
		}
		return t, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil || id == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" tidak valid")
		}
		return id, nil
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, key+" tidak valid")
	}
}

// GetUserIDFromToken: user_id wajib ada & berbentuk UUID.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocUserID)
}

// GetActiveSchoolIDFromToken: school aktif pada sesi ini (1 sesi = 1 sekolah).
func GetActiveSchoolIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	if id, err := localUUID(c, LocActiveSchoolID); err == nil {
		return id, nil
	}
	return localUUID(c, LocSchoolID)
}

// GetTeacherIDFromToken: id record teacher milik user (bila ada di klaim).
func GetTeacherIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocTeacherID)
}

// GetStudentIDFromToken: id record student milik user (bila ada di klaim).
func GetStudentIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, LocStudentID)
}

// GetSchoolIDsFromToken: semua school yang tercantum pada klaim school_roles.
func GetSchoolIDsFromToken(c *fiber.Ctx) ([]uuid.UUID, error) {
	rc, ok := c.Locals("roles_claim").(RolesClaim)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Roles claim tidak ditemukan")
	}
	out := make([]uuid.UUID, 0, len(rc.SchoolRoles))
	for _, e := range rc.SchoolRoles {
		if e.SchoolID != uuid.Nil {
			out = append(out, e.SchoolID)
		}
	}
	return out, nil
}

// GetRolesInSchool: role user pada school tertentu (kosong bila bukan anggota).
func GetRolesInSchool(c *fiber.Ctx, schoolID uuid.UUID) []string {
	rc, ok := c.Locals("roles_claim").(RolesClaim)
	if !ok {
		return nil
	}
	for _, e := range rc.SchoolRoles {
		if e.SchoolID == schoolID {
			return e.Roles
		}
	}
	return nil
}

// IsOwner: owner global (bypass semua guard per-school).
func IsOwner(c *fiber.Ctx) bool {
	if v, ok := c.Locals(LocIsOwner).(bool); ok && v {
		return true
	}
	if rc, ok := c.Locals("roles_claim").(RolesClaim); ok {
		for _, r := range rc.RolesGlobal {
			if strings.EqualFold(r, "owner") {
				return true
			}
		}
	}
	return false
}

// GetActiveRole: role aktif hasil resolve UseSchoolScope.
func GetActiveRole(c *fiber.Ctx) string {
	if s, ok := c.Locals("active_role").(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	if s, ok := c.Locals(LocRole).(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return ""
}

package middleware

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolku_backend/internals/constants"
	helper "schoolku_backend/internals/helpers/auth"
)

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return ""
	}
}

func trimLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

/* ==========================
   Ekstraksi school_id & role dari request
========================== */

// extractSchoolIDStrict: hanya balikin kalau benar-benar UUID.
func extractSchoolIDStrict(c *fiber.Ctx) string {
	// 1) param (/:school_id)
	if v := strings.TrimSpace(c.Params("school_id")); v != "" {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	// 2) query / header
	for _, v := range []string{c.Query("school_id"), c.Get("X-School-ID")} {
		if v = strings.TrimSpace(v); v != "" {
			if _, err := uuid.Parse(v); err == nil {
				return v
			}
		}
	}
	// 3) parse path manual: /api/(a|u)/:school_id/...
	parts := strings.Split(strings.Trim(c.Path(), "/"), "/")
	if len(parts) >= 3 && strings.EqualFold(parts[0], "api") &&
		(strings.EqualFold(parts[1], "a") || strings.EqualFold(parts[1], "u")) {
		if _, err := uuid.Parse(strings.TrimSpace(parts[2])); err == nil {
			return strings.TrimSpace(parts[2])
		}
	}
	return ""
}

func extractRole(c *fiber.Ctx) string {
	for _, v := range []string{c.Query("role"), c.Query("active_role"), c.Get("X-Role"), c.Get("X-Active-Role")} {
		if r := trimLower(v); r != "" {
			return r
		}
	}
	return ""
}

/* ==========================
   Role priority (auto-pick role terbaik)
========================== */

var rolePriority = map[string]int{
	constants.RoleOwner:     100,
	constants.RoleAdmin:     90,
	constants.RoleModerator: 80,
	constants.RoleTeacher:   70,
	constants.RoleStudent:   40,
	constants.RoleUser:      10,
}

func bestRoleFor(roles []string) string {
	cands := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = trimLower(r); r != "" {
			cands = append(cands, r)
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.Slice(cands, func(i, j int) bool { return rolePriority[cands[i]] > rolePriority[cands[j]] })
	return cands[0]
}

func roleInSchool(c *fiber.Ctx, schoolID uuid.UUID, role string) bool {
	r := trimLower(role)
	if schoolID == uuid.Nil || r == "" {
		return false
	}
	for _, have := range helper.GetRolesInSchool(c, schoolID) {
		if strings.EqualFold(have, r) {
			return true
		}
	}
	return false
}

/* ==========================
   STRICT SCOPE — by PATH + token fallback
========================== */

// UseSchoolScope:
// - Coba ambil school_id dari PATH/param (UUID).
// - Kalau kosong, fallback ke GetActiveSchoolIDFromToken (1 sesi = 1 sekolah).
// - Non-owner: school harus ada di token (school_roles).
// - Role: jika dikirim user, harus ada di school tsb; kalau tidak, pilih best role.
// - Set locals: active_school_id, active_role (+ kompat: school_id, role).
func UseSchoolScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log.Println("🎯 [MIDDLEWARE] UseSchoolScope | Path:", c.Path(), "| Method:", c.Method())

		isOwner := helper.IsOwner(c)

		// 1) dari PATH/PARAM (UUID saja)
		reqSchool := strings.TrimSpace(extractSchoolIDStrict(c))

		// 2) fallback token
		if reqSchool == "" {
			if id, err := helper.GetActiveSchoolIDFromToken(c); err == nil && id != uuid.Nil {
				reqSchool = id.String()
			} else {
				return fiber.NewError(fiber.StatusBadRequest, "school_id wajib di path, parameter, atau token")
			}
		}

		schoolID, err := uuid.Parse(reqSchool)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "school_id tidak valid")
		}

		reqRole := trimLower(extractRole(c))

		// OWNER bypass
		if isOwner {
			if reqRole == "" {
				reqRole = constants.RoleOwner
			}
			c.Locals("active_school_id", reqSchool)
			c.Locals("active_role", reqRole)
			c.Locals(helper.LocSchoolID, reqSchool)
			c.Locals(helper.LocRole, reqRole)
			log.Println("    🔧 owner scope | school_id:", reqSchool, "| role:", reqRole)
			return c.Next()
		}

		rolesAtSchool := helper.GetRolesInSchool(c, schoolID)
		if len(rolesAtSchool) == 0 {
			return fiber.NewError(fiber.StatusForbidden, "Bukan anggota pada school yang diminta")
		}

		activeRole := reqRole
		if activeRole != "" {
			if !roleInSchool(c, schoolID, activeRole) {
				return fiber.NewError(fiber.StatusForbidden, "Role tidak tersedia pada school tersebut")
			}
		} else {
			activeRole = bestRoleFor(rolesAtSchool)
			if activeRole == "" {
				return fiber.NewError(fiber.StatusForbidden, "Tidak memiliki peran pada school tersebut")
			}
		}

		c.Locals("active_school_id", reqSchool)
		c.Locals("active_role", activeRole)
		c.Locals(helper.LocSchoolID, reqSchool)
		c.Locals(helper.LocRole, activeRole)

		log.Println("    🔧 scope set | school_id:", reqSchool, "| role:", activeRole)
		return c.Next()
	}
}

// RequirePathScopeMatch: path ↔ scope harus cocok (defense in depth).
func RequirePathScopeMatch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := strings.ToLower(c.Path())
		if !strings.HasPrefix(p, "/api/a/") && !strings.HasPrefix(p, "/api/s/") {
			return c.Next()
		}
		pathID := strings.TrimSpace(extractSchoolIDStrict(c))
		if pathID == "" {
			return c.Next()
		}
		active := strings.TrimSpace(asString(c.Locals("active_school_id")))
		if active == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Scope school belum ditentukan")
		}
		if !strings.EqualFold(pathID, active) {
			return fiber.NewError(fiber.StatusForbidden, "Scope school tidak cocok dengan path")
		}
		return c.Next()
	}
}

/* ==========================
   STRICT ROLE CHECK
========================== */

// IsSchoolAdmin: hanya owner/admin (teacher TIDAK otomatis lolos).
func IsSchoolAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log.Println("🔐 [MIDDLEWARE] IsSchoolAdmin | Path:", c.Path(), "| Method:", c.Method())

		sid := strings.TrimSpace(asString(c.Locals("active_school_id")))
		role := trimLower(asString(c.Locals("active_role")))
		if sid == "" || role == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Scope school/role belum ditentukan")
		}
		if helper.IsOwner(c) {
			return c.Next()
		}
		if role != constants.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Role tidak berhak mengakses endpoint ini")
		}
		schoolID, err := uuid.Parse(sid)
		if err != nil || !roleInSchool(c, schoolID, role) {
			return fiber.NewError(fiber.StatusForbidden, "Role tidak terdaftar pada school ini")
		}
		log.Println("    ✅ akses diijinkan | role:", role, "| school_id:", sid)
		return c.Next()
	}
}

// IsSchoolStaff: izinkan admin/moderator/teacher (plus owner).
func IsSchoolStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log.Println("🔐 [MIDDLEWARE] IsSchoolStaff | Path:", c.Path(), "| Method:", c.Method())

		sid := strings.TrimSpace(asString(c.Locals("active_school_id")))
		role := trimLower(asString(c.Locals("active_role")))
		if sid == "" || role == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Scope school/role belum ditentukan")
		}
		if helper.IsOwner(c) {
			return c.Next()
		}
		switch role {
		case constants.RoleAdmin, constants.RoleModerator, constants.RoleTeacher:
			// ok
		default:
			return fiber.NewError(fiber.StatusForbidden, "Role tidak berhak mengakses endpoint ini")
		}
		schoolID, err := uuid.Parse(sid)
		if err != nil || !roleInSchool(c, schoolID, role) {
			return fiber.NewError(fiber.StatusForbidden, "Role tidak terdaftar pada school ini")
		}
		log.Println("    ✅ akses diijinkan (staff) | role:", role, "| school_id:", sid)
		return c.Next()
	}
}

// IsOwnerGlobal: khusus endpoint lintas-tenant.
func IsOwnerGlobal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if helper.IsOwner(c) {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusForbidden, "Akses khusus owner")
	}
}

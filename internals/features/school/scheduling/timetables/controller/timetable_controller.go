// file: internals/features/school/scheduling/timetables/controller/timetable_controller.go
package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
	"schoolku_backend/internals/features/school/scheduling/timetables/dto"
	"schoolku_backend/internals/features/school/scheduling/timetables/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type TimetableController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Service  *service.TimetableService
}

func New(db *gorm.DB, v *validator.Validate) *TimetableController {
	return &TimetableController{DB: db, Validate: v, Service: service.New(db)}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(idStr)
}

// writeDomainError: ConflictError membawa daftar collision untuk ditampilkan,
// sisanya lewat pemetaan standar.
func writeDomainError(c *fiber.Ctx, err error) error {
	var ce *conflicts.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":    false,
			"message":    ce.Error(),
			"error_code": "CONFLICT",
			"conflicts":  ce.Conflicts,
		})
	}
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		return helper.JsonValidationError(c, ve.Fields)
	}
	code, msg := errs.MapToStatus(err)
	return helper.JsonError(c, code, msg)
}

/* ========================= Draft lifecycle ========================= */

func (ctl *TimetableController) CreateDraft(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateTimetableRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Timetable.CreateDraft] BodyParser error: %v", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tt, err := ctl.Service.CreateDraft(c.Context(), schoolID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Draft timetable dibuat", dto.FromTimetableModel(tt))
}

func (ctl *TimetableController) AddEntry(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.CreateTimetableEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, warnings, err := ctl.Service.AddEntry(c.Context(), schoolID, timetableID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Entry ditambahkan", fiber.Map{
		"entry":    dto.FromEntryModel(entry),
		"warnings": warnings,
	})
}

func (ctl *TimetableController) UpdateEntry(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	entryID, err := parseUUIDParam(c, "entry_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.UpdateTimetableEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, warnings, err := ctl.Service.UpdateEntry(c.Context(), schoolID, timetableID, entryID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Entry diperbarui", fiber.Map{
		"entry":    dto.FromEntryModel(entry),
		"warnings": warnings,
	})
}

func (ctl *TimetableController) DeleteEntry(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	entryID, err := parseUUIDParam(c, "entry_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := ctl.Service.DeleteEntry(c.Context(), schoolID, timetableID, entryID); err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonDeleted(c, "Entry dihapus", fiber.Map{"timetable_entry_id": entryID})
}

/* ========================= Publish / Archive ========================= */

func (ctl *TimetableController) DetectConflicts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	cs, err := ctl.Service.DetectConflicts(c.Context(), schoolID, timetableID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Hasil deteksi bentrok", fiber.Map{
		"conflicts": cs,
		"count":     len(cs),
	})
}

func (ctl *TimetableController) Publish(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tt, err := ctl.Service.Publish(c.Context(), schoolID, timetableID, userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Timetable dipublikasikan", dto.FromTimetableModel(tt))
}

func (ctl *TimetableController) Archive(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tt, err := ctl.Service.Archive(c.Context(), schoolID, timetableID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Timetable diarsipkan", dto.FromTimetableModel(tt))
}

/* ========================= Reads ========================= */

func (ctl *TimetableController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	p := helper.ResolvePaging(c, 20, 100)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))

	rows, total, err := ctl.Service.List(c.Context(), schoolID, status, p.Limit, p.Offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonList(c, "Daftar timetable", dto.FromTimetableModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (ctl *TimetableController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	out, err := ctl.Service.GetWithEntries(c.Context(), schoolID, timetableID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

func (ctl *TimetableController) RoomUtilization(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	timetableID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	usage, err := ctl.Service.RoomUtilization(c.Context(), schoolID, timetableID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Utilisasi room", usage)
}

// Current: timetable published aktif (read untuk staff/siswa).
func (ctl *TimetableController) Current(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	tt, err := ctl.Service.CurrentPublished(c.Context(), schoolID)
	if err != nil {
		return writeDomainError(c, err)
	}
	out, err := ctl.Service.GetWithEntries(c.Context(), schoolID, tt.TimetableID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Timetable aktif", out)
}

// file: internals/features/school/scheduling/substitutions/controller/substitution_controller.go
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
	"schoolku_backend/internals/features/school/scheduling/substitutions/dto"
	"schoolku_backend/internals/features/school/scheduling/substitutions/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type SubstitutionController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Service  *service.SubstitutionService
}

func New(db *gorm.DB, v *validator.Validate) *SubstitutionController {
	return &SubstitutionController{DB: db, Validate: v, Service: service.New(db)}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(idStr)
}

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

func (ctl *SubstitutionController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateSubstitutionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Substitution.Create] BodyParser error: %v", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	sub, err := ctl.Service.CreateRequest(c.Context(), schoolID, userID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Permintaan substitusi dibuat", dto.FromSubstitutionModel(sub))
}

func (ctl *SubstitutionController) AvailableTeachers(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	subID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	candidates, err := ctl.Service.FindAvailableTeachers(c.Context(), schoolID, subID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Kandidat guru pengganti", fiber.Map{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (ctl *SubstitutionController) Assign(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	subID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.AssignSubstituteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	sub, err := ctl.Service.AssignSubstitute(c.Context(), schoolID, subID, req.TeacherID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Guru pengganti ditugaskan", dto.FromSubstitutionModel(sub))
}

func (ctl *SubstitutionController) Complete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	subID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	sub, err := ctl.Service.Complete(c.Context(), schoolID, subID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Substitusi selesai", dto.FromSubstitutionModel(sub))
}

func (ctl *SubstitutionController) Cancel(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	subID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	sub, err := ctl.Service.Cancel(c.Context(), schoolID, subID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Substitusi dibatalkan", dto.FromSubstitutionModel(sub))
}

func (ctl *SubstitutionController) List(c *fiber.Ctx) error {
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
	return helper.JsonList(c, "Daftar substitusi",
		dto.FromSubstitutionModels(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (ctl *SubstitutionController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	subID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	sub, err := ctl.Service.GetByID(c.Context(), schoolID, subID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromSubstitutionModel(sub))
}

func (ctl *SubstitutionController) ListTeachers(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	rows, err := ctl.Service.ListTeachers(c.Context(), schoolID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Direktori guru", rows)
}

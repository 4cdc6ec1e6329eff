// file: internals/features/school/exams/controller/exam_controller.go
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
	"schoolku_backend/internals/features/school/exams/dto"
	"schoolku_backend/internals/features/school/exams/service"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type ExamController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Service  *service.ExamService
}

func New(db *gorm.DB, v *validator.Validate) *ExamController {
	return &ExamController{DB: db, Validate: v, Service: service.New(db)}
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

/* ========================= CRUD ========================= */

func (ctl *ExamController) CreateExam(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateExamRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Exam.Create] BodyParser error: %v", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ex, err := ctl.Service.CreateExam(c.Context(), schoolID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Exam dibuat", dto.FromExamModel(ex))
}

func (ctl *ExamController) AddPaper(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.CreateExamPaperRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	paper, warnings, err := ctl.Service.AddPaper(c.Context(), schoolID, examID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Paper ditambahkan", fiber.Map{
		"paper":    dto.FromPaperModel(paper),
		"warnings": warnings,
	})
}

func (ctl *ExamController) UpdatePaper(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.UpdateExamPaperRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	paper, warnings, err := ctl.Service.UpdatePaper(c.Context(), schoolID, examID, paperID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Paper diperbarui", fiber.Map{
		"paper":    dto.FromPaperModel(paper),
		"warnings": warnings,
	})
}

func (ctl *ExamController) DeletePaper(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := ctl.Service.DeletePaper(c.Context(), schoolID, examID, paperID); err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonDeleted(c, "Paper dihapus", fiber.Map{"exam_paper_id": paperID})
}

/* ========================= Lifecycle ========================= */

func (ctl *ExamController) CheckConflicts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	cs, err := ctl.Service.CheckSchedulingConflicts(c.Context(), schoolID, examID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Hasil deteksi bentrok", fiber.Map{
		"conflicts": cs,
		"count":     len(cs),
	})
}

func (ctl *ExamController) Publish(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ex, err := ctl.Service.Publish(c.Context(), schoolID, examID, userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Exam dipublikasikan", dto.FromExamModel(ex))
}

func (ctl *ExamController) Unpublish(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.UnpublishExamRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Alasan unpublish wajib diisi")
	}

	ex, err := ctl.Service.Unpublish(c.Context(), schoolID, examID, req.Reason)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Exam dikembalikan ke draft", dto.FromExamModel(ex))
}

func (ctl *ExamController) Start(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ex, err := ctl.Service.Start(c.Context(), schoolID, examID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Exam dimulai", dto.FromExamModel(ex))
}

func (ctl *ExamController) Complete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ex, err := ctl.Service.Complete(c.Context(), schoolID, examID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Exam selesai", dto.FromExamModel(ex))
}

/* ========================= Reads ========================= */

func (ctl *ExamController) List(c *fiber.Ctx) error {
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
	return helper.JsonList(c, "Daftar exam", dto.FromExamModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (ctl *ExamController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	out, err := ctl.Service.GetWithPapers(c.Context(), schoolID, examID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

func (ctl *ExamController) GetTimetable(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	examID, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	groups, err := ctl.Service.GetTimetable(c.Context(), schoolID, examID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Kalender exam", groups)
}

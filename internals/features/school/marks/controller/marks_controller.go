// file: internals/features/school/marks/controller/marks_controller.go
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
	"schoolku_backend/internals/features/school/marks/dto"
	"schoolku_backend/internals/features/school/marks/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type MarksController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Service  *service.MarksService
	Renderer service.RendererClient
}

func New(db *gorm.DB, v *validator.Validate) *MarksController {
	return &MarksController{
		DB:       db,
		Validate: v,
		Service:  service.NewMarksService(db),
		Renderer: service.NewHTTPRendererClient(),
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(idStr)
}

func writeDomainError(c *fiber.Ctx, err error) error {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		return helper.JsonValidationError(c, ve.Fields)
	}
	code, msg := errs.MapToStatus(err)
	return helper.JsonError(c, code, msg)
}

/* ========================= Entry nilai ========================= */

func (ctl *MarksController) EnterMark(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.EnterMarkRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Marks.Enter] BodyParser error: %v", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	mark, err := ctl.Service.EnterMark(c.Context(), schoolID, paperID, userID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Nilai tersimpan", dto.FromStudentMarkModel(mark))
}

func (ctl *MarksController) BulkEnterMarks(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.BulkEnterMarksRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := ctl.Service.BulkEnterMarks(c.Context(), schoolID, paperID, userID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Bulk entry selesai", result)
}

func (ctl *MarksController) ListMarks(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := ctl.Service.ListMarks(c.Context(), schoolID, paperID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Daftar nilai", dto.FromStudentMarkModels(rows))
}

func (ctl *MarksController) ValidateMarks(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := ctl.Service.ValidateMarks(c.Context(), schoolID, paperID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Hasil validasi nilai", result)
}

func (ctl *MarksController) Statistics(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := ctl.Service.GetClassStatistics(c.Context(), schoolID, paperID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Statistik kelas", stats)
}

/* ========================= Moderasi ========================= */

func (ctl *MarksController) SubmitForModeration(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	req, err := ctl.Service.SubmitForModeration(c.Context(), schoolID, paperID, userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Nilai di-submit untuk moderasi", dto.FromModerationRequestModel(req))
}

func (ctl *MarksController) ListModerationRequests(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	p := helper.ResolvePaging(c, 20, 100)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))

	rows, total, err := ctl.Service.ListModerationRequests(c.Context(), schoolID, status, p.Limit, p.Offset)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonList(c, "Daftar request moderasi",
		dto.FromModerationRequestModels(rows),
		helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (ctl *MarksController) GetModerationRequest(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	requestID, err := parseUUIDParam(c, "request_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	req, err := ctl.Service.GetModerationRequest(c.Context(), schoolID, requestID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModerationRequestModel(req))
}

func (ctl *MarksController) AssignModerator(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	requestID, err := parseUUIDParam(c, "request_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.AssignModeratorRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	out, err := ctl.Service.AssignModerator(c.Context(), schoolID, requestID, req.ModeratorID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Moderator ditugaskan", dto.FromModerationRequestModel(out))
}

func (ctl *MarksController) Approve(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	requestID, err := parseUUIDParam(c, "request_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.ApproveModerationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	out, err := ctl.Service.Approve(c.Context(), schoolID, requestID, userID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Moderasi disetujui", dto.FromModerationRequestModel(out))
}

func (ctl *MarksController) Reject(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	requestID, err := parseUUIDParam(c, "request_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.RejectModerationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Komentar penolakan wajib diisi")
	}

	out, err := ctl.Service.Reject(c.Context(), schoolID, requestID, userID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Moderasi ditolak, nilai kembali ke draft", dto.FromModerationRequestModel(out))
}

/* ========================= Publikasi & artifact ========================= */

func (ctl *MarksController) PublishMarks(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	count, err := ctl.Service.PublishModeratedMarks(c.Context(), schoolID, paperID, userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Nilai dipublikasikan", fiber.Map{
		"exam_paper_id": paperID,
		"published":     count,
	})
}

func (ctl *MarksController) GenerateArtifact(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	paperID, err := parseUUIDParam(c, "paper_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	artifact, err := ctl.Service.GenerateResultArtifact(c.Context(), ctl.Renderer, schoolID, paperID, userID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Artifact hasil dibuat", dto.FromResultArtifactModel(artifact))
}

/* ========================= Koreksi & history ========================= */

func (ctl *MarksController) AddCorrection(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	markID, err := parseUUIDParam(c, "mark_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.CorrectionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	hist, err := ctl.Service.AddCorrection(c.Context(), schoolID, markID, userID, req)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Koreksi dicatat", fiber.Map{
		"marks_history_id": hist.MarksHistoryID,
		"prev_value":       hist.MarksHistoryPrevValue,
		"new_value":        hist.MarksHistoryNewValue,
	})
}

func (ctl *MarksController) ListHistory(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	markID, err := parseUUIDParam(c, "mark_id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := ctl.Service.ListHistory(c.Context(), schoolID, markID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Riwayat koreksi", dto.FromMarksHistoryModels(rows))
}

/* ========================= Sisi siswa ========================= */

func (ctl *MarksController) MyMarks(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := helperAuth.GetStudentIDFromToken(c)
	if err != nil {
		return err
	}

	rows, err := ctl.Service.StudentMarks(c.Context(), schoolID, studentID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "Nilai saya", dto.FromStudentMarkModels(rows))
}

// file: internals/features/school/scheduling/rooms/controller/room_controller.go
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
	"schoolku_backend/internals/features/school/scheduling/rooms/dto"
	"schoolku_backend/internals/features/school/scheduling/rooms/model"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type RoomController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func New(db *gorm.DB, v *validator.Validate) *RoomController {
	return &RoomController{DB: db, Validate: v}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(idStr)
}

func writeDomainError(c *fiber.Ctx, err error) error {
	code, msg := errs.MapToStatus(err)
	return helper.JsonError(c, code, msg)
}

/* ========================= Create ========================= */

func (ctl *RoomController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Room.Create] BodyParser error: %v", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	m := req.ToModel(schoolID)
	if err := ctl.DB.WithContext(c.Context()).Create(&m).Error; err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonCreated(c, "Room created", dto.FromModel(m))
}

/* ========================= List / Get ========================= */

func (ctl *RoomController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}

	p := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.WithContext(c.Context()).
		Model(&model.RoomModel{}).
		Where("room_school_id = ?", schoolID)

	// ?available=true → hanya room yang bisa dipakai assignment baru
	if strings.EqualFold(strings.TrimSpace(c.Query("available")), "true") {
		q = q.Where("room_is_available = TRUE")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return writeDomainError(c, err)
	}

	var rows []model.RoomModel
	if err := q.Order("room_name ASC").Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return writeDomainError(c, err)
	}

	return helper.JsonList(c, "Daftar room", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (ctl *RoomController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var m model.RoomModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("room_id = ? AND room_school_id = ?", id, schoolID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Room tidak ditemukan")
		}
		return writeDomainError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(m))
}

/* ========================= Patch / Delete ========================= */

func (ctl *RoomController) Patch(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var existing model.RoomModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("room_id = ? AND room_school_id = ?", id, schoolID).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Room tidak ditemukan")
		}
		return writeDomainError(c, err)
	}

	var req dto.UpdateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	req.Apply(&existing)

	if err := ctl.DB.WithContext(c.Context()).Save(&existing).Error; err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonUpdated(c, "Room updated", dto.FromModel(existing))
}

func (ctl *RoomController) Delete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetActiveSchoolIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var existing model.RoomModel
	if err := ctl.DB.WithContext(c.Context()).
		Where("room_id = ? AND room_school_id = ?", id, schoolID).
		First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Room tidak ditemukan")
		}
		return writeDomainError(c, err)
	}

	// soft delete; jadwal lama yang menunjuk room ini tetap utuh (weak reference)
	if err := ctl.DB.WithContext(c.Context()).Delete(&existing).Error; err != nil {
		return writeDomainError(c, err)
	}
	return helper.JsonDeleted(c, "Room deleted", dto.FromModel(existing))
}

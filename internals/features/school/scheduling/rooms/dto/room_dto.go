// file: internals/features/school/scheduling/rooms/dto/room_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"schoolku_backend/internals/features/school/scheduling/rooms/model"
)

type CreateRoomRequest struct {
	RoomName     string         `json:"room_name" validate:"required,min=2,max=100"`
	RoomCode     *string        `json:"room_code" validate:"omitempty,max=50"`
	RoomLocation *string        `json:"room_location" validate:"omitempty,max=200"`
	RoomCapacity *int           `json:"room_capacity" validate:"omitempty,min=1"`
	RoomFeatures datatypes.JSON `json:"room_features" validate:"omitempty"`
}

func (r *CreateRoomRequest) ToModel(schoolID uuid.UUID) model.RoomModel {
	m := model.RoomModel{
		RoomSchoolID:    schoolID,
		RoomName:        r.RoomName,
		RoomCode:        r.RoomCode,
		RoomLocation:    r.RoomLocation,
		RoomCapacity:    r.RoomCapacity,
		RoomIsAvailable: true,
	}
	if len(r.RoomFeatures) > 0 {
		m.RoomFeatures = r.RoomFeatures
	} else {
		m.RoomFeatures = datatypes.JSON([]byte("[]"))
	}
	return m
}

// UpdateRoomRequest: PATCH, semua field pointer.
type UpdateRoomRequest struct {
	RoomName        *string         `json:"room_name" validate:"omitempty,min=2,max=100"`
	RoomCode        *string         `json:"room_code" validate:"omitempty,max=50"`
	RoomLocation    *string         `json:"room_location" validate:"omitempty,max=200"`
	RoomCapacity    *int            `json:"room_capacity" validate:"omitempty,min=1"`
	RoomIsAvailable *bool           `json:"room_is_available"`
	RoomFeatures    *datatypes.JSON `json:"room_features"`
}

func (r *UpdateRoomRequest) Apply(m *model.RoomModel) {
	if r.RoomName != nil {
		m.RoomName = *r.RoomName
	}
	if r.RoomCode != nil {
		m.RoomCode = r.RoomCode
	}
	if r.RoomLocation != nil {
		m.RoomLocation = r.RoomLocation
	}
	if r.RoomCapacity != nil {
		m.RoomCapacity = r.RoomCapacity
	}
	if r.RoomIsAvailable != nil {
		m.RoomIsAvailable = *r.RoomIsAvailable
	}
	if r.RoomFeatures != nil {
		m.RoomFeatures = *r.RoomFeatures
	}
}

type RoomResponse struct {
	RoomID          uuid.UUID      `json:"room_id"`
	RoomSchoolID    uuid.UUID      `json:"room_school_id"`
	RoomName        string         `json:"room_name"`
	RoomCode        *string        `json:"room_code,omitempty"`
	RoomLocation    *string        `json:"room_location,omitempty"`
	RoomCapacity    *int           `json:"room_capacity,omitempty"`
	RoomIsAvailable bool           `json:"room_is_available"`
	RoomFeatures    datatypes.JSON `json:"room_features"`
	RoomCreatedAt   time.Time      `json:"room_created_at"`
	RoomUpdatedAt   time.Time      `json:"room_updated_at"`
}

func FromModel(m model.RoomModel) RoomResponse {
	return RoomResponse{
		RoomID:          m.RoomID,
		RoomSchoolID:    m.RoomSchoolID,
		RoomName:        m.RoomName,
		RoomCode:        m.RoomCode,
		RoomLocation:    m.RoomLocation,
		RoomCapacity:    m.RoomCapacity,
		RoomIsAvailable: m.RoomIsAvailable,
		RoomFeatures:    m.RoomFeatures,
		RoomCreatedAt:   m.RoomCreatedAt,
		RoomUpdatedAt:   m.RoomUpdatedAt,
	}
}

func FromModels(ms []model.RoomModel) []RoomResponse {
	out := make([]RoomResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromModel(m))
	}
	return out
}

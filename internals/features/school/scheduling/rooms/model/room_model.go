// file: internals/features/school/scheduling/rooms/model/room_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoomModel merepresentasikan tabel rooms.
// Room adalah weak reference: entry timetable & exam paper menunjuk ke sini,
// menonaktifkan room tidak meng-cascade jadwal lama, hanya memblokir assignment baru.
type RoomModel struct {
	RoomID       uuid.UUID `json:"room_id" gorm:"type:uuid;primaryKey;column:room_id;default:gen_random_uuid()"`
	RoomSchoolID uuid.UUID `json:"room_school_id" gorm:"type:uuid;not null;column:room_school_id;index"`

	RoomName     string  `json:"room_name" gorm:"type:text;not null;column:room_name"`
	RoomCode     *string `json:"room_code,omitempty" gorm:"type:text;column:room_code"`
	RoomLocation *string `json:"room_location,omitempty" gorm:"type:text;column:room_location"`
	RoomCapacity *int    `json:"room_capacity,omitempty" gorm:"column:room_capacity"`

	RoomIsAvailable bool `json:"room_is_available" gorm:"not null;default:true;column:room_is_available"`

	RoomFeatures datatypes.JSON `json:"room_features" gorm:"type:jsonb;not null;default:'[]';column:room_features"`

	RoomCreatedAt time.Time      `json:"room_created_at" gorm:"column:room_created_at;autoCreateTime"`
	RoomUpdatedAt time.Time      `json:"room_updated_at" gorm:"column:room_updated_at;autoUpdateTime"`
	RoomDeletedAt gorm.DeletedAt `json:"room_deleted_at,omitempty" gorm:"column:room_deleted_at;index"`
}

func (RoomModel) TableName() string { return "rooms" }

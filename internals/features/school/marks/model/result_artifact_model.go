// file: internals/features/school/marks/model/result_artifact_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ArtifactStatusGenerated  = "generated"
	ArtifactStatusSent       = "sent"
	ArtifactStatusDownloaded = "downloaded"
)

// ResultArtifactModel: referensi dokumen hasil dari renderer eksternal.
// Modul ini hanya menyimpan ref + status; mekanisme render di luar scope.
type ResultArtifactModel struct {
	ResultArtifactID       uuid.UUID `json:"result_artifact_id" gorm:"type:uuid;primaryKey;column:result_artifact_id;default:gen_random_uuid()"`
	ResultArtifactSchoolID uuid.UUID `json:"result_artifact_school_id" gorm:"type:uuid;not null;column:result_artifact_school_id;index"`

	ResultArtifactExamPaperID uuid.UUID `json:"result_artifact_exam_paper_id" gorm:"type:uuid;not null;column:result_artifact_exam_paper_id;index"`

	ResultArtifactRef    string `json:"result_artifact_ref" gorm:"type:text;not null;column:result_artifact_ref"`
	ResultArtifactStatus string `json:"result_artifact_status" gorm:"type:varchar(20);not null;default:'generated';column:result_artifact_status"`

	ResultArtifactRequestedBy uuid.UUID `json:"result_artifact_requested_by" gorm:"type:uuid;not null;column:result_artifact_requested_by"`

	ResultArtifactCreatedAt time.Time `json:"result_artifact_created_at" gorm:"column:result_artifact_created_at;autoCreateTime"`
	ResultArtifactUpdatedAt time.Time `json:"result_artifact_updated_at" gorm:"column:result_artifact_updated_at;autoUpdateTime"`
}

func (ResultArtifactModel) TableName() string { return "result_artifacts" }

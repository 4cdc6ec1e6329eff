// file: internals/features/school/marks/service/renderer_client.go
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"schoolku_backend/internals/configs"
	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/marks/dto"
	"schoolku_backend/internals/features/school/marks/model"
)

// ResultPayload: data yang dikirim ke renderer untuk dijadikan dokumen hasil.
type ResultPayload struct {
	SchoolID    uuid.UUID                 `json:"school_id"`
	ExamPaperID uuid.UUID                 `json:"exam_paper_id"`
	Marks       []dto.StudentMarkResponse `json:"marks"`
	Statistics  dto.ClassStatistics       `json:"statistics"`
}

// RendererClient mengirim payload hasil ke service renderer eksternal dan
// menerima referensi artifact. Interface supaya test bisa menyuntik fake.
type RendererClient interface {
	Render(ctx context.Context, payload ResultPayload) (string, error)
}

type HTTPRendererClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPRendererClient() *HTTPRendererClient {
	return &HTTPRendererClient{
		BaseURL: configs.RendererBaseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *HTTPRendererClient) Render(ctx context.Context, payload ResultPayload) (string, error) {
	if r.BaseURL == "" {
		return "", fmt.Errorf("renderer: RENDERER_BASE_URL belum diset")
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("renderer: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer: request gagal: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("renderer: status %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		ArtifactRef string `json:"artifact_ref"`
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("renderer: decode response: %w", err)
	}
	if out.ArtifactRef == "" {
		return "", fmt.Errorf("renderer: response tanpa artifact_ref")
	}
	return out.ArtifactRef, nil
}

// GenerateResultArtifact: render dokumen hasil untuk paper yang nilainya
// sudah published, simpan referensinya. Engine hanya memegang ref + status.
func (s *MarksService) GenerateResultArtifact(ctx context.Context, renderer RendererClient, schoolID, paperID, requestedBy uuid.UUID) (model.ResultArtifactModel, error) {
	paper, err := s.loadPaper(ctx, schoolID, paperID)
	if err != nil {
		return model.ResultArtifactModel{}, err
	}

	marks, err := s.loadMarks(ctx, schoolID, paperID)
	if err != nil {
		return model.ResultArtifactModel{}, err
	}
	published := make([]model.StudentMarkModel, 0, len(marks))
	for _, m := range marks {
		if m.StudentMarkStatus == model.MarkStatusPublished {
			published = append(published, m)
		}
	}
	if len(published) == 0 {
		return model.ResultArtifactModel{}, errs.NewValidation(
			"belum ada nilai published untuk paper ini",
		)
	}

	ref, err := renderer.Render(ctx, ResultPayload{
		SchoolID:    schoolID,
		ExamPaperID: paperID,
		Marks:       dto.FromStudentMarkModels(published),
		Statistics:  ComputeStatistics(paper.ExamPaperID, published, paper.ExamPaperPassingMarks),
	})
	if err != nil {
		return model.ResultArtifactModel{}, err
	}

	artifact := model.ResultArtifactModel{
		ResultArtifactSchoolID:    schoolID,
		ResultArtifactExamPaperID: paperID,
		ResultArtifactRef:         ref,
		ResultArtifactStatus:      model.ArtifactStatusGenerated,
		ResultArtifactRequestedBy: requestedBy,
	}
	if err := s.DB.WithContext(ctx).Create(&artifact).Error; err != nil {
		return model.ResultArtifactModel{}, err
	}
	return artifact, nil
}

// MarkArtifactStatus: transisi status artifact (generated → sent → downloaded).
func (s *MarksService) MarkArtifactStatus(ctx context.Context, schoolID, artifactID uuid.UUID, status string) error {
	if status != model.ArtifactStatusSent && status != model.ArtifactStatusDownloaded {
		return errs.NewValidation("status artifact tidak dikenal").Add("status", "harus sent atau downloaded")
	}
	res := s.DB.WithContext(ctx).
		Model(&model.ResultArtifactModel{}).
		Where("result_artifact_id = ? AND result_artifact_school_id = ?", artifactID, schoolID).
		Update("result_artifact_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

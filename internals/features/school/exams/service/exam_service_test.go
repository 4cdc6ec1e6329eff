package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/exams/model"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
)

var (
	invigilatorSmith = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	invigilatorJones = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	roomLab2         = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000202")
	class10          = uuid.MustParse("cccccccc-0000-0000-0000-000000000010")
	sectionA         = uuid.MustParse("dddddddd-0000-0000-0000-00000000000a")
	sectionB         = uuid.MustParse("dddddddd-0000-0000-0000-00000000000b")
)

func paper(id, date, start, end string, room *uuid.UUID, invigilator uuid.UUID, section *uuid.UUID) model.ExamPaperModel {
	d, _ := time.Parse("2006-01-02", date)
	return model.ExamPaperModel{
		ExamPaperID:            uuid.MustParse(id),
		ExamPaperExamDate:      d,
		ExamPaperStartTime:     start,
		ExamPaperEndTime:       end,
		ExamPaperRoomID:        room,
		ExamPaperInvigilatorID: invigilator,
		ExamPaperClassID:       class10,
		ExamPaperSectionID:     section,
		ExamPaperMaxMarks:      100,
		ExamPaperPassingMarks:  40,
	}
}

func TestMinuteOf(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    int
		wantErr bool
	}{
		"nine am":     {in: "09:00", want: 540},
		"half past":   {in: "10:30", want: 630},
		"midnight":    {in: "00:00", want: 0},
		"end of day":  {in: "23:59", want: 1439},
		"garbage":     {in: "9am", wantErr: true},
		"out of band": {in: "25:00", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := MinuteOf(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("MinuteOf(%q) expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("MinuteOf(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("MinuteOf(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidatePaperTimes(t *testing.T) {
	if err := ValidatePaperTimes("09:00", "10:30"); err != nil {
		t.Fatalf("valid interval rejected: %v", err)
	}

	var ve *errs.ValidationError
	if err := ValidatePaperTimes("10:30", "09:00"); !errors.As(err, &ve) {
		t.Fatalf("inverted interval must be a validation error, got %v", err)
	}
	if err := ValidatePaperTimes("09:00", "09:00"); !errors.As(err, &ve) {
		t.Fatalf("zero-length interval must be a validation error, got %v", err)
	}
	if err := ValidatePaperTimes("late", "10:00"); !errors.As(err, &ve) {
		t.Fatalf("unparseable start must be a validation error, got %v", err)
	}
}

// P1 (2024-02-10, 09:00-10:30, Lab2, Smith) vs P2 (2024-02-10, 10:00-11:00, Lab2, Jones)
// → satu room_clash, overlap 10:00-10:30.
func TestPapersRoomClashOnOverlap(t *testing.T) {
	papers := []model.ExamPaperModel{
		paper("00000000-0000-0000-0000-000000000001", "2024-02-10", "09:00", "10:30", &roomLab2, invigilatorSmith, &sectionA),
		paper("00000000-0000-0000-0000-000000000002", "2024-02-10", "10:00", "11:00", &roomLab2, invigilatorJones, &sectionB),
	}

	got := conflicts.Detect(PapersToActivities(papers))
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d: %+v", len(got), got)
	}
	if got[0].Type != conflicts.RoomClash {
		t.Fatalf("expected room_clash, got %s", got[0].Type)
	}
}

func TestGatePublish(t *testing.T) {
	exam := model.ExamModel{ExamID: uuid.MustParse("eeeeeeee-0000-0000-0000-000000000001")}

	t.Run("empty exam blocked", func(t *testing.T) {
		err := GatePublish(exam, nil)
		var ee *errs.EmptyExamError
		if !errors.As(err, &ee) {
			t.Fatalf("expected EmptyExamError, got %v", err)
		}
		if ee.ExamID != exam.ExamID {
			t.Fatalf("error must name the exam: %v", ee)
		}
	})

	t.Run("conflicting papers blocked", func(t *testing.T) {
		papers := []model.ExamPaperModel{
			paper("00000000-0000-0000-0000-000000000001", "2024-02-10", "09:00", "10:30", &roomLab2, invigilatorSmith, &sectionA),
			paper("00000000-0000-0000-0000-000000000002", "2024-02-10", "10:00", "11:00", &roomLab2, invigilatorJones, &sectionB),
		}
		err := GatePublish(exam, papers)
		var ce *conflicts.ConflictError
		if !errors.As(err, &ce) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if len(ce.Conflicts) != 1 {
			t.Fatalf("expected 1 collision in payload, got %d", len(ce.Conflicts))
		}
	})

	t.Run("clean papers pass", func(t *testing.T) {
		papers := []model.ExamPaperModel{
			paper("00000000-0000-0000-0000-000000000001", "2024-02-10", "09:00", "10:00", &roomLab2, invigilatorSmith, &sectionA),
			paper("00000000-0000-0000-0000-000000000002", "2024-02-10", "10:00", "11:00", &roomLab2, invigilatorJones, &sectionB),
		}
		if err := GatePublish(exam, papers); err != nil {
			t.Fatalf("touching intervals must not block publish: %v", err)
		}
	})
}

func TestEnsurePaperMutable(t *testing.T) {
	if err := EnsurePaperMutable(model.ExamModel{ExamIsPublished: false}); err != nil {
		t.Fatalf("draft exam must be mutable: %v", err)
	}
	if err := EnsurePaperMutable(model.ExamModel{ExamIsPublished: true}); !errors.Is(err, errs.ErrImmutableState) {
		t.Fatalf("published exam must be immutable, got %v", err)
	}
}

func TestGroupPapersByDate(t *testing.T) {
	papers := []model.ExamPaperModel{
		paper("00000000-0000-0000-0000-000000000003", "2024-02-12", "08:00", "09:30", nil, invigilatorSmith, &sectionA),
		paper("00000000-0000-0000-0000-000000000001", "2024-02-10", "10:00", "11:00", nil, invigilatorSmith, &sectionA),
		paper("00000000-0000-0000-0000-000000000002", "2024-02-10", "08:00", "09:00", nil, invigilatorJones, &sectionB),
	}

	got := GroupPapersByDate(papers)
	if len(got) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(got))
	}
	if got[0].ExamDate != "2024-02-10" || got[1].ExamDate != "2024-02-12" {
		t.Fatalf("dates must sort ascending: %+v", got)
	}
	if len(got[0].Papers) != 2 {
		t.Fatalf("expected 2 papers on 2024-02-10, got %d", len(got[0].Papers))
	}
	if got[0].Papers[0].ExamPaperStartTime != "08:00" {
		t.Fatalf("papers within a day must sort by start time: %+v", got[0].Papers)
	}
}

func TestGroupPapersByDateEmpty(t *testing.T) {
	if got := GroupPapersByDate(nil); len(got) != 0 {
		t.Fatalf("expected empty projection, got %+v", got)
	}
}

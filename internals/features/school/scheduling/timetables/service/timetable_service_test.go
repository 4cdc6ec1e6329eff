package service

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/school/errs"
	"schoolku_backend/internals/features/school/scheduling/conflicts"
	"schoolku_backend/internals/features/school/scheduling/timetables/model"
)

var (
	periodP1 = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	periodP2 = uuid.MustParse("11111111-1111-1111-1111-111111111112")
	teacherJ = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	teacherK = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	room101  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000101")
	room102  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000102")
	class10  = uuid.MustParse("cccccccc-0000-0000-0000-000000000010")
	sectionA = uuid.MustParse("dddddddd-0000-0000-0000-00000000000a")
	sectionB = uuid.MustParse("dddddddd-0000-0000-0000-00000000000b")
)

func entry(id string, day int, period, teacher uuid.UUID, room *uuid.UUID, class uuid.UUID, section *uuid.UUID) model.TimetableEntryModel {
	return model.TimetableEntryModel{
		TimetableEntryID:        uuid.MustParse(id),
		TimetableEntryDayOfWeek: day,
		TimetableEntryPeriodID:  period,
		TimetableEntryClassID:   class,
		TimetableEntrySectionID: section,
		TimetableEntryTeacherID: teacher,
		TimetableEntryRoomID:    room,
	}
}

func TestEnsureMutable(t *testing.T) {
	tests := map[string]struct {
		status  string
		wantErr error
	}{
		"draft is editable":      {status: model.TimetableStatusDraft, wantErr: nil},
		"published is frozen":    {status: model.TimetableStatusPublished, wantErr: errs.ErrImmutableState},
		"archived is frozen":     {status: model.TimetableStatusArchived, wantErr: errs.ErrImmutableState},
		"unknown status refused": {status: "garbage", wantErr: errs.ErrImmutableState},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := EnsureMutable(tc.status); !errors.Is(got, tc.wantErr) && got != tc.wantErr {
				t.Fatalf("EnsureMutable(%q) = %v, want %v", tc.status, got, tc.wantErr)
			}
		})
	}
}

// Entry Senin/P1 teacher=J room=101 class=10A vs entry baru
// Senin/P1 teacher=K room=101 class=10B → tepat satu room_clash.
func TestDetectOverEntriesRoomClash(t *testing.T) {
	entries := []model.TimetableEntryModel{
		entry("00000000-0000-0000-0000-000000000001", 1, periodP1, teacherJ, &room101, class10, &sectionA),
		entry("00000000-0000-0000-0000-000000000002", 1, periodP1, teacherK, &room101, class10, &sectionB),
	}

	got := conflicts.Detect(EntriesToActivities(entries))
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d: %+v", len(got), got)
	}
	if got[0].Type != conflicts.RoomClash {
		t.Fatalf("expected room_clash, got %s", got[0].Type)
	}
}

func TestEntriesToActivitiesNilRefs(t *testing.T) {
	entries := []model.TimetableEntryModel{
		entry("00000000-0000-0000-0000-000000000001", 2, periodP1, teacherJ, nil, class10, nil),
	}
	acts := EntriesToActivities(entries)
	if len(acts) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(acts))
	}
	if acts[0].RoomID != uuid.Nil || acts[0].SectionID != uuid.Nil {
		t.Fatalf("nil refs should map to uuid.Nil: %+v", acts[0])
	}
}

func TestGateOnConflicts(t *testing.T) {
	if err := GateOnConflicts(nil); err != nil {
		t.Fatalf("empty conflicts must pass the gate: %v", err)
	}

	err := GateOnConflicts([]conflicts.Conflict{{Type: conflicts.TeacherClash, Description: "Teacher J is double-booked"}})
	var ce *conflicts.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %T", err)
	}
	if len(ce.Conflicts) != 1 {
		t.Fatalf("expected conflict list to survive, got %d", len(ce.Conflicts))
	}
}

func TestComputeRoomUtilization(t *testing.T) {
	// 3 slot distinct: Senin/P1, Senin/P2, Selasa/P1.
	// room101 dipakai 2 slot, room102 dipakai 1, satu entry tanpa room.
	entries := []model.TimetableEntryModel{
		entry("00000000-0000-0000-0000-000000000001", 1, periodP1, teacherJ, &room101, class10, &sectionA),
		entry("00000000-0000-0000-0000-000000000002", 1, periodP2, teacherJ, &room101, class10, &sectionA),
		entry("00000000-0000-0000-0000-000000000003", 2, periodP1, teacherK, &room102, class10, &sectionB),
		entry("00000000-0000-0000-0000-000000000004", 2, periodP1, teacherJ, nil, class10, &sectionA),
	}

	got := ComputeRoomUtilization(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 rooms, got %d: %+v", len(got), got)
	}

	byRoom := map[uuid.UUID]int{}
	for _, u := range got {
		byRoom[u.RoomID] = u.UsedSlots
		if u.TotalSlots != 3 {
			t.Errorf("room %s: denominator must be distinct slot count 3, got %d", u.RoomID, u.TotalSlots)
		}
	}
	if byRoom[room101] != 2 || byRoom[room102] != 1 {
		t.Fatalf("unexpected used slots: %+v", byRoom)
	}

	for _, u := range got {
		want := float64(u.UsedSlots) / 3.0 * 100
		if math.Abs(u.UtilizationPct-want) > 1e-9 {
			t.Errorf("room %s: pct %f, want %f", u.RoomID, u.UtilizationPct, want)
		}
	}
}

func TestComputeRoomUtilizationEmpty(t *testing.T) {
	if got := ComputeRoomUtilization(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestOnlyInvolving(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	cs := []conflicts.Conflict{
		{FirstID: a, SecondID: b},
		{FirstID: b, SecondID: c},
	}
	got := onlyInvolving(cs, a)
	if len(got) != 1 || got[0].SecondID != b {
		t.Fatalf("expected only the a-b conflict, got %+v", got)
	}
}

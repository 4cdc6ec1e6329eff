// file: internals/features/school/scheduling/substitutions/service/substitution_service_test.go
package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"schoolku_backend/internals/features/school/scheduling/substitutions/model"
	timetableModel "schoolku_backend/internals/features/school/scheduling/timetables/model"
)

var (
	periodOne = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	periodTwo = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	mathID    = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func teacher(name string, subjects ...uuid.UUID) model.SchoolTeacherModel {
	ids := make(pq.StringArray, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.String())
	}
	return model.SchoolTeacherModel{
		SchoolTeacherID:         uuid.New(),
		SchoolTeacherUserID:     uuid.New(),
		SchoolTeacherName:       name,
		SchoolTeacherSubjectIDs: ids,
		SchoolTeacherIsActive:   true,
	}
}

func slot(teacherID uuid.UUID, day int, period uuid.UUID) timetableModel.TimetableEntryModel {
	return timetableModel.TimetableEntryModel{
		TimetableEntryID:        uuid.New(),
		TimetableEntryDayOfWeek: day,
		TimetableEntryPeriodID:  period,
		TimetableEntryTeacherID: teacherID,
	}
}

func TestOccupiedTeachers(t *testing.T) {
	busy := teacher("Budi")
	free := teacher("Citra")
	otherSlot := teacher("Dewi")
	subTeacher := teacher("Eka")

	entries := []timetableModel.TimetableEntryModel{
		slot(busy.SchoolTeacherID, 1, periodOne),
		slot(otherSlot.SchoolTeacherID, 1, periodTwo),  // periode lain
		slot(free.SchoolTeacherID, 2, periodOne),       // hari lain
	}

	occupied := OccupiedTeachers(entries, 1, periodOne, []uuid.UUID{subTeacher.SchoolTeacherID})

	if _, ok := occupied[busy.SchoolTeacherID]; !ok {
		t.Fatal("guru yang mengajar di slot harus occupied")
	}
	if _, ok := occupied[subTeacher.SchoolTeacherID]; !ok {
		t.Fatal("pengganti yang sudah assigned di slot harus occupied")
	}
	if _, ok := occupied[free.SchoolTeacherID]; ok {
		t.Fatal("guru di hari lain tidak boleh occupied")
	}
	if _, ok := occupied[otherSlot.SchoolTeacherID]; ok {
		t.Fatal("guru di periode lain tidak boleh occupied")
	}
}

func TestEligibleCandidatesRankingNotFiltering(t *testing.T) {
	match := teacher("Zainal", mathID) // nama belakang, tapi subject cocok
	noMatch := teacher("Andi")         // nama depan, subject tidak cocok
	original := teacher("Budi", mathID)

	got := EligibleCandidates(
		[]model.SchoolTeacherModel{noMatch, match, original},
		map[uuid.UUID]struct{}{},
		original.SchoolTeacherID,
		mathID,
	)

	// non-match TIDAK disaring, hanya diurutkan di belakang
	if len(got) != 2 {
		t.Fatalf("kandidat = %d, want 2 (subject mismatch tidak boleh menyaring)", len(got))
	}
	if got[0].TeacherID != match.SchoolTeacherID || !got[0].SubjectMatch {
		t.Fatalf("kandidat pertama harus subject match, dapat %s", got[0].Name)
	}
	if got[1].TeacherID != noMatch.SchoolTeacherID || got[1].SubjectMatch {
		t.Fatalf("kandidat kedua harus non-match, dapat %s", got[1].Name)
	}
}

func TestEligibleCandidatesExclusions(t *testing.T) {
	busy := teacher("Busy")
	inactive := teacher("Inactive")
	inactive.SchoolTeacherIsActive = false
	original := teacher("Original")
	ok := teacher("Oke")

	got := EligibleCandidates(
		[]model.SchoolTeacherModel{busy, inactive, original, ok},
		map[uuid.UUID]struct{}{busy.SchoolTeacherID: {}},
		original.SchoolTeacherID,
		mathID,
	)

	if len(got) != 1 || got[0].TeacherID != ok.SchoolTeacherID {
		t.Fatalf("hanya guru bebas yang eligible, dapat %+v", got)
	}
}

func TestEligibleCandidatesNameOrderWithinGroup(t *testing.T) {
	a := teacher("Ani", mathID)
	b := teacher("Bima", mathID)
	c := teacher("Cahya")

	got := EligibleCandidates(
		[]model.SchoolTeacherModel{c, b, a},
		map[uuid.UUID]struct{}{},
		uuid.New(),
		mathID,
	)

	if len(got) != 3 {
		t.Fatalf("kandidat = %d, want 3", len(got))
	}
	if got[0].Name != "Ani" || got[1].Name != "Bima" || got[2].Name != "Cahya" {
		t.Fatalf("urutan salah: %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestEligibleCandidatesEmptyPool(t *testing.T) {
	got := EligibleCandidates(nil, map[uuid.UUID]struct{}{}, uuid.New(), mathID)
	if len(got) != 0 {
		t.Fatalf("pool kosong harus mengembalikan nol kandidat, dapat %d", len(got))
	}
}

func TestTeachesSubject(t *testing.T) {
	tr := teacher("Guru", mathID)
	if !tr.TeachesSubject(mathID) {
		t.Fatal("subject terdaftar harus match")
	}
	if tr.TeachesSubject(uuid.New()) {
		t.Fatal("subject acak tidak boleh match")
	}
}

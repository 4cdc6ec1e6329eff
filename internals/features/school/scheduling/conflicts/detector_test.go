package conflicts

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

var (
	periodOne = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	teacherJ  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	teacherK  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	room101   = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000101")
	roomLab2  = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000202")
	class10   = uuid.MustParse("cccccccc-0000-0000-0000-000000000010")
	sectionA  = uuid.MustParse("dddddddd-0000-0000-0000-00000000000a")
	sectionB  = uuid.MustParse("dddddddd-0000-0000-0000-00000000000b")
)

func weekly(id string, day int, teacher, room, class, section uuid.UUID) Activity {
	return Activity{
		ActivityID: uuid.MustParse(id),
		DayOfWeek:  day,
		PeriodID:   periodOne,
		TeacherID:  teacher,
		RoomID:     room,
		ClassID:    class,
		SectionID:  section,
	}
}

func dated(id, date string, startMin, endMin int, room, invigilator uuid.UUID) Activity {
	return Activity{
		ActivityID:  uuid.MustParse(id),
		Date:        date,
		StartMinute: startMin,
		EndMinute:   endMin,
		TeacherID:   invigilator,
		RoomID:      room,
	}
}

func countType(cs []Conflict, t ClashType) int {
	n := 0
	for _, c := range cs {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Dua entry Senin/P1 di room yang sama, kelas beda, guru beda → tepat satu room_clash.
func TestDetectRoomClashSamePeriod(t *testing.T) {
	acts := []Activity{
		weekly("00000000-0000-0000-0000-000000000001", 1, teacherJ, room101, class10, sectionA),
		weekly("00000000-0000-0000-0000-000000000002", 1, teacherK, room101, class10, sectionB),
	}

	got := Detect(acts)
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d: %+v", len(got), got)
	}
	if got[0].Type != RoomClash {
		t.Fatalf("expected room_clash, got %s", got[0].Type)
	}
	if got[0].ResourceID != room101 {
		t.Fatalf("expected resource %s, got %s", room101, got[0].ResourceID)
	}
}

func TestDetectWeeklySlots(t *testing.T) {
	tests := map[string]struct {
		acts        []Activity
		wantTotal   int
		wantTeacher int
		wantRoom    int
		wantStudent int
	}{
		"different days never clash": {
			acts: []Activity{
				weekly("00000000-0000-0000-0000-000000000001", 1, teacherJ, room101, class10, sectionA),
				weekly("00000000-0000-0000-0000-000000000002", 2, teacherJ, room101, class10, sectionA),
			},
			wantTotal: 0,
		},
		"same teacher same slot": {
			acts: []Activity{
				weekly("00000000-0000-0000-0000-000000000001", 3, teacherJ, room101, class10, sectionA),
				weekly("00000000-0000-0000-0000-000000000002", 3, teacherJ, roomLab2, class10, sectionB),
			},
			wantTotal:   1,
			wantTeacher: 1,
		},
		"same class different sections do not clash": {
			acts: []Activity{
				weekly("00000000-0000-0000-0000-000000000001", 4, teacherJ, room101, class10, sectionA),
				weekly("00000000-0000-0000-0000-000000000002", 4, teacherK, roomLab2, class10, sectionB),
			},
			wantTotal: 0,
		},
		"same class same section": {
			acts: []Activity{
				weekly("00000000-0000-0000-0000-000000000001", 4, teacherJ, room101, class10, sectionA),
				weekly("00000000-0000-0000-0000-000000000002", 4, teacherK, roomLab2, class10, sectionA),
			},
			wantTotal:   1,
			wantStudent: 1,
		},
		"nil rooms never clash": {
			acts: []Activity{
				weekly("00000000-0000-0000-0000-000000000001", 5, teacherJ, uuid.Nil, class10, sectionA),
				weekly("00000000-0000-0000-0000-000000000002", 5, teacherK, uuid.Nil, class10, sectionB),
			},
			wantTotal: 0,
		},
		"all three dimensions at once": {
			acts: []Activity{
				weekly("00000000-0000-0000-0000-000000000001", 2, teacherJ, room101, class10, sectionA),
				weekly("00000000-0000-0000-0000-000000000002", 2, teacherJ, room101, class10, sectionA),
			},
			wantTotal:   3,
			wantTeacher: 1,
			wantRoom:    1,
			wantStudent: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Detect(tc.acts)
			if len(got) != tc.wantTotal {
				t.Fatalf("expected %d conflicts, got %d: %+v", tc.wantTotal, len(got), got)
			}
			if n := countType(got, TeacherClash); n != tc.wantTeacher {
				t.Errorf("teacher_clash: expected %d, got %d", tc.wantTeacher, n)
			}
			if n := countType(got, RoomClash); n != tc.wantRoom {
				t.Errorf("room_clash: expected %d, got %d", tc.wantRoom, n)
			}
			if n := countType(got, StudentClash); n != tc.wantStudent {
				t.Errorf("student_clash: expected %d, got %d", tc.wantStudent, n)
			}
		})
	}
}

// Dua paper di tanggal sama, Lab2, 09:00-10:30 vs 10:00-11:00 → room_clash
// (overlap 10:00-10:30). Invigilator beda, jadi tidak ada teacher_clash.
func TestDetectDatedIntervalOverlap(t *testing.T) {
	acts := []Activity{
		dated("00000000-0000-0000-0000-000000000001", "2024-02-10", 9*60, 10*60+30, roomLab2, teacherJ),
		dated("00000000-0000-0000-0000-000000000002", "2024-02-10", 10*60, 11*60, roomLab2, teacherK),
	}

	got := Detect(acts)
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d: %+v", len(got), got)
	}
	if got[0].Type != RoomClash {
		t.Fatalf("expected room_clash, got %s", got[0].Type)
	}
}

func TestDetectDatedIntervals(t *testing.T) {
	tests := map[string]struct {
		acts []Activity
		want int
	}{
		"touching intervals do not overlap": {
			acts: []Activity{
				dated("00000000-0000-0000-0000-000000000001", "2024-02-10", 9*60, 10*60, roomLab2, teacherJ),
				dated("00000000-0000-0000-0000-000000000002", "2024-02-10", 10*60, 11*60, roomLab2, teacherK),
			},
			want: 0,
		},
		"same interval different dates": {
			acts: []Activity{
				dated("00000000-0000-0000-0000-000000000001", "2024-02-10", 9*60, 10*60, roomLab2, teacherJ),
				dated("00000000-0000-0000-0000-000000000002", "2024-02-11", 9*60, 10*60, roomLab2, teacherJ),
			},
			want: 0,
		},
		"contained interval": {
			acts: []Activity{
				dated("00000000-0000-0000-0000-000000000001", "2024-02-10", 9*60, 12*60, roomLab2, teacherJ),
				dated("00000000-0000-0000-0000-000000000002", "2024-02-10", 10*60, 11*60, roomLab2, teacherK),
			},
			want: 1,
		},
		"same invigilator overlapping different rooms": {
			acts: []Activity{
				dated("00000000-0000-0000-0000-000000000001", "2024-02-10", 9*60, 11*60, room101, teacherJ),
				dated("00000000-0000-0000-0000-000000000002", "2024-02-10", 10*60, 12*60, roomLab2, teacherJ),
			},
			want: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Detect(tc.acts)
			if len(got) != tc.want {
				t.Fatalf("expected %d conflicts, got %d: %+v", tc.want, len(got), got)
			}
		})
	}
}

// Hasil deteksi harus identik untuk setiap permutasi input.
func TestDetectPermutationInvariant(t *testing.T) {
	acts := []Activity{
		weekly("00000000-0000-0000-0000-000000000001", 1, teacherJ, room101, class10, sectionA),
		weekly("00000000-0000-0000-0000-000000000002", 1, teacherK, room101, class10, sectionB),
		weekly("00000000-0000-0000-0000-000000000003", 1, teacherJ, roomLab2, class10, sectionB),
		weekly("00000000-0000-0000-0000-000000000004", 2, teacherJ, room101, class10, sectionA),
		dated("00000000-0000-0000-0000-000000000005", "2024-02-10", 9*60, 10*60+30, roomLab2, teacherJ),
		dated("00000000-0000-0000-0000-000000000006", "2024-02-10", 10*60, 11*60, roomLab2, teacherK),
	}

	baseline := Detect(acts)
	if len(baseline) == 0 {
		t.Fatal("fixture should produce conflicts")
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]Activity(nil), acts...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Detect(shuffled)
		if len(got) != len(baseline) {
			t.Fatalf("trial %d: expected %d conflicts, got %d", trial, len(baseline), len(got))
		}
		for i := range got {
			if got[i] != baseline[i] {
				t.Fatalf("trial %d: conflict %d differs:\n  want %+v\n  got  %+v", trial, i, baseline[i], got[i])
			}
		}
	}
}

// Setiap pasangan yang berbagi time key + resource key harus dilaporkan,
// dan pasangan tanpa keduanya tidak boleh dilaporkan.
func TestDetectSymmetry(t *testing.T) {
	acts := []Activity{
		weekly("00000000-0000-0000-0000-000000000001", 1, teacherJ, room101, class10, sectionA),
		weekly("00000000-0000-0000-0000-000000000002", 1, teacherJ, room101, class10, sectionA),
		weekly("00000000-0000-0000-0000-000000000003", 1, teacherJ, room101, class10, sectionA),
	}

	got := Detect(acts)
	// C(3,2)=3 pasangan, masing-masing bentrok di 3 dimensi.
	if len(got) != 9 {
		t.Fatalf("expected 9 conflicts, got %d", len(got))
	}
	seen := map[[2]uuid.UUID]int{}
	for _, c := range got {
		if c.FirstID == c.SecondID {
			t.Fatalf("self-conflict reported: %+v", c)
		}
		seen[[2]uuid.UUID{c.FirstID, c.SecondID}]++
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct pairs, got %d", len(seen))
	}
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{}
	if err.Error() == "" {
		t.Fatal("empty message")
	}

	err = &ConflictError{Conflicts: []Conflict{{Description: "Room Lab2 is already booked"}}}
	if err.Error() != "Room Lab2 is already booked" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

package seating

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func departmentStudents(dept, subject string, count int) []Student {
	students := make([]Student, 0, count)
	for i := 1; i <= count; i++ {
		students = append(students, Student{
			ID:           fmt.Sprintf("%s-%03d", dept, i),
			RollNumber:   fmt.Sprintf("%d", i),
			Name:         fmt.Sprintf("%s student %d", dept, i),
			DepartmentID: dept,
			SubjectID:    subject,
		})
	}
	return students
}

func threeHalls() []Hall {
	return []Hall{hallFixture("h1", "101", 45), hallFixture("h2", "102", 45), hallFixture("h3", "103", 45)}
}

func assertBijection(t *testing.T, placements []Placement, students []Student) {
	t.Helper()
	seats := make(map[Slot]bool, len(placements))
	seated := make(map[string]bool, len(placements))
	for _, p := range placements {
		assert.False(t, seats[p.Slot], "slot %+v used twice", p.Slot)
		assert.False(t, seated[p.Student.ID], "student %s seated twice", p.Student.ID)
		seats[p.Slot] = true
		seated[p.Student.ID] = true
	}
	for _, s := range students {
		assert.True(t, seated[s.ID], "student %s not seated", s.ID)
	}
}

// assertBenchDiversity checks that a bench filled while at least seatsPerBench departments still
// had students never repeats a department.
func assertBenchDiversity(t *testing.T, placements []Placement, students []Student, seatsPerBench int) {
	t.Helper()
	remaining := make(map[string]int)
	for _, s := range students {
		remaining[s.DepartmentID]++
	}
	slots := make([]Slot, len(placements))
	for i, p := range placements {
		slots[i] = p.Slot
	}
	offset := 0
	for _, bench := range Benches(slots) {
		active := 0
		for _, count := range remaining {
			if count > 0 {
				active++
			}
		}
		seen := make(map[string]bool)
		for i := range bench {
			dept := placements[offset+i].Student.DepartmentID
			if active >= seatsPerBench {
				assert.False(t, seen[dept], "bench %s/%d repeats department %s", bench[0].HallID, bench[0].Bench, dept)
			}
			seen[dept] = true
			remaining[dept]--
		}
		offset += len(bench)
	}
}

func TestEngineTwoDepartmentScenario(t *testing.T) {
	students := append(departmentStudents("A", "math", 50), departmentStudents("B", "physics", 40)...)

	result, err := NewEngine(3).Run(students, threeHalls())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Plan.Required)
	assert.Equal(t, 90, result.Summary.SeatsUsed)
	assert.Equal(t, 2, result.Summary.HallsUsed)
	assert.Zero(t, result.Summary.StudentsUnseated)
	assertBijection(t, result.Placements, students)

	for i := 1; i < len(result.Placements); i++ {
		prev, cur := result.Placements[i-1], result.Placements[i]
		if prev.HallID != cur.HallID || prev.Bench != cur.Bench {
			continue
		}
		assert.NotEqual(t, prev.Student.DepartmentID, cur.Student.DepartmentID,
			"adjacent seats %d and %d on bench %s/%d share a department", prev.Position, cur.Position, cur.HallID, cur.Bench)
	}
}

func TestEngineSingleDepartmentScenario(t *testing.T) {
	students := departmentStudents("A", "math", 10)

	result, err := NewEngine(3).Run(students, []Hall{hallFixture("h1", "101", 45)})

	require.NoError(t, err)
	assert.Equal(t, 10, result.Summary.SeatsUsed)
	assert.Equal(t, 1, result.Summary.HallsUsed)
	assert.Equal(t, 3, result.Summary.SharedBenches)
	assertBijection(t, result.Placements, students)
	assert.Equal(t, "A-001", result.Placements[0].Student.ID)
	assert.Equal(t, "A-010", result.Placements[9].Student.ID)
}

func TestEngineCapacityScenario(t *testing.T) {
	students := append(departmentStudents("A", "math", 60), departmentStudents("B", "math", 40)...)
	halls := []Hall{hallFixture("h1", "101", 45), hallFixture("h2", "102", 45)}

	result, err := NewEngine(3).Run(students, halls)

	require.Error(t, err)
	assert.Nil(t, result)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 10, capErr.Shortfall)
}

func TestEngineZeroStudents(t *testing.T) {
	result, err := NewEngine(3).Run(nil, threeHalls())

	require.NoError(t, err)
	assert.Empty(t, result.Placements)
	assert.Zero(t, result.Summary.HallsUsed)

	result, err = NewEngine(3).Run(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Placements)
}

func TestEngineWithoutUsableSeatsIsCapacityError(t *testing.T) {
	students := departmentStudents("A", "math", 5)

	result, err := NewEngine(3).Run(students, []Hall{hallFixture("h0", "100", 0)})

	require.Error(t, err)
	assert.Nil(t, result)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 5, capErr.Shortfall)
	assert.Zero(t, capErr.Capacity)
}

func TestEngineDeterministic(t *testing.T) {
	students := append(append(departmentStudents("CSE", "ds", 37), departmentStudents("ECE", "signals", 22)...), departmentStudents("MECH", "thermo", 18)...)
	reversed := make([]Student, len(students))
	for i := range students {
		reversed[len(students)-1-i] = students[i]
	}

	first, err := NewEngine(3).Run(students, threeHalls())
	require.NoError(t, err)
	second, err := NewEngine(3).Run(reversed, threeHalls())
	require.NoError(t, err)

	assert.Equal(t, first.Placements, second.Placements)
}

func TestEngineBenchDiversity(t *testing.T) {
	var students []Student
	sizes := map[string]int{"D1": 31, "D2": 7, "D3": 19, "D4": 12, "D5": 3}
	for _, dept := range []string{"D1", "D2", "D3", "D4", "D5"} {
		students = append(students, departmentStudents(dept, "sub-"+dept, sizes[dept])...)
	}

	result, err := NewEngine(3).Run(students, threeHalls())

	require.NoError(t, err)
	assertBijection(t, result.Placements, students)
	assertBenchDiversity(t, result.Placements, students, 3)
}

func TestEngineDoesNotSpreadAcrossExtraHalls(t *testing.T) {
	students := departmentStudents("A", "math", 46)

	result, err := NewEngine(3).Run(students, threeHalls())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.HallsUsed)
	assert.Equal(t, 90, result.Summary.SeatsAvailable)
	for _, p := range result.Placements {
		assert.NotEqual(t, "h3", p.HallID)
	}
}

func TestEngineDeduplicatesStudents(t *testing.T) {
	students := departmentStudents("A", "math", 3)
	students = append(students, students[0])

	result, err := NewEngine(3).Run(students, threeHalls())

	require.NoError(t, err)
	assert.Len(t, result.Placements, 3)
	assert.Equal(t, 3, result.Summary.Eligible)
}

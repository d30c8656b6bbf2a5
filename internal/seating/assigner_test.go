package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRejectsTooManyStudents(t *testing.T) {
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 3)}, 3)

	_, err := Assign(slots, departmentStudents("A", "x", 4))

	assert.ErrorIs(t, err, ErrInsufficientSlots)
}

func TestAssignKeepsRollOrderWithinDepartment(t *testing.T) {
	students := []Student{
		{ID: "s10", RollNumber: "10", DepartmentID: "A", SubjectID: "x"},
		{ID: "s2", RollNumber: "2", DepartmentID: "A", SubjectID: "x"},
		{ID: "s9", RollNumber: "9", DepartmentID: "A", SubjectID: "x"},
	}
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 3)}, 3)

	placements, err := Assign(slots, students)

	require.NoError(t, err)
	require.Len(t, placements, 3)
	assert.Equal(t, "s2", placements[0].Student.ID)
	assert.Equal(t, "s9", placements[1].Student.ID)
	assert.Equal(t, "s10", placements[2].Student.ID)
}

func TestAssignGroupsSubjectsInsideDepartment(t *testing.T) {
	students := []Student{
		{ID: "a1", RollNumber: "1", DepartmentID: "A", SubjectID: "physics"},
		{ID: "a2", RollNumber: "2", DepartmentID: "A", SubjectID: "chemistry"},
		{ID: "a3", RollNumber: "3", DepartmentID: "A", SubjectID: "physics"},
	}
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 3)}, 3)

	placements, err := Assign(slots, students)

	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1", "a3"}, []string{placements[0].Student.ID, placements[1].Student.ID, placements[2].Student.ID})
}

func TestAssignFillsBenchWithDistinctDepartments(t *testing.T) {
	students := append(append(departmentStudents("A", "x", 3), departmentStudents("B", "y", 3)...), departmentStudents("C", "z", 3)...)
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 9)}, 3)

	placements, err := Assign(slots, students)

	require.NoError(t, err)
	for _, bench := range [][]Placement{placements[0:3], placements[3:6], placements[6:9]} {
		seen := map[string]bool{}
		for _, p := range bench {
			assert.False(t, seen[p.Student.DepartmentID])
			seen[p.Student.DepartmentID] = true
		}
	}
}

func TestAssignBreaksTiesByRotation(t *testing.T) {
	students := append(append(departmentStudents("A", "x", 2), departmentStudents("B", "y", 2)...), departmentStudents("C", "z", 2)...)
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 6)}, 2)

	placements, err := Assign(slots, students)

	require.NoError(t, err)
	got := make([]string, 0, len(placements))
	for _, p := range placements {
		got = append(got, p.Student.DepartmentID)
	}
	assert.Equal(t, []string{"A", "B", "C", "B", "C", "A"}, got)
}

func TestAssignLeavesSurplusSlotsEmpty(t *testing.T) {
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 45)}, 3)

	placements, err := Assign(slots, departmentStudents("A", "x", 5))

	require.NoError(t, err)
	assert.Len(t, placements, 5)
}

func TestLessRoll(t *testing.T) {
	assert.True(t, lessRoll("9", "10"))
	assert.False(t, lessRoll("10", "9"))
	assert.True(t, lessRoll("21CS001", "21CS002"))
}

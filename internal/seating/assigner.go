package seating

import (
	"sort"
	"strconv"
)

type departmentQueue struct {
	id       string
	students []Student
	next     int
}

func (q *departmentQueue) remaining() int {
	return len(q.students) - q.next
}

func (q *departmentQueue) pop() Student {
	student := q.students[q.next]
	q.next++
	return student
}

// Assign fills slots bench by bench, merging the per-department queues so that a bench holds as
// many distinct departments as possible. Within a department students keep subject then roll
// number order. Slots beyond the number of students stay empty.
func Assign(slots []Slot, students []Student) ([]Placement, error) {
	if len(students) > len(slots) {
		return nil, ErrInsufficientSlots
	}
	if len(students) == 0 {
		return []Placement{}, nil
	}

	queues := buildQueues(students)
	rotation := make([]*departmentQueue, len(queues))
	copy(rotation, queues)

	placements := make([]Placement, 0, len(students))
	for _, bench := range Benches(slots) {
		if len(placements) == len(students) {
			break
		}
		onBench := make(map[string]bool, len(bench))
		previous := ""
		for _, slot := range bench {
			queue := pickQueue(rotation, onBench, previous)
			if queue == nil {
				break
			}
			placements = append(placements, Placement{Slot: slot, Student: queue.pop()})
			onBench[queue.id] = true
			previous = queue.id
		}
		rotation = append(rotation[1:], rotation[0])
	}
	return placements, nil
}

// pickQueue chooses the department for the next seat: the one with the most students left that is
// not yet on the bench; failing that, one that differs from the neighbouring seat; failing that,
// any. Ties go to the earlier department in the rotation.
func pickQueue(rotation []*departmentQueue, onBench map[string]bool, previous string) *departmentQueue {
	filters := []func(*departmentQueue) bool{
		func(q *departmentQueue) bool { return !onBench[q.id] },
		func(q *departmentQueue) bool { return q.id != previous },
		func(*departmentQueue) bool { return true },
	}
	for _, allowed := range filters {
		var best *departmentQueue
		for _, queue := range rotation {
			if queue.remaining() == 0 || !allowed(queue) {
				continue
			}
			if best == nil || queue.remaining() > best.remaining() {
				best = queue
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

func buildQueues(students []Student) []*departmentQueue {
	byDepartment := make(map[string]*departmentQueue)
	var order []string
	for _, student := range students {
		queue, ok := byDepartment[student.DepartmentID]
		if !ok {
			queue = &departmentQueue{id: student.DepartmentID}
			byDepartment[student.DepartmentID] = queue
			order = append(order, student.DepartmentID)
		}
		queue.students = append(queue.students, student)
	}
	sort.Strings(order)

	queues := make([]*departmentQueue, 0, len(order))
	for _, id := range order {
		queue := byDepartment[id]
		sort.SliceStable(queue.students, func(i, j int) bool {
			a, b := queue.students[i], queue.students[j]
			if a.SubjectID != b.SubjectID {
				return a.SubjectID < b.SubjectID
			}
			if a.RollNumber != b.RollNumber {
				return lessRoll(a.RollNumber, b.RollNumber)
			}
			return a.ID < b.ID
		})
		queues = append(queues, queue)
	}
	return queues
}

// lessRoll orders roll numbers numerically when both are integers, lexically otherwise, so that
// "9" sorts before "10".
func lessRoll(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil && ai != bi {
		return ai < bi
	}
	if len(a) != len(b) && errA == nil && errB == nil {
		return len(a) < len(b)
	}
	return a < b
}

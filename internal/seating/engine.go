package seating

// Summary describes an allocation result for display.
type Summary struct {
	Eligible         int `json:"eligible"`
	SeatsUsed        int `json:"seatsUsed"`
	SeatsAvailable   int `json:"seatsAvailable"`
	HallsUsed        int `json:"hallsUsed"`
	StudentsUnseated int `json:"studentsUnseated"`
	SharedBenches    int `json:"sharedBenches"`
}

// Result is the outcome of a successful run.
type Result struct {
	Plan       CapacityPlan
	Placements []Placement
	Summary    Summary
}

// Engine runs the planner, seat grid and assigner in sequence.
type Engine struct {
	SeatsPerBench int
}

// NewEngine returns an engine using seatsPerBench for halls without their own layout.
func NewEngine(seatsPerBench int) *Engine {
	if seatsPerBench <= 0 {
		seatsPerBench = DefaultSeatsPerBench
	}
	return &Engine{SeatsPerBench: seatsPerBench}
}

// Plan sizes the hall pool for the given number of students.
func (e *Engine) Plan(eligible int, halls []Hall) CapacityPlan {
	return Plan(eligible, halls, e.SeatsPerBench)
}

// Run seats students in halls. It returns a *CapacityError when the pool is too small, including
// a pool without usable seats; in that case no placement is produced. No eligible students is an
// empty schedule that succeeds with no placements. Duplicate student IDs are seated once.
func (e *Engine) Run(students []Student, halls []Hall) (*Result, error) {
	students = dedupeStudents(students)

	plan := e.Plan(len(students), halls)
	if len(students) == 0 {
		return &Result{Plan: plan, Summary: summarize(0, 0, nil)}, nil
	}
	if err := plan.Err(); err != nil {
		return nil, err
	}

	slots := BuildSlots(plan.Selected, e.SeatsPerBench)
	placements, err := Assign(slots, students)
	if err != nil {
		return nil, err
	}

	return &Result{
		Plan:       plan,
		Placements: placements,
		Summary:    summarize(len(students), len(slots), placements),
	}, nil
}

func dedupeStudents(students []Student) []Student {
	seen := make(map[string]bool, len(students))
	unique := make([]Student, 0, len(students))
	for _, student := range students {
		if seen[student.ID] {
			continue
		}
		seen[student.ID] = true
		unique = append(unique, student)
	}
	return unique
}

func summarize(eligible, available int, placements []Placement) Summary {
	summary := Summary{
		Eligible:         eligible,
		SeatsUsed:        len(placements),
		SeatsAvailable:   available,
		StudentsUnseated: eligible - len(placements),
	}

	type benchKey struct {
		hall  string
		bench int
	}
	halls := make(map[string]bool)
	departments := make(map[benchKey]map[string]bool)
	shared := make(map[benchKey]bool)
	for _, p := range placements {
		halls[p.HallID] = true
		key := benchKey{hall: p.HallID, bench: p.Bench}
		if departments[key] == nil {
			departments[key] = make(map[string]bool)
		}
		if departments[key][p.Student.DepartmentID] {
			shared[key] = true
		}
		departments[key][p.Student.DepartmentID] = true
	}
	summary.HallsUsed = len(halls)
	summary.SharedBenches = len(shared)
	return summary
}

package seating

import "sort"

// CapacityPlan is the outcome of sizing the hall pool for a run.
type CapacityPlan struct {
	Eligible         int
	Required         int
	Selected         []Hall
	TotalCapacity    int
	SelectedCapacity int
	Shortfall        int
}

// Err returns a *CapacityError when the pool is too small.
func (p CapacityPlan) Err() error {
	if p.Shortfall <= 0 {
		return nil
	}
	return &CapacityError{Eligible: p.Eligible, Capacity: p.TotalCapacity, Shortfall: p.Shortfall}
}

// SortHalls returns a copy of halls ordered by OrderKey, then ID.
func SortHalls(halls []Hall) []Hall {
	sorted := make([]Hall, len(halls))
	copy(sorted, halls)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OrderKey == sorted[j].OrderKey {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].OrderKey < sorted[j].OrderKey
	})
	return sorted
}

// Plan selects the shortest prefix of the ordered hall pool whose capacity covers eligible.
// Halls without usable seats are skipped.
func Plan(eligible int, halls []Hall, defaultSeatsPerBench int) CapacityPlan {
	plan := CapacityPlan{Eligible: eligible}
	ordered := SortHalls(halls)

	usable := make([]Hall, 0, len(ordered))
	for _, hall := range ordered {
		seats := hall.Seats(defaultSeatsPerBench)
		if seats <= 0 {
			continue
		}
		usable = append(usable, hall)
		plan.TotalCapacity += seats
	}

	if eligible <= 0 {
		return plan
	}
	if plan.TotalCapacity < eligible {
		plan.Shortfall = eligible - plan.TotalCapacity
		return plan
	}

	for _, hall := range usable {
		if plan.SelectedCapacity >= eligible {
			break
		}
		plan.Selected = append(plan.Selected, hall)
		plan.SelectedCapacity += hall.Seats(defaultSeatsPerBench)
	}
	plan.Required = len(plan.Selected)
	return plan
}

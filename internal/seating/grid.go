package seating

// BuildSlots lists every seat of the given halls in allocation order: hall by hall, bench 1..n,
// position 1..seatsPerBench. A hall whose capacity is not a multiple of its bench size ends with
// a short bench.
func BuildSlots(halls []Hall, defaultSeatsPerBench int) []Slot {
	total := 0
	for _, hall := range halls {
		total += hall.Seats(defaultSeatsPerBench)
	}
	slots := make([]Slot, 0, total)
	for _, hall := range halls {
		benches, perBench := hall.Layout(defaultSeatsPerBench)
		remaining := hall.Seats(defaultSeatsPerBench)
		for bench := 1; bench <= benches && remaining > 0; bench++ {
			for position := 1; position <= perBench && remaining > 0; position++ {
				slots = append(slots, Slot{HallID: hall.ID, Bench: bench, Position: position})
				remaining--
			}
		}
	}
	return slots
}

// Benches splits a slot sequence into runs of slots that share a hall and bench number.
func Benches(slots []Slot) [][]Slot {
	var benches [][]Slot
	start := 0
	for i := 1; i <= len(slots); i++ {
		if i == len(slots) || slots[i].HallID != slots[start].HallID || slots[i].Bench != slots[start].Bench {
			benches = append(benches, slots[start:i])
			start = i
		}
	}
	return benches
}

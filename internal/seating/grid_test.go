package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSlotsOrdering(t *testing.T) {
	halls := []Hall{hallFixture("h1", "1", 6), hallFixture("h2", "2", 3)}

	slots := BuildSlots(halls, 3)

	require.Len(t, slots, 9)
	assert.Equal(t, Slot{HallID: "h1", Bench: 1, Position: 1}, slots[0])
	assert.Equal(t, Slot{HallID: "h1", Bench: 1, Position: 3}, slots[2])
	assert.Equal(t, Slot{HallID: "h1", Bench: 2, Position: 1}, slots[3])
	assert.Equal(t, Slot{HallID: "h2", Bench: 1, Position: 1}, slots[6])
}

func TestBuildSlotsDefaultHall(t *testing.T) {
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 45)}, 3)

	require.Len(t, slots, 45)
	last := slots[len(slots)-1]
	assert.Equal(t, 15, last.Bench)
	assert.Equal(t, 3, last.Position)
}

func TestBuildSlotsShortLastBench(t *testing.T) {
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 7)}, 3)

	require.Len(t, slots, 7)
	benches := Benches(slots)
	require.Len(t, benches, 3)
	assert.Len(t, benches[2], 1)
}

func TestBuildSlotsDeterministic(t *testing.T) {
	halls := []Hall{hallFixture("h1", "1", 45), {ID: "h2", OrderKey: "2", Capacity: 20, BenchCount: 10, SeatsPerBench: 2}}

	assert.Equal(t, BuildSlots(halls, 3), BuildSlots(halls, 3))
}

func TestBenchesGroupsAcrossHalls(t *testing.T) {
	slots := BuildSlots([]Hall{hallFixture("h1", "1", 3), hallFixture("h2", "2", 3)}, 3)

	benches := Benches(slots)

	require.Len(t, benches, 2)
	assert.Equal(t, "h1", benches[0][0].HallID)
	assert.Equal(t, "h2", benches[1][0].HallID)
	assert.Empty(t, Benches(nil))
}

package activity

import (
	"testing"
	"time"
)

func TestRecordAndRecent(t *testing.T) {
	bus := NewBus(10, 5.0)

	bus.Record(3, 1.0)
	bus.Record(7, 0.5)

	events := bus.Recent(5.0)
	if len(events) != 2 {
		t.Fatalf("recent returned %d events, expected 2", len(events))
	}
	if events[0].KeyIndex != 3 || events[1].KeyIndex != 7 {
		t.Fatalf("events out of order: %+v", events)
	}
	if events[1].Intensity != 0.5 {
		t.Fatalf("intensity %f, expected 0.5", events[1].Intensity)
	}
	if events[0].TimeSeconds > events[1].TimeSeconds {
		t.Fatal("timestamps not monotonic for a single producer")
	}
}

func TestOutOfRangeDroppedSilently(t *testing.T) {
	bus := NewBus(4, 5.0)

	bus.Record(4, 1.0)
	bus.Record(-1, 1.0)
	if events := bus.Recent(5.0); len(events) != 0 {
		t.Fatalf("out of range events recorded: %+v", events)
	}
}

func TestWindowClamped(t *testing.T) {
	bus := NewBus(4, 0.2)

	bus.Record(0, 1.0)

	// A window wider than the horizon is clamped to it
	if events := bus.Recent(100.0); len(events) != 1 {
		t.Fatalf("clamped window lost the event: %+v", events)
	}
	if events := bus.Recent(-3.0); len(events) != 0 {
		t.Fatalf("negative window returned events: %+v", events)
	}
}

func TestHorizonPrunes(t *testing.T) {
	bus := NewBus(4, 0.15)

	bus.Record(1, 1.0)
	if events := bus.Recent(bus.HistoryWindow()); len(events) != 1 {
		t.Fatalf("fresh event missing: %+v", events)
	}

	time.Sleep(200 * time.Millisecond)
	if events := bus.Recent(bus.HistoryWindow()); len(events) != 0 {
		t.Fatalf("stale events survived the horizon: %+v", events)
	}
}

func TestSnapshotIndependentOfWrites(t *testing.T) {
	bus := NewBus(8, 5.0)
	bus.Record(1, 1.0)

	snapshot := bus.Recent(5.0)
	for i := 0; i < 16; i++ {
		bus.Record(2, 1.0)
	}

	if len(snapshot) != 1 || snapshot[0].KeyIndex != 1 {
		t.Fatalf("snapshot mutated by later writes: %+v", snapshot)
	}
}

func TestSetKeyCountResets(t *testing.T) {
	bus := NewBus(4, 5.0)
	bus.Record(1, 1.0)

	bus.SetKeyCount(8)
	if events := bus.Recent(5.0); len(events) != 0 {
		t.Fatalf("events survived a key count change: %+v", events)
	}

	bus.Record(6, 1.0)
	if events := bus.Recent(5.0); len(events) != 1 {
		t.Fatalf("new key space not accepted: %+v", events)
	}
}

package dispatch

import (
	"testing"
)

func TestProfilerCounts(t *testing.T) {
	p := NewProfiler()
	p.Record("speak", []string{"Dog"})
	p.Record("speak", []string{"Dog"})
	p.Record("speak", []string{"default"})
	p.Record("combine", []string{"integer", "integer"})

	stats := p.Snapshot()
	if len(stats) != 3 {
		t.Fatalf("Snapshot() has %d entries, want 3", len(stats))
	}
	// Sorted by generic then signature.
	if stats[0].Generic != "combine" {
		t.Errorf("first entry = %s, want combine", stats[0].Generic)
	}
	for _, st := range stats {
		if st.Generic == "speak" && st.Signature[0] == "Dog" && st.Count != 2 {
			t.Errorf("speak(Dog) count = %d, want 2", st.Count)
		}
	}
}

func TestProfilerHotCallback(t *testing.T) {
	p := NewProfiler()
	p.HotThreshold = 3

	var hotGeneric string
	var hotCount uint64
	fired := 0
	p.OnHot = func(generic string, signature []string, count uint64) {
		hotGeneric = generic
		hotCount = count
		fired++
	}

	for i := 0; i < 5; i++ {
		p.Record("speak", []string{"Dog"})
	}
	if fired != 1 {
		t.Fatalf("OnHot fired %d times, want exactly once", fired)
	}
	if hotGeneric != "speak" || hotCount != 3 {
		t.Errorf("OnHot(%s, %d), want (speak, 3)", hotGeneric, hotCount)
	}
}

func TestProfilerReset(t *testing.T) {
	p := NewProfiler()
	p.Record("speak", []string{"Dog"})
	p.Reset()
	if stats := p.Snapshot(); len(stats) != 0 {
		t.Errorf("Snapshot() after Reset has %d entries, want 0", len(stats))
	}
}

func TestInvokeRecordsDispatch(t *testing.T) {
	rt := newAnimalRuntime(t)
	dog, err := rt.NewTagged("Dog", Null)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rt.CallSingle("speak", []Value{dog.ToValue()}); err != nil {
		t.Fatal(err)
	}

	stats := rt.Profiler().Snapshot()
	if len(stats) != 1 {
		t.Fatalf("Snapshot() has %d entries, want 1", len(stats))
	}
	if stats[0].Generic != "speak" || stats[0].Signature[0] != "Dog" || stats[0].Count != 1 {
		t.Errorf("recorded stat = %+v, want speak/[Dog]/1", stats[0])
	}
}

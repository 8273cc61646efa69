package trace

import (
	"path/filepath"
	"testing"

	"github.com/chazu/trellis/dispatch"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFlushAndTop(t *testing.T) {
	s := openStore(t)
	err := s.Flush([]dispatch.DispatchStat{
		{Generic: "speak", Signature: []string{"Dog"}, Count: 12},
		{Generic: "area", Signature: []string{"integer", "integer"}, Count: 40},
		{Generic: "speak", Signature: []string{"Cat"}, Count: 3},
	})
	if err != nil {
		t.Fatal(err)
	}

	top, err := s.Top(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Fatalf("Top(2) returned %d rows, want 2", len(top))
	}
	if top[0].Generic != "area" || top[0].Count != 40 {
		t.Errorf("top row = %+v, want area with count 40", top[0])
	}
	if top[1].Generic != "speak" || top[1].Signature != "(Dog)" {
		t.Errorf("second row = %+v, want speak (Dog)", top[1])
	}
}

func TestFlushOverwrites(t *testing.T) {
	s := openStore(t)
	stat := dispatch.DispatchStat{Generic: "speak", Signature: []string{"Dog"}, Count: 5}
	if err := s.Flush([]dispatch.DispatchStat{stat}); err != nil {
		t.Fatal(err)
	}
	stat.Count = 9
	if err := s.Flush([]dispatch.DispatchStat{stat}); err != nil {
		t.Fatal(err)
	}

	rows, err := s.ForGeneric("speak")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("ForGeneric(speak) has %d rows, want 1", len(rows))
	}
	if rows[0].Count != 9 {
		t.Errorf("count = %d, want 9 (snapshot counts replace, not sum)", rows[0].Count)
	}
}

func TestForGenericOrdersBySignature(t *testing.T) {
	s := openStore(t)
	err := s.Flush([]dispatch.DispatchStat{
		{Generic: "speak", Signature: []string{"Dog"}, Count: 1},
		{Generic: "speak", Signature: []string{"Cat"}, Count: 2},
		{Generic: "area", Signature: []string{"matrix"}, Count: 7},
	})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := s.ForGeneric("speak")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("ForGeneric(speak) has %d rows, want 2", len(rows))
	}
	if rows[0].Signature != "(Cat)" || rows[1].Signature != "(Dog)" {
		t.Errorf("rows = %+v, want (Cat) then (Dog)", rows)
	}
}

func TestStatString(t *testing.T) {
	st := Stat{Generic: "speak", Signature: "(Dog)", Count: 3}
	if got := st.String(); got != "speak(Dog): 3" {
		t.Errorf("String() = %q, want %q", got, "speak(Dog): 3")
	}
}

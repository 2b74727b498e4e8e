package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		if !m.Enabled(name, 1) {
			t.Errorf("flag %q should be on", name)
		}
	}
	for _, name := range []string{"b", "d", "f"} {
		if m.Enabled(name, 1) {
			t.Errorf("flag %q should be off", name)
		}
	}
	if m.Enabled("unknown", 1) {
		t.Error("unknown flags must default to off")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestEnabled_RolloutIsMonotonic(t *testing.T) {
	// a user inside a 25% rollout must stay inside when the rollout widens
	small := NewManager("canary=25%")
	large := NewManager("canary=75%")

	for userID := uint(1); userID <= 200; userID++ {
		if small.Enabled("canary", userID) && !large.Enabled("canary", userID) {
			t.Fatalf("user %d dropped out when rollout widened", userID)
		}
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ,w=maybe,v=150%")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d: %#v", len(raw), raw)
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(123)
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["x"] || snap["z"] {
		t.Fatalf("snapshot disagrees with Enabled: %#v", snap)
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.Enabled("anything", 1) {
		t.Fatal("nil manager must evaluate everything to off")
	}
}

package plan

import (
	"sync"
	"testing"
)

func TestRegistryCreateMintsID(t *testing.T) {
	reg := NewRegistry()
	proj := reg.Create("", PlanGraph{})
	if proj.ID == "" {
		t.Fatal("Empty project id not replaced")
	}
	got, ok := reg.Get(proj.ID)
	if !ok || got != proj {
		t.Error("Created project not retrievable by its minted id")
	}
}

func TestRegistryCreateReplacesExisting(t *testing.T) {
	reg := NewRegistry()
	first := reg.Create("p", PlanGraph{})
	first.Devices = []Device{{Type: DeviceSocket, RoomID: "r", X: 1, Y: 1}}

	second := reg.Create("p", PlanGraph{
		Rooms: []RoomInput{{ID: "room-1", Polygon: rect(0, 0, 4, 4)}},
	})
	if second == first {
		t.Fatal("Create reused the old project handle")
	}
	if len(second.Devices) != 0 {
		t.Error("Stage outputs survived recreation")
	}
	got, _ := reg.Get("p")
	if len(got.Graph.Rooms) != 1 {
		t.Error("Plan graph not replaced")
	}
}

func TestRegistryIDsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		reg.Create(id, PlanGraph{})
	}
	ids := reg.IDs()
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("Got %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestRegistryWithUnknownID(t *testing.T) {
	reg := NewRegistry()
	err := reg.With("missing", func(*Project) error { return nil })
	if err == nil {
		t.Error("Expected error for unknown project id")
	}
}

func TestRegistryWithSerializesPerProject(t *testing.T) {
	reg := NewRegistry()
	reg.Create("p", PlanGraph{})

	// Unsynchronized appends inside With are safe only if runs against one
	// id are exclusive.
	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.With("p", func(proj *Project) error {
				proj.Devices = append(proj.Devices, Device{Type: DeviceSocket})
				return nil
			})
		}()
	}
	wg.Wait()

	proj, _ := reg.Get("p")
	if len(proj.Devices) != n {
		t.Errorf("Got %d devices, want %d", len(proj.Devices), n)
	}
}

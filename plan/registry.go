package plan

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Project is the explicit per-project state handle passed between pipeline
// stages. Rooms and Openings are derived from Graph by normalize; Devices
// and Routes are the persistent stage outputs, replaced wholesale on each
// run.
type Project struct {
	ID       string
	Graph    PlanGraph
	Rooms    []Room
	Openings []Opening
	Devices  []Device
	Routes   []Route
	Anchor   orb.Point
}

// normalize refreshes the canonical geometry from the raw plan graph. It
// is re-run at the start of every stage so stale geometry can never leak
// between invocations.
func (p *Project) normalize() {
	p.Rooms = NormalizeRooms(p.Graph.Rooms)
	p.Openings = NormalizeOpenings(p.Graph.Openings)
}

// Registry owns the projects and serializes pipeline runs per project id.
// Independent projects share no mutable state and may run concurrently;
// runs against the same id are exclusive so partial Device/Route writes
// never interleave.
type Registry struct {
	mu       sync.Mutex
	projects map[string]*Project
	locks    map[string]*sync.Mutex
}

// NewRegistry creates an empty project registry.
func NewRegistry() *Registry {
	return &Registry{
		projects: make(map[string]*Project),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Create registers a new project for the given plan graph. An empty id is
// replaced by a fresh UUID; an existing id has its plan graph replaced and
// its stage outputs cleared.
func (r *Registry) Create(id string, graph PlanGraph) *Project {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	proj := &Project{ID: id, Graph: graph}
	r.projects[id] = proj
	if _, ok := r.locks[id]; !ok {
		r.locks[id] = &sync.Mutex{}
	}
	return proj
}

// Get returns the project for id.
func (r *Registry) Get(id string) (*Project, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	return p, ok
}

// IDs returns all registered project ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.projects))
	for id := range r.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// With runs fn holding the project's exclusive lock. This is the only
// intended way to run pipeline stages, so concurrent invocations against
// one project id are serialized while distinct projects proceed in
// parallel.
func (r *Registry) With(id string, fn func(*Project) error) error {
	r.mu.Lock()
	proj, ok := r.projects[id]
	lock := r.locks[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown project %q", id)
	}

	lock.Lock()
	defer lock.Unlock()
	return fn(proj)
}

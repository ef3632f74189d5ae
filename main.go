package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avk/planwire/plan"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	planFile    = flag.String("plan", "plan.json", "Path to the plan graph JSON file")
	rulesFile   = flag.String("rules", "", "Path to the rules YAML file (empty = built-in defaults)")
	outFile     = flag.String("out", "", "Write placement/routing results as JSON (empty = stdout)")
	overlayFile = flag.String("overlay", "", "Write a PNG overlay of the result")
	dbFile      = flag.String("db", "", "Snapshot the result into a SQLite database")
	projectID   = flag.String("project", "", "Project id (empty = generated)")
	placeOnly   = flag.Bool("place-only", false, "Run placement and exit without routing")
)

// result is the output contract consumed by export/BOM/validation tools.
type result struct {
	ProjectID string        `json:"projectId"`
	Devices   []plan.Device `json:"devices"`
	Routes    []plan.Route  `json:"routes"`
}

func main() {
	flag.Parse()
	fmt.Printf("planwire version: %s\n", Version)

	cfg := plan.DefaultConfig()
	if *rulesFile != "" {
		var err error
		cfg, err = plan.LoadRules(*rulesFile)
		if err != nil {
			log.Fatalf("Error loading rules: %v", err)
		}
	}

	graph, err := loadPlanGraph(*planFile)
	if err != nil {
		log.Fatalf("Error loading plan graph: %v", err)
	}

	registry := plan.NewRegistry()
	proj := registry.Create(*projectID, graph)
	pipeline := plan.NewPipeline(cfg)

	var out result
	err = registry.With(proj.ID, func(p *plan.Project) error {
		out.ProjectID = p.ID
		out.Devices = pipeline.Place(p)
		if !*placeOnly {
			out.Routes = pipeline.Route(p)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error running pipeline: %v", err)
	}

	if err := writeResult(out); err != nil {
		log.Fatalf("Error writing result: %v", err)
	}

	if *dbFile != "" {
		if err := snapshot(proj.ID, out); err != nil {
			log.Fatalf("Error snapshotting result: %v", err)
		}
	}

	if *overlayFile != "" {
		if err := writeOverlay(proj); err != nil {
			log.Fatalf("Error writing overlay: %v", err)
		}
	}
}

func loadPlanGraph(path string) (plan.PlanGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plan.PlanGraph{}, err
	}
	var graph plan.PlanGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return plan.PlanGraph{}, fmt.Errorf("parsing plan graph JSON: %w", err)
	}
	return graph, nil
}

func writeResult(out result) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if *outFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*outFile, data, 0644)
}

func snapshot(projectID string, out result) error {
	store, err := plan.NewStore(*dbFile)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ReplaceDevices(projectID, out.Devices); err != nil {
		return err
	}
	return store.ReplaceRoutes(projectID, out.Routes)
}

func writeOverlay(proj *plan.Project) error {
	f, err := os.Create(*overlayFile)
	if err != nil {
		return err
	}

	if err := plan.NewOverlayRenderer().RenderPNG(proj, f); err != nil {
		f.Close()
		return err
	}
	log.Printf("[OVERLAY] wrote %s", *overlayFile)
	return f.Close()
}

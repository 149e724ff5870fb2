package pipeline

import "errors"

// Summary aggregates a batch of model results.
type Summary struct {
	Models        int `yaml:"models"`
	FailedModels  int `yaml:"failed_models"`
	Nodes         int `yaml:"nodes"`
	Watertight    int `yaml:"watertight"`
	Open          int `yaml:"open"`
	Malformed     int `yaml:"malformed"`
	BoundaryEdges int `yaml:"boundary_edges"`
}

// Summarize counts node outcomes across results.
func Summarize(results []ModelResult) Summary {
	var s Summary
	for _, m := range results {
		s.Models++
		if m.Failed() {
			s.FailedModels++
		}
		for _, n := range m.Nodes {
			s.Nodes++
			switch {
			case n.Err != nil && !errors.Is(n.Err, ErrNotWatertight):
				s.Malformed++
			case n.Report.Watertight():
				s.Watertight++
			default:
				s.Open++
				s.BoundaryEdges += n.Report.BoundaryEdges
			}
		}
	}
	return s
}

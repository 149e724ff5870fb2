// Package pipeline runs the adjacency builder over RSM models, one mesh per node.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshadj/internal/config"
	"github.com/Faultbox/meshadj/pkg/adjacency"
	"github.com/Faultbox/meshadj/pkg/formats"
)

// ErrNotWatertight is reported for open meshes when Options.Strict is set.
var ErrNotWatertight = errors.New("mesh is not watertight")

// Source supplies model files by name. *grf.Archive satisfies it.
type Source interface {
	Read(name string) ([]byte, error)
}

// Options controls how meshes are processed.
type Options struct {
	Strict      bool // open meshes count as failures
	CheckBounds bool // validate vertex ids against the node's vertex count
	Workers     int  // concurrent models, 0 = runtime.NumCPU()
}

// OptionsFromConfig extracts pipeline options from the tool configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Strict:      cfg.Adjacency.Strict,
		CheckBounds: cfg.Adjacency.CheckBounds,
		Workers:     cfg.Batch.Workers,
	}
}

// NodeResult is the outcome for one node mesh.
type NodeResult struct {
	Node   string           `yaml:"node"`
	Report adjacency.Report `yaml:"report"`
	Err    error            `yaml:"-"`
}

// ModelResult is the outcome for one model file.
type ModelResult struct {
	Name  string       `yaml:"name"`
	Nodes []NodeResult `yaml:"nodes"`
	Err   error        `yaml:"-"` // read or parse failure
}

// Failed reports whether the model or any of its nodes failed.
func (m ModelResult) Failed() bool {
	if m.Err != nil {
		return true
	}
	for _, n := range m.Nodes {
		if n.Err != nil {
			return true
		}
	}
	return false
}

// Node computes the adjacency buffer of one node at index width I.
func Node[I adjacency.Index](node *formats.RSMNode, opts Options, log *zap.Logger) ([]I, adjacency.Report, error) {
	indices, err := adjacency.ConvertIndices[I](node.TriangleIndices())
	if err != nil {
		return nil, adjacency.Report{}, err
	}

	vertexCount := 0
	if opts.CheckBounds {
		vertexCount = node.VertexCount()
	}

	out, report, err := adjacency.Compute(indices, len(node.Faces), vertexCount,
		adjacency.WithLogger(log.With(zap.String("node", node.Name))))
	if err != nil {
		return nil, report, err
	}
	if opts.Strict && !report.Watertight() {
		return out, report, fmt.Errorf("%w: %d boundary edges", ErrNotWatertight, report.BoundaryEdges)
	}
	return out, report, nil
}

// AnalyzeModel parses a model and builds adjacency for each node. Node failures are
// recorded per node; only a parse failure sets ModelResult.Err.
func AnalyzeModel(name string, data []byte, opts Options, log *zap.Logger) ModelResult {
	result := ModelResult{Name: name}
	log = log.With(zap.String("model", name))

	rsm, err := formats.ParseRSM(data)
	if err != nil {
		log.Debug("model rejected", zap.Error(err))
		result.Err = err
		return result
	}

	result.Nodes = make([]NodeResult, len(rsm.Nodes))
	for i := range rsm.Nodes {
		node := &rsm.Nodes[i]
		_, report, err := Node[uint32](node, opts, log)
		if err != nil && !errors.Is(err, ErrNotWatertight) {
			log.Warn("node rejected", zap.String("node", node.Name), zap.Error(err))
		}
		result.Nodes[i] = NodeResult{Node: node.Name, Report: report, Err: err}
	}
	return result
}

// Runner analyzes many models from one source concurrently.
type Runner struct {
	src  Source
	opts Options
	log  *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(src Source, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{src: src, opts: opts, log: log}
}

// Run analyzes the named models and returns one result per name, in input order.
// Per-model failures are recorded in the results; the returned error is non-nil
// only when ctx is done before all models were processed.
func (r *Runner) Run(ctx context.Context, names []string) ([]ModelResult, error) {
	results := make([]ModelResult, len(names))

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := r.src.Read(name)
			if err != nil {
				r.log.Warn("read failed", zap.String("model", name), zap.Error(err))
				results[i] = ModelResult{Name: name, Err: err}
				return nil
			}
			results[i] = AnalyzeModel(name, data, r.opts, r.log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	r.log.Info("scan complete", zap.Int("models", len(names)), zap.Int("workers", workers))
	return results, nil
}

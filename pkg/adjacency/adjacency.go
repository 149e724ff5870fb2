// Package adjacency builds triangle-with-adjacency index buffers from indexed triangle lists.
//
// For every input triangle (A, B, C) the output holds six indices: the triangle's own
// vertices in the order C, A, B, each followed by the vertex across the next edge
// (C->A, A->B, B->C). This is the layout consumed by adjacency-aware primitives such as
// GL_TRIANGLES_ADJACENCY.
//
// The build runs in two phases. BuildHalfEdges creates three half-edges per face,
// indexes them by directed edge and links twins; Emit then walks the linked structure.
// Duplicate directed edges abort the build with ErrMalformedMesh. Open boundaries are
// not an error: they are counted in the Report and filled with a fallback index.
package adjacency

import (
	"fmt"

	"go.uber.org/zap"
)

// Index is the element type of an index buffer.
type Index interface {
	~uint8 | ~uint16 | ~uint32
}

// Option configures a Compute call.
type Option func(*options)

type options struct {
	log      *zap.Logger
	advisory func(Report)
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithAdvisory registers a callback invoked when the mesh is not watertight.
func WithAdvisory(fn func(Report)) Option {
	return func(o *options) {
		o.advisory = fn
	}
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compute returns the adjacency index buffer (6*faceCount indices) for a triangle list
// of 3*faceCount indices. vertexCount bounds the indices; pass 0 to skip the check.
func Compute[I Index](indices []I, faceCount, vertexCount int, opts ...Option) ([]I, Report, error) {
	m, report, err := build(indices, faceCount, vertexCount, newOptions(opts))
	if err != nil {
		return nil, report, err
	}
	out := make([]I, 6*faceCount)
	Emit(m, out)
	return out, report, nil
}

// ComputeInto is like Compute but writes into a caller-owned buffer.
func ComputeInto[I Index](dst, indices []I, faceCount, vertexCount int, opts ...Option) (Report, error) {
	if faceCount >= 0 && len(dst) < 6*faceCount {
		return Report{}, fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(dst), 6*faceCount)
	}
	m, report, err := build(indices, faceCount, vertexCount, newOptions(opts))
	if err != nil {
		return report, err
	}
	Emit(m, dst)
	return report, nil
}

func build[I Index](indices []I, faceCount, vertexCount int, o options) (*HalfEdgeMesh, Report, error) {
	m, err := BuildHalfEdges(indices, faceCount, vertexCount)
	if err != nil {
		o.log.Debug("adjacency build failed", zap.Int("faces", faceCount), zap.Error(err))
		return nil, Report{}, err
	}

	report := m.Report()
	if report.DegenerateFaces > 0 {
		o.log.Debug("mesh has degenerate faces", zap.Int("degenerate_faces", report.DegenerateFaces))
	}
	if !report.Watertight() {
		o.log.Warn("mesh is not watertight",
			zap.Int("faces", report.Faces),
			zap.Int("boundary_edges", report.BoundaryEdges))
		if o.advisory != nil {
			o.advisory(report)
		}
	} else {
		o.log.Debug("adjacency built", zap.Int("faces", report.Faces))
	}
	return m, report, nil
}

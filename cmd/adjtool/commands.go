package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshadj/internal/assets"
	"github.com/Faultbox/meshadj/internal/config"
	"github.com/Faultbox/meshadj/internal/export"
	"github.com/Faultbox/meshadj/internal/logger"
	"github.com/Faultbox/meshadj/internal/pipeline"
	"github.com/Faultbox/meshadj/pkg/adjacency"
	"github.com/Faultbox/meshadj/pkg/formats"
	"github.com/Faultbox/meshadj/pkg/grf"
	"github.com/Faultbox/meshadj/pkg/shapes"
)

// nodeView is the printable form of a node result.
type nodeView struct {
	Node    string           `yaml:"node"`
	Report  adjacency.Report `yaml:"report"`
	Error   string           `yaml:"error,omitempty"`
	Records [][6]uint32      `yaml:"records,omitempty,flow"`
}

type modelView struct {
	Name  string     `yaml:"name"`
	Error string     `yaml:"error,omitempty"`
	Nodes []nodeView `yaml:"nodes,omitempty"`
}

func newFlagSet(name, defaultFormat string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	format := fs.String("format", defaultFormat, "Output format: text or yaml")
	return fs, format
}

func (a *app) parse(fs *flag.FlagSet, format *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *format != "text" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *format)
		return errUsage
	}
	return nil
}

func (a *app) writeYAML(v any) error {
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (a *app) options() pipeline.Options {
	return pipeline.OptionsFromConfig(a.cfg)
}

// computeAt builds one node at index width I, optionally exporting the buffer,
// and returns the records widened for printing.
func computeAt[I adjacency.Index](node *formats.RSMNode, opts pipeline.Options, log *zap.Logger, path string) ([]uint32, adjacency.Report, error) {
	out, report, err := pipeline.Node[I](node, opts, log)
	if err != nil {
		return nil, report, err
	}
	if path != "" {
		if err := export.WriteFile(path, out, report); err != nil {
			return nil, report, err
		}
	}
	wide, err := adjacency.ConvertIndices[uint32](out)
	return wide, report, err
}

func records(buf []uint32) [][6]uint32 {
	recs := make([][6]uint32, len(buf)/6)
	for i := range recs {
		copy(recs[i][:], buf[6*i:6*i+6])
	}
	return recs
}

func (a *app) printNode(v nodeView) {
	if v.Error != "" {
		fmt.Fprintf(a.out, "%-24s FAIL  %s\n", v.Node, v.Error)
		return
	}
	fmt.Fprintf(a.out, "%-24s OK    %s\n", v.Node, v.Report)
	for i, r := range v.Records {
		fmt.Fprintf(a.out, "  %4d: %v\n", i, r)
	}
}

func (a *app) cmdCompute(args []string) error {
	fs, format := newFlagSet("compute", "text")
	nodeName := fs.String("node", "", "Only process this node")
	output := fs.String("o", "", "Write the adjacency buffer to this file (single node)")
	showRecords := fs.Bool("records", false, "Print every 6-index record")
	if err := a.parse(fs, format, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: adjtool compute [-node name] [-o out.adj] [-records] <model.rsm>")
		return errUsage
	}

	rsm, err := formats.ParseRSMFile(fs.Arg(0))
	if err != nil {
		return err
	}
	a.log.Debug("model loaded",
		zap.String("path", fs.Arg(0)),
		zap.Int("nodes", len(rsm.Nodes)),
		zap.Int("faces", rsm.TotalFaceCount()))

	nodes := make([]*formats.RSMNode, 0, len(rsm.Nodes))
	if *nodeName != "" {
		node := rsm.NodeByName(*nodeName)
		if node == nil {
			return fmt.Errorf("node %q not found in %s", *nodeName, fs.Arg(0))
		}
		nodes = append(nodes, node)
	} else {
		for i := range rsm.Nodes {
			nodes = append(nodes, &rsm.Nodes[i])
		}
	}
	if *output != "" && len(nodes) != 1 {
		return fmt.Errorf("-o needs exactly one node, model has %d (use -node)", len(nodes))
	}

	opts := a.options()
	views := make([]nodeView, 0, len(nodes))
	failed := false
	for _, node := range nodes {
		var (
			buf    []uint32
			report adjacency.Report
		)
		switch a.cfg.Adjacency.IndexWidth {
		case 32:
			buf, report, err = computeAt[uint32](node, opts, a.log, *output)
		default:
			buf, report, err = computeAt[uint16](node, opts, a.log, *output)
		}

		v := nodeView{Node: node.Name, Report: report, Error: errString(err)}
		if err != nil {
			failed = true
		} else if *showRecords {
			v.Records = records(buf)
		}
		views = append(views, v)
	}

	if *format == "yaml" {
		if err := a.writeYAML(views); err != nil {
			return err
		}
	} else {
		for _, v := range views {
			a.printNode(v)
		}
		if *output != "" && !failed {
			fmt.Fprintf(a.out, "Wrote %d-bit buffer to %s\n", a.cfg.Adjacency.IndexWidth, *output)
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func modelToView(m pipeline.ModelResult) modelView {
	v := modelView{Name: m.Name, Error: errString(m.Err)}
	for _, n := range m.Nodes {
		v.Nodes = append(v.Nodes, nodeView{Node: n.Node, Report: n.Report, Error: errString(n.Err)})
	}
	return v
}

func (a *app) cmdCheck(args []string) error {
	fs, format := newFlagSet("check", "text")
	if err := a.parse(fs, format, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: adjtool check <model.rsm>")
		return errUsage
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result := pipeline.AnalyzeModel(filepath.Base(path), data, a.options(), a.log)
	view := modelToView(result)
	if *format == "yaml" {
		if err := a.writeYAML(view); err != nil {
			return err
		}
	} else {
		if result.Err != nil {
			fmt.Fprintf(a.out, "%s: %v\n", view.Name, result.Err)
		}
		for _, n := range view.Nodes {
			a.printNode(n)
		}
	}
	if result.Failed() {
		return errFailed
	}
	return nil
}

type scanView struct {
	Layers  []string         `yaml:"layers"`
	Summary pipeline.Summary `yaml:"summary"`
	Models  []modelView      `yaml:"models,omitempty"`
}

func (a *app) cmdScan(args []string) error {
	fs, format := newFlagSet("scan", "text")
	pattern := fs.String("pattern", a.cfg.Batch.Pattern, "Model name pattern (glob on base name, or substring)")
	verbose := fs.Bool("v", false, "List every model, not only failures")
	if err := a.parse(fs, format, args); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = a.cfg.Data.GRFPaths
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: adjtool scan [-pattern p] [-v] [file.grf|dir ...]")
		return errUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if a.cfg.Batch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Batch.Timeout)
		defer cancel()
	}

	all, err := a.scanLibrary(ctx, paths, *pattern)
	if err != nil {
		return err
	}

	view := scanView{Layers: paths, Summary: pipeline.Summarize(all)}
	for _, m := range all {
		if *verbose || m.Failed() {
			view.Models = append(view.Models, modelToView(m))
		}
	}

	if *format == "yaml" {
		if err := a.writeYAML(view); err != nil {
			return err
		}
	} else {
		a.printScan(view)
	}
	if view.Summary.FailedModels > 0 {
		return errFailed
	}
	return nil
}

func (a *app) scanLibrary(ctx context.Context, paths []string, pattern string) ([]pipeline.ModelResult, error) {
	lib, err := assets.Open(paths...)
	if err != nil {
		return nil, err
	}
	defer lib.Close()

	names := lib.Match(pattern)
	a.log.Info("scanning",
		zap.Strings("layers", lib.Layers()),
		zap.String("pattern", pattern),
		zap.Int("models", len(names)))

	runner := pipeline.NewRunner(lib, a.options(), logger.Named("pipeline"))
	results, err := runner.Run(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}
	return results, nil
}

func (a *app) printScan(v scanView) {
	for _, m := range v.Models {
		if m.Error != "" {
			fmt.Fprintf(a.out, "%s: %s\n", m.Name, m.Error)
			continue
		}
		fmt.Fprintf(a.out, "%s:\n", m.Name)
		for _, n := range m.Nodes {
			fmt.Fprint(a.out, "  ")
			a.printNode(n)
		}
	}
	s := v.Summary
	fmt.Fprintf(a.out, "\nLayers:     %s\n", strings.Join(v.Layers, ", "))
	fmt.Fprintf(a.out, "Models:     %d (%d failed)\n", s.Models, s.FailedModels)
	fmt.Fprintf(a.out, "Nodes:      %d\n", s.Nodes)
	fmt.Fprintf(a.out, "Watertight: %d\n", s.Watertight)
	fmt.Fprintf(a.out, "Open:       %d (%d boundary edges)\n", s.Open, s.BoundaryEdges)
	fmt.Fprintf(a.out, "Malformed:  %d\n", s.Malformed)
}

func (a *app) cmdDemo(args []string) error {
	fs, format := newFlagSet("demo", "text")
	rsmOut := fs.String("rsm", "", "Also write the shape as a one-node RSM model")
	grfOut := fs.String("grf", "", "Also pack every shape into a GRF archive under data/model/")
	showRecords := fs.Bool("records", false, "Print every 6-index record")
	if err := a.parse(fs, format, args); err != nil {
		return err
	}

	names := shapes.Names()
	if fs.NArg() > 0 {
		names = fs.Args()
	}
	if *rsmOut != "" && len(names) != 1 {
		return errors.New("-rsm needs exactly one shape")
	}

	views := make([]nodeView, 0, len(names))
	var packed []grf.File
	for _, name := range names {
		mesh, err := shapes.ByName(name)
		if err != nil {
			return fmt.Errorf("%w (available: %s)", err, strings.Join(shapes.Names(), ", "))
		}

		out, report, err := adjacency.Compute(mesh.Indices, mesh.FaceCount(), mesh.VertexCount,
			adjacency.WithLogger(a.log.With(zap.String("shape", mesh.Name))))
		if err != nil {
			return fmt.Errorf("%s: %w", mesh.Name, err)
		}
		v := nodeView{Node: mesh.Name, Report: report}
		if *showRecords {
			v.Records = records(out)
		}
		views = append(views, v)

		if *rsmOut == "" && *grfOut == "" {
			continue
		}
		data, err := encodeShape(mesh)
		if err != nil {
			return err
		}
		if *rsmOut != "" {
			if err := os.WriteFile(*rsmOut, data, 0644); err != nil {
				return err
			}
		}
		packed = append(packed, grf.File{Name: "data/model/" + mesh.Name + ".rsm", Data: data})
	}

	if *grfOut != "" {
		if err := grf.Create(*grfOut, packed); err != nil {
			return err
		}
	}

	if *format == "yaml" {
		return a.writeYAML(views)
	}
	for _, v := range views {
		a.printNode(v)
	}
	for _, p := range []string{*rsmOut, *grfOut} {
		if p != "" {
			fmt.Fprintf(a.out, "Wrote %s\n", p)
		}
	}
	return nil
}

func encodeShape(mesh shapes.Mesh) ([]byte, error) {
	indices, err := adjacency.ConvertIndices[uint16](mesh.Indices)
	if err != nil {
		return nil, err
	}
	rsm, err := formats.NewRSM(mesh.Name, indices, mesh.VertexCount)
	if err != nil {
		return nil, err
	}
	return formats.EncodeRSM(rsm)
}

func (a *app) cmdConfig(args []string) error {
	fs, format := newFlagSet("config", "yaml")
	save := fs.Bool("save", false, "Save the effective configuration to the user config directory")
	if err := a.parse(fs, format, args); err != nil {
		return err
	}

	if *save {
		if err := a.cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Saved %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}

	data, err := a.cfg.Marshal()
	if err != nil {
		return err
	}
	if *format == "yaml" {
		_, err = a.out.Write(data)
		return err
	}

	lines, err := flattenYAML(data)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// flattenYAML renders a YAML document as "section.key = value" lines.
func flattenYAML(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var lines []string
	var walk func(prefix string, n *yaml.Node)
	walk = func(prefix string, n *yaml.Node) {
		switch n.Kind {
		case yaml.DocumentNode:
			for _, c := range n.Content {
				walk(prefix, c)
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				key := n.Content[i].Value
				if prefix != "" {
					key = prefix + "." + key
				}
				walk(key, n.Content[i+1])
			}
		case yaml.SequenceNode:
			values := make([]string, 0, len(n.Content))
			for _, c := range n.Content {
				values = append(values, c.Value)
			}
			lines = append(lines, fmt.Sprintf("%s = [%s]", prefix, strings.Join(values, ", ")))
		default:
			lines = append(lines, fmt.Sprintf("%s = %s", prefix, n.Value))
		}
	}
	walk("", &doc)
	return lines, nil
}

type bufferView struct {
	Path       string      `yaml:"path"`
	Width      int         `yaml:"width"`
	Faces      int         `yaml:"faces"`
	Watertight bool        `yaml:"watertight"`
	MaxIndex   uint32      `yaml:"max_index"`
	MinWidth   int         `yaml:"min_width"`
	Records    [][6]uint32 `yaml:"records,omitempty,flow"`
}

// minWidth returns the narrowest index width that holds v.
func minWidth(v uint32) int {
	switch {
	case v <= 0xFF:
		return 8
	case v <= 0xFFFF:
		return 16
	default:
		return 32
	}
}

func (a *app) cmdInspect(args []string) error {
	fs, format := newFlagSet("inspect", "text")
	showRecords := fs.Bool("records", false, "Print every 6-index record")
	if err := a.parse(fs, format, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: adjtool inspect [-records] <file.adj>")
		return errUsage
	}

	buf, err := export.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	largest := adjacency.MaxIndex(buf.Indices)
	v := bufferView{
		Path:       fs.Arg(0),
		Width:      buf.Width,
		Faces:      buf.Faces,
		Watertight: buf.Watertight,
		MaxIndex:   largest,
		MinWidth:   minWidth(largest),
	}
	if *showRecords {
		v.Records = records(buf.Indices)
	}
	if v.MinWidth < v.Width {
		a.log.Debug("buffer is wider than needed",
			zap.Int("width", v.Width),
			zap.Int("min_width", v.MinWidth))
	}

	if *format == "yaml" {
		return a.writeYAML(v)
	}
	fmt.Fprintf(a.out, "File:       %s\n", v.Path)
	fmt.Fprintf(a.out, "Width:      %d-bit (max index %d fits %d-bit)\n", v.Width, v.MaxIndex, v.MinWidth)
	fmt.Fprintf(a.out, "Faces:      %d\n", v.Faces)
	fmt.Fprintf(a.out, "Watertight: %t\n", v.Watertight)
	for i, r := range v.Records {
		fmt.Fprintf(a.out, "  %4d: %v\n", i, r)
	}
	return nil
}

// adjtool builds triangle adjacency buffers for RSM models and GRF archives.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshadj/internal/config"
	"github.com/Faultbox/meshadj/internal/logger"
)

// errUsage reports bad arguments; the usage text has already been printed.
var errUsage = errors.New("usage error")

// errFailed reports that a command ran but found failing meshes.
var errFailed = errors.New("one or more meshes failed")

type app struct {
	cfg *config.Config
	out io.Writer
	log *zap.Logger
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	a := &app{cfg: cfg, out: os.Stdout, log: logger.Named("adjtool")}
	if err := a.run(config.Args()); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

func (a *app) run(args []string) error {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "compute":
		return a.cmdCompute(rest)
	case "check":
		return a.cmdCheck(rest)
	case "scan":
		return a.cmdScan(rest)
	case "demo":
		return a.cmdDemo(rest)
	case "inspect":
		return a.cmdInspect(rest)
	case "config":
		return a.cmdConfig(rest)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `adjtool - triangle adjacency builder

Usage:
  adjtool [global flags] <command> [options]

Global flags:
  -config <path>   Config file (default ./meshadj.yaml, then user config dir)
  -debug           Enable debug logging
  -log-file <path> Also write logs to a rotating file
  -width 16|32     Output index width
  -strict          Treat open meshes as failures
  -workers <n>     Concurrent models during scan

Commands:
  compute [-node name] [-o out.adj] [-records] <model.rsm>
                                 Build adjacency for one node or all nodes
  check <model.rsm>              Report watertightness of every node
  scan [-pattern p] [-v] [file.grf|dir ...]
                                 Analyze every matching model; later paths
                                 override earlier ones (default: data.grf_paths)
  demo [-rsm out.rsm] [-grf out.grf] [-records] [shape ...]
                                 Run the builder on built-in shapes
  inspect [-records] <file.adj>  Show an exported adjacency buffer
  config [-save]                 Print (or save) the effective configuration

Commands accept -format text|yaml (config defaults to yaml).

Examples:
  adjtool compute -node body -o body.adj data/model/house.rsm
  adjtool -strict check house.rsm
  adjtool -workers 8 scan data.grf "*.rsm"
  adjtool inspect body.adj
  adjtool demo cube`)
}

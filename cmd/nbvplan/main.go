// Command nbvplan is the integration harness for this module: it wires
// Config, Logging, the in-memory fakes, and a Session together, runs a
// bounded number of planning rounds, and prints a telemetry report. It is
// not itself part of the planner's library surface (§4.10 of SPEC_FULL.md).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.viam.com/utils"

	"go.viam.com/nbvplanner/config"
	"go.viam.com/nbvplanner/fakes"
	"go.viam.com/nbvplanner/logging"
	"go.viam.com/nbvplanner/occupancy"
	"go.viam.com/nbvplanner/planning"
	"go.viam.com/nbvplanner/report"
	"go.viam.com/nbvplanner/spatialmath"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var rounds int
	var iterationsPerRound int

	cmd := &cobra.Command{
		Use:   "nbvplan",
		Short: "Run a bounded next-best-view planning session against in-memory fakes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, rounds, iterationsPerRound)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to built-in defaults)")
	cmd.Flags().IntVar(&rounds, "rounds", 5, "number of planning rounds to run")
	cmd.Flags().IntVar(&iterationsPerRound, "iterations", 300, "RRT iterations per round")

	return cmd
}

func run(configPath string, rounds, iterationsPerRound int) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	appenders := []logging.Appender{logging.NewStdoutAppender()}
	if cfg.Log {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return err
		}
		fileAppender, closer := logging.NewFileAppender(filepath.Join(cfg.LogDir, "nbvplan.log"))
		defer closer.Close()
		appenders = append(appenders, fileAppender)
	}
	logger := logging.NewWithAppenders("nbvplan", appenders...)

	occMap := fakes.NewVoxelMap(0.5)
	mesh := fakes.NewMesh(4.0)
	collider := fakes.PeerCollisionChecker{}
	transformer := fakes.NewFrameTransformer(cfg.NavigationFrame)
	peerSegments := make(map[int][]occupancy.Segment)

	sess := planning.New(cfg, logger, occMap, mesh, collider, transformer, peerSegments)
	sess.SetStateFromPose(spatialmath.NewState(0, 0, 0, 0))

	// Run the round loop on its own goroutine, guarded against a silent
	// panic bringing down an embedding process, the way the teacher guards
	// its own background planning runner; the done channel hands back
	// results the way the teacher's solutionChan does.
	type result struct {
		summaries []report.RoundSummary
		err       error
	}
	done := make(chan result, 1)
	utils.PanicCapturingGo(func() {
		ctx := context.Background()
		var summaries []report.RoundSummary
		for i := 0; i < rounds; i++ {
			path, err := sess.RunRound(ctx, planning.Budget{MaxIterations: iterationsPerRound})
			if err != nil {
				done <- result{err: err}
				return
			}
			if len(path) > 0 {
				sess.SetStateFromPose(path[len(path)-1])
			}
			summaries = append(summaries, report.RoundSummary{
				Round:      i + 1,
				Iterations: iterationsPerRound,
				BestGain:   sess.BestGain(),
				Coverage:   sess.Coverage(),
				PathLength: len(path),
			})
		}
		done <- result{summaries: summaries}
	})

	res := <-done
	if res.err != nil {
		return res.err
	}

	report.Write(os.Stdout, cfg, res.summaries)
	return nil
}

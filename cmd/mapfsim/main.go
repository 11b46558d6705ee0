// Command mapfsim runs one coordination instance end to end: load a config
// file (plus the map/scenario/annotation files it names), build the
// selected problem driver and solver, tick until solved or timed out, and,
// when log or printlog is set, print a result log (spec §6).
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/mapio"
	"github.com/mapf-sim/engine/internal/problem"
	"github.com/mapf-sim/engine/internal/resultlog"
	"github.com/mapf-sim/engine/internal/solver"
)

func main() {
	configPath := pflag.StringP("problem", "p", "", "path to a config file (required)")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	log := buildLogger(*verbose)
	defer log.Sync()

	if err := run(*configPath, log); err != nil {
		log.Errorw("run failed", "error", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func buildLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func run(configPath string, log *zap.SugaredLogger) error {
	if configPath == "" {
		return fmt.Errorf("mapfsim: -p/--problem config path is required")
	}
	cfg, err := mapio.LoadConfig(configPath)
	if err != nil {
		return err
	}

	base := filepath.Dir(configPath)
	mapPath := cfg.Field
	if !filepath.IsAbs(mapPath) {
		mapPath = filepath.Join(base, mapPath)
	}
	g, err := mapio.LoadGridMap(mapPath)
	if err != nil {
		return err
	}

	width := gridWidth(g)
	if pd := mapPath + ".pd"; fileExists(pd) {
		if err := mapio.LoadPDAnnotations(pd, g, width); err != nil {
			return err
		}
	}
	if st := mapPath + ".st"; fileExists(st) {
		if err := mapio.LoadStationAnnotations(st, g, width); err != nil {
			return err
		}
	}
	var highway *mapio.Highway
	if hw := mapPath + ".highway"; fileExists(hw) {
		highway, err = mapio.LoadHighwayAnnotations(hw, g, width, 5)
		if err != nil {
			return err
		}
	}
	if cfg.WarshallFloyd {
		g.WarshallFloyd()
	}

	runID := uuid.New().String()
	log = log.With("run_id", runID, "solver", string(cfg.SolverType), "problem", string(cfg.ProblemType))

	agents, starts, goals, err := buildAgentsAndGoals(g, cfg)
	if err != nil {
		return err
	}

	sv := buildSolver(cfg, g, highway)
	if sv == nil && cfg.ProblemType != mapio.ProblemMAPD {
		return fmt.Errorf("mapfsim: solver %q is only valid with PROBLEM_TYPE=MAPD", cfg.SolverType)
	}

	p, err := buildProblem(cfg, g, agents, starts, goals, sv, log)
	if err != nil {
		return err
	}

	started := time.Now()
	for !p.IsSolved() && !p.TimedOut() {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	elapsed := time.Since(started)

	solverName := string(cfg.SolverType)
	if sv != nil {
		solverName = sv.Name()
	}

	if cfg.PrintLog || cfg.Log {
		report := resultlog.Report{
			RunID:      runID,
			Config:     cfg,
			Graph:      g,
			Agents:     agents,
			SolverName: solverName,
			Timestep:   p.Timestep(),
			Solved:     p.IsSolved(),
			Elapsed:    elapsed,
		}
		if err := resultlog.Write(os.Stdout, report); err != nil {
			return err
		}
	}
	if cfg.PrintTime {
		fmt.Fprintf(os.Stdout, "elapsed: %s\n", elapsed)
	}
	if !p.IsSolved() {
		return fmt.Errorf("mapfsim: timed out at timestep %d without solving", p.Timestep())
	}
	return nil
}

func buildSolver(cfg mapio.Config, g *core.Graph, highway *mapio.Highway) solver.Solver {
	switch cfg.SolverType {
	case mapio.SolverECBS:
		return solver.NewECBS(nil, cfg.Suboptimal)
	case mapio.SolverIECBS:
		var hw solver.HighwayWeight
		if highway != nil {
			hw = highway
		}
		return solver.NewIECBS(nil, cfg.Suboptimal, hw)
	case mapio.SolverWHCA:
		return solver.NewWHCA(nil, cfg.Window)
	case mapio.SolverHCA:
		return solver.NewHCA(nil)
	case mapio.SolverPPS:
		return solver.NewPPS(nil, cfg.Seed)
	case mapio.SolverPIBT:
		return solver.NewPIBT(nil, cfg.Seed)
	case mapio.SolverWinPIBT:
		return solver.NewWinPIBT(nil, cfg.Seed)
	case mapio.SolverTP:
		return nil // TP is wired directly into the MAPD driver, not as a generic Solver
	default:
		c := solver.NewCBS(nil)
		c.UseID = cfg.ID
		return c
	}
}

func buildAgentsAndGoals(g *core.Graph, cfg mapio.Config) ([]*core.Agent, []core.VertexID, []core.VertexID, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	stationOnly := cfg.ProblemType == mapio.ProblemMAPFStation
	n := cfg.AgentNum
	var starts, goals []core.VertexID

	if cfg.Scenario && cfg.ScenarioFile != "" {
		entries, err := mapio.LoadScenario(cfg.ScenarioFile)
		if err != nil {
			return nil, nil, nil, err
		}
		n = len(entries)
		starts = make([]core.VertexID, n)
		goals = make([]core.VertexID, n)
		width := gridWidth(g)
		for i, e := range entries {
			s, ok := mapio.VertexAt(g, width, e.Start)
			if !ok {
				return nil, nil, nil, fmt.Errorf("mapfsim: scenario entry %d start is not a passable node", i)
			}
			gg, ok := mapio.VertexAt(g, width, e.Goal)
			if !ok {
				return nil, nil, nil, fmt.Errorf("mapfsim: scenario entry %d goal is not a passable node", i)
			}
			starts[i] = s
			goals[i] = gg
		}
	} else {
		nodes := g.Nodes()
		if n <= 0 || n > len(nodes) {
			return nil, nil, nil, fmt.Errorf("mapfsim: agentnum %d invalid for a %d-node graph", n, len(nodes))
		}
		perm := rng.Perm(len(nodes))
		starts = make([]core.VertexID, n)
		goals = make([]core.VertexID, n)
		for i := 0; i < n; i++ {
			starts[i] = nodes[perm[i]]
			goals[i] = g.RandomNewGoal(starts[i], stationOnly, rng)
		}
	}

	agents := make([]*core.Agent, n)
	for i := 0; i < n; i++ {
		agents[i] = core.NewAgent(core.AgentID(i), g, starts[i])
	}
	return agents, starts, goals, nil
}

func buildProblem(cfg mapio.Config, g *core.Graph, agents []*core.Agent, starts, goals []core.VertexID, sv solver.Solver, log *zap.SugaredLogger) (problem.Problem, error) {
	switch cfg.ProblemType {
	case mapio.ProblemMAPD:
		pickups, deliveries := g.Pickups(), g.Deliveries()
		if cfg.SolverType == mapio.SolverTP {
			tp := solver.NewTP(log, g)
			return problem.NewMAPDTokenPassing(g, agents, tp, pickups, deliveries, cfg.TaskNum, cfg.TaskFrequency, cfg.TimestepLimit, cfg.Seed, log), nil
		}
		return problem.NewMAPD(g, agents, sv, pickups, deliveries, cfg.TaskNum, cfg.TaskFrequency, cfg.TimestepLimit, cfg.Seed, log), nil
	case mapio.ProblemMAPFStation:
		return problem.NewMAPF(g, agents, goals, sv, cfg.TimestepLimit, cfg.Seed, log), nil
	case mapio.ProblemIMAPF, mapio.ProblemIMAPFFair, mapio.ProblemIMAPFStation:
		stationOnly := cfg.ProblemType == mapio.ProblemIMAPFStation
		fair := cfg.ProblemType == mapio.ProblemIMAPFFair
		fairMin := 1
		return problem.NewIMAPF(g, agents, sv, stationOnly, fair, fairMin, cfg.TaskNum, cfg.TimestepLimit, cfg.Seed, log), nil
	default:
		return problem.NewMAPF(g, agents, goals, sv, cfg.TimestepLimit, cfg.Seed, log), nil
	}
}

func gridWidth(g *core.Graph) int {
	width := 0
	for _, id := range g.Nodes() {
		if p := g.Node(id).Pos.X; p+1 > width {
			width = p + 1
		}
	}
	return width
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

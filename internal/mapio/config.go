// Package mapio loads the external file formats named in spec §6: grid map
// files (plus .pd/.st/.highway annotation overlays), scenario files, and
// the flat key=value config file. None of these formats are specified in
// detail by spec.md itself (§1 "Out of scope"); this package follows the
// original C++ reference loader (original_source/src/util/param.h,
// graph/pd.cpp) for exact semantics.
package mapio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProblemType selects one of the six problem-driver variants spec §6 names.
type ProblemType string

const (
	ProblemMAPF          ProblemType = "MAPF"
	ProblemMAPD          ProblemType = "MAPD"
	ProblemIMAPF         ProblemType = "IMAPF"
	ProblemIMAPFFair     ProblemType = "IMAPF_FAIR"
	ProblemMAPFStation   ProblemType = "MAPF_STATION"
	ProblemIMAPFStation  ProblemType = "IMAPF_STATION"
)

// SolverType selects one of the nine coordination algorithms spec §6 names.
type SolverType string

const (
	SolverCBS     SolverType = "CBS"
	SolverECBS    SolverType = "ECBS"
	SolverIECBS   SolverType = "iECBS"
	SolverWHCA    SolverType = "WHCA"
	SolverHCA     SolverType = "HCA"
	SolverPPS     SolverType = "PPS"
	SolverTP      SolverType = "TP"
	SolverPIBT    SolverType = "PIBT"
	SolverWinPIBT SolverType = "winPIBT"
)

// Config holds every recognized key from spec §6's config table.
type Config struct {
	ProblemType ProblemType
	SolverType  SolverType

	Field         string
	AgentNum      int
	TaskNum       int
	TaskFrequency float64

	TimestepLimit int
	Seed          int64
	Scenario      bool
	ScenarioFile  string

	WarshallFloyd bool
	ID            bool // CBS independent-detection wrapper
	Window        int
	Suboptimal    float64 // ECBS/iECBS bound w
	SoftMode      bool    // winPIBT soft reordering

	Log       bool
	PrintLog  bool
	PrintTime bool
	ShowIcon  bool
	Icon      string
}

// DefaultConfig returns the reference implementation's implicit defaults
// for knobs that are optional in a config file.
func DefaultConfig() Config {
	return Config{
		TimestepLimit: 1000,
		Window:        10000, // effectively HCA's window=∞ special case
		Suboptimal:    1.0,
	}
}

// LoadConfig reads a flat key=value config file. Unknown keys are ignored
// (forward-compatible with new knobs); malformed values for a *recognized*
// key are a fatal config error per spec §7.1.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("mapio: open config %q: %w", path, err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if err := cfg.apply(key, value); err != nil {
			return Config{}, fmt.Errorf("mapio: config %q line %d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("mapio: read config %q: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) apply(key, value string) error {
	switch key {
	case "PROBLEM_TYPE":
		pt := ProblemType(value)
		switch pt {
		case ProblemMAPF, ProblemMAPD, ProblemIMAPF, ProblemIMAPFFair,
			ProblemMAPFStation, ProblemIMAPFStation:
			cfg.ProblemType = pt
		default:
			return fmt.Errorf("unknown PROBLEM_TYPE %q", value)
		}
	case "SOLVER_TYPE":
		st := SolverType(value)
		switch st {
		case SolverCBS, SolverECBS, SolverIECBS, SolverWHCA, SolverHCA,
			SolverPPS, SolverTP, SolverPIBT, SolverWinPIBT:
			cfg.SolverType = st
		default:
			return fmt.Errorf("unknown SOLVER_TYPE %q", value)
		}
	case "field":
		cfg.Field = value
	case "agentnum":
		return setInt(&cfg.AgentNum, value, key)
	case "tasknum":
		return setInt(&cfg.TaskNum, value, key)
	case "taskfrequency":
		return setFloat(&cfg.TaskFrequency, value, key)
	case "timesteplimit":
		return setInt(&cfg.TimestepLimit, value, key)
	case "seed":
		var s int
		if err := setInt(&s, value, key); err != nil {
			return err
		}
		cfg.Seed = int64(s)
	case "scenario":
		return setBool(&cfg.Scenario, value, key)
	case "scenariofile":
		cfg.ScenarioFile = value
	case "WarshallFloyd":
		return setBool(&cfg.WarshallFloyd, value, key)
	case "ID":
		return setBool(&cfg.ID, value, key)
	case "window":
		return setInt(&cfg.Window, value, key)
	case "suboptimal":
		return setFloat(&cfg.Suboptimal, value, key)
	case "softmode":
		return setBool(&cfg.SoftMode, value, key)
	case "log":
		return setBool(&cfg.Log, value, key)
	case "printlog":
		return setBool(&cfg.PrintLog, value, key)
	case "printtime":
		return setBool(&cfg.PrintTime, value, key)
	case "showicon":
		return setBool(&cfg.ShowIcon, value, key)
	case "icon":
		cfg.Icon = value
	}
	return nil
}

func setInt(dst *int, value, key string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: expected integer, got %q", key, value)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, value, key string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: expected number, got %q", key, value)
	}
	*dst = v
	return nil
}

func setBool(dst *bool, value, key string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: expected 0/1, got %q", key, value)
	}
	*dst = v != 0
	return nil
}

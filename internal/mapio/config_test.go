package mapio

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadConfigParsesKnownKeys(t *testing.T) {
	path := writeTempFile(t, "test.config", `
# comment lines and blanks are ignored

PROBLEM_TYPE=MAPD
SOLVER_TYPE=TP
field=test.map
agentnum=10
tasknum=5
taskfrequency=0.5
seed=42
WarshallFloyd=1
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ProblemType != ProblemMAPD {
		t.Fatalf("expected ProblemMAPD, got %v", cfg.ProblemType)
	}
	if cfg.SolverType != SolverTP {
		t.Fatalf("expected SolverTP, got %v", cfg.SolverType)
	}
	if cfg.AgentNum != 10 || cfg.TaskNum != 5 {
		t.Fatalf("unexpected agentnum/tasknum: %+v", cfg)
	}
	if cfg.TaskFrequency != 0.5 {
		t.Fatalf("expected taskfrequency 0.5, got %v", cfg.TaskFrequency)
	}
	if cfg.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", cfg.Seed)
	}
	if !cfg.WarshallFloyd {
		t.Fatalf("expected WarshallFloyd true")
	}
}

func TestLoadConfigRejectsUnknownProblemType(t *testing.T) {
	path := writeTempFile(t, "bad.config", "PROBLEM_TYPE=NOT_A_TYPE\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected an error for an unknown PROBLEM_TYPE")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TimestepLimit != 1000 {
		t.Fatalf("expected default timestep limit 1000, got %d", cfg.TimestepLimit)
	}
	if cfg.Suboptimal != 1.0 {
		t.Fatalf("expected default suboptimal bound 1.0, got %v", cfg.Suboptimal)
	}
}

package mapio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mapf-sim/engine/internal/core"
)

// ScenarioEntry is one agent's start/goal pair as read from a scenario file.
type ScenarioEntry struct {
	Start core.Pos
	Goal  core.Pos
}

// LoadScenario parses a tab-separated scenario file: one agent per line,
// fields `idx, map, width, height, sx, sy, gx, gy, optimal-length`. Only
// sx/sy/gx/gy are consumed; the rest exist for cross-tool compatibility
// with the reference benchmark format and are ignored here.
func LoadScenario(path string) ([]ScenarioEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapio: open scenario %q: %w", path, err)
	}
	defer f.Close()

	var entries []ScenarioEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "version") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			return nil, fmt.Errorf("mapio: scenario %q line %d: expected 8 tab-separated fields, got %d", path, lineNo, len(fields))
		}
		sx, err1 := strconv.Atoi(fields[4])
		sy, err2 := strconv.Atoi(fields[5])
		gx, err3 := strconv.Atoi(fields[6])
		gy, err4 := strconv.Atoi(fields[7])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("mapio: scenario %q line %d: non-integer coordinate", path, lineNo)
		}
		entries = append(entries, ScenarioEntry{
			Start: core.Pos{X: sx, Y: sy},
			Goal:  core.Pos{X: gx, Y: gy},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mapio: read scenario %q: %w", path, err)
	}
	return entries, nil
}

// VertexAt finds the node at the given grid position, assuming row-major
// IDs as produced by LoadGridMap.
func VertexAt(g *core.Graph, width int, p core.Pos) (core.VertexID, bool) {
	id := core.VertexID(p.Y*width + p.X)
	if g.Node(id) == nil {
		return 0, false
	}
	return id, true
}

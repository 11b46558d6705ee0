package mapio

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mapf-sim/engine/internal/core"
)

var (
	reHeight = regexp.MustCompile(`^height\s+(\d+)$`)
	reWidth  = regexp.MustCompile(`^width\s+(\d+)$`)
)

// LoadGridMap parses the ASCII grid format from spec §6: header lines
// "height H" / "width W", then "map" followed by H lines of W characters.
// "." is passable, "@"/"T" is an obstacle. Returns a 4-connected undirected
// Graph whose node IDs are row-major (y*W+x) and whose Pos fields are the
// grid coordinates, used for the Manhattan path heuristic.
func LoadGridMap(path string) (*core.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapio: open map %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var height, width int
	sawMap := false
	var rows []string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if sawMap {
			rows = append(rows, line)
			if len(rows) == height {
				break
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if m := reHeight.FindStringSubmatch(trimmed); m != nil {
			height, _ = strconv.Atoi(m[1])
			continue
		}
		if m := reWidth.FindStringSubmatch(trimmed); m != nil {
			width, _ = strconv.Atoi(m[1])
			continue
		}
		if trimmed == "map" {
			sawMap = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mapio: read map %q: %w", path, err)
	}
	if height == 0 || width == 0 {
		return nil, fmt.Errorf("mapio: map %q missing height/width header", path)
	}
	if len(rows) != height {
		return nil, fmt.Errorf("mapio: map %q declares height %d but has %d map rows", path, height, len(rows))
	}

	g := core.NewGraph(false)
	passable := make([][]bool, height)
	for y, row := range rows {
		passable[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if x >= len(row) {
				return nil, fmt.Errorf("mapio: map %q row %d shorter than width %d", path, y, width)
			}
			ch := row[x]
			ok := ch == '.'
			passable[y][x] = ok
			if ok {
				id := core.VertexID(y*width + x)
				g.AddNode(&core.Node{ID: id, Pos: core.Pos{X: x, Y: y}})
			}
		}
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !passable[y][x] {
				continue
			}
			id := core.VertexID(y*width + x)
			if x+1 < width && passable[y][x+1] {
				g.AddEdge(id, core.VertexID(y*width+x+1))
			}
			if y+1 < height && passable[y+1][x] {
				g.AddEdge(id, core.VertexID((y+1)*width+x))
			}
		}
	}
	return g, nil
}

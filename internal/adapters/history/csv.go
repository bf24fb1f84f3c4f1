// Package history loads draw histories from CSV files shaped like the
// published archives: a header row of fecha,n1..nK[,reintegro] followed
// by one draw per row, most recent first. Malformed rows are skipped, not
// fatal — archives routinely carry torn lines at the tail.
package history

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

const dateLayout = "2006-01-02"

// Load reads a draw history for a game from path. The returned history
// is most recent first regardless of the file's row order.
func Load(path string, game draw.Game) (draw.History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	return Read(f, game)
}

// Read parses a history CSV from r.
func Read(r io.Reader, game draw.Game) (draw.History, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, 1<<16))
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header, game)
	if err != nil {
		return nil, err
	}

	var hist draw.History
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // torn row
		}
		d, ok := parseRow(rec, cols, game)
		if !ok {
			continue
		}
		hist = append(hist, d)
	}
	if len(hist) == 0 {
		return nil, fmt.Errorf("no valid draws in history")
	}

	// Archives vary: some list oldest first. Normalize to newest first.
	if hist[0].Date.Before(hist[len(hist)-1].Date) {
		for i, j := 0, len(hist)-1; i < j; i, j = i+1, j-1 {
			hist[i], hist[j] = hist[j], hist[i]
		}
	}
	return hist, nil
}

type columns struct {
	date    int
	numbers []int
	supp    int // -1 when absent
}

func mapColumns(header []string, game draw.Game) (columns, error) {
	cols := columns{date: -1, supp: -1}
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range []string{"fecha", "date"} {
		if i, ok := byName[name]; ok {
			cols.date = i
			break
		}
	}
	if cols.date == -1 {
		return cols, fmt.Errorf("history header missing date column: %v", header)
	}

	for n := 1; n <= game.PerDraw; n++ {
		i, ok := byName[fmt.Sprintf("n%d", n)]
		if !ok {
			return cols, fmt.Errorf("history header missing column n%d", n)
		}
		cols.numbers = append(cols.numbers, i)
	}

	for _, name := range []string{"reintegro", "supplementary", "comp"} {
		if i, ok := byName[name]; ok {
			cols.supp = i
			break
		}
	}
	return cols, nil
}

func parseRow(rec []string, cols columns, game draw.Game) (draw.Draw, bool) {
	if cols.date >= len(rec) {
		return draw.Draw{}, false
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(rec[cols.date]))
	if err != nil {
		return draw.Draw{}, false
	}

	nums := make([]int, 0, len(cols.numbers))
	for _, i := range cols.numbers {
		if i >= len(rec) {
			return draw.Draw{}, false
		}
		v, err := strconv.Atoi(strings.TrimSpace(rec[i]))
		if err != nil || v < 1 || v > game.MaxNumber {
			return draw.Draw{}, false
		}
		nums = append(nums, v)
	}

	var supp []int
	if cols.supp >= 0 && cols.supp < len(rec) && game.HasSupplementary() {
		if v, err := strconv.Atoi(strings.TrimSpace(rec[cols.supp])); err == nil && v >= 0 && v <= game.SuppMax {
			supp = []int{v}
		}
	}

	d := draw.NewDraw(date, nums, supp)
	if !game.ValidCombination(d.Numbers) {
		return draw.Draw{}, false
	}
	return d, true
}

// Package layout is the canvas placement engine: it projects a flat block
// list into rows of up to three columns and decides where a dragged block
// lands. Everything here is pure — no store access, no events — so it is
// safe to call on every render.
package layout

import (
	"sort"

	"dash/internal/domain"
)

// Row is a derived grouping of blocks sharing the same integer floor of
// position. Blocks are ordered by effective column ascending.
type Row struct {
	Index      int            `json:"index"`
	Blocks     []domain.Block `json:"blocks"`
	MaxColumns int            `json:"maxColumns"` // (max column present) + 1, clamped to [1,3]
}

// Rows groups one canvas scope's blocks into ordered rows. The input may be
// in any order; sorting is stable so equal positions keep their relative
// order, and within a row equal columns do too.
func Rows(blocks []domain.Block) []Row {
	sorted := make([]domain.Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	byRow := make(map[int][]domain.Block)
	var indexes []int
	for _, b := range sorted {
		r := b.Row()
		if _, ok := byRow[r]; !ok {
			indexes = append(indexes, r)
		}
		byRow[r] = insertByColumn(byRow[r], b)
	}
	sort.Ints(indexes)

	rows := make([]Row, 0, len(indexes))
	for _, idx := range indexes {
		rows = append(rows, Row{
			Index:      idx,
			Blocks:     byRow[idx],
			MaxColumns: rowMaxColumns(byRow[idx]),
		})
	}
	return rows
}

// insertByColumn inserts b into row keeping ascending effective column.
// A block with the same column as an existing one goes after it.
func insertByColumn(row []domain.Block, b domain.Block) []domain.Block {
	at := len(row)
	for i, existing := range row {
		if b.EffectiveColumn() < existing.EffectiveColumn() {
			at = i
			break
		}
	}
	row = append(row, domain.Block{})
	copy(row[at+1:], row[at:])
	row[at] = b
	return row
}

func rowMaxColumns(row []domain.Block) int {
	max := 0
	for _, b := range row {
		if c := b.EffectiveColumn(); c > max {
			max = c
		}
	}
	n := max + 1
	if n < 1 {
		n = 1
	}
	if n > domain.MaxColumns {
		n = domain.MaxColumns
	}
	return n
}

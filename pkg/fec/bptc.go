package fec

// BPTC(196,96) — the Block Product Turbo Code that carries a full DMR
// Link Control (header, PI header, or terminator) across 196 coded
// bits. Structure, per spec.md §4.2: a 13-row by 15-column matrix plus
// one reserved lead bit (13*15+1 = 196). Each of the 13 rows is a
// Hamming(15,11,3) codeword; each of the 15 columns is a
// Hamming(13,9,3) codeword. The intersection of the 9 "data rows"
// (the Hamming(13,9,3) data positions) and 11 "data columns" (the
// Hamming(15,11,3) data positions) yields 99 payload cells; the last 3
// carry fixed reserved bits, leaving 96 info bits. Coded bits are
// scattered onto the wire with the interleave a(i) = (i*181) mod 196.
const (
	bptcInfoBits   = 96
	bptcTotalBits  = 196
	bptcRows       = 13
	bptcCols       = 15
	bptcReserved   = 3
)

func bptcInterleave(i int) int { return (i * 181) % bptcTotalBits }

var bptcDeinterleave = buildBPTCDeinterleave()

func buildBPTCDeinterleave() [bptcTotalBits]int {
	var inv [bptcTotalBits]int
	for i := 0; i < bptcTotalBits; i++ {
		inv[bptcInterleave(i)] = i
	}
	return inv
}

// dataPositions0 returns the 0-indexed non-parity positions within a
// row/column of the given 1-indexed length n (shared with the Hamming
// encoder's own bit placement).
func dataPositions0(n int) []int {
	var out []int
	for pos := 1; pos <= n; pos++ {
		if !isPowerOfTwo(pos) {
			out = append(out, pos-1)
		}
	}
	return out
}

// EncodeFullLC encodes a 96-bit (12-byte, but only 9 bytes / 72 bits
// are meaningful LC content — the remaining 24 bits carry the LC's
// CRC-24, which pkg/lc's EncodeFullLC fills in) info field into a 196-bit BPTC
// codeword, returned one bit per byte.
func EncodeFullLC(info []byte) []byte {
	if len(info) != bptcInfoBits {
		panic("fec: EncodeFullLC requires exactly 96 info bits")
	}

	grid := make([][]byte, bptcRows)
	for r := range grid {
		grid[r] = make([]byte, bptcCols)
	}

	dataRows := dataPositions0(bptcRows)  // 9 rows carrying real column data
	dataCols := dataPositions0(bptcCols)  // 11 columns carrying real row data

	// Fill the 99 payload cells: 96 info bits, then 3 reserved zero bits.
	idx := 0
	for _, r := range dataRows {
		for _, c := range dataCols {
			if idx < bptcInfoBits {
				grid[r][c] = info[idx]
			} else {
				grid[r][c] = 0
			}
			idx++
		}
	}

	// Column (Hamming 13,9,3) parity: fill the 4 parity rows for every
	// column, at the data-row positions just populated.
	for c := 0; c < bptcCols; c++ {
		col := make([]byte, len(dataRows))
		for i, r := range dataRows {
			col[i] = grid[r][c]
		}
		coded := EncodeHamming139(col)
		for r := 0; r < bptcRows; r++ {
			grid[r][c] = coded[r]
		}
	}

	// Row (Hamming 15,11,3) parity: every row, including the 4 parity
	// rows, gets its own row-parity bits.
	for r := 0; r < bptcRows; r++ {
		row := make([]byte, len(dataCols))
		for i, c := range dataCols {
			row[i] = grid[r][c]
		}
		coded := EncodeHamming1511(row)
		for c := 0; c < bptcCols; c++ {
			grid[r][c] = coded[c]
		}
	}

	matrix := make([]byte, bptcTotalBits)
	matrix[0] = 0 // reserved lead bit
	for r := 0; r < bptcRows; r++ {
		for c := 0; c < bptcCols; c++ {
			matrix[1+r*bptcCols+c] = grid[r][c]
		}
	}

	out := make([]byte, bptcTotalBits)
	for i := 0; i < bptcTotalBits; i++ {
		out[bptcInterleave(i)] = matrix[i]
	}
	return out
}

// DecodeFullLC reverses EncodeFullLC, correcting single-bit errors in
// every row and column, and returns the original 96 info bits.
func DecodeFullLC(coded []byte) []byte {
	if len(coded) != bptcTotalBits {
		panic("fec: DecodeFullLC requires exactly 196 coded bits")
	}

	matrix := make([]byte, bptcTotalBits)
	for i := 0; i < bptcTotalBits; i++ {
		matrix[i] = coded[bptcInterleave(i)]
	}

	grid := make([][]byte, bptcRows)
	for r := range grid {
		grid[r] = make([]byte, bptcCols)
		for c := 0; c < bptcCols; c++ {
			grid[r][c] = matrix[1+r*bptcCols+c]
		}
	}

	dataRows := dataPositions0(bptcRows)
	dataCols := dataPositions0(bptcCols)

	for r := 0; r < bptcRows; r++ {
		row := make([]byte, bptcCols)
		copy(row, grid[r])
		if data, _, ok := decodeHamming(bptcCols, row); ok {
			for i, c := range dataCols {
				grid[r][c] = data[i]
			}
		}
	}

	for c := 0; c < bptcCols; c++ {
		col := make([]byte, bptcRows)
		for r := 0; r < bptcRows; r++ {
			col[r] = grid[r][c]
		}
		if data, _, ok := decodeHamming(bptcRows, col); ok {
			for i, r := range dataRows {
				grid[r][c] = data[i]
			}
		}
	}

	info := make([]byte, 0, bptcInfoBits)
	for _, r := range dataRows {
		for _, c := range dataCols {
			if len(info) < bptcInfoBits {
				info = append(info, grid[r][c])
			}
		}
	}
	return info
}

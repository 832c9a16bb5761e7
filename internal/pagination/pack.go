package pagination

import "math"

// PageRange is the half-open slice [Start, End) of the body assigned to one
// page, in points from the top of the body.
type PageRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Height returns the height of the slice
func (r PageRange) Height() float64 {
	return r.End - r.Start
}

// Pack partitions [0, totalHeight) into page ranges. Each page takes the
// largest candidate that still fits in contentArea; when none fits, the page
// is cut at the content budget instead, which may split an oversized unit.
// candidates must be sorted ascending. Pack is total: any input yields at
// least one range.
func Pack(totalHeight, contentArea float64, candidates []float64) []PageRange {
	if math.IsNaN(totalHeight) || math.IsInf(totalHeight, 0) || totalHeight <= 0 {
		return []PageRange{{Start: 0, End: 1}}
	}
	if !(contentArea > 0) {
		contentArea = 1
	}

	ranges := make([]PageRange, 0, int(math.Min(64, math.Ceil(totalHeight/contentArea))))
	cursor := 0.0
	next := 0 // first candidate index not yet behind the cursor
	for cursor < totalHeight {
		limit := cursor + contentArea

		for next < len(candidates) && candidates[next] <= cursor {
			next++
		}
		chosen := math.NaN()
		for i := next; i < len(candidates) && candidates[i] <= limit; i++ {
			chosen = candidates[i]
		}
		if math.IsNaN(chosen) {
			chosen = math.Min(limit, totalHeight)
		}

		end := math.Min(math.Max(chosen, cursor+1), totalHeight)
		if end <= cursor {
			// cursor+1 is not representable at this magnitude
			end = totalHeight
		}
		ranges = append(ranges, PageRange{Start: cursor, End: end})
		cursor = end
	}
	return ranges
}

// forced reports which ranges end on a cut that is not a candidate, that is
// where the packer had to split content to make progress.
func forced(ranges []PageRange, candidates []float64) []int {
	set := make(map[float64]struct{}, len(candidates))
	for _, c := range candidates {
		set[c] = struct{}{}
	}
	var out []int
	for i, r := range ranges {
		if _, ok := set[r.End]; !ok {
			out = append(out, i)
		}
	}
	return out
}

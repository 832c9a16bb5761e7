package pagination

import (
	"math"
	"sort"

	"github.com/gompdf/folio/internal/geometry"
)

// DefaultBreakEpsilon keeps the border and padding of a unit above the cut.
const DefaultBreakEpsilon = 6.0

// CollectBreaks returns the sorted, deduplicated offsets, relative to the top
// of body, below which the document may be cut. The result always holds 0 and
// the body height.
func CollectBreaks(body geometry.Node, epsilon float64) []float64 {
	if body == nil {
		return []float64{0}
	}
	bounds := body.Bounds()
	total := bounds.Height
	if total <= 0 {
		return []float64{0}
	}

	seen := map[float64]struct{}{0: {}, total: {}}
	for _, child := range body.ChildNodes() {
		geometry.Walk(child, func(n geometry.Node) {
			if !n.BreakUnit() {
				return
			}
			c := math.Round(n.Bounds().Bottom()-bounds.Y) + epsilon
			if c <= 0 || c >= total {
				return
			}
			seen[c] = struct{}{}
		})
	}

	out := make([]float64, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Float64s(out)
	return out
}

package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB triple
type Color [3]int

var namedColors = map[string]Color{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"navy":   {0, 0, 128},
	"maroon": {128, 0, 0},
	"orange": {255, 165, 0},
}

// ParseColor parses #rgb, #rrggbb, rgb(r,g,b) and a few named colors.
// ok is false for anything else, including "transparent".
func ParseColor(value string) (Color, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	var r, g, b int
	if _, err := fmt.Sscanf(strings.ReplaceAll(v, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return Color{r, g, b}, true
	}
	return Color{}, false
}

func parseHexColor(s string) (Color, bool) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, true
}

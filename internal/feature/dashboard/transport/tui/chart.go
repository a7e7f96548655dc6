package tui

import (
	"fmt"
	"math"
	"strings"

	"stock_dashboard/internal/feature/dashboard/controller"
	"stock_dashboard/internal/feature/dashboard/view"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// asciiChart draws a line chart as columns of block characters.
type asciiChart struct {
	data      view.ChartData
	destroyed bool
}

// Destroy releases the chart. A destroyed chart renders nothing.
func (c *asciiChart) Destroy() {
	c.destroyed = true
	c.data = view.ChartData{}
}

// Render returns the chart as height rows of at most width columns,
// followed by an axis line with the first and last labels.
func (c *asciiChart) Render(width, height int) string {
	if c.destroyed || c.data.Len() == 0 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi := bounds(c.data.Values)
	axis := len(fmt.Sprintf("%.2f", hi))
	if n := len(fmt.Sprintf("%.2f", lo)); n > axis {
		axis = n
	}
	plotWidth := width - axis - 2
	if plotWidth < 1 {
		plotWidth = 1
	}
	vals := resample(c.data.Values, plotWidth)

	levels := make([]int, len(vals))
	steps := height * len(blocks)
	for i, v := range vals {
		if hi == lo {
			levels[i] = steps / 2
			continue
		}
		levels[i] = int(math.Round((v - lo) / (hi - lo) * float64(steps-1)))
		levels[i]++
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		switch row {
		case 0:
			fmt.Fprintf(&b, "%*.2f ┤", axis, hi)
		case height - 1:
			fmt.Fprintf(&b, "%*.2f ┤", axis, lo)
		default:
			fmt.Fprintf(&b, "%*s │", axis, "")
		}
		base := (height - 1 - row) * len(blocks)
		for _, lv := range levels {
			fill := lv - base
			switch {
			case fill <= 0:
				b.WriteRune(' ')
			case fill >= len(blocks):
				b.WriteRune(blocks[len(blocks)-1])
			default:
				b.WriteRune(blocks[fill-1])
			}
		}
		b.WriteByte('\n')
	}

	first, last := c.data.Labels[0], c.data.Labels[len(c.data.Labels)-1]
	gap := len(vals) - len([]rune(first)) - len([]rune(last))
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(&b, "%*s  %s%s%s", axis, "", first, strings.Repeat(" ", gap), last)
	return b.String()
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// resample picks n evenly spaced values. Shorter input is returned unchanged.
func resample(vs []float64, n int) []float64 {
	if len(vs) <= n {
		return vs
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = vs[i*(len(vs)-1)/max(n-1, 1)]
	}
	return out
}

// Renderer creates terminal charts.
type Renderer struct{}

var _ controller.ChartRenderer = Renderer{}

// Draw creates a new chart for data.
func (Renderer) Draw(data view.ChartData) controller.Chart {
	return &asciiChart{data: data}
}

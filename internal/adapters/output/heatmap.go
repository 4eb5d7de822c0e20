package output

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/okian/replaystats/internal/domain/volume"
)

const heatmapCellPx = 4

// RenderHeatmap draws a top-down PNG of grid, summing counts along Z. Cell
// brightness follows a log scale of the column total.
func RenderHeatmap(w io.Writer, grid volume.Grid) error {
	nx, ny, nz := grid.Dims[0], grid.Dims[1], grid.Dims[2]
	if nx <= 0 || ny <= 0 {
		return fmt.Errorf("render heatmap: empty grid %v", grid.Dims)
	}

	columns := make([]uint64, int(nx)*int(ny))
	var peak uint64
	for y := int32(0); y < ny; y++ {
		for x := int32(0); x < nx; x++ {
			var sum uint64
			for z := int32(0); z < nz; z++ {
				sum += uint64(grid.At(x, y, z))
			}
			columns[int(y)*int(nx)+int(x)] = sum
			if sum > peak {
				peak = sum
			}
		}
	}

	dc := gg.NewContext(int(nx)*heatmapCellPx, int(ny)*heatmapCellPx)
	dc.SetColor(color.RGBA{12, 12, 28, 255})
	dc.Clear()
	if peak > 0 {
		scale := math.Log1p(float64(peak))
		for y := int32(0); y < ny; y++ {
			for x := int32(0); x < nx; x++ {
				v := columns[int(y)*int(nx)+int(x)]
				if v == 0 {
					continue
				}
				dc.SetColor(heat(math.Log1p(float64(v)) / scale))
				// Image rows grow downward while world Y grows up.
				dc.DrawRectangle(float64(x*heatmapCellPx), float64((ny-1-y)*heatmapCellPx), heatmapCellPx, heatmapCellPx)
				dc.Fill()
			}
		}
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// heat maps t in [0,1] onto a blue to red ramp.
func heat(t float64) color.Color {
	t = math.Max(0, math.Min(1, t))
	r := uint8(255 * math.Min(1, 2*t))
	g := uint8(255 * (1 - math.Abs(2*t-1)))
	b := uint8(255 * math.Min(1, 2*(1-t)))
	return color.RGBA{r, g, b, 255}
}

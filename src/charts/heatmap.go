package charts

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/adamkpickering/living-lab-visualize/src/api"
	"github.com/adamkpickering/living-lab-visualize/src/table"
)

// Coverage renders the binary test-coverage heatmap: one row per nanopi, one
// column per hour of the observed span, white where a sample is present and
// black where it is missing. Tables with a direction axis produce one PNG
// per direction (up_<name>, down_<name>).
func Coverage(t *table.Table, labels api.Labels, path, title string, width int) error {
	if err := ensureData(t); err != nil {
		return err
	}
	width = normWidth(width)
	rowLabels := make([]string, len(t.Nanopis))
	for i, n := range t.Nanopis {
		rowLabels[i] = labels.Get(n)
	}
	for _, d := range t.DirectionAxes() {
		grid := t.Coverage(d)
		outPath, outTitle := directionVariant(path, title, d)
		err := renderToFile(outPath, func(w io.Writer) error {
			return writeCoverage(w, grid, rowLabels, outTitle, t.Hours, width)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCoverage(w io.Writer, grid [][]bool, rowLabels []string, title string, hours []time.Time, width int) error {
	rows := len(grid)
	if rows == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("coverage grid is empty")
	}
	cols := len(grid[0])
	height := heightFor(width)

	const (
		marginLeft   = 150
		marginTop    = 36
		marginBottom = 48
		marginRight  = 12
	)
	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom
	if plotW < cols {
		api.Warnf("coverage: %d hours squeezed into %d pixels; widen the chart for full resolution", cols, plotW)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	// Nearest-neighbour scaling keeps cell edges hard, like imshow with
	// interpolation disabled.
	for py := 0; py < plotH; py++ {
		row := grid[py*rows/plotH]
		for px := 0; px < plotW; px++ {
			if !row[px*cols/plotW] {
				img.Set(marginLeft+px, marginTop+py, color.Black)
			}
		}
	}
	drawRectOutline(img, marginLeft-1, marginTop-1, plotW+2, plotH+2, color.Black)

	drawText(img, title, marginLeft, 20)
	for i, label := range rowLabels {
		y := marginTop + (2*i+1)*plotH/(2*rows) + 4
		drawText(img, label, 8, y)
	}
	// Time extent under the grid.
	drawText(img, hours[0].Format("2006-01-02 15:04"), marginLeft, marginTop+plotH+14)
	last := hours[len(hours)-1].Format("2006-01-02 15:04")
	drawText(img, last, marginLeft+plotW-7*len(last), marginTop+plotH+14)

	// Legend: the two cell states.
	ly := height - 18
	fillRect(img, marginLeft, ly-9, 11, 11, color.Black)
	drawRectOutline(img, marginLeft, ly-9, 11, 11, color.Black)
	drawText(img, "missing", marginLeft+16, ly)
	fillRect(img, marginLeft+90, ly-9, 11, 11, color.White)
	drawRectOutline(img, marginLeft+90, ly-9, 11, 11, color.Black)
	drawText(img, "present", marginLeft+106, ly)

	return png.Encode(w, img)
}

func drawText(img *image.RGBA, s string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fillRect(img *image.RGBA, x, y, w, h int, c color.Color) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, draw.Src)
}

func drawRectOutline(img *image.RGBA, x, y, w, h int, c color.Color) {
	for px := x; px < x+w; px++ {
		img.Set(px, y, c)
		img.Set(px, y+h-1, c)
	}
	for py := y; py < y+h; py++ {
		img.Set(x, py, c)
		img.Set(x+w-1, py, c)
	}
}

// Package viz renders route figures for best-found solutions and per-instance
// performance charts.
package viz

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/lamim/tsp-report/internal/results"
)

const (
	minMarkerSize = 50
	maxMarkerSize = 250

	// Fraction of the larger coordinate span used for arrowhead barbs.
	arrowScale = 0.015
	barbAngle  = math.Pi / 6
)

// RenderConfig fixes the figure style for a whole run. One config is built at
// startup and shared by every figure so all plots in a report look alike.
type RenderConfig struct {
	Format string
	DPI    int
	Width  vg.Length
	Height vg.Length
}

// DefaultRenderConfig is a 12x8 inch high-DPI raster figure.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{Format: "png", DPI: 300, Width: 12 * vg.Inch, Height: 8 * vg.Inch}
}

// Renderer draws figures into an images directory.
type Renderer struct {
	cfg       RenderConfig
	imagesDir string
}

// NewRenderer creates a renderer writing figures into imagesDir.
func NewRenderer(cfg RenderConfig, imagesDir string) *Renderer {
	return &Renderer{cfg: cfg, imagesDir: imagesDir}
}

// markerSize interpolates the marker area between 50 and 250 over the
// instance-wide cost range. A flat range collapses to the floor value instead
// of dividing by zero.
func markerSize(cost, minCost, maxCost float64) float64 {
	if maxCost == minCost {
		return minMarkerSize
	}
	return minMarkerSize + (maxMarkerSize-minMarkerSize)*(cost-minCost)/(maxCost-minCost)
}

// markerRadius converts an area-like marker size to a glyph radius.
func markerRadius(size float64) vg.Length {
	return vg.Points(math.Sqrt(size / math.Pi))
}

// routePoints resolves a route to coordinates and closes the cycle by
// appending the first node again.
func routePoints(route []int, coords map[int]results.Node) (plotter.XYs, error) {
	pts := make(plotter.XYs, 0, len(route)+1)
	for _, id := range route {
		n, ok := coords[id]
		if !ok {
			return nil, fmt.Errorf("route references unknown node %d", id)
		}
		pts = append(pts, plotter.XY{X: n.X, Y: n.Y})
	}
	if len(pts) > 0 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}

// RenderRoute draws one best-found solution over the full node set and writes
// the figure. It returns the file name (relative to the images directory).
// Draw order: unselected nodes, route line, selected nodes, direction arrows.
func (r *Renderer) RenderRoute(ds *results.InstanceDataset, algorithm string, trace results.SolutionTrace) (string, error) {
	if len(ds.Nodes) == 0 {
		return "", fmt.Errorf("instance %s has no nodes to draw", ds.Instance)
	}

	coords := make(map[int]results.Node, len(ds.Nodes))
	minCost, maxCost := ds.Nodes[0].Cost, ds.Nodes[0].Cost
	for _, n := range ds.Nodes {
		coords[n.ID] = n
		if n.Cost < minCost {
			minCost = n.Cost
		}
		if n.Cost > maxCost {
			maxCost = n.Cost
		}
	}

	badge := "VALIDATED"
	if !trace.IsValidated {
		badge = "VALIDATION FAILED"
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s\nObjective: %.2f | Path: %.2f | Costs: %.2f | %s",
		ds.Instance, algorithm, trace.ObjectiveValue, trace.PathLength, trace.NodeCosts, badge)
	p.X.Label.Text = "X Coordinate"
	p.Y.Label.Text = "Y Coordinate"
	p.Add(plotter.NewGrid())

	if err := r.addAllNodes(p, ds.Nodes, minCost, maxCost); err != nil {
		return "", err
	}

	pts, err := routePoints(trace.Route, coords)
	if err != nil {
		return "", fmt.Errorf("rendering %s/%s: %w", ds.Instance, algorithm, err)
	}
	if len(pts) > 1 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", err
		}
		line.LineStyle = draw.LineStyle{Color: color.NRGBA{R: 220, A: 255}, Width: vg.Points(2)}
		p.Add(line)
	}

	// Legend range spans the whole instance, not the selected subset, so
	// figures within one instance stay comparable.
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(minCost)
	if maxCost > minCost {
		cm.SetMax(maxCost)
	} else {
		cm.SetMax(minCost + 1)
	}

	if err := r.addSelectedNodes(p, trace.SelectedNodes, coords, cm.At, minCost, maxCost); err != nil {
		return "", err
	}
	if err := addArrows(p, pts); err != nil {
		return "", err
	}

	bar := plot.New()
	bar.Title.Text = "Node Cost"
	bar.HideY()
	bar.X.Padding = 0
	bar.Add(&plotter.ColorBar{ColorMap: cm})

	name := r.FileName(ds.Instance, algorithm)
	if err := r.writeFigure(filepath.Join(r.imagesDir, name), p, bar); err != nil {
		return "", fmt.Errorf("writing figure for %s/%s: %w", ds.Instance, algorithm, err)
	}
	return name, nil
}

// addAllNodes draws every node in a neutral tone, cost-scaled, with id labels.
func (r *Renderer) addAllNodes(p *plot.Plot, nodes []results.Node, minCost, maxCost float64) error {
	pts := make(plotter.XYs, len(nodes))
	labels := make([]string, len(nodes))
	for i, n := range nodes {
		pts[i] = plotter.XY{X: n.X, Y: n.Y}
		labels[i] = strconv.Itoa(n.ID)
	}

	base, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	base.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  color.Gray{Y: 0xd0},
			Radius: markerRadius(markerSize(nodes[i].Cost, minCost, maxCost)),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(base)

	ids, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return err
	}
	for i := range ids.TextStyle {
		ids.TextStyle[i].Font.Size = vg.Points(5)
		ids.TextStyle[i].Color = color.Gray{Y: 0x60}
	}
	p.Add(ids)
	return nil
}

// addSelectedNodes draws the selected subset cost-colored with a black
// outline ring on top of the route line.
func (r *Renderer) addSelectedNodes(p *plot.Plot, selected []int, coords map[int]results.Node,
	colorAt func(float64) (color.Color, error), minCost, maxCost float64) error {
	nodes := make([]results.Node, 0, len(selected))
	for _, id := range selected {
		if n, ok := coords[id]; ok {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(nodes))
	for i, n := range nodes {
		pts[i] = plotter.XY{X: n.X, Y: n.Y}
	}

	fill, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	fill.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, cerr := colorAt(nodes[i].Cost)
		if cerr != nil {
			c = color.Black
		}
		return draw.GlyphStyle{
			Color:  c,
			Radius: markerRadius(markerSize(nodes[i].Cost, minCost, maxCost)),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(fill)

	outline, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	outline.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  color.Black,
			Radius: markerRadius(markerSize(nodes[i].Cost, minCost, maxCost)),
			Shape:  draw.RingGlyph{},
		}
	}
	p.Add(outline)
	return nil
}

// addArrows places a direction arrowhead at the midpoint of every edge of the
// closed route, the closing edge included.
func addArrows(p *plot.Plot, closed plotter.XYs) error {
	if len(closed) < 2 {
		return nil
	}
	var minX, maxX, minY, maxY float64
	minX, maxX = closed[0].X, closed[0].X
	minY, maxY = closed[0].Y, closed[0].Y
	for _, pt := range closed {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	barbLen := arrowScale * math.Max(maxX-minX, maxY-minY)
	if barbLen == 0 {
		return nil
	}

	for i := 0; i < len(closed)-1; i++ {
		from, to := closed[i], closed[i+1]
		dx, dy := to.X-from.X, to.Y-from.Y
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		ux, uy := dx/norm, dy/norm
		mx, my := from.X+dx/2, from.Y+dy/2

		// Two barbs swept back from the midpoint against travel direction.
		for _, sign := range []float64{1, -1} {
			sin, cos := math.Sincos(sign * barbAngle)
			bx := -ux*cos + uy*sin
			by := -ux*sin - uy*cos
			barb, err := plotter.NewLine(plotter.XYs{
				{X: mx, Y: my},
				{X: mx + barbLen*bx, Y: my + barbLen*by},
			})
			if err != nil {
				return err
			}
			barb.LineStyle = draw.LineStyle{Color: color.NRGBA{R: 220, A: 255}, Width: vg.Points(1.5)}
			p.Add(barb)
		}
	}
	return nil
}

var unsafeChars = strings.NewReplacer("/", "_", " ", "_")

// FileName builds the stable figure name for an (instance, algorithm) pair.
// Path-unsafe characters are replaced so repeated renders overwrite in place.
func (r *Renderer) FileName(instance, algorithm string) string {
	return fmt.Sprintf("%s_%s.%s",
		unsafeChars.Replace(instance), unsafeChars.Replace(algorithm), strings.ToLower(r.cfg.Format))
}

// writeFigure lays the main plot above a short colorbar strip and writes the
// result in the configured format.
func (r *Renderer) writeFigure(path string, main, bar *plot.Plot) error {
	canvas, wt, err := r.newCanvas()
	if err != nil {
		return err
	}
	dc := draw.New(canvas)
	barHeight := r.cfg.Height / 6
	main.Draw(draw.Crop(dc, 0, 0, barHeight, 0))
	bar.Draw(draw.Crop(dc, 0, 0, 0, barHeight-r.cfg.Height))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := wt.WriteTo(f); err != nil {
		return err
	}
	return f.Close()
}

// newCanvas builds a drawing canvas plus its writer for the configured
// format.
func (r *Renderer) newCanvas() (vg.CanvasSizer, io.WriterTo, error) {
	switch strings.ToLower(r.cfg.Format) {
	case "png":
		c := vgimg.NewWith(vgimg.UseWH(r.cfg.Width, r.cfg.Height), vgimg.UseDPI(r.cfg.DPI))
		return c, vgimg.PngCanvas{Canvas: c}, nil
	case "svg":
		c := vgsvg.New(r.cfg.Width, r.cfg.Height)
		return c, c, nil
	case "pdf":
		c := vgpdf.New(r.cfg.Width, r.cfg.Height)
		return c, c, nil
	}
	return nil, nil, fmt.Errorf("unsupported figure format %q", r.cfg.Format)
}

package services

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"

	"paper-archive/models"
)

const (
	nodeRelSize  = 4.0
	renderMargin = 40.0
	arrowLength  = 6.0
)

// RenderOptions steuert die PNG-Darstellung.
type RenderOptions struct {
	Width    int
	Height   int
	Hovered  string
	Selected string
	Labels   bool
	// Layout ist optional; ohne Angabe wird NewForceLayout verwendet.
	Layout Layout
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Layout == nil {
		o.Layout = NewForceLayout()
	}
	return o
}

// RenderGraphPNG zeichnet den Graphen als PNG in w.
func RenderGraphPNG(w io.Writer, g models.Graph, opts RenderOptions) error {
	opts = opts.withDefaults()
	positions := RunLayout(opts.Layout, g)

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetHexColor(BackgroundColor)
	dc.Clear()

	project := fitToCanvas(positions, float64(opts.Width), float64(opts.Height))

	radius := make(map[string]float64, len(g.Nodes))
	for _, n := range g.Nodes {
		radius[n.ID] = math.Sqrt(float64(max(n.Val, 1))) * nodeRelSize
	}

	for _, l := range g.Links {
		sp, okS := positions[l.Source]
		tp, okT := positions[l.Target]
		if !okS || !okT {
			continue
		}
		x1, y1 := project(sp)
		x2, y2 := project(tp)
		style := StyleForLink(l.Type)
		dc.SetRGBA255(style.R, style.G, style.B, int(style.Alpha*255))
		dc.SetLineWidth(style.Width)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		if l.Type == models.LinkBuildUpon {
			drawArrow(dc, x1, y1, x2, y2, radius[l.Target])
		}
	}

	view := NewGraphView(g)
	view.Hover(opts.Hovered)
	if opts.Selected != "" {
		view.Click(opts.Selected)
	}

	for _, n := range g.Nodes {
		x, y := project(positions[n.ID])
		r := radius[n.ID]
		dc.SetHexColor(OrgColor(n.Organization))
		dc.DrawCircle(x, y, r)
		dc.Fill()
		if view.Highlighted(n.ID) {
			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(2)
			dc.DrawCircle(x, y, r+2)
			dc.Stroke()
		}
		if opts.Labels || view.Highlighted(n.ID) {
			dc.SetRGBA(1, 1, 1, 0.85)
			dc.DrawStringAnchored(n.Name, x, y+r+10, 0.5, 0.5)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawArrow(dc *gg.Context, x1, y1, x2, y2, targetRadius float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	tipX := x2 - math.Cos(angle)*targetRadius
	tipY := y2 - math.Sin(angle)*targetRadius
	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX-arrowLength*math.Cos(angle-math.Pi/7), tipY-arrowLength*math.Sin(angle-math.Pi/7))
	dc.LineTo(tipX-arrowLength*math.Cos(angle+math.Pi/7), tipY-arrowLength*math.Sin(angle+math.Pi/7))
	dc.ClosePath()
	dc.Fill()
}

// fitToCanvas skaliert die Layout-Koordinaten gleichmäßig in die Zeichenfläche.
func fitToCanvas(positions map[string]Point, width, height float64) func(Point) (float64, float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range positions {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if len(positions) == 0 {
		return func(Point) (float64, float64) { return width / 2, height / 2 }
	}

	// Rand höchstens ein Viertel der kürzeren Seite
	margin := math.Min(renderMargin, math.Min(width, height)/4)
	scale := math.Inf(1)
	if spanX := maxX - minX; spanX > 0 {
		scale = (width - 2*margin) / spanX
	}
	if spanY := maxY - minY; spanY > 0 {
		scale = math.Min(scale, (height-2*margin)/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return func(p Point) (float64, float64) {
		return width/2 + (p.X-cx)*scale, height/2 + (p.Y-cy)*scale
	}
}

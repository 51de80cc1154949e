// Package plot renders solved facility plans to PNG files using gonum/plot.
// The HTTP chart endpoint covers interactive use; this package is for batch
// tooling that wants an image on disk next to its CSV output.
package plot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/geom"
)

// circleSegments is the resolution of the traced service-area circles.
const circleSegments = 128

// PlanPlotter writes plan images into an output directory.
type PlanPlotter struct {
	outputDir string
}

// NewPlanPlotter creates a plotter writing into outputDir, creating it if
// needed.
func NewPlanPlotter(outputDir string) (*PlanPlotter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &PlanPlotter{outputDir: outputDir}, nil
}

// OutputDir returns the directory plots are written into.
func (pp *PlanPlotter) OutputDir() string {
	return pp.outputDir
}

// SavePNG renders the solved plan and writes <name>.png into the output
// directory, returning the full path. Customers are colored by cluster;
// each facility gets a service-area circle sized by ServiceRadii.
func (pp *PlanPlotter) SavePNG(name string, customers, seeds []geom.Point, sol *cluster.Solution) (string, error) {
	p := plot.New()
	p.Title.Text = "Facility Location Plan"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	k := len(sol.Facilities)
	colors := generateColors(k)
	radii := cluster.ServiceRadii(customers, sol)

	// Customers, one scatter per cluster.
	for j := 0; j < k; j++ {
		var pts plotter.XYs
		for i, c := range customers {
			if sol.Assignments[i] == j {
				pts = append(pts, plotter.XY{X: c.X, Y: c.Y})
			}
		}
		if len(pts) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return "", err
		}
		scatter.GlyphStyle.Color = colors[j]
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("cluster %d", j+1), scatter)
	}

	// Service-area circles.
	for j, f := range sol.Facilities {
		if radii[j] == 0 {
			continue
		}
		circle := make(plotter.XYs, circleSegments+1)
		for seg := 0; seg <= circleSegments; seg++ {
			theta := 2 * math.Pi * float64(seg) / circleSegments
			circle[seg] = plotter.XY{
				X: f.X + radii[j]*math.Cos(theta),
				Y: f.Y + radii[j]*math.Sin(theta),
			}
		}
		line, err := plotter.NewLine(circle)
		if err != nil {
			return "", err
		}
		line.Color = colors[j]
		line.Width = vg.Points(1)
		p.Add(line)
	}

	// Seed facilities.
	if len(seeds) > 0 {
		pts := make(plotter.XYs, len(seeds))
		for i, f := range seeds {
			pts[i] = plotter.XY{X: f.X, Y: f.Y}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return "", err
		}
		scatter.GlyphStyle.Shape = draw.RingGlyph{}
		scatter.GlyphStyle.Color = color.RGBA{R: 255, G: 165, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(5)
		p.Add(scatter)
		p.Legend.Add("initial facilities", scatter)
	}

	// Final facilities.
	pts := make(plotter.XYs, len(sol.Facilities))
	for i, f := range sol.Facilities {
		pts[i] = plotter.XY{X: f.X, Y: f.Y}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return "", err
	}
	scatter.GlyphStyle.Shape = draw.CrossGlyph{}
	scatter.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	scatter.GlyphStyle.Radius = vg.Points(6)
	p.Add(scatter)
	p.Legend.Add("optimal facilities", scatter)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	file := filepath.Join(pp.outputDir, name+".png")
	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return "", fmt.Errorf("save plan plot: %w", err)
	}
	return file, nil
}

// generateColors creates a palette of distinct colors for cluster series
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MakeOutputDir builds a timestamped output directory path for plan plots:
// <baseDir>/<scenario>/<timestamp>, or <baseDir>/plan_<timestamp> when no
// scenario name is given.
func MakeOutputDir(baseDir, scenario string) string {
	ts := FormatTimestamp(time.Now())
	if scenario != "" {
		return filepath.Join(baseDir, scenario, ts)
	}
	return filepath.Join(baseDir, "plan_"+ts)
}

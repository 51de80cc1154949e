package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/facility.report/internal/cluster"
	"github.com/banshee-data/facility.report/internal/geom"
	"github.com/banshee-data/facility.report/internal/httputil"
)

// circleSegments is the number of perimeter points used to trace a
// service-area circle on the scatter chart.
const circleSegments = 72

// handlePlanChart renders the current plan as a scatter chart (HTML) using
// go-echarts: customers colored by assigned cluster, seed facilities, final
// facilities, and a traced service-area circle per facility. Before a solve,
// it renders the raw customer and seed points.
func (s *Server) handlePlanChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snap := s.store.Snapshot()
	if len(snap.Customers) == 0 && len(snap.Facilities) == 0 {
		httputil.NotFound(w, "no points to chart")
		return
	}

	// Downsample customers by stride to stay within chartMaxPoints.
	stride := 1
	if len(snap.Customers) > s.chartMaxPoints {
		stride = int(math.Ceil(float64(len(snap.Customers)) / float64(s.chartMaxPoints)))
	}

	min, max, _ := geom.Bounds(snap.Customers, snap.Facilities)
	var radii []float64
	if snap.Solution != nil {
		radii = cluster.ServiceRadii(snap.Customers, snap.Solution)
		if fmin, fmax, ok := geom.Bounds(snap.Solution.Facilities); ok {
			maxRadius := 0.0
			for _, rad := range radii {
				if rad > maxRadius {
					maxRadius = rad
				}
			}
			min.X = math.Min(min.X, fmin.X-maxRadius)
			min.Y = math.Min(min.Y, fmin.Y-maxRadius)
			max.X = math.Max(max.X, fmax.X+maxRadius)
			max.Y = math.Max(max.Y, fmax.Y+maxRadius)
		}
	}

	// Pad the frame so edge points stay visible.
	padX := (max.X - min.X) * 0.05
	padY := (max.Y - min.Y) * 0.05
	if padX == 0 {
		padX = 1.0
	}
	if padY == 0 {
		padY = 1.0
	}

	subtitle := fmt.Sprintf("customers=%d facilities=%d stride=%d", len(snap.Customers), len(snap.Facilities), stride)
	if snap.Solution != nil {
		subtitle += fmt.Sprintf(" iterations=%d", snap.Solution.Iterations)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Facility Plan", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Facility Location Plan", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: min.X - padX, Max: max.X + padX, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: min.Y - padY, Max: max.Y + padY, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "5%"}),
	)

	if snap.Solution == nil {
		data := make([]opts.ScatterData, 0, len(snap.Customers)/stride+1)
		for i := 0; i < len(snap.Customers); i += stride {
			p := snap.Customers[i]
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
		scatter.AddSeries("customers", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	} else {
		// One series per cluster so echarts cycles colors for us.
		k := len(snap.Solution.Facilities)
		byCluster := make([][]opts.ScatterData, k)
		for i := 0; i < len(snap.Customers); i += stride {
			j := snap.Solution.Assignments[i]
			p := snap.Customers[i]
			byCluster[j] = append(byCluster[j], opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
		for j, data := range byCluster {
			if len(data) == 0 {
				continue
			}
			scatter.AddSeries(fmt.Sprintf("cluster %d", j+1), data,
				charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
		}

		finals := make([]opts.ScatterData, 0, k)
		for _, f := range snap.Solution.Facilities {
			finals = append(finals, opts.ScatterData{Value: []interface{}{f.X, f.Y}, Symbol: "triangle"})
		}
		scatter.AddSeries("optimal facilities", finals,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 16}))

		// Service areas drawn as traced circle perimeters.
		for j, f := range snap.Solution.Facilities {
			if radii[j] == 0 {
				continue
			}
			perimeter := make([]opts.ScatterData, 0, circleSegments)
			for seg := 0; seg < circleSegments; seg++ {
				theta := 2 * math.Pi * float64(seg) / circleSegments
				x := f.X + radii[j]*math.Cos(theta)
				y := f.Y + radii[j]*math.Sin(theta)
				perimeter = append(perimeter, opts.ScatterData{Value: []interface{}{x, y}})
			}
			scatter.AddSeries(fmt.Sprintf("service area %d", j+1), perimeter,
				charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
		}
	}

	if len(snap.Facilities) > 0 {
		seeds := make([]opts.ScatterData, 0, len(snap.Facilities))
		for _, f := range snap.Facilities {
			seeds = append(seeds, opts.ScatterData{Value: []interface{}{f.X, f.Y}, Symbol: "diamond"})
		}
		scatter.AddSeries("initial facilities", seeds,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

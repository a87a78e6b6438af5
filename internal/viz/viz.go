// Package viz renders deconfliction inputs and reports for humans: top-down
// and 3-D trajectory charts as self-contained echarts HTML, and a
// separation-over-time plot as PNG. The package only reads missions and
// reports; it never re-runs the check.
package viz

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/corvid-data/airspace.report/internal/deconflict"
)

// sampleStep is the resolution used when drawing trajectories. Rendering is
// presentation only, so it does not need to match the check's step.
const sampleStep = 1.0

func trajectoryPoints(m deconflict.Mission) ([]deconflict.Sample, error) {
	seq, err := deconflict.Trajectory(m, sampleStep)
	if err != nil {
		return nil, err
	}
	var out []deconflict.Sample
	for s := range seq {
		out = append(out, s)
	}
	return out, nil
}

// RenderChart2D writes a top-down (x, y) scatter chart of all missions to w,
// with conflict locations overlaid as a separate series.
func RenderChart2D(w io.Writer, primary deconflict.Mission, others []deconflict.Mission, report *deconflict.Report) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Mission Trajectories",
			Width:     "900px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Mission trajectories (top-down)",
			Subtitle: fmt.Sprintf("primary=%s others=%d conflicts=%d", primary.DroneID, len(others), conflictCount(report)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)"}),
	)

	addSeries2D := func(m deconflict.Mission, symbolSize int) error {
		samples, err := trajectoryPoints(m)
		if err != nil {
			return err
		}
		data := make([]opts.ScatterData, 0, len(samples))
		for _, s := range samples {
			data = append(data, opts.ScatterData{Value: []interface{}{s.X, s.Y}})
		}
		scatter.AddSeries(m.DroneID, data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: symbolSize}))
		return nil
	}

	if err := addSeries2D(primary, 6); err != nil {
		return err
	}
	for _, o := range others {
		if err := addSeries2D(o, 4); err != nil {
			return err
		}
	}

	if report != nil && len(report.Conflicts) > 0 {
		data := make([]opts.ScatterData, 0, len(report.Conflicts))
		for _, ev := range report.Conflicts {
			data = append(data, opts.ScatterData{
				Value:  []interface{}{ev.Location.X, ev.Location.Y},
				Symbol: "triangle",
			})
		}
		scatter.AddSeries("conflicts", data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}))
	}

	return scatter.Render(w)
}

// RenderChart3D writes a 3-D scatter chart of all missions to w.
func RenderChart3D(w io.Writer, primary deconflict.Mission, others []deconflict.Mission, report *deconflict.Report) error {
	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Mission Trajectories 3D",
			Width:     "900px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Mission trajectories (3-D)",
			Subtitle: fmt.Sprintf("primary=%s others=%d conflicts=%d", primary.DroneID, len(others), conflictCount(report)),
		}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x (m)"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y (m)"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "alt (m)"}),
	)

	addSeries3D := func(m deconflict.Mission) error {
		samples, err := trajectoryPoints(m)
		if err != nil {
			return err
		}
		data := make([]opts.Chart3DData, 0, len(samples))
		for _, s := range samples {
			data = append(data, opts.Chart3DData{Value: []interface{}{s.X, s.Y, s.Z}})
		}
		scatter.AddSeries(m.DroneID, data)
		return nil
	}

	if err := addSeries3D(primary); err != nil {
		return err
	}
	for _, o := range others {
		if err := addSeries3D(o); err != nil {
			return err
		}
	}

	if report != nil && len(report.Conflicts) > 0 {
		data := make([]opts.Chart3DData, 0, len(report.Conflicts))
		for _, ev := range report.Conflicts {
			data = append(data, opts.Chart3DData{Value: []interface{}{ev.Location.X, ev.Location.Y, ev.Location.Z}})
		}
		scatter.AddSeries("conflicts", data)
	}

	return scatter.Render(w)
}

// separationSeries computes the per-instant closest approach between the
// primary and one other drone across their aligned samples.
func separationSeries(primary, other deconflict.Mission, cfg deconflict.CheckConfig) (plotter.XYs, error) {
	pt, err := deconflict.Trajectory(primary, cfg.Step)
	if err != nil {
		return nil, err
	}
	ot, err := deconflict.Trajectory(other, cfg.Step)
	if err != nil {
		return nil, err
	}

	var pts plotter.XYs
	lastT := 0.0
	for p := range deconflict.AlignedPairs(pt, ot, cfg.TimeTolerance) {
		sep := deconflict.Separation(p)
		if len(pts) > 0 && p.A.T == lastT {
			if sep < pts[len(pts)-1].Y {
				pts[len(pts)-1].Y = sep
			}
			continue
		}
		pts = append(pts, plotter.XY{X: p.A.T, Y: sep})
		lastT = p.A.T
	}
	return pts, nil
}

// RenderSeparationPNG writes a PNG plotting each pair's separation over time
// together with the safety threshold, the quickest way to see how close an
// encounter actually came.
func RenderSeparationPNG(w io.Writer, primary deconflict.Mission, others []deconflict.Mission, cfg deconflict.CheckConfig) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Separation from %s", primary.DroneID)
	p.X.Label.Text = "mission time (s)"
	p.Y.Label.Text = "separation (m)"
	p.Legend.Top = true

	var minT, maxT float64
	first := true
	for _, other := range others {
		pts, err := separationSeries(primary, other, cfg)
		if err != nil {
			return err
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(other.DroneID, line)

		if first || pts[0].X < minT {
			minT = pts[0].X
		}
		if first || pts[len(pts)-1].X > maxT {
			maxT = pts[len(pts)-1].X
		}
		first = false
	}

	if !first {
		threshold, err := plotter.NewLine(plotter.XYs{
			{X: minT, Y: cfg.SafetyDistance},
			{X: maxT, Y: cfg.SafetyDistance},
		})
		if err != nil {
			return err
		}
		threshold.Width = vg.Points(1)
		threshold.Color = color.RGBA{R: 200, A: 255}
		threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(threshold)
		p.Legend.Add("safety distance", threshold)
	}

	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func conflictCount(report *deconflict.Report) int {
	if report == nil {
		return 0
	}
	return len(report.Conflicts)
}

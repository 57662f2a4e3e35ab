package visualize

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finzen/internal/analysis"
	"finzen/internal/indicators"
	appweb "finzen/web"
)

const (
	chartWidth  = 420
	chartHeight = 220
	padLeft     = 40
	padRight    = 10
	padTop      = 20
	padBottom   = 30
	pieRadius   = 100
)

var palette = []string{"#4c78a8", "#f58518", "#54a24b", "#e45756", "#72b7b2", "#b279a2"}

var reportTemplate = template.Must(template.ParseFS(appweb.TemplatesFS, "templates/report.html"))

// Report is everything the HTML report shows. It carries no run id or
// timestamp so the same input always renders the same bytes.
type Report struct {
	RawRows    int
	Accepted   int
	Rejected   int
	Statistics []indicators.StatisticsRow
	Insights   analysis.Insights
	Charts     []Chart
}

type reportView struct {
	Title    string
	Style    template.CSS
	RawRows  int
	Accepted int
	Rejected int

	Statistics []statisticsLine

	HasTopExpenseAge   bool
	TopExpenseAge      int
	TopExpenseMean     string
	CorrelationDefined bool
	Correlation        string
	Strength           string
	CorrelationPairs   int
	GenderDefined      bool
	GenderCorrelation  string
	GenderStrength     string
	GenderPairs        int

	Charts []chartView
}

type statisticsLine struct {
	Field  string
	Count  int
	Mean   string
	Median string
	StdDev string
	Min    string
	Max    string
}

type chartView struct {
	Title  string
	Empty  bool
	Pie    bool
	Width  int
	Height int

	AxisX, AxisY, AxisEnd string
	Bars                  []barView
	Slices                []sliceView
}

type barView struct {
	X, Y, W, H             string
	LabelX, ValueY, LabelY string
	Label, Text, Color     string
}

type sliceView struct {
	Full      bool
	CX, CY, R string
	Path      string
	Label     string
	Text      string
	Color     string
}

// RenderReport writes the HTML report to w.
func RenderReport(w io.Writer, r Report) error {
	css, err := fs.ReadFile(appweb.StaticFS, "static/report.css")
	if err != nil {
		return fmt.Errorf("read report stylesheet: %w", err)
	}

	view := reportView{
		Title:            "FINZEN",
		Style:            template.CSS(css),
		RawRows:          r.RawRows,
		Accepted:         r.Accepted,
		Rejected:         r.Rejected,
		HasTopExpenseAge: r.Accepted > 0,
		TopExpenseAge:    r.Insights.TopExpenseAge,
		TopExpenseMean:   r.Insights.TopExpenseMean.StringFixed(2),
		Strength:         r.Insights.Strength,
		CorrelationPairs: r.Insights.CorrelationPairs,
		GenderStrength:   r.Insights.GenderStrength,
		GenderPairs:      r.Insights.GenderPairs,
	}
	if r.Insights.SavingsDifficulty.Valid {
		view.CorrelationDefined = true
		view.Correlation = r.Insights.SavingsDifficulty.Decimal.StringFixed(3)
	}
	if r.Insights.GenderExpenses.Valid {
		view.GenderDefined = true
		view.GenderCorrelation = r.Insights.GenderExpenses.Decimal.StringFixed(3)
	}
	for _, s := range r.Statistics {
		view.Statistics = append(view.Statistics, statisticsLine{
			Field:  s.Field,
			Count:  s.Count,
			Mean:   s.Mean.Format(4),
			Median: s.Median.Format(4),
			StdDev: s.StdDev.Format(4),
			Min:    s.Min.Format(4),
			Max:    s.Max.Format(4),
		})
	}
	for _, c := range r.Charts {
		view.Charts = append(view.Charts, chartViewOf(c))
	}

	return reportTemplate.ExecuteTemplate(w, "report.html", view)
}

// WriteReport renders the report into path, replacing any previous file.
func WriteReport(path string, r Report) error {
	var buf bytes.Buffer
	if err := RenderReport(&buf, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+strings.TrimSuffix(filepath.Base(path), ".html")+".tmp.html")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func chartViewOf(c Chart) chartView {
	v := chartView{
		Title:  c.Title,
		Empty:  c.Empty(),
		Pie:    c.Kind == KindPie,
		Width:  chartWidth,
		Height: chartHeight,
	}
	if v.Empty {
		return v
	}
	if v.Pie {
		v.Slices = pieSlices(c)
		return v
	}

	plotW := float64(chartWidth - padLeft - padRight)
	plotH := float64(chartHeight - padTop - padBottom)
	base := float64(padTop) + plotH
	v.AxisX = num(padLeft)
	v.AxisY = num(base)
	v.AxisEnd = num(chartWidth - padRight)

	max := 0.0
	for _, val := range c.Values {
		max = math.Max(max, val)
	}
	if max == 0 {
		max = 1
	}
	slot := plotW / float64(len(c.Values))
	bw := slot * 0.6
	for i, val := range c.Values {
		h := math.Max(val, 0) / max * plotH
		x := float64(padLeft) + float64(i)*slot + (slot-bw)/2
		y := base - h
		v.Bars = append(v.Bars, barView{
			X:      num(x),
			Y:      num(y),
			W:      num(bw),
			H:      num(h),
			LabelX: num(x + bw/2),
			ValueY: num(y - 4),
			LabelY: num(base + 16),
			Label:  c.Labels[i],
			Text:   strconv.FormatFloat(val, 'f', -1, 64),
			Color:  palette[i%len(palette)],
		})
	}
	return v
}

func pieSlices(c Chart) []sliceView {
	total := 0.0
	for _, val := range c.Values {
		total += math.Max(val, 0)
	}

	cx, cy, r := float64(chartHeight)/2, float64(chartHeight)/2, float64(pieRadius)
	angle := -math.Pi / 2
	slices := make([]sliceView, 0, len(c.Values))
	for i, val := range c.Values {
		s := sliceView{
			CX:    num(cx),
			CY:    num(cy),
			R:     num(r),
			Label: c.Labels[i],
			Text:  strconv.FormatFloat(val, 'f', -1, 64) + "%",
			Color: palette[i%len(palette)],
		}
		if val > 0 {
			share := val / total
			if share >= 1 {
				s.Full = true
			} else {
				sweep := share * 2 * math.Pi
				x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
				x2, y2 := cx+r*math.Cos(angle+sweep), cy+r*math.Sin(angle+sweep)
				large := 0
				if sweep > math.Pi {
					large = 1
				}
				s.Path = fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
					num(cx), num(cy), num(x1), num(y1), num(r), num(r), large, num(x2), num(y2))
				angle += sweep
			}
		}
		slices = append(slices, s)
	}
	return slices
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

package visualize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const chartSheet = "graficos"

// WriteChartWorkbook writes each chart's data to a sheet of its own and adds
// a native chart for it on the chart sheet. Charts with nothing to draw get
// their data sheet but no chart.
func WriteChartWorkbook(path string, charts []Chart) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", chartSheet); err != nil {
		return fmt.Errorf("rename chart sheet: %w", err)
	}

	drawn := 0
	for _, c := range charts {
		if _, err := f.NewSheet(c.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", c.Name, err)
		}
		if err := f.SetSheetRow(c.Name, "A1", &[]any{"label", "value"}); err != nil {
			return fmt.Errorf("write %s header: %w", c.Name, err)
		}
		for i, label := range c.Labels {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(c.Name, cell, &[]any{label, c.Values[i]}); err != nil {
				return fmt.Errorf("write %s data: %w", c.Name, err)
			}
		}
		if c.Empty() {
			continue
		}

		anchor, err := excelize.CoordinatesToCellName(1, 1+drawn*18)
		if err != nil {
			return err
		}
		if err := f.AddChart(chartSheet, anchor, nativeChart(c)); err != nil {
			return fmt.Errorf("add chart %s: %w", c.Name, err)
		}
		drawn++
	}
	f.SetActiveSheet(0)

	tmp := filepath.Join(dir, "."+strings.TrimSuffix(filepath.Base(path), ".xlsx")+".tmp.xlsx")
	defer os.Remove(tmp)
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save chart workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func nativeChart(c Chart) *excelize.Chart {
	last := len(c.Labels) + 1
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", c.Name),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", c.Name, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", c.Name, last),
		}},
		Title:    []excelize.RichTextRun{{Text: c.Title}},
		Legend:   excelize.ChartLegend{Position: "none"},
		PlotArea: excelize.ChartPlotArea{ShowVal: true},
	}
	if c.Kind == KindPie {
		chart.Type = excelize.Pie
		chart.Legend = excelize.ChartLegend{Position: "right"}
		chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true}
	}
	return chart
}

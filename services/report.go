package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"trend-collector/domain"
)

// WriteTrendReport renders one collection run as a static HTML artifact: a
// bar chart of view counts in rank order and a pie of discovery sources.
func WriteTrendReport(path string, result domain.CollectionResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Trend View Counts",
		Subtitle: result.CollectedAt.Format(time.RFC1123),
	}))
	var names []string
	var views []opts.BarData
	for _, t := range result.Trends {
		names = append(names, t.Keyword)
		views = append(views, opts.BarData{Value: t.ViewCount})
	}
	bar.SetXAxis(names).AddSeries("Views", views)

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Discovery Sources"}))
	sourceCounts := map[string]int{}
	for _, t := range result.Trends {
		source := t.Metadata["source"]
		if source == "" {
			source = "unknown"
		}
		sourceCounts[source]++
	}
	var slices []opts.PieData
	for name, count := range sourceCounts {
		slices = append(slices, opts.PieData{Name: name, Value: count})
	}
	pie.AddSeries("Trends", slices)

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	if err := pie.Render(f); err != nil {
		return fmt.Errorf("failed to render pie chart: %w", err)
	}
	return nil
}

package chart

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const precision = 3

func round(v float64) float64 {
	ratio := math.Pow(10, precision)
	return math.Round(v*ratio) / ratio
}

/*
Render writes an HTML bar chart of the summary: relations on the x axis, one
hit rate series per method, each followed by its standard error series
*/
func Render(w io.Writer, s Summary, title string) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "hit rate per relation",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hit rate", Min: 0, Max: 1}),
	)

	bar.SetXAxis(s.Relations)
	for _, m := range s.Methods {
		rates := make([]opts.BarData, 0, len(s.Relations))
		errs := make([]opts.BarData, 0, len(s.Relations))
		for _, rel := range s.Relations {
			rates = append(rates, opts.BarData{Name: rel, Value: round(s.Rate(rel, m))})
			errs = append(errs, opts.BarData{Name: rel, Value: round(s.StdErr(rel, m))})
		}
		bar.AddSeries(m, rates)
		bar.AddSeries(m+" s.e.", errs)
	}

	return bar.Render(w)
}

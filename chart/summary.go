package chart

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"analogy-eval/relation"
	"analogy-eval/suggest"
)

/*
Cell holds the predictions of one method on one relation
*/
type Cell struct {
	Hits  int
	Total int
	Rate  float64
	// standard error of Rate, 0 below two predictions
	StdErr float64
}

/*
Summary is the hit rate of every method on every relation
*/
type Summary struct {
	Relations []string
	Methods   []string
	// Cells[relation][method]
	Cells map[string]map[string]Cell
}

/*
Summarize groups records by relation base name and method
*/
func Summarize(records []suggest.Record) Summary {
	hits := make(map[string]map[string][]float64)
	methods := make(map[string]bool)

	for _, r := range records {
		rel := relation.BaseName(r.Relation)
		if hits[rel] == nil {
			hits[rel] = make(map[string][]float64)
		}
		v := 0.0
		if r.Hit {
			v = 1
		}
		hits[rel][r.Method] = append(hits[rel][r.Method], v)
		methods[r.Method] = true
	}

	s := Summary{Cells: make(map[string]map[string]Cell, len(hits))}
	for rel, byMethod := range hits {
		s.Relations = append(s.Relations, rel)
		s.Cells[rel] = make(map[string]Cell, len(byMethod))
		for m, xs := range byMethod {
			c := Cell{Total: len(xs)}
			for _, x := range xs {
				c.Hits += int(x)
			}
			if len(xs) > 1 {
				var std float64
				c.Rate, std = stat.MeanStdDev(xs, nil)
				c.StdErr = stat.StdErr(std, float64(len(xs)))
			} else {
				c.Rate = xs[0]
			}
			s.Cells[rel][m] = c
		}
	}
	for m := range methods {
		s.Methods = append(s.Methods, m)
	}
	sort.Strings(s.Relations)
	sort.Strings(s.Methods)

	return s
}

/*
Rate returns the hit rate of method on rel, 0 when it made no predictions
*/
func (s Summary) Rate(rel, method string) float64 {
	return s.Cells[rel][method].Rate
}

/*
StdErr returns the standard error of the hit rate of method on rel
*/
func (s Summary) StdErr(rel, method string) float64 {
	return s.Cells[rel][method].StdErr
}

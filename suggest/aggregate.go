package suggest

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"analogy-eval/relation"
)

/*
Pair is a record with its validation outcome
*/
type Pair struct {
	Record
	relation.Result
}

/*
Aggregator turns prediction records into a sampled annotation table
*/
type Aggregator struct {
	Validator  *relation.Validator
	Annotators []string
	// distinct source words drawn per relation
	SampleSize int
	Rand       *rand.Rand
}

/*
NewAggregator creates an aggregator. A zero seed draws one from the clock.
*/
func NewAggregator(v *relation.Validator, annotators []string, sampleSize int, seed uint64) *Aggregator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Aggregator{
		Validator:  v,
		Annotators: annotators,
		SampleSize: sampleSize,
		Rand:       rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

type groupKey struct {
	wordA    string
	wordB    string
	relation string
}

type group struct {
	pair    Pair
	hit     bool
	valid   bool
	methods map[string]int
}

/*
Validate runs the validator over every record
*/
func (a *Aggregator) Validate(records []Record) ([]Pair, error) {
	cache := make(map[groupKey]relation.Result)

	pairs := make([]Pair, 0, len(records))
	for _, rec := range records {
		k := groupKey{rec.WordA, rec.WordB, rec.Relation}
		res, ok := cache[k]
		if !ok {
			var err error
			res, err = a.Validator.Validate(rec.Relation, rec.WordA, rec.WordB)
			if err != nil {
				return nil, fmt.Errorf("validate %s %s -> %s: %w", rec.Relation, rec.WordA, rec.WordB, err)
			}
			cache[k] = res
		}
		pairs = append(pairs, Pair{Record: rec, Result: res})
	}
	return pairs, nil
}

/*
Build validates, groups, samples and formats records into a table.

Rows are keyed by (wordA, wordB, relation); hit and valid hold only if they
hold for every record of the row, and each method column counts the
records the method produced. Rows are sorted by raw relation, wordA and
wordB, then the relation is replaced by its example. Votes start at zero
and stay zero on invalid rows.
*/
func (a *Aggregator) Build(records []Record) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	pairs, err := a.Validate(records)
	if err != nil {
		return nil, err
	}

	groups := make(map[groupKey]*group)
	var order []groupKey
	methodSet := make(map[string]bool)

	for _, p := range pairs {
		methodSet[p.Method] = true

		k := groupKey{p.WordA, p.WordB, p.Record.Relation}
		g, ok := groups[k]
		if !ok {
			g = &group{pair: p, hit: true, valid: true, methods: make(map[string]int)}
			groups[k] = g
			order = append(order, k)
		}
		g.hit = g.hit && p.Hit
		g.valid = g.valid && p.Valid
		g.methods[p.Method]++
	}

	keys := make([]Key, len(order))
	for i, k := range order {
		keys[i] = Key{WordA: k.wordA, Relation: k.relation}
	}
	selected := Sample(keys, a.SampleSize, a.Rand)

	methods := make([]string, 0, len(methodSet))
	for m := range methodSet {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	var kept []groupKey
	for _, k := range order {
		if selected[Key{WordA: k.wordA, Relation: k.relation}] {
			kept = append(kept, k)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].relation != kept[j].relation {
			return kept[i].relation < kept[j].relation
		}
		if kept[i].wordA != kept[j].wordA {
			return kept[i].wordA < kept[j].wordA
		}
		return kept[i].wordB < kept[j].wordB
	})

	table := &Table{
		Methods:    methods,
		Annotators: append([]string(nil), a.Annotators...),
		Rows:       make([]Row, 0, len(kept)),
	}

	for _, k := range kept {
		g := groups[k]

		example, err := a.Validator.Catalog.Example(k.relation)
		if err != nil {
			return nil, err
		}

		row := Row{
			WordA:    k.wordA,
			LemmaA:   g.pair.LemmaA,
			PosA:     g.pair.PosA,
			WordB:    k.wordB,
			LemmaB:   g.pair.LemmaB,
			PosB:     g.pair.PosB,
			Relation: example,
			Hit:      boolToInt(g.hit),
			Valid:    boolToInt(g.valid),
			Methods:  make([]int, len(methods)),
			Votes:    make([]int, len(table.Annotators)),
		}
		for i, m := range methods {
			row.Methods[i] = g.methods[m]
		}
		table.Rows = append(table.Rows, row)
	}

	table.ZeroInvalidVotes()

	log.WithFields(log.Fields{
		"records": len(records),
		"pairs":   len(order),
		"rows":    len(table.Rows),
		"methods": len(methods),
	}).Info("suggestion table built")

	return table, nil
}

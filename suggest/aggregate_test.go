package suggest

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analogy-eval/morpho"
	"analogy-eval/relation"
)

const dictLines = `crânio crânio+N.1
osso osso+N.1
duro duro+A.1
mole mole+A.1
roda roda+N.1
carro carro+N.1
rodas roda+N.2
`

func newAggregator(t *testing.T, sampleSize int, annotators ...string) *Aggregator {
	t.Helper()
	d := morpho.New()
	require.NoError(t, d.Read(strings.NewReader(dictLines), "test.dict"))
	v := relation.NewValidator(relation.DefaultCatalog(), d)
	return NewAggregator(v, annotators, sampleSize, 7)
}

func TestBuildEndToEnd(t *testing.T) {
	agg := newAggregator(t, 10, "ana", "bia")

	table, err := agg.Build([]Record{
		{WordA: "crânio", WordB: "duro", Method: "3CosAvg", Relation: "attribute-NounSynset-AdjectiveSynset", Hit: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"3CosAvg"}, table.Methods)
	assert.Equal(t, []string{"ana", "bia"}, table.Annotators)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, Row{
		WordA:    "crânio",
		LemmaA:   "crânio",
		PosA:     "N",
		WordB:    "duro",
		LemmaB:   "duro",
		PosB:     "A",
		Relation: "attribute X-N Y-A : crânio -> duro",
		Hit:      1,
		Valid:    1,
		Methods:  []int{1},
		Votes:    []int{0, 0},
	}, table.Rows[0])

	assert.Equal(t, []string{
		"wordA", "lemmaA", "posA", "wordB", "lemmaB", "posB",
		"relation", "hit", "valid", "3CosAvg", "ana", "bia",
	}, table.Header())
}

func TestBuildGroupsDuplicates(t *testing.T) {
	agg := newAggregator(t, 10, "ana")
	rel := "partHolonymOf-NounSynset-NounSynset"

	table, err := agg.Build([]Record{
		{WordA: "roda", WordB: "carro", Method: "SimilarToB", Relation: rel, Hit: true},
		{WordA: "roda", WordB: "carro", Method: "LRCos", Relation: rel, Hit: true},
		{WordA: "roda", WordB: "carro", Method: "LRCos", Relation: rel, Hit: false},
		{WordA: "roda", WordB: "osso", Method: "3CosAvg", Relation: rel, Hit: true},
	})
	require.NoError(t, err)

	// methods are sorted
	assert.Equal(t, []string{"3CosAvg", "LRCos", "SimilarToB"}, table.Methods)
	require.Len(t, table.Rows, 2)

	carro := table.Rows[0]
	assert.Equal(t, "carro", carro.WordB)
	assert.Equal(t, 0, carro.Hit, "hit is AND-reduced")
	assert.Equal(t, 1, carro.Valid)
	assert.Equal(t, []int{0, 2, 1}, carro.Methods)

	osso := table.Rows[1]
	assert.Equal(t, "osso", osso.WordB)
	assert.Equal(t, 1, osso.Hit)
	assert.Equal(t, []int{1, 0, 0}, osso.Methods)
}

func TestBuildSortsAndReplacesRelation(t *testing.T) {
	agg := newAggregator(t, 10)

	table, err := agg.Build([]Record{
		{WordA: "roda", WordB: "carro", Method: "m", Relation: "partHolonymOf-NounSynset-NounSynset"},
		{WordA: "osso", WordB: "mole", Method: "m", Relation: "attribute-NounSynset-AdjectiveSynset"},
		{WordA: "crânio", WordB: "duro", Method: "m", Relation: "attribute-NounSynset-AdjectiveSynset"},
		{WordA: "crânio", WordB: "mole", Method: "m", Relation: "attribute-NounSynset-AdjectiveSynset"},
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)

	var got []string
	for _, r := range table.Rows {
		got = append(got, r.WordA+">"+r.WordB)
	}
	assert.Equal(t, []string{"crânio>duro", "crânio>mole", "osso>mole", "roda>carro"}, got)

	assert.Equal(t, "attribute X-N Y-A : crânio -> duro", table.Rows[0].Relation)
	assert.Equal(t, "partHolonymOf X-N Y-N : roda -> carro", table.Rows[3].Relation)
}

func TestBuildInvalidRowsHaveNoVotes(t *testing.T) {
	agg := newAggregator(t, 10, "ana", "bia")
	rel := "partHolonymOf-NounSynset-NounSynset"

	table, err := agg.Build([]Record{
		{WordA: "rodas", WordB: "roda", Method: "m", Relation: rel, Hit: true}, // same lemma
		{WordA: "roda", WordB: "voar", Method: "m", Relation: rel, Hit: false}, // unknown word
		{WordA: "roda", WordB: "carro", Method: "m", Relation: rel, Hit: true},
	})
	require.NoError(t, err)

	valid := 0
	for _, row := range table.Rows {
		if row.Valid == 0 {
			for _, v := range row.Votes {
				assert.Equal(t, 0, v)
			}
			continue
		}
		valid++
	}
	assert.Equal(t, 1, valid)
}

func TestBuildValidIsAndReduced(t *testing.T) {
	d := morpho.New()
	require.NoError(t, d.Read(strings.NewReader(dictLines), "test.dict"))

	calls := 0
	v := relation.NewValidator(relation.DefaultCatalog(), countingDict{d, &calls})
	agg := NewAggregator(v, nil, 10, 1)

	rel := "partHolonymOf-NounSynset-NounSynset"
	table, err := agg.Build([]Record{
		{WordA: "roda", WordB: "carro", Method: "a", Relation: rel},
		{WordA: "roda", WordB: "carro", Method: "b", Relation: rel},
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Rows[0].Valid)
	// identical records are validated once
	assert.Equal(t, 2, calls)
}

type countingDict struct {
	d     *morpho.Dictionary
	calls *int
}

func (c countingDict) LemmaAndPOS(word, typeTag string) (string, string, bool) {
	*c.calls++
	return c.d.LemmaAndPOS(word, typeTag)
}

func TestBuildSampleSize(t *testing.T) {
	d := morpho.New()
	var records []Record
	for i := 0; i < 30; i++ {
		a, b := fmt.Sprintf("a%02d", i), fmt.Sprintf("b%02d", i)
		require.NoError(t, d.Read(strings.NewReader(fmt.Sprintf("%s %s+N.1\n%s %s+N.1\n", a, a, b, b)), "gen"))
		records = append(records,
			Record{WordA: a, WordB: b, Method: "m", Relation: "partHolonymOf-NounSynset-NounSynset"},
			Record{WordA: a, WordB: a + "x", Method: "m", Relation: "partHolonymOf-NounSynset-NounSynset"},
		)
		if i < 4 {
			records = append(records, Record{WordA: a, WordB: b, Method: "m", Relation: "causes-VerbSynset-VerbSynset"})
		}
	}

	v := relation.NewValidator(relation.DefaultCatalog(), d)
	table, err := NewAggregator(v, []string{"ana"}, 6, 99).Build(records)
	require.NoError(t, err)

	words := make(map[string]map[string]bool)
	for _, row := range table.Rows {
		if words[row.Relation] == nil {
			words[row.Relation] = make(map[string]bool)
		}
		words[row.Relation][row.WordA] = true
	}

	holonym, _ := relation.DefaultCatalog().Example("partHolonymOf")
	causes, _ := relation.DefaultCatalog().Example("causes")
	assert.Len(t, words[holonym], 6)
	assert.Len(t, words[causes], 4)
	// every row of a sampled word is kept
	assert.Len(t, table.Rows, 6*2+4)
}

func TestBuildUnknownRelationIsFatal(t *testing.T) {
	agg := newAggregator(t, 10)

	_, err := agg.Build([]Record{
		{WordA: "roda", WordB: "carro", Method: "m", Relation: "partHolonymOf-NounSynset-NounSynset"},
		{WordA: "roda", WordB: "carro", Method: "m", Relation: "hypernymOf-NounSynset-NounSynset"},
	})
	assert.True(t, errors.Is(err, relation.ErrUnknownRelation))
}

func TestBuildNoRecords(t *testing.T) {
	_, err := newAggregator(t, 10).Build(nil)
	assert.True(t, errors.Is(err, ErrNoRecords))
}

func TestZeroInvalidVotes(t *testing.T) {
	table := &Table{
		Annotators: []string{"ana", "bia"},
		Rows: []Row{
			{Valid: 1, Votes: []int{1, 0}},
			{Valid: 0, Votes: []int{1, 1}},
		},
	}
	table.ZeroInvalidVotes()

	assert.Equal(t, []int{1, 0}, table.Rows[0].Votes)
	assert.Equal(t, []int{0, 0}, table.Rows[1].Votes)
	assert.Equal(t, 1, table.Annotator("bia"))
	assert.Equal(t, -1, table.Annotator("caio"))
}

package suggest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"analogy-eval/relation"
)

/*
Result is one benchmark run: a method evaluated on one relation
*/
type Result struct {
	Method      string
	Subcategory string
	Details     []Detail
}

/*
Detail holds the predictions made for one source word
*/
type Detail struct {
	WordA       string
	Predictions []Prediction
}

/*
Prediction is a predicted target word and whether it was a hit
*/
type Prediction struct {
	WordB string
	Hit   bool
}

/*
Relation returns the relation-with-types string of the run, e.g.
"partHolonymOf-CoreConcept-NounSynset"
*/
func (r Result) Relation() string {
	rel, _, _ := strings.Cut(r.Subcategory, ".")
	return rel
}

/*
Record is one evaluated analogy instance
*/
type Record struct {
	WordA    string
	WordB    string
	Method   string
	Relation string
	Hit      bool
}

// Wire format of the analogy benchmark dumps. Pointers tell missing keys
// apart from zero values.
type rawResult struct {
	Setup   *rawSetup    `json:"experiment_setup"`
	Details *[]rawDetail `json:"details"`
}

type rawSetup struct {
	Method      *string `json:"method"`
	Subcategory *string `json:"subcategory"`
}

type rawDetail struct {
	B           *string          `json:"b"`
	Predictions *[]rawPrediction `json:"predictions"`
}

type rawPrediction struct {
	Answer *string `json:"answer"`
	Hit    *bool   `json:"hit"`
}

/*
LoadResults reads and concatenates the prediction dumps at paths
*/
func LoadResults(paths ...string) ([]Result, error) {
	var results []Result
	for _, path := range paths {
		log.WithField("file", path).Debug("collecting json")
		rs, err := loadResultFile(path)
		if err != nil {
			return nil, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

func loadResultFile(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeResults(f, path)
}

/*
DecodeResults decodes one prediction dump. source names the dump in errors.
Any missing key fails the whole dump.
*/
func DecodeResults(r io.Reader, source string) ([]Result, error) {
	var raw []rawResult
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decode JSON: %w", source, err)
	}

	missing := func(format string, args ...any) error {
		return &KeyError{Source: source, Path: fmt.Sprintf(format, args...)}
	}

	results := make([]Result, 0, len(raw))
	for i, rr := range raw {
		if rr.Setup == nil {
			return nil, missing("[%d].experiment_setup", i)
		}
		if rr.Setup.Method == nil {
			return nil, missing("[%d].experiment_setup.method", i)
		}
		if rr.Setup.Subcategory == nil {
			return nil, missing("[%d].experiment_setup.subcategory", i)
		}
		if rr.Details == nil {
			return nil, missing("[%d].details", i)
		}

		res := Result{
			Method:      *rr.Setup.Method,
			Subcategory: *rr.Setup.Subcategory,
			Details:     make([]Detail, 0, len(*rr.Details)),
		}

		for j, rd := range *rr.Details {
			if rd.B == nil {
				return nil, missing("[%d].details[%d].b", i, j)
			}
			if rd.Predictions == nil {
				return nil, missing("[%d].details[%d].predictions", i, j)
			}

			d := Detail{WordA: *rd.B, Predictions: make([]Prediction, 0, len(*rd.Predictions))}
			for k, rp := range *rd.Predictions {
				if rp.Answer == nil {
					return nil, missing("[%d].details[%d].predictions[%d].answer", i, j, k)
				}
				if rp.Hit == nil {
					return nil, missing("[%d].details[%d].predictions[%d].hit", i, j, k)
				}
				d.Predictions = append(d.Predictions, Prediction{WordB: *rp.Answer, Hit: *rp.Hit})
			}
			res.Details = append(res.Details, d)
		}
		results = append(results, res)
	}

	return results, nil
}

/*
Flatten turns benchmark results into records. When allow is not empty only
relations whose base name it lists are kept.
*/
func Flatten(results []Result, allow []string) []Record {
	allowed := make(map[string]bool, len(allow))
	for _, a := range allow {
		allowed[a] = true
	}

	var records []Record
	for _, res := range results {
		rel := res.Relation()
		log.WithFields(log.Fields{
			"method":   res.Method,
			"relation": rel,
		}).Debug("structuring details")

		if len(allowed) > 0 && !allowed[relation.BaseName(rel)] {
			continue
		}

		for _, d := range res.Details {
			wordA := norm.NFC.String(d.WordA)
			for _, p := range d.Predictions {
				records = append(records, Record{
					WordA:    wordA,
					WordB:    norm.NFC.String(p.WordB),
					Method:   res.Method,
					Relation: rel,
					Hit:      p.Hit,
				})
			}
		}
	}
	return records
}

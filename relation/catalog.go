package relation

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Synset type tags used in relation strings.
const (
	Noun        = "NounSynset"
	Verb        = "VerbSynset"
	Adjective   = "AdjectiveSynset"
	Adverb      = "AdverbSynset"
	CoreConcept = "CoreConcept"
)

/*
Relation is a semantic relation between a source and a target synset
*/
type Relation struct {
	Name string
	// allowed source types, in the order they are tried for CoreConcept
	Domain []string
	// allowed target types
	Range []string
	// shown to annotators in place of the raw relation string
	Example string
}

/*
InDomain reports whether typeTag is an allowed source type
*/
func (r Relation) InDomain(typeTag string) bool {
	return contains(r.Domain, typeTag)
}

/*
InRange reports whether typeTag is an allowed target type
*/
func (r Relation) InRange(typeTag string) bool {
	return contains(r.Range, typeTag)
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

/*
Catalog is an ordered, read-only table of relations
*/
type Catalog struct {
	relations []Relation
	byName    map[string]int
}

/*
NewCatalog builds a catalog keeping the given order
*/
func NewCatalog(relations ...Relation) *Catalog {
	c := &Catalog{byName: make(map[string]int, len(relations))}
	for _, r := range relations {
		if _, dup := c.byName[r.Name]; dup {
			continue
		}
		c.byName[r.Name] = len(c.relations)
		c.relations = append(c.relations, r)
	}
	return c
}

var all = []string{Noun, Verb, Adjective, Adverb}

/*
DefaultCatalog returns the relations of the benchmark
*/
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Relation{"attribute", []string{Noun}, []string{Adjective}, "attribute X-N Y-A : crânio -> duro"},
		Relation{"causes", []string{Verb}, []string{Verb}, "causes X-V Y-V : matar -> morrer"},
		Relation{"entails", []string{Verb}, []string{Verb}, "entails X-V Y-V : roncar -> dormir"},
		Relation{"memberHolonymOf", []string{Noun}, []string{Noun}, "memberHolonymOf X-N Y-N : árvore -> floresta"},
		Relation{"memberMeronymOf", []string{Noun}, []string{Noun}, "memberMeronymOf X-N Y-N : floresta -> árvore"},
		Relation{"partHolonymOf", []string{Noun}, []string{Noun}, "partHolonymOf X-N Y-N : roda -> carro"},
		Relation{"partMeronymOf", []string{Noun}, []string{Noun}, "partMeronymOf X-N Y-N : carro -> roda"},
		Relation{"substanceHolonymOf", []string{Noun}, []string{Noun}, "substanceHolonymOf X-N Y-N : farinha -> pão"},
		Relation{"substanceMeronymOf", []string{Noun}, []string{Noun}, "substanceMeronymOf X-N Y-N : pão -> farinha"},
		Relation{"agent", []string{Verb}, []string{Noun}, "agent X-V Y-N : ensinar -> professor"},
		Relation{"byMeansOf", []string{Noun, Verb}, []string{Noun}, "byMeansOf X-N/V Y-N : cortar -> faca"},
		Relation{"antonymOf", all, all, "antonymOf X-N/V/A/ADV Y-N/V/A/ADV : quente -> frio"},
	)
}

/*
Names returns the relation names in catalog order
*/
func (c *Catalog) Names() []string {
	names := make([]string, len(c.relations))
	for i, r := range c.relations {
		names[i] = r.Name
	}
	return names
}

/*
Get returns the relation with exactly this name
*/
func (c *Catalog) Get(name string) (Relation, error) {
	i, ok := c.byName[name]
	if !ok {
		return Relation{}, fmt.Errorf("%w: %q", ErrUnknownRelation, name)
	}
	return c.relations[i], nil
}

/*
Resolve finds the relation named in a raw relation string such as
"Analogy_partHolonymOf-CoreConcept-NounSynset".

The parsed base name is tried first. Legacy strings that do not parse are
matched by containment in catalog order, the first match winning.
*/
func (c *Catalog) Resolve(raw string) (Relation, error) {
	if r, err := c.Get(BaseName(raw)); err == nil {
		return r, nil
	}

	var matches []Relation
	for _, r := range c.relations {
		if strings.Contains(raw, r.Name) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return Relation{}, fmt.Errorf("%w: %q", ErrUnknownRelation, raw)
	case 1:
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		log.WithFields(log.Fields{
			"relation": raw,
			"matches":  names,
		}).Warn("ambiguous relation string, using the first match")
	}
	return matches[0], nil
}

/*
Example returns the annotator-facing example of the relation named in raw
*/
func (c *Catalog) Example(raw string) (string, error) {
	r, err := c.Resolve(raw)
	if err != nil {
		return "", err
	}
	return r.Example, nil
}

/*
BaseName extracts the relation name from "prefix_name-typeA-typeB"
*/
func BaseName(raw string) string {
	head, _, _ := strings.Cut(raw, "-")
	if i := strings.LastIndex(head, "_"); i >= 0 {
		head = head[i+1:]
	}
	return head
}

/*
Parse splits a relation string into its name and its source and target
type tags
*/
func Parse(raw string) (name, typeA, typeB string, err error) {
	parts := strings.Split(raw, "-")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformedRelation, raw)
	}
	return BaseName(raw), parts[1], parts[2], nil
}

package relation

/*
Dictionary resolves a word under a synset type tag
*/
type Dictionary interface {
	LemmaAndPOS(word, typeTag string) (pos, lemma string, ok bool)
}

/*
Result is the outcome of validating a word pair against a relation
*/
type Result struct {
	Valid  bool
	PosA   string
	LemmaA string
	PosB   string
	LemmaB string
}

/*
Validator checks that a word pair is a lexically valid instance of a relation
*/
type Validator struct {
	Catalog    *Catalog
	Dictionary Dictionary

	// ResolveAFromB resolves the first lemma from the second word under the
	// second type. The first revisions of the tool did this; it only lets
	// CoreConcept pairs through.
	ResolveAFromB bool
}

/*
NewValidator creates a validator over a catalog and a dictionary
*/
func NewValidator(catalog *Catalog, dict Dictionary) *Validator {
	return &Validator{Catalog: catalog, Dictionary: dict}
}

/*
Validate decides whether (wordA, wordB) is an instance of the relation in raw,
e.g. "partHolonymOf-CoreConcept-NounSynset".

The pair is valid when both words resolve to lemmas, the lemmas differ and
the types lie in the relation's domain and range. A CoreConcept source type
tries every domain type in order. An unknown relation is an error; an
unresolvable word is not.
*/
func (v *Validator) Validate(raw, wordA, wordB string) (Result, error) {
	name, typeA, typeB, err := Parse(raw)
	if err != nil {
		return Result{}, err
	}

	rel, err := v.Catalog.Get(name)
	if err != nil {
		return Result{}, err
	}

	var res Result
	res.PosB, res.LemmaB, _ = v.Dictionary.LemmaAndPOS(wordB, typeB)
	if v.ResolveAFromB {
		res.PosA, res.LemmaA, _ = v.Dictionary.LemmaAndPOS(wordB, typeB)
	} else {
		res.PosA, res.LemmaA, _ = v.Dictionary.LemmaAndPOS(wordA, typeA)
	}

	if distinct(res) && rel.InDomain(typeA) && rel.InRange(typeB) {
		res.Valid = true
		return res, nil
	}

	if typeA != CoreConcept {
		return res, nil
	}

	for _, candidate := range rel.Domain {
		res.PosA, res.LemmaA, _ = v.Dictionary.LemmaAndPOS(wordA, candidate)
		if distinct(res) && rel.InRange(typeB) {
			res.Valid = true
			return res, nil
		}
	}

	return res, nil
}

// distinct reports whether both lemmas resolved and differ.
func distinct(res Result) bool {
	return res.LemmaA != "" && res.LemmaB != "" && res.LemmaA != res.LemmaB
}

package suggest

import (
	"math/rand/v2"
	"sort"
)

/*
Key identifies a source word within a relation
*/
type Key struct {
	WordA    string
	Relation string
}

/*
Sample draws, for each relation, up to size distinct source words without
replacement. A relation with fewer words keeps all of them.
*/
func Sample(keys []Key, size int, rng *rand.Rand) map[Key]bool {
	byRelation := make(map[string][]string)
	seen := make(map[Key]bool)
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		byRelation[k.Relation] = append(byRelation[k.Relation], k.WordA)
	}

	relations := make([]string, 0, len(byRelation))
	for rel := range byRelation {
		relations = append(relations, rel)
	}
	sort.Strings(relations)

	selected := make(map[Key]bool)
	for _, rel := range relations {
		words := byRelation[rel]
		if len(words) > size {
			rng.Shuffle(len(words), func(i, j int) {
				words[i], words[j] = words[j], words[i]
			})
			words = words[:size]
		}
		for _, w := range words {
			selected[Key{WordA: w, Relation: rel}] = true
		}
	}
	return selected
}

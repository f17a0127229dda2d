package suggest

// Fixed leading columns of an annotation table.
var fixedColumns = []string{
	"wordA", "lemmaA", "posA",
	"wordB", "lemmaB", "posB",
	"relation", "hit", "valid",
}

/*
Row is one (wordA, wordB, relation) suggestion shown to annotators
*/
type Row struct {
	WordA    string `json:"wordA"`
	LemmaA   string `json:"lemmaA"`
	PosA     string `json:"posA"`
	WordB    string `json:"wordB"`
	LemmaB   string `json:"lemmaB"`
	PosB     string `json:"posB"`
	Relation string `json:"relation"`
	Hit      int    `json:"hit"`
	Valid    int    `json:"valid"`
	// per-method prediction counts, aligned with Table.Methods
	Methods []int `json:"methods"`
	// per-annotator votes, aligned with Table.Annotators
	Votes []int `json:"votes"`
}

/*
Table is an annotation table
*/
type Table struct {
	Methods    []string `json:"methodNames"`
	Annotators []string `json:"annotators"`
	Rows       []Row    `json:"rows"`
}

/*
Header returns the CSV column names
*/
func (t *Table) Header() []string {
	header := make([]string, 0, len(fixedColumns)+len(t.Methods)+len(t.Annotators))
	header = append(header, fixedColumns...)
	header = append(header, t.Methods...)
	header = append(header, t.Annotators...)
	return header
}

/*
Annotator returns the vote column index of user, or -1
*/
func (t *Table) Annotator(user string) int {
	for i, a := range t.Annotators {
		if a == user {
			return i
		}
	}
	return -1
}

/*
ZeroInvalidVotes clears every vote cast on a row that is not valid
*/
func (t *Table) ZeroInvalidVotes() {
	for i := range t.Rows {
		if t.Rows[i].Valid != 0 {
			continue
		}
		for j := range t.Rows[i].Votes {
			t.Rows[i].Votes[j] = 0
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

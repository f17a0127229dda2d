package db

/*
Vote is an annotator's judgement on one row of a table
*/
type Vote struct {
	Table string `json:"table"`
	Row   int    `json:"row"`
	User  string `json:"user"`
	Value int    `json:"vote"`
}

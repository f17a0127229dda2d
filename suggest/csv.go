package suggest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
)

/*
WriteCSV writes the table with a header row and no index column
*/
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}

	record := make([]string, 0, len(fixedColumns)+len(t.Methods)+len(t.Annotators))
	for _, row := range t.Rows {
		record = append(record[:0],
			row.WordA, row.LemmaA, row.PosA,
			row.WordB, row.LemmaB, row.PosB,
			row.Relation, strconv.Itoa(row.Hit), strconv.Itoa(row.Valid),
		)
		for _, n := range row.Methods {
			record = append(record, strconv.Itoa(n))
		}
		for _, v := range row.Votes {
			record = append(record, strconv.Itoa(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

/*
SaveCSV writes the table to path
*/
func SaveCSV(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	log.WithFields(log.Fields{
		"file": path,
		"rows": len(t.Rows),
	}).Info("saving output")

	return WriteCSV(f, t)
}

/*
ReadCSV reads a table written by WriteCSV. Columns after the fixed ones are
votes when named in annotators and method counts otherwise.
*/
func ReadCSV(r io.Reader, annotators []string) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(fixedColumns) {
		return nil, fmt.Errorf("%w: %d columns", ErrBadHeader, len(header))
	}
	for i, col := range fixedColumns {
		if header[i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], col)
		}
	}

	isAnnotator := make(map[string]bool, len(annotators))
	for _, a := range annotators {
		isAnnotator[a] = true
	}

	t := &Table{}
	var methodCols, voteCols []int
	for i, col := range header[len(fixedColumns):] {
		idx := len(fixedColumns) + i
		if isAnnotator[col] {
			t.Annotators = append(t.Annotators, col)
			voteCols = append(voteCols, idx)
		} else {
			t.Methods = append(t.Methods, col)
			methodCols = append(methodCols, idx)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		ints := func(cols []int) ([]int, error) {
			out := make([]int, len(cols))
			for i, c := range cols {
				n, err := strconv.Atoi(rec[c])
				if err != nil {
					return nil, fmt.Errorf("line %d column %q: %w", line, header[c], err)
				}
				out[i] = n
			}
			return out, nil
		}

		flags, err := ints([]int{7, 8})
		if err != nil {
			return nil, err
		}
		methods, err := ints(methodCols)
		if err != nil {
			return nil, err
		}
		votes, err := ints(voteCols)
		if err != nil {
			return nil, err
		}

		t.Rows = append(t.Rows, Row{
			WordA:    rec[0],
			LemmaA:   rec[1],
			PosA:     rec[2],
			WordB:    rec[3],
			LemmaB:   rec[4],
			PosB:     rec[5],
			Relation: rec[6],
			Hit:      flags[0],
			Valid:    flags[1],
			Methods:  methods,
			Votes:    votes,
		})
	}

	return t, nil
}

/*
LoadCSV reads the table at path
*/
func LoadCSV(path string, annotators []string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f, annotators)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

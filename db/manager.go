package db

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"analogy-eval/suggest"
)

/*
Table is a named annotation table under review
*/
type Table struct {
	Name  string
	data  *suggest.Table
	dirty bool
	mu    sync.RWMutex
}

/*
Manager handles the annotation tables being voted on
*/
type Manager struct {
	tables map[string]*Table
	mu     sync.RWMutex
}

/*
NewManager creates a new table manager
*/
func NewManager() *Manager {
	return &Manager{
		tables: make(map[string]*Table),
	}
}

/*
CreateTable registers an annotation table under name. Votes already present
on invalid rows are cleared.
*/
func (m *Manager) CreateTable(name string, data *suggest.Table) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[name]; exists {
		return nil, ErrTableExists
	}

	data.ZeroInvalidVotes()
	t := &Table{Name: name, data: data}
	m.tables[name] = t
	return t, nil
}

/*
GetTable returns a table by name
*/
func (m *Manager) GetTable(name string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, exists := m.tables[name]
	if !exists {
		return nil, ErrTableNotFound
	}

	return t, nil
}

/*
DeleteTable removes a table by name
*/
func (m *Manager) DeleteTable(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[name]; !exists {
		return ErrTableNotFound
	}

	delete(m.tables, name)
	return nil
}

/*
ListTables returns the sorted table names
*/
func (m *Manager) ListTables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/*
CastVote records a vote on a row of a table
*/
func (m *Manager) CastVote(v Vote) error {
	t, err := m.GetTable(v.Table)
	if err != nil {
		return err
	}

	if v.Value != 0 && v.Value != 1 {
		return ErrInvalidVote
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if v.Row < 0 || v.Row >= len(t.data.Rows) {
		return ErrRowNotFound
	}

	col := t.data.Annotator(v.User)
	if col < 0 {
		return ErrUnknownAnnotator
	}

	row := &t.data.Rows[v.Row]
	if row.Valid == 0 {
		return ErrInvalidRow
	}

	row.Votes[col] = v.Value
	t.dirty = true

	log.WithFields(log.Fields{
		"table": v.Table,
		"row":   v.Row,
		"user":  v.User,
		"vote":  v.Value,
	}).Debug("vote cast")
	return nil
}

/*
Snapshot returns a copy of the table contents
*/
func (t *Table) Snapshot() *suggest.Table {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cp := &suggest.Table{
		Methods:    append([]string(nil), t.data.Methods...),
		Annotators: append([]string(nil), t.data.Annotators...),
		Rows:       make([]suggest.Row, len(t.data.Rows)),
	}
	for i, row := range t.data.Rows {
		row.Methods = append([]int(nil), row.Methods...)
		row.Votes = append([]int(nil), row.Votes...)
		cp.Rows[i] = row
	}
	return cp
}

/*
Dirty reports whether votes were cast since the last save
*/
func (t *Table) Dirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty
}

/*
TakeDirty reports whether votes were cast since the last call and clears the
flag
*/
func (t *Table) TakeDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	dirty := t.dirty
	t.dirty = false
	return dirty
}

/*
MarkDirty flags the table for the next save
*/
func (t *Table) MarkDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dirty = true
}

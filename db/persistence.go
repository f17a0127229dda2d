package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"analogy-eval/suggest"
)

const tableExt = ".csv"

/*
PersistenceManager handles saving and loading annotation tables
*/
type PersistenceManager struct {
	basePath string
	mu       sync.RWMutex
}

/*
NewPersistenceManager creates a new persistence manager
*/
func NewPersistenceManager(basePath string) *PersistenceManager {
	return &PersistenceManager{
		basePath: basePath,
	}
}

func (p *PersistenceManager) path(name string) string {
	return filepath.Join(p.basePath, name+tableExt)
}

/*
SaveTable writes a snapshot of the table to <basePath>/<name>.csv
*/
func (p *PersistenceManager) SaveTable(t *Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.basePath, 0755); err != nil {
		return err
	}

	if err := suggest.SaveCSV(p.path(t.Name), t.Snapshot()); err != nil {
		return fmt.Errorf("saving table %s: %w", t.Name, err)
	}
	return nil
}

/*
LoadTable reads a saved table from disk
*/
func (p *PersistenceManager) LoadTable(name string, annotators []string) (*suggest.Table, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, err := suggest.LoadCSV(p.path(name), annotators)
	if err != nil {
		return nil, fmt.Errorf("loading table %s: %w", name, err)
	}
	return t, nil
}

/*
DeleteTable removes a table from disk
*/
func (p *PersistenceManager) DeleteTable(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(p.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

/*
ListTables returns the names of all saved tables
*/
func (p *PersistenceManager) ListTables() ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries, err := os.ReadDir(p.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	tables := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tableExt) {
			continue
		}
		tables = append(tables, strings.TrimSuffix(entry.Name(), tableExt))
	}

	return tables, nil
}

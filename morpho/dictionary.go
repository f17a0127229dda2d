package morpho

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosuri/uiprogress"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// DefaultExt is the suffix of dictionary files found by a directory walk.
const DefaultExt = ".dict"

// lemmaSep joins the lemmas of an ambiguous form.
const lemmaSep = "/"

// posForType maps a synset type tag to the dictionary part-of-speech code.
var posForType = map[string]string{
	"NounSynset":      "N",
	"VerbSynset":      "V",
	"AdjectiveSynset": "A",
	"AdverbSynset":    "ADV",
}

/*
Dictionary maps a word form to its lemmas by part of speech.

It is built once by Load and only read afterwards.
*/
type Dictionary struct {
	forms map[string]map[string][]string
	files int
}

/*
Stats summarises a loaded dictionary
*/
type Stats struct {
	Files   int
	Forms   int
	Entries int
}

type options struct {
	ext      string
	progress bool
}

/*
Option configures Load
*/
type Option func(*options)

/*
WithExt sets the file suffix kept when walking directories
*/
func WithExt(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.ext = ext
		}
	}
}

/*
WithProgress renders a progress bar while the files are read
*/
func WithProgress(on bool) Option {
	return func(o *options) {
		o.progress = on
	}
}

/*
New returns an empty dictionary
*/
func New() *Dictionary {
	return &Dictionary{forms: make(map[string]map[string][]string)}
}

/*
Load reads every dictionary file found under paths.

A path can be a file, read whatever its name, or a directory walked
recursively for files ending with the configured suffix. Later files extend
the entries of earlier ones. A malformed line aborts the load. Paths that
hold no dictionary file only log a warning: the dictionary is then empty and
every pair fails validation.
*/
func Load(paths []string, opts ...Option) (*Dictionary, error) {
	o := options{ext: DefaultExt}
	for _, opt := range opts {
		opt(&o)
	}

	files, err := findFiles(paths, o.ext)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 && len(files) == 0 {
		log.WithFields(log.Fields{
			"paths": strings.Join(paths, ", "),
			"ext":   o.ext,
		}).Warn("no dictionary files found, every pair will be invalid")
	}

	d := New()

	var bar *uiprogress.Bar
	if o.progress && len(files) > 0 {
		uiprogress.Start()
		defer uiprogress.Stop()
		bar = uiprogress.AddBar(len(files))
		bar.AppendCompleted()
		bar.PrependElapsed()
		bar.AppendFunc(func(b *uiprogress.Bar) string {
			if b.Current() == 0 {
				return ""
			}
			return filepath.Base(files[b.Current()-1])
		})
	}

	for _, file := range files {
		log.WithField("file", file).Debug("reading forms/lemmas")
		if err := d.readFile(file); err != nil {
			return nil, err
		}
		if bar != nil {
			bar.Incr()
		}
	}

	stats := d.Stats()
	log.WithFields(log.Fields{
		"files":   stats.Files,
		"forms":   stats.Forms,
		"entries": stats.Entries,
	}).Info("dictionary loaded")

	return d, nil
}

func findFiles(paths []string, ext string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ext) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (d *Dictionary) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := d.Read(f, path); err != nil {
		return err
	}
	d.files++
	return nil
}

/*
Read adds the entries of one dictionary stream. name is used in errors.
*/
func (d *Dictionary) Read(r io.Reader, name string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		form, lemma, pos, ok := parseLine(line)
		if !ok {
			return &LineError{File: name, Line: n, Text: line}
		}
		d.add(form, pos, lemma)
	}
	return sc.Err()
}

// parseLine splits "form lemma+POS.sense+..." into its parts.
func parseLine(line string) (form, lemma, pos string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", "", "", false
	}

	segments := strings.Split(fields[1], "+")
	if len(segments) < 2 {
		return "", "", "", false
	}

	pos, _, _ = strings.Cut(segments[1], ".")
	if segments[0] == "" || pos == "" {
		return "", "", "", false
	}

	return norm.NFC.String(fields[0]), norm.NFC.String(segments[0]), pos, true
}

func (d *Dictionary) add(form, pos, lemma string) {
	byPOS, ok := d.forms[form]
	if !ok {
		byPOS = make(map[string][]string)
		d.forms[form] = byPOS
	}

	for _, l := range byPOS[pos] {
		if l == lemma {
			return
		}
	}
	byPOS[pos] = append(byPOS[pos], lemma)
}

/*
Lemmas returns the lemmas of form under a part-of-speech code
*/
func (d *Dictionary) Lemmas(form, pos string) []string {
	return d.forms[norm.NFC.String(form)][pos]
}

/*
LemmaAndPOS resolves word under a synset type tag (NounSynset, VerbSynset,
AdjectiveSynset, AdverbSynset).

It returns the part-of-speech code and the "/"-joined lemmas. ok is false
when the tag is unknown or the word has no entry for it; this is not an
error.
*/
func (d *Dictionary) LemmaAndPOS(word, typeTag string) (pos, lemma string, ok bool) {
	pos, known := posForType[typeTag]
	if !known {
		return "", "", false
	}

	lemmas := d.Lemmas(word, pos)
	if len(lemmas) == 0 {
		return "", "", false
	}
	return pos, strings.Join(lemmas, lemmaSep), true
}

/*
Len returns the number of distinct forms
*/
func (d *Dictionary) Len() int {
	return len(d.forms)
}

/*
Stats returns the size of the dictionary
*/
func (d *Dictionary) Stats() Stats {
	s := Stats{Files: d.files, Forms: len(d.forms)}
	for _, byPOS := range d.forms {
		s.Entries += len(byPOS)
	}
	return s
}

package main

import (
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"analogy-eval/chart"
	"analogy-eval/config"
	"analogy-eval/morpho"
	"analogy-eval/relation"
	"analogy-eval/suggest"
)

var errNoInput = errors.New("no dataset files given (-f)")

func suggestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "dataset files"},
		&cli.StringSliceFlag{Name: "user", Aliases: []string{"u"}, Usage: "users to vote"},
		&cli.IntFlag{Name: "n", Usage: "words sample size (default value: 10)"},
		&cli.StringSliceFlag{Name: "morpho", Aliases: []string{"m"}, Usage: "dictionary files or directories (no filters if none)"},
		&cli.StringSliceFlag{Name: "relation", Aliases: []string{"r"}, Usage: "relations to filter (no filters if none)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output filename (default value: output.csv)"},
		&cli.StringFlag{Name: "ext", Usage: "dictionary file suffix"},
		&cli.Uint64Flag{Name: "seed", Usage: "sampling seed (0 draws one from the clock)"},
		&cli.BoolFlag{Name: "progress", Usage: "show a progress bar while loading dictionaries"},
		&cli.BoolFlag{Name: "resolve-a-from-b", Usage: "resolve both lemmas from the predicted word"},
	}
}

/*
applySuggestFlags overrides the config with the flags that were set
*/
func applySuggestFlags(c *cli.Context, cfg *config.SuggestConfig) {
	if c.IsSet("user") {
		cfg.Annotators = c.StringSlice("user")
	}
	if c.IsSet("n") {
		cfg.SampleSize = c.Int("n")
	}
	if c.IsSet("morpho") {
		cfg.DictPaths = c.StringSlice("morpho")
	}
	if c.IsSet("relation") {
		cfg.Relations = c.StringSlice("relation")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("ext") {
		cfg.DictExt = c.String("ext")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Uint64("seed")
	}
	if c.IsSet("resolve-a-from-b") {
		cfg.ResolveAFromB = c.Bool("resolve-a-from-b")
	}
}

func suggestCommand(c *cli.Context, cfg *config.Config) error {
	files := c.StringSlice("file")
	if len(files) == 0 {
		return errNoInput
	}

	applySuggestFlags(c, &cfg.Suggest)
	if err := cfg.Validate(); err != nil {
		return err
	}

	return runSuggest(files, cfg.Suggest, c.Bool("progress"))
}

/*
runSuggest loads the dictionaries and the predictions, then writes the
sampled annotation table
*/
func runSuggest(files []string, cfg config.SuggestConfig, progress bool) error {
	dict, err := morpho.Load(cfg.DictPaths, morpho.WithExt(cfg.DictExt), morpho.WithProgress(progress))
	if err != nil {
		return err
	}

	results, err := suggest.LoadResults(files...)
	if err != nil {
		return err
	}
	records := suggest.Flatten(results, cfg.Relations)

	log.WithFields(log.Fields{
		"results": len(results),
		"records": len(records),
	}).Info("predictions loaded")

	v := relation.NewValidator(relation.DefaultCatalog(), dict)
	v.ResolveAFromB = cfg.ResolveAFromB

	table, err := suggest.NewAggregator(v, cfg.Annotators, cfg.SampleSize, cfg.Seed).Build(records)
	if err != nil {
		return err
	}

	return suggest.SaveCSV(cfg.Output, table)
}

func chartFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "dataset files"},
		&cli.StringSliceFlag{Name: "relation", Aliases: []string{"r"}, Usage: "relations to filter (no filters if none)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "chart.html", Usage: "output filename"},
		&cli.StringFlag{Name: "title", Value: "Analogy hit rate", Usage: "chart title"},
	}
}

func chartCommand(c *cli.Context, cfg *config.Config) error {
	files := c.StringSlice("file")
	if len(files) == 0 {
		return errNoInput
	}

	relations := cfg.Suggest.Relations
	if c.IsSet("relation") {
		relations = c.StringSlice("relation")
	}

	return runChart(files, relations, c.String("output"), c.String("title"))
}

/*
runChart renders the hit rate of the predictions in files to an HTML page
*/
func runChart(files, relations []string, output, title string) (err error) {
	results, err := suggest.LoadResults(files...)
	if err != nil {
		return err
	}
	summary := chart.Summarize(suggest.Flatten(results, relations))

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	log.WithFields(log.Fields{
		"file":      output,
		"relations": len(summary.Relations),
		"methods":   len(summary.Methods),
	}).Info("rendering chart")

	return chart.Render(f, summary, title)
}

package main

import (
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"analogy-eval/config"
)

const defaultConfigPath = "./config.json"

// Flags that take one or more values, like -f a.json b.json.
var multiValueFlags = map[string]bool{
	"-f": true, "--file": true,
	"-u": true, "--user": true,
	"-m": true, "--morpho": true,
	"-r": true, "--relation": true,
}

func main() {
	// load the environment variables
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(expandArgs(os.Args)); err != nil {
		log.Fatal(err)
	}
}

/*
newApp builds the command line application. Commands read their settings
from the config file or the environment, overridden by flags.
*/
func newApp(out io.Writer) *cli.App {
	var (
		verbosity  int
		configPath string
		cfg        *config.Config
	)

	verbose := func() cli.Flag {
		return &cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity (example: -vv for debugging)",
			Count:   &verbosity,
		}
	}

	before := func(c *cli.Context) error {
		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return err
		}
		setupLogging(cfg.LogLevel, verbosity)
		return nil
	}

	app := &cli.App{
		Name:                   "analogy-eval",
		Usage:                  "build and review annotation tables of analogy predictions",
		Writer:                 out,
		ErrWriter:              out,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			verbose(),
			&cli.StringFlag{
				Name:        "config",
				Usage:       "JSON or YAML config file",
				Destination: &configPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "suggest",
				Usage:  "validate predictions and write a sampled annotation table",
				Flags:  append(suggestFlags(), verbose()),
				Before: before,
				Action: func(c *cli.Context) error {
					return suggestCommand(c, cfg)
				},
			},
			{
				Name:   "serve",
				Usage:  "serve an annotation table for voting",
				Flags:  append(serveFlags(), verbose()),
				Before: before,
				Action: func(c *cli.Context) error {
					return serveCommand(c, cfg)
				},
			},
			{
				Name:   "chart",
				Usage:  "render the hit rate of each method per relation",
				Flags:  append(chartFlags(), verbose()),
				Before: before,
				Action: func(c *cli.Context) error {
					return chartCommand(c, cfg)
				},
			},
		},
	}

	// allow -vv
	for _, cmd := range app.Commands {
		cmd.UseShortOptionHandling = true
	}
	return app
}

/*
loadConfig reads the config file when one is given, or ./config.json when
present, and the environment otherwise
*/
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.LoadFromFile(defaultConfigPath)
	}
	return config.LoadFromEnv()
}

/*
setupLogging sets the level named in the config, lowered one level per -v
*/
func setupLogging(name string, verbosity int) {
	level, err := log.ParseLevel(name)
	if err != nil {
		level = log.WarnLevel
	}
	level += log.Level(verbosity)
	if level > log.TraceLevel {
		level = log.TraceLevel
	}
	log.SetLevel(level)
}

/*
expandArgs rewrites "-f a b -u x" into "-f a -f b -u x" so the multi-value
flags accept a list after a single flag
*/
func expandArgs(args []string) []string {
	out := make([]string, 0, len(args))
	current := ""
	for _, arg := range args {
		switch {
		case arg == "--":
			current = ""
			out = append(out, arg)
		case strings.HasPrefix(arg, "-"):
			current = ""
			if multiValueFlags[arg] {
				current = arg
			}
			out = append(out, arg)
		case current != "" && len(out) > 0 && out[len(out)-1] != current:
			out = append(out, current, arg)
		default:
			out = append(out, arg)
		}
	}
	return out
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-fable/pkg/config"
	"github.com/dd0wney/cluso-fable/pkg/engine"
	"github.com/dd0wney/cluso-fable/pkg/logging"
	"github.com/dd0wney/cluso-fable/pkg/metrics"
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
)

var errNoCatalogue = errors.New("no catalogue: pass --catalogue or set catalogue_path")

// app carries the state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath    string
	cataloguePath string
	logLevel      string
	logFormat     string
	showMetrics   bool

	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "fable",
		Short: "Validate, project and share forecast pipelines",
		Long: `fable works with pipeline definitions (JSON) and block catalogues (YAML).
It checks pipelines for missing inputs and other wiring problems, projects
them into node/edge graphs, and encodes them into URL-safe share tokens.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.showMetrics {
				return nil
			}
			return a.printMetrics()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVarP(&a.cataloguePath, "catalogue", "c", "", "path to the YAML block catalogue")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "console or json")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print engine metrics to stderr after the command")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newValidateCmd(a),
		newGraphCmd(a),
		newStatsCmd(a),
		newLinkCmd(a),
		newCatalogueCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return a.fail(err)
	}

	if a.cataloguePath != "" {
		cfg.CataloguePath = a.cataloguePath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return a.fail(err)
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.LogFormat, a.stderr, logging.ParseLevel(cfg.LogLevel))
	a.metrics = metrics.NewRegistry()
	return nil
}

// fail renders err on stderr and returns it so cobra exits non-zero.
func (a *app) fail(err error) error {
	fmt.Fprintln(a.stderr, errorStyle.Render("error: ")+err.Error())
	return err
}

// engine builds an engine. Commands that project or validate need a
// catalogue; the others pass requireCatalogue=false.
func (a *app) engine(requireCatalogue bool) (*engine.Engine, error) {
	var cat pipeline.Catalogue
	if a.cfg.CataloguePath != "" {
		loaded, err := pipeline.LoadCatalogueFile(a.cfg.CataloguePath)
		if err != nil {
			return nil, a.fail(err)
		}
		cat = loaded
		a.logger.Debug("loaded catalogue",
			logging.Path(a.cfg.CataloguePath),
			logging.Count(len(cat.Entries())),
		)
	} else if requireCatalogue {
		return nil, a.fail(errNoCatalogue)
	}

	return engine.New(cat,
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
		engine.WithLargeTokenWarnings(a.cfg.WarnLargeTokens()),
	), nil
}

// readModel loads a pipeline from a JSON file, or stdin when path is "-".
// Unknown fields are rejected and the model must pass schema checks.
func (a *app) readModel(cmd *cobra.Command, path string) (*pipeline.Model, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, a.fail(fmt.Errorf("failed to open pipeline: %w", err))
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var m pipeline.Model
	if err := dec.Decode(&m); err != nil {
		return nil, a.fail(fmt.Errorf("failed to parse pipeline %s: %w", path, err))
	}
	if err := m.Validate(); err != nil {
		return nil, a.fail(err)
	}
	return &m, nil
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printMetrics() error {
	samples, err := a.metrics.Snapshot()
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprint(a.stderr, renderMetrics(samples))
	return nil
}

package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-fable/pkg/codec"
	"github.com/dd0wney/cluso-fable/pkg/constraints"
	"github.com/dd0wney/cluso-fable/pkg/pipeline"
	"github.com/dd0wney/cluso-fable/pkg/validation"
	"github.com/dd0wney/cluso-fable/pkg/visualization"
)

var (
	errInvalidPipeline = errors.New("pipeline is invalid")
	errRejectedToken   = errors.New("token does not decode to a pipeline")
	errNoBaseURL       = errors.New("no base URL: pass --base or set share_base_url")
)

func newEncodeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "encode <pipeline.json|->",
		Short: "Encode a pipeline into a share token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(false)
			if err != nil {
				return err
			}
			m, err := a.readModel(cmd, args[0])
			if err != nil {
				return err
			}

			result, err := e.Share(m)
			if err != nil {
				return a.fail(err)
			}
			if asJSON {
				return a.writeJSON(result)
			}
			fmt.Fprintln(a.stdout, result.Token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print token, size flag and stats as JSON")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token|link>",
		Short: "Decode a share token or link back into pipeline JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(false)
			if err != nil {
				return err
			}

			token := args[0]
			if strings.Contains(token, "?") {
				if token, err = codec.TokenFromLink(token); err != nil {
					return a.fail(err)
				}
			}

			m, ok := e.Open(token)
			if !ok {
				return a.fail(errRejectedToken)
			}
			return a.writeJSON(m)
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "validate <pipeline.json|->...",
		Short: "Check pipelines against the catalogue",
		Long: `Check pipelines against the catalogue and report unknown block types,
unconnected or dangling inputs, cycles and missing sources. Several files are
checked concurrently. Exits non-zero when any pipeline is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(true)
			if err != nil {
				return err
			}

			models := make([]*pipeline.Model, len(args))
			for i, path := range args {
				if models[i], err = a.readModel(cmd, path); err != nil {
					return err
				}
			}

			reports, err := e.ValidateAll(models, workers)
			if err != nil {
				return a.fail(err)
			}

			if err := a.printReports(args, reports, asJSON); err != nil {
				return err
			}
			for _, r := range reports {
				if !r.IsValid {
					return errInvalidPipeline
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON (an object keyed by path for several files)")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "pipelines validated concurrently")
	return cmd
}

func (a *app) printReports(paths []string, reports []*constraints.Report, asJSON bool) error {
	if len(reports) == 1 {
		if asJSON {
			return a.writeJSON(reports[0])
		}
		fmt.Fprint(a.stdout, renderReport(reports[0]))
		return nil
	}

	if asJSON {
		byPath := make(map[string]*constraints.Report, len(reports))
		for i, r := range reports {
			byPath[paths[i]] = r
		}
		return a.writeJSON(byPath)
	}
	for i, r := range reports {
		fmt.Fprintf(a.stdout, "%s\n%s\n", titleStyle.Render(paths[i]), renderReport(r))
	}
	return nil
}

func newGraphCmd(a *app) *cobra.Command {
	var (
		layout string
		width  float64
		height float64
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "graph <pipeline.json|->",
		Short: "Project a pipeline into node/edge JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := validation.NewConfigValidator("graph").
				OneOf("layout", layout, []string{"none", "hierarchical", "circular", "force"}).
				Custom("size", func() error {
					if width <= 0 || height <= 0 {
						return fmt.Errorf("width and height must be positive, got %gx%g", width, height)
					}
					return nil
				}).
				Validate()
			if err != nil {
				return a.fail(err)
			}

			e, err := a.engine(true)
			if err != nil {
				return err
			}
			m, err := a.readModel(cmd, args[0])
			if err != nil {
				return err
			}

			g := e.Graph(m)
			cfg := &visualization.LayoutConfig{Width: width, Height: height, Seed: seed}
			switch layout {
			case "hierarchical":
				g = g.WithLayout(visualization.NewHierarchicalLayout(cfg))
			case "circular":
				g = g.WithLayout(visualization.NewCircularLayout(cfg))
			case "force":
				g = g.WithLayout(visualization.NewForceDirectedLayout(cfg))
			}

			data, err := g.ExportJSON()
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.stdout, string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", "none", "node placement: none, hierarchical, circular or force")
	cmd.Flags().Float64Var(&width, "width", 1200, "canvas width for --layout")
	cmd.Flags().Float64Var(&height, "height", 800, "canvas height for --layout")
	cmd.Flags().Int64Var(&seed, "seed", 1, "initial placement seed for --layout force")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <pipeline.json|->",
		Short: "Show how well a pipeline compresses into a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(false)
			if err != nil {
				return err
			}
			m, err := a.readModel(cmd, args[0])
			if err != nil {
				return err
			}

			result, err := e.Share(m)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprint(a.stdout, renderStats(m.Len(), result))
			return nil
		},
	}
}

func newLinkCmd(a *app) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "link <pipeline.json|->",
		Short: "Build a share link for a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base = validation.DefaultOr(base, a.cfg.ShareBaseURL)
			if base == "" {
				return a.fail(errNoBaseURL)
			}
			if err := validation.NewConfigValidator("link").AbsoluteURL("base", base).Validate(); err != nil {
				return a.fail(err)
			}

			e, err := a.engine(false)
			if err != nil {
				return err
			}
			m, err := a.readModel(cmd, args[0])
			if err != nil {
				return err
			}

			link, result, err := e.ShareLink(base, m)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.stdout, link)
			if result.TooLarge {
				fmt.Fprintln(a.stderr, warnStyle.Render(
					fmt.Sprintf("note: token is %d characters; some browsers truncate links over %d", len(result.Token), codec.MaxTokenLength)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "editor URL the token is appended to (default share_base_url)")
	return cmd
}

func newCatalogueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "catalogue",
		Aliases: []string{"catalog"},
		Short:   "List the block factories in the catalogue",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine(true)
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, renderCatalogue(e.Catalogue().Entries()))
			return nil
		},
	}
}

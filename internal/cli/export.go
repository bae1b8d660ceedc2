package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spendwatch/paygraph/pkg/client"
	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/render"
	"github.com/spendwatch/paygraph/pkg/scene"
)

// maxSettleTicks bounds the export settle loop so a simulation kept warm by
// a non-zero alpha target can never hang the command.
const maxSettleTicks = 2000

// exportCommand creates the export command rendering a settled layout.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		configPath string
		baseURL    string
		formats    string
		out        string
		minAmount  float64
		maxEdges   int
		labels     bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a settled payment graph layout to files",
		Long: `Fetch the payment network, run the force simulation until it settles,
and write the resulting layout in one or more formats.

Formats: svg (native vector output), dot (Graphviz source), gvsvg
(Graphviz-rendered SVG), json (the raw snapshot).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.API.BaseURL = baseURL
			}
			query := cfg.query()
			if cmd.Flags().Changed("min-amount") {
				query.MinAmount = minAmount
			}
			if cmd.Flags().Changed("max-edges") {
				query.MaxEdges = maxEdges
			}

			wanted := parseFormats(formats)
			for _, f := range wanted {
				if !render.ValidFormats[f] {
					return errors.New(errors.ErrCodeUnsupported, "unknown format %q", f)
				}
			}

			spin := newSpinner("fetching network")
			spin.Start()

			loader := client.New(cfg.API.BaseURL, client.WithCache(c.newCache(cfg, noCache), cfg.cacheTTL()))
			res, err := loader.Fetch(cmd.Context(), query)
			if err != nil {
				spin.StopWithError(fmt.Sprintf("fetch failed: %s", errors.UserMessage(err)))
				return err
			}

			sc := scene.New(cfg.bounds(), cfg.forceConfig(), cfg.transform(), c.Logger)
			loader.Apply(res, sc.Replace)

			spin.SetMessage("settling layout")
			prog := newProgress(c.Logger)
			ticks := 0
			for ticks < maxSettleTicks && sc.Frame() {
				ticks++
			}
			spin.Stop()
			prog.done(fmt.Sprintf("Layout settled after %d ticks", ticks))

			snap := sc.Snapshot()
			if !snap.Settled {
				printWarning("layout did not settle within %d ticks; exporting as-is", maxSettleTicks)
			}

			var files []string
			for _, f := range wanted {
				path := out + exportSuffix(f)
				if err := writeArtifact(cmd.Context(), path, f, snap, labels); err != nil {
					return err
				}
				files = append(files, path)
			}

			printSuccess("Exported %s", strings.Join(wanted, ", "))
			for _, path := range files {
				printFile(path)
			}
			printStats(len(snap.Nodes), len(snap.Edges), snap.Settled)
			printNextStep("Explore interactively", appName+" view")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&baseURL, "base", "", "API base URL (overrides config)")
	cmd.Flags().StringVarP(&formats, "format", "f", render.FormatSVG, "comma-separated formats: svg,dot,gvsvg,json")
	cmd.Flags().StringVarP(&out, "out", "o", "network", "output file basename")
	cmd.Flags().Float64Var(&minAmount, "min-amount", client.DefaultMinAmount, "minimum relationship total")
	cmd.Flags().IntVar(&maxEdges, "max-edges", client.DefaultMaxEdges, "maximum number of edges")
	cmd.Flags().BoolVar(&labels, "labels", false, "draw node labels in SVG output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the payload cache")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// exportSuffix maps a format to its file suffix.
func exportSuffix(format string) string {
	switch format {
	case render.FormatGraphvizSVG:
		return ".gv.svg"
	default:
		return "." + format
	}
}

// writeArtifact renders one format to path.
func writeArtifact(ctx context.Context, path, format string, snap scene.Snapshot, labels bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()

	switch format {
	case render.FormatSVG:
		opts := render.DefaultSVGOptions()
		opts.Labels = labels
		return render.WriteSVG(f, snap, opts)
	case render.FormatDOT:
		_, err := f.WriteString(render.ToDOT(snap))
		return err
	case render.FormatGraphvizSVG:
		svg, err := render.GraphvizSVG(ctx, render.ToDOT(snap))
		if err != nil {
			return err
		}
		_, err = f.Write(svg)
		return err
	case render.FormatJSON:
		return render.WriteJSON(f, snap)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown format %q", format)
	}
}

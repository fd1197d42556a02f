package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/areainsight/internal/bootstrap"
	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/usecases"
	"github.com/samirrijal/areainsight/internal/pkg/config"
	"github.com/samirrijal/areainsight/internal/pkg/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "insight",
		Short:        "Business opportunity analysis for a map region",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(sectionsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type analyzeFlags struct {
	north, south, east, west float64
	lang                     string
	skipNarrative            bool
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Search a region, print its business snapshot and the narrative sections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().Float64Var(&f.north, "north", 0, "northern latitude")
	cmd.Flags().Float64Var(&f.south, "south", 0, "southern latitude")
	cmd.Flags().Float64Var(&f.east, "east", 0, "eastern longitude")
	cmd.Flags().Float64Var(&f.west, "west", 0, "western longitude")
	cmd.Flags().StringVar(&f.lang, "lang", "en", "narrative language code")
	cmd.Flags().BoolVar(&f.skipNarrative, "skip-narrative", false, "only print the snapshot")
	for _, name := range []string{"north", "south", "east", "west"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func sectionsCmd() *cobra.Command {
	var premium bool

	cmd := &cobra.Command{
		Use:   "sections [file]",
		Short: "Split a narrative into sections (reads stdin without a file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				fh, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer fh.Close()
				in = fh
			}
			return runSections(in, cmd.OutOrStdout(), premium)
		},
	}

	cmd.Flags().BoolVar(&premium, "premium", false, "use the premium report headers")
	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, f analyzeFlags) error {
	region, err := domain.NewRegion(f.north, f.south, f.east, f.west)
	if err != nil {
		return err
	}

	cfg, err := config.Load("areainsight-cli")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	places, err := bootstrap.PlacesProvider(cfg.Places)
	if err != nil {
		return err
	}
	search := usecases.NewSearchService(places, bootstrap.SearchOptions(cfg.Places))

	catalog, report, err := search.BuildCatalogWithProgress(ctx, region, "", func(p domain.SearchProgress) {
		fmt.Fprintf(os.Stderr, "searched %s (%d/%d): %d found, catalog %d\n", p.Term, p.Index, p.Total, p.Found, p.CatalogLen)
	})
	if err != nil {
		return err
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(os.Stderr, "category %s failed: %s\n", failure.Term, failure.Error)
	}

	snapshot := usecases.Aggregate(catalog, region)
	if err := writeJSON(out, snapshot); err != nil {
		return err
	}
	if f.skipNarrative {
		return nil
	}

	insight, err := bootstrap.InsightService(ctx, cfg.Narrative)
	if err != nil {
		return err
	}
	narrative, err := insight.Generate(ctx, region, &snapshot, f.lang)
	if err != nil {
		return err
	}
	return printSections(out, usecases.FormatSections(narrative.Text))
}

func runSections(in io.Reader, out io.Writer, premium bool) error {
	text, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	markers := usecases.SectionMarkers
	if premium {
		markers = usecases.PremiumMarkers
	}
	return printSections(out, usecases.FormatSectionsWith(string(text), markers))
}

func printSections(out io.Writer, sections []domain.Section) error {
	for _, s := range sections {
		if _, err := fmt.Fprintf(out, "\n== %s ==\n", s.Header); err != nil {
			return err
		}
		for _, line := range s.Body {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/ideascore/internal/analysis"
	"github.com/chriscorrea/ideascore/internal/app"
	"github.com/chriscorrea/ideascore/internal/config"
	"github.com/chriscorrea/ideascore/internal/report"
)

// analyzeOptions are the resolved settings for one analyze run.
type analyzeOptions struct {
	Query     analysis.Query
	TopK      int
	Output    string
	Format    report.Format
	NoCache   bool
	JSON      bool
	Quiet     bool
	WarnBelow float64
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [idea...]",
		Short: "Score a project idea against GitHub repositories",
		Long: `Analyze searches GitHub for repositories related to the idea and scores how
unique the idea is. When no idea is given it is read interactively from standard input.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("language", "l", "", "Programming language to filter repositories by (default: python)")
	cmd.Flags().IntP("top", "k", 0, "Number of similar projects to report (default: 3)")
	cmd.Flags().StringP("output", "o", "", "Report file path (default: project_analysis.csv)")
	cmd.Flags().String("format", "", "Report format: csv, json, html or markdown (default: from file extension)")
	cmd.Flags().Bool("no-cache", false, "Always query GitHub, bypassing the corpus cache")
	cmd.Flags().Bool("json", false, "Print the result as JSON to standard output")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress info messages")
	return cmd
}

// buildAnalyzeOptions merges flags, arguments, prompts and configuration.
// Flags win over the configuration file.
func buildAnalyzeOptions(cmd *cobra.Command, args []string, cfg *config.Config) (analyzeOptions, error) {
	language, _ := cmd.Flags().GetString("language")
	topK, _ := cmd.Flags().GetInt("top")
	output, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	quiet, _ := cmd.Flags().GetBool("quiet")

	idea := strings.TrimSpace(strings.Join(args, " "))
	if idea == "" {
		var err error
		idea, language, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), language)
		if err != nil {
			return analyzeOptions{}, err
		}
	}
	if strings.TrimSpace(language) == "" {
		language = cfg.GitHub.Language
	}

	if !cmd.Flags().Changed("top") {
		topK = cfg.Report.TopK
	}
	if topK < 0 {
		return analyzeOptions{}, fmt.Errorf("--top must be >= 0, got %d", topK)
	}

	if output == "" {
		output = cfg.Report.Path
	}
	output, err := config.ExpandPath(output)
	if err != nil {
		return analyzeOptions{}, err
	}

	fallback, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return analyzeOptions{}, err
	}
	format := report.FormatFromPath(output, fallback)
	if formatName != "" {
		if format, err = report.ParseFormat(formatName); err != nil {
			return analyzeOptions{}, err
		}
	}

	return analyzeOptions{
		Query:     analysis.Query{Idea: idea, Language: language},
		TopK:      topK,
		Output:    output,
		Format:    format,
		NoCache:   noCache,
		JSON:      jsonFlag,
		Quiet:     quiet,
		WarnBelow: cfg.Report.WarnBelow,
	}, nil
}

// prompt asks for the idea and, unless already set, the language.
func prompt(in io.Reader, out io.Writer, language string) (string, string, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Enter your project idea: ")
	idea, err := readLine(reader)
	if err != nil {
		return "", "", fmt.Errorf("read idea: %w", err)
	}
	if idea == "" {
		return "", "", app.ErrEmptyIdea
	}

	if language == "" {
		fmt.Fprint(out, "Programming language (default: python): ")
		if language, err = readLine(reader); err != nil {
			return "", "", fmt.Errorf("read language: %w", err)
		}
	}
	return idea, language, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(debug, cfg.Logging.Level)

	opts, err := buildAnalyzeOptions(cmd, args, cfg)
	if err != nil {
		return err
	}

	// create context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	searcher, closer, err := app.NewSearcher(cfg, !opts.NoCache)
	if err != nil {
		return fmt.Errorf("corpus cache: %w", err)
	}
	defer closer.Close()

	var progress *os.File
	if !opts.Quiet && !opts.JSON {
		progress = os.Stderr
	}
	a := app.New(searcher, app.Options{TopK: opts.TopK, Language: cfg.GitHub.Language, Progress: progress})

	stderr := cmd.ErrOrStderr()
	if !opts.Quiet {
		fmt.Fprintf(stderr, "Analyzing: %q (%s)\n", opts.Query.Idea, opts.Query.Language)
	}

	out, err := a.Analyze(ctx, opts.Query)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := printOutcome(cmd.OutOrStdout(), out, opts); err != nil {
		return err
	}
	if out.Generic && !opts.Quiet {
		fmt.Fprintln(stderr, "Note: this idea is mostly generic wording, so the score is likely dominated by popular repositories.")
	}

	if opts.Output != "" {
		if err := report.SaveFile(opts.Output, out.Result, opts.Format); err != nil {
			return err
		}
		if !opts.Quiet {
			fmt.Fprintf(stderr, "Report saved to %s\n", opts.Output)
		}
	}
	return nil
}

// printOutcome writes the score, and the similar projects when the idea is
// too close to existing work.
func printOutcome(w io.Writer, out app.Outcome, opts analyzeOptions) error {
	if opts.JSON {
		return report.Write(w, out.Result, report.JSON)
	}

	fmt.Fprintf(w, "Uniqueness Score: %s%%\n", report.FormatScore(out.Result.UniquenessScore))
	if report.HighSimilarity(out.Result, opts.WarnBelow) && len(out.Result.SimilarProjects) > 0 {
		fmt.Fprintln(w, "\nHigh Similarity Warning!")
		fmt.Fprintln(w, "Most similar projects:")
		fmt.Fprintln(w, report.Table(out.Result))
	}
	return nil
}

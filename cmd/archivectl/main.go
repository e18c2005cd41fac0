// archivectl bündelt die Wartungsaufgaben des Paper-Archivs für die Kommandozeile.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/config"
	"paper-archive/providers/arxiv"
	"paper-archive/services"
	"paper-archive/storage"
)

var (
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "archivectl",
	Short:         "Maintenance tool for the paper archive",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the paper table for invalid entries and dangling references",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var (
	graphOut      string
	graphWidth    int
	graphHeight   int
	graphSelected string
	graphLabels   bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the relationship graph as PNG",
	Args:  cobra.NoArgs,
	RunE:  runGraph,
}

var (
	fetchOutput   string
	fetchMinScore int
	fetchMaxNew   int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new arXiv listings and write proposals for review",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

var exportCmd = &cobra.Command{
	Use:   "export-neo4j",
	Short: "Export papers and graph links into Neo4j",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to a papers.yaml (default: embedded table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")

	graphCmd.Flags().StringVarP(&graphOut, "out", "o", "graph.png", "output file")
	graphCmd.Flags().IntVar(&graphWidth, "width", 1600, "image width")
	graphCmd.Flags().IntVar(&graphHeight, "height", 1000, "image height")
	graphCmd.Flags().StringVar(&graphSelected, "select", "", "paper id to highlight")
	graphCmd.Flags().BoolVar(&graphLabels, "labels", true, "draw node labels")

	fetchCmd.Flags().StringVarP(&fetchOutput, "out", "o", "", "proposal file (default: IMPORT_OUTPUT)")
	fetchCmd.Flags().IntVar(&fetchMinScore, "min-score", 0, "minimum relevance score (default: IMPORT_MIN_SCORE)")
	fetchCmd.Flags().IntVar(&fetchMaxNew, "max-new", 0, "maximum proposals per run (default: IMPORT_MAX_NEW)")

	rootCmd.AddCommand(validateCmd, graphCmd, fetchCmd, exportCmd)
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runValidate(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	dangling := cat.DanglingReferences()
	for _, ref := range dangling {
		fmt.Fprintf(cmd.OutOrStdout(), "WARN %s.%s -> %s (unknown id)\n", ref.PaperID, ref.Field, ref.Target)
	}
	graph := services.BuildGraph(cat.All())
	fmt.Fprintf(cmd.OutOrStdout(), "OK %d papers, %d graph links, %d dangling references\n",
		cat.Len(), len(graph.Links), len(dangling))
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	graph := services.BuildGraph(cat.All())
	if graphSelected != "" && !cat.Has(graphSelected) {
		return fmt.Errorf("unknown paper id %q", graphSelected)
	}

	f, err := os.Create(graphOut)
	if err != nil {
		return err
	}
	defer f.Close()

	err = services.RenderGraphPNG(f, graph, services.RenderOptions{
		Width:    graphWidth,
		Height:   graphHeight,
		Selected: graphSelected,
		Labels:   graphLabels,
	})
	if err != nil {
		return fmt.Errorf("render graph: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d nodes, %d links)\n", graphOut, len(graph.Nodes), len(graph.Links))
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if fetchOutput != "" {
		cfg.ImportOutput = fetchOutput
	}
	if fetchMinScore > 0 {
		cfg.ImportMinScore = fetchMinScore
	}
	if fetchMaxNew > 0 {
		cfg.ImportMaxNew = fetchMaxNew
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	svc := services.NewImportService(cfg, cat, arxiv.NewFetcher(cfg.ArxivBaseURL, logger), logger)
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, relevant %d, new %d -> %s\n",
		res.Fetched, res.Relevant, len(res.Added), cfg.ImportOutput)
	for _, id := range res.Added {
		fmt.Fprintf(cmd.OutOrStdout(), "  + %s\n", id)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is not set")
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Sync()

	ctx := cmd.Context()
	exporter, err := storage.NewNeo4jExporter(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase, logger)
	if err != nil {
		return err
	}
	defer exporter.Close(ctx)

	graph := services.BuildGraph(cat.All())
	if err := exporter.ExportGraph(ctx, cat.All(), graph); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d papers and %d links\n", cat.Len(), len(graph.Links))
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

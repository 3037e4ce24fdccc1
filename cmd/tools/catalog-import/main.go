// cmd/tools/catalog-import/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"agri-marketplace/internal/common/clock"
	"agri-marketplace/internal/common/config"
	"agri-marketplace/internal/common/database"
	"agri-marketplace/internal/common/logger"
	"agri-marketplace/internal/ingest"
	"agri-marketplace/internal/search"
	"agri-marketplace/internal/storage/postgres"
	"agri-marketplace/internal/taxonomy"
)

var Cmd = &cobra.Command{
	Use:   "catalog-import <file>",
	Short: "Parse a catalog upload and import it into the marketplace store",
	Long: "Parses a spreadsheet or delimited text table the same way the ingest-catalog worker does.\n" +
		"With --dry-run nothing is written and the parsed records are printed as JSON.",
	Args: cobra.ExactArgs(1),
	RunE: run,
}

var args struct {
	configPath string
	kind       string
	delimiter  string
	dryRun     bool
	upsert     bool
	index      bool
	timeout    time.Duration
}

func init() {
	flags := Cmd.Flags()
	flags.StringVar(&args.configPath, "config", "", "Path to config.yaml (default: configs/ lookup)")
	flags.StringVar(&args.kind, "kind", "", "File kind: spreadsheet or text-table (default: from extension)")
	flags.StringVar(&args.delimiter, "delimiter", "", "Text table delimiter (default: ingest.text_delimiter)")
	flags.BoolVar(&args.dryRun, "dry-run", false, "Parse only and print the records")
	flags.BoolVar(&args.upsert, "upsert", false, "Update records with the same name instead of inserting duplicates")
	flags.BoolVar(&args.index, "index", true, "Index imported records into Elasticsearch")
	flags.DurationVar(&args.timeout, "timeout", 5*time.Minute, "Overall import timeout")
}

func main() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, argv []string) error {
	path := argv[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	kind, err := resolveKind(args.kind, path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(args.configPath)
	if err != nil {
		return err
	}
	log := logger.NewStructured(cfg.Logging.Level, "console")

	delimiter := cfg.Ingest.TextDelimiter
	if args.delimiter != "" {
		delimiter = args.delimiter
	}
	sep, err := parseDelimiter(delimiter)
	if err != nil {
		return err
	}

	clk := clock.NewSystem()
	classifier := taxonomy.NewClassifier(taxonomy.Default)
	parser := ingest.NewParser(classifier,
		ingest.WithDecoder(ingest.KindTextTable, ingest.NewTextTableDecoder(sep)),
		ingest.WithMaxBytes(cfg.Ingest.MaxFileBytes),
		ingest.WithClock(clk),
	)

	if args.dryRun {
		records, err := parser.Parse(data, kind)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summarize(records))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), args.timeout)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	store := postgres.NewStore(pg.DB, clk)

	var indexer ingest.Indexer
	if args.index {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.EnsureIndex(ctx, cfg.Search.CatalogIndex, search.Mapping); err != nil {
			log.Warn("Search index unavailable, skipping indexing", map[string]interface{}{"error": err})
		} else {
			indexer = search.NewCatalogIndex(es.Client, cfg.Search.CatalogIndex)
		}
	}

	if args.upsert {
		records, err := parser.Parse(data, kind)
		if err != nil {
			return err
		}
		u := &upserter{catalog: store.Catalog, startups: store.Startups, indexer: indexer, clock: clk, logger: log}
		stats, err := u.Upsert(ctx, records)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, updated %d, startups %d\n", stats.Inserted, stats.Updated, stats.Startups)
		return nil
	}

	result, err := ingest.NewImporter(parser, store.Catalog, indexer, log).Import(ctx, data, kind)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (indexed: %t)\n", len(result.Records), result.Indexed)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func resolveKind(flag, path string) (ingest.Kind, error) {
	if flag != "" {
		return ingest.Kind(flag), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ingest.KindSpreadsheet, nil
	case ".csv", ".tsv", ".txt":
		return ingest.KindTextTable, nil
	}
	return "", fmt.Errorf("cannot infer kind from %q, pass --kind", path)
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` || s == "tab" {
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

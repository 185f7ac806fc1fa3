// Command entryflat prints the filter or update document a deep entry
// flattens to. With -collection it also runs the filter against MongoDB.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"norelock.dev/mongorepo/internal/config"
	"norelock.dev/mongorepo/internal/db/mongo"
	"norelock.dev/mongorepo/internal/db/mongo/repositories"
	"norelock.dev/mongorepo/pkg/entry"
)

const (
	modeFilter  = "filter"
	modeUpdate  = "update"
	modePartial = "partial"
)

type cliOptions struct {
	mode       string
	entry      string
	canonical  bool
	collection string
	index      string
	limit      int64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "entryflat: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("entryflat", flag.ContinueOnError)

	var opts cliOptions
	fs.StringVar(&opts.mode, "mode", modeFilter, "flatten as filter, update or partial")
	fs.StringVar(&opts.entry, "entry", "", "Extended JSON entry (default: read stdin)")
	fs.BoolVar(&opts.canonical, "canonical", false, "print canonical Extended JSON")
	fs.StringVar(&opts.collection, "collection", "", "run the filter against this collection")
	fs.StringVar(&opts.index, "index", "", "comma-separated fields to index on -collection before querying")
	fs.Int64Var(&opts.limit, "limit", 20, "maximum documents printed with -collection")

	if err := fs.Parse(args); err != nil {
		return err
	}

	input := opts.entry
	if input == "" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read entry: %w", err)
		}
		input = string(raw)
	}

	doc, err := parseEntry(input)
	if err != nil {
		return err
	}

	flat, err := flatten(opts.mode, doc)
	if err != nil {
		return err
	}
	if err := printDocument(stdout, flat, opts.canonical); err != nil {
		return err
	}

	if opts.collection == "" {
		return nil
	}
	if opts.mode != modeFilter {
		return fmt.Errorf("-collection needs -mode %s", modeFilter)
	}
	return query(ctx, opts, doc, stdout)
}

func parseEntry(input string) (bson.D, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("empty entry")
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(input), false, &doc); err != nil {
		return nil, fmt.Errorf("invalid entry: %w", err)
	}
	return doc, nil
}

func flatten(mode string, doc bson.D) (bson.D, error) {
	switch mode {
	case modeFilter:
		return entry.ToFilter(doc), nil
	case modeUpdate:
		return entry.ToUpdate(doc), nil
	case modePartial:
		return bson.D{{Key: "$set", Value: entry.ToPartialUpdate(doc)}}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func printDocument(w io.Writer, doc any, canonical bool) error {
	out, err := bson.MarshalExtJSON(doc, canonical, false)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// query counts and prints the documents of opts.collection matching doc.
func query(ctx context.Context, opts cliOptions, doc bson.D, stdout io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	// Keep stdout for documents.
	cfg.Logging.OutputPaths = []string{"stderr"}

	logger := config.NewLogger(cfg)
	defer logger.Sync()

	for _, warning := range config.ValidateAndFixConfig(cfg) {
		logger.Warn("Configuration adjusted", "warning", warning)
	}

	client, err := mongo.NewClient(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if opts.index != "" {
		plan := mongo.IndexPlan{}
		if err := plan.Add(opts.collection, strings.Split(strings.ReplaceAll(opts.index, " ", ""), ","), nil); err != nil {
			return err
		}
		if err := mongo.EnsureIndexes(ctx, client, plan); err != nil {
			return err
		}
	}

	repo, err := repositories.NewRepository[bson.D](client.Database(), opts.collection, logger,
		repositories.OptionsFromConfig(cfg, nil)...)
	if err != nil {
		return err
	}

	count, err := repo.Count(ctx, doc)
	if err != nil {
		return err
	}
	logger.Info("Matched documents", "collection", opts.collection, "count", count)

	docs, err := repo.Find(ctx, doc, options.Find().SetLimit(opts.limit))
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := printDocument(stdout, *d, opts.canonical); err != nil {
			return err
		}
	}
	return nil
}

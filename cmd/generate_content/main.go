// Command generate_content turns note files into study documents and
// writes each as JSON. With -persist the documents are also stored, all
// in one transaction.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"study-byte/internal/app"
	"study-byte/internal/config"
	"study-byte/internal/database"
	"study-byte/internal/domain"
	"study-byte/internal/logger"
	"study-byte/internal/repository"

	"go.uber.org/zap"
)

type options struct {
	in      string
	out     string
	count   int
	persist bool
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("generate_content", flag.ContinueOnError)
	var o options
	fs.StringVar(&o.in, "in", "notes.txt", "input text file or glob pattern")
	fs.StringVar(&o.out, "out", "generated_content.json", "output file, or directory when -in matches several files")
	fs.IntVar(&o.count, "count", 0, "questions and flashcards per document (0 uses the configured default)")
	fs.BoolVar(&o.persist, "persist", false, "also store the documents in Postgres")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// inputs expands pattern. A pattern matching nothing is an error.
func inputs(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid -in pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no input files match %q", pattern)
	}
	return matches, nil
}

// outputPath maps an input to its JSON file. With several inputs, out is
// a directory and each document is named after its source file.
func outputPath(out, input string, many bool) string {
	if !many {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(out, base+".json")
}

// generate processes every input and writes its document. It stops at the
// first unreadable file.
func generate(ctx context.Context, svc domain.GenerationService, o options, files []string, l *zap.Logger) ([]*domain.GeneratedContent, error) {
	docs := make([]*domain.GeneratedContent, 0, len(files))
	many := len(files) > 1
	for _, f := range files {
		text, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		doc := svc.ProcessContent(ctx, string(text), o.count, domain.DefaultGenerationParams())

		path := outputPath(o.out, f, many)
		if err := repository.WriteContentFile(path, doc); err != nil {
			return nil, err
		}
		l.Info("Generated content",
			zap.String("input", f),
			zap.String("output", path),
			zap.Int("questions", len(doc.TestQuestions)),
			zap.Int("flashcards", len(doc.Flashcards)),
		)
		docs = append(docs, doc)
	}
	return docs, nil
}

// persist stores docs atomically.
func persist(ctx context.Context, tm domain.TransactionManager, repo domain.ContentRepository, docs []*domain.GeneratedContent) error {
	return tm.WithTransaction(ctx, func(ctx context.Context) error {
		for _, d := range docs {
			if err := repo.Save(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	files, err := inputs(o.in)
	if err != nil {
		appLogger.Fatal("No input", zap.Error(err))
	}

	ctx := context.Background()
	comps, err := app.Build(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to build generation pipeline", zap.Error(err))
	}
	defer comps.Close()

	docs, err := generate(ctx, comps.Service, o, files, appLogger)
	if err != nil {
		appLogger.Fatal("Generation failed", zap.Error(err))
	}

	if !o.persist {
		return
	}
	if !cfg.DatabaseEnabled() {
		appLogger.Fatal("-persist needs db.host and db.name to be configured")
	}
	db, err := database.NewSQLXPostgresDB(ctx, cfg.GetDSN(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewContentDatabaseAdapter(db)
	if err := persist(ctx, repository.NewTransactionManagerAdapter(db), repo, docs); err != nil {
		appLogger.Fatal("Failed to store generated content", zap.Error(err))
	}
	for _, d := range docs {
		appLogger.Info("Stored generated content", zap.String("id", d.ID))
	}
}

// Package main is the noteai CLI entry point.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sagemind/noteai/internal/apperr"
	"github.com/sagemind/noteai/internal/chat"
	"github.com/sagemind/noteai/internal/cli"
	"github.com/sagemind/noteai/internal/config"
	"github.com/sagemind/noteai/internal/embedding"
	"github.com/sagemind/noteai/internal/extract"
	"github.com/sagemind/noteai/internal/indexer"
	"github.com/sagemind/noteai/internal/note"
	"github.com/sagemind/noteai/internal/noteid"
	"github.com/sagemind/noteai/internal/vectorstore"
	"github.com/sagemind/noteai/pkg/utils"
)

var version = "dev"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if that
// exists it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath() {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".noteai", "config.yaml")
}

func main() {
	// Provider credentials may live in a .env next to the binary.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "index":
		runIndex(false)
	case "sync":
		runIndex(true)
	case "add":
		runAdd()
	case "remove":
		runRemove()
	case "ask":
		runAsk()
	case "new":
		runNew()
	case "list":
		runList()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("noteai version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and builds a logger; every subcommand starts here.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *zap.Logger) {
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolvedPath),
		zap.String("vault", cfg.Vault.Path))
	return cfg, logger
}

// Components holds initialized services.
type Components struct {
	Store        vectorstore.Store
	Embedder     embedding.Embedder
	Generator    chat.Generator
	Indexer      *indexer.Indexer
	Orchestrator *chat.Orchestrator
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// initializeComponents opens the store and, when an API key is configured,
// wires the provider-backed embedder, indexer, and orchestrator. Embedder,
// Generator, Indexer, and Orchestrator are nil without a key; commands
// that need them must check via requireProvider.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if cfg.Vault.Path == "" {
		return nil, errors.New("vault.path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	store, err := vectorstore.NewSQLiteStore(cfg.Storage.DatabasePath, cfg.OpenAI.EmbeddingDimensions)
	if err != nil {
		return nil, err
	}

	c := &Components{Store: store}
	apiKey := cfg.OpenAI.APIKey()
	if apiKey == "" {
		return c, nil
	}

	openaiEmbedder, err := embedding.NewOpenAIEmbedder(apiKey, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbeddingDimensions)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	c.Embedder = embedding.NewCachedEmbedder(openaiEmbedder, cfg.OpenAI.EmbeddingCacheSize)

	generator, err := chat.NewOpenAIGenerator(apiKey, cfg.OpenAI.ChatModel)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	c.Generator = generator

	c.Indexer = indexer.NewIndexer(
		cfg.Vault.Path,
		extract.NewExtractor(),
		c.Embedder,
		store,
		cfg.Vault.Extensions,
		cfg.Vault.ExcludeDirs,
		indexer.WithLogger(logger),
	)
	c.Orchestrator = chat.NewOrchestrator(
		c.Embedder,
		store,
		generator,
		chat.WithLogger(logger),
		chat.WithTopK(cfg.Retrieval.TopK),
		chat.WithMinScore(cfg.Retrieval.MinScore),
		chat.WithHistorySize(cfg.Chat.HistorySize),
	)
	return c, nil
}

// mustInitialize wraps initializeComponents with the user-facing failure
// messages, including the remediation for a locked note database.
func mustInitialize(cfg *config.Config, logger *zap.Logger) *Components {
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		if errors.Is(err, apperr.ErrStorageLocked) {
			fmt.Fprintln(os.Stderr, "The note database is locked by another noteai process.")
			fmt.Fprintln(os.Stderr, "Close the other process and try again.")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		}
		os.Exit(1)
	}
	return components
}

// requireProvider exits with guidance when a command needs the OpenAI
// provider but no API key is configured.
func requireProvider(cfg *config.Config, c *Components) {
	if c.Embedder != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "This command needs an OpenAI API key. Set %s in the environment or a .env file.\n",
		cfg.OpenAI.APIKeyEnv)
	os.Exit(1)
}

// supportedExtension reports whether path carries one of the configured
// indexable extensions.
func supportedExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func runIndex(incremental bool) {
	name := "index"
	if incremental {
		name = "sync"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	components := mustInitialize(cfg, logger)
	defer components.Close()
	requireProvider(cfg, components)

	ctx := context.Background()
	var (
		n   int
		err error
	)
	if incremental {
		n, err = components.Indexer.IncrementalIndex(ctx)
	} else {
		// A full reindex starts from an empty collection; Reset is atomic,
		// so a failure here leaves the previous index intact.
		if err := components.Store.Reset(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear the index: %v\n", err)
			os.Exit(1)
		}
		n, err = components.Indexer.FullIndex(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d file(s) from %s\n", n, cfg.Vault.Path)
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Println("Usage: noteai add [flags] <file>")
		os.Exit(1)
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad path: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read file: %v\n", err)
		os.Exit(1)
	}
	if !supportedExtension(path, cfg.Vault.Extensions) {
		fmt.Fprintf(os.Stderr, "Cannot index %s: %v\n", path, apperr.ErrUnsupportedFormat)
		os.Exit(1)
	}

	components := mustInitialize(cfg, logger)
	defer components.Close()
	requireProvider(cfg, components)

	components.Indexer.IndexFile(context.Background(), path)
	if !components.Indexer.Tracker().Has(path) {
		fmt.Fprintf(os.Stderr, "File was not indexed (unsupported, excluded, or failed): %s\n", path)
		os.Exit(1)
	}
	fmt.Printf("Note indexed: %s\n", path)
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Println("Usage: noteai remove [flags] <file>")
		os.Exit(1)
	}
	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad path: %v\n", err)
		os.Exit(1)
	}

	components := mustInitialize(cfg, logger)
	defer components.Close()

	// Delete straight from the store: the session tracker starts empty in a
	// fresh process, so removal is keyed by the path-derived note id.
	if err := components.Store.Delete(context.Background(), noteid.ForPath(path)); err != nil {
		fmt.Fprintf(os.Stderr, "Removal failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Note removed: %s\n", path)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: noteai ask [flags] <question>")
		os.Exit(1)
	}

	components := mustInitialize(cfg, logger)
	defer components.Close()
	requireProvider(cfg, components)

	answer, err := components.Orchestrator.Ask(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sorry, I couldn't answer that: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(answer)
}

func runNew() {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	title := fs.String("title", "", "note title (default: suggested from content)")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	content, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read content: %v\n", err)
		os.Exit(1)
	}
	body := strings.TrimSpace(string(content))
	if body == "" {
		fmt.Println("Usage: echo \"note content\" | noteai new [flags]")
		os.Exit(1)
	}

	components := mustInitialize(cfg, logger)
	defer components.Close()
	requireProvider(cfg, components)

	ctx := context.Background()
	n := note.Parse(body, "")
	if *title != "" {
		n.Title = *title
	} else {
		n.Title = components.Generator.SuggestTitle(ctx, body)
	}
	if len(n.Tags) == 0 {
		n.Tags = components.Generator.SuggestTags(ctx, body)
	}

	path := filepath.Join(cfg.Vault.Path, n.SuggestedFileName())
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(os.Stderr, "A note already exists at %s\n", path)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.Vault.Path, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create vault directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(path, []byte(n.ToMarkdown()), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write note: %v\n", err)
		os.Exit(1)
	}

	components.Indexer.IndexFile(ctx, path)
	fmt.Printf("Note created: %s\n", path)
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	outputFormat := fs.String("output", "text", "output format: text or json")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	components := mustInitialize(cfg, logger)
	defer components.Close()

	summaries, err := components.Store.ListAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSummaries(os.Stdout, summaries, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	outputFormat := fs.String("output", "text", "output format: text or json")
	cfg, logger := setup(fs, os.Args[2:])
	defer logger.Sync()

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	components := mustInitialize(cfg, logger)
	defer components.Close()

	count, err := components.Store.Count(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	status := cli.Status{
		Notes:               int(count),
		VaultPath:           cfg.Vault.Path,
		DatabasePath:        cfg.Storage.DatabasePath,
		EmbeddingModel:      cfg.OpenAI.EmbeddingModel,
		EmbeddingDimensions: cfg.OpenAI.EmbeddingDimensions,
		ChatModel:           cfg.OpenAI.ChatModel,
		APIKeySet:           cfg.OpenAI.APIKey() != "",
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`noteai - Semantic search and chat over your notes

Usage:
  noteai index [flags]            Reindex the whole vault from scratch
  noteai sync [flags]             Index files added since this session started
  noteai add [flags] <file>       Index a single file
  noteai remove [flags] <file>    Remove a file from the index
  noteai ask [flags] <question>   Ask a question about your notes
  noteai new [flags]              Create a note from stdin and index it
  noteai list [flags]             List indexed notes with previews
  noteai status [flags]           Show index status
  noteai version                  Show version
  noteai help                     Show this help

Common Flags:
  --config string    Config file path (default: ~/.noteai/config.yaml)
  --debug            Enable debug logging

New Flags:
  --title string     Note title (default: suggested from content)

List/Status Flags:
  --output string    Output format: text or json (default: text)

Examples:
  noteai index
  noteai ask "what did I write about kubernetes?"
  noteai ask "list my notes"
  echo "Remember to rotate the backup keys" | noteai new
  noteai list`)
}

// Copyright 2025 Chorus Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/chorusqa/chorus"
	"github.com/chorusqa/chorus/ai"
	"github.com/chorusqa/chorus/archive"
	"github.com/chorusqa/chorus/config"
	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chorus",
		Usage: "Ask questions across archived social-media sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Run a query through every requested source, streaming progress as NDJSON",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Oracle service host URL",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Oracle model name",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Oracle API token",
					},
					&cli.StringSliceFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Source to query (repeatable; all sources when omitted)",
					},
					&cli.BoolFlag{
						Name:  "recent",
						Usage: "Restrict the query to the most recent items per source",
					},
					&cli.BoolFlag{
						Name:  "discussions",
						Usage: "Also match pre-computed discussion drift topics",
					},
					&cli.StringFlag{
						Name:  "persona",
						Usage: "Persona instruction applied to synthesis",
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Import an NDJSON archive into the database",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source name the records belong to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "items",
						Usage: "Path to NDJSON file of posts",
					},
					&cli.StringFlag{
						Name:  "groups",
						Usage: "Path to NDJSON file of discussion groups",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to write per storage call",
						Value: 500,
					},
				},
			},
			{
				Name:   "sources",
				Usage:  "List sources present in the database",
				Action: sourcesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the config file when given, then applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("host") {
		cfg.Oracle.Host = c.String("host")
	}
	if c.IsSet("model") {
		cfg.Oracle.Model = c.String("model")
	}
	if c.IsSet("token") {
		cfg.Oracle.Token = c.String("token")
	}
	if c.IsSet("persona") {
		cfg.Pipeline.Persona = c.String("persona")
	}
	return cfg, nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	arc, err := chorus.OpenArchive(cfg.DBPath, chorus.WithOracleConfig(ai.NewConfig(cfg.OracleOptions()...)))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arc.Close()

	orch, err := arc.NewOrchestrator(pipeline.WithConfig(cfg.PipelineConfig()))
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	query := &core.Query{
		Text:               question,
		Sources:            c.StringSlice("source"),
		RecentOnly:         c.Bool("recent"),
		IncludeDiscussions: c.Bool("discussions"),
	}
	if len(query.Sources) == 0 {
		query.Sources = cfg.Sources
	}
	if len(query.Sources) == 0 {
		query.Sources = nil
	}

	events, results, err := orch.Ask(context.Background(), query)
	if err != nil {
		return err
	}

	// One JSON object per line: progress events first, the full result last.
	encoder := json.NewEncoder(os.Stdout)
	for event := range events {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
	result := <-results
	if result == nil {
		return fmt.Errorf("no result produced")
	}
	return encoder.Encode(result)
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	itemsPath := c.String("items")
	groupsPath := c.String("groups")
	if itemsPath == "" && groupsPath == "" {
		return fmt.Errorf("at least one of --items or --groups is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	arc, err := chorus.OpenArchive(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arc.Close()

	imp, err := arc.NewImporter(archive.WithBatchSize(c.Int("batch-size")))
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer imp.Release()

	source := c.String("source")

	if itemsPath != "" {
		file, err := os.Open(itemsPath)
		if err != nil {
			return fmt.Errorf("failed to open items file: %w", err)
		}
		report, err := imp.ImportItems(ctx, source, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("item import failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Items: %d added, %d skipped\n", report.Added, report.Skipped)
	}

	if groupsPath != "" {
		file, err := os.Open(groupsPath)
		if err != nil {
			return fmt.Errorf("failed to open groups file: %w", err)
		}
		report, err := imp.ImportDiscussions(ctx, source, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("discussion import failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Discussion groups: %d added, %d skipped\n", report.Added, report.Skipped)
	}

	return nil
}

func sourcesCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	arc, err := chorus.OpenArchive(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer arc.Close()

	sources, err := arc.ContentRepository().Sources(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	for _, source := range sources {
		fmt.Println(source)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

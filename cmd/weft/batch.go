package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	llmdispatch "github.com/weftlabs/weft-llm-go"
	"github.com/weftlabs/weft-llm-go/cache/sqlite"
)

// batchItem is one request loaded from a batch file. Model and
// Temperature override the command-line defaults when set.
type batchItem struct {
	Prompt      string   `yaml:"prompt"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

func newBatchCmd() *cobra.Command {
	var (
		model       string
		cachePath   string
		concurrency int
		plain       bool
		noCache     bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "batch <requests-file>",
		Short: "Dispatch a file of requests concurrently",
		Long: `Reads requests from a file and dispatches them concurrently.

A .txt file holds one prompt per line; blank lines and lines starting
with # are skipped. A .yaml file holds a list of requests, each with a
prompt and optional per-request model and temperature overrides.
Responses print in input order after the batch completes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loadEnv()
			log := newLogger(verbose)

			items, err := readBatchFile(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no requests found in %s", args[0])
			}

			registry, err := llmdispatch.DefaultRegistry()
			if err != nil {
				return err
			}

			specs := make([]*llmdispatch.RequestSpec, 0, len(items))
			for i, item := range items {
				var opts []llmdispatch.SpecOption
				if noCache {
					opts = append(opts, llmdispatch.WithoutCache())
				}
				if item.Temperature != nil {
					opts = append(opts, llmdispatch.WithTemperature(*item.Temperature))
				}
				itemModel := item.Model
				if itemModel == "" {
					itemModel = model
				}
				spec, err := llmdispatch.NewPromptSpec(registry, itemModel, item.Prompt, opts...)
				if err != nil {
					return fmt.Errorf("request %d: %w", i+1, err)
				}
				specs = append(specs, spec)
			}

			var reporter llmdispatch.ProgressReporter
			if plain {
				reporter = llmdispatch.NewPlainReporter(os.Stderr)
			} else {
				reporter = llmdispatch.NewLiveReporter(os.Stderr)
			}

			dispatcherOpts := []llmdispatch.DispatcherOption{
				llmdispatch.WithLogger(log),
				llmdispatch.WithReporter(reporter),
			}
			if !noCache {
				path := cachePath
				if path == "" {
					path, err = defaultCachePath()
					if err != nil {
						return err
					}
				}
				cache, err := sqlite.Open(path, log)
				if err != nil {
					return err
				}
				defer func() { _ = cache.Close() }()
				dispatcherOpts = append(dispatcherOpts, llmdispatch.WithCache(cache))
			}

			dispatcher := llmdispatch.NewDispatcher(buildAdapters(log), dispatcherOpts...)
			outcome := dispatcher.RunBatch(context.Background(), specs, concurrency)

			for _, item := range outcome {
				fmt.Printf("--- [%d] %s\n", item.Index+1, items[item.Index].Prompt)
				if item.Failed() {
					fmt.Printf("ERROR: %v\n", item.Err)
					continue
				}
				fmt.Println(item.Result.Text())
			}

			if failed := outcome.FailureCount(); failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(outcome))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "mock", "default model name or alias")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 5, "max in-flight requests (0 = unbounded)")
	cmd.Flags().BoolVar(&plain, "plain", false, "plain-text progress instead of colored output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache database path (default ~/.weft/cache.db)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log adapter activity")

	return cmd
}

// readBatchFile loads requests from a prompts file. YAML files carry
// structured per-request overrides; anything else is one prompt per
// line.
func readBatchFile(path string) ([]batchItem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAMLBatch(path)
	default:
		return readLineBatch(path)
	}
}

func readYAMLBatch(path string) ([]batchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []batchItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	return items, nil
}

func readLineBatch(path string) ([]batchItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []batchItem
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, batchItem{Prompt: line})
	}
	return items, scanner.Err()
}

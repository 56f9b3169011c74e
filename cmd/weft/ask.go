package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	llmdispatch "github.com/weftlabs/weft-llm-go"
	"github.com/weftlabs/weft-llm-go/cache/sqlite"
)

func newAskCmd() *cobra.Command {
	var (
		model       string
		system      string
		schemaPath  string
		schemaName  string
		cachePath   string
		temperature float64
		stream      bool
		noCache     bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a single prompt and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loadEnv()
			log := newLogger(verbose)

			registry, err := llmdispatch.DefaultRegistry()
			if err != nil {
				return err
			}

			var opts []llmdispatch.SpecOption
			if cmd.Flags().Changed("temperature") {
				opts = append(opts, llmdispatch.WithTemperature(temperature))
			}
			if stream {
				opts = append(opts, llmdispatch.WithStreaming())
			}
			if noCache {
				opts = append(opts, llmdispatch.WithoutCache())
			}
			if schemaPath != "" {
				definition, err := os.ReadFile(schemaPath)
				if err != nil {
					return fmt.Errorf("read schema: %w", err)
				}
				name := schemaName
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))
				}
				opts = append(opts, llmdispatch.WithOutputSchema(llmdispatch.NewSchema(name, definition)))
			}

			thread := llmdispatch.MessageThread{}
			if system != "" {
				thread = append(thread, llmdispatch.SystemText(system))
			}
			thread = append(thread, llmdispatch.UserText(strings.Join(args, " ")))

			spec, err := llmdispatch.NewRequestSpec(registry, model, thread, opts...)
			if err != nil {
				return err
			}

			dispatcherOpts := []llmdispatch.DispatcherOption{llmdispatch.WithLogger(log)}
			if !stream && !noCache {
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
			ctx := context.Background()

			if stream {
				events, err := dispatcher.Stream(ctx, spec)
				if err != nil {
					return err
				}
				var usage *llmdispatch.Usage
				for event := range events {
					if event.Err != nil {
						return event.Err
					}
					if event.Usage != nil {
						usage = event.Usage
						continue
					}
					fmt.Print(event.Delta)
				}
				fmt.Println()
				if verbose && usage != nil {
					fmt.Fprintf(os.Stderr, "tokens: %d in, %d out\n", usage.InputTokens, usage.OutputTokens)
				}
				return nil
			}

			result, err := dispatcher.Query(ctx, spec)
			if err != nil {
				return err
			}
			fmt.Println(result.Text())
			if verbose {
				fmt.Fprintf(os.Stderr, "model: %s  tokens: %d in, %d out  duration: %s\n",
					result.Model, result.Usage.InputTokens, result.Usage.OutputTokens, result.Duration)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "mock", "model name or alias")
	cmd.Flags().StringVarP(&system, "system", "s", "", "system prompt")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "sampling temperature")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON schema for structured output")
	cmd.Flags().StringVar(&schemaName, "schema-name", "", "schema name (defaults to the schema file name)")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream the response as it is generated")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache database path (default ~/.weft/cache.db)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log adapter activity and usage")

	return cmd
}

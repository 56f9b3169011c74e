package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	llmdispatch "github.com/weftlabs/weft-llm-go"
)

func newModelsCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List supported models and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			var registry *llmdispatch.ModelRegistry
			var err error
			if registryPath != "" {
				registry, err = llmdispatch.LoadRegistryFromFile(registryPath)
			} else {
				registry, err = llmdispatch.DefaultRegistry()
			}
			if err != nil {
				return err
			}

			models := registry.Models()
			providers := make([]llmdispatch.ProviderID, 0, len(models))
			for provider := range models {
				providers = append(providers, provider)
			}
			sort.Slice(providers, func(i, j int) bool { return providers[i] < providers[j] })

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL")
			for _, provider := range providers {
				for _, model := range models[provider] {
					fmt.Fprintf(w, "%s\t%s\n", provider, model)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			aliases := registry.Aliases()
			if len(aliases) == 0 {
				return nil
			}
			names := make([]string, 0, len(aliases))
			for name := range aliases {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ALIAS\tMODEL")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\n", name, aliases[name])
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "YAML model catalog to load instead of the built-in one")
	return cmd
}

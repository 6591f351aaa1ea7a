package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newEndpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List the endpoints of an OpenAPI/Swagger document",
		Example: strings.TrimSpace(`  spec2testdata endpoints --input spec.yaml
  spec2testdata endpoints --input spec.yaml --include-tags users`),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				return newUsageError("endpoints: --input is required")
			}
			includeTags, err := cmd.Flags().GetStringSlice("include-tags")
			if err != nil {
				return err
			}
			excludeTags, err := cmd.Flags().GetStringSlice("exclude-tags")
			if err != nil {
				return err
			}

			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			logger := newLogger(verbose)
			defer func() { _ = logger.Sync() }()

			sm, err := loadModel(cmd.Context(), logger, input, sanitizeTags(includeTags), sanitizeTags(excludeTags))
			if err != nil {
				return err
			}

			for _, ep := range sm.Endpoints {
				line := fmt.Sprintf("%-7s %s", strings.ToUpper(string(ep.Method)), ep.Path)
				if ep.Summary != "" {
					line += "  # " + ep.Summary
				}
				fmt.Fprintln(os.Stdout, line)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")

	return cmd
}

// Package cli implements the pinotbridge command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{"error": err.Error()}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
			}
			_ = json.NewEncoder(os.Stdout).Encode(errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host    string
		token   string
		output  string
		profile string
	)

	rootCmd := &cobra.Command{
		Use:           "pinotbridge",
		Short:         "Split-planning connector CLI",
		Long:          "Command-line interface for the pinot-bridge split-planning API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Fill unset flags from the profile config, if one exists.
			cfg, err := LoadUserConfig()
			if err == nil {
				p := cfg.ActiveProfile(profile)
				if host == "" {
					host = p.Host
				}
				if token == "" {
					token = p.Token
				}
				if output == "" && p.Output != "" {
					output = p.Output
				}
			}
			if host == "" {
				host = "http://localhost:8080"
			}
			if output == "" {
				output = "table"
			}
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			_ = cmd.Root().PersistentFlags().Set("host", host)
			_ = cmd.Root().PersistentFlags().Set("token", token)
			_ = cmd.Root().PersistentFlags().Set("output", output)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&host, "host", "", "planning API base URL (default http://localhost:8080)")
	pf.StringVar(&token, "token", "", "bearer token for the planning API")
	pf.StringVarP(&output, "output", "o", "", "output format: table or json")
	pf.StringVar(&profile, "profile", "", "config profile to use")

	rootCmd.AddCommand(
		newPlanCmd(),
		newRoutingCmd(),
		newTimeBoundaryCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// clientFromCmd builds an API client from the root command's persistent flags.
func clientFromCmd(cmd *cobra.Command) *Client {
	host, _ := cmd.Root().PersistentFlags().GetString("host")
	token, _ := cmd.Root().PersistentFlags().GetString("token")
	return NewClient(host, token)
}

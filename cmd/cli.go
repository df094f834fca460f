package cmd

import (
	"context"
	"fmt"
	"mirrorbalance/api"
	"mirrorbalance/internal/app"
	l3_service "mirrorbalance/internal/service/l3"
	"mirrorbalance/internal/util"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

type cliOptions struct {
	secretsFile string
}

func (o cliOptions) dependencies(ctx context.Context) (*api.ApiHandler, *util.Secrets, error) {
	var (
		secrets *util.Secrets
		err     error
	)
	if o.secretsFile != "" {
		secrets, err = util.LoadSecretsFile(o.secretsFile)
	} else {
		secrets, err = util.LoadSecrets()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	apiHandler, err := NewDependencies(ctx, secrets)
	if err != nil {
		return nil, nil, err
	}
	return apiHandler, secrets, nil
}

// NewRootCommand builds the mirror CLI
func NewRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "mirror",
		Short:         "Advise how to make one brokerage account mirror another",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.secretsFile, "secrets", "", "path to the secrets file (defaults by MIRROR_ENV)")

	root.AddCommand(
		newRebalanceCommand(opts),
		newAccountsCommand(opts),
		newServeCommand(opts),
	)
	return root
}

func newRebalanceCommand(opts *cliOptions) *cobra.Command {
	var (
		format    string
		sendEmail bool
		outFile   string
	)

	c := &cobra.Command{
		Use:   "rebalance",
		Short: "Compute the trades that would make the secondary account mirror the primary",
		RunE: func(c *cobra.Command, args []string) error {
			reportFormat, err := l3_service.ParseReportFormat(format)
			if err != nil {
				return err
			}

			apiHandler, _, err := opts.dependencies(c.Context())
			if err != nil {
				return err
			}

			result, err := apiHandler.RebalancerHandler.Rebalance(c.Context(), app.RebalanceInput{
				Format:    reportFormat,
				SendEmail: sendEmail,
			})
			if err != nil {
				return fmt.Errorf("failed to rebalance: %w", err)
			}

			if outFile != "" {
				return os.WriteFile(outFile, result.Rendered, 0o644)
			}
			_, err = c.OutOrStdout().Write(result.Rendered)
			return err
		},
	}
	c.Flags().StringVarP(&format, "format", "f", string(l3_service.ReportFormatText), "report format: text, csv, json or markdown")
	c.Flags().BoolVar(&sendEmail, "email", false, "also email the report through SES")
	c.Flags().StringVarP(&outFile, "out", "o", "", "write the report to a file instead of stdout")
	return c
}

func newAccountsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List the open accounts known to the provider",
		RunE: func(c *cobra.Command, args []string) error {
			apiHandler, _, err := opts.dependencies(c.Context())
			if err != nil {
				return err
			}

			accounts, err := apiHandler.ReferenceDataCache.Accounts(c.Context())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			names := accounts.Names()
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", name, accounts[name].ID)
			}
			return nil
		},
	}
}

func newServeCommand(opts *cliOptions) *cobra.Command {
	var port int

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rebalance report over HTTP",
		RunE: func(c *cobra.Command, args []string) error {
			apiHandler, secrets, err := opts.dependencies(c.Context())
			if err != nil {
				return err
			}
			if port == 0 {
				port = secrets.Api.Port
			}
			return apiHandler.StartApi(port)
		},
	}
	c.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (defaults to api.port)")
	return c
}

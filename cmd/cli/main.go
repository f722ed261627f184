package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/gocommission/internal/adapter/http/dto"
	"github.com/iho/gocommission/internal/infrastructure/config"
	"github.com/iho/gocommission/internal/infrastructure/logger"
	"github.com/iho/gocommission/internal/infrastructure/postgres"
)

var (
	baseURL    string
	timeout    time.Duration
	jsonOutput bool
)

// errCheckFailed makes the process exit non-zero after output was already printed.
var errCheckFailed = errors.New("check failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gocommission-cli",
		Short:         "GoCommission CLI tool",
		Long:          `A command line interface for the commission engine API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the commission API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON responses")

	commissionCmd := &cobra.Command{
		Use:   "commission",
		Short: "Commission processing",
	}
	commissionCmd.AddCommand(processCmd(), batchCmd())

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.AddCommand(migrateUpCmd(), migrateDownCmd())

	rootCmd.AddCommand(commissionCmd, ledgerCmd, migrateCmd)

	return rootCmd
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <sale-item-id>",
		Short: "Process the commission of one sale item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/sale-items/" + url.PathEscape(args[0]) + "/commission"

			status, body, err := doRequest(http.MethodPost, path)
			if err != nil {
				return err
			}

			if status != http.StatusOK {
				return printAPIError(cmd.OutOrStdout(), status, body)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), json.RawMessage(body))
			}

			var receipt dto.ReceiptResponse
			if err := json.Unmarshal(body, &receipt); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printReceipt(cmd.OutOrStdout(), &receipt)

			return nil
		},
	}
}

func batchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process pending sale items",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := doRequest(http.MethodPost, "/api/v1/commissions/batch?limit="+strconv.Itoa(limit))
			if err != nil {
				return err
			}

			if status != http.StatusOK {
				return printAPIError(cmd.OutOrStdout(), status, body)
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), json.RawMessage(body))
			}

			var summary dto.BatchSummaryResponse
			if err := json.Unmarshal(body, &summary); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Attempted: %d  Processed: %d  Skipped: %d  Failed: %d\n",
				summary.Attempted, summary.Processed, summary.Skipped, summary.Failed)
			fmt.Fprintf(out, "Total commission: %s\n", summary.TotalCommission.StringFixed(2))

			for _, f := range summary.Failures {
				fmt.Fprintf(out, "  %s: %s\n", f.SaleItemID, truncate(f.Error, 80))
			}

			if summary.Failed > 0 {
				return errCheckFailed
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of sale items to process")

	return cmd
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that commission totals match ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := doRequest(http.MethodGet, "/api/v1/ledger/consistency")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if status != http.StatusOK && status != http.StatusConflict {
				return printAPIError(out, status, body)
			}

			var result dto.ConsistencyResponse
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if result.Consistent {
				fmt.Fprintln(out, "Consistency check PASSED")
				return nil
			}

			fmt.Fprintf(out, "Consistency check FAILED (%d violations)\n", len(result.Violations))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SALE ITEM\tSUBTOTAL\tTOTAL\tENTRIES\tBALANCE")
			for _, v := range result.Violations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					truncate(v.SaleItemID, 26),
					v.Subtotal.StringFixed(2),
					v.TotalCommissionAmount.StringFixed(2),
					v.EntriesTotal.StringFixed(2),
					v.BalanceAfterCommission.StringFixed(2),
				)
			}
			w.Flush()

			return errCheckFailed
		},
	}
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: "console",
		Output: cmd.ErrOrStderr(),
	})

	return cfg, log, nil
}

func doRequest(method, path string) (int, []byte, error) {
	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func printReceipt(out io.Writer, r *dto.ReceiptResponse) {
	fmt.Fprintf(out, "Sale item: %s\n", r.SaleItemID)
	fmt.Fprintf(out, "Subtotal:  %s\n\n", r.Subtotal.StringFixed(2))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tBENEFICIARY\tNAME\tRATE\tAMOUNT")
	for _, p := range r.Payouts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%%\t%s\n",
			p.Role,
			p.BeneficiaryID,
			truncate(p.BeneficiaryName, 24),
			p.Rate.String(),
			p.Amount.StringFixed(2),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal commission:         %s\n", r.TotalCommission.StringFixed(2))
	fmt.Fprintf(out, "Balance after commission: %s\n", r.BalanceAfterCommission.StringFixed(2))
}

func printAPIError(out io.Writer, status int, body []byte) error {
	var apiErr dto.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error == "" {
		fmt.Fprintf(out, "Request failed (status %d): %s\n", status, truncate(string(body), 200))
		return errCheckFailed
	}

	if apiErr.Kind != "" {
		fmt.Fprintf(out, "Request failed (status %d, %s): %s\n", status, apiErr.Kind, apiErr.Message)
	} else {
		fmt.Fprintf(out, "Request failed (status %d): %s %s\n", status, apiErr.Error, apiErr.Message)
	}

	return errCheckFailed
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

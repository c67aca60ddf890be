package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run SQL against the warehouse",
		Long: `Execute SQL against the configured warehouse, where the base table, the
views and the snapshot tables live.

The statement comes from the arguments, from --input, or from stdin when it
is piped. When invoked without any of these on a terminal, an interactive
REPL starts.`,
		Example: `  # Execute SQL directly
  crowdstat query "SELECT * FROM country_success_rate"

  # From a file, as CSV
  crowdstat query -i adhoc.sql -o csv

  # Interactive mode
  crowdstat query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, cc)
	}

	return executeStatement(cmd, cc, sqlQuery)
}

// executeStatement runs one statement and renders its rows.
func executeStatement(cmd *cobra.Command, cc *CommandContext, sqlQuery string) error {
	sqlQuery = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";"))
	if sqlQuery == "" {
		return fmt.Errorf("empty query")
	}

	rs, err := cc.Engine.Query(cmd.Context(), sqlQuery)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return renderResultSet(cc.Renderer, rs)
}

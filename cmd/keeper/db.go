package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keeper/internal/sqlite"
	"github.com/mesh-intelligence/keeper/pkg/types"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Run statements and bulk-load files into the database",
	}
	cmd.AddCommand(newDBExecCmd(a))
	cmd.AddCommand(newDBQueryCmd(a))
	cmd.AddCommand(newDBLoadCSVCmd(a))
	cmd.AddCommand(newDBLoadJSONCmd(a))
	return cmd
}

// stringParams converts positional CLI arguments to statement parameters.
func stringParams(args []string) []any {
	params := make([]any, len(args))
	for i, s := range args {
		params[i] = s
	}
	return params
}

func newDBExecCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql> [params...]",
		Short: "Execute a statement and print the affected row count",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res types.Result
			err := sqlite.WithLoader(cmd.Context(), a.loaderConfig(), func(l *sqlite.Loader) error {
				var err error
				res, err = l.RunStatement(cmd.Context(), args[0], stringParams(args[1:]), false)
				return err
			})
			if err != nil {
				return classify(err)
			}

			if a.flagJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int64{"rows_affected": res.RowsAffected})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows affected\n", res.RowsAffected)
			return nil
		},
	}
}

func newDBQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [params...]",
		Short: "Run a read query and print its rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res types.Result
			err := sqlite.WithLoader(cmd.Context(), a.loaderConfig(), func(l *sqlite.Loader) error {
				var err error
				res, err = l.RunStatement(cmd.Context(), args[0], stringParams(args[1:]), true)
				return err
			})
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flagJSON {
				rows := res.Rows
				if rows == nil {
					rows = []types.Row{}
				}
				return writeJSON(out, rows)
			}
			if res.Columns == nil {
				fmt.Fprintf(out, "%d rows affected\n", res.RowsAffected)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for i, c := range res.Columns {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, c)
			}
			fmt.Fprintln(tw)
			for _, row := range res.Rows {
				for i, c := range res.Columns {
					if i > 0 {
						fmt.Fprint(tw, "\t")
					}
					fmt.Fprint(tw, formatValue(row[c]))
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
}

// formatValue renders a column value for table output.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", x)
	default:
		return fmt.Sprint(x)
	}
}

func newDBLoadCSVCmd(a *app) *cobra.Command {
	var (
		columns   string
		noHeader  bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "load-csv <table> <file>",
		Short: "Insert rows from a CSV file",
		Long:  "Insert rows from a CSV file. The header row names the columns unless --columns is given; --no-header requires --columns.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := types.CSVOptions{
				Columns:   splitColumns(columns),
				NoHeader:  noHeader,
				BatchSize: batchSize,
			}
			var n int64
			err := sqlite.WithLoader(cmd.Context(), a.loaderConfig(), func(l *sqlite.Loader) error {
				var err error
				n, err = l.InsertFromCSV(cmd.Context(), args[0], args[1], opts)
				return err
			})
			if err != nil {
				return classify(err)
			}
			return printInserted(a, cmd, args[0], n)
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated destination columns")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "the file has no header row")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per insert statement (default from config)")
	return cmd
}

func newDBLoadJSONCmd(a *app) *cobra.Command {
	var (
		columns   string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "load-json <table> <file>",
		Short: "Insert rows from a JSON object or array of objects",
		Long:  "Insert rows from a JSON file. Without --columns the keys of the first object name the columns; missing keys load as NULL.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := types.JSONOptions{
				Columns:   splitColumns(columns),
				BatchSize: batchSize,
			}
			var n int64
			err := sqlite.WithLoader(cmd.Context(), a.loaderConfig(), func(l *sqlite.Loader) error {
				var err error
				n, err = l.InsertFromJSON(cmd.Context(), args[0], args[1], opts)
				return err
			})
			if err != nil {
				return classify(err)
			}
			return printInserted(a, cmd, args[0], n)
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "comma-separated destination columns")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per insert statement (default from config)")
	return cmd
}

func printInserted(a *app, cmd *cobra.Command, table string, n int64) error {
	if a.flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"table": table, "inserted": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d rows into %s\n", n, table)
	return nil
}

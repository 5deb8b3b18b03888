package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/moonlitlabs/oneiro/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportDBPath string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every dream as JSON",
	Long:  "Export the full journal to JSON without running the server. Writes to stdout unless --out is given.",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDBPath, "db", "data/oneiro.db",
		"Database path (overrides ONEIRO_DB_PATH default)")
	exportCmd.Flags().StringVar(&exportOut, "out", "",
		"Output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := exportDBPath
	if v := os.Getenv("ONEIRO_DB_PATH"); v != "" && !cmd.Flags().Changed("db") {
		path = v
	}

	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	dreams, err := db.ExportAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("exporting dreams: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dreams); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d dreams to %s\n", len(dreams), exportOut)
	}
	return nil
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-error-catalog/internal/export"
	"github.com/tbourn/go-error-catalog/internal/repo"
	"github.com/tbourn/go-error-catalog/internal/services"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as CSV",
	Long: `Write every catalog entry as CSV to stdout or to --output.

Examples:
  catalog export > errors.csv
  catalog export -o errors.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	items, err := services.NewCatalogService(repo.NewErrorStore(db)).List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteCSV(w, items); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-error-catalog/internal/repo"
	"github.com/tbourn/go-error-catalog/internal/seed"
	"github.com/tbourn/go-error-catalog/internal/services"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the seed data set into the catalog",
	Long: `Insert seed entries whose detailed name is not yet in the catalog.
Existing entries are left untouched, so seeding twice is harmless.

The data set is the embedded default unless --file or SEED_PATH names a
YAML or CSV file (CSV in the format written by "catalog export").

Examples:
  catalog seed
  catalog seed --file errors.yaml
  catalog seed --file backup.csv`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (default: SEED_PATH or the embedded set)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	path := seedFile
	if path == "" {
		path = cfg.SeedPath
	}
	entries, err := seed.Resolve(path)
	if err != nil {
		return fmt.Errorf("load seed data: %w", err)
	}

	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := seed.Run(cmd.Context(), services.NewCatalogService(repo.NewErrorStore(db)), entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d entries\n", n, len(entries))
	return nil
}

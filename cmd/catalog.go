package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sceap-org/sceap/internal/loadlist"
	"github.com/sceap-org/sceap/internal/sizing"
)

var catalogImportFlags struct {
	file string
	name string
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage stored cable size catalogs",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a catalog XLSX into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := loadlist.ReadFile(catalogImportFlags.file)
		if err != nil {
			return err
		}
		entries, rowErrs, err := loadlist.ParseCatalog(rows)
		if err != nil {
			return err
		}
		for _, e := range rowErrs {
			zap.L().Warn("skipped row", zap.Int("row", e.Row), zap.String("reason", e.Reason))
		}
		if _, err := sizing.NewCatalog(entries); err != nil {
			return err
		}

		if err := env.Store.SaveCatalog(ctx, catalogImportFlags.name, entries); err != nil {
			return err
		}

		fmt.Printf("Imported catalog %q with %d sizes\n", catalogImportFlags.name, len(entries))
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		names, err := env.Store.ListCatalogs(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().StringVar(&catalogImportFlags.file, "file", "", "catalog file, .xlsx or .csv (required)")
	catalogImportCmd.Flags().StringVar(&catalogImportFlags.name, "name", "", "catalog name (required)")
	catalogImportCmd.MarkFlagRequired("file")
	catalogImportCmd.MarkFlagRequired("name")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

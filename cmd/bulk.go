package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sceap-org/sceap/internal/export"
	"github.com/sceap-org/sceap/internal/loadlist"
)

var bulkFlags struct {
	file      string
	out       string
	projectID string
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Size every cable in a load list file",
	Long:  "Reads an XLSX or CSV load list, sizes all cables concurrently, writes results to the chosen output format, and optionally persists them under a project.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rows, err := loadlist.ReadFile(bulkFlags.file)
		if err != nil {
			return err
		}
		specs, rowErrs, err := loadlist.ParseLoadList(rows)
		if err != nil {
			return err
		}
		for _, e := range rowErrs {
			zap.L().Warn("skipped row", zap.Int("row", e.Row), zap.String("reason", e.Reason))
		}

		batch := env.Engine.SizeBatch(ctx, specs, cfg.Sizing.Concurrency)
		for _, e := range batch.Errors {
			zap.L().Warn("cable failed",
				zap.String("cable", e.CableNumber),
				zap.String("reason", e.Reason),
			)
		}

		if bulkFlags.projectID != "" {
			saved, err := env.Store.SaveResults(ctx, bulkFlags.projectID, batch.Results)
			if err != nil {
				return err
			}
			zap.L().Info("saved results", zap.String("project", bulkFlags.projectID), zap.Int("count", saved))
		}

		if bulkFlags.out != "" {
			f, err := os.Create(bulkFlags.out)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()

			switch strings.ToLower(filepath.Ext(bulkFlags.out)) {
			case ".csv":
				err = export.WriteCSV(f, batch.Results)
			case ".json":
				err = export.WriteJSON(f, batch.Results)
			case ".xlsx":
				err = export.WriteXLSX(f, batch.Results)
			default:
				err = eris.Errorf("unsupported output format: %s", bulkFlags.out)
			}
			if err != nil {
				return err
			}
		}

		fmt.Printf("Sized %d cables (%d skipped rows, %d failures)\n",
			len(batch.Results), len(rowErrs), len(batch.Errors))
		return nil
	},
}

func init() {
	bulkCmd.Flags().StringVar(&bulkFlags.file, "file", "", "load list file, .xlsx or .csv (required)")
	bulkCmd.Flags().StringVar(&bulkFlags.out, "out", "", "results output file (.csv, .json, or .xlsx)")
	bulkCmd.Flags().StringVar(&bulkFlags.projectID, "project", "", "project id to persist results under")
	bulkCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(bulkCmd)
}

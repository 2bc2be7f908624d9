package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sceap-org/sceap/internal/loadlist"
)

var templateFlags struct {
	kind string
	out  string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an XLSX import template",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(templateFlags.out)
		if err != nil {
			return eris.Wrap(err, "create template file")
		}
		defer f.Close()

		switch templateFlags.kind {
		case "loadlist":
			err = loadlist.WriteLoadListTemplate(f)
		case "catalog":
			err = loadlist.WriteCatalogTemplate(f)
		default:
			return eris.Errorf("unknown template kind %q (loadlist, catalog)", templateFlags.kind)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %s template to %s\n", templateFlags.kind, templateFlags.out)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateFlags.kind, "kind", "loadlist", "template kind (loadlist, catalog)")
	templateCmd.Flags().StringVar(&templateFlags.out, "out", "", "output file (required)")
	templateCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(templateCmd)
}

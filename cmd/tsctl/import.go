package main

import (
	"encoding/json"
	"fmt"
	"os"

	"timesheet/internal/service"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [workbook.xlsx]",
	Short: "Load projects, members and form responses from a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		im := service.NewImporter(db, cfg.Import)
		raw, err := cfg.NewRawClient()
		if err != nil {
			return fmt.Errorf("catalog client: %w", err)
		}
		if sync := service.NewCatalogSync(raw, cfg.MOI); sync.Ready() {
			im.SetSyncer(sync)
		}

		report, err := im.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

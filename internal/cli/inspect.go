package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/media"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <document>",
		Short: "Report how each media element of a document would render",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := cda.ParseDocument(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			items := media.Inspect(doc)
			if items == nil {
				items = []media.Item{}
			}
			out, err := json.MarshalIndent(map[string]any{"media": items}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caretext/cdarender/internal/docximport"
)

func newImportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import <file.docx>",
		Short: "Convert a Word document into a narrative block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			narrative, err := docximport.Import(f, info.Size())
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), narrative)
				return nil
			}
			return os.WriteFile(output, []byte(narrative), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

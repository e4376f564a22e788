package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caretext/cdarender/internal/batch"
	"github.com/caretext/cdarender/internal/render"
)

type renderOpts struct {
	fromFile        string
	fromDir         string
	toDir           string
	output          string
	concurrency     int
	maxDepth        int
	continueOnError bool
	flatten         bool
	pretty          bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{concurrency: 4, maxDepth: render.DefaultMaxDepth, pretty: true}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render clinical documents to narrative JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.fromFile != "" && opts.fromDir != "":
				return fmt.Errorf("--from-file and --from-dir are mutually exclusive")
			case opts.fromFile != "":
				return runRenderFile(cmd, opts)
			case opts.fromDir != "":
				return runRenderDir(cmd, opts)
			}
			return fmt.Errorf("one of --from-file or --from-dir is required")
		},
	}

	cmd.Flags().StringVar(&opts.fromFile, "from-file", "", "render a single document")
	cmd.Flags().StringVar(&opts.fromDir, "from-dir", "", "render every document under a directory")
	cmd.Flags().StringVar(&opts.toDir, "to-dir", "", "output directory for --from-dir")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file for --from-file (stdout if empty)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "parallel renders for --from-dir")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum narrative nesting depth")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "keep rendering after failures")
	cmd.Flags().BoolVar(&opts.flatten, "flatten", false, "write all outputs directly into --to-dir")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", opts.pretty, "indent JSON output")

	return cmd
}

func runRenderFile(cmd *cobra.Command, opts renderOpts) error {
	data, err := batch.RenderFile(opts.fromFile, opts.maxDepth, opts.pretty)
	if err != nil {
		return err
	}
	if opts.output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	return os.WriteFile(opts.output, data, 0o644)
}

func runRenderDir(cmd *cobra.Command, opts renderOpts) error {
	if opts.toDir == "" {
		return fmt.Errorf("--to-dir is required with --from-dir")
	}
	log := loggerFrom(cmd.Context())
	report, err := batch.RenderDir(cmd.Context(), log, opts.fromDir, opts.toDir, batch.Options{
		Workers:         opts.concurrency,
		MaxDepth:        opts.maxDepth,
		ContinueOnError: opts.continueOnError,
		Flatten:         opts.flatten,
		Pretty:          opts.pretty,
	})
	if err != nil {
		return err
	}
	log.Info("render complete", "rendered", report.Rendered, "failed", report.Failed)
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

// defaultMergeOutput is the merge command's output when -o is not given.
const defaultMergeOutput = "merged.pdf"

func newMergeCmd(env *Environment, common *commonFlags) *cobra.Command {
	var (
		f      settingsFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "merge INPUT.html...",
		Short: "Render several HTML documents into one PDF",
		Long: `Render several HTML documents into one PDF, pages in argument order.

Documents are rendered without template substitution or a base URL, so
relative references do not resolve.`,
		Example: `  html2pdf merge -o book.pdf cover.html chapter1.html chapter2.html`,
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), env, cmd.Flags(), common, &f, output, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&output, "output", "o", defaultMergeOutput, "output PDF path")
	addPolicyFlags(fs, &f.policy)
	addEngineFlags(fs, &f.engine, false)
	addPageFlags(fs, &f.page)

	return cmd
}

func runMerge(ctx context.Context, env *Environment, fs *flag.FlagSet, common *commonFlags, f *settingsFlags, output string, inputs []string) error {
	cfg, err := resolveConfig(fs, common, f)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, env.Stderr)

	docs := make([]string, len(inputs))
	for i, input := range inputs {
		if docs[i], err = readInput(input); err != nil {
			return err
		}
	}

	r, err := env.NewRenderer(rendererOptions(cfg, urlPatterns(cfg), logger)...)
	if err != nil {
		return err
	}
	defer closeRenderer(r, logger)

	pdf, err := r.RenderMerged(ctx, docs)
	if err != nil {
		return fmt.Errorf("merging %d documents: %w", len(docs), err)
	}
	return writePDF(logger, output, pdf)
}

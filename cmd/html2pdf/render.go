package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// renderFlags holds the input and output flags of the render command.
type renderFlags struct {
	output string
	css    string
	data   string
}

func newRenderCmd(env *Environment, common *commonFlags) *cobra.Command {
	var (
		f  settingsFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render INPUT.html",
		Short: "Render an HTML template to a PDF file",
		Long: `Render an HTML template to a PDF file.

Relative references resolve against the input's directory unless --base-dir
is set. Remote resources follow the URL access patterns, which block
everything by default.`,
		Example: `  html2pdf render invoice.html --data invoice.json --css print.css
  html2pdf render page.html -o out/page.pdf --allowed-url-pattern 'https://cdn\.example\.com/'`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), env, cmd.Flags(), common, &f, &rf, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&rf.output, "output", "o", "", "output PDF path (default: input path with .pdf extension)")
	fs.StringVar(&rf.css, "css", "", "stylesheet file applied on top of the document")
	fs.StringVarP(&rf.data, "data", "d", "", "JSON file holding the template context")
	addPolicyFlags(fs, &f.policy)
	addEngineFlags(fs, &f.engine, false)
	addPageFlags(fs, &f.page)

	return cmd
}

func runRender(ctx context.Context, env *Environment, fs *flag.FlagSet, common *commonFlags, f *settingsFlags, rf *renderFlags, input string) error {
	cfg, err := resolveConfig(fs, common, f)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, env.Stderr)

	req := html2pdf.RenderRequest{}

	content, err := readInput(input)
	if err != nil {
		return err
	}
	req.HTML = content

	if rf.css != "" {
		if req.CSS, err = readInput(rf.css); err != nil {
			return err
		}
	}

	if rf.data != "" {
		raw, err := readInput(rf.data)
		if err != nil {
			return err
		}
		if req.Context, err = html2pdf.DecodeTemplateData([]byte(raw)); err != nil {
			return fmt.Errorf("%s: %w", rf.data, err)
		}
	}

	if cfg.Render.BaseDir == "" {
		cfg.Render.BaseDir = filepath.Dir(input)
	}

	output := rf.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
	}
	req.Filename = filepath.Base(output)

	r, err := env.NewRenderer(rendererOptions(cfg, urlPatterns(cfg), logger)...)
	if err != nil {
		return err
	}
	defer closeRenderer(r, logger)

	pdf, err := r.RenderOne(ctx, req)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", input, err)
	}
	return writePDF(logger, output, pdf)
}

// readInput reads a text file named on the command line.
func readInput(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided CLI input
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}

// writePDF writes pdf to path atomically and reports it.
func writePDF(logger *log.Logger, path string, pdf []byte) error {
	if _, err := fileutil.WriteFileAtomic(path, bytes.NewReader(pdf)); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}

	kv := []any{"path", path, "bytes", len(pdf)}
	if pages, err := html2pdf.PageCount(pdf); err == nil {
		kv = append(kv, "pages", pages)
	}
	logger.Info("wrote pdf", kv...)
	return nil
}

func closeRenderer(r documentRenderer, logger *log.Logger) {
	if err := r.Close(); err != nil {
		logger.Error("closing browser", "err", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/uploads"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], DefaultEnv()))
}

// run executes the command line and returns the process exit code.
func run(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	root := newRootCmd(env)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, html2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, html2pdf.ErrAccessDenied):
		return hints.ForAccessDenied()
	case errors.Is(err, uploads.ErrInvalidDir):
		return hints.ForUploadDirectory()
	case errors.Is(err, ErrWritePDF):
		return hints.ForOutputDirectory()
	case errors.Is(err, config.ErrConfigNotFound):
		name := os.Getenv(envConfigPath)
		if name == "" {
			name = "html2pdf"
		}
		return hints.ForConfigNotFound(config.SearchPaths(name))
	}
	return ""
}

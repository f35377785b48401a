package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree.
func newRootCmd(env *Environment) *cobra.Command {
	var common commonFlags

	root := &cobra.Command{
		Use:           "html2pdf",
		Short:         "Render HTML and CSS to PDF with headless Chrome",
		Long:          `html2pdf renders HTML templates and stylesheets to PDF, either as an HTTP service or from the command line. Every resource the page requests goes through a URL access policy.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(usageFlagError)
	addCommonFlags(root.PersistentFlags(), &common)

	root.AddCommand(newServeCmd(env, &common))
	root.AddCommand(newRenderCmd(env, &common))
	root.AddCommand(newMergeCmd(env, &common))
	root.AddCommand(newConfigCmd(env, &common))
	root.AddCommand(newDoctorCmd(env, &common))

	return root
}

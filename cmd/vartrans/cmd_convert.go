package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dasmlab/vartrans/pkg/casing"
	"github.com/dasmlab/vartrans/pkg/retry"
	"github.com/dasmlab/vartrans/pkg/service"
	"github.com/dasmlab/vartrans/pkg/status"
)

var convertFlags struct {
	noRetry bool
}

var convertCmd = &cobra.Command{
	Use:   "convert <style|all> <text...>",
	Short: "Convert text to a naming convention",
	Long: "convert renders text in one naming convention, or in all of them with \"all\".\n" +
		"Chinese text is translated to English first.\n\n" +
		"Styles: " + strings.Join(casing.Names(), ", "),
	Args: cobra.MinimumNArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return append(casing.Names(), "all"), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertFlags.noRetry, "no-retry", false, "Give up on the first translation failure instead of asking")
}

func runConvert(cmd *cobra.Command, args []string) error {
	styleName, text := args[0], strings.Join(args[1:], " ")

	var styles []casing.Style
	if styleName == "all" {
		styles = casing.Styles
	} else {
		style, ok := casing.Lookup(styleName)
		if !ok {
			return fmt.Errorf("unknown style %q (want one of: %s, all)", styleName, strings.Join(casing.Names(), ", "))
		}
		styles = []casing.Style{style}
	}

	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	errOut := cmd.ErrOrStderr()
	prompter := newConsolePrompter(cmd.InOrStdin(), errOut, convertFlags.noRetry)
	client := a.client(status.Func(func(msg string) { fmt.Fprintln(errOut, msg) }))
	orch := service.NewOrchestrator(client, retry.New(prompter, a.logger), nil, a.logger)

	out := cmd.OutOrStdout()
	if len(styles) == 1 {
		converted, err := orch.Convert(cmd.Context(), text, styles[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, converted)
		return nil
	}

	// Translate once, then render every style from the translation.
	identity := casing.Style{Convert: func(s string) string { return s }}
	base, err := orch.Convert(cmd.Context(), text, identity)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, v := range casing.Variants(base) {
		fmt.Fprintf(tw, "%s\t%s\n", v.Description, v.Text)
	}
	return tw.Flush()
}

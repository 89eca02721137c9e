package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dasmlab/vartrans/pkg/retry"
	"github.com/dasmlab/vartrans/pkg/status"
	"github.com/dasmlab/vartrans/pkg/translate"
)

var translateFlags struct {
	noRetry bool
}

var translateCmd = &cobra.Command{
	Use:   "translate <text...>",
	Short: "Translate text between Chinese and English",
	Long: "translate sends Chinese text to English and anything else to Chinese.\n" +
		"Identifiers such as userName are translated as the phrase \"user name\".",
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().BoolVar(&translateFlags.noRetry, "no-retry", false, "Give up on the first failure instead of asking")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	errOut := cmd.ErrOrStderr()
	client := a.client(status.Func(func(msg string) { fmt.Fprintln(errOut, msg) }))
	prompter := newConsolePrompter(cmd.InOrStdin(), errOut, translateFlags.noRetry)
	ctrl := retry.New(prompter, a.logger)

	req := translate.NewRequest(text)
	translated := ctrl.Attempt(cmd.Context(), fmt.Sprintf("translating to %s", req.Target), func(ctx context.Context) string {
		return client.Translate(ctx, text)
	})
	if translated == "" {
		return fmt.Errorf("translate %q: no translation", text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), translated)
	return nil
}

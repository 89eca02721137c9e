package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dasmlab/vartrans/pkg/editor"
	"github.com/dasmlab/vartrans/pkg/picker"
	"github.com/dasmlab/vartrans/pkg/retry"
	"github.com/dasmlab/vartrans/pkg/service"
	"github.com/dasmlab/vartrans/pkg/status"
	"github.com/dasmlab/vartrans/pkg/tui"
)

var pickFlags struct {
	file      string
	clipboard bool
}

var pickCmd = &cobra.Command{
	Use:   "pick [text...]",
	Short: "Pick a translated or re-cased replacement interactively",
	Long: "pick opens a list of case variants of each selection at once, translates the\n" +
		"selection in the background and swaps in the translated variants when they arrive.\n\n" +
		"The selection is the arguments, every non-blank line of --file (rewritten in place),\n" +
		"the clipboard with --clipboard, or every non-blank line of stdin.",
	RunE: runPick,
}

func init() {
	f := pickCmd.Flags()
	f.StringVarP(&pickFlags.file, "file", "f", "", "Replace identifiers line by line in this file")
	f.BoolVar(&pickFlags.clipboard, "clipboard", false, "Replace the clipboard contents")
	pickCmd.MarkFlagsMutuallyExclusive("file", "clipboard")
}

func runPick(cmd *cobra.Command, args []string) error {
	surface, save, err := pickSurface(cmd, args)
	if err != nil {
		return err
	}
	if len(surface.Selections()) == 0 {
		return fmt.Errorf("nothing to pick: no selection")
	}

	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ui := tui.New("vartrans", a.logger, tea.WithOutput(cmd.ErrOrStderr()), tea.WithInputTTY(), tea.WithContext(ctx))
	ui.Start()

	client := a.client(status.Multi(ui, status.NewLogSink(a.logger, "vartrans")))
	session := picker.NewSession(ui, a.logger)
	orch := service.NewOrchestrator(client, retry.New(ui, a.logger), session, a.logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-ui.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	replaced, runErr := orch.RunSelections(runCtx, surface)
	if err := ui.Stop(); err != nil {
		a.logger.WithError(err).Warn("Terminal UI did not exit cleanly")
	}
	if runErr != nil && runCtx.Err() == nil {
		return runErr
	}

	a.logger.WithField("replaced", replaced).Info("Pick finished")
	return save(cmd.OutOrStdout())
}

// pickSurface chooses where selections come from and returns how the
// result is written out.
func pickSurface(cmd *cobra.Command, args []string) (editor.Surface, func(io.Writer) error, error) {
	switch {
	case pickFlags.clipboard:
		return editor.NewClipboard(), func(io.Writer) error { return nil }, nil

	case pickFlags.file != "":
		data, err := os.ReadFile(pickFlags.file)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", pickFlags.file, err)
		}
		buf := editor.NewLineBuffer(string(data))
		save := func(io.Writer) error {
			if err := os.WriteFile(pickFlags.file, []byte(buf.Text()), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", pickFlags.file, err)
			}
			return nil
		}
		return buf, save, nil

	case len(args) > 0:
		buf, err := editor.NewBuffer(strings.Join(args, " "))
		if err != nil {
			return nil, nil, err
		}
		return buf, printBuffer(buf), nil

	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("read stdin: %w", err)
		}
		buf := editor.NewLineBuffer(string(data))
		return buf, printBuffer(buf), nil
	}
}

func printBuffer(buf *editor.Buffer) func(io.Writer) error {
	return func(w io.Writer) error {
		text := buf.Text()
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(w, text)
		return err
	}
}

package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dasmlab/vartrans/pkg/translate"
)

var enginesFlags struct {
	check   bool
	timeout time.Duration
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List translation engines",
	Args:  cobra.NoArgs,
	RunE:  runEngines,
}

var enginesUseCmd = &cobra.Command{
	Use:   "use <engine>",
	Short: "Save the default translation engine to the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnginesUse,
}

func init() {
	f := enginesCmd.Flags()
	f.BoolVar(&enginesFlags.check, "check", false, "Run a health check against every engine")
	f.DurationVar(&enginesFlags.timeout, "timeout", 5*time.Second, "Per-engine health check timeout")

	enginesCmd.AddCommand(enginesUseCmd)
}

func runEngines(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	current, _, err := a.registry.Resolve(a.store.Engine())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, name := range a.registry.Names() {
		marker := " "
		if translate.EngineType(name) == current {
			marker = "*"
		}
		if !enginesFlags.check {
			fmt.Fprintf(tw, "%s %s\n", marker, name)
			continue
		}

		_, engine, err := a.registry.Resolve(name)
		if err != nil {
			return err
		}
		state := "ok"
		ctx, cancel := context.WithTimeout(cmd.Context(), enginesFlags.timeout)
		if err := engine.CheckHealth(ctx); err != nil {
			state = err.Error()
		}
		cancel()
		fmt.Fprintf(tw, "%s %s\t%s\n", marker, name, state)
	}
	return tw.Flush()
}

func runEnginesUse(cmd *cobra.Command, args []string) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	id := translate.ParseEngineType(args[0])
	if !contains(a.registry.Names(), string(id)) {
		return fmt.Errorf("unknown engine %q (available: %v)", args[0], a.registry.Names())
	}
	if err := a.store.SaveEngine(string(id)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "default engine set to %s in %s\n", id, a.store.Path())
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
	"github.com/alexisbeaulieu97/openusage/internal/tui"
	"github.com/alexisbeaulieu97/openusage/internal/tui/components"
)

type probeOptions struct {
	jsonOutput     bool
	nonInteractive bool
}

func newProbeCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe [plugin-id...]",
		Short: "Probe plugins once and print their usage lines",
		Long: `Probe every enabled plugin, or only the named ones, and print the reported lines.

A plugin that fails still produces output: a single "Error" badge with the reason.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, rootFlags, "probe")
			if err != nil {
				return err
			}
			return runProbe(cmd, app, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Disable the live progress view")

	return cmd
}

func runProbe(cmd *cobra.Command, app *AppContext, ids []string, opts *probeOptions) error {
	plugins, err := selectPlugins(app, ids)
	if err != nil {
		return newCommandError("probe", "selecting plugins", err, unknownPluginSuggestion(app, ids))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	app.Logger.WithFields(map[string]any{"count": len(plugins)}).Info("probing plugins")

	if opts.jsonOutput {
		return renderProbeJSON(cmd.OutOrStdout(), app.Engine.ProbeAll(ctx, plugins))
	}

	interactive := !opts.nonInteractive && supportsUnicode(cmd.OutOrStdout())
	state := tui.NewModel("Probe", plugins)

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(state, tea.WithOutput(cmd.OutOrStdout()), tea.WithContext(ctx))
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	outputs := make([]model.PluginOutput, len(plugins))
	updates := make(chan tea.Msg)
	go func() {
		defer close(updates)
		app.Engine.ProbeEach(ctx, plugins, func(i int, out model.PluginOutput) {
			outputs[i] = out
			updates <- tui.ProbeCompleteMsg{Output: out}
		})
	}()
	for msg := range updates {
		dispatchTuiMessage(interactive, program, &state, msg)
	}

	if interactive {
		program.Quit()
		<-done
		if programErr != nil && ctx.Err() == nil {
			return newCommandError("probe", "rendering progress", programErr, "Re-run with --non-interactive.")
		}
	}

	return renderProbeTable(cmd.OutOrStdout(), outputs)
}

// dispatchTuiMessage feeds the live program, or the plain model when output
// is not a terminal.
func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}

// selectPlugins returns the named plugins in the given order, or every
// enabled plugin in saved order when no ids are given.
func selectPlugins(app *AppContext, ids []string) ([]manifest.LoadedPlugin, error) {
	if len(ids) > 0 {
		return app.Registry.Select(ids)
	}
	return app.Settings.Arrange(app.Registry.List()), nil
}

func unknownPluginSuggestion(app *AppContext, ids []string) string {
	for _, id := range ids {
		if _, err := app.Registry.Get(id); err == nil {
			continue
		}
		if matches := app.Registry.Suggest(id, 3); len(matches) > 0 {
			return fmt.Sprintf("Did you mean %s? Run 'openusage list' to see available plugin IDs.", strings.Join(matches, ", "))
		}
		break
	}
	return "Run 'openusage list' to see available plugin IDs."
}

func renderProbeJSON(w io.Writer, outputs []model.PluginOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(outputs)
}

func renderProbeTable(w io.Writer, outputs []model.PluginOutput) error {
	if len(outputs) == 0 {
		fmt.Fprintln(w, "No plugins to probe.")
		return nil
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "PLUGIN\tLINE\tVALUE")
	for _, out := range outputs {
		if len(out.Lines) == 0 {
			fmt.Fprintf(writer, "%s\t-\t-\n", out.ProviderID)
			continue
		}
		for _, line := range out.Lines {
			fmt.Fprintf(writer, "%s\t%s\t%s\n", out.ProviderID, valueOrFallback(line.LineLabel(), "-"), formatLineValue(line))
		}
	}
	return writer.Flush()
}

func formatLineValue(line model.MetricLine) string {
	switch v := line.(type) {
	case model.TextLine:
		return v.Value
	case model.ProgressLine:
		if v.Invalid() {
			return "n/a"
		}
		value := fmt.Sprintf("%s / %s", components.FormatNumber(v.Value), components.FormatNumber(v.Max))
		if v.Unit != "" {
			value += " " + v.Unit
		}
		return fmt.Sprintf("%s (%.0f%%)", value, v.Fraction()*100)
	case model.BadgeLine:
		return "[" + v.Text + "]"
	default:
		return ""
	}
}

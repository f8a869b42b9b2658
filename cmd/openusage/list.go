package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/registry"
)

type listOptions struct {
	jsonOutput bool
}

func newListCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, rootFlags, "list")
			if err != nil {
				return err
			}
			return runList(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

type listedPlugin struct {
	Plugin  manifest.LoadedPlugin
	Enabled bool
	Primary string
}

func runList(cmd *cobra.Command, app *AppContext, opts *listOptions) error {
	plugins := arrangeForListing(app.Registry.List(), app.Settings)

	if opts.jsonOutput {
		return renderListJSON(cmd, app.Registry.Dir(), plugins)
	}
	if len(plugins) == 0 {
		return renderEmptyList(cmd, app.Registry.Dir())
	}
	return renderListTable(cmd, plugins)
}

// arrangeForListing puts enabled plugins first in saved order, then disabled
// ones by id.
func arrangeForListing(all []manifest.LoadedPlugin, settings *registry.Settings) []listedPlugin {
	enabled := settings.Arrange(all)
	listed := make([]listedPlugin, 0, len(all))
	for _, p := range enabled {
		listed = append(listed, describe(p, true))
	}
	for _, p := range all {
		if settings.Disabled(p.ID()) {
			listed = append(listed, describe(p, false))
		}
	}
	return listed
}

func describe(p manifest.LoadedPlugin, enabled bool) listedPlugin {
	primary := ""
	if line, ok := p.PrimaryLine(); ok {
		primary = line.Label
	}
	return listedPlugin{Plugin: p, Enabled: enabled, Primary: primary}
}

func renderEmptyList(cmd *cobra.Command, dir string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "No plugins installed.")
	fmt.Fprintf(cmd.OutOrStdout(), "\nCopy a plugin bundle into %s to add one.\n", dir)
	return nil
}

func renderListTable(cmd *cobra.Command, plugins []listedPlugin) error {
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	fmt.Fprintln(writer, "ID\tNAME\tVERSION\tSTATUS\tPRIMARY\tPATH")

	for _, p := range plugins {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Plugin.ID(),
			valueOrFallback(p.Plugin.Name(), "(no name)"),
			p.Plugin.Manifest.Version,
			formatEnabled(p.Enabled),
			valueOrFallback(p.Primary, "-"),
			p.Plugin.Root,
		)
	}

	return writer.Flush()
}

type listJSONPlugin struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Version    string  `json:"version"`
	Path       string  `json:"path"`
	Enabled    bool    `json:"enabled"`
	Primary    string  `json:"primary,omitempty"`
	BrandColor *string `json:"brand_color,omitempty"`
	LineCount  int     `json:"line_count"`
}

type listJSONPayload struct {
	Version    string           `json:"version"`
	PluginsDir string           `json:"plugins_dir"`
	Count      int              `json:"count"`
	Plugins    []listJSONPlugin `json:"plugins"`
}

func renderListJSON(cmd *cobra.Command, dir string, plugins []listedPlugin) error {
	payload := listJSONPayload{
		Version:    "1.0",
		PluginsDir: dir,
		Count:      len(plugins),
		Plugins:    make([]listJSONPlugin, len(plugins)),
	}

	for i, p := range plugins {
		payload.Plugins[i] = listJSONPlugin{
			ID:         p.Plugin.ID(),
			Name:       p.Plugin.Name(),
			Version:    p.Plugin.Manifest.Version,
			Path:       p.Plugin.Root,
			Enabled:    p.Enabled,
			Primary:    p.Primary,
			BrandColor: p.Plugin.Manifest.BrandColor,
			LineCount:  len(p.Plugin.Manifest.Lines),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func supportsUnicode(writer any) bool {
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func formatEnabled(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func valueOrFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

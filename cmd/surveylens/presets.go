package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var presetDescription string

// presetsCmd manages named segments
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List, save and delete segment presets",
	RunE:  runPresetsList,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and saved presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a segment as a preset",
	Long: `Saves the segment given by --filter and --from under a name.

Example:
  surveylens presets save "European pros" --filter continent=Europe --filter experience="More than 5 years"`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetsSave,
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newPresets()
		if err != nil {
			return err
		}
		if err := mgr.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted preset %s\n", args[0])
		return nil
	},
}

func init() {
	presetsSaveCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "Filter as key=value; repeat for more values")
	presetsSaveCmd.Flags().StringVar(&fromFragment, "from", "", "Start from a share link or fragment")
	presetsSaveCmd.Flags().StringVarP(&presetDescription, "description", "d", "", "Preset description")

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsSaveCmd)
	presetsCmd.AddCommand(presetsDeleteCmd)
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	mgr, err := newPresets()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSAVED\tFILTERS")
	for _, p := range mgr.All() {
		saved := "built in"
		if !p.Builtin && !p.CreatedAt.IsZero() {
			saved = humanize.Time(p.CreatedAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, saved, describeFilters(p.Filters))
	}
	return w.Flush()
}

func runPresetsSave(cmd *cobra.Command, args []string) error {
	state, err := segment()
	if err != nil {
		return err
	}
	mgr, err := newPresets()
	if err != nil {
		return err
	}
	p, err := mgr.Add(args[0], presetDescription, state)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved preset %q as %s\n", p.Name, p.ID)
	return nil
}

func describeFilters(filters map[string][]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(filters[k], "|"))
	}
	return strings.Join(parts, " ")
}

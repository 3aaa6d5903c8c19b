package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/surveylens/internal/export"
	"github.com/rebeliceyang/surveylens/internal/filter"
	"github.com/rebeliceyang/surveylens/internal/geo"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/ui/components"
)

var (
	// Segment flags shared by data commands
	filterFlags  []string
	fromFragment string
	chartID      string
	sectionID    string
	compareB     []string
	parseOnly    bool
	outputFormat string
	byContinent  bool
)

// compileCmd prints the WHERE clause for a segment
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the SQL filter for a segment",
	Long: `Compiles a segment to the WHERE clause every query appends.
With --chart, prints the complete query of that chart instead.

Example:
  surveylens compile --filter experience="2 to 5 years" --filter continent=Europe`,
	RunE: runCompile,
}

// countCmd prints the respondent count of a segment
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count respondents matching a segment",
	RunE:  runCount,
}

// breakdownCmd prints one chart for a segment
var breakdownCmd = &cobra.Command{
	Use:   "breakdown [chart-id]",
	Short: "Print one chart's answer distribution",
	Long: `Aggregates one chart for the segment and prints label, count and share.
Run without a chart id to list the available charts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBreakdown,
}

// urlCmd encodes or decodes share fragments
var urlCmd = &cobra.Command{
	Use:   "url [fragment]",
	Short: "Build or read a share link fragment",
	Long: `Builds the fragment of a share link from --filter flags, or with --parse
decodes a fragment and prints the segment it restores.

Examples:
  surveylens url --filter continent=Europe --section experience
  surveylens url --parse '#?compare=true&a_continent=europe&b_continent=asia'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runURL,
}

// exportCmd writes every chart of a segment to a file
var exportCmd = &cobra.Command{
	Use:   "export <file.csv|file.json>",
	Short: "Export every chart of a segment",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	for _, c := range []*cobra.Command{compileCmd, countCmd, breakdownCmd, urlCmd, exportCmd} {
		c.Flags().StringArrayVar(&filterFlags, "filter", nil, "Filter as key=value; repeat for more values")
		c.Flags().StringVar(&fromFragment, "from", "", "Start from a share link or fragment")
	}
	compileCmd.Flags().StringVar(&chartID, "chart", "", "Print the query of this chart")
	urlCmd.Flags().StringVar(&sectionID, "section", "", "Section to scroll to")
	urlCmd.Flags().StringArrayVar(&compareB, "compare", nil, "Column B filter as key=value; enables comparison")
	urlCmd.Flags().BoolVar(&parseOnly, "parse", false, "Decode the fragment argument")
	breakdownCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
	breakdownCmd.Flags().BoolVar(&byContinent, "continents", false, "Fold a map chart into continent totals")
}

// segment builds a filter state from --from and --filter
func segment() (models.FilterState, error) {
	state := reg.NewState()
	if fromFragment != "" {
		parsed := newCodec().Parse(components.FragmentOf(fromFragment), nil)
		if parsed.Comparison != nil {
			state = parsed.Comparison.A
		} else {
			state = parsed.Filters
		}
	}
	if err := applyFilters(state, filterFlags); err != nil {
		return nil, err
	}
	return state, nil
}

// applyFilters adds key=value flags to state. Values may be given bare or
// in storage form and are stored as the registry option they name.
func applyFilters(state models.FilterState, flags []string) error {
	codec := newCodec()
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || value == "" {
			return fmt.Errorf("invalid filter %q, want key=value", f)
		}
		if !reg.Has(key) {
			return fmt.Errorf("unknown filter %q (known: %s)", key, strings.Join(reg.Keys(), ", "))
		}
		if !state.Contains(key, value) {
			state.Toggle(key, codec.Canonical(key, value, nil))
		}
	}
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	state, err := segment()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if chartID == "" {
		schema := ""
		if cfg.Engine.NeedsSchemaPrefix() {
			schema = cfg.Engine.Schema
		}
		where, err := filter.NewBuilder(reg, schema, logger.Named("filter")).BuildWhereChecked(state)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, where)
		return nil
	}

	s, err := newStack(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()
	sql, err := s.service.ChartSQL(chartID, state)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, sql)
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	state, err := segment()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	res := s.service.RespondentCount(ctx, state)
	if res.Failed() {
		return res.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), humanize.Comma(res.Data))
	return nil
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return listCharts(out)
	}

	state, err := segment()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	res := s.service.Breakdown(ctx, args[0], state)
	if res.Failed() {
		return res.Err
	}
	if res.Degraded {
		logger.Warn("filters were rejected; showing all respondents")
	}
	if res.Data.Kind == models.ChartMap.String() {
		if byContinent {
			res.Data.Items = geo.ByContinent(reg, res.Data.Items)
		} else {
			res.Data.Items = loadWorld(ctx, s.fetcher).LabelCountries(res.Data.Items)
		}
	}

	if outputFormat == "json" {
		report := export.NewReport(state, "", res.Data.Total, []models.Breakdown{res.Data})
		return export.WriteJSON(out, report)
	}
	return printBreakdown(out, res.Data)
}

func listCharts(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSECTION\tKIND\tHEADING")
	for _, c := range reg.Charts() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Section, c.Kind, c.Heading)
	}
	return w.Flush()
}

func printBreakdown(out io.Writer, b models.Breakdown) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	if b.Kind == models.ChartMatrix.String() {
		fmt.Fprintln(w, "ROW\tLABEL\tCOUNT\tSHARE\t")
		for _, it := range b.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t\n", it.Row, it.Label, humanize.Comma(it.Count), it.Share*100)
		}
	} else {
		fmt.Fprintln(w, "LABEL\tCOUNT\tSHARE\t")
		for _, it := range b.Items {
			fmt.Fprintf(w, "%s\t%s\t%.1f%%\t\n", it.Label, humanize.Comma(it.Count), it.Share*100)
		}
	}
	fmt.Fprintf(w, "total\t%s\t\t\n", humanize.Comma(b.Total))
	return w.Flush()
}

func runURL(cmd *cobra.Command, args []string) error {
	codec := newCodec()
	out := cmd.OutOrStdout()

	if parseOnly {
		if len(args) == 0 {
			return fmt.Errorf("--parse needs a fragment argument")
		}
		parsed := codec.Parse(components.FragmentOf(args[0]), nil)
		if !parsed.HasFilters() {
			logger.Info("fragment restores no filters")
		}
		doc := map[string]any{"section": parsed.SectionID}
		if parsed.Comparison != nil {
			doc["compare"] = map[string]any{
				"a": active(parsed.Comparison.A),
				"b": active(parsed.Comparison.B),
			}
		} else {
			doc["filters"] = active(parsed.Filters)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}

	state, err := segment()
	if err != nil {
		return err
	}

	frag := ""
	if len(compareB) > 0 {
		b := reg.NewState()
		if err := applyFilters(b, compareB); err != nil {
			return err
		}
		frag = codec.Serialize(nil, sectionID, &models.ComparisonState{A: state, B: b, BMounted: true})
	} else {
		frag = codec.Serialize(state, sectionID, nil)
	}
	fmt.Fprintln(out, cfg.UI.ShareBaseURL+frag)
	return nil
}

// active keeps the categories that carry values, keys sorted by the encoder
func active(state models.FilterState) map[string][]string {
	out := make(map[string][]string)
	for k, v := range state {
		if len(v) > 0 {
			out[k] = v
		}
	}
	return out
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := export.FormatFor(path); err != nil {
		return err
	}
	state, err := segment()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	count := s.service.RespondentCount(ctx, state)
	if count.Failed() {
		return count.Err
	}

	var breakdowns []models.Breakdown
	var failed []string
	for _, c := range reg.Charts() {
		res := s.service.Breakdown(ctx, c.ID, state)
		if res.Failed() {
			failed = append(failed, c.ID)
			continue
		}
		breakdowns = append(breakdowns, res.Data)
	}
	sort.Strings(failed)

	frag := newCodec().Serialize(state, "", nil)
	if err := export.ToFile(path, export.NewReport(state, frag, count.Data, breakdowns)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d charts for %s respondents to %s\n",
		len(breakdowns), humanize.Comma(count.Data), path)
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "skipped charts that failed to load: %s\n", strings.Join(failed, ", "))
	}
	return nil
}

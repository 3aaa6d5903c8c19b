package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/surveylens/internal/db/metadata"
	"github.com/rebeliceyang/surveylens/internal/history"
)

var (
	historyLimit  int
	historySearch string
)

// statusCmd attaches the dataset and reports what it holds
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the engine and dataset tables",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// historyCmd lists recently viewed dashboard links
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently viewed dashboard links",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries")
	historyCmd.Flags().StringVarP(&historySearch, "search", "s", "", "Only links containing this text")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.engine.Ping(ctx); err != nil {
		return fmt.Errorf("engine not reachable: %w", err)
	}
	tables, err := metadata.ListTables(ctx, s.executor, s.service.Rewriter())
	if err != nil {
		return err
	}

	st := s.engine.Status()
	st.CacheHits, st.CacheMisses = s.executor.CacheStats()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "driver:   %s\n", st.Driver)
	if st.Dataset != "" {
		fmt.Fprintf(out, "dataset:  %s\n", st.Dataset)
	}
	fmt.Fprintf(out, "state:    %s (attached in %s)\n", st.State, st.InitTime.Round(time.Millisecond))
	fmt.Fprintf(out, "cache:    %d hits, %d misses\n\n", st.CacheHits, st.CacheMisses)
	return printTables(out, tables)
}

func printTables(out io.Writer, tables []metadata.Table) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, humanize.Comma(t.RowCount))
	}
	return w.Flush()
}

func runHistory(cmd *cobra.Command, args []string) error {
	store := openHistory()
	if store == nil {
		return fmt.Errorf("view history is unavailable")
	}
	defer func() { _ = store.Close() }()

	var entries []history.Entry
	var err error
	if historySearch != "" {
		entries, err = store.Search(historySearch, historyLimit)
	} else {
		entries, err = store.GetRecent(historyLimit)
	}
	if err != nil {
		return err
	}
	return printHistory(cmd.OutOrStdout(), entries)
}

func printHistory(out io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "no views recorded yet")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VISITED\tFILTERS\tRESPONDENTS\tLINK")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			humanize.Time(e.VisitedAt), e.ActiveFilters, humanize.Comma(e.Respondents), cfg.UI.ShareBaseURL+e.Fragment)
	}
	return w.Flush()
}

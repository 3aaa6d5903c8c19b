package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/config"
	"github.com/rebeliceyang/surveylens/internal/dashboard"
	"github.com/rebeliceyang/surveylens/internal/export"
	"github.com/rebeliceyang/surveylens/internal/geo"
	"github.com/rebeliceyang/surveylens/internal/history"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/survey"
	"github.com/rebeliceyang/surveylens/internal/ui/components"
	"github.com/rebeliceyang/surveylens/internal/ui/help"
	"github.com/rebeliceyang/surveylens/internal/ui/theme"
	"github.com/rebeliceyang/surveylens/internal/urlstate"
)

// Options wires the dashboard model
type Options struct {
	Config     *config.Config
	Controller *dashboard.Controller
	// Service renders chart SQL for the preview. Optional.
	Service *survey.Service
	// World labels the map chart. Optional.
	World *geo.World
	// History persists visited fragments. Optional.
	History *history.Store
	Logger  *zap.Logger
	// Fragment is restored after the first load
	Fragment string
}

// App is the main application model
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	state  models.AppState
	config *config.Config
	theme  theme.Theme
	logger *zap.Logger

	ctrl    *dashboard.Controller
	service *survey.Service
	store   *history.Store
	nav     *history.Navigator

	leftPanel  components.Panel
	rightPanel components.Panel

	filterPanel  *components.FilterPanel
	charts       *components.ChartList
	urlInput     *components.URLInput
	sqlPreview   *components.SQLPreview
	presetPicker *components.PresetPicker
	spinner      spinner.Model

	showPresets  bool
	showError    bool
	errorOverlay *components.ErrorOverlay

	initFragment string
	ready        bool
	// fragment is the last value written to the address
	fragment string
	urlSeq   int
	status   string

	presetEvents chan struct{}
}

// InitDoneMsg is sent when the session finished its first load
type InitDoneMsg struct {
	Err error
}

// RefreshMsg carries the result of one column refresh
type RefreshMsg struct {
	Update dashboard.Update
}

// HashRestoredMsg is sent after a fragment was restored
type HashRestoredMsg struct {
	Fragment string
	Updates  []dashboard.Update
	Applied  bool
}

// PresetsChangedMsg is sent when the preset file changed on disk
type PresetsChangedMsg struct{}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

type urlTickMsg struct {
	seq int
}

type exportedMsg struct {
	path string
}

// New creates a new App instance
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	state := models.NewAppState()
	if cfg.UI.PanelWidthRatio > 0 && cfg.UI.PanelWidthRatio < 100 {
		state.LeftPanelWidth = cfg.UI.PanelWidthRatio
	}
	th := theme.GetTheme(cfg.UI.Theme)
	if !slices.Contains(theme.Names(), cfg.UI.Theme) {
		logger.Warn("unknown theme, using default",
			zap.String("theme", cfg.UI.Theme),
			zap.Strings("available", theme.Names()))
	}

	reg := opts.Controller.Registry()
	charts := components.NewChartList(reg.Charts(), th)
	if w := opts.World; w != nil {
		charts.Relabel = func(chartID string, items []models.BreakdownItem) []models.BreakdownItem {
			if c, ok := reg.Chart(chartID); ok && c.Kind == models.ChartMap {
				return w.LabelCountries(items)
			}
			return items
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Info)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:          ctx,
		cancel:       cancel,
		state:        state,
		config:       cfg,
		theme:        th,
		logger:       logger,
		ctrl:         opts.Controller,
		service:      opts.Service,
		store:        opts.History,
		nav:          history.NewNavigator(cfg.UI.HistorySize),
		filterPanel:  components.NewFilterPanel(reg, th),
		charts:       charts,
		urlInput:     components.NewURLInput(th),
		sqlPreview:   components.NewSQLPreview(th),
		presetPicker: components.NewPresetPicker(th),
		spinner:      sp,
		errorOverlay: components.NewErrorOverlay(th),
		initFragment: components.FragmentOf(opts.Fragment),
		leftPanel: components.Panel{
			Title: "Filters",
			Style: lipgloss.NewStyle().BorderForeground(th.BorderFocused),
		},
		rightPanel: components.Panel{
			Title: "Charts",
			Style: lipgloss.NewStyle().BorderForeground(th.Border),
		},
	}

	a.updatePanelDimensions()
	a.updatePanelStyles()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.initSession)
}

func (a *App) initSession() tea.Msg {
	return InitDoneMsg{Err: a.ctrl.Init(a.ctx, a.initFragment)}
}

// Fragment returns the last fragment written to the address
func (a *App) Fragment() string {
	return a.fragment
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case InitDoneMsg:
		if msg.Err != nil {
			a.errorOverlay.Fatal = true
			a.ShowError("Dashboard unavailable", fmt.Sprintf("The survey data could not be loaded:\n\n%v", msg.Err))
			return a, nil
		}
		a.ready = true
		a.filterPanel.SetOptions(a.ctrl.Options())
		a.sync()
		a.selectSection(a.ctrl.View().SectionID)
		a.fragment = a.ctrl.Fragment()
		a.nav.Push(a.fragment)
		return a, a.watchPresets()

	case RefreshMsg:
		a.applyUpdate(msg.Update)
		return a, nil

	case HashRestoredMsg:
		if msg.Applied {
			for _, u := range msg.Updates {
				a.applyUpdate(u)
			}
			a.selectSection(a.ctrl.View().SectionID)
		}
		a.fragment = a.ctrl.Fragment()
		a.nav.Push(a.fragment)
		a.record()
		return a, nil

	case urlTickMsg:
		return a, a.writeFragment(msg.seq)

	case PresetsChangedMsg:
		if p := a.ctrl.Presets(); p != nil {
			a.presetPicker.SetPresets(p.All())
		}
		return a, a.waitForPresets()

	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case exportedMsg:
		a.status = "exported " + msg.path
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case components.ToggleFilterMsg:
		a.captureViewport()
		return a, a.afterMutation(a.ctrl.Toggle(msg.Key, msg.Value))

	case components.ClearCategoryMsg:
		a.captureViewport()
		return a, a.afterMutation(a.ctrl.Set(msg.Key, nil))

	case components.ApplyPresetMsg:
		a.showPresets = false
		a.captureViewport()
		t, err := a.ctrl.ApplyPreset(msg.ID)
		if err != nil {
			a.ShowError("Preset", err.Error())
			return a, nil
		}
		return a, a.afterMutation(t)

	case components.SavePresetMsg:
		p, err := a.ctrl.SavePreset(msg.Name, "")
		if err != nil {
			a.presetPicker.SetStatus(err.Error())
			return a, nil
		}
		a.presetPicker.SetPresets(a.ctrl.Presets().All())
		a.presetPicker.SetStatus(fmt.Sprintf("saved %q", p.Name))
		return a, nil

	case components.DeletePresetMsg:
		if err := a.ctrl.Presets().Delete(msg.ID); err != nil {
			a.presetPicker.SetStatus(err.Error())
			return a, nil
		}
		a.presetPicker.SetPresets(a.ctrl.Presets().All())
		return a, nil

	case components.ClosePresetPickerMsg:
		a.showPresets = false
		return a, nil

	case components.URLSubmitMsg:
		a.state.ViewMode = models.NormalMode
		return a, a.restore(msg.Fragment)

	case components.CloseURLInputMsg, components.CloseSQLPreviewMsg:
		a.state.ViewMode = models.NormalMode
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showError {
		switch {
		case key == "q" || key == "ctrl+c":
			return a, a.quit()
		case a.errorOverlay.Fatal:
			return a, nil
		case key == "esc" || key == "enter":
			a.DismissError()
		}
		return a, nil
	}

	if a.showPresets {
		var cmd tea.Cmd
		a.presetPicker, cmd = a.presetPicker.Update(msg)
		return a, cmd
	}

	switch a.state.ViewMode {
	case models.URLInputMode:
		var cmd tea.Cmd
		a.urlInput, cmd = a.urlInput.Update(msg)
		return a, cmd
	case models.SQLPreviewMode:
		var cmd tea.Cmd
		a.sqlPreview, cmd = a.sqlPreview.Update(msg)
		return a, cmd
	case models.HelpMode:
		switch key {
		case "?", "esc", "q":
			a.state.ViewMode = models.NormalMode
		case "ctrl+c":
			return a, a.quit()
		}
		return a, nil
	}

	if !a.ready {
		if key == "q" || key == "ctrl+c" {
			return a, a.quit()
		}
		return a, nil
	}

	switch key {
	case "q", "ctrl+c":
		return a, a.quit()
	case "?":
		a.state.ViewMode = models.HelpMode
	case "tab":
		if a.state.FocusedPanel == models.LeftPanel {
			a.state.FocusedPanel = models.RightPanel
		} else {
			a.state.FocusedPanel = models.LeftPanel
		}
		a.updatePanelStyles()
	case "c":
		a.captureViewport()
		if a.ctrl.View().Comparing {
			return a, a.afterMutation(a.ctrl.ExitCompare())
		}
		return a, a.afterMutation(a.ctrl.EnterCompare())
	case "a", "b":
		col := models.ColumnA
		if key == "b" {
			col = models.ColumnB
		}
		a.ctrl.SetActiveColumn(col)
		a.sync()
		return a, a.scheduleURL()
	case "x":
		a.captureViewport()
		return a, a.afterMutation(a.ctrl.Clear())
	case "r", "f5":
		a.captureViewport()
		var cmds []tea.Cmd
		for _, t := range a.ctrl.Refresh() {
			cmds = append(cmds, a.run(t))
		}
		return a, tea.Batch(cmds...)
	case "p":
		if p := a.ctrl.Presets(); p != nil {
			a.presetPicker.SetPresets(p.All())
			a.presetPicker.Reset()
			a.showPresets = true
		}
	case "u":
		a.urlInput.Reset()
		a.state.ViewMode = models.URLInputMode
	case "s":
		a.openSQLPreview()
	case "y":
		a.copyLink()
	case "e":
		return a, a.exportView()
	case "[":
		if frag, ok := a.nav.Back(); ok {
			return a, a.restore(frag)
		}
	case "]":
		if frag, ok := a.nav.Forward(); ok {
			return a, a.restore(frag)
		}
	default:
		if a.state.FocusedPanel == models.LeftPanel {
			var cmd tea.Cmd
			a.filterPanel, cmd = a.filterPanel.Update(msg)
			return a, cmd
		}
		return a, a.handleChartKey(key)
	}
	return a, nil
}

func (a *App) handleChartKey(key string) tea.Cmd {
	before := a.charts.SelectedIndex()
	switch key {
	case "up", "k":
		a.charts.Move(-1)
	case "down", "j":
		a.charts.Move(1)
	case "pgup", "ctrl+u":
		a.charts.Move(-5)
	case "pgdown", "ctrl+d":
		a.charts.Move(5)
	case "g", "home":
		a.charts.Move(-a.charts.SelectedIndex())
	}
	if a.charts.SelectedIndex() == before {
		return nil
	}
	if chart, ok := a.charts.Selected(); ok {
		a.ctrl.SetSection(urlstate.SectionID(chart.Heading))
	}
	return a.scheduleURL()
}

// afterMutation runs a ticket and schedules the address write
func (a *App) afterMutation(t dashboard.Ticket) tea.Cmd {
	a.sync()
	return tea.Batch(a.run(t), a.scheduleURL())
}

func (a *App) run(t dashboard.Ticket) tea.Cmd {
	if !t.Valid() {
		return nil
	}
	return func() tea.Msg {
		return RefreshMsg{Update: a.ctrl.Run(a.ctx, t)}
	}
}

func (a *App) restore(fragment string) tea.Cmd {
	return func() tea.Msg {
		updates, applied := a.ctrl.HashChanged(a.ctx, fragment)
		return HashRestoredMsg{Fragment: fragment, Updates: updates, Applied: applied}
	}
}

// scheduleURL debounces address writes; only the latest tick writes
func (a *App) scheduleURL() tea.Cmd {
	a.urlSeq++
	seq := a.urlSeq
	return tea.Tick(a.config.UI.URLDebounce, func(time.Time) tea.Msg {
		return urlTickMsg{seq: seq}
	})
}

func (a *App) writeFragment(seq int) tea.Cmd {
	if seq != a.urlSeq {
		return nil
	}
	if a.ctrl.Restoring() {
		return a.scheduleURL()
	}
	next, changed := a.ctrl.NextFragment(a.fragment)
	if !changed {
		return nil
	}
	a.fragment = next
	a.nav.Push(next)
	a.record()
	a.logger.Debug("fragment written", zap.String("fragment", next))
	return nil
}

// record stores the current view in the persistent history
func (a *App) record() {
	if a.store == nil || a.fragment == "" {
		return
	}
	v := a.ctrl.View()
	col := activeColumn(v)
	err := a.store.Add(history.Entry{
		Fragment:      a.fragment,
		Respondents:   v.Columns[col].Count.Data,
		ActiveFilters: v.Active().Active(),
	})
	if err != nil {
		a.logger.Warn("failed to record history", zap.Error(err))
	}
}

func (a *App) applyUpdate(u dashboard.Update) {
	if u.Stale {
		return
	}
	a.sync()
	if vp := u.Viewport; vp != nil {
		a.charts.Select(vp.ChartID, vp.Offset)
	}
}

// sync copies the controller snapshot into the components
func (a *App) sync() {
	v := a.ctrl.View()
	a.filterPanel.SetState(v.Active())
	a.charts.SetCompare(v.Comparing)
	a.charts.SetData(models.ColumnA, v.Columns[models.ColumnA].Charts)
	a.charts.SetData(models.ColumnB, v.Columns[models.ColumnB].Charts)

	if v.Comparing {
		a.rightPanel.Title = "Compare  A │ B"
		a.leftPanel.Title = "Filters · column " + v.Comparison.Active.String()
	} else {
		a.rightPanel.Title = "Charts"
		a.leftPanel.Title = "Filters"
	}
	a.leftPanel.Badge = ""
	if n := v.Active().Active(); n > 0 {
		a.leftPanel.Badge = fmt.Sprintf("%d active", n)
	}
}

func (a *App) selectSection(sectionID string) {
	if sectionID == "" {
		return
	}
	a.charts.SelectWhere(func(c models.ChartSpec) bool {
		return urlstate.SectionID(c.Heading) == sectionID
	})
}

func (a *App) captureViewport() {
	vp := dashboard.Viewport{Offset: a.charts.SelectedIndex()}
	if chart, ok := a.charts.Selected(); ok {
		vp.ChartID = chart.ID
		vp.SectionID = urlstate.SectionID(chart.Heading)
	}
	a.ctrl.SetViewport(vp)
}

func (a *App) openSQLPreview() {
	chart, ok := a.charts.Selected()
	if !ok || a.service == nil {
		return
	}
	state := a.ctrl.View().Active()
	sql, err := a.service.ChartSQL(chart.ID, state)
	if err != nil {
		a.ShowError("SQL preview", err.Error())
		return
	}
	where, degraded := a.service.Compile(state)
	header := "-- filters: " + where
	if degraded {
		header += "\n-- filters were rejected and dropped"
	}
	a.sqlPreview.SetContent(chart.Heading, header+"\n\n"+sql)
	a.state.ViewMode = models.SQLPreviewMode
}

func (a *App) copyLink() {
	frag := a.ctrl.Fragment()
	if frag == "" {
		frag = "#"
	}
	link := a.config.UI.ShareBaseURL + frag
	if err := clipboard.WriteAll(link); err != nil {
		a.status = "copy failed: " + err.Error()
		return
	}
	a.status = "copied " + link
}

// exportView writes the active column to a CSV file off the update loop
func (a *App) exportView() tea.Cmd {
	v := a.ctrl.View()
	col := activeColumn(v)
	data := v.Columns[col]
	if !data.Loaded() {
		a.status = "nothing to export yet"
		return nil
	}

	var breakdowns []models.Breakdown
	for _, c := range a.ctrl.Registry().Charts() {
		if res, ok := data.Charts[c.ID]; ok && !res.Failed() {
			breakdowns = append(breakdowns, res.Data)
		}
	}
	path := fmt.Sprintf("surveylens-%s.csv", time.Now().Format("20060102-150405"))
	report := export.NewReport(data.Filters, a.ctrl.Fragment(), data.Count.Data, breakdowns)
	return func() tea.Msg {
		if err := export.ToFile(path, report); err != nil {
			return ErrorMsg{Title: "Export failed", Message: err.Error()}
		}
		return exportedMsg{path: path}
	}
}

// watchPresets starts the preset file watcher, if enabled
func (a *App) watchPresets() tea.Cmd {
	p := a.ctrl.Presets()
	if p == nil || !a.config.Presets.Watch || p.Path() == "" {
		return nil
	}
	a.presetEvents = make(chan struct{}, 1)
	go func() {
		err := p.Watch(a.ctx, func() {
			select {
			case a.presetEvents <- struct{}{}:
			default:
			}
		})
		if err != nil {
			a.logger.Warn("preset watcher stopped", zap.Error(err))
		}
	}()
	return a.waitForPresets()
}

func (a *App) waitForPresets() tea.Cmd {
	if a.presetEvents == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-a.presetEvents:
			return PresetsChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) quit() tea.Cmd {
	a.cancel()
	return tea.Quit
}

func activeColumn(v dashboard.View) models.Column {
	if v.Comparing {
		return v.Comparison.Active
	}
	return models.ColumnA
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	switch a.state.ViewMode {
	case models.HelpMode:
		return help.Render(a.state.Width, a.state.Height, a.theme)
	case models.URLInputMode:
		a.urlInput.Width = min(a.state.Width-4, 90)
		return a.overlay(a.urlInput.View())
	case models.SQLPreviewMode:
		a.sqlPreview.Width = a.state.Width
		a.sqlPreview.Height = a.state.Height
		return a.overlay(a.sqlPreview.View())
	}

	if a.showPresets {
		a.presetPicker.Width = min(a.state.Width-4, 80)
		a.presetPicker.Height = a.state.Height - 4
		return a.overlay(a.presetPicker.View())
	}

	return a.renderNormalView()
}

func (a *App) overlay(content string) string {
	return lipgloss.Place(a.state.Width, a.state.Height, lipgloss.Center, lipgloss.Center, content)
}

// renderNormalView renders the two panels with their status bars
func (a *App) renderNormalView() string {
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar(a.headerLeft(), a.headerRight()))

	bottomLeft := "[tab] panel │ [c] compare │ [p] presets │ [u] open link │ [y] copy link │ [?] help"
	if a.status != "" {
		bottomLeft = a.status
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomLeft, "[q] quit"))

	a.filterPanel.Width = a.leftPanel.Width
	a.filterPanel.Height = a.leftPanel.ContentHeight()
	a.leftPanel.Content = a.filterPanel.View()

	a.charts.Width = a.rightPanel.Width
	a.charts.Height = a.rightPanel.ContentHeight()
	a.rightPanel.Content = a.charts.View()
	a.rightPanel.Badge = fmt.Sprintf("%d/%d", a.charts.SelectedIndex()+1, a.charts.Len())

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.leftPanel.View(),
		a.rightPanel.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		panels,
		bottomBar,
	)
}

func (a *App) headerLeft() string {
	if !a.ready {
		return "surveylens " + a.spinner.View() + " loading survey data"
	}
	v := a.ctrl.View()
	if !v.Comparing {
		return "surveylens │ " + a.countLabel(v, models.ColumnA)
	}
	return fmt.Sprintf("surveylens │ A: %s │ B: %s │ editing %s",
		a.countLabel(v, models.ColumnA), a.countLabel(v, models.ColumnB), v.Comparison.Active)
}

func (a *App) countLabel(v dashboard.View, col models.Column) string {
	if v.Pending[col] {
		return a.spinner.View()
	}
	count := v.Columns[col].Count
	if count.Failed() {
		return "count unavailable"
	}
	n := count.Data
	label := humanize.Comma(n) + " respondents"
	if n == 1 {
		label = "1 respondent"
	}
	if count.Degraded {
		label += " (unfiltered)"
	}
	return label
}

func (a *App) headerRight() string {
	if chart, ok := a.charts.Selected(); ok {
		return chart.Section
	}
	return ""
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top and bottom bar, plus the panel borders
	contentHeight := max(a.state.Height-4, 5)

	leftWidth := max((a.state.Width*a.state.LeftPanelWidth)/100, 20)
	rightWidth := a.state.Width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = a.state.Width - rightWidth - 4
	}

	a.leftPanel.Width = leftWidth
	a.leftPanel.Height = contentHeight
	a.rightPanel.Width = rightWidth
	a.rightPanel.Height = contentHeight
}

// updatePanelStyles updates panel styling based on focus
func (a *App) updatePanelStyles() {
	if a.state.FocusedPanel == models.LeftPanel {
		a.leftPanel.Style = lipgloss.NewStyle().BorderForeground(a.theme.BorderFocused)
		a.rightPanel.Style = lipgloss.NewStyle().BorderForeground(a.theme.Border)
	} else {
		a.leftPanel.Style = lipgloss.NewStyle().BorderForeground(a.theme.Border)
		a.rightPanel.Style = lipgloss.NewStyle().BorderForeground(a.theme.BorderFocused)
	}
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	available := max(a.state.Width-4, 0)

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen > available {
		if available > rightLen+1 {
			return runewidth.Truncate(left, available-rightLen-1, "…") + " " + right
		}
		return runewidth.Truncate(left, available, "…")
	}

	spacing := available - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.Width = min(max(a.state.Width-10, 40), 80)
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}

package models

// AppState holds the terminal dashboard state
type AppState struct {
	Width          int
	Height         int
	LeftPanelWidth int
	FocusedPanel   PanelType
	ViewMode       ViewMode
}

// PanelType identifies which panel is focused
type PanelType int

const (
	LeftPanel PanelType = iota
	RightPanel
)

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
	URLInputMode
	SQLPreviewMode
)

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:          80,
		Height:         24,
		LeftPanelWidth: 30,
		FocusedPanel:   LeftPanel,
		ViewMode:       NormalMode,
	}
}

// ChartKind identifies how a chart's breakdown is queried and drawn
type ChartKind int

const (
	ChartBar ChartKind = iota
	ChartRating
	ChartMap
	ChartMatrix
	ChartThemes
)

func (k ChartKind) String() string {
	switch k {
	case ChartBar:
		return "bar"
	case ChartRating:
		return "rating"
	case ChartMap:
		return "map"
	case ChartMatrix:
		return "matrix"
	case ChartThemes:
		return "themes"
	default:
		return "unknown"
	}
}

// Qualitative reports whether the chart summarises free-text themes
func (k ChartKind) Qualitative() bool {
	return k == ChartThemes
}

// ChartSpec describes one dashboard widget
type ChartSpec struct {
	ID          string
	Heading     string
	Section     string
	QuestionID  string
	Kind        ChartKind
	MultiSelect bool
	// Rows lists the sub-question ids of a matrix chart
	Rows []string
}

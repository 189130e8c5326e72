// Package view holds the rendering primitives every dashboard page is built
// from. Primitives take display-ready values only: callers classify, format
// and fetch before handing anything to a Renderer.
package view

import "github.com/coachtui/woflo/internal/classify"

type Size int

const (
	SizeMD Size = iota
	SizeSM
	SizeLG
)

func (s Size) String() string {
	switch s {
	case SizeSM:
		return "sm"
	case SizeLG:
		return "lg"
	default:
		return "md"
	}
}

type Badge struct {
	Label    string
	Category classify.Category
	Size     Size
	Icon     string
}

// Trend is a direction plus a magnitude in percent.
type Trend struct {
	Magnitude float64
	Up        bool
}

type MetricCard struct {
	Label string
	Value string
	Icon  string
	Trend *Trend
}

// Panel is a bordered container. Body and Action are output of the same
// Renderer.
type Panel struct {
	Title       string
	Description string
	Action      string
	Body        string
	Muted       bool
}

type Empty struct {
	Icon        string
	Title       string
	Description string
	Action      string
}

type Loading struct {
	Message string
}

type Error struct {
	Message   string
	RetryHref string
}

type Notice struct {
	Category    classify.Category
	Message     string
	DismissHref string
}

// Action is a link or a form button. Method is GET (a link) unless set.
type Action struct {
	Label    string
	Href     string
	Method   string
	Primary  bool
	Active   bool
	Disabled bool
	Hidden   map[string]string
}

type FormField struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Options     []string
	Required    bool
}

type Form struct {
	Action string
	Fields []FormField
	Submit string
}

// Renderer draws primitives into one output format.
type Renderer interface {
	Badge(Badge) string
	MetricCard(MetricCard) string
	Panel(Panel) string
	Empty(Empty) string
	Loading(Loading) string
	Error(Error) string
	Notice(Notice) string
	Action(Action) string
	Form(Form) string
	Heading(text string) string
	Field(label, value string) string
	Text(text string) string
	Row(parts ...string) string
	Stack(parts ...string) string
	Grid(columns int, parts ...string) string
}

// Region is what a list-bearing area of a page currently shows.
type Region int

const (
	RegionContent Region = iota
	RegionEmpty
	RegionLoading
	RegionError
)

func (r Region) String() string {
	switch r {
	case RegionEmpty:
		return "empty"
	case RegionLoading:
		return "loading"
	case RegionError:
		return "error"
	default:
		return "content"
	}
}

// RegionParts carries the alternatives for a region; exactly one is drawn.
type RegionParts struct {
	Content string
	Empty   Empty
	Loading Loading
	Error   Error
}

func RenderRegion(r Renderer, region Region, parts RegionParts) string {
	switch region {
	case RegionEmpty:
		return r.Empty(parts.Empty)
	case RegionLoading:
		return r.Loading(parts.Loading)
	case RegionError:
		return r.Error(parts.Error)
	default:
		return parts.Content
	}
}

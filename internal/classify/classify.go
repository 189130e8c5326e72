// Package classify maps raw backend status, priority and task-kind values to
// the semantic display categories every view uses. It is the only place the
// taxonomy is written down.
package classify

import "fmt"

// Category is a semantic display class.
type Category int

const (
	Neutral Category = iota
	Success
	Info
	Warning
	Danger
	Purple
)

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{Neutral, Success, Info, Warning, Danger, Purple}
}

func (c Category) String() string {
	switch c {
	case Neutral:
		return "neutral"
	case Success:
		return "success"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	case Purple:
		return "purple"
	default:
		panic(fmt.Sprintf("classify: unknown category %d", int(c)))
	}
}

var statusTable = map[string]Category{
	"completed":   Success,
	"succeeded":   Success,
	"in_progress": Info,
	"running":     Info,
	"scheduled":   Purple,
	"todo":        Neutral,
	"failed":      Danger,
	"blocked":     Danger,
}

// ClassifyStatus maps a lifecycle status of any entity. Unrecognized values
// are Neutral.
func ClassifyStatus(raw string) Category {
	if c, ok := statusTable[raw]; ok {
		return c
	}
	return Neutral
}

// KnownStatus reports whether raw has an explicit entry in the status table.
func KnownStatus(raw string) bool {
	_, ok := statusTable[raw]
	return ok
}

// Priority bands. Each band's lower bound is inclusive.
const (
	highPriority   = 4
	mediumPriority = 3
)

// ClassifyPriority maps an integer priority to Danger (>=4), Warning (3) or
// Info (<3).
func ClassifyPriority(p int) Category {
	switch {
	case p >= highPriority:
		return Danger
	case p >= mediumPriority:
		return Warning
	default:
		return Info
	}
}

// IsHighPriority is the predicate behind the "High Priority" aggregate.
func IsHighPriority(p int) bool { return ClassifyPriority(p) == Danger }

// PriorityLabel renders the badge text for a priority, e.g. "P5 - High".
func PriorityLabel(p int) string {
	switch ClassifyPriority(p) {
	case Danger:
		return fmt.Sprintf("P%d - High", p)
	case Warning:
		return fmt.Sprintf("P%d - Medium", p)
	default:
		return fmt.Sprintf("P%d - Normal", p)
	}
}

// ClassifyTaskKind maps repair, pm and inspection; anything else is Neutral.
func ClassifyTaskKind(kind string) Category {
	switch kind {
	case "repair":
		return Danger
	case "pm":
		return Info
	case "inspection":
		return Warning
	default:
		return Neutral
	}
}

package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coachtui/woflo/internal/classify"
)

func TestHTMLBadgeVariants(t *testing.T) {
	h := HTML{}
	for _, c := range classify.Categories() {
		out := h.Badge(Badge{Label: "x", Category: c})
		assert.Contains(t, out, `data-variant="`+c.String()+`"`)
		assert.Contains(t, out, categoryClass(c))
	}

	sm := h.Badge(Badge{Label: "Locked", Category: classify.Warning, Size: SizeSM})
	assert.Contains(t, sm, "text-xs px-2 py-0.5")
	assert.Contains(t, sm, ">Locked</span>")
}

func TestHTMLEscapesLabels(t *testing.T) {
	h := HTML{}
	out := h.Badge(Badge{Label: `<script>alert(1)</script>`})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")

	field := h.Field("Unit", `"><img src=x>`)
	assert.NotContains(t, field, "<img")
}

func TestHTMLMetricCard(t *testing.T) {
	h := HTML{}
	out := h.MetricCard(MetricCard{Label: "High Priority", Value: "1"})
	assert.Contains(t, out, `data-metric="High Priority"`)
	assert.Contains(t, out, ">1</p>")
	assert.NotContains(t, out, "↑")

	up := h.MetricCard(MetricCard{Label: "Runs", Value: "4", Trend: &Trend{Magnitude: 12.5, Up: true}})
	assert.Contains(t, up, "↑ 12.5%")
	down := h.MetricCard(MetricCard{Label: "Runs", Value: "4", Trend: &Trend{Magnitude: -3}})
	assert.Contains(t, down, "↓ 3%")
}

func TestHTMLPanelTrustsChildren(t *testing.T) {
	h := HTML{}
	body := h.Badge(Badge{Label: "ok", Category: classify.Success})
	out := h.Panel(Panel{Title: "Run <1>", Body: body, Action: h.Action(Action{Label: "View", Href: "/schedule/1"})})
	assert.Contains(t, out, body)
	assert.Contains(t, out, "Run &lt;1&gt;")
	assert.Contains(t, out, `<a href="/schedule/1"`)
}

func TestHTMLActionPostCarriesHiddenFields(t *testing.T) {
	out := HTML{}.Action(Action{Label: "Lock", Href: "/tasks/t1/lock", Method: "post", Hidden: map[string]string{"return": "/tasks"}})
	assert.Contains(t, out, `<form method="post" action="/tasks/t1/lock"`)
	assert.Contains(t, out, `name="return" value="/tasks"`)
}

func TestRenderRegionDrawsExactlyOne(t *testing.T) {
	h := HTML{}
	parts := RegionParts{
		Content: "<ul>rows</ul>",
		Empty:   Empty{Title: "No work orders found"},
		Loading: Loading{Message: "Loading work orders..."},
		Error:   Error{Message: "boom", RetryHref: "?refresh=1"},
	}
	markers := []string{"<ul>rows</ul>", `data-region="empty"`, `data-region="loading"`, `data-region="error"`}

	for i, region := range []Region{RegionContent, RegionEmpty, RegionLoading, RegionError} {
		out := RenderRegion(h, region, parts)
		for j, m := range markers {
			if i == j {
				assert.Contains(t, out, m, region.String())
			} else {
				assert.NotContains(t, out, m, region.String())
			}
		}
	}
}

func TestTermRenderer(t *testing.T) {
	tr := Term{}
	assert.Contains(t, tr.Badge(Badge{Label: "Locked", Category: classify.Warning}), "[Locked]")
	card := tr.MetricCard(MetricCard{Label: "Total Runs", Value: "3"})
	assert.Contains(t, card, "Total Runs")
	assert.Contains(t, card, "3")
	assert.Empty(t, tr.Form(Form{Action: "/x"}))
	assert.Contains(t, tr.Error(Error{Message: "backend down", RetryHref: "?refresh=1"}), "backend down")

	grid := tr.Grid(2, "a", "b", "c")
	assert.Equal(t, 2, len(strings.Split(grid, "\n")))
}

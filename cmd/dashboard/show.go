package main

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/blob"
	"github.com/coachtui/woflo/internal/page"
	"github.com/coachtui/woflo/internal/view"
	"github.com/coachtui/woflo/internal/web"
)

var (
	showStatus string
	showHTML   bool
	showOut    string
	showOutDir string
	showWidth  int
)

var showCmd = &cobra.Command{
	Use:   "show [overview|schedule|run <id>|work-orders|tasks|jobs]",
	Short: "Render one dashboard page once, to the terminal or an HTML file",
	Example: `  woflo show tasks
  woflo show work-orders --status todo
  woflo show run 3f2a9c1e-...
  woflo show schedule --html --out snapshots/schedule.html`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runShow,
}

func init() {
	flags := showCmd.Flags()
	flags.StringVar(&showStatus, "status", page.FilterAll, "work-order status filter")
	flags.BoolVar(&showHTML, "html", false, "render HTML instead of terminal text")
	flags.StringVar(&showOut, "out", "", "write the rendered page to this path under --out-dir")
	flags.StringVar(&showOutDir, "out-dir", ".", "root directory for --out")
	flags.IntVar(&showWidth, "width", 100, "terminal panel width")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name, rest := "overview", []string(nil)
	if len(args) > 0 {
		name, rest = args[0], args[1:]
	}

	var r view.Renderer = view.Term{Width: showWidth}
	if showHTML {
		r = view.HTML{}
	}

	// Fetches are bounded by the client timeout; allow one more for the
	// controller hand-off.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.APITimeout+time.Second)
	defer cancel()

	v, section, err := renderPage(ctx, newClient(cfg), r, name, rest)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if showHTML {
		doc, err := web.Standalone(v, section)
		if err != nil {
			return err
		}
		out.Write(doc)
	} else {
		for _, part := range []string{r.Heading(v.Title), v.Description, v.Actions, v.Body} {
			if strings.TrimSpace(part) != "" {
				out.WriteString(part)
				out.WriteString("\n\n")
			}
		}
	}

	if showOut == "" {
		_, err := out.WriteTo(cmd.OutOrStdout())
		return err
	}
	rel, err := blob.LocalFS{Root: showOutDir}.Put(showOut, &out)
	if err != nil {
		return err
	}
	log.Info("snapshot written", zap.String("page", name), zap.String("path", rel))
	return nil
}

func renderPage(ctx context.Context, client *apiclient.Client, r view.Renderer, name string, rest []string) (page.View, string, error) {
	switch name {
	case "overview":
		return page.OverviewView(r, page.LoadOverview(ctx, client), ""), page.PathOverview, nil
	case "schedule":
		s := page.NewSchedule(client, log)
		s.Activate(ctx)
		return page.ScheduleView(r, s.Wait(ctx), ""), page.PathSchedule, nil
	case "run":
		if len(rest) != 1 {
			return page.View{}, "", errors.New("show run: need a schedule run id")
		}
		d := page.LoadScheduleRun(ctx, client, rest[0])
		return page.ScheduleDetailView(r, d.Run, d.Items, d.Err, ""), page.PathSchedule, nil
	case "work-orders":
		w := page.NewWorkOrders(client, log)
		w.SetFilter(ctx, showStatus)
		return page.WorkOrdersView(r, w.Wait(ctx), w.Filter(), "", time.Now()), page.PathWorkOrders, nil
	case "tasks":
		t := page.NewTasks(client, log)
		t.Activate(ctx)
		return page.TasksView(r, t.Wait(ctx), ""), page.PathTasks, nil
	case "jobs":
		j := page.NewJobs(client, log)
		j.Activate(ctx)
		return page.JobsView(r, j.Wait(ctx), ""), page.PathJobs, nil
	default:
		return page.View{}, "", errors.Newf("unknown page %q", name)
	}
}

package page

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/classify"
	"github.com/coachtui/woflo/internal/model"
	"github.com/coachtui/woflo/internal/view"
)

// View is a composed page: a header plus a body, both produced by one
// Renderer. The web layer wraps it in a document, the CLI prints it.
type View struct {
	Title       string
	Description string
	Actions     string
	Body        string
}

func statusBadge(r view.Renderer, raw string) string {
	return r.Badge(view.Badge{Label: statusLabel(raw), Category: classify.ClassifyStatus(raw)})
}

func priorityBadge(r view.Renderer, p int) string {
	return r.Badge(view.Badge{Label: classify.PriorityLabel(p), Category: classify.ClassifyPriority(p)})
}

func lockedBadge(r view.Renderer) string {
	return r.Badge(view.Badge{Label: "Locked", Category: classify.Warning, Size: view.SizeSM, Icon: "🔒"})
}

func errorMessage(err error) string {
	if apiclient.IsNotFound(err) {
		return "Not found."
	}
	return apiclient.Describe(err)
}

func infoPanel(r view.Renderer, title, description string, lines ...string) string {
	items := make([]string, len(lines))
	for i, l := range lines {
		items[i] = r.Text("✓ " + l)
	}
	return r.Panel(view.Panel{Title: title, Description: description, Body: r.Stack(items...), Muted: true})
}

func ScheduleView(r view.Renderer, snap Snapshot[model.ScheduleRun], retryHref string) View {
	newRun := view.Action{Label: "New Schedule Run", Href: PathScheduleRuns, Method: "POST", Primary: true}
	v := View{
		Title:       "Schedule Board",
		Description: "AI-optimized schedules using OR-Tools CP-SAT constraint solver",
		Actions:     r.Action(newRun),
	}

	var parts []string
	if snap.State == StateReady {
		stats := ScheduleAggregates(snap.Items)
		parts = append(parts, r.Grid(4,
			r.MetricCard(view.MetricCard{Label: "Total Runs", Value: count(stats.Total), Icon: "▦"}),
			r.MetricCard(view.MetricCard{Label: "Succeeded", Value: count(stats.Succeeded), Icon: "✓"}),
			r.MetricCard(view.MetricCard{Label: "Running", Value: count(stats.Running), Icon: "◷"}),
			r.MetricCard(view.MetricCard{Label: "Failed", Value: count(stats.Failed), Icon: "✗"}),
		))
	}

	rows := make([]string, len(snap.Items))
	for i, run := range snap.Items {
		rows[i] = runRow(r, run)
	}
	firstRun := newRun
	firstRun.Label = "Create First Schedule"
	parts = append(parts, view.RenderRegion(r, snap.Region(), view.RegionParts{
		Content: r.Stack(rows...),
		Empty: view.Empty{
			Icon:        "▦",
			Title:       "No schedule runs yet",
			Description: "Create your first schedule run to see the AI optimizer in action",
			Action:      r.Action(firstRun),
		},
		Loading: view.Loading{Message: "Loading schedule runs..."},
		Error:   view.Error{Message: errorMessage(snap.Err), RetryHref: retryHref},
	}))

	parts = append(parts, infoPanel(r, "How it Works", "OR-Tools CP-SAT constraint-based optimization",
		"Respects technician skills, bay types, and time windows",
		"Honors manually locked tasks (manual overrides)",
		"Optimizes for due dates, priorities, and resource utilization",
		"Typical solve time: <10 seconds for 50 tasks",
	))
	v.Body = r.Stack(parts...)
	return v
}

func runRow(r view.Renderer, run model.ScheduleRun) string {
	badges := []string{statusBadge(r, string(run.Status))}
	if run.TaskCount != nil && *run.TaskCount > 0 {
		badges = append(badges, r.Badge(view.Badge{Label: count(*run.TaskCount) + " tasks"}))
	}

	fields := []string{r.Field("Period", formatTime(run.HorizonStart)+" → "+formatTime(run.HorizonEnd))}
	if st := formatSolveTime(run.SolverWallTimeMS); st != "" {
		fields = append(fields, r.Field("Solve Time", st))
	}
	if run.ObjectiveValue != nil {
		fields = append(fields, r.Field("Objective Score", float(*run.ObjectiveValue)))
		if b := run.ObjectiveBreakdown; b != nil {
			fields = append(fields, r.Field("Penalties", fmt.Sprintf("Due: %s, Priority: %s, Skills: %s",
				float(b.DueDatePenalty), float(b.PriorityPenalty), float(b.SkillMismatchPenalty))))
		}
	}

	return r.Panel(view.Panel{
		Title:  "Run #" + ShortID(run.ID),
		Action: r.Action(view.Action{Label: "View", Href: RunPath(run.ID)}),
		Body:   r.Stack(r.Row(badges...), r.Grid(2, fields...)),
	})
}

// ScheduleDetailView shows one run and its assignments. err is the first
// failure of either fetch.
func ScheduleDetailView(r view.Renderer, run model.ScheduleRun, items []model.ScheduleItem, err error, retryHref string) View {
	back := r.Action(view.Action{Label: "Back to Schedule", Href: PathSchedule})
	if err != nil {
		return View{
			Title:   "Schedule Run",
			Actions: back,
			Body:    r.Error(view.Error{Message: errorMessage(err), RetryHref: retryHref}),
		}
	}

	summary := []string{
		r.Field("Status", statusLabel(string(run.Status))),
		r.Field("Period", formatTime(run.HorizonStart)+" → "+formatTime(run.HorizonEnd)),
	}
	if run.Trigger != "" {
		summary = append(summary, r.Field("Trigger", run.Trigger))
	}
	if st := formatSolveTime(run.SolverWallTimeMS); st != "" {
		summary = append(summary, r.Field("Solve Time", st))
	}
	if run.ObjectiveValue != nil {
		summary = append(summary, r.Field("Objective Score", float(*run.ObjectiveValue)))
	}
	if run.JobID != "" {
		summary = append(summary, r.Field("Job", ShortID(run.JobID)))
	}
	if run.CreatedAt != nil {
		summary = append(summary, r.Field("Created", formatTime(run.CreatedAt)))
	}

	rows := make([]string, len(items))
	for i, item := range items {
		rows[i] = itemRow(r, item)
	}
	region := view.RegionContent
	if len(items) == 0 {
		region = view.RegionEmpty
	}

	return View{
		Title:       "Run #" + ShortID(run.ID),
		Description: "Assignments produced by this schedule run",
		Actions:     back,
		Body: r.Stack(
			r.Panel(view.Panel{Body: r.Stack(statusBadge(r, string(run.Status)), r.Grid(2, summary...))}),
			r.Panel(view.Panel{
				Title: "Schedule Items",
				Body: view.RenderRegion(r, region, view.RegionParts{
					Content: r.Stack(rows...),
					Empty: view.Empty{
						Title:       "No schedule items",
						Description: "The optimizer has not assigned any tasks for this run yet",
					},
				}),
			}),
		),
	}
}

func itemRow(r view.Renderer, item model.ScheduleItem) string {
	tech := item.TechnicianName
	if tech == "" {
		tech = ShortID(item.TechnicianID)
	}
	bay := item.BayName
	if bay == "" {
		bay = ShortID(item.BayID)
	}
	parts := []string{
		r.Field("Task", "#"+ShortID(item.TaskID)),
		r.Field("Technician", tech),
		r.Field("Bay", bay),
		r.Field("Window", formatTime(&item.StartAt)+" → "+formatTime(&item.EndAt)),
	}
	if item.IsLocked {
		parts = append(parts, lockedBadge(r))
	}
	return r.Row(parts...)
}

func filterLabel(filter string) string {
	switch filter {
	case FilterAll:
		return "All"
	case string(model.WorkOrderTodo):
		return "To Do"
	default:
		return titleCase(filter)
	}
}

func WorkOrdersView(r view.Renderer, snap Snapshot[model.WorkOrder], filter, retryHref string, now time.Time) View {
	if filter == "" {
		filter = FilterAll
	}
	v := View{
		Title:       "Work Orders",
		Description: "Manage repair and maintenance work orders",
	}

	var parts []string
	if snap.State == StateReady {
		stats := WorkOrderAggregates(snap.Items)
		parts = append(parts, r.Grid(4,
			r.MetricCard(view.MetricCard{Label: "Total Work Orders", Value: count(stats.Total), Icon: "▤"}),
			r.MetricCard(view.MetricCard{Label: "High Priority", Value: count(stats.HighPriority), Icon: "!"}),
			r.MetricCard(view.MetricCard{Label: "Parts Ready", Value: count(stats.PartsReady), Icon: "▣"}),
			r.MetricCard(view.MetricCard{Label: "In Progress", Value: count(stats.InProgress), Icon: "↗"}),
		))
	}

	filters := make([]string, len(FilterOptions))
	for i, opt := range FilterOptions {
		filters[i] = r.Action(view.Action{Label: filterLabel(opt), Href: WorkOrdersFilterHref(opt), Active: opt == filter})
	}
	parts = append(parts, r.Panel(view.Panel{Body: r.Row(filters...)}))

	rows := make([]string, len(snap.Items))
	for i, wo := range snap.Items {
		rows[i] = workOrderRow(r, wo, now)
	}
	emptyDesc := "Create work orders to get started"
	if filter != FilterAll {
		emptyDesc = fmt.Sprintf("No work orders with status %q", statusLabel(filter))
	}
	parts = append(parts, view.RenderRegion(r, snap.Region(), view.RegionParts{
		Content: r.Stack(rows...),
		Empty:   view.Empty{Icon: "▤", Title: "No work orders found", Description: emptyDesc},
		Loading: view.Loading{Message: "Loading work orders..."},
		Error:   view.Error{Message: errorMessage(snap.Err), RetryHref: retryHref},
	}))

	if form := r.Form(workOrderForm()); form != "" {
		parts = append(parts, r.Panel(view.Panel{Title: "New Work Order", Description: "Tasks are generated by the backend once the order exists", Body: form}))
	}

	v.Body = r.Stack(parts...)
	return v
}

func workOrderForm() view.Form {
	return view.Form{
		Action: PathWorkOrders,
		Submit: "Create Work Order",
		Fields: []view.FormField{
			{Name: "unit_id", Label: "Unit", Required: true},
			{Name: "asset_type", Label: "Asset Type", Placeholder: "tractor", Required: true},
			{Name: "priority", Label: "Priority", Value: "3", Options: []string{"1", "2", "3", "4", "5"}},
			{Name: "due_date", Label: "Due Date", Type: "date"},
			{Name: "location", Label: "Location"},
			{Name: "parts_required", Label: "Parts Required", Value: "no", Options: []string{"no", "yes"}},
			{Name: "notes", Label: "Notes"},
		},
	}
}

func workOrderRow(r view.Renderer, wo model.WorkOrder, now time.Time) string {
	badges := []string{priorityBadge(r, wo.Priority), statusBadge(r, string(wo.Status))}
	if wo.PartsReady {
		badges = append(badges, r.Badge(view.Badge{Label: "Parts Ready", Category: classify.Success, Size: view.SizeSM, Icon: "▣"}))
	}

	unit := Truncate(wo.UnitID, 12)
	fields := []string{
		r.Field("Unit", unit),
		r.Field("Type", wo.AssetType),
	}
	if wo.DueDate != nil && !wo.DueDate.IsZero() {
		fields = append(fields, r.Field("Due", formatDay(wo.DueDate)+" ("+relative(wo.DueDate.Time(), now)+")"))
	}
	if wo.Location != "" {
		fields = append(fields, r.Field("Location", wo.Location))
	}
	if wo.PartsRequired && !wo.PartsReady {
		fields = append(fields, r.Field("Parts", "awaiting"))
	}

	body := []string{r.Row(badges...), r.Grid(3, fields...)}
	if wo.Notes != "" {
		body = append(body, r.Text(wo.Notes))
	}
	return r.Panel(view.Panel{Title: "WO-" + ShortID(wo.ID), Body: r.Stack(body...)})
}

func TasksView(r view.Renderer, snap Snapshot[model.Task], retryHref string) View {
	v := View{
		Title:       "Tasks",
		Description: "View and manage all maintenance and repair tasks",
	}

	var parts []string
	if snap.State == StateReady {
		stats := TaskAggregates(snap.Items)
		parts = append(parts, r.Grid(4,
			r.MetricCard(view.MetricCard{Label: "To Do", Value: count(stats.Todo), Icon: "☐"}),
			r.MetricCard(view.MetricCard{Label: "Scheduled", Value: count(stats.Scheduled), Icon: "◷"}),
			r.MetricCard(view.MetricCard{Label: "In Progress", Value: count(stats.InProgress), Icon: "▶"}),
			r.MetricCard(view.MetricCard{Label: "Completed", Value: count(stats.Completed), Icon: "✓"}),
		))
	}

	var groups []string
	for _, g := range GroupTasks(snap.Items) {
		rows := make([]string, len(g.Tasks))
		for i, t := range g.Tasks {
			rows[i] = TaskRow(r, t)
		}
		heading := r.Heading(fmt.Sprintf("%s (%d)", titleCase(string(g.Status)), len(g.Tasks)))
		groups = append(groups, r.Stack(append([]string{heading}, rows...)...))
	}
	parts = append(parts, view.RenderRegion(r, snap.Region(), view.RegionParts{
		Content: r.Stack(groups...),
		Empty:   view.Empty{Icon: "☐", Title: "No tasks found", Description: "Tasks will appear here when work orders are created"},
		Loading: view.Loading{Message: "Loading tasks..."},
		Error:   view.Error{Message: errorMessage(snap.Err), RetryHref: retryHref},
	}))

	parts = append(parts, infoPanel(r, "Task Management", "How tasks are organized and scheduled",
		"Tasks are auto-generated from work orders",
		"Locked tasks respect manual dispatcher assignments",
		"Scheduler optimizes todo/scheduled tasks automatically",
		"Skills and bay types ensure proper resource matching",
	))
	v.Body = r.Stack(parts...)
	return v
}

// TaskRow renders one task. A locked task always carries the Locked badge,
// whatever its status.
func TaskRow(r view.Renderer, t model.Task) string {
	badges := []string{
		r.Badge(view.Badge{Label: strings.ToUpper(string(t.Kind)), Category: classify.ClassifyTaskKind(string(t.Kind)), Size: view.SizeSM}),
		statusBadge(r, string(t.Status)),
	}
	if t.LockFlag {
		badges = append(badges, lockedBadge(r))
	}

	var left, middle, right []string
	left = append(left, r.Field("WO", ShortID(t.WorkOrderID)))
	if t.RequiredSkill != "" {
		skill := t.RequiredSkill
		if t.RequiredSkillIsHard {
			skill += " (hard)"
		}
		left = append(left, r.Field("Skill", skill))
	}
	middle = append(middle, r.Field("Duration", formatMinutes(t.DurationMinutesLow)+"-"+formatMinutes(t.DurationMinutesHigh)))
	if t.RequiredBayType != "" {
		middle = append(middle, r.Field("Bay", t.RequiredBayType))
	}
	if t.EarliestStart != nil {
		right = append(right, r.Field("Earliest", formatTime(t.EarliestStart)))
	}
	if t.LatestFinish != nil {
		right = append(right, r.Field("Latest", formatTime(t.LatestFinish)))
	}
	if t.LockFlag && t.LockedTechID != "" {
		right = append(right, r.Field("Locked Tech", ShortID(t.LockedTechID)))
	}

	lock := view.Action{Label: "Lock", Href: TaskLockPath(t.ID, true), Method: "POST"}
	if t.LockFlag {
		lock = view.Action{Label: "Unlock", Href: TaskLockPath(t.ID, false), Method: "POST"}
	}

	return r.Panel(view.Panel{
		Title:  "#" + ShortID(t.ID),
		Action: r.Action(lock),
		Body: r.Stack(
			r.Row(badges...),
			r.Grid(3, strings.Join(left, ""), strings.Join(middle, ""), strings.Join(right, "")),
		),
	})
}

func JobsView(r view.Renderer, snap Snapshot[model.Job], retryHref string) View {
	rows := make([]string, len(snap.Items))
	for i, job := range snap.Items {
		rows[i] = r.Text(string(job))
	}
	return View{
		Title:       "Jobs",
		Description: "Background work queued on the backend",
		Body: view.RenderRegion(r, snap.Region(), view.RegionParts{
			Content: r.Panel(view.Panel{Title: count(len(snap.Items)) + " jobs", Body: r.Stack(rows...)}),
			Empty:   view.Empty{Title: "No jobs", Description: "Jobs appear here when schedule runs are queued"},
			Loading: view.Loading{Message: "Loading jobs..."},
			Error:   view.Error{Message: errorMessage(snap.Err), RetryHref: retryHref},
		}),
	}
}

// Overview is what the landing page summarizes. Err is the first failed
// fetch, if any.
type Overview struct {
	Runs       []model.ScheduleRun
	WorkOrders []model.WorkOrder
	Tasks      []model.Task
	Err        error
}

func OverviewView(r view.Renderer, o Overview, retryHref string) View {
	v := View{
		Title:       "AI-Powered Scheduling & Workflow Management",
		Description: "Optimize your diesel shop operations with intelligent constraint-based scheduling",
	}

	var summary string
	if o.Err != nil {
		summary = r.Error(view.Error{Message: errorMessage(o.Err), RetryHref: retryHref})
	} else {
		runs := ScheduleAggregates(o.Runs)
		orders := WorkOrderAggregates(o.WorkOrders)
		tasks := TaskAggregates(o.Tasks)
		locked := 0
		for _, t := range o.Tasks {
			if t.LockFlag {
				locked++
			}
		}
		summary = r.Grid(3,
			navCard(r, "Schedule Board", "AI-optimized technician schedules with resource allocation", PathSchedule,
				r.Field("Runs", count(runs.Total)), r.Field("Succeeded", count(runs.Succeeded)), r.Field("Running", count(runs.Running))),
			navCard(r, "Work Orders", "Manage queue, priorities and track progress", PathWorkOrders,
				r.Field("Total", count(orders.Total)), r.Field("High Priority", count(orders.HighPriority)), r.Field("Parts Ready", count(orders.PartsReady))),
			navCard(r, "Tasks", "View assignments, skills and bay requirements", PathTasks,
				r.Field("To Do", count(tasks.Todo)), r.Field("Scheduled", count(tasks.Scheduled)), r.Field("Locked", strconv.Itoa(locked))),
		)
	}

	quick := r.Panel(view.Panel{
		Title: "Quick Actions",
		Muted: true,
		Body: r.Row(
			r.Action(view.Action{Label: "New Schedule Run", Href: PathScheduleRuns, Method: "POST", Primary: true}),
			r.Action(view.Action{Label: "Browse Work Orders", Href: PathWorkOrders}),
			r.Action(view.Action{Label: "View All Tasks", Href: PathTasks}),
			r.Action(view.Action{Label: "Jobs", Href: PathJobs}),
		),
	})

	v.Body = r.Stack(summary, quick)
	return v
}

func navCard(r view.Renderer, title, description, href string, fields ...string) string {
	return r.Panel(view.Panel{
		Title:       title,
		Description: description,
		Action:      r.Action(view.Action{Label: "Open", Href: href}),
		Body:        r.Stack(fields...),
	})
}

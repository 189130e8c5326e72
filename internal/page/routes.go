package page

import "net/url"

// Dashboard paths. Pages link to each other through these only.
const (
	PathOverview     = "/"
	PathSchedule     = "/schedule"
	PathScheduleRuns = "/schedule/runs"
	PathWorkOrders   = "/work-orders"
	PathTasks        = "/tasks"
	PathJobs         = "/jobs"
	PathCredential   = "/session/credential"
	PathDismiss      = "/notice/dismiss"
)

// RefreshParam forces a re-fetch (and doubles as retry) on any page.
const RefreshParam = "refresh"

func RunPath(id string) string { return PathSchedule + "/" + url.PathEscape(id) }

func TaskLockPath(id string, locked bool) string {
	action := "unlock"
	if locked {
		action = "lock"
	}
	return PathTasks + "/" + url.PathEscape(id) + "/" + action
}

// RetryHref is path with the refresh flag added.
func RetryHref(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		if k != RefreshParam {
			q[k] = v
		}
	}
	q.Set(RefreshParam, "1")
	return path + "?" + q.Encode()
}

func WorkOrdersFilterHref(filter string) string {
	if filter == "" || filter == FilterAll {
		return PathWorkOrders
	}
	return PathWorkOrders + "?" + url.Values{"status": {filter}}.Encode()
}

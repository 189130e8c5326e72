package page

import (
	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/classify"
)

// Notice is the outcome of a user action, shown once above the page.
type Notice struct {
	Category classify.Category
	Message  string
	Err      error
}

func (n Notice) Failed() bool { return n.Err != nil }

func Success(msg string) Notice {
	return Notice{Category: classify.Success, Message: msg}
}

func Failure(prefix string, err error) Notice {
	return Notice{
		Category: classify.Danger,
		Message:  prefix + ": " + apiclient.Describe(err),
		Err:      err,
	}
}

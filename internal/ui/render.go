package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Texts shown instead of the list.
const (
	LoadingText = "Loading..."
	EmptyText   = "No tasks yet. Add one above."
)

// CreatedAtLayout formats "Added on" timestamps.
const CreatedAtLayout = "Jan 2, 2006 3:04:05 PM"

// Render writes state to w. Timestamps are shown in loc (time.Local if nil).
// Output depends only on its arguments.
func Render(w io.Writer, state State, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	switch {
	case state.Loading:
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	case len(state.Tasks) == 0:
		_, err := fmt.Fprintln(w, EmptyText)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, task := range state.Tasks {
		_, err := fmt.Fprintf(tw, "%d.\t%s\tAdded on: %s\t%s\n",
			i+1,
			oneLine(task.Title),
			task.CreatedAt.In(loc).Format(CreatedAtLayout),
			task.ID)
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

// oneLine keeps a multi-line title on its row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

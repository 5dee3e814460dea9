package render

import (
	"fmt"
	"io"

	"github.com/trebuchet-org/lockgov/internal/domain/events"
)

// RenderEvents lists the events a command committed.
func RenderEvents(out io.Writer, evts []events.Event) {
	for _, e := range evts {
		fmt.Fprintln(out, FormatSuccess(e.EventName()))
	}
}

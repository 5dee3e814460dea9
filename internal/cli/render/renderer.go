package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"gopkg.in/yaml.v3"
)

type Renderer[T any] interface {
	Render(result T) error
}

// EventRecord is the structured form of one audit event.
type EventRecord struct {
	Event string       `json:"event" yaml:"event"`
	Data  events.Event `json:"data" yaml:"data"`
}

// EventRecords pairs every event with its name.
func EventRecords(evts []events.Event) []EventRecord {
	out := make([]EventRecord, len(evts))
	for i, e := range evts {
		out[i] = EventRecord{Event: e.EventName(), Data: e}
	}
	return out
}

// Printer chooses between the table renderers and structured output.
type Printer struct {
	out    io.Writer
	format config.OutputFormat
}

func NewPrinter(out io.Writer, format config.OutputFormat) *Printer {
	return &Printer{out: out, format: format}
}

func (p *Printer) Out() io.Writer {
	return p.out
}

// Structured reports whether results should be encoded instead of drawn.
func (p *Printer) Structured() bool {
	return p.format == config.OutputJSON || p.format == config.OutputYAML
}

// Encode writes v as JSON or YAML.
func (p *Printer) Encode(v any) error {
	switch p.format {
	case config.OutputYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	}
}

// Package console implements the console event reporter.
// Prints each broadcast as a text record followed by a hex dump of its bytes.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gookit/color"
	"github.com/mitchellh/mapstructure"

	"firestige.xyz/chatsniff/internal/core"
	"firestige.xyz/chatsniff/internal/log"
	"firestige.xyz/chatsniff/pkg/plugin"
)

const (
	NoRecipients = "(no other clients)"
	NoText       = "(no readable text)"
)

var separator = strings.Repeat("═", 100)

// ConsoleReporter writes events to stdout.
type ConsoleReporter struct {
	name          string
	out           io.Writer
	config        Config
	reportedCount atomic.Uint64
}

// Config represents console reporter configuration.
type Config struct {
	Format string `mapstructure:"format"` // "text" or "json", default "text"
	Color  bool   `mapstructure:"color"`
}

// NewConsoleReporter creates a console reporter writing to stdout.
func NewConsoleReporter() plugin.Reporter {
	return newConsoleReporter(os.Stdout)
}

func newConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		name:   "console",
		out:    w,
		config: Config{Format: "text"},
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string {
	return r.name
}

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(cfg map[string]any) error {
	if cfg == nil {
		return nil
	}
	if err := mapstructure.WeakDecode(cfg, &r.config); err != nil {
		return fmt.Errorf("invalid console reporter config: %w", err)
	}
	if r.config.Format == "" {
		r.config.Format = "text"
	}
	if r.config.Format != "json" && r.config.Format != "text" {
		return fmt.Errorf("invalid format %q, must be json or text", r.config.Format)
	}
	return nil
}

// Start starts the reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	log.GetLogger().WithField("format", r.config.Format).Info("console reporter started")
	return nil
}

// Stop stops the reporter.
func (r *ConsoleReporter) Stop(ctx context.Context) error {
	log.GetLogger().WithField("total_reported", r.reportedCount.Load()).Info("console reporter stopped")
	return nil
}

// Report prints one event.
func (r *ConsoleReporter) Report(ctx context.Context, evt *core.BroadcastEvent) error {
	if evt == nil {
		return fmt.Errorf("nil event")
	}

	var err error
	if r.config.Format == "json" {
		err = r.reportJSON(evt)
	} else {
		_, err = io.WriteString(r.out, r.render(evt))
	}
	if err != nil {
		return err
	}
	r.reportedCount.Add(1)
	return nil
}

func (r *ConsoleReporter) render(evt *core.BroadcastEvent) string {
	recipients := NoRecipients
	if len(evt.Recipients) > 0 {
		recipients = strings.Join(evt.Recipients, ", ")
	}
	text := evt.Content
	if text == "" {
		text = NoText
	}

	header := fmt.Sprintf("[%s] %s ➜ %s | Room %d",
		evt.Timestamp.Format("15:04:05"), evt.Sender, recipients, evt.RoomID)
	if r.config.Color {
		header = color.New(color.FgCyan, color.OpBold).Sprint(header)
	}

	var b strings.Builder
	b.WriteString(separator + "\n")
	b.WriteString(header + "\n")
	b.WriteString("Text:\n" + text + "\n")
	b.WriteString("Hex dump:\n" + HexDump(evt.Raw) + "\n")
	b.WriteString(separator + "\n\n")
	return b.String()
}

func (r *ConsoleReporter) reportJSON(evt *core.BroadcastEvent) error {
	output := map[string]any{
		"id":         evt.ID,
		"timestamp":  evt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		"sender":     evt.Sender,
		"recipients": evt.Recipients,
		"room_id":    evt.RoomID,
		"content":    evt.Content,
		"raw_len":    len(evt.Raw),
	}
	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}

// Flush is a no-op for console reporter.
func (r *ConsoleReporter) Flush(ctx context.Context) error {
	return nil
}

package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"payengine/internal/engine"
)

// contextCheckInterval is how many rows pass between cancellation checks.
// Per-row checks are wasted work; every hundred rows is sub-millisecond.
const contextCheckInterval = 100

// RejectedRow is a malformed input row that never reached the engine,
// kept for the rejects file and for stats.
type RejectedRow struct {
	// Line is the 1-based CSV record index; blank lines are skipped by the
	// CSV decoder and do not count.
	Line   int
	Reason string
	Fields []string
}

// Source reads the CSV input and is the single producer on the events
// channel. It closes the channel when the input is exhausted; the blocking
// send on a full channel is the pipeline's only backpressure.
type Source struct {
	reader io.Reader
	events chan<- engine.Event
	logger *slog.Logger

	delivered int
	rejects   []RejectedRow
}

// NewSource wires a source to its input and output. A nil logger falls
// back to slog.Default.
func NewSource(r io.Reader, events chan<- engine.Event, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{reader: r, events: events, logger: logger}
}

// Run streams rows until EOF, forwarding well-formed events in file order.
// The events channel is closed on return no matter how Run exits, so the
// consumer always unblocks.
//
// Malformed rows are logged, collected, and skipped. A broken CSV record
// (quoting damage) counts as malformed too; only a real read failure or
// cancellation stops the loop early.
func (s *Source) Run(ctx context.Context) error {
	defer close(s.events)

	rd := csv.NewReader(s.reader)
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true
	rd.TrimLeadingSpace = true

	line := 0
	headerSeen := false

	for {
		if line%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("ingest cancelled at line %d: %w", line, err)
			}
		}

		row, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				s.reject(line, fmt.Sprintf("csv: %v", err), row)
				continue
			}
			return fmt.Errorf("read input at line %d: %w", line, err)
		}

		if isEmptyRow(row) {
			continue
		}

		// The first non-empty row should be the header. If it is not, log
		// the anomaly and fall through to parse it as data rather than
		// silently dropping a real event.
		if !headerSeen {
			headerSeen = true
			if IsHeaderRow(row) {
				continue
			}
			s.logger.Warn("first row does not match expected header, treating as data",
				"row", strings.Join(row, ","))
		}

		ev, err := ParseRow(row)
		if err != nil {
			s.reject(line, err.Error(), row)
			continue
		}

		select {
		case s.events <- ev:
			s.delivered++
		case <-ctx.Done():
			return fmt.Errorf("ingest cancelled at line %d: %w", line, ctx.Err())
		}
	}
}

func (s *Source) reject(line int, reason string, row []string) {
	s.logger.Warn("dropping malformed row", "line", line, "reason", reason)
	s.rejects = append(s.rejects, RejectedRow{Line: line, Reason: reason, Fields: row})
}

// Delivered returns how many events were handed to the engine.
func (s *Source) Delivered() int {
	return s.delivered
}

// Rejects returns the malformed rows seen so far, in input order.
func (s *Source) Rejects() []RejectedRow {
	return s.rejects
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// WriteRejects writes the rejected rows as a CSV with a status column in
// front of the original fields, the same shape as the input file so the
// rows can be fixed up and re-fed.
func WriteRejects(path string, rejects []RejectedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rejects file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"status"}, Header...)); err != nil {
		return fmt.Errorf("write rejects header: %w", err)
	}
	for _, r := range rejects {
		record := append([]string{fmt.Sprintf("line %d: %s", r.Line, r.Reason)}, r.Fields...)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write rejects row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

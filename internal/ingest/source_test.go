package ingest

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payengine/internal/engine"
)

// runSource drains a source synchronously and returns the delivered events.
func runSource(t *testing.T, input string) (*Source, []engine.Event) {
	t.Helper()

	events := make(chan engine.Event, 64)
	src := NewSource(strings.NewReader(input), events, nil)

	done := make(chan error, 1)
	go func() { done <- src.Run(context.Background()) }()

	var got []engine.Event
	for ev := range events {
		got = append(got, ev)
	}
	require.NoError(t, <-done)
	return src, got
}

func TestSource_DeliversEventsInFileOrder(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,1.0\n" +
		"deposit,2,2,2.0\n" +
		"withdrawal,1,3,0.5\n" +
		"dispute,1,3,\n"

	src, got := runSource(t, input)

	require.Len(t, got, 4)
	assert.Equal(t, engine.EventDeposit, got[0].Type)
	assert.Equal(t, uint32(1), got[0].Tx)
	assert.Equal(t, engine.EventDeposit, got[1].Type)
	assert.Equal(t, engine.EventWithdrawal, got[2].Type)
	assert.Equal(t, engine.EventDispute, got[3].Type)
	assert.False(t, got[3].HasAmount)

	assert.Equal(t, 4, src.Delivered())
	assert.Empty(t, src.Rejects())
}

func TestSource_MalformedRowsCollectedNotForwarded(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,1.0\n" +
		"deposit,notanumber,2,1.0\n" +
		"deposit,1\n" +
		"withdrawal,1,2,abc\n" +
		"deposit,2,3,4.0\n"

	src, got := runSource(t, input)

	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].Tx)
	assert.Equal(t, uint32(3), got[1].Tx)

	rejects := src.Rejects()
	require.Len(t, rejects, 3)
	assert.Equal(t, 3, rejects[0].Line)
	assert.Contains(t, rejects[0].Reason, "client")
	assert.Contains(t, rejects[1].Reason, "fields")
	assert.Contains(t, rejects[2].Reason, "amount")
}

func TestSource_UnknownTypeForwardedAsUnknown(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"transfer,1,1,1.0\n"

	_, got := runSource(t, input)

	require.Len(t, got, 1)
	assert.Equal(t, engine.EventUnknown, got[0].Type)
}

func TestSource_EmptyRowsAndBlankLeadingLinesSkipped(t *testing.T) {
	input := "\n" +
		",,,\n" +
		"type,client,tx,amount\n" +
		"deposit,1,1,1.0\n"

	src, got := runSource(t, input)

	require.Len(t, got, 1)
	assert.Empty(t, src.Rejects())
}

func TestSource_MissingHeaderTreatedAsData(t *testing.T) {
	// No header row at all: the first row is a real event and is kept.
	input := "deposit,1,1,1.0\ndeposit,1,2,2.0\n"

	_, got := runSource(t, input)

	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].Tx)
}

func TestSource_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered channel and no consumer: the source would block forever
	// on send without the cancellation path.
	events := make(chan engine.Event)
	src := NewSource(strings.NewReader("type,client,tx,amount\ndeposit,1,1,1.0\n"), events, nil)

	err := src.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The channel must be closed even on early exit.
	_, open := <-events
	assert.False(t, open)
}

func TestWriteRejects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rejects.csv")

	rejects := []RejectedRow{
		{Line: 3, Reason: "bad client id \"x\"", Fields: []string{"deposit", "x", "2", "1.0"}},
		{Line: 5, Reason: "row has 2 fields, need at least 3", Fields: []string{"deposit", "1"}},
	}
	require.NoError(t, WriteRejects(path, rejects))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	records, err := rd.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"status", "type", "client", "tx", "amount"}, records[0])
	assert.Contains(t, records[1][0], "line 3")
	assert.Equal(t, "deposit", records[1][1])
	assert.Contains(t, records[2][0], "line 5")
}

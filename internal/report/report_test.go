package report

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payengine/internal/engine"
)

func account(client uint16, available, held string, locked bool) engine.Account {
	av := decimal.RequireFromString(available)
	hd := decimal.RequireFromString(held)
	return engine.Account{
		Client:    client,
		Available: av,
		Held:      hd,
		Total:     av.Add(hd),
		Locked:    locked,
	}
}

func TestWrite_SortedByClientWithFixedScale(t *testing.T) {
	accounts := []engine.Account{
		account(30, "1.5", "0", false),
		account(1, "3", "0", false),
		account(7, "0", "1.1111", true),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, accounts))

	want := "client,available,held,total,locked\n" +
		"1,3.0000,0.0000,3.0000,false\n" +
		"7,0.0000,1.1111,1.1111,true\n" +
		"30,1.5000,0.0000,1.5000,false\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_EmptyTableStillEmitsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestWrite_DoesNotReorderCallerSlice(t *testing.T) {
	accounts := []engine.Account{
		account(9, "1", "0", false),
		account(2, "1", "0", false),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, accounts))

	assert.Equal(t, uint16(9), accounts[0].Client)
	assert.Equal(t, uint16(2), accounts[1].Client)
}

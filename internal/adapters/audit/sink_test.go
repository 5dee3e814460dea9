package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/adapters/clock"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
)

func TestSink_AppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.RuntimeConfig{DataDir: dir, AuditFile: "audit.jsonl"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := NewSink(cfg, clock.NewFixed(1700000000), log)
	assert.Equal(t, filepath.Join(dir, "audit.jsonl"), sink.Path())

	ctx := context.Background()
	require.NoError(t, sink.Publish(ctx, []events.Event{
		events.UpdateRedemptionRateEvent{Redeemer: common.HexToAddress("0x01"), PreviousRate: 2, NewRate: 3},
	}))
	require.NoError(t, sink.Publish(ctx, []events.Event{
		events.ToggleRedeemerEvent{Redeemer: common.HexToAddress("0x01")},
	}))

	f, err := os.Open(sink.Path())
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		lines = append(lines, rec)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "UpdateRedemptionRate", lines[0]["event"])
	assert.Equal(t, float64(1700000000), lines[0]["time"])
	data := lines[0]["data"].(map[string]any)
	assert.Equal(t, float64(2), data["previousRate"])
	assert.Equal(t, float64(3), data["newRate"])
	assert.Equal(t, "ToggleRedeemer", lines[1]["event"])
}

func TestSink_NoFileConfigured(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := NewSink(&config.RuntimeConfig{}, clock.NewFixed(1), log)
	assert.Empty(t, sink.Path())
	assert.NoError(t, sink.Publish(context.Background(), []events.Event{events.MintToEvent{Amount: 1}}))
}

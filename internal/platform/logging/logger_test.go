package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RendersTradingLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "text")

	logger.Log(context.Background(), LevelTrading, "Buy wins", "votes", 3)

	assert.Contains(t, buf.String(), "level=TRADING")
	assert.Contains(t, buf.String(), "votes=3")
}

func TestNew_TradingLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "trading", "json")

	logger.Info("Counters have been reset")
	assert.Empty(t, buf.String())

	logger.Log(context.Background(), LevelTrading, "Sell wins")
	assert.Contains(t, buf.String(), `"level":"TRADING"`)
}

func TestNew_KeepsStandardLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "text")

	logger.Error("Feed fetch failed")

	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestParseLevel_Defaults(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
}

package service

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// backfill seeds the candle buffers over REST. Best effort: on any failure
// the buffer just fills from the stream over time.
func (c *Client) backfill(ctx context.Context, cfg *config.Config) {
	if cfg.Market.RESTURL == "" {
		logger.Debug("backfill disabled, no rest url")
		return
	}

	for _, inst := range models.Instruments() {
		candles, err := c.fetchHistory(ctx, cfg, inst)
		if err != nil {
			logger.Warn("backfill %s: %v", inst, err)
			continue
		}
		for _, candle := range candles {
			c.append(inst, candle, cfg.Market.HistoryBars)
		}
		logger.Info("backfill %s: %d bars", inst, len(candles))
	}
}

func (c *Client) fetchHistory(ctx context.Context, cfg *config.Config, inst models.Instrument) ([]models.Candle, error) {
	url := fmt.Sprintf("%s/candles?instId=%s&bar=%s&limit=%d",
		cfg.Market.RESTURL, inst, cfg.Market.Timeframe, cfg.Market.HistoryBars)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non-2xx: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var wrap struct {
		Code string     `json:"code"`
		Msg  string     `json:"msg"`
		Data [][]string `json:"data"`
	}
	if err := sonic.Unmarshal(body, &wrap); err != nil {
		return nil, err
	}
	if wrap.Code != "0" {
		return nil, fmt.Errorf("feed error: code=%s msg=%s", wrap.Code, wrap.Msg)
	}

	// rows arrive newest first
	out := make([]models.Candle, 0, len(wrap.Data))
	for i := len(wrap.Data) - 1; i >= 0; i-- {
		row := wrap.Data[i]
		if len(row) < 5 {
			continue
		}
		if candle, ok := parseRow(row); ok {
			out = append(out, candle)
		}
	}
	return out, nil
}

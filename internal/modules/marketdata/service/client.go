package service

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	"signal_bot/pkg/logger"
)

// Client keeps a rolling candle buffer per instrument, fed by one websocket
// stream with a batch subscription. It backfills history over REST on start
// so evaluators have a full lookback before the first closed bar arrives.
type Client struct {
	store  *config.Store
	health *health.State

	wsDialer *websocket.Dialer
	http     *http.Client

	mu      sync.RWMutex
	buffers map[models.Instrument][]models.Candle
}

func NewClient(store *config.Store, hs *health.State) *Client {
	return &Client{
		store:    store,
		health:   hs,
		wsDialer: &websocket.Dialer{},
		http:     &http.Client{Timeout: 10 * time.Second},
		buffers:  make(map[models.Instrument][]models.Candle),
	}
}

type candleFrame struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data [][]string `json:"data"`
}

// Start backfills history and then runs the stream until ctx is cancelled,
// reconnecting with a short backoff on every error.
func (c *Client) Start(ctx context.Context) {
	c.backfill(ctx, c.store.Get())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// a reload may have changed the feed URL or timeframe
		cfg := c.store.Get()
		channel := "candle" + cfg.Market.Timeframe
		args := make([]map[string]string, 0, len(models.Instruments()))
		for _, inst := range models.Instruments() {
			args = append(args, map[string]string{
				"channel": channel,
				"instId":  string(inst),
			})
		}

		logger.Info("ws connect %s, %d instruments", channel, len(args))
		conn, _, err := c.wsDialer.DialContext(ctx, cfg.Market.URL, nil)
		if err != nil {
			logger.Error("ws dial: %v", err)
			time.Sleep(time.Second)
			continue
		}

		sub := map[string]any{"op": "subscribe", "args": args}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Error("ws subscribe: %v", err)
			_ = conn.Close()
			continue
		}
		c.health.SetFeedUp(true)

		// keepalive, the feed drops quiet connections
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]string{"op": "ping"})
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Error("ws read: %v", err)
				break
			}

			var frame candleFrame
			if err := sonic.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Arg.Channel != channel || len(frame.Data) == 0 {
				continue
			}
			inst, err := models.ParseInstrument(frame.Arg.InstID)
			if err != nil {
				continue
			}

			for _, row := range frame.Data {
				if len(row) < 5 {
					continue
				}
				// the last element flags a closed candle
				if row[len(row)-1] != "1" {
					continue
				}
				if candle, ok := parseRow(row); ok {
					c.append(inst, candle, cfg.Market.HistoryBars)
				}
			}
		}

		c.health.SetFeedUp(false)
		close(stopPing)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}

// parseRow decodes one wire candle: [ts, o, h, l, c, vol, ..., confirm].
func parseRow(row []string) (models.Candle, bool) {
	tsMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, false
	}
	open, err1 := strconv.ParseFloat(row[1], 64)
	high, err2 := strconv.ParseFloat(row[2], 64)
	low, err3 := strconv.ParseFloat(row[3], 64)
	closep, err4 := strconv.ParseFloat(row[4], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || closep <= 0 {
		return models.Candle{}, false
	}
	var vol float64
	if len(row) >= 6 {
		vol, _ = strconv.ParseFloat(row[5], 64)
	}
	return models.Candle{
		Time:   time.UnixMilli(tsMs),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closep,
		Volume: vol,
	}, true
}

func (c *Client) append(inst models.Instrument, candle models.Candle, maxBars int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := c.buffers[inst]
	n := len(buf)
	switch {
	case n > 0 && candle.Time.Equal(buf[n-1].Time):
		// refreshed frame for the current bar
		buf[n-1] = candle
	case n > 0 && candle.Time.Before(buf[n-1].Time):
		// stale out-of-order frame, the buffer already holds fresher data
		return
	default:
		buf = append(buf, candle)
	}
	if maxBars > 0 && len(buf) > maxBars {
		buf = buf[len(buf)-maxBars:]
	}
	c.buffers[inst] = buf
}

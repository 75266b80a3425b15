package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	requestTimeout = 15 * time.Second
	klineLimit     = 100
)

// Intervals 每次分析并发抓取的时间周期
var Intervals = []string{"15m", "1h", "4h"}

// Candle 单根K线，只保留前六个字段：开盘时间、开、高、低、收、量。
// 下游不允许依赖第六个字段之后的内容。
type Candle [6]any

func (c *Candle) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields []any
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	if len(fields) < 6 {
		return fmt.Errorf("kline has %d fields, want at least 6", len(fields))
	}
	copy(c[:], fields[:6])
	return nil
}

func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal(c[:])
}

// Client K线数据客户端
type Client struct {
	logger *zap.Logger
	http   *resty.Client
	apiKey string
}

// NewClient 创建K线数据客户端，baseURL 为完整的 kline 接口地址
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("accept", "application/json").
		SetHeader("Authorization", "Basic "+apiKey)

	return &Client{
		logger: logger,
		http:   httpClient,
		apiKey: apiKey,
	}
}

// FetchKlines 并发抓取一个交易对在全部周期上的K线。
// 单个周期失败只记录日志并映射为空序列，由调用方判断"全部为空"与"部分为空"。
func (c *Client) FetchKlines(ctx context.Context, symbol string, assetType int) (map[string][]Candle, error) {
	combined := make(map[string][]Candle, len(Intervals))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, interval := range Intervals {
		wg.Add(1)
		go func(interval string) {
			defer wg.Done()

			candles, err := c.fetchInterval(ctx, symbol, interval, assetType)
			if err != nil {
				c.logger.Error("failed to fetch klines",
					zap.String("symbol", symbol),
					zap.String("interval", interval),
					zap.Int("asset_type", assetType),
					zap.Error(err))
				candles = []Candle{}
			}

			mu.Lock()
			combined[interval] = candles
			mu.Unlock()
		}(interval)
	}
	wg.Wait()

	return combined, nil
}

// fetchInterval 抓取单个周期的K线并截断为前六个字段
func (c *Client) fetchInterval(ctx context.Context, symbol, interval string, assetType int) ([]Candle, error) {
	if c.apiKey == "" {
		return nil, errors.New("kline api key not configured")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type":     fmt.Sprintf("%d", assetType),
			"symbol":   symbol,
			"interval": interval,
			"limit":    fmt.Sprintf("%d", klineLimit),
		}).
		Get("")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("kline api returned %s", resp.Status())
	}

	var candles []Candle
	if err := json.Unmarshal(resp.Body(), &candles); err != nil {
		return nil, fmt.Errorf("failed to decode klines: %w", err)
	}

	c.logger.Debug("klines fetched",
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Int("count", len(candles)))

	return candles, nil
}

// AllEmpty 判断是否所有周期都没有取到数据
func AllEmpty(data map[string][]Candle) bool {
	for _, candles := range data {
		if len(candles) > 0 {
			return false
		}
	}
	return true
}

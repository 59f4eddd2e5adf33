// comply/pkg/store/redis_publisher.go

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/report"
)

// ReportChannel is the pub/sub channel report events go out on.
const ReportChannel = "comply_reports"

const latestKeyPrefix = "comply:latest:"

// Summary is the published event payload: enough to react to a score change
// without fetching the full report file.
type Summary struct {
	ReportID   string  `json:"report_id"`
	Asset      string  `json:"asset"`
	OverallPct float64 `json:"overall_pct"`
	Timestamp  string  `json:"timestamp"`
}

type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr, password string, db int) (*RedisPublisher, error) {
	logging.Logger.Info().Str("addr", addr).Int("db", db).Msg("Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Logger.Info().Msg("Successfully connected to Redis")
	return &RedisPublisher{client: client}, nil
}

// PublishReport stores the latest summary for the asset and publishes the
// same payload as an event. The stored value is a cache of the last event,
// not a report archive.
func (p *RedisPublisher) PublishReport(ctx context.Context, r *report.Report) error {
	summary := Summary{
		ReportID:   r.ReportID,
		Asset:      r.Asset,
		OverallPct: r.OverallPct,
		Timestamp:  r.Timestamp,
	}
	data, err := json.Marshal(summary)
	if err != nil {
		logging.Logger.Error().Err(err).Str("asset", r.Asset).Msg("Failed to marshal report summary")
		return err
	}

	if err := p.client.Set(ctx, latestKeyPrefix+r.Asset, data, 0).Err(); err != nil {
		logging.Logger.Error().Err(err).Str("asset", r.Asset).Msg("Failed to set latest summary")
		return err
	}
	if err := p.client.Publish(ctx, ReportChannel, data).Err(); err != nil {
		logging.Logger.Error().Err(err).Str("asset", r.Asset).Msg("Failed to publish report event")
		return err
	}
	logging.Logger.Debug().Str("asset", r.Asset).Str("report_id", r.ReportID).Msg("Published report summary")
	return nil
}

// LatestScore returns the overall percentage from the last published
// summary for the asset, with found=false when none exists.
func (p *RedisPublisher) LatestScore(ctx context.Context, asset string) (float64, bool, error) {
	data, err := p.client.Get(ctx, latestKeyPrefix+asset).Result()
	if err == redis.Nil {
		logging.Logger.Debug().Str("asset", asset).Msg("No summary for asset")
		return 0, false, nil
	} else if err != nil {
		logging.Logger.Error().Err(err).Str("asset", asset).Msg("Failed to get latest summary")
		return 0, false, err
	}

	var summary Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		logging.Logger.Error().Err(err).Str("asset", asset).Str("data", data).Msg("Failed to unmarshal summary")
		return 0, false, err
	}
	return summary.OverallPct, true, nil
}

// Subscribe returns a subscription to report events, for integrations that
// tail score changes.
func (p *RedisPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	logging.Logger.Info().Str("channel", ReportChannel).Msg("Subscribing to report events")
	return p.client.Subscribe(ctx, ReportChannel)
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

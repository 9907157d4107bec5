// Package telemetry publishes episode outcomes to Redis so external
// dashboards can follow a training run live.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unixpickle/essentials"

	"github.com/deersim/deer-rl/learn"
	"github.com/deersim/deer-rl/types"
)

const (
	episodesKey = "deerrl:episodes"
	latestKey   = "deerrl:latest"
)

type episodeRecord struct {
	Episode int     `json:"episode"`
	Reward  float64 `json:"reward"`
	Length  int     `json:"length"`
	Time    int64   `json:"time"`
}

// Publisher writes episode records to a Redis instance.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(addr string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 1 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, essentials.AddCtx("connect telemetry", err)
	}
	return &Publisher{client: client}, nil
}

func (p *Publisher) PublishEpisode(ctx context.Context, episode int, s types.EpisodeSummary) error {
	record, err := json.Marshal(episodeRecord{
		Episode: episode,
		Reward:  s.Reward,
		Length:  s.Length,
		Time:    time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	if err := p.client.RPush(ctx, episodesKey, record).Err(); err != nil {
		return err
	}
	return p.client.HSet(ctx, latestKey,
		"episode", episode,
		"reward", s.Reward,
		"length", s.Length,
	).Err()
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// Callback feeds completed episodes from the step stream to a
// publisher. Publish failures are reported once and never stop
// training.
type Callback struct {
	publisher *Publisher

	episodes int
	warned   bool
}

var _ learn.Callback = &Callback{}

func NewCallback(publisher *Publisher) *Callback {
	return &Callback{publisher: publisher}
}

func (c *Callback) OnStep(sc *learn.StepContext) bool {
	summary, ok := sc.Result.Info.Episode()
	if !ok {
		return true
	}
	c.episodes++
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := c.publisher.PublishEpisode(ctx, c.episodes, *summary); err != nil && !c.warned {
		fmt.Printf("telemetry publish failed: %s\n", err.Error())
		c.warned = true
	}
	return true
}

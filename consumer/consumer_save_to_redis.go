package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldside/cricket-pipeline-workflow/processor"
)

// SaveToRedis caches the report in Redis for downstream dashboards: the full
// table JSON under a per-chart key, plus a sorted set per ranking chart so
// top-N reads are a single ZREVRANGE.
type SaveToRedis struct {
	client     *redis.Client
	processors []processor.Processor
	keyPrefix  string
	ttl        time.Duration
}

func NewSaveToRedis(config map[string]interface{}) (*SaveToRedis, error) {
	address, ok := config["redis_address"].(string)
	if !ok {
		return nil, fmt.Errorf("missing redis_address in config")
	}

	password, _ := config["redis_password"].(string)
	dbNum := 0
	if n, ok := config["redis_db"].(int); ok {
		dbNum = n
	} else if n, ok := config["redis_db"].(float64); ok {
		dbNum = int(n)
	}

	keyPrefix, _ := config["key_prefix"].(string)
	if keyPrefix == "" {
		keyPrefix = "cricket:report:"
	}

	var ttl time.Duration
	if seconds, ok := config["ttl_seconds"].(int); ok {
		ttl = time.Duration(seconds) * time.Second
	} else if seconds, ok := config["ttl_seconds"].(float64); ok {
		ttl = time.Duration(seconds) * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       dbNum,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &SaveToRedis{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}, nil
}

func (c *SaveToRedis) Subscribe(processor processor.Processor) {
	c.processors = append(c.processors, processor)
}

func (c *SaveToRedis) Process(ctx context.Context, msg processor.Message) error {
	table, err := processor.ExtractChartTable(msg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", table.Name, err)
	}

	pipe := c.client.Pipeline()

	tableKey := c.tableKey(table.Name, table.Filter.Season, table.Filter.Team)
	pipe.Set(ctx, tableKey, payload, c.ttl)

	// Ranking charts also get a sorted set for direct top-N queries.
	if table.Kind == processor.ChartBarHorizontal || table.Kind == processor.ChartPie {
		rankKey := c.rankKey(table.Name, table.Filter.Season, table.Filter.Team)
		pipe.Del(ctx, rankKey)
		members := make([]redis.Z, 0, len(table.Rows))
		for _, lv := range table.LabelValues() {
			members = append(members, redis.Z{Score: lv.Value, Member: lv.Label})
		}
		if len(members) > 0 {
			pipe.ZAdd(ctx, rankKey, members...)
			if c.ttl > 0 {
				pipe.Expire(ctx, rankKey, c.ttl)
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store table %s in Redis: %v", table.Name, err)
	}

	log.Printf("SaveToRedis: cached table %s under %s", table.Name, tableKey)
	return nil
}

func (c *SaveToRedis) tableKey(name, season, team string) string {
	return fmt.Sprintf("%stable:%s:%s:%s", c.keyPrefix, name, orAll(season), orAll(team))
}

func (c *SaveToRedis) rankKey(name, season, team string) string {
	return fmt.Sprintf("%srank:%s:%s:%s", c.keyPrefix, name, orAll(season), orAll(team))
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

func (c *SaveToRedis) Close() error {
	return c.client.Close()
}

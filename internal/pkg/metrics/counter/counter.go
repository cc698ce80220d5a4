package counter

import (
	"context"
	"sort"
	"strconv"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/cache"
)

const selectionsKey = "dashboard:counters:selections"

// Selection is how often a country was part of a rendered dashboard query.
type Selection struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// AddSelection increments the selection counter of every country in Redis.
// It does nothing when the cache is disabled.
func AddSelection(countries []string) error {
	rdb := cache.GetClient()
	if rdb == nil || len(countries) == 0 {
		return nil
	}

	ctx := context.Background()
	pipe := rdb.Pipeline()
	for _, country := range countries {
		pipe.HIncrBy(ctx, selectionsKey, country, 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// TopSelections returns the n most selected countries, ties broken by name.
// n <= 0 returns all of them.
func TopSelections(n int) ([]Selection, error) {
	rdb := cache.GetClient()
	if rdb == nil {
		return []Selection{}, nil
	}

	data, err := rdb.HGetAll(context.Background(), selectionsKey).Result()
	if err != nil {
		return nil, err
	}
	return rank(data, n), nil
}

func rank(data map[string]string, n int) []Selection {
	out := make([]Selection, 0, len(data))
	for country, v := range data {
		count, err := strconv.ParseInt(v, 10, 64)
		if err != nil || count <= 0 {
			continue
		}
		out = append(out, Selection{Country: country, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Reset drops all selection counters.
func Reset() error {
	rdb := cache.GetClient()
	if rdb == nil {
		return nil
	}
	return rdb.Del(context.Background(), selectionsKey).Err()
}

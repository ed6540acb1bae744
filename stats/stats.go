// Package stats counts events per hour over a sliding day.
package stats

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxCount = 50
	window          = 24 * time.Hour
)

// nolint
var now = time.Now

// Count is the number of occurrences of a key
type Count struct {
	Key   string
	Count int
}

// Aggregator counts keys in hourly buckets and sums the buckets of the last 24 hours
type Aggregator struct {
	Name string

	maxCount int
	lock     sync.Mutex
	// hour -> ( key -> count )
	buckets map[time.Time]map[string]int
}

// NewAggregator returns new aggregator with specified name
func NewAggregator(name string) *Aggregator {
	return NewAggregatorWithMax(name, defaultMaxCount)
}

// NewAggregatorWithMax returns new aggregator which reports at most maxCount keys
func NewAggregatorWithMax(name string, maxCount uint) *Aggregator {
	return &Aggregator{
		Name:     name,
		maxCount: int(maxCount),
		buckets:  make(map[time.Time]map[string]int),
	}
}

// Put counts an occurrence of key, empty keys are ignored
func (s *Aggregator) Put(key string) {
	key = strings.TrimSpace(key)
	if len(key) == 0 {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.prune()

	hour := currentHour()

	bucket, ok := s.buckets[hour]
	if !ok {
		bucket = make(map[string]int)
		s.buckets[hour] = bucket
	}

	bucket[key]++
}

// AggregateResult returns the most frequent keys of the last 24 hours
func (s *Aggregator) AggregateResult() map[string]int {
	top := s.Top()

	res := make(map[string]int, len(top))
	for _, c := range top {
		res[c.Key] = c.Count
	}

	return res
}

// Top returns the most frequent keys of the last 24 hours, highest count first
func (s *Aggregator) Top() []Count {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.prune()

	sum := make(map[string]int)

	for _, bucket := range s.buckets {
		for k, v := range bucket {
			sum[k] += v
		}
	}

	res := make([]Count, 0, len(sum))
	for k, v := range sum {
		res = append(res, Count{Key: k, Count: v})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}

		return res[i].Key < res[j].Key
	})

	if len(res) > s.maxCount {
		res = res[:s.maxCount]
	}

	return res
}

// prune drops the buckets which left the window, the caller holds the lock
func (s *Aggregator) prune() {
	oldest := currentHour().Add(-window)

	for hour := range s.buckets {
		if !hour.After(oldest) {
			delete(s.buckets, hour)
		}
	}
}

func currentHour() time.Time {
	return now().Truncate(time.Hour)
}

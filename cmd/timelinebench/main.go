package main

import (
    "context"
    "fmt"
    "math"
    "os"
    "sort"
    "strconv"
    "time"

    "github.com/google/uuid"

    "github.com/d60-Lab/feedgraph/config"
    "github.com/d60-Lab/feedgraph/internal/model"
    "github.com/d60-Lab/feedgraph/internal/repository"
    "github.com/d60-Lab/feedgraph/pkg/database"
    "github.com/d60-Lab/feedgraph/pkg/timekey"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
    if len(vs) == 0 { return 0 }
    xs := append([]time.Duration(nil), vs...)
    sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
    k := int(math.Ceil(p*float64(len(xs)))) - 1
    if k < 0 { k = 0 }
    if k >= len(xs) { k = len(xs)-1 }
    return xs[k]
}

func envInt(key string, def int) int {
    if s := os.Getenv(key); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { return v } }
    return def
}

// 对比单表与分片时间线的翻页延迟
func main() {
    cfg := must(config.Load())
    db := must(database.InitDB(cfg))
    if err := database.Migrate(db); err != nil { panic(err) }

    USERS := envInt("USERS", 100)
    ENTRIES := envInt("ENTRIES", 500) // per user
    PAGE := envInt("PAGE", 50)
    SHARDS := envInt("SHARDS", 16)

    single := repository.NewTimelineRepository(db)
    sharded := must(repository.NewShardedTimelineRepository(db, SHARDS))
    if err := sharded.InitSchema(); err != nil { panic(err) }

    ctx := context.Background()
    userIDs := make([]string, USERS)
    for i := range userIDs { userIDs[i] = uuid.NewString() }

    seed := func(repo repository.TimelineRepository) {
        for _, uid := range userIDs {
            for j := 0; j < ENTRIES; j++ {
                e := &model.TimelineEntry{
                    UserID:     uid,
                    ItemID:     uuid.NewString(),
                    ItemType:   model.ItemPost,
                    Score:      timekey.Next(),
                    Visibility: model.VisibilityPublic,
                }
                if err := repo.Append(ctx, e); err != nil { panic(err) }
            }
        }
    }

    bench := func(name string, repo repository.TimelineRepository) {
        seed(repo)
        var lat []time.Duration
        for _, uid := range userIDs {
            before := int64(0)
            for {
                st := time.Now()
                page, err := repo.Page(ctx, uid, before, PAGE)
                if err != nil { panic(err) }
                lat = append(lat, time.Since(st))
                if len(page) < PAGE { break }
                before = page[len(page)-1].Score
            }
        }
        var sum time.Duration
        for _, d := range lat { sum += d }
        fmt.Printf("%-8s pages=%d avg=%v p50=%v p95=%v p99=%v\n",
            name, len(lat), sum/time.Duration(len(lat)), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
    }

    fmt.Printf("users=%d entries=%d page=%d shards=%d\n", USERS, ENTRIES, PAGE, SHARDS)
    bench("single", single)
    bench("sharded", sharded)
}

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
    "github.com/d60-Lab/feedgraph/internal/service"
    "github.com/d60-Lab/feedgraph/pkg/database"
    "github.com/d60-Lab/feedgraph/pkg/logger"
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

// 压测写扩散：不同粉丝规模下一条 post 的 FanOut 延迟
func main() {
    cfg := must(config.Load())
    _ = logger.Init("warn", "console")
    db := must(database.InitDB(cfg))
    if err := database.Migrate(db); err != nil { panic(err) }

    userRepo := repository.NewUserRepository(db)
    friendRepo := repository.NewFriendRepository(db)
    followRepo := repository.NewFollowRepository(db)
    timelineRepo := repository.NewTimelineRepository(db)
    graph := service.NewGraph(friendRepo, followRepo)
    engine := service.NewFanoutEngine(timelineRepo, followRepo, userRepo, graph,
        cfg.Fanout.Workers, cfg.Fanout.BatchSize)

    ctx := context.Background()
    FANS := envInt("FANS", 1000)
    REPEAT := envInt("REPEAT", 20)

    author := &model.User{Username: "bench-author-" + uuid.NewString()[:8]}
    if err := userRepo.Create(ctx, author); err != nil { panic(err) }
    for i := 0; i < FANS; i++ {
        fan := &model.User{Username: fmt.Sprintf("bench-fan-%s-%05d", author.ID[:8], i)}
        if err := userRepo.Create(ctx, fan); err != nil { panic(err) }
        must(followRepo.Create(ctx, author.ID, fan.ID, model.VisibilityPublic))
    }

    var lat []time.Duration
    for i := 0; i < REPEAT; i++ {
        itemID := uuid.NewString()
        st := time.Now()
        if err := engine.FanOut(ctx, author.ID, model.ItemPost, itemID, model.VisibilityPublic, "bench"); err != nil { panic(err) }
        lat = append(lat, time.Since(st))
        if err := engine.RemoveItemEverywhere(ctx, itemID); err != nil { panic(err) }
    }

    var sum time.Duration
    for _, d := range lat { sum += d }
    fmt.Printf("fans=%d workers=%d batch=%d repeat=%d\n", FANS, cfg.Fanout.Workers, cfg.Fanout.BatchSize, REPEAT)
    fmt.Printf("avg=%v p50=%v p95=%v p99=%v\n", sum/time.Duration(len(lat)), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
}

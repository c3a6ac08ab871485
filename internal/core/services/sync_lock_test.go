package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/custodia-labs/sercha-datasync/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driven/mocks"
)

func TestRun_RenewsLockDuringLongRun(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	f := newOrchestratorFixture(t, func(c *SyncOrchestratorConfig) {
		c.Lock = lock
		c.LockTTL = 60 * time.Millisecond
	})
	f.registry.Enable(domain.SourceTypeBenchmark)

	var heldAtEnd bool
	out := f.orchestrator.Run(context.Background(), domain.SourceTypeBenchmark, domain.SyncModeFull,
		func(ctx context.Context, req domain.SyncRequest) (*domain.SyncOutcome, error) {
			time.Sleep(200 * time.Millisecond)
			heldAtEnd = lock.IsHeld("sync:benchmark")
			return domain.NewSuccessOutcome(), nil
		})

	require.True(t, out.OK)
	assert.True(t, heldAtEnd, "lock must outlive its TTL while the handler runs")
	assert.GreaterOrEqual(t, lock.ExtendCount("sync:benchmark"), 2)

	// Renewal stops once the lock is released
	extends := lock.ExtendCount("sync:benchmark")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, extends, lock.ExtendCount("sync:benchmark"))
	assert.Equal(t, 1, lock.Released["sync:benchmark"])
}

func TestRun_RedisLockStaysExclusivePastTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	newClient := func() *goredis.Client {
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		return client
	}

	registry := NewSyncConfigRegistry(nil)
	registry.Enable(domain.SourceTypeBenchmark)

	const ttl = 90 * time.Millisecond
	newOrchestrator := func() *SyncOrchestrator {
		return NewSyncOrchestrator(SyncOrchestratorConfig{
			Registry:   registry,
			AuditStore: mocks.NewMockSyncAuditStore(),
			Lock:       redisadapter.NewLock(newClient()),
			LockTTL:    ttl,
		})
	}
	first, second := newOrchestrator(), newOrchestrator()

	var competing *domain.SyncOutcome
	out := first.Run(context.Background(), domain.SourceTypeBenchmark, domain.SyncModeFull,
		func(ctx context.Context, req domain.SyncRequest) (*domain.SyncOutcome, error) {
			// Push redis time well past the TTL; renewals in between keep the key alive
			for i := 0; i < 4; i++ {
				mr.FastForward(60 * time.Millisecond)
				time.Sleep(100 * time.Millisecond)
			}
			competing = second.Run(ctx, domain.SourceTypeBenchmark, domain.SyncModeFull, succeedWith(1, 0))
			return domain.NewSuccessOutcome(), nil
		})

	require.True(t, out.OK)
	require.NotNil(t, competing)
	assert.Equal(t, domain.FailureInProgress, competing.Kind)

	// Released after the first run, so the second can now proceed
	after := second.Run(context.Background(), domain.SourceTypeBenchmark, domain.SyncModeFull, succeedWith(1, 0))
	assert.True(t, after.OK)
}

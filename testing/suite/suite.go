// Package suite runs integration tests against a throwaway redis container.
package suite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-local/internal/repository"
)

const (
	containerLifetime = 120 // seconds
	startupTimeout    = 120 * time.Second

	redisImage = "redis"
	redisTag   = "alpine"
	redisPort  = "6379/tcp"
)

type Suite struct {
	*testing.T

	// Storage is the raw client, for checks the repository does not expose.
	Storage *redis.Client
	// Games stores games in Storage with the ttl passed to New.
	Games repository.GameRepository
}

// New starts redis for t and returns a game repository on top of it.
// The test is skipped in -short mode or when no docker daemon answers.
func New(t *testing.T, ttl time.Duration) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("redis integration test skipped in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	t.Cleanup(cancel)

	client := startRedis(ctx, t)

	return ctx, &Suite{
		T:       t,
		Storage: client,
		Games:   repository.NewGameRepository(client, ttl),
	}
}

func startRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker pool unavailable: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker daemon unreachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(host *docker.HostConfig) {
		host.AutoRemove = true
		host.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis: %v", err)
		}
	})

	// hard kill in case cleanup never runs
	_ = resource.Expire(containerLifetime)

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort(redisPort)})
	t.Cleanup(func() { _ = client.Close() })

	pool.MaxWait = startupTimeout
	if err = pool.Retry(func() error { return client.Ping(ctx).Err() }); err != nil {
		t.Fatalf("redis never became ready: %v", err)
	}

	return client
}

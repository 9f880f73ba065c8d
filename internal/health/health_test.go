package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestCheck(t *testing.T) {
	ok := NewChecker(pingFunc(func(context.Context) error { return nil })).Check(context.Background())
	assert.Equal(t, StatusHealthy, ok.Status)
	assert.Equal(t, StatusHealthy, ok.Database.Status)
	assert.Positive(t, ok.Goroutines)
	assert.Positive(t, ok.Memory.SysMB)

	down := NewChecker(pingFunc(func(context.Context) error { return errors.New("connection refused") })).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, down.Status)
	assert.Equal(t, "connection refused", down.Database.Error)
}

func TestCheckHonoursTimeout(t *testing.T) {
	c := NewChecker(pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	c.timeout = 10 * time.Millisecond
	got := c.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, got.Status)
	assert.Contains(t, got.Database.Error, "deadline")
}

package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fakeThrottle(interval time.Duration) (*Throttle, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	th := NewThrottle(interval)
	th.now = func() time.Time { return now }
	return th, &now
}

func TestThrottle_Allow(t *testing.T) {
	th, now := fakeThrottle(30 * time.Second)

	assert.True(t, th.Allow("status"))
	assert.False(t, th.Allow("status"))
	assert.True(t, th.Allow("other"))

	*now = now.Add(29 * time.Second)
	assert.False(t, th.Allow("status"))

	*now = now.Add(time.Second)
	assert.True(t, th.Allow("status"))
}

func TestThrottle_Info(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core))
	th, now := fakeThrottle(time.Minute)

	for i := 0; i < 5; i++ {
		th.Info(l, "status", "race status", "tick", i)
		*now = now.Add(10 * time.Second)
	}
	assert.Equal(t, 1, logs.Len())

	*now = now.Add(time.Minute)
	th.Info(l, "status", "race status")
	assert.Equal(t, 2, logs.Len())
}

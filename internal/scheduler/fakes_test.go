package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type sent struct {
	to   int64
	text string
}

type fakeTransport struct {
	mu   sync.Mutex
	sent []sent
	fail map[int64]bool
}

func (f *fakeTransport) SendMessage(_ context.Context, id int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[id] {
		return errors.New("chat not found")
	}
	f.sent = append(f.sent, sent{to: id, text: text})
	return nil
}

func (f *fakeTransport) to(id int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.to == id {
			out = append(out, s.text)
		}
	}
	return out
}

type fakeProvider struct {
	snap models.Snapshot
	err  error
}

func (f *fakeProvider) LoadSnapshot(context.Context) (models.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func unavailable() error {
	return errors.Join(apperrors.ErrDataUnavailable, errors.New("file missing"))
}

func raceSnapshot() models.Snapshot {
	return models.Snapshot{
		{Identifier: "alice.near", TeamName: "Alpha", StartPosition: 1, Laps: map[int]int{1: 2, 2: 2}},
		{Identifier: "bob.near", TeamName: "Bravo", StartPosition: 2, Laps: map[int]int{1: 1, 2: 3}},
		{TeamName: "Charlie", StartPosition: 3, Laps: map[int]int{1: 3, 2: 1}},
	}
}

// slowTransport widens the window between gate check and mark.
type slowTransport struct {
	fakeTransport
	delay time.Duration
}

func (s *slowTransport) SendMessage(ctx context.Context, id int64, text string) error {
	time.Sleep(s.delay)
	return s.fakeTransport.SendMessage(ctx, id, text)
}

type panicTransport struct {
	fakeTransport
	panicFor int64
}

func (p *panicTransport) SendMessage(ctx context.Context, id int64, text string) error {
	if id == p.panicFor {
		panic("nil chat")
	}
	return p.fakeTransport.SendMessage(ctx, id, text)
}

// flakyProvider fails while down is set.
type flakyProvider struct {
	mu   sync.Mutex
	down bool
	snap models.Snapshot
}

func (f *flakyProvider) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *flakyProvider) LoadSnapshot(context.Context) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, unavailable()
	}
	return f.snap, nil
}

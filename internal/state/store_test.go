package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenToSleep/race-info-bot/internal/models"
)

func TestChannel_LazyDefaults(t *testing.T) {
	s := NewStore()
	c := s.Channel(-100)
	assert.False(t, c.StartPublished)
	assert.False(t, c.FinalPublished)
	assert.Empty(t, c.PublishedLaps)

	assert.False(t, s.IsPublished(42, models.LapMilestone(3)))
}

func TestMarkPublished_Idempotent(t *testing.T) {
	s := NewStore()
	for _, m := range []models.Milestone{models.StartMilestone(), models.LapMilestone(1), models.LapMilestone(12), models.FinalMilestone()} {
		assert.False(t, s.IsPublished(1, m), m.String())
		assert.True(t, s.MarkPublished(1, m), m.String())
		before := s.Channel(1)

		assert.False(t, s.MarkPublished(1, m), m.String())
		assert.True(t, s.IsPublished(1, m), m.String())
		assert.Equal(t, before, s.Channel(1), m.String())
	}
}

func TestMarkPublished_LapsIndependent(t *testing.T) {
	s := NewStore()
	s.MarkPublished(7, models.LapMilestone(2))
	assert.True(t, s.IsPublished(7, models.LapMilestone(2)))
	assert.False(t, s.IsPublished(7, models.LapMilestone(1)))
	assert.False(t, s.IsPublished(7, models.LapMilestone(3)))
	assert.False(t, s.IsPublished(7, models.StartMilestone()))
	assert.False(t, s.IsPublished(8, models.LapMilestone(2)))
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.MarkPublished(7, models.StartMilestone())
	s.MarkPublished(7, models.LapMilestone(4))
	s.MarkPublished(7, models.FinalMilestone())

	s.Reset(7)
	c := s.Channel(7)
	assert.False(t, c.StartPublished)
	assert.False(t, c.FinalPublished)
	assert.Empty(t, c.PublishedLaps)
	assert.Equal(t, []int64{7}, s.Audiences())
}

func TestChannel_ReturnsCopy(t *testing.T) {
	s := NewStore()
	c := s.Channel(1)
	c.PublishedLaps[3] = true
	assert.False(t, s.IsPublished(1, models.LapMilestone(3)))
}

func TestAudiences(t *testing.T) {
	s := NewStore()
	assert.True(t, s.AddAudience(5))
	assert.False(t, s.AddAudience(5))
	s.AddAudience(-100)
	s.AddAudience(3)
	assert.Equal(t, []int64{-100, 3, 5}, s.Audiences())

	s.RemoveAudience(3)
	assert.Equal(t, []int64{-100, 5}, s.Audiences())
}

func TestUser_Defaults(t *testing.T) {
	s := NewStore()
	assert.False(t, s.KnownUser(9))
	u := s.User(9)
	assert.True(t, s.KnownUser(9))
	assert.Equal(t, models.DefaultLanguage, u.Language)
	assert.Nil(t, u.Tracked)
	assert.Zero(t, u.LastSentLap)
	assert.False(t, u.IsTracking)
}

func TestUser_Tracking(t *testing.T) {
	s := NewStore()
	e := models.TrackedEntity{Kind: models.EntityTeam, Value: "Red Team"}
	s.SetLanguage(9, models.LanguageUK)
	s.StartTracking(9, e, 3)

	u := s.User(9)
	require.NotNil(t, u.Tracked)
	assert.Equal(t, e, *u.Tracked)
	assert.Equal(t, models.LanguageUK, u.Language)
	assert.Equal(t, 3, u.LastSentLap)
	assert.True(t, u.IsTracking)
	assert.Equal(t, []int64{9}, s.TrackingUsers())

	u.Tracked.Value = "changed"
	assert.Equal(t, "Red Team", s.User(9).Tracked.Value)

	assert.True(t, s.StopTracking(9))
	assert.False(t, s.StopTracking(9))
	assert.Empty(t, s.TrackingUsers())
}

func TestAdvanceLastSentLap_Monotonic(t *testing.T) {
	s := NewStore()
	assert.True(t, s.AdvanceLastSentLap(1, 2))
	assert.False(t, s.AdvanceLastSentLap(1, 2))
	assert.False(t, s.AdvanceLastSentLap(1, 1))
	assert.True(t, s.AdvanceLastSentLap(1, 5))
	assert.Equal(t, 5, s.User(1).LastSentLap)

	s.StartTracking(1, models.TrackedEntity{Kind: models.EntityTeam, Value: "x"}, 2)
	assert.Equal(t, 5, s.User(1).LastSentLap)
}

func TestResetUser(t *testing.T) {
	s := NewStore()
	s.SetLanguage(1, models.LanguageEN)
	s.ResetUser(1)
	assert.False(t, s.KnownUser(1))
	assert.Equal(t, models.DefaultLanguage, s.User(1).Language)
}

func TestStore_ConcurrentMarking(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	changed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.MarkPublished(1, models.FinalMilestone()) {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, changed)
}

// Package state keeps per-audience publication and tracking state in memory.
package state

import (
	"sort"
	"sync"

	"github.com/whenToSleep/race-info-bot/internal/models"
)

// ChannelState records which milestones a chat has already received.
// Transitions only go from unpublished to published, except through Reset.
type ChannelState struct {
	StartPublished bool
	PublishedLaps  map[int]bool
	FinalPublished bool
}

func newChannelState() *ChannelState {
	return &ChannelState{PublishedLaps: map[int]bool{}}
}

func (c *ChannelState) published(m models.Milestone) bool {
	switch m.Kind {
	case models.MilestoneStart:
		return c.StartPublished
	case models.MilestoneFinal:
		return c.FinalPublished
	default:
		return c.PublishedLaps[m.Lap]
	}
}

func (c *ChannelState) mark(m models.Milestone) {
	switch m.Kind {
	case models.MilestoneStart:
		c.StartPublished = true
	case models.MilestoneFinal:
		c.FinalPublished = true
	default:
		c.PublishedLaps[m.Lap] = true
	}
}

func (c *ChannelState) clone() ChannelState {
	out := ChannelState{
		StartPublished: c.StartPublished,
		FinalPublished: c.FinalPublished,
		PublishedLaps:  make(map[int]bool, len(c.PublishedLaps)),
	}
	for k, v := range c.PublishedLaps {
		out.PublishedLaps[k] = v
	}
	return out
}

// UserState is the private-chat state of one end user.
type UserState struct {
	Language    models.Language
	Tracked     *models.TrackedEntity
	LastSentLap int
	IsTracking  bool
}

func newUserState() *UserState {
	return &UserState{Language: models.DefaultLanguage}
}

// Store is the single in-memory state table shared by the Telegram handlers
// and the scheduler. Unknown ids are created with defaults on first access.
type Store struct {
	mu       sync.Mutex
	channels map[int64]*ChannelState
	users    map[int64]*UserState
}

func NewStore() *Store {
	return &Store{
		channels: map[int64]*ChannelState{},
		users:    map[int64]*UserState{},
	}
}

func (s *Store) channel(id int64) *ChannelState {
	c, ok := s.channels[id]
	if !ok {
		c = newChannelState()
		s.channels[id] = c
	}
	return c
}

func (s *Store) user(id int64) *UserState {
	u, ok := s.users[id]
	if !ok {
		u = newUserState()
		s.users[id] = u
	}
	return u
}

// ---------- Channels ----------

// AddAudience registers a chat for leaderboard publication. It reports
// whether the chat was new.
func (s *Store) AddAudience(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.channels[id]
	s.channel(id)
	return !known
}

func (s *Store) RemoveAudience(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
}

// Audiences returns the registered chat ids in ascending order.
func (s *Store) Audiences() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) Channel(id int64) ChannelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel(id).clone()
}

func (s *Store) IsPublished(id int64, m models.Milestone) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel(id).published(m)
}

// MarkPublished records that m was delivered to id. Marking twice is a no-op;
// the result reports whether this call changed anything.
func (s *Store) MarkPublished(id int64, m models.Milestone) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.channel(id)
	if c.published(m) {
		return false
	}
	c.mark(m)
	return true
}

// Reset returns every milestone of id to unpublished.
func (s *Store) Reset(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[id] = newChannelState()
}

// ---------- Users ----------

func (s *Store) User(id int64) UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *s.user(id)
	if u.Tracked != nil {
		e := *u.Tracked
		u.Tracked = &e
	}
	return u
}

// KnownUser reports whether id has been seen, without creating it.
func (s *Store) KnownUser(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok
}

func (s *Store) SetLanguage(id int64, lang models.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(id).Language = lang
}

// StartTracking points the user at an entity. The high-water mark is kept at
// or above alreadyCompleted so laps finished before tracking began are not sent.
func (s *Store) StartTracking(id int64, e models.TrackedEntity, alreadyCompleted int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(id)
	u.Tracked = &e
	u.IsTracking = true
	if alreadyCompleted > u.LastSentLap {
		u.LastSentLap = alreadyCompleted
	}
}

// StopTracking reports whether tracking was active.
func (s *Store) StopTracking(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(id)
	was := u.IsTracking
	u.IsTracking = false
	return was
}

// AdvanceLastSentLap raises the user's last sent lap to lap. It never lowers
// it and reports whether the mark moved.
func (s *Store) AdvanceLastSentLap(id int64, lap int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(id)
	if lap <= u.LastSentLap {
		return false
	}
	u.LastSentLap = lap
	return true
}

// TrackingUsers returns the ids of users with active tracking, ascending.
func (s *Store) TrackingUsers() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []int64{}
	for id, u := range s.users {
		if u.IsTracking && u.Tracked != nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) ResetUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

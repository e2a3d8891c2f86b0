package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/whenToSleep/race-info-bot/internal/i18n"
	"github.com/whenToSleep/race-info-bot/internal/identity"
	"github.com/whenToSleep/race-info-bot/internal/leaderboard"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/models"
	"github.com/whenToSleep/race-info-bot/internal/source"
	"github.com/whenToSleep/race-info-bot/internal/state"
)

// Transport delivers rendered text to a chat or user.
type Transport interface {
	SendMessage(ctx context.Context, audienceID int64, text string) error
}

// Publisher sends milestone leaderboards to audiences through the
// publication gate in the store.
type Publisher struct {
	store     *state.Store
	source    source.Provider
	transport Transport
	catalog   *i18n.Catalog
	totalLaps int
	radius    int
	log       logger.Logger

	// held across gate check, send and mark so concurrent callers
	// (scheduler tick, chat catch-up) cannot both deliver a milestone
	mu sync.Mutex
}

type PublisherConfig struct {
	TotalLaps    int
	WindowRadius int
}

func NewPublisher(store *state.Store, src source.Provider, t Transport, cat *i18n.Catalog, cfg PublisherConfig, log logger.Logger) *Publisher {
	return &Publisher{
		store:     store,
		source:    src,
		transport: t,
		catalog:   cat,
		totalLaps: cfg.TotalLaps,
		radius:    cfg.WindowRadius,
		log:       log,
	}
}

// Report counts the outcome of one publication batch.
type Report struct {
	Sent    int
	Skipped int
	Failed  int
}

// Publish sends m to every registered audience that has not received it yet.
// An audience is marked only after its send succeeded; one failed audience
// never stops the batch. The error is non-nil only when no board could be built.
func (p *Publisher) Publish(ctx context.Context, m models.Milestone) (Report, error) {
	return p.PublishTo(ctx, m, p.store.Audiences())
}

func (p *Publisher) PublishTo(ctx context.Context, m models.Milestone, audiences []int64) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rep Report
	due := make([]int64, 0, len(audiences))
	for _, id := range audiences {
		if p.store.IsPublished(id, m) {
			rep.Skipped++
			continue
		}
		due = append(due, id)
	}
	if len(due) == 0 {
		return rep, nil
	}

	board, err := p.board(ctx, m)
	if err != nil {
		return rep, err
	}

	texts := map[models.Language]string{}
	for _, id := range due {
		lang := p.language(id)
		text, ok := texts[lang]
		if !ok {
			text = leaderboard.Render(board, lang, p.catalog)
			texts[lang] = text
		}
		if err := p.send(ctx, id, text); err != nil {
			rep.Failed++
			p.log.Error("publish leaderboard", "audience", id, "milestone", m.String(), "error", err)
			continue
		}
		p.store.MarkPublished(id, m)
		rep.Sent++
	}
	p.log.Info("leaderboard published", "milestone", m.String(), "sent", rep.Sent, "failed", rep.Failed, "skipped", rep.Skipped)
	return rep, nil
}

// SendWindows sends each tracking user the rows around their entity for a
// completed lap. Users who already got this lap, or whose entity is not on
// the board, are skipped.
func (p *Publisher) SendWindows(ctx context.Context, lap int) (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rep Report
	users := p.store.TrackingUsers()
	if len(users) == 0 {
		return rep, nil
	}
	m := models.LapMilestone(lap)
	snap, err := p.source.LoadSnapshot(ctx)
	if err != nil {
		return rep, err
	}
	board, err := leaderboard.Build(snap, m, p.totalLaps)
	if err != nil {
		return rep, err
	}

	for _, id := range users {
		u := p.store.User(id)
		if u.Tracked == nil || u.LastSentLap >= lap {
			rep.Skipped++
			continue
		}
		participant, ok := identity.Lookup(snap, *u.Tracked)
		if !ok {
			rep.Skipped++
			p.log.Debug("tracked entity not in snapshot", "user", id, "entity", u.Tracked.Value)
			continue
		}
		text, ok := leaderboard.RenderWindow(board, board.IndexOf(participant), p.radius, u.Language, p.catalog)
		if !ok {
			rep.Skipped++
			continue
		}
		if err := p.send(ctx, id, text); err != nil {
			rep.Failed++
			p.log.Error("send personal standings", "user", id, "lap", lap, "error", err)
			continue
		}
		p.store.AdvanceLastSentLap(id, lap)
		rep.Sent++
	}
	return rep, nil
}

// send turns a transport panic into an error for that one recipient.
func (p *Publisher) send(ctx context.Context, id int64, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return p.transport.SendMessage(ctx, id, text)
}

func (p *Publisher) board(ctx context.Context, m models.Milestone) (leaderboard.Board, error) {
	snap, err := p.source.LoadSnapshot(ctx)
	if err != nil {
		return leaderboard.Board{}, err
	}
	board, err := leaderboard.Build(snap, m, p.totalLaps)
	if err != nil {
		return leaderboard.Board{}, fmt.Errorf("build %s leaderboard: %w", m, err)
	}
	return board, nil
}

// language picks the stored language of a user chat, or the default for
// groups and channels.
func (p *Publisher) language(id int64) models.Language {
	if p.store.KnownUser(id) {
		return p.store.User(id).Language
	}
	return models.DefaultLanguage
}

package ratingservice

import (
	"context"
	"slices"
	"sync"
	"time"

	ratingdomain "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/domain"
	ratingdb "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Rating Repo
// ------------------------

// FakeRatingRepo keeps rows in memory so a whole submit, confirm, finalize
// flow can run without a database. Any Func field overrides the store.
type FakeRatingRepo struct {
	mu    sync.Mutex
	trace []string

	ratings       map[uuid.UUID]*ratingdb.PlayerRating
	matches       map[uuid.UUID]*ratingdb.Match
	participants  map[uuid.UUID][]*ratingdb.Participant
	confirmations map[uuid.UUID][]*ratingdb.Confirmation

	GetRatingsFunc          func(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]*ratingdb.PlayerRating, error)
	GetRatingsForUpdateFunc func(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]*ratingdb.PlayerRating, error)
	EnsurePlayersFunc       func(ctx context.Context, db bun.IDB, ids []uuid.UUID) error
	UpdateRatingsFunc       func(ctx context.Context, db bun.IDB, updates []ratingdb.RatingUpdate) error
	CreateMatchFunc         func(ctx context.Context, db bun.IDB, match *ratingdb.Match, parts []*ratingdb.Participant) error
	GetMatchFunc            func(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*ratingdb.Match, error)
	FinalizeMatchFunc       func(ctx context.Context, db bun.IDB, rec ratingdb.FinalizeRecord) error
	GetRatingHistoryFunc    func(ctx context.Context, db bun.IDB, playerID uuid.UUID, since time.Time) ([]ratingdb.HistoryEntry, error)
	UpsertConfirmationFunc  func(ctx context.Context, db bun.IDB, row *ratingdb.Confirmation) error
}

func NewFakeRatingRepo() *FakeRatingRepo {
	return &FakeRatingRepo{
		trace:         []string{},
		ratings:       map[uuid.UUID]*ratingdb.PlayerRating{},
		matches:       map[uuid.UUID]*ratingdb.Match{},
		participants:  map[uuid.UUID][]*ratingdb.Participant{},
		confirmations: map[uuid.UUID][]*ratingdb.Confirmation{},
	}
}

func (f *FakeRatingRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// SeedRating stores a player at rating.
func (f *FakeRatingRepo) SeedRating(id uuid.UUID, rating float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[id] = &ratingdb.PlayerRating{PlayerID: id, Rating: rating}
}

// Rating returns the stored rating of id, or the default.
func (f *FakeRatingRepo) Rating(id uuid.UUID) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.ratings[id]; ok {
		return r.Rating
	}
	return ratingdomain.DefaultRating
}

// MatchesPlayed returns the stored match count of id.
func (f *FakeRatingRepo) MatchesPlayed(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.ratings[id]; ok {
		return r.MatchesPlayed
	}
	return 0
}

// StoredMatch returns a copy of the stored match row.
func (f *FakeRatingRepo) StoredMatch(id uuid.UUID) *ratingdb.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

// --- Repository Interface Implementation ---

func (f *FakeRatingRepo) GetRatings(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]*ratingdb.PlayerRating, error) {
	f.record("GetRatings")
	if f.GetRatingsFunc != nil {
		return f.GetRatingsFunc(ctx, db, ids)
	}
	return f.copyRatings(ids), nil
}

func (f *FakeRatingRepo) GetRatingsForUpdate(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]*ratingdb.PlayerRating, error) {
	f.record("GetRatingsForUpdate")
	if f.GetRatingsForUpdateFunc != nil {
		return f.GetRatingsForUpdateFunc(ctx, db, ids)
	}
	return f.copyRatings(ids), nil
}

func (f *FakeRatingRepo) copyRatings(ids []uuid.UUID) map[uuid.UUID]*ratingdb.PlayerRating {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]*ratingdb.PlayerRating, len(ids))
	for _, id := range ids {
		if r, ok := f.ratings[id]; ok {
			cp := *r
			out[id] = &cp
		}
	}
	return out
}

func (f *FakeRatingRepo) EnsurePlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) error {
	f.record("EnsurePlayers")
	if f.EnsurePlayersFunc != nil {
		return f.EnsurePlayersFunc(ctx, db, ids)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if _, ok := f.ratings[id]; !ok {
			f.ratings[id] = &ratingdb.PlayerRating{PlayerID: id, Rating: ratingdomain.DefaultRating}
		}
	}
	return nil
}

func (f *FakeRatingRepo) UpdateRatings(ctx context.Context, db bun.IDB, updates []ratingdb.RatingUpdate) error {
	f.record("UpdateRatings")
	if f.UpdateRatingsFunc != nil {
		return f.UpdateRatingsFunc(ctx, db, updates)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		r, ok := f.ratings[u.PlayerID]
		if !ok {
			return ratingdb.ErrNoRowsAffected
		}
		r.Rating = u.Rating
		r.MatchesPlayed++
	}
	return nil
}

func (f *FakeRatingRepo) CreateMatch(ctx context.Context, db bun.IDB, match *ratingdb.Match, parts []*ratingdb.Participant) error {
	f.record("CreateMatch")
	if f.CreateMatchFunc != nil {
		return f.CreateMatchFunc(ctx, db, match, parts)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *match
	f.matches[match.ID] = &cp
	for _, p := range parts {
		pc := *p
		f.participants[match.ID] = append(f.participants[match.ID], &pc)
	}
	return nil
}

func (f *FakeRatingRepo) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*ratingdb.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, matchID)
	}
	return f.lookupMatch(matchID)
}

func (f *FakeRatingRepo) GetMatchForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*ratingdb.Match, error) {
	f.record("GetMatchForUpdate")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, matchID)
	}
	return f.lookupMatch(matchID)
}

func (f *FakeRatingRepo) lookupMatch(matchID uuid.UUID) (*ratingdb.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *FakeRatingRepo) GetParticipants(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]*ratingdb.Participant, error) {
	f.record("GetParticipants")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*ratingdb.Participant, 0, len(f.participants[matchID]))
	for _, p := range f.participants[matchID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *FakeRatingRepo) UpdateMatchStatus(ctx context.Context, db bun.IDB, matchID uuid.UUID, status ratingdomain.Status) error {
	f.record("UpdateMatchStatus")
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok || m.Status.IsTerminal() {
		return ratingdb.ErrNoRowsAffected
	}
	m.Status = status
	return nil
}

func (f *FakeRatingRepo) FinalizeMatch(ctx context.Context, db bun.IDB, rec ratingdb.FinalizeRecord) error {
	f.record("FinalizeMatch")
	if f.FinalizeMatchFunc != nil {
		return f.FinalizeMatchFunc(ctx, db, rec)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[rec.MatchID]
	if !ok || m.Status.IsTerminal() {
		return ratingdb.ErrNoRowsAffected
	}
	k, margin, at := rec.KFactor, rec.Margin, rec.FinalizedAt
	m.Status = ratingdomain.StatusCompleted
	m.KFactor = &k
	m.Margin = &margin
	m.FinalizedAt = &at
	for _, res := range rec.Participants {
		for _, p := range f.participants[rec.MatchID] {
			if p.PlayerID != res.PlayerID {
				continue
			}
			won, before, delta := res.IsWinner, res.RatingBefore, res.RatingDelta
			p.IsWinner = &won
			p.RatingBefore = &before
			p.RatingDelta = &delta
		}
	}
	return nil
}

func (f *FakeRatingRepo) GetRatingHistory(ctx context.Context, db bun.IDB, playerID uuid.UUID, since time.Time) ([]ratingdb.HistoryEntry, error) {
	f.record("GetRatingHistory")
	if f.GetRatingHistoryFunc != nil {
		return f.GetRatingHistoryFunc(ctx, db, playerID, since)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ratingdb.HistoryEntry
	for id, m := range f.matches {
		if m.FinalizedAt == nil || m.FinalizedAt.Before(since) {
			continue
		}
		for _, p := range f.participants[id] {
			if p.PlayerID == playerID && p.RatingDelta != nil {
				out = append(out, ratingdb.HistoryEntry{
					MatchID:      id,
					Category:     m.Category,
					FinalizedAt:  *m.FinalizedAt,
					RatingBefore: *p.RatingBefore,
					RatingDelta:  *p.RatingDelta,
					IsWinner:     p.IsWinner != nil && *p.IsWinner,
				})
			}
		}
	}
	slices.SortFunc(out, func(a, b ratingdb.HistoryEntry) int { return a.FinalizedAt.Compare(b.FinalizedAt) })
	return out, nil
}

func (f *FakeRatingRepo) CreateConfirmations(ctx context.Context, db bun.IDB, rows []*ratingdb.Confirmation) error {
	f.record("CreateConfirmations")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		cp := *r
		f.confirmations[r.MatchID] = append(f.confirmations[r.MatchID], &cp)
	}
	return nil
}

func (f *FakeRatingRepo) UpsertConfirmation(ctx context.Context, db bun.IDB, row *ratingdb.Confirmation) error {
	f.record("UpsertConfirmation")
	if f.UpsertConfirmationFunc != nil {
		return f.UpsertConfirmationFunc(ctx, db, row)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.confirmations[row.MatchID] {
		if c.UserID == row.UserID {
			*c = *row
			return nil
		}
	}
	cp := *row
	f.confirmations[row.MatchID] = append(f.confirmations[row.MatchID], &cp)
	return nil
}

func (f *FakeRatingRepo) GetConfirmations(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]*ratingdb.Confirmation, error) {
	f.record("GetConfirmations")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*ratingdb.Confirmation, 0, len(f.confirmations[matchID]))
	for _, c := range f.confirmations[matchID] {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// --- Accessors for assertions ---

func (f *FakeRatingRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ ratingdb.Repository = (*FakeRatingRepo)(nil)

// ------------------------
// Fake Publisher / Dispatcher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (p *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *FakePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

func (p *FakePublisher) Last(topic string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Topic == topic {
			return p.events[i].Payload, true
		}
	}
	return nil, false
}

type FakeDispatcher struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
	Err      error
}

func (d *FakeDispatcher) EnqueueFinalize(ctx context.Context, matchID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, matchID)
	return d.Err
}

func (d *FakeDispatcher) Enqueued() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.enqueued)
}

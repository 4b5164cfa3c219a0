// Package memory is an in-process implementation of the repository contracts.
// It backs the "memory" storage driver and the service test suites.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

// Store keeps all documents in maps guarded by one RWMutex.
// Transactions are serialized and rolled back by restoring a snapshot.
type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	teams   map[int64]model.Team
	players map[int64]model.Player
	matches map[int64]model.Match
	seqs    map[string]int64
	now     func() time.Time
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		teams:   make(map[int64]model.Team),
		players: make(map[int64]model.Player),
		matches: make(map[int64]model.Match),
		seqs:    make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Teams() repository.TeamRepository     { return &teamRepository{s: s} }
func (s *Store) Players() repository.PlayerRepository { return &playerRepository{s: s} }
func (s *Store) Matches() repository.MatchRepository  { return &matchRepository{s: s} }

// Ping always succeeds; the store lives in the process.
func (s *Store) Ping(context.Context) error { return nil }

// Next increments and returns the named counter, starting at 1.
func (s *Store) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[name]++
	return s.seqs[name], nil
}

type txKey struct{}

// WithinTx runs fn while holding the transaction lock; on error every map is restored.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	teams   map[int64]model.Team
	players map[int64]model.Player
	matches map[int64]model.Match
	seqs    map[string]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		teams:   make(map[int64]model.Team, len(s.teams)),
		players: make(map[int64]model.Player, len(s.players)),
		matches: make(map[int64]model.Match, len(s.matches)),
		seqs:    make(map[string]int64, len(s.seqs)),
	}
	for k, v := range s.teams {
		snap.teams[k] = cloneTeam(v)
	}
	for k, v := range s.players {
		snap.players[k] = clonePlayer(v)
	}
	for k, v := range s.matches {
		snap.matches[k] = cloneMatch(v)
	}
	for k, v := range s.seqs {
		snap.seqs[k] = v
	}
	return snap
}

// restore keeps sequences monotonic: ids handed out inside a failed tx are not reused.
func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = snap.teams
	s.players = snap.players
	s.matches = snap.matches
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func cloneID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTeam(t model.Team) model.Team {
	t.CaptainID = cloneID(t.CaptainID)
	if t.PlayerIDs != nil {
		t.PlayerIDs = append(make([]int64, 0, len(t.PlayerIDs)), t.PlayerIDs...)
	}
	return t
}

func clonePlayer(p model.Player) model.Player {
	p.TeamID = cloneID(p.TeamID)
	if p.BowlingStyle != nil {
		bs := *p.BowlingStyle
		p.BowlingStyle = &bs
	}
	if p.Stats != nil {
		st := *p.Stats
		p.Stats = &st
	}
	return p
}

func cloneMatch(m model.Match) model.Match {
	if m.Result != nil {
		r := *m.Result
		m.Result = &r
	}
	return m
}

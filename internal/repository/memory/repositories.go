package memory

import (
	"context"

	"github.com/maxviazov/cricket-tournament-service/internal/model"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
)

type teamRepository struct{ s *Store }

func (r *teamRepository) Create(_ context.Context, t model.Team) (model.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[t.ID]; ok {
		return model.Team{}, repository.ErrAlreadyExists
	}
	if r.nameTaken(t.TeamName, t.ID) {
		return model.Team{}, repository.ErrAlreadyExists
	}
	now := r.s.now()
	t.Version, t.CreatedAt, t.UpdatedAt = 1, now, now
	if t.PlayerIDs == nil {
		t.PlayerIDs = []int64{}
	}
	r.s.teams[t.ID] = cloneTeam(t)
	return cloneTeam(t), nil
}

func (r *teamRepository) GetByID(_ context.Context, id int64) (model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok {
		return model.Team{}, repository.ErrNotFound
	}
	return cloneTeam(t), nil
}

func (r *teamRepository) FindByName(_ context.Context, name string) (model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedKeys(r.s.teams) {
		if t := r.s.teams[id]; sameName(t.TeamName, name) {
			return cloneTeam(t), nil
		}
	}
	return model.Team{}, repository.ErrNotFound
}

func (r *teamRepository) Update(_ context.Context, t model.Team) (model.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.teams[t.ID]
	if !ok {
		return model.Team{}, repository.ErrNotFound
	}
	if cur.Version != t.Version {
		return model.Team{}, repository.ErrConflict
	}
	if r.nameTaken(t.TeamName, t.ID) {
		return model.Team{}, repository.ErrAlreadyExists
	}
	t.Version = cur.Version + 1
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = r.s.now()
	if t.PlayerIDs == nil {
		t.PlayerIDs = []int64{}
	}
	r.s.teams[t.ID] = cloneTeam(t)
	return cloneTeam(t), nil
}

func (r *teamRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.teams, id)
	return nil
}

func (r *teamRepository) List(context.Context) ([]model.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Team, 0, len(r.s.teams))
	for _, id := range sortedKeys(r.s.teams) {
		out = append(out, cloneTeam(r.s.teams[id]))
	}
	return out, nil
}

// nameTaken must be called with the lock held.
func (r *teamRepository) nameTaken(name string, exceptID int64) bool {
	for id, t := range r.s.teams {
		if id != exceptID && sameName(t.TeamName, name) {
			return true
		}
	}
	return false
}

type playerRepository struct{ s *Store }

func (r *playerRepository) Create(_ context.Context, p model.Player) (model.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[p.ID]; ok {
		return model.Player{}, repository.ErrAlreadyExists
	}
	now := r.s.now()
	p.Version, p.CreatedAt, p.UpdatedAt = 1, now, now
	r.s.players[p.ID] = clonePlayer(p)
	return clonePlayer(p), nil
}

func (r *playerRepository) GetByID(_ context.Context, id int64) (model.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return clonePlayer(p), nil
}

func (r *playerRepository) GetByIDs(_ context.Context, ids []int64) ([]model.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.players[id]; ok {
			out = append(out, clonePlayer(p))
		}
	}
	return out, nil
}

func (r *playerRepository) FindByName(_ context.Context, name string) ([]model.Player, error) {
	return r.filter(func(p model.Player) bool { return sameName(p.Name, name) }), nil
}

func (r *playerRepository) ListByTeam(_ context.Context, teamID int64) ([]model.Player, error) {
	return r.filter(func(p model.Player) bool { return p.TeamID != nil && *p.TeamID == teamID }), nil
}

func (r *playerRepository) Update(_ context.Context, p model.Player) (model.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.players[p.ID]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	if cur.Version != p.Version {
		return model.Player{}, repository.ErrConflict
	}
	p.Version = cur.Version + 1
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.players[p.ID] = clonePlayer(p)
	return clonePlayer(p), nil
}

func (r *playerRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.players, id)
	return nil
}

func (r *playerRepository) List(context.Context) ([]model.Player, error) {
	return r.filter(func(model.Player) bool { return true }), nil
}

func (r *playerRepository) filter(keep func(model.Player) bool) []model.Player {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Player, 0)
	for _, id := range sortedKeys(r.s.players) {
		if p := r.s.players[id]; keep(p) {
			out = append(out, clonePlayer(p))
		}
	}
	return out
}

type matchRepository struct{ s *Store }

func (r *matchRepository) Create(_ context.Context, m model.Match) (model.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[m.ID]; ok {
		return model.Match{}, repository.ErrAlreadyExists
	}
	now := r.s.now()
	m.Version, m.CreatedAt, m.UpdatedAt = 1, now, now
	r.s.matches[m.ID] = cloneMatch(m)
	return cloneMatch(m), nil
}

func (r *matchRepository) GetByID(_ context.Context, id int64) (model.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.matches[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return cloneMatch(m), nil
}

func (r *matchRepository) Update(_ context.Context, m model.Match) (model.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.matches[m.ID]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	if cur.Version != m.Version {
		return model.Match{}, repository.ErrConflict
	}
	m.Version = cur.Version + 1
	m.CreatedAt = cur.CreatedAt
	m.UpdatedAt = r.s.now()
	r.s.matches[m.ID] = cloneMatch(m)
	return cloneMatch(m), nil
}

func (r *matchRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.matches, id)
	return nil
}

func (r *matchRepository) List(context.Context) ([]model.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Match, 0, len(r.s.matches))
	for _, id := range sortedKeys(r.s.matches) {
		out = append(out, cloneMatch(r.s.matches[id]))
	}
	return out, nil
}

var (
	_ repository.TeamRepository    = (*teamRepository)(nil)
	_ repository.PlayerRepository  = (*playerRepository)(nil)
	_ repository.MatchRepository   = (*matchRepository)(nil)
	_ repository.TxManager         = (*Store)(nil)
	_ repository.SequenceAllocator = (*Store)(nil)
	_ repository.Pinger            = (*Store)(nil)
)

package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Dosada05/checkmate-cup/models"
	"github.com/Dosada05/checkmate-cup/repositories"
	"github.com/Dosada05/checkmate-cup/storage"
	"github.com/google/uuid"
)

// memStore - in-memory база для сервисных тестов. memTx откатывает её при ошибке.
type memStore struct {
	mu          sync.Mutex
	clock       time.Time
	tournaments []*models.Tournament
	players     []*models.TournamentPlayer
	games       []*models.Game
	profiles    []*models.Profile
	champions   []*models.Champion
	roles       []models.RoleGrant
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func cloneAll[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		c := *v
		out = append(out, &c)
	}
	return out
}

type memSnapshot struct {
	tournaments []*models.Tournament
	players     []*models.TournamentPlayer
	games       []*models.Game
	profiles    []*models.Profile
	champions   []*models.Champion
	roles       []models.RoleGrant
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		tournaments: cloneAll(s.tournaments),
		players:     cloneAll(s.players),
		games:       cloneAll(s.games),
		profiles:    cloneAll(s.profiles),
		champions:   cloneAll(s.champions),
		roles:       append([]models.RoleGrant(nil), s.roles...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments = snap.tournaments
	s.players = snap.players
	s.games = snap.games
	s.profiles = snap.profiles
	s.champions = snap.champions
	s.roles = snap.roles
}

type memTx struct {
	store *memStore
	calls int
}

func (t *memTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// --- tournaments ---

type memTournamentRepo struct{ s *memStore }

func (r *memTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	c := *t
	r.s.tournaments = append(r.s.tournaments, &c)
	return nil
}

func (r *memTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tournaments {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *memTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *memTournamentRepo) GetLatest(ctx context.Context, exec repositories.SQLExecutor) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.Tournament
	for _, t := range r.s.tournaments {
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
		}
	}
	if latest == nil {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *latest
	return &c, nil
}

func (r *memTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.tournaments {
		if existing.ID == t.ID {
			c := *t
			r.s.tournaments[i] = &c
			return nil
		}
	}
	return repositories.ErrTournamentNotFound
}

func (r *memTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, t := range r.s.tournaments {
		if t.ID == id {
			r.s.tournaments = append(r.s.tournaments[:i], r.s.tournaments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTournamentNotFound
}

// --- registrations ---

type memPlayerRepo struct{ s *memStore }

func (r *memPlayerRepo) find(tournamentID, playerID uuid.UUID) *models.TournamentPlayer {
	for _, p := range r.s.players {
		if p.TournamentID == tournamentID && p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

func (r *memPlayerRepo) Register(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, playerIDs []uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	added := 0
	for _, id := range playerIDs {
		if r.find(tournamentID, id) != nil {
			continue
		}
		r.s.players = append(r.s.players, &models.TournamentPlayer{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			PlayerID:     id,
			RegisteredAt: r.s.tick(),
		})
		added++
	}
	return added, nil
}

func (r *memPlayerRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) ([]*models.TournamentPlayer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.TournamentPlayer, 0)
	for _, p := range r.s.players {
		if p.TournamentID == tournamentID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}

func (r *memPlayerRepo) Get(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID uuid.UUID) (*models.TournamentPlayer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p := r.find(tournamentID, playerID); p != nil {
		c := *p
		return &c, nil
	}
	return nil, repositories.ErrTournamentPlayerNotFound
}

func (r *memPlayerRepo) AddScore(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID uuid.UUID, delta float64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.find(tournamentID, playerID)
	if p == nil {
		return false, nil
	}
	p.Score += delta
	return true, nil
}

func (r *memPlayerRepo) SetScore(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID uuid.UUID, score float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.find(tournamentID, playerID)
	if p == nil {
		return repositories.ErrTournamentPlayerNotFound
	}
	p.Score = score
	return nil
}

func (r *memPlayerRepo) MarkEliminated(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, playerIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range playerIDs {
		if p := r.find(tournamentID, id); p != nil {
			p.IsEliminated = true
		}
	}
	return nil
}

func (r *memPlayerRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.players[:0]
	for _, p := range r.s.players {
		if p.TournamentID != tournamentID {
			kept = append(kept, p)
		}
	}
	r.s.players = kept
	return nil
}

// --- games ---

type memGameRepo struct{ s *memStore }

func (r *memGameRepo) find(id uuid.UUID) *models.Game {
	for _, g := range r.s.games {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (r *memGameRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, games []*models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range games {
		g.ID = uuid.New()
		g.CreatedAt = r.s.tick()
		c := *g
		r.s.games = append(r.s.games, &c)
	}
	return nil
}

func (r *memGameRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g := r.find(id); g != nil {
		c := *g
		return &c, nil
	}
	return nil, repositories.ErrGameNotFound
}

func (r *memGameRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, round *int) ([]*models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Game, 0)
	for _, g := range r.s.games {
		if g.TournamentID == nil || *g.TournamentID != tournamentID {
			continue
		}
		if round != nil && g.Round != *round {
			continue
		}
		c := *g
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out, nil
}

func (r *memGameRepo) CountUnfinished(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, round int) (int, error) {
	games, _ := r.ListByTournament(ctx, exec, tournamentID, &round)
	n := 0
	for _, g := range games {
		if !g.Result.IsTerminal() {
			n++
		}
	}
	return n, nil
}

func (r *memGameRepo) Finalize(ctx context.Context, exec repositories.SQLExecutor, p repositories.FinalizeParams) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.find(p.GameID)
	if g == nil || g.Result.IsTerminal() {
		return false, nil
	}
	g.Result = p.Result
	if p.FEN != nil {
		g.FEN = *p.FEN
	}
	if p.PGN != nil {
		g.PGN = *p.PGN
	}
	if p.WhiteTimeRemaining != nil {
		g.WhiteTimeRemaining = *p.WhiteTimeRemaining
	}
	if p.BlackTimeRemaining != nil {
		g.BlackTimeRemaining = *p.BlackTimeRemaining
	}
	ended := p.EndedAt
	g.EndedAt = &ended
	g.DrawOfferedBy = nil
	return true, nil
}

func (r *memGameRepo) SetReady(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, side models.Color) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.find(id)
	if g == nil || g.Result != models.ResultPending {
		return false, nil
	}
	if side == models.White {
		g.WhiteReady = true
	} else {
		g.BlackReady = true
	}
	return true, nil
}

func (r *memGameRepo) Start(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, startedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.find(id)
	if g == nil || g.Result != models.ResultPending || !g.WhiteReady || !g.BlackReady {
		return false, nil
	}
	g.Result = models.ResultInProgress
	g.StartedAt = &startedAt
	return true, nil
}

func (r *memGameRepo) UpdatePosition(ctx context.Context, exec repositories.SQLExecutor, u repositories.PositionUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.find(u.GameID)
	if g == nil || g.Result != models.ResultInProgress || g.FEN != u.PrevFEN {
		return false, nil
	}
	g.FEN, g.PGN, g.DrawOfferedBy = u.FEN, u.PGN, nil
	if u.WhiteTimeRemaining != nil {
		g.WhiteTimeRemaining = *u.WhiteTimeRemaining
	}
	if u.BlackTimeRemaining != nil {
		g.BlackTimeRemaining = *u.BlackTimeRemaining
	}
	return true, nil
}

func (r *memGameRepo) SetDrawOffer(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, offeredBy *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g := r.find(id)
	if g == nil || g.Result != models.ResultInProgress {
		return false, nil
	}
	g.DrawOfferedBy = offeredBy
	return true, nil
}

func (r *memGameRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.games[:0]
	for _, g := range r.s.games {
		if g.TournamentID == nil || *g.TournamentID != tournamentID {
			kept = append(kept, g)
		}
	}
	r.s.games = kept
	return nil
}

// --- profiles ---

type memProfileRepo struct{ s *memStore }

func (r *memProfileRepo) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.profiles {
		if existing.UserID == p.UserID {
			return repositories.ErrProfileUserConflict
		}
		if existing.Username == p.Username {
			return repositories.ErrProfileUsernameConflict
		}
	}
	p.ID = uuid.New()
	if p.Rating == 0 {
		p.Rating = models.DefaultRating
	}
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	c := *p
	r.s.profiles = append(r.s.profiles, &c)
	return nil
}

func (r *memProfileRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *memProfileRepo) GetByUserID(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *memProfileRepo) GetManyForUpdate(ctx context.Context, exec repositories.SQLExecutor, ids []uuid.UUID) ([]*models.Profile, error) {
	out := make([]*models.Profile, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetByID(ctx, exec, id)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memProfileRepo) ListIDs(ctx context.Context, exec repositories.SQLExecutor) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *memProfileRepo) ListStandings(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Profile, error) {
	r.s.mu.Lock()
	out := cloneAll(r.s.profiles)
	r.s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].GamesWon > out[j].GamesWon
	})
	return out, nil
}

func (r *memProfileRepo) ApplyResult(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, res models.ProfileResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.ID == id {
			p.Rating = res.NewRating
			p.GamesPlayed++
			p.GamesWon += res.Won
			p.GamesLost += res.Lost
			p.GamesDrawn += res.Drawn
			p.Score += res.ScoreDelta
			return nil
		}
	}
	return repositories.ErrProfileNotFound
}

func (r *memProfileRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	userIDs := make([]uuid.UUID, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		userIDs = append(userIDs, p.UserID)
	}
	r.s.profiles = nil
	return userIDs, nil
}

// --- champions ---

type memChampionRepo struct{ s *memStore }

func (r *memChampionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, c *models.Champion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.champions {
		if existing.TournamentID == c.TournamentID {
			return repositories.ErrChampionAlreadyRecorded
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = r.s.tick()
	cp := *c
	r.s.champions = append(r.s.champions, &cp)
	return nil
}

func (r *memChampionRepo) GetByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) (*models.Champion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.champions {
		if c.TournamentID == tournamentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrChampionNotFound
}

func (r *memChampionRepo) ListPublished(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Champion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Champion, 0)
	for _, c := range r.s.champions {
		if c.Published {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memChampionRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.champions[:0]
	for _, c := range r.s.champions {
		if c.TournamentID != tournamentID {
			kept = append(kept, c)
		}
	}
	r.s.champions = kept
	return nil
}

// --- roles ---

type memRoleRepo struct{ s *memStore }

func (r *memRoleRepo) HasRole(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID, role models.UserRole) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.roles {
		if g.UserID == userID && g.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRoleRepo) Grant(ctx context.Context, exec repositories.SQLExecutor, userID uuid.UUID, role models.UserRole) error {
	if ok, _ := r.HasRole(ctx, exec, userID, role); ok {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.roles = append(r.s.roles, models.RoleGrant{ID: uuid.New(), UserID: userID, Role: role})
	return nil
}

func (r *memRoleRepo) DeleteByRole(ctx context.Context, exec repositories.SQLExecutor, role models.UserRole) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.roles[:0]
	n := 0
	for _, g := range r.s.roles {
		if g.Role == role {
			n++
			continue
		}
		kept = append(kept, g)
	}
	r.s.roles = kept
	return n, nil
}

// --- side effects ---

type publishedEvent struct {
	Room string
	Type string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(roomID, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Room: roomID, Type: eventType})
}

func (p *recordingPublisher) has(roomID, eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.Room == roomID && e.Type == eventType {
			return true
		}
	}
	return false
}

type recordingArchive struct {
	games     []uuid.UUID
	champions []uuid.UUID
	purged    []uuid.UUID
}

func (a *recordingArchive) StoreGame(ctx context.Context, g *models.Game, white, black string) (*storage.UploadResult, error) {
	a.games = append(a.games, g.ID)
	return &storage.UploadResult{Key: storage.GameKey(g.TournamentID, g.ID)}, nil
}

func (a *recordingArchive) StoreChampions(ctx context.Context, c *models.Champion, standing []*models.TournamentPlayer) (*storage.UploadResult, error) {
	a.champions = append(a.champions, c.TournamentID)
	return &storage.UploadResult{Key: storage.ChampionsKey(c.TournamentID)}, nil
}

func (a *recordingArchive) PurgeTournament(ctx context.Context, tournamentID uuid.UUID, gameIDs []uuid.UUID) error {
	a.purged = append(a.purged, tournamentID)
	return nil
}

// testEnv wires every service to one memStore.
type testEnv struct {
	store       *memStore
	tx          *memTx
	tournaments *memTournamentRepo
	players     *memPlayerRepo
	games       *memGameRepo
	profiles    *memProfileRepo
	champions   *memChampionRepo
	roles       *memRoleRepo
	events      *recordingPublisher
	archive     *recordingArchive

	profileSeq int
}

func newTestEnv() *testEnv {
	s := newMemStore()
	return &testEnv{
		store:       s,
		tx:          &memTx{store: s},
		tournaments: &memTournamentRepo{s: s},
		players:     &memPlayerRepo{s: s},
		games:       &memGameRepo{s: s},
		profiles:    &memProfileRepo{s: s},
		champions:   &memChampionRepo{s: s},
		roles:       &memRoleRepo{s: s},
		events:      &recordingPublisher{},
		archive:     &recordingArchive{},
	}
}

func (e *testEnv) tournamentService() TournamentService {
	return NewTournamentService(e.tx, e.tournaments, e.players, e.games, e.profiles, e.champions, e.roles, e.archive, e.events, nil)
}

func (e *testEnv) gameService() GameService {
	return NewGameService(e.tx, e.games, e.players, e.profiles, e.archive, e.events, nil)
}

// addProfiles creates n more profiles and returns them in creation order.
// Usernames continue the env's sequence: p1, p2, ...
func (e *testEnv) addProfiles(n int) []*models.Profile {
	out := make([]*models.Profile, 0, n)
	for i := 0; i < n; i++ {
		e.profileSeq++
		p := &models.Profile{UserID: uuid.New(), Username: "p" + strconv.Itoa(e.profileSeq)}
		if err := e.profiles.Create(context.Background(), nil, p); err != nil {
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

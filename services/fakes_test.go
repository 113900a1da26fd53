package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
	"github.com/wefitlabs/courtside/repositories"
)

// In-memory repository fakes shared by the service tests. They hold the
// same invariants as the postgres implementations (sentinel errors, the
// occupied-slot guard, the one-shot processing claim) without a database.

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[uuid.UUID]*models.Match
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{matches: make(map[uuid.UUID]*models.Match)}
	for _, m := range matches {
		repo.matches[m.ID] = m
	}
	return repo
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) GetByRoundPosition(_ context.Context, eventID uuid.UUID, roundNumber, matchNumber int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, match := range r.matches {
		if match.EventID == eventID && match.RoundNumber == roundNumber && match.MatchNumber == matchNumber {
			copied := *match
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, match := range r.matches {
		if match.EventID == eventID {
			copied := *match
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}

func (r *fakeMatchRepo) HasCompletedByEvent(_ context.Context, eventID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, match := range r.matches {
		if match.EventID == eventID && match.Status == models.MatchStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, match := range matches {
		if match.ID == uuid.Nil {
			match.ID = uuid.New()
		}
		copied := *match
		r.matches[match.ID] = &copied
	}
	return nil
}

func (r *fakeMatchRepo) DeleteAllByEvent(_ context.Context, _ repositories.SQLExecutor, eventID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, match := range r.matches {
		if match.EventID == eventID {
			delete(r.matches, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) UpdateScoreStatusWinner(_ context.Context, id uuid.UUID, team1Score, team2Score int, status models.MatchStatus, winnerID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Team1Score = team1Score
	match.Team2Score = team2Score
	match.Status = status
	match.WinnerID = winnerID
	return nil
}

func (r *fakeMatchRepo) UpdateTeamSlot(_ context.Context, id uuid.UUID, teamSlot int, teamID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if teamSlot == 1 {
		if match.Team1ID != nil {
			return repositories.ErrMatchSlotOccupied
		}
		match.Team1ID = &teamID
	} else {
		if match.Team2ID != nil {
			return repositories.ErrMatchSlotOccupied
		}
		match.Team2ID = &teamID
	}
	return nil
}

func (r *fakeMatchRepo) ClaimRatingProcessing(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	match, ok := r.matches[id]
	if !ok {
		return false, repositories.ErrMatchNotFound
	}
	if match.RatingProcessedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	match.RatingProcessedAt = &now
	return true, nil
}

type fakeParticipantRepo struct {
	mu           sync.Mutex
	participants []*models.Participant
}

func newFakeParticipantRepo(participants ...*models.Participant) *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: participants}
}

func (r *fakeParticipantRepo) Create(_ context.Context, participant *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	r.participants = append(r.participants, participant)
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Participant
	for _, p := range r.participants {
		if p.EventID == eventID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) SetCheckedIn(_ context.Context, id uuid.UUID, checkedIn bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.ID == id {
			p.CheckedIn = checkedIn
			return nil
		}
	}
	return repositories.ErrParticipantNotFound
}

type fakePlayerRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.PlayerProfile
}

func newFakePlayerRepo(profiles ...*models.PlayerProfile) *fakePlayerRepo {
	repo := &fakePlayerRepo{profiles: make(map[uuid.UUID]*models.PlayerProfile)}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (r *fakePlayerRepo) Create(_ context.Context, profile *models.PlayerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.profiles {
		if existing.UserID == profile.UserID {
			return repositories.ErrPlayerUserConflict
		}
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	copied := *profile
	r.profiles[profile.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, repositories.ErrPlayerProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakePlayerRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if profile.UserID == userID {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerProfileNotFound
}

func (r *fakePlayerRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlayerProfile
	for _, id := range ids {
		if profile, ok := r.profiles[id]; ok {
			copied := *profile
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) UpdateRating(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return repositories.ErrPlayerProfileNotFound
	}
	profile.SkillRating = rating
	return nil
}

func (r *fakePlayerRepo) UpdateAvatar(_ context.Context, id uuid.UUID, avatarKey, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return repositories.ErrPlayerProfileNotFound
	}
	profile.AvatarKey = &avatarKey
	profile.AvatarURL = &avatarURL
	return nil
}

type fakeStatsRepo struct {
	mu    sync.Mutex
	stats map[uuid.UUID]*models.PlayerStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[uuid.UUID]*models.PlayerStats)}
}

func (r *fakeStatsRepo) Get(_ context.Context, playerID uuid.UUID) (*models.PlayerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[playerID]
	if !ok {
		return nil, repositories.ErrPlayerStatsNotFound
	}
	copied := *stats
	return &copied, nil
}

func (r *fakeStatsRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, stats *models.PlayerStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *stats
	r.stats[stats.PlayerID] = &copied
	return nil
}

type chemistryKey struct {
	playerID  uuid.UUID
	partnerID uuid.UUID
}

type fakeChemistryRepo struct {
	mu    sync.Mutex
	pairs map[chemistryKey]*models.TeamChemistry
}

func newFakeChemistryRepo() *fakeChemistryRepo {
	return &fakeChemistryRepo{pairs: make(map[chemistryKey]*models.TeamChemistry)}
}

func (r *fakeChemistryRepo) Get(_ context.Context, playerID, partnerID uuid.UUID) (*models.TeamChemistry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chem, ok := r.pairs[chemistryKey{playerID, partnerID}]
	if !ok {
		return nil, repositories.ErrTeamChemistryNotFound
	}
	copied := *chem
	return &copied, nil
}

func (r *fakeChemistryRepo) ListByPlayer(_ context.Context, playerID uuid.UUID) ([]*models.TeamChemistry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TeamChemistry
	for key, chem := range r.pairs {
		if key.playerID == playerID || key.partnerID == playerID {
			copied := *chem
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeChemistryRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, chemistry *models.TeamChemistry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *chemistry
	r.pairs[chemistryKey{chemistry.PlayerID, chemistry.PartnerID}] = &copied
	return nil
}

type fakeHistoryRepo struct {
	mu       sync.Mutex
	byPlayer map[uuid.UUID][]int
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{byPlayer: make(map[uuid.UUID][]int)}
}

func (r *fakeHistoryRepo) Insert(_ context.Context, _ repositories.SQLExecutor, playerID, _ uuid.UUID, skillRating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlayer[playerID] = append(r.byPlayer[playerID], skillRating)
	return nil
}

func (r *fakeHistoryRepo) ListRecentByPlayer(_ context.Context, playerID uuid.UUID, limit int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ratings := r.byPlayer[playerID]
	if len(ratings) > limit {
		ratings = ratings[len(ratings)-limit:]
	}
	out := make([]int, len(ratings))
	copy(out, ratings)
	return out, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (d *fakeDispatcher) Enqueue(matchID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, matchID)
}

func (d *fakeDispatcher) calls() []uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]uuid.UUID, len(d.enqueued))
	copy(out, d.enqueued)
	return out
}

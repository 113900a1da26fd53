package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
	"github.com/wefitlabs/courtside/rating"
	"github.com/wefitlabs/courtside/repositories"
	"github.com/wefitlabs/courtside/storage"
)

// ratingHistoryWindow bounds how many recent ratings feed the form
// readout. Ten is enough for a stable volatility figure without
// dragging in ancient seasons.
const ratingHistoryWindow = 10

type CreateProfileInput struct {
	DisplayName string
	Bio         *string
	Location    *string
}

// ProfileView is a player profile decorated with derived rating data.
type ProfileView struct {
	Profile *models.PlayerProfile `json:"profile"`
	Bracket rating.SkillBracket   `json:"bracket"`
	Stats   *models.PlayerStats   `json:"stats,omitempty"`
}

// FormView describes recent rating movement for a player.
type FormView struct {
	CurrentRating int    `json:"current_rating"`
	Volatility    int    `json:"volatility"`
	Trend         string `json:"trend"`
	RecentRatings []int  `json:"recent_ratings"`
	SampleSize    int    `json:"sample_size"`
}

// MatchupView is a head-to-head preview between two players: win
// probabilities plus the performance rating each outcome would imply
// for player A.
type MatchupView struct {
	PlayerA          *ProfileView `json:"player_a"`
	PlayerB          *ProfileView `json:"player_b"`
	PlayerAWinChance int          `json:"player_a_win_chance"`
	PlayerBWinChance int          `json:"player_b_win_chance"`
	WinPerformance   int          `json:"win_performance"`
	LossPerformance  int          `json:"loss_performance"`
}

type PlayerService interface {
	CreateProfile(ctx context.Context, userID uuid.UUID, input CreateProfileInput) (*models.PlayerProfile, error)
	GetProfile(ctx context.Context, playerID uuid.UUID) (*ProfileView, error)
	GetProfileByUser(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
	GetChemistry(ctx context.Context, playerID uuid.UUID) ([]*models.TeamChemistry, error)
	GetForm(ctx context.Context, playerID uuid.UUID) (*FormView, error)
	GetMatchup(ctx context.Context, playerAID, playerBID uuid.UUID) (*MatchupView, error)
	UploadAvatar(ctx context.Context, playerID uuid.UUID, contentType string, file io.Reader) (*models.PlayerProfile, error)
}

type playerService struct {
	playerRepo    repositories.PlayerProfileRepository
	statsRepo     repositories.PlayerStatsRepository
	chemistryRepo repositories.TeamChemistryRepository
	historyRepo   repositories.RatingHistoryRepository
	uploader      storage.FileUploader
	logger        *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerProfileRepository,
	statsRepo repositories.PlayerStatsRepository,
	chemistryRepo repositories.TeamChemistryRepository,
	historyRepo repositories.RatingHistoryRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo:    playerRepo,
		statsRepo:     statsRepo,
		chemistryRepo: chemistryRepo,
		historyRepo:   historyRepo,
		uploader:      uploader,
		logger:        logger,
	}
}

func (s *playerService) CreateProfile(ctx context.Context, userID uuid.UUID, input CreateProfileInput) (*models.PlayerProfile, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidationFailed)
	}

	profile := &models.PlayerProfile{
		UserID:      userID,
		DisplayName: displayName,
		SkillRating: rating.InitialRating,
		Bio:         input.Bio,
		Location:    input.Location,
	}

	if err := s.playerRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrPlayerUserConflict) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create player profile: %w", err)
	}

	s.populateAvatarURL(profile)
	return profile, nil
}

func (s *playerService) GetProfile(ctx context.Context, playerID uuid.UUID) (*ProfileView, error) {
	profile, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerProfileNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return s.buildProfileView(ctx, profile)
}

func (s *playerService) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.playerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerProfileNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player for user %s: %w", userID, err)
	}
	return s.buildProfileView(ctx, profile)
}

func (s *playerService) buildProfileView(ctx context.Context, profile *models.PlayerProfile) (*ProfileView, error) {
	s.populateAvatarURL(profile)

	view := &ProfileView{
		Profile: profile,
		Bracket: rating.BracketFor(profile.SkillRating),
	}

	stats, err := s.statsRepo.Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, repositories.ErrPlayerStatsNotFound) {
		return nil, fmt.Errorf("failed to get stats for player %s: %w", profile.ID, err)
	}
	view.Stats = stats

	return view, nil
}

func (s *playerService) GetChemistry(ctx context.Context, playerID uuid.UUID) ([]*models.TeamChemistry, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerProfileNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}

	pairs, err := s.chemistryRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chemistry for player %s: %w", playerID, err)
	}
	if pairs == nil {
		pairs = []*models.TeamChemistry{}
	}
	return pairs, nil
}

func (s *playerService) GetForm(ctx context.Context, playerID uuid.UUID) (*FormView, error) {
	profile, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerProfileNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}

	recent, err := s.historyRepo.ListRecentByPlayer(ctx, playerID, ratingHistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating history for player %s: %w", playerID, err)
	}

	volatility, trend := rating.Volatility(recent)
	return &FormView{
		CurrentRating: profile.SkillRating,
		Volatility:    volatility,
		Trend:         string(trend),
		RecentRatings: recent,
		SampleSize:    len(recent),
	}, nil
}

func (s *playerService) GetMatchup(ctx context.Context, playerAID, playerBID uuid.UUID) (*MatchupView, error) {
	if playerAID == playerBID {
		return nil, fmt.Errorf("%w: matchup requires two distinct players", ErrValidationFailed)
	}

	viewA, err := s.GetProfile(ctx, playerAID)
	if err != nil {
		return nil, err
	}
	viewB, err := s.GetProfile(ctx, playerBID)
	if err != nil {
		return nil, err
	}

	aChance, bChance := rating.WinProbability(viewA.Profile.SkillRating, viewB.Profile.SkillRating)
	return &MatchupView{
		PlayerA:          viewA,
		PlayerB:          viewB,
		PlayerAWinChance: aChance,
		PlayerBWinChance: bChance,
		WinPerformance:   rating.PerformanceRating(viewA.Profile.SkillRating, viewB.Profile.SkillRating, true),
		LossPerformance:  rating.PerformanceRating(viewA.Profile.SkillRating, viewB.Profile.SkillRating, false),
	}, nil
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID uuid.UUID, contentType string, file io.Reader) (*models.PlayerProfile, error) {
	profile, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerProfileNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}

	ext, err := avatarExtension(contentType)
	if err != nil {
		return nil, err
	}

	oldKey := profile.AvatarKey
	key := fmt.Sprintf("avatars/players/%s/%s.%s", playerID, uuid.NewString(), ext)

	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %s: %w", playerID, err)
	}

	if err := s.playerRepo.UpdateAvatar(ctx, playerID, result.Key, result.Location); err != nil {
		// The new object is orphaned if the row update fails; drop it
		// so storage does not accumulate unreferenced files.
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to delete orphaned avatar",
				slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to persist avatar key for player %s: %w", playerID, err)
	}

	if oldKey != nil && *oldKey != "" && *oldKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	profile.AvatarKey = &result.Key
	s.populateAvatarURL(profile)
	return profile, nil
}

func (s *playerService) populateAvatarURL(profile *models.PlayerProfile) {
	if profile == nil || profile.AvatarKey == nil || *profile.AvatarKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*profile.AvatarKey); url != "" {
		profile.AvatarURL = &url
	}
}

func avatarExtension(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	default:
		return "", fmt.Errorf("%w: unsupported avatar content type %q", ErrValidationFailed, contentType)
	}
}

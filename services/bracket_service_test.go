package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wefitlabs/courtside/brackets"
	"github.com/wefitlabs/courtside/models"
	"github.com/wefitlabs/courtside/repositories"
)

type fakeEventRepo struct {
	events map[uuid.UUID]*models.Event
}

func newFakeEventRepo(events ...*models.Event) *fakeEventRepo {
	repo := &fakeEventRepo{events: make(map[uuid.UUID]*models.Event)}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (r *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]*models.Event, error) {
	out := make([]*models.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	return out, nil
}

type bracketFixture struct {
	service         BracketService
	mock            sqlmock.Sqlmock
	matchRepo       *fakeMatchRepo
	participantRepo *fakeParticipantRepo
	eventRepo       *fakeEventRepo
}

func newBracketFixture(t *testing.T, events ...*models.Event) *bracketFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &bracketFixture{
		mock:            mock,
		matchRepo:       newFakeMatchRepo(),
		participantRepo: newFakeParticipantRepo(),
		eventRepo:       newFakeEventRepo(events...),
	}
	f.service = NewBracketService(db, f.eventRepo, f.participantRepo, f.matchRepo, brackets.NewHub(), discardLogger())
	return f
}

func (f *bracketFixture) addParticipants(eventID uuid.UUID, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		participant := &models.Participant{EventID: eventID}
		_ = f.participantRepo.Create(context.Background(), participant)
		ids[i] = participant.ID
	}
	return ids
}

func TestReseedEvenField(t *testing.T) {
	eventID := uuid.New()
	f := newBracketFixture(t)
	f.addParticipants(eventID, 8)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Reseed(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Participants)
	assert.Equal(t, 3, result.Rounds)
	assert.Equal(t, 7, result.Matches)

	matches, err := f.matchRepo.ListByEvent(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, matches, 7)

	byRound := map[int]int{}
	for _, m := range matches {
		byRound[m.RoundNumber]++
	}
	assert.Equal(t, map[int]int{1: 4, 2: 2, 3: 1}, byRound)

	for _, m := range matches {
		if m.RoundNumber == 1 {
			assert.NotNil(t, m.Team1ID)
			assert.NotNil(t, m.Team2ID)
			assert.NotNil(t, m.CourtNumber)
			assert.Equal(t, models.MatchStatusPending, m.Status)
		} else {
			assert.Nil(t, m.Team1ID)
			assert.Nil(t, m.Team2ID)
		}
	}
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReseedOddFieldCreatesByeAndAdvancesIt(t *testing.T) {
	eventID := uuid.New()
	f := newBracketFixture(t)
	f.addParticipants(eventID, 5)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Reseed(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rounds)

	matches, err := f.matchRepo.ListByEvent(context.Background(), eventID)
	require.NoError(t, err)

	var byes, round2WithTeam int
	for _, m := range matches {
		if m.IsBye() {
			byes++
			assert.NotNil(t, m.WinnerID)
		}
		if m.RoundNumber == 2 && (m.Team1ID != nil || m.Team2ID != nil) {
			round2WithTeam++
		}
	}
	assert.Equal(t, 1, byes)
	assert.Equal(t, 1, round2WithTeam, "the bye winner occupies a round-2 slot")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReseedTwoParticipants(t *testing.T) {
	eventID := uuid.New()
	f := newBracketFixture(t)
	f.addParticipants(eventID, 2)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.service.Reseed(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Rounds)
	assert.Equal(t, 1, result.Matches)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReseedRefusedAfterCompletedMatch(t *testing.T) {
	eventID := uuid.New()
	f := newBracketFixture(t)
	ids := f.addParticipants(eventID, 4)

	done := &models.Match{
		ID:          uuid.New(),
		EventID:     eventID,
		RoundNumber: 1,
		MatchNumber: 1,
		Team1ID:     &ids[0],
		Team2ID:     &ids[1],
		Status:      models.MatchStatusCompleted,
		WinnerID:    &ids[0],
	}
	require.NoError(t, f.matchRepo.CreateBatch(context.Background(), nil, []*models.Match{done}))

	_, err := f.service.Reseed(context.Background(), eventID)
	assert.ErrorIs(t, err, ErrBracketLocked)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReseedRequiresTwoParticipants(t *testing.T) {
	eventID := uuid.New()
	f := newBracketFixture(t)
	f.addParticipants(eventID, 1)

	_, err := f.service.Reseed(context.Background(), eventID)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
}

func TestReseedReplacesExistingBracket(t *testing.T) {
	eventID := uuid.New()
	f := newBracketFixture(t)
	f.addParticipants(eventID, 4)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.service.Reseed(context.Background(), eventID)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err = f.service.Reseed(context.Background(), eventID)
	require.NoError(t, err)

	matches, err := f.matchRepo.ListByEvent(context.Background(), eventID)
	require.NoError(t, err)
	assert.Len(t, matches, 3, "old matches are replaced, not accumulated")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetBracket(t *testing.T) {
	event := &models.Event{ID: uuid.New(), Name: "Fall Open"}
	f := newBracketFixture(t, event)
	f.addParticipants(event.ID, 4)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.service.Reseed(context.Background(), event.ID)
	require.NoError(t, err)

	bracket, err := f.service.GetBracket(context.Background(), event.ID)
	require.NoError(t, err)

	assert.Equal(t, event.ID, bracket.Event.ID)
	assert.Len(t, bracket.Participants, 4)
	assert.Len(t, bracket.Matches, 3)
}

func TestGetBracketUnknownEvent(t *testing.T) {
	f := newBracketFixture(t)
	_, err := f.service.GetBracket(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegisterParticipant(t *testing.T) {
	event := &models.Event{ID: uuid.New(), Name: "Fall Open"}
	f := newBracketFixture(t, event)

	playerID := uuid.New()
	participant, err := f.service.RegisterParticipant(context.Background(), event.ID, RegisterParticipantInput{
		TeamName:  "  Dink Masters ",
		Player1ID: &playerID,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, participant.ID)
	assert.Equal(t, "Dink Masters", participant.TeamName)
	assert.Equal(t, playerID, *participant.Player1ID)
	assert.False(t, participant.CheckedIn)

	listed, err := f.participantRepo.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestRegisterParticipantValidation(t *testing.T) {
	event := &models.Event{ID: uuid.New()}
	f := newBracketFixture(t, event)

	_, err := f.service.RegisterParticipant(context.Background(), event.ID, RegisterParticipantInput{TeamName: "   "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	playerID := uuid.New()
	_, err = f.service.RegisterParticipant(context.Background(), event.ID, RegisterParticipantInput{
		TeamName:  "Solo Twice",
		Player1ID: &playerID,
		Player2ID: &playerID,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterParticipantUnknownEvent(t *testing.T) {
	f := newBracketFixture(t)
	_, err := f.service.RegisterParticipant(context.Background(), uuid.New(), RegisterParticipantInput{TeamName: "Ghosts"})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegisterParticipantRefusedAfterCompletedMatch(t *testing.T) {
	event := &models.Event{ID: uuid.New()}
	f := newBracketFixture(t, event)
	ids := f.addParticipants(event.ID, 2)

	done := &models.Match{
		ID:          uuid.New(),
		EventID:     event.ID,
		RoundNumber: 1,
		MatchNumber: 1,
		Team1ID:     &ids[0],
		Team2ID:     &ids[1],
		Status:      models.MatchStatusCompleted,
		WinnerID:    &ids[0],
	}
	require.NoError(t, f.matchRepo.CreateBatch(context.Background(), nil, []*models.Match{done}))

	_, err := f.service.RegisterParticipant(context.Background(), event.ID, RegisterParticipantInput{TeamName: "Latecomers"})
	assert.ErrorIs(t, err, ErrBracketLocked)
}

func TestSetCheckIn(t *testing.T) {
	event := &models.Event{ID: uuid.New()}
	f := newBracketFixture(t, event)
	ids := f.addParticipants(event.ID, 1)

	participant, err := f.service.SetCheckIn(context.Background(), event.ID, ids[0], true)
	require.NoError(t, err)
	assert.True(t, participant.CheckedIn)

	participant, err = f.service.SetCheckIn(context.Background(), event.ID, ids[0], false)
	require.NoError(t, err)
	assert.False(t, participant.CheckedIn)
}

func TestSetCheckInWrongEvent(t *testing.T) {
	event := &models.Event{ID: uuid.New()}
	f := newBracketFixture(t, event)
	ids := f.addParticipants(event.ID, 1)

	_, err := f.service.SetCheckIn(context.Background(), uuid.New(), ids[0], true)
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = f.service.SetCheckIn(context.Background(), event.ID, uuid.New(), true)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

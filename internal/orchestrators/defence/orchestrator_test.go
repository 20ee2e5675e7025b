package defence_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/active-defence/internal/engine"
	enginemock "github.com/KirkDiggler/active-defence/internal/engine/mock"
	"github.com/KirkDiggler/active-defence/internal/engine/rpgtoolkit"
	"github.com/KirkDiggler/active-defence/internal/errors"
	"github.com/KirkDiggler/active-defence/internal/orchestrators/defence"
	"github.com/KirkDiggler/active-defence/internal/pkg/idgen"
	idgenmock "github.com/KirkDiggler/active-defence/internal/pkg/idgen/mock"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
	dicesessionmock "github.com/KirkDiggler/active-defence/internal/repositories/dice_session/mock"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockEngine *enginemock.MockEngine
	mockRepo   *dicesessionmock.MockRepository
	service    defence.Service
	ctx        context.Context
	actor      *defence.Actor
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockEngine = enginemock.NewMockEngine(s.ctrl)
	s.mockRepo = dicesessionmock.NewMockRepository(s.ctrl)
	s.service = s.newService("", nil)
	s.ctx = context.Background()
	s.actor = &defence.Actor{ID: "actor_1", Name: "Brannoc", ArmourClass: 10}
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) newService(chatName string, bus events.EventBus) defence.Service {
	service, err := defence.NewOrchestrator(&defence.Config{
		Engine:          s.mockEngine,
		DiceSessionRepo: s.mockRepo,
		IDGenerator:     idgen.NewSequential("defence"),
		EventBus:        bus,
		ChatName:        chatName,
	})
	s.Require().NoError(err)
	return service
}

func normalRoll(face int) *engine.Roll {
	return &engine.Roll{
		Formula: "1d20",
		Terms:   []*engine.Term{d20Group(engine.KeepAll, engine.DieResult{Result: face})},
		Total:   face,
	}
}

func (s *OrchestratorTestSuite) expectHistory() *gomock.Call {
	return s.mockRepo.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(&dicesession.AppendOutput{Session: &dicesession.DiceSession{}}, nil)
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidation() {
	_, err := defence.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = defence.NewOrchestrator(&defence.Config{HistoryTTL: -time.Second})
	s.Require().Error(err)
	s.Contains(err.Error(), "Engine")
	s.Contains(err.Error(), "DiceSessionRepo")
	s.Contains(err.Error(), "IDGenerator")
	s.Contains(err.Error(), "HistoryTTL")
}

func (s *OrchestratorTestSuite) TestRollDefenceNormal() {
	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(normalRoll(15), nil)
	s.mockRepo.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input dicesession.AppendInput) (*dicesession.AppendOutput, error) {
			s.Equal("actor_1", input.EntityID)
			s.Equal(defence.HistoryContext, input.Context)
			s.Equal(defence.DefaultHistoryTTL, input.TTL)
			s.Require().Len(input.Rolls, 1)

			roll := input.Rolls[0]
			s.Equal("defence_1", roll.RollID)
			s.Equal("1d20", roll.Notation)
			s.Equal([]int32{15}, roll.Dice)
			s.Empty(roll.Dropped)
			s.Equal(int32(25), roll.Total)
			s.Equal(int32(15), roll.DiceTotal)
			s.Equal(int32(10), roll.Modifier)
			s.Equal("Defence Roll (normal, Public Roll)", roll.Description)
			return &dicesession.AppendOutput{Session: &dicesession.DiceSession{Rolls: input.Rolls}}, nil
		})

	output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{Actor: s.actor})
	s.Require().NoError(err)
	s.Equal("defence_1", output.RollID)
	s.Equal("Defence Roll", output.Title)
	s.Equal(25, output.Roll.AcceptedTotal)
	s.Nil(output.Roll.DiscardedDie)
	s.Equal(defence.OutcomeNormal, output.Outcome)
	s.Empty(output.Visibility.Whisper)
	s.False(output.ModifierRejected)
	s.Empty(output.Modifier)
}

func (s *OrchestratorTestSuite) TestRollDefenceTitle() {
	service := s.newService("Parry!", nil)

	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(normalRoll(8), nil)
	s.expectHistory()

	output, err := service.RollDefence(s.ctx, &defence.RollDefenceInput{
		Actor:       s.actor,
		TitleSuffix: "Shield",
	})
	s.Require().NoError(err)
	s.Equal("Parry! - Shield", output.Title)
}

func (s *OrchestratorTestSuite) TestRollDefenceAppliesModifier() {
	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20 + 1d4+2").Return(&engine.Roll{
		Formula: "1d20 + 1d4 + 2",
		Terms: []*engine.Term{
			d20Group(engine.KeepAll, engine.DieResult{Result: 11}),
			{Operator: engine.OpAdd, Count: 1, Faces: 4, Results: []engine.DieResult{{Result: 2}}},
			{Operator: engine.OpAdd, Constant: 2},
		},
		Total: 15,
	}, nil)
	s.expectHistory()

	output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{
		Actor:    s.actor,
		Modifier: "1d4+2",
	})
	s.Require().NoError(err)
	s.Equal(" + 1d4+2", output.Modifier)
	s.Equal(21, output.Roll.AcceptedTotal)
	s.Equal(15, output.Roll.FormulaTotal)
}

func (s *OrchestratorTestSuite) TestRollDefenceIgnoresInvalidModifier() {
	s.mockEngine.EXPECT().Roll(gomock.Any(), "2d20kh").Return(&engine.Roll{
		Formula: "2d20kh",
		Terms: []*engine.Term{d20Group(engine.KeepHighest,
			engine.DieResult{Result: 20},
			engine.DieResult{Result: 4, Discarded: true},
		)},
		Total: 20,
	}, nil)
	s.expectHistory()

	output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{
		Actor:    s.actor,
		RollType: defence.RollTypeAdvantage,
		Modifier: "1d4++2",
	})
	s.Require().NoError(err)
	s.True(output.ModifierRejected)
	s.Empty(output.Modifier)
	s.Equal(30, output.Roll.AcceptedTotal)
	s.Equal(defence.OutcomeCritical, output.Outcome)
}

func (s *OrchestratorTestSuite) TestRollDefenceIgnoresUnrollableModifier() {
	adapter, err := rpgtoolkit.NewAdapter(&rpgtoolkit.AdapterConfig{DiceRoller: dice.DefaultRoller})
	s.Require().NoError(err)

	service, err := defence.NewOrchestrator(&defence.Config{
		Engine:          adapter,
		DiceSessionRepo: dicesession.NewInMemory(nil),
		IDGenerator:     idgen.NewSequential("defence"),
	})
	s.Require().NoError(err)

	for _, raw := range []string{"+200d6", "0d6", "1d0", "/0", "99999999999999999999", "1d4/0"} {
		s.Run(raw, func() {
			output, err := service.RollDefence(s.ctx, &defence.RollDefenceInput{
				Actor:    s.actor,
				Modifier: raw,
			})
			s.Require().NoError(err)
			s.True(output.ModifierRejected)
			s.Empty(output.Modifier)
			s.Equal("1d20", output.Roll.UsedExpression)
			s.Equal(output.Roll.AcceptedDie+10, output.Roll.AcceptedTotal)
		})
	}
}

func (s *OrchestratorTestSuite) TestRollDefenceFumble() {
	s.mockEngine.EXPECT().Roll(gomock.Any(), "2d20kl").Return(&engine.Roll{
		Terms: []*engine.Term{d20Group(engine.KeepLowest,
			engine.DieResult{Result: 1},
			engine.DieResult{Result: 17, Discarded: true},
		)},
		Total: 1,
	}, nil)
	s.expectHistory()

	output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{
		Actor:    s.actor,
		RollType: defence.RollTypeDisadvantage,
	})
	s.Require().NoError(err)
	s.Equal(defence.OutcomeFumble, output.Outcome)
	s.Equal(11, output.Roll.AcceptedTotal)
}

func (s *OrchestratorTestSuite) TestRollDefenceVisibility() {
	users := []defence.User{
		{ID: "gm_1", IsGM: true},
		{ID: "player_1"},
		{ID: "gm_2", IsGM: true},
	}

	testCases := []struct {
		name    string
		mode    defence.RollMode
		whisper []string
		blind   bool
	}{
		{name: "public", mode: defence.RollModePublic},
		{name: "private gm", mode: defence.RollModePrivateGM, whisper: []string{"gm_1", "gm_2"}},
		{name: "blind gm", mode: defence.RollModeBlindGM, whisper: []string{"gm_1", "gm_2"}, blind: true},
		{name: "self", mode: defence.RollModeSelf, whisper: []string{"player_1"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(normalRoll(10), nil)
			s.expectHistory()

			output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{
				Actor:       s.actor,
				RequestedBy: "player_1",
				Users:       users,
				RollMode:    tc.mode,
			})
			s.Require().NoError(err)
			if tc.whisper == nil {
				s.Empty(output.Visibility.Whisper)
			} else {
				s.Equal(tc.whisper, output.Visibility.Whisper)
			}
			s.Equal(tc.blind, output.Visibility.Blind)
		})
	}
}

func (s *OrchestratorTestSuite) TestRollDefenceEngineFailure() {
	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(&engine.Roll{}, nil)

	output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{Actor: s.actor})
	s.Require().Error(err)
	s.Nil(output)
	s.True(errors.IsRollEngine(err))
}

func (s *OrchestratorTestSuite) TestRollDefenceGeneratesIDOnlyOnSuccess() {
	mockIDs := idgenmock.NewMockGenerator(s.ctrl)
	service, err := defence.NewOrchestrator(&defence.Config{
		Engine:          s.mockEngine,
		DiceSessionRepo: s.mockRepo,
		IDGenerator:     mockIDs,
	})
	s.Require().NoError(err)

	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(nil, errors.Internal("no dice"))
	_, err = service.RollDefence(s.ctx, &defence.RollDefenceInput{Actor: s.actor})
	s.Require().Error(err)

	mockIDs.EXPECT().Generate().Return("defence-abc")
	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(normalRoll(3), nil)
	s.expectHistory()

	output, err := service.RollDefence(s.ctx, &defence.RollDefenceInput{Actor: s.actor})
	s.Require().NoError(err)
	s.Equal("defence-abc", output.RollID)
}

func (s *OrchestratorTestSuite) TestRollDefenceHistoryFailureIsTolerated() {
	s.mockEngine.EXPECT().Roll(gomock.Any(), "1d20").Return(normalRoll(12), nil)
	s.mockRepo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, errors.Unavailable("redis down"))

	output, err := s.service.RollDefence(s.ctx, &defence.RollDefenceInput{Actor: s.actor})
	s.Require().NoError(err)
	s.Equal(22, output.Roll.AcceptedTotal)
}

func (s *OrchestratorTestSuite) TestRollDefenceValidation() {
	testCases := []struct {
		name  string
		input *defence.RollDefenceInput
		field string
	}{
		{name: "nil input", input: nil, field: "input is required"},
		{name: "missing actor", input: &defence.RollDefenceInput{}, field: "Actor"},
		{name: "missing actor id", input: &defence.RollDefenceInput{Actor: &defence.Actor{}}, field: "Actor.ID"},
		{
			name:  "bad roll type",
			input: &defence.RollDefenceInput{Actor: &defence.Actor{ID: "a"}, RollType: defence.RollType(9)},
			field: "RollType",
		},
		{
			name:  "bad roll mode",
			input: &defence.RollDefenceInput{Actor: &defence.Actor{ID: "a"}, RollMode: defence.RollMode(9)},
			field: "RollMode",
		},
		{
			name:  "self roll without requester",
			input: &defence.RollDefenceInput{Actor: &defence.Actor{ID: "a"}, RollMode: defence.RollModeSelf},
			field: "RequestedBy",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.RollDefence(s.ctx, tc.input)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Contains(err.Error(), tc.field)
		})
	}
}

func (s *OrchestratorTestSuite) TestRollDefencePublishesEvent() {
	bus := events.NewBus()
	service := s.newService("", bus)

	var received events.Event
	bus.SubscribeFunc(defence.EventDefenceRolled, 0, func(_ context.Context, e events.Event) error {
		received = e
		return nil
	})

	s.mockEngine.EXPECT().Roll(gomock.Any(), "2d20kh").Return(&engine.Roll{
		Terms: []*engine.Term{d20Group(engine.KeepHighest,
			engine.DieResult{Result: 6, Discarded: true},
			engine.DieResult{Result: 14},
		)},
		Total: 14,
	}, nil)
	s.expectHistory()

	_, err := service.RollDefence(s.ctx, &defence.RollDefenceInput{
		Actor:    s.actor,
		RollType: defence.RollTypeAdvantage,
	})
	s.Require().NoError(err)

	s.Require().NotNil(received)
	s.Equal("actor_1", received.Source().GetID())

	total, ok := received.Context().Get(defence.EventKeyAcceptedTotal)
	s.True(ok)
	s.Equal(24, total)

	discarded, ok := received.Context().Get(defence.EventKeyDiscardedDie)
	s.True(ok)
	s.Equal(6, discarded)
}

func (s *OrchestratorTestSuite) TestGetHistory() {
	session := &dicesession.DiceSession{EntityID: "actor_1", Context: defence.HistoryContext}
	s.mockRepo.EXPECT().
		Get(s.ctx, dicesession.GetInput{EntityID: "actor_1", Context: defence.HistoryContext}).
		Return(&dicesession.GetOutput{Session: session}, nil)

	output, err := s.service.GetHistory(s.ctx, &defence.GetHistoryInput{ActorID: "actor_1"})
	s.Require().NoError(err)
	s.Equal(session, output.Session)

	_, err = s.service.GetHistory(s.ctx, &defence.GetHistoryInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGetHistoryNotFound() {
	s.mockRepo.EXPECT().
		Get(s.ctx, gomock.Any()).
		Return(nil, errors.NotFound("dice session not found"))

	_, err := s.service.GetHistory(s.ctx, &defence.GetHistoryInput{ActorID: "actor_1"})
	s.True(errors.IsNotFound(err))
}

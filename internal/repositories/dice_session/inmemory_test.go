package dicesession_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/active-defence/internal/errors"
	mockclock "github.com/KirkDiggler/active-defence/internal/pkg/clock/mock"
	dicesession "github.com/KirkDiggler/active-defence/internal/repositories/dice_session"
)

type InMemoryRepositoryTestSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	clock *mockclock.MockClock
	repo  *dicesession.InMemoryRepository
	ctx   context.Context
	now   time.Time
}

func TestInMemoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(InMemoryRepositoryTestSuite))
}

func (s *InMemoryRepositoryTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.clock = mockclock.NewMockClock(s.ctrl)
	s.now = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()
	s.repo = dicesession.NewInMemory(s.clock)
	s.ctx = context.Background()
}

func (s *InMemoryRepositoryTestSuite) TestAppendAndGet() {
	for _, id := range []string{"roll_1", "roll_2"} {
		_, err := s.repo.Append(s.ctx, dicesession.AppendInput{
			EntityID: testEntityID,
			Context:  testContext,
			Rolls:    []dicesession.DiceRoll{testRoll(id, 15)},
		})
		s.Require().NoError(err)
	}

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: testEntityID, Context: testContext})
	s.Require().NoError(err)
	s.Len(got.Session.Rolls, 2)
	s.Equal(s.now.Add(dicesession.DefaultTTL), got.Session.ExpiresAt)
}

func (s *InMemoryRepositoryTestSuite) TestGetReturnsCopy() {
	_, err := s.repo.Append(s.ctx, dicesession.AppendInput{
		EntityID: testEntityID,
		Context:  testContext,
		Rolls:    []dicesession.DiceRoll{testRoll("roll_1", 15)},
	})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: testEntityID, Context: testContext})
	s.Require().NoError(err)
	got.Session.Rolls[0].Dice[0] = 99

	again, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: testEntityID, Context: testContext})
	s.Require().NoError(err)
	s.Equal(int32(10), again.Session.Rolls[0].Dice[0])
}

func (s *InMemoryRepositoryTestSuite) TestExpiry() {
	_, err := s.repo.Append(s.ctx, dicesession.AppendInput{
		EntityID: testEntityID,
		Context:  testContext,
		TTL:      time.Minute,
	})
	s.Require().NoError(err)

	s.now = s.now.Add(2 * time.Minute)

	_, err = s.repo.Get(s.ctx, dicesession.GetInput{EntityID: testEntityID, Context: testContext})
	s.True(errors.IsNotFound(err))

	output, err := s.repo.Append(s.ctx, dicesession.AppendInput{
		EntityID: testEntityID,
		Context:  testContext,
		Rolls:    []dicesession.DiceRoll{testRoll("roll_1", 15)},
	})
	s.Require().NoError(err)
	s.Equal(s.now, output.Session.CreatedAt)
}

func (s *InMemoryRepositoryTestSuite) TestDelete() {
	_, err := s.repo.Append(s.ctx, dicesession.AppendInput{
		EntityID: testEntityID,
		Context:  testContext,
		Rolls:    []dicesession.DiceRoll{testRoll("roll_1", 15)},
	})
	s.Require().NoError(err)

	output, err := s.repo.Delete(s.ctx, dicesession.DeleteInput{EntityID: testEntityID, Context: testContext})
	s.Require().NoError(err)
	s.Equal(int32(1), output.RollsDeleted)

	_, err = s.repo.Get(s.ctx, dicesession.GetInput{EntityID: testEntityID, Context: testContext})
	s.True(errors.IsNotFound(err))
}

func (s *InMemoryRepositoryTestSuite) TestConcurrentAppend() {
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.repo.Append(s.ctx, dicesession.AppendInput{
				EntityID: testEntityID,
				Context:  testContext,
				Rolls:    []dicesession.DiceRoll{testRoll("roll", 15)},
			})
		}()
	}
	wg.Wait()

	got, err := s.repo.Get(s.ctx, dicesession.GetInput{EntityID: testEntityID, Context: testContext})
	s.Require().NoError(err)
	s.Len(got.Session.Rolls, writers)
}

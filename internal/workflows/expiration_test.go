package workflows

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/activities"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

type ExpirationWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *ExpirationWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	// OnActivity by name requires the activity to be registered with the
	// test environment; mirror the worker's registration. The mock
	// intercepts every call, so the nil TicketExpirer is never reached.
	acts := activities.NewActivities(nil)
	s.env.RegisterActivityWithOptions(acts.ExpireTicket, activity.RegisterOptions{Name: "ExpireTicket"})
}

func (s *ExpirationWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func TestExpirationWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(ExpirationWorkflowTestSuite))
}

func (s *ExpirationWorkflowTestSuite) TestExpiresPendingTicket() {
	ticketID := uuid.New().String()
	s.env.OnActivity("ExpireTicket", mock.Anything, ticketID).Return(true, nil)

	s.env.ExecuteWorkflow(TicketExpirationWorkflow, models.TicketExpirationInput{
		TicketID:      ticketID,
		PendingWindow: 15 * time.Minute,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.TicketExpirationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.True(result.Expired)
}

func (s *ExpirationWorkflowTestSuite) TestNoOpWhenTicketAlreadyBooked() {
	ticketID := uuid.New().String()
	s.env.OnActivity("ExpireTicket", mock.Anything, ticketID).Return(false, nil)

	s.env.ExecuteWorkflow(TicketExpirationWorkflow, models.TicketExpirationInput{
		TicketID:      ticketID,
		PendingWindow: 15 * time.Minute,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.TicketExpirationResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.False(result.Expired)
}

func (s *ExpirationWorkflowTestSuite) TestActivityDoesNotFireBeforeWindow() {
	ticketID := uuid.New().String()
	s.env.OnActivity("ExpireTicket", mock.Anything, ticketID).Return(true, nil)

	s.env.RegisterDelayedCallback(func() {
		s.env.AssertNotCalled(s.T(), "ExpireTicket", mock.Anything, ticketID)
	}, 14*time.Minute)

	s.env.ExecuteWorkflow(TicketExpirationWorkflow, models.TicketExpirationInput{
		TicketID:      ticketID,
		PendingWindow: 15 * time.Minute,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *ExpirationWorkflowTestSuite) TestActivityFailurePropagates() {
	ticketID := uuid.New().String()
	s.env.OnActivity("ExpireTicket", mock.Anything, ticketID).
		Return(false, errors.New("database unavailable"))

	s.env.ExecuteWorkflow(TicketExpirationWorkflow, models.TicketExpirationInput{
		TicketID:      ticketID,
		PendingWindow: time.Minute,
	})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
	"github.com/taxdesk/vat_recon_app/internal/core/services"
)

// MockPeriodRepository is a mock type for the PeriodRepositoryFacade interface
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindPeriodResultByID(ctx context.Context, periodResultID string) (*domain.VATPeriodResult, error) {
	args := m.Called(ctx, periodResultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATPeriodResult), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodResultByKey(ctx context.Context, key domain.PeriodKey) (*domain.VATPeriodResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATPeriodResult), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriodResultsByClient(ctx context.Context, clientID string, year *int) ([]domain.VATPeriodResult, error) {
	args := m.Called(ctx, clientID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VATPeriodResult), args.Error(1)
}

func (m *MockPeriodRepository) FindLatestLockedBefore(ctx context.Context, clientID string, before time.Time) (*domain.VATPeriodResult, error) {
	args := m.Called(ctx, clientID, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATPeriodResult), args.Error(1)
}

func (m *MockPeriodRepository) HasLockedPeriodBefore(ctx context.Context, clientID string, before time.Time) (bool, error) {
	args := m.Called(ctx, clientID, before)
	return args.Bool(0), args.Error(1)
}

func (m *MockPeriodRepository) CreatePeriodResult(ctx context.Context, result domain.VATPeriodResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockPeriodRepository) UpdateCalculation(ctx context.Context, result domain.VATPeriodResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockPeriodRepository) LockPeriodResult(ctx context.Context, periodResultID string, lockedBy string, lockedAt time.Time) (*domain.VATPeriodResult, error) {
	args := m.Called(ctx, periodResultID, lockedBy, lockedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATPeriodResult), args.Error(1)
}

func (m *MockPeriodRepository) UnlockPeriodResult(ctx context.Context, periodResultID string, unlockedBy string, unlockedAt time.Time) (*domain.VATPeriodResult, error) {
	args := m.Called(ctx, periodResultID, unlockedBy, unlockedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATPeriodResult), args.Error(1)
}

// MockClientService is a mock type for the ClientSvcFacade interface
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ListClients(ctx context.Context, limit int, offset int) ([]domain.Client, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

// MockAggregator is a mock type for the VATAggregatorSvcFacade interface
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) GetTotals(ctx context.Context, clientID string, from, to time.Time) (*domain.VATTotals, error) {
	args := m.Called(ctx, clientID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATTotals), args.Error(1)
}

// --- Test Suite Setup ---

type PeriodServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockPeriodRepository
	mockClientSvc  *MockClientService
	mockAggregator *MockAggregator
	service        portssvc.PeriodSvcFacade

	clientID string
	userID   string
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockPeriodRepository)
	suite.mockClientSvc = new(MockClientService)
	suite.mockAggregator = new(MockAggregator)
	suite.service = services.NewPeriodService(suite.mockRepo, suite.mockClientSvc, suite.mockAggregator)
	suite.clientID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *PeriodServiceTestSuite) monthlyKey(year, month int) domain.PeriodKey {
	return domain.PeriodKey{
		ClientID:   suite.clientID,
		PeriodType: domain.PeriodTypeMonthly,
		Year:       year,
		Period:     month,
	}
}

// existingResult builds an unlocked stored record for the key with the given
// totals, already reconciled.
func (suite *PeriodServiceTestSuite) existingResult(key domain.PeriodKey, vatOutput, vatInput, previousCredit decimal.Decimal) *domain.VATPeriodResult {
	now := time.Now().UTC().Add(-time.Hour)
	r := &domain.VATPeriodResult{
		PeriodResultID: uuid.NewString(),
		PeriodKey:      key,
		StartDate:      key.StartDate(),
		EndDate:        key.EndDate(),
		VATOutput:      vatOutput,
		VATInput:       vatInput,
		PreviousCredit: previousCredit,
		CreditSource:   domain.CreditSourceAuto,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.userID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.userID,
		},
	}
	r.ApplyReconciliation(domain.Reconcile(vatOutput, vatInput, previousCredit))
	r.LastCalculatedAt = now
	return r
}

func (suite *PeriodServiceTestSuite) expectClient() {
	suite.mockClientSvc.On("GetClientByID", mock.Anything, suite.clientID).
		Return(&domain.Client{ClientID: suite.clientID, DisplayName: "ACME Srl"}, nil)
}

// --- Calculate ---

func (suite *PeriodServiceTestSuite) TestCalculate_CreatesNewPayablePeriod() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("CreatePeriodResult", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("1000"), InputVAT: dec("400")}, nil).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.True(result.Created)
	suite.True(dec("600").Equal(result.VATDifference))
	suite.True(dec("600").Equal(result.FinalResult))
	suite.True(result.IsPayable)
	suite.False(result.IsCredit)
	suite.True(result.CreditToNext.IsZero())
	suite.Equal(domain.CreditSourceAuto, result.CreditSource)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAggregator.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCalculate_CreditPositionWithCarryForward() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 4)

	prior := suite.existingResult(suite.monthlyKey(2025, 3), dec("100"), dec("150"), decimal.Zero)
	prior.CreditToNext = dec("50")

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(prior, nil)
	suite.mockRepo.On("CreatePeriodResult", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("200"), InputVAT: dec("500")}, nil).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.True(dec("50").Equal(result.PreviousCredit))
	suite.True(dec("-300").Equal(result.VATDifference))
	suite.True(dec("-350").Equal(result.FinalResult))
	suite.False(result.IsPayable)
	suite.True(result.IsCredit)
	suite.True(dec("350").Equal(result.CreditToNext))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCalculate_ZeroFinalCountsAsCredit() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 5)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("CreatePeriodResult", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("300"), InputVAT: dec("300")}, nil).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.True(result.FinalResult.IsZero())
	suite.False(result.IsPayable)
	suite.True(result.IsCredit)
	suite.True(result.CreditToNext.IsZero())
}

func (suite *PeriodServiceTestSuite) TestCalculate_CarriesCreditAcrossCadenceSwitch() {
	ctx := context.Background()
	// Client switched from monthly to quarterly filings; the quarterly period
	// still picks up the last locked monthly credit.
	key := domain.PeriodKey{
		ClientID:   suite.clientID,
		PeriodType: domain.PeriodTypeQuarterly,
		Year:       2025,
		Period:     2,
	}

	prior := suite.existingResult(suite.monthlyKey(2025, 3), dec("0"), dec("120"), decimal.Zero)
	prior.CreditToNext = dec("120.00")
	prior.IsLocked = true

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(prior, nil)
	suite.mockRepo.On("CreatePeriodResult", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("500"), InputVAT: dec("100")}, nil).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.True(dec("120.00").Equal(result.PreviousCredit))
	suite.True(dec("280").Equal(result.FinalResult))
	suite.True(result.IsPayable)
}

func (suite *PeriodServiceTestSuite) TestCalculate_InvalidKeyRejected() {
	ctx := context.Background()
	key := domain.PeriodKey{
		ClientID:   suite.clientID,
		PeriodType: domain.PeriodTypeQuarterly,
		Year:       2025,
		Period:     5,
	}

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindPeriodResultByKey", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCalculate_UnknownClientRejected() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	suite.mockClientSvc.On("GetClientByID", mock.Anything, suite.clientID).Return(nil, apperrors.ErrNotFound)

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(result)
}

func (suite *PeriodServiceTestSuite) TestCalculate_LockedPeriodRefused() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	stored := suite.existingResult(key, dec("1000"), dec("400"), decimal.Zero)
	stored.IsLocked = true

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(stored, nil).Once()

	result, err := suite.service.Calculate(ctx, key, true, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrLocked)
	suite.Nil(result)
	suite.mockAggregator.AssertNotCalled(suite.T(), "GetTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCalculation", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCalculate_ExistingWithoutRecalculateSkipsAggregator() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	stored := suite.existingResult(key, dec("1000"), dec("400"), decimal.Zero)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(stored, nil).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("UpdateCalculation", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.False(result.Created)
	suite.True(dec("600").Equal(result.FinalResult))
	suite.mockAggregator.AssertNotCalled(suite.T(), "GetTotals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCalculate_AggregatorFailureLeavesRecordUntouched() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	stored := suite.existingResult(key, dec("1000"), dec("400"), decimal.Zero)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(stored, nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(nil, apperrors.ErrAggregatorUnavailable).Once()

	result, err := suite.service.Calculate(ctx, key, true, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAggregatorUnavailable)
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCalculation", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCalculate_FeedOutageOnFirstCalculateWritesNothing() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(nil, apperrors.ErrAggregatorUnavailable).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAggregatorUnavailable)
	suite.Nil(result)

	// Nothing was persisted, so a retry starts from a clean slate instead of
	// hitting a leftover zero-totals record.
	suite.mockRepo.AssertNotCalled(suite.T(), "CreatePeriodResult", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCalculation", mock.Anything, mock.Anything)

	// The retry sees the key as absent again and fetches fresh totals.
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("CreatePeriodResult", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("1000"), InputVAT: dec("400")}, nil).Once()

	retried, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.True(retried.Created)
	suite.True(dec("1000").Equal(retried.VATOutput))
	suite.True(dec("600").Equal(retried.FinalResult))
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAggregator.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCalculate_NegativeTotalsRejected() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	stored := suite.existingResult(key, dec("1000"), dec("400"), decimal.Zero)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(stored, nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("-10"), InputVAT: dec("400")}, nil).Once()

	result, err := suite.service.Calculate(ctx, key, true, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCalculation", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCalculate_ManualCreditSurvivesRecalculation() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	stored := suite.existingResult(key, dec("1000"), dec("400"), dec("75"))
	stored.CreditSource = domain.CreditSourceManual

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(stored, nil).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("1000"), InputVAT: dec("400")}, nil).Once()
	suite.mockRepo.On("UpdateCalculation", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()

	result, err := suite.service.Calculate(ctx, key, true, suite.userID)

	suite.Require().NoError(err)
	suite.True(dec("75").Equal(result.PreviousCredit))
	suite.Equal(domain.CreditSourceManual, result.CreditSource)
	suite.True(dec("525").Equal(result.FinalResult))
	suite.mockRepo.AssertNotCalled(suite.T(), "FindLatestLockedBefore", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestCalculate_CreateRaceReadsWinner() {
	ctx := context.Background()
	key := suite.monthlyKey(2025, 3)

	winner := suite.existingResult(key, dec("1000"), dec("400"), decimal.Zero)

	suite.expectClient()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAggregator.On("GetTotals", ctx, suite.clientID, key.StartDate(), key.EndDate()).
		Return(&domain.VATTotals{OutputVAT: dec("1000"), InputVAT: dec("400")}, nil).Once()
	suite.mockRepo.On("FindLatestLockedBefore", ctx, suite.clientID, key.StartDate()).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("CreatePeriodResult", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindPeriodResultByKey", ctx, key).Return(winner, nil).Once()
	suite.mockRepo.On("UpdateCalculation", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()

	result, err := suite.service.Calculate(ctx, key, false, suite.userID)

	suite.Require().NoError(err)
	suite.False(result.Created)
	suite.Equal(winner.PeriodResultID, result.PeriodResultID)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- SetCredit ---

func (suite *PeriodServiceTestSuite) TestSetCredit_Success() {
	ctx := context.Background()
	stored := suite.existingResult(suite.monthlyKey(2025, 1), dec("1000"), dec("400"), decimal.Zero)

	suite.mockRepo.On("FindPeriodResultByID", ctx, stored.PeriodResultID).Return(stored, nil).Once()
	suite.mockRepo.On("HasLockedPeriodBefore", ctx, suite.clientID, stored.StartDate).Return(false, nil).Once()
	suite.mockRepo.On("UpdateCalculation", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()

	result, err := suite.service.SetCredit(ctx, stored.PeriodResultID, dec("150.559"), false, suite.userID)

	suite.Require().NoError(err)
	suite.True(dec("150.55").Equal(result.PreviousCredit), "credit is truncated, not rounded")
	suite.Equal(domain.CreditSourceManual, result.CreditSource)
	suite.True(dec("449.45").Equal(result.FinalResult))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestSetCredit_NegativeRejected() {
	ctx := context.Background()

	result, err := suite.service.SetCredit(ctx, uuid.NewString(), dec("-10"), false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrNegativeCredit.Error())
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindPeriodResultByID", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestSetCredit_LockedRefused() {
	ctx := context.Background()
	stored := suite.existingResult(suite.monthlyKey(2025, 1), dec("1000"), dec("400"), decimal.Zero)
	stored.IsLocked = true

	suite.mockRepo.On("FindPeriodResultByID", ctx, stored.PeriodResultID).Return(stored, nil).Once()

	result, err := suite.service.SetCredit(ctx, stored.PeriodResultID, dec("50"), false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrLocked)
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCalculation", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestSetCredit_RefusedAfterPriorLock() {
	ctx := context.Background()
	stored := suite.existingResult(suite.monthlyKey(2025, 2), dec("1000"), dec("400"), dec("30"))

	suite.mockRepo.On("FindPeriodResultByID", ctx, stored.PeriodResultID).Return(stored, nil).Once()
	suite.mockRepo.On("HasLockedPeriodBefore", ctx, suite.clientID, stored.StartDate).Return(true, nil).Once()

	result, err := suite.service.SetCredit(ctx, stored.PeriodResultID, dec("999"), false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrManualCreditHeld.Error())
	suite.Nil(result)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCalculation", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestSetCredit_ForceBypassesPriorLockGuard() {
	ctx := context.Background()
	stored := suite.existingResult(suite.monthlyKey(2025, 2), dec("1000"), dec("400"), dec("30"))

	suite.mockRepo.On("FindPeriodResultByID", ctx, stored.PeriodResultID).Return(stored, nil).Once()
	suite.mockRepo.On("UpdateCalculation", ctx, mock.AnythingOfType("domain.VATPeriodResult")).Return(nil).Once()

	result, err := suite.service.SetCredit(ctx, stored.PeriodResultID, dec("999"), true, suite.userID)

	suite.Require().NoError(err)
	suite.True(dec("999").Equal(result.PreviousCredit))
	suite.mockRepo.AssertNotCalled(suite.T(), "HasLockedPeriodBefore", mock.Anything, mock.Anything, mock.Anything)
}

// --- Lock / Unlock ---

func (suite *PeriodServiceTestSuite) TestLock_Success() {
	ctx := context.Background()
	stored := suite.existingResult(suite.monthlyKey(2025, 3), dec("200"), dec("500"), decimal.Zero)
	locked := *stored
	locked.IsLocked = true
	now := time.Now().UTC()
	locked.LockedAt = &now

	suite.mockRepo.On("LockPeriodResult", ctx, stored.PeriodResultID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(&locked, nil).Once()

	result, err := suite.service.Lock(ctx, stored.PeriodResultID, suite.userID)

	suite.Require().NoError(err)
	suite.True(result.IsLocked)
	suite.Require().NotNil(result.LockedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestLock_AlreadyLocked() {
	ctx := context.Background()
	id := uuid.NewString()

	suite.mockRepo.On("LockPeriodResult", ctx, id, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrAlreadyLocked).Once()

	result, err := suite.service.Lock(ctx, id, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyLocked)
	suite.Nil(result)
}

func (suite *PeriodServiceTestSuite) TestUnlock_Success() {
	ctx := context.Background()
	stored := suite.existingResult(suite.monthlyKey(2025, 3), dec("200"), dec("500"), decimal.Zero)

	suite.mockRepo.On("UnlockPeriodResult", ctx, stored.PeriodResultID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(stored, nil).Once()

	result, err := suite.service.Unlock(ctx, stored.PeriodResultID, suite.userID)

	suite.Require().NoError(err)
	suite.False(result.IsLocked)
	suite.Nil(result.LockedAt)
}

func (suite *PeriodServiceTestSuite) TestUnlock_RefusedWhenLaterPeriodLocked() {
	ctx := context.Background()
	id := uuid.NewString()

	suite.mockRepo.On("UnlockPeriodResult", ctx, id, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrLaterPeriodLocked).Once()

	result, err := suite.service.Unlock(ctx, id, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrLaterPeriodLocked)
	suite.Nil(result)
}

// --- Reads ---

func (suite *PeriodServiceTestSuite) TestGetPeriodResult_NotFound() {
	ctx := context.Background()
	id := uuid.NewString()

	suite.mockRepo.On("FindPeriodResultByID", ctx, id).Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.GetPeriodResult(ctx, id)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(result)
}

func (suite *PeriodServiceTestSuite) TestListPeriodResults_FiltersByYear() {
	ctx := context.Background()
	year := 2025
	stored := suite.existingResult(suite.monthlyKey(2025, 1), dec("10"), dec("5"), decimal.Zero)

	suite.mockRepo.On("ListPeriodResultsByClient", ctx, suite.clientID, &year).
		Return([]domain.VATPeriodResult{*stored}, nil).Once()

	results, err := suite.service.ListPeriodResults(ctx, suite.clientID, &year)

	suite.Require().NoError(err)
	suite.Len(results, 1)
	// The caller has already resolved the client; the service goes straight
	// to the repository.
	suite.mockClientSvc.AssertNotCalled(suite.T(), "GetClientByID", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}

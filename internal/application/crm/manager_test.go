package crm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test doubles
// =============================================================================

type memRepo struct {
	mu      sync.Mutex
	entries map[string]*crm.Data
	loadErr error
	saves   int
}

func newMemRepo() *memRepo {
	return &memRepo{entries: map[string]*crm.Data{}}
}

func (r *memRepo) Load(_ context.Context, userID string) (*crm.Data, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	d, ok := r.entries[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d.Clone(), nil
}

func (r *memRepo) Save(_ context.Context, userID string, data *crm.Data) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = data.Clone()
	r.saves++
	return nil
}

func (r *memRepo) UserIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memRepo) stored(userID string) *crm.Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[userID]
}

// MockRepository is a mock implementation of crm.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Load(ctx context.Context, userID string) (*crm.Data, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Data), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, userID string, data *crm.Data) error {
	args := m.Called(ctx, userID, data)
	return args.Error(0)
}

func (m *MockRepository) UserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingObserver struct {
	ops  []string
	open int
}

func (o *recordingObserver) ObserveMutation(op string, _ error, _ time.Duration) {
	o.ops = append(o.ops, op)
}

func (o *recordingObserver) SetOpenManagers(n int) {
	o.open = n
}

// =============================================================================
// Fixtures
// =============================================================================

const testUser = "user_1"

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

func newInquiry(id string) crm.Inquiry {
	return crm.Inquiry{
		ID:             id,
		Name:           "Alice",
		Store:          "Sales",
		Contact:        "555-0101",
		InquiryType:    crm.InquiryTypeOther,
		IntentionLevel: crm.IntentionHigh,
		InquiryDate:    "2024-06-01",
		Status:         crm.StatusPending,
		CreatedAt:      "2024-06-01T00:00:00.000Z",
	}
}

func newOrder(id, clientID string) crm.Order {
	return crm.Order{
		ID:             id,
		ClientID:       clientID,
		OrderType:      crm.OrderTypeCustomGroup,
		OrderStatus:    crm.OrderPendingDeparture,
		CustomerSource: crm.SourceDirect,
		RouteName:      "Alps",
	}
}

func openEmpty(t *testing.T, policies Policies) (*Manager, *memRepo, *recordingPublisher) {
	t.Helper()
	repo := newMemRepo()
	repo.entries[testUser] = crm.NewEmptyData(identity.User{ID: testUser, Name: "Tester"})
	pub := &recordingPublisher{}
	m, err := Open(context.Background(), testUser, Dependencies{
		Repository: repo,
		Publisher:  pub,
		Policies:   policies,
		Now:        clock,
		Location:   time.UTC,
		MockSeed:   7,
	})
	require.NoError(t, err)
	return m, repo, pub
}

// =============================================================================
// Open
// =============================================================================

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("generates and persists mock data for a new user", func(t *testing.T) {
		repo := newMemRepo()
		m, err := Open(ctx, testUser, Dependencies{Repository: repo, Now: clock, Location: time.UTC, MockSeed: 1})
		require.NoError(t, err)

		data := m.Snapshot()
		assert.Len(t, data.Customers, MockCustomerCount)
		assert.Len(t, data.Clients, MockInquiryCount)
		assert.Len(t, data.Notifications, MockNotificationCount)
		won := 0
		for _, c := range data.Clients {
			if c.Status == crm.StatusWon {
				won++
			}
		}
		assert.Len(t, data.Orders, won)
		assert.Equal(t, "Gavano", data.User.Name)

		assert.Equal(t, 1, repo.saves)
		assert.Equal(t, data, repo.stored(testUser))
	})

	t.Run("uses the stored account profile", func(t *testing.T) {
		accounts := &MockAccountRepository{}
		accounts.On("List", mock.Anything).Return([]identity.Account{{User: identity.User{ID: testUser, Name: "Stored"}}}, nil)

		m, err := Open(ctx, testUser, Dependencies{Repository: newMemRepo(), Accounts: accounts, Now: clock, Location: time.UTC})
		require.NoError(t, err)
		assert.Equal(t, "Stored", m.Snapshot().User.Name)
	})

	t.Run("backfills missing customers", func(t *testing.T) {
		repo := newMemRepo()
		stored := crm.NewEmptyData(identity.User{ID: testUser})
		stored.Customers = nil
		stored.Clients = []crm.Inquiry{newInquiry("c1")}
		repo.entries[testUser] = stored

		m, err := Open(ctx, testUser, Dependencies{Repository: repo, Now: clock, Location: time.UTC})
		require.NoError(t, err)

		assert.Len(t, m.Snapshot().Customers, MockCustomerCount)
		assert.Len(t, m.Snapshot().Clients, 1)
		assert.Equal(t, 1, repo.saves)
		assert.Len(t, repo.stored(testUser).Customers, MockCustomerCount)
	})

	t.Run("resets corrupt data", func(t *testing.T) {
		repo := newMemRepo()
		repo.loadErr = crm.ErrCorruptData

		m, err := Open(ctx, testUser, Dependencies{Repository: repo, Now: clock, Location: time.UTC})
		require.NoError(t, err)

		assert.Empty(t, m.Snapshot().Clients)
		assert.NotNil(t, m.Snapshot().Customers)
		assert.Equal(t, 1, repo.saves)
	})

	t.Run("propagates other load errors", func(t *testing.T) {
		repo := newMemRepo()
		repo.loadErr = errors.New("connection refused")

		_, err := Open(ctx, testUser, Dependencies{Repository: repo})
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("requires a user", func(t *testing.T) {
		_, err := Open(ctx, "", Dependencies{Repository: newMemRepo()})
		assert.ErrorIs(t, err, shared.ErrNoCurrentUser)
	})
}

// MockAccountRepository is a mock implementation of identity.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) List(ctx context.Context) ([]identity.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAll(ctx context.Context, accounts []identity.Account) error {
	return m.Called(ctx, accounts).Error(0)
}

func (m *MockAccountRepository) CurrentUserID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAccountRepository) SetCurrentUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAccountRepository) ClearCurrentUserID(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAccountRepository) Remembered(ctx context.Context) (*identity.RememberedCredentials, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RememberedCredentials), args.Error(1)
}

func (m *MockAccountRepository) SetRemembered(ctx context.Context, creds identity.RememberedCredentials) error {
	return m.Called(ctx, creds).Error(0)
}

func (m *MockAccountRepository) ClearRemembered(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// =============================================================================
// Customers
// =============================================================================

func TestManager_Customers(t *testing.T) {
	ctx := context.Background()

	t.Run("add prepends and assigns id", func(t *testing.T) {
		m, _, pub := openEmpty(t, DefaultPolicies())
		first, err := m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Sales", Contact: "1"})
		require.NoError(t, err)
		second, err := m.AddCustomer(ctx, crm.Customer{Name: "Bob", Store: "Sales", Contact: "2"})
		require.NoError(t, err)

		assert.NotEmpty(t, first.ID)
		assert.Equal(t, "2024-06-15T10:00:00.000Z", first.CreatedAt)
		customers := m.Snapshot().Customers
		require.Len(t, customers, 2)
		assert.Equal(t, second.ID, customers[0].ID)
		assert.Equal(t, []string{crm.EventCustomerCreated, crm.EventCustomerCreated}, pub.types())
	})

	t.Run("duplicate name and store is rejected", func(t *testing.T) {
		m, repo, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Sales", Contact: "1"})
		require.NoError(t, err)
		saves := repo.saves

		_, err = m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Sales", Contact: "2"})
		assert.ErrorIs(t, err, crm.ErrCustomerExists)
		assert.Equal(t, saves, repo.saves)

		_, err = m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Finance", Contact: "2"})
		assert.NoError(t, err)
	})

	t.Run("missing fields are invalid", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddCustomer(ctx, crm.Customer{Name: "Ann"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("update is idempotent and propagates to inquiries", func(t *testing.T) {
		m, repo, _ := openEmpty(t, DefaultPolicies())
		c, err := m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Sales", Contact: "1"})
		require.NoError(t, err)
		inq := newInquiry("")
		inq.CustomerID = c.ID
		_, err = m.AddInquiry(ctx, inq)
		require.NoError(t, err)

		c.Name = "Anne"
		c.Contact = "99"
		require.NoError(t, m.UpdateCustomer(ctx, c))
		afterFirst := repo.stored(testUser).Customers
		require.NoError(t, m.UpdateCustomer(ctx, c))
		assert.Equal(t, afterFirst, repo.stored(testUser).Customers)

		linked := m.Snapshot().Clients[0]
		assert.Equal(t, "Anne", linked.Name)
		assert.Equal(t, "99", linked.Contact)
	})

	t.Run("update of unknown id", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		err := m.UpdateCustomer(ctx, crm.Customer{ID: "nope", Name: "A", Store: "B", Contact: "C"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestManager_DeleteCustomerPolicies(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, policy crm.CustomerDeletePolicy) (*Manager, crm.Customer, crm.Inquiry) {
		m, _, _ := openEmpty(t, Policies{CustomerDelete: policy, EnforceReferences: true})
		c, err := m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Sales", Contact: "1"})
		require.NoError(t, err)
		inq := newInquiry("c1")
		inq.CustomerID = c.ID
		inq, err = m.AddInquiry(ctx, inq)
		require.NoError(t, err)
		_, err = m.AddOrder(ctx, newOrder("o1", inq.ID))
		require.NoError(t, err)
		return m, c, inq
	}

	t.Run("keep leaves a dangling reference", func(t *testing.T) {
		m, c, inq := setup(t, crm.DeleteKeep)
		before := m.Snapshot().Clients

		require.NoError(t, m.DeleteCustomer(ctx, c.ID))

		data := m.Snapshot()
		assert.Empty(t, data.Customers)
		assert.Equal(t, before, data.Clients)
		assert.Equal(t, c.ID, data.Clients[0].CustomerID)
		assert.Equal(t, inq.ID, data.Orders[0].ClientID)
	})

	t.Run("unlink clears the reference", func(t *testing.T) {
		m, c, _ := setup(t, crm.DeleteUnlink)
		require.NoError(t, m.DeleteCustomer(ctx, c.ID))
		data := m.Snapshot()
		require.Len(t, data.Clients, 1)
		assert.Empty(t, data.Clients[0].CustomerID)
	})

	t.Run("cascade removes inquiries and their orders", func(t *testing.T) {
		m, c, _ := setup(t, crm.DeleteCascade)
		require.NoError(t, m.DeleteCustomer(ctx, c.ID))
		data := m.Snapshot()
		assert.Empty(t, data.Clients)
		assert.Empty(t, data.Orders)
	})
}

// =============================================================================
// Inquiries and orders
// =============================================================================

func TestManager_Inquiries(t *testing.T) {
	ctx := context.Background()

	t.Run("fills blank fields from the customer", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		c, err := m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Finance", Contact: "42"})
		require.NoError(t, err)

		inq := newInquiry("")
		inq.Name, inq.Store, inq.Contact = "", "", ""
		inq.CustomerID = c.ID
		got, err := m.AddInquiry(ctx, inq)
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.Name)
		assert.Equal(t, "Finance", got.Store)
		assert.Equal(t, "42", got.Contact)
	})

	t.Run("unknown customer is rejected when references are enforced", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		inq := newInquiry("")
		inq.CustomerID = "ghost"
		_, err := m.AddInquiry(ctx, inq)
		assert.ErrorIs(t, err, crm.ErrReferenceNotFound)
	})

	t.Run("unknown customer is accepted when references are not enforced", func(t *testing.T) {
		m, _, _ := openEmpty(t, Policies{})
		inq := newInquiry("")
		inq.CustomerID = "ghost"
		_, err := m.AddInquiry(ctx, inq)
		assert.NoError(t, err)
	})

	t.Run("terminal status clears follow-up date", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		inq := newInquiry("c1")
		inq.Status = crm.StatusExpired
		inq.FollowUpDate = strPtr("2024-07-01")
		got, err := m.AddInquiry(ctx, inq)
		require.NoError(t, err)
		assert.Nil(t, got.FollowUpDate)
	})

	t.Run("delete cascades to history, orders and failure reason", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		for _, id := range []string{"x", "y"} {
			_, err := m.AddInquiry(ctx, newInquiry(id))
			require.NoError(t, err)
		}
		_, err := m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "x", Status: crm.StatusInProgress}, nil)
		require.NoError(t, err)
		_, err = m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "x", Status: crm.StatusLost},
			&crm.FailureDetails{Reason: crm.FailurePrice, Detail: "too expensive"})
		require.NoError(t, err)
		_, err = m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "y", Status: crm.StatusInProgress}, nil)
		require.NoError(t, err)
		for _, o := range []crm.Order{newOrder("o1", "x"), newOrder("o2", "x"), newOrder("o3", "y")} {
			_, err = m.AddOrder(ctx, o)
			require.NoError(t, err)
		}

		before := m.Snapshot()
		require.NoError(t, m.DeleteInquiry(ctx, "x"))
		after := m.Snapshot()

		assert.Len(t, after.Clients, 1)
		assert.Len(t, after.FollowUpHistory, len(before.FollowUpHistory)-2)
		assert.Len(t, after.Orders, len(before.Orders)-2)
		for _, r := range after.FollowUpHistory {
			assert.NotEqual(t, "x", r.ClientID)
		}
		for _, o := range after.Orders {
			assert.NotEqual(t, "x", o.ClientID)
		}
		assert.NotContains(t, after.FailureReasons, "x")
	})

	t.Run("delete of unknown id", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		assert.ErrorIs(t, m.DeleteInquiry(ctx, "nope"), crm.ErrInquiryNotFound)
	})
}

func TestManager_Orders(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns number and client name", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)

		o, err := m.AddOrder(ctx, newOrder("", "c1"))
		require.NoError(t, err)
		assert.Equal(t, "ORD20240001", o.OrderNumber)
		assert.Equal(t, "Alice", o.ClientName)
		assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	})

	t.Run("unknown inquiry is rejected", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddOrder(ctx, newOrder("", "ghost"))
		assert.ErrorIs(t, err, crm.ErrReferenceNotFound)
	})

	t.Run("update stamps updatedAt and keeps createdAt", func(t *testing.T) {
		m, _, pub := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)
		o := newOrder("o1", "c1")
		o.CreatedAt = "2024-01-01T00:00:00.000Z"
		o.UpdatedAt = o.CreatedAt
		_, err = m.AddOrder(ctx, o)
		require.NoError(t, err)

		o.CreatedAt = ""
		o.RouteName = "Fjords"
		require.NoError(t, m.UpdateOrder(ctx, o))

		got := m.Snapshot().Orders[0]
		assert.Equal(t, "Fjords", got.RouteName)
		assert.Equal(t, "2024-01-01T00:00:00.000Z", got.CreatedAt)
		assert.Equal(t, "2024-06-15T10:00:00.000Z", got.UpdatedAt)
		assert.Contains(t, pub.types(), crm.EventOrderUpdated)
	})

	t.Run("delete", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)
		_, err = m.AddOrder(ctx, newOrder("o1", "c1"))
		require.NoError(t, err)

		require.NoError(t, m.DeleteOrder(ctx, "o1"))
		assert.Empty(t, m.Snapshot().Orders)
		assert.ErrorIs(t, m.DeleteOrder(ctx, "o1"), crm.ErrOrderNotFound)
	})
}

// =============================================================================
// Follow-ups
// =============================================================================

func TestManager_AddFollowUp(t *testing.T) {
	ctx := context.Background()

	t.Run("won follow-up patches the inquiry atomically", func(t *testing.T) {
		m, repo, _ := openEmpty(t, DefaultPolicies())
		inq := newInquiry("c1")
		inq.FollowUpDate = strPtr("2024-06-20")
		inq.FollowUpCount = 2
		_, err := m.AddInquiry(ctx, inq)
		require.NoError(t, err)
		saves := repo.saves

		rec, err := m.AddFollowUp(ctx, crm.FollowUpRecord{
			ClientID:         "c1",
			Status:           crm.StatusWon,
			NextFollowUpDate: strPtr("2024-06-30"),
			Notes:            "signed",
		}, nil)
		require.NoError(t, err)
		assert.Nil(t, rec.NextFollowUpDate)

		data := m.Snapshot()
		history := data.FollowUpsFor("c1")
		require.Len(t, history, 1)
		assert.Equal(t, rec.ID, history[0].ID)
		got, _ := data.FindInquiry("c1")
		assert.Equal(t, crm.StatusWon, got.Status)
		assert.Nil(t, got.FollowUpDate)
		assert.Equal(t, 3, got.FollowUpCount)
		assert.Equal(t, saves+1, repo.saves)
	})

	t.Run("open follow-up sets the next date", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)

		_, err = m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "c1", Status: crm.StatusInProgress, NextFollowUpDate: strPtr("2024-06-30")}, nil)
		require.NoError(t, err)

		got, _ := m.Snapshot().FindInquiry("c1")
		require.NotNil(t, got.FollowUpDate)
		assert.Equal(t, "2024-06-30", *got.FollowUpDate)
		assert.Equal(t, crm.StatusInProgress, got.Status)
	})

	t.Run("lost follow-up upserts the failure reason", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)

		rec, err := m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "c1", Status: crm.StatusLost},
			&crm.FailureDetails{Reason: crm.FailureBudget, Detail: "  no budget  "})
		require.NoError(t, err)
		assert.Equal(t, crm.FailureBudget, rec.FailureReason)
		assert.Equal(t, "no budget", rec.FailureReasonDetail)

		fr, ok := m.Snapshot().FailureReasons["c1"]
		require.True(t, ok)
		assert.Equal(t, crm.FailureReason{Reason: "客户预算不足", Detail: "no budget", Date: "2024-06-15T10:00:00.000Z"}, fr)
	})

	t.Run("lost follow-up with empty detail is rejected", func(t *testing.T) {
		m, repo, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)
		saves := repo.saves

		_, err = m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "c1", Status: crm.StatusLost},
			&crm.FailureDetails{Reason: crm.FailurePrice, Detail: " "})
		assert.ErrorIs(t, err, crm.ErrFailureDetailRequired)
		assert.Equal(t, saves, repo.saves)
		assert.Empty(t, m.Snapshot().FollowUpHistory)
	})

	t.Run("lost follow-up without details is rejected", func(t *testing.T) {
		m, repo, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)
		saves := repo.saves

		_, err = m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "c1", Status: crm.StatusLost}, nil)
		assert.ErrorIs(t, err, crm.ErrFailureDetailRequired)
		assert.Equal(t, saves, repo.saves)

		data := m.Snapshot()
		assert.Empty(t, data.FollowUpHistory)
		assert.NotContains(t, data.FailureReasons, "c1")
		got, _ := data.FindInquiry("c1")
		assert.NotEqual(t, crm.StatusLost, got.Status)
	})

	t.Run("unknown inquiry", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		_, err := m.AddFollowUp(ctx, crm.FollowUpRecord{ClientID: "ghost", Status: crm.StatusInProgress}, nil)
		assert.ErrorIs(t, err, crm.ErrReferenceNotFound)
	})
}

func TestManager_DeleteFollowUp(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, revert bool) (*Manager, crm.FollowUpRecord) {
		m, _, _ := openEmpty(t, Policies{EnforceReferences: true, RevertFollowUpOnDelete: revert})
		_, err := m.AddInquiry(ctx, newInquiry("c1"))
		require.NoError(t, err)
		_, err = m.AddFollowUp(ctx, crm.FollowUpRecord{
			ClientID:         "c1",
			Date:             "2024-06-10T09:00:00.000Z",
			Status:           crm.StatusInProgress,
			NextFollowUpDate: strPtr("2024-06-20"),
		}, nil)
		require.NoError(t, err)
		last, err := m.AddFollowUp(ctx, crm.FollowUpRecord{
			ClientID: "c1",
			Date:     "2024-06-12T09:00:00.000Z",
			Status:   crm.StatusLost,
		}, &crm.FailureDetails{Reason: crm.FailureCompetitor, Detail: "went elsewhere"})
		require.NoError(t, err)
		return m, last
	}

	t.Run("leaves the inquiry untouched by default", func(t *testing.T) {
		m, last := setup(t, false)
		require.NoError(t, m.DeleteFollowUp(ctx, last.ID))

		data := m.Snapshot()
		assert.Len(t, data.FollowUpHistory, 1)
		got, _ := data.FindInquiry("c1")
		assert.Equal(t, crm.StatusLost, got.Status)
		assert.Equal(t, 2, got.FollowUpCount)
		assert.Contains(t, data.FailureReasons, "c1")
	})

	t.Run("reverts to the latest remaining record when enabled", func(t *testing.T) {
		m, last := setup(t, true)
		require.NoError(t, m.DeleteFollowUp(ctx, last.ID))

		data := m.Snapshot()
		got, _ := data.FindInquiry("c1")
		assert.Equal(t, crm.StatusInProgress, got.Status)
		require.NotNil(t, got.FollowUpDate)
		assert.Equal(t, "2024-06-20", *got.FollowUpDate)
		assert.Equal(t, 1, got.FollowUpCount)
		assert.NotContains(t, data.FailureReasons, "c1")
	})

	t.Run("unknown id", func(t *testing.T) {
		m, _, _ := openEmpty(t, DefaultPolicies())
		assert.ErrorIs(t, m.DeleteFollowUp(ctx, "nope"), crm.ErrFollowUpNotFound)
	})
}

// =============================================================================
// Notifications and persistence failures
// =============================================================================

func TestManager_Notifications(t *testing.T) {
	ctx := context.Background()
	m, _, pub := openEmpty(t, DefaultPolicies())

	n, err := m.PushNotification(ctx, crm.Notification{MessageKey: crm.MsgFollowUpDue, MessageParams: map[string]any{"count": 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{crm.EventNotificationReceived}, pub.types())

	require.NoError(t, m.ToggleNotificationPin(ctx, n.ID))
	require.NoError(t, m.ToggleNotificationStar(ctx, n.ID))
	require.NoError(t, m.MarkNotificationRead(ctx, n.ID))
	got := m.Snapshot().Notifications[0]
	assert.True(t, got.IsPinned)
	assert.True(t, got.IsStarred)
	assert.True(t, got.Read)
	assert.Len(t, pub.types(), 1, "flag changes are not new notifications")

	_, err = m.PushNotification(ctx, crm.Notification{MessageKey: crm.MsgNewClient})
	require.NoError(t, err)
	require.NoError(t, m.MarkAllNotificationsRead(ctx))
	for _, n := range m.Snapshot().Notifications {
		assert.True(t, n.Read)
	}

	require.NoError(t, m.DeleteNotification(ctx, n.ID))
	assert.Len(t, m.Snapshot().Notifications, 1)
	assert.ErrorIs(t, m.DeleteNotification(ctx, n.ID), crm.ErrNotificationNotFound)

	require.NoError(t, m.ClearNotifications(ctx))
	assert.Empty(t, m.Snapshot().Notifications)

	replaced := []crm.Notification{{ID: "a"}, {ID: "b"}}
	require.NoError(t, m.UpdateNotifications(ctx, replaced))
	assert.Equal(t, replaced, m.Snapshot().Notifications)
	assert.Equal(t, 4, countType(pub.types(), crm.EventNotificationReceived))
}

func countType(types []string, want string) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}

func TestManager_Reload(t *testing.T) {
	ctx := context.Background()
	m, repo, pub := openEmpty(t, DefaultPolicies())

	stored := repo.stored(testUser).Clone()
	stored.Notifications = append(stored.Notifications, crm.Notification{ID: "external"})
	repo.entries[testUser] = stored

	require.NoError(t, m.Reload(ctx))
	assert.Len(t, m.Snapshot().Notifications, 1)
	assert.Equal(t, []string{crm.EventNotificationReceived}, pub.types())
}

func TestManager_SaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepository{}
	repo.On("Load", mock.Anything, testUser).Return(crm.NewEmptyData(identity.User{ID: testUser}), nil)
	repo.On("Save", mock.Anything, testUser, mock.Anything).Return(errors.New("disk full"))
	observer := &recordingObserver{}

	m, err := Open(ctx, testUser, Dependencies{Repository: repo, Observer: observer})
	require.NoError(t, err)

	_, err = m.AddCustomer(ctx, crm.Customer{Name: "Ann", Store: "Sales", Contact: "1"})
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, m.Snapshot().Customers)
	assert.Equal(t, []string{"add_customer"}, observer.ops)
	repo.AssertExpectations(t)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	observer := &recordingObserver{}
	svc := NewService(Dependencies{Repository: repo, Observer: observer, Now: clock, Location: time.UTC})

	a, err := svc.Manager(ctx, "a")
	require.NoError(t, err)
	again, err := svc.Manager(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = svc.Manager(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, svc.OpenCount())
	assert.Equal(t, 2, observer.open)

	ids, err := svc.UserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	svc.Evict("a")
	assert.Equal(t, 1, svc.OpenCount())
	assert.Equal(t, 1, observer.open)

	reopened, err := svc.Manager(ctx, "a")
	require.NoError(t, err)
	assert.NotSame(t, a, reopened)
	assert.Equal(t, a.Snapshot().Clients, reopened.Snapshot().Clients)
}

func TestNewPolicies(t *testing.T) {
	assert.Equal(t, DefaultPolicies(), NewPolicies("keep", false, true))
	p := NewPolicies("cascade", true, false)
	assert.Equal(t, crm.DeleteCascade, p.CustomerDelete)
	assert.True(t, p.RevertFollowUpOnDelete)
	assert.False(t, p.EnforceReferences)
}

func TestManager_LatestRecord(t *testing.T) {
	m, _, _ := openEmpty(t, DefaultPolicies())

	t.Run("skips unreadable dates", func(t *testing.T) {
		got, ok := m.latestRecord([]crm.FollowUpRecord{
			{ID: "bad", Date: "not a date", Status: crm.StatusLost},
			{ID: "old", Date: "2024-06-01T09:00:00.000Z", Status: crm.StatusInProgress},
			{ID: "older", Date: "2024-05-01T09:00:00.000Z", Status: crm.StatusPending},
		})
		require.True(t, ok)
		assert.Equal(t, "old", got.ID)
	})

	t.Run("falls back to stored order", func(t *testing.T) {
		got, ok := m.latestRecord([]crm.FollowUpRecord{
			{ID: "first", Date: "bad"},
			{ID: "second", Date: ""},
		})
		require.True(t, ok)
		assert.Equal(t, "first", got.ID)
	})

	t.Run("empty history", func(t *testing.T) {
		_, ok := m.latestRecord(nil)
		assert.False(t, ok)
	})
}

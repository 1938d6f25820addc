package notifications

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/modavia/backend/internal/models"
)

type mockCatalogSource struct {
	mock.Mock
}

func (m *mockCatalogSource) GetDetail(ctx context.Context, id uuid.UUID) (*models.CatalogDetail, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*models.CatalogDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecipientSource struct {
	mock.Mock
}

func (m *mockRecipientSource) ActiveClientsForBrand(ctx context.Context, brandID uuid.UUID) ([]Recipient, error) {
	args := m.Called(ctx, brandID)
	if r := args.Get(0); r != nil {
		return r.([]Recipient), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req EmailRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockPusher struct {
	mu     sync.Mutex
	pushed []uuid.UUID
}

func (m *mockPusher) PushNotification(userID uuid.UUID, n *models.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, userID)
}

func testCatalogDetail(brandID uuid.UUID) *models.CatalogDetail {
	return &models.CatalogDetail{
		Catalog: models.Catalog{
			ID:      uuid.New(),
			Code:    "CATG000000042",
			Name:    "FW25 Preorder",
			BrandID: brandID,
			Type:    models.CatalogTypePreorder,
			Season:  models.SeasonPreFallWinter,
			Year:    2025,
			Status:  models.CatalogStatusPublished,
		},
		BrandName: "Acme",
	}
}

func testRecipient(email string) Recipient {
	return Recipient{
		UserID:      uuid.New(),
		Email:       email,
		FirstName:   "Ada",
		LastName:    "Rossi",
		ClientID:    uuid.New(),
		CompanyName: "Rossi Retail",
	}
}

func TestNotifyCatalogPublication(t *testing.T) {
	brandID := uuid.New()
	detail := testCatalogDetail(brandID)
	wantSubject := "Acme PRE FW25 Preorders Open Now!"

	catalogs := new(mockCatalogSource)
	recipients := new(mockRecipientSource)
	store := new(mockStore)
	dispatcher := new(mockDispatcher)
	pusher := &mockPusher{}

	recs := []Recipient{testRecipient("a@rossi.example"), testRecipient("b@rossi.example")}
	catalogs.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	recipients.On("ActiveClientsForBrand", mock.Anything, brandID).Return(recs, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == models.NotificationTypeCatalogAdded &&
			n.Message == wantSubject &&
			n.BrandID != nil && *n.BrandID == brandID
	})).Return(nil).Times(2)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(req EmailRequest) bool {
		return req.Subject == wantSubject && req.CatalogCode == "CATG000000042"
	})).Return(nil).Times(2)

	p := NewPublisher(catalogs, recipients, store, dispatcher, pusher, 4, time.Second, nil)
	report, err := p.NotifyCatalogPublication(context.Background(), detail.ID, brandID)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Recipients)
	assert.Equal(t, 2, report.Notified)
	assert.Equal(t, 2, report.Emailed)
	assert.Empty(t, report.Failures)
	assert.False(t, report.Partial())
	assert.Len(t, pusher.pushed, 2)
	catalogs.AssertExpectations(t)
	recipients.AssertExpectations(t)
	store.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestNotifyCatalogPublicationNoRecipients(t *testing.T) {
	brandID := uuid.New()
	detail := testCatalogDetail(brandID)

	catalogs := new(mockCatalogSource)
	recipients := new(mockRecipientSource)
	store := new(mockStore)
	dispatcher := new(mockDispatcher)

	catalogs.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	recipients.On("ActiveClientsForBrand", mock.Anything, brandID).Return([]Recipient{}, nil)

	p := NewPublisher(catalogs, recipients, store, dispatcher, nil, 4, time.Second, nil)
	report, err := p.NotifyCatalogPublication(context.Background(), detail.ID, brandID)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Recipients)
	assert.Empty(t, report.Failures)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestNotifyCatalogPublicationCatalogLoadError(t *testing.T) {
	catalogs := new(mockCatalogSource)
	recipients := new(mockRecipientSource)

	catalogID := uuid.New()
	catalogs.On("GetDetail", mock.Anything, catalogID).Return(nil, errors.New("boom"))

	p := NewPublisher(catalogs, recipients, new(mockStore), new(mockDispatcher), nil, 4, time.Second, nil)
	report, err := p.NotifyCatalogPublication(context.Background(), catalogID, uuid.New())

	require.Error(t, err)
	assert.Nil(t, report)
	recipients.AssertNotCalled(t, "ActiveClientsForBrand", mock.Anything, mock.Anything)
}

func TestNotifyCatalogPublicationPartialFailure(t *testing.T) {
	brandID := uuid.New()
	detail := testCatalogDetail(brandID)

	failing := testRecipient("down@rossi.example")
	healthy := testRecipient("up@rossi.example")

	catalogs := new(mockCatalogSource)
	recipients := new(mockRecipientSource)
	store := new(mockStore)
	dispatcher := new(mockDispatcher)

	catalogs.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	recipients.On("ActiveClientsForBrand", mock.Anything, brandID).Return([]Recipient{failing, healthy}, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil).Times(2)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(req EmailRequest) bool {
		return req.To == failing.Email
	})).Return(errors.New("smtp down")).Once()
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(req EmailRequest) bool {
		return req.To == healthy.Email
	})).Return(nil).Once()

	p := NewPublisher(catalogs, recipients, store, dispatcher, nil, 4, time.Second, nil)
	report, err := p.NotifyCatalogPublication(context.Background(), detail.ID, brandID)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Recipients)
	assert.Equal(t, 2, report.Notified)
	assert.Equal(t, 1, report.Emailed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, failing.Email, report.Failures[0].Email)
	assert.Equal(t, "email", report.Failures[0].Stage)
	assert.True(t, report.Partial())
}

func TestNotifyCatalogPublicationInsertFailureStillEmails(t *testing.T) {
	brandID := uuid.New()
	detail := testCatalogDetail(brandID)
	rec := testRecipient("a@rossi.example")

	catalogs := new(mockCatalogSource)
	recipients := new(mockRecipientSource)
	store := new(mockStore)
	dispatcher := new(mockDispatcher)
	pusher := &mockPusher{}

	catalogs.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	recipients.On("ActiveClientsForBrand", mock.Anything, brandID).Return([]Recipient{rec}, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	p := NewPublisher(catalogs, recipients, store, dispatcher, pusher, 4, time.Second, nil)
	report, err := p.NotifyCatalogPublication(context.Background(), detail.ID, brandID)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Notified)
	assert.Equal(t, 1, report.Emailed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "notification", report.Failures[0].Stage)
	// No realtime push for a notification that was never persisted.
	assert.Empty(t, pusher.pushed)
	dispatcher.AssertExpectations(t)
}

func TestNotifyCatalogPublicationBoundsConcurrency(t *testing.T) {
	brandID := uuid.New()
	detail := testCatalogDetail(brandID)

	recs := make([]Recipient, 12)
	for i := range recs {
		recs[i] = testRecipient("client@rossi.example")
	}

	catalogs := new(mockCatalogSource)
	recipients := new(mockRecipientSource)
	store := new(mockStore)

	catalogs.On("GetDetail", mock.Anything, detail.ID).Return(detail, nil)
	recipients.On("ActiveClientsForBrand", mock.Anything, brandID).Return(recs, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)

	var inFlight, peak int32
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}).Return(nil)

	p := NewPublisher(catalogs, recipients, store, dispatcher, nil, 3, time.Second, nil)
	report, err := p.NotifyCatalogPublication(context.Background(), detail.ID, brandID)

	require.NoError(t, err)
	assert.Equal(t, 12, report.Emailed)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

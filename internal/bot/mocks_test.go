package bot_test

import (
	"context"
	"time"

	"tulumreporta/backend/internal/editlink"
	"tulumreporta/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) InsertReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockStorage) GetReportByID(id string) (*models.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) ListReportsByStatus(status string, ascending bool) ([]models.Report, error) {
	args := m.Called(status, ascending)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) UpdateReportStatus(id, status string, reason *string) (*models.Report, error) {
	args := m.Called(id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) UpdateReportLocation(id string, lat, lon float64, label string) (*models.Report, error) {
	args := m.Called(id, lat, lon, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) SaveEditToken(token *models.EditToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockStorage) GetEditTokenByShortID(shortID string) (*models.EditToken, error) {
	args := m.Called(shortID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EditToken), args.Error(1)
}

func (m *MockStorage) SeenDelivery(key string, window time.Duration) (bool, error) {
	args := m.Called(key, window)
	return args.Bool(0), args.Error(1)
}

// MockNotifier records every outbound message.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(recipientID, text string) error {
	args := m.Called(recipientID, text)
	return args.Error(0)
}

// Sent returns the texts sent to a recipient, in order.
func (m *MockNotifier) Sent(recipientID string) []string {
	var texts []string
	for _, call := range m.Calls {
		if call.Method == "Send" && call.Arguments.String(0) == recipientID {
			texts = append(texts, call.Arguments.String(1))
		}
	}
	return texts
}

// MockGeocoder resolves addresses from canned answers.
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	args := m.Called(address)
	return args.Get(0).(float64), args.Get(1).(float64), args.Bool(2), args.Error(3)
}

// MockFetcher stands in for the media pipeline.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, imageRef string) (string, error) {
	args := m.Called(imageRef)
	return args.String(0), args.Error(1)
}

// MockIssuer stands in for the edit-link resolver.
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(reportID, reporterID string) (*editlink.Issued, error) {
	args := m.Called(reportID, reporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*editlink.Issued), args.Error(1)
}

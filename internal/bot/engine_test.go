package bot_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tulumreporta/backend/internal/bot"
	"tulumreporta/backend/internal/config"
	"tulumreporta/backend/internal/editlink"
	"tulumreporta/backend/internal/models"
	"tulumreporta/backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	reporterID  = "5219841234567"
	adminChatID = "999"
)

type engineFixture struct {
	engine   *bot.Engine
	sessions *session.Store
	storage  *MockStorage
	notifier *MockNotifier
	geocoder *MockGeocoder
	fetcher  *MockFetcher
	issuer   *MockIssuer
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		sessions: session.NewStore(),
		storage:  new(MockStorage),
		notifier: new(MockNotifier),
		geocoder: new(MockGeocoder),
		fetcher:  new(MockFetcher),
		issuer:   new(MockIssuer),
	}
	f.notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	f.engine = &bot.Engine{
		Sessions:      f.sessions,
		Storage:       f.storage,
		Geocoder:      f.geocoder,
		Media:         f.fetcher,
		Notifier:      f.notifier,
		Links:         f.issuer,
		Bounds:        config.TulumBounds,
		PublicBaseURL: "https://bot.example.test",
		AdminChatID:   adminChatID,
	}
	return f
}

func textEvent(text string) models.InboundEvent {
	return models.InboundEvent{ReporterID: reporterID, Kind: models.EventText, Text: text}
}

func (f *engineFixture) handle(t *testing.T, ev models.InboundEvent) {
	t.Helper()
	require.NoError(t, f.engine.HandleEvent(context.Background(), ev))
}

// walkToStep drives a fresh session up to (but not through) the given step.
func (f *engineFixture) walkToStep(t *testing.T, step session.Step) {
	t.Helper()
	steps := []struct {
		target session.Step
		event  models.InboundEvent
	}{
		{session.StepAwaitingCategory, textEvent("hola")},
		{session.StepAwaitingSubcategory, textEvent("1")},
		{session.StepAwaitingPhoto, textEvent("1")},
		{session.StepAwaitingDescription, models.InboundEvent{ReporterID: reporterID, Kind: models.EventImage, ImageRef: "photo-1"}},
		{session.StepAwaitingLocation, textEvent("hoyo grande")},
		{session.StepAwaitingLandmark, textEvent("20.2,-87.4")},
		{session.StepAwaitingSeverity, textEvent("frente a tienda")},
	}
	for _, s := range steps {
		f.handle(t, s.event)
		if s.target == step {
			return
		}
	}
}

func TestEngine_FullConversationProducesPendingReport(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/reports/photo-1.jpg", nil)

	var inserted *models.Report
	f.storage.On("InsertReport", mock.AnythingOfType("*models.Report")).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*models.Report)
		inserted.ID = "report-1"
	}).Return(nil)
	f.issuer.On("Issue", "report-1", reporterID).Return(&editlink.Issued{ShortID: "abc12345", Token: "tok"}, nil)

	f.walkToStep(t, session.StepAwaitingSeverity)
	f.handle(t, textEvent("4"))

	require.NotNil(t, inserted)
	assert.Equal(t, "Calles y Carreteras 🚗", inserted.Category)
	assert.Equal(t, "Hoyo en la calle", inserted.Subcategory)
	assert.Equal(t, "hoyo grande", inserted.Description)
	assert.Equal(t, []string{"https://cdn.example.test/reports/photo-1.jpg"}, []string(inserted.PhotoURLs))
	assert.Equal(t, 20.2, inserted.Lat)
	assert.Equal(t, -87.4, inserted.Lon)
	assert.Equal(t, "frente a tienda", inserted.Landmark)
	assert.Equal(t, 4, inserted.Severity)
	assert.Equal(t, 8, inserted.Priority)
	assert.Equal(t, models.StatusPending, inserted.Status)

	// Reporter got the edit link and the admin got the alert.
	reporterMsgs := f.notifier.Sent(reporterID)
	require.NotEmpty(t, reporterMsgs)
	assert.Contains(t, reporterMsgs[len(reporterMsgs)-1], "/e/abc12345")
	assert.NotEmpty(t, f.notifier.Sent(adminChatID))

	// Session is back at the start with a clean draft.
	sess := f.sessions.Get(reporterID)
	assert.Equal(t, session.StepInitial, sess.Step)
	assert.Empty(t, sess.Draft.Category)
	f.storage.AssertNumberOfCalls(t, "InsertReport", 1)
}

func TestEngine_FreeFormCategorySkipsSubcategory(t *testing.T) {
	f := newEngineFixture()
	f.handle(t, textEvent("hola"))
	f.handle(t, textEvent("0"))

	sess := f.sessions.Get(reporterID)
	assert.Equal(t, session.StepAwaitingPhoto, sess.Step)
	assert.Equal(t, "Otro tipo de problema", sess.Draft.Category)
	assert.Equal(t, "Otro tipo de problema", sess.Draft.Subcategory)
}

func TestEngine_InvalidInputDoesNotAdvance(t *testing.T) {
	f := newEngineFixture()
	f.handle(t, textEvent("hola"))

	f.handle(t, textEvent("9"))
	assert.Equal(t, session.StepAwaitingCategory, f.sessions.Get(reporterID).Step)

	f.handle(t, textEvent("1"))
	f.handle(t, textEvent("no soy un número"))
	assert.Equal(t, session.StepAwaitingSubcategory, f.sessions.Get(reporterID).Step)

	f.handle(t, textEvent("1"))
	f.handle(t, textEvent("esto no es una foto"))
	assert.Equal(t, session.StepAwaitingPhoto, f.sessions.Get(reporterID).Step)
}

func TestEngine_OutOfRegionCoordinatesRejected(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil)
	f.walkToStep(t, session.StepAwaitingLocation)

	f.handle(t, textEvent("20.0,-90.0"))

	sess := f.sessions.Get(reporterID)
	assert.Equal(t, session.StepAwaitingLocation, sess.Step)
	assert.False(t, sess.Draft.HasCoords)
	msgs := f.notifier.Sent(reporterID)
	assert.Contains(t, msgs[len(msgs)-1], "no están en Tulum")
}

func TestEngine_NativeLocationShareTrustedAfterBoundsCheck(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil)
	f.walkToStep(t, session.StepAwaitingLocation)

	f.handle(t, models.InboundEvent{
		ReporterID: reporterID,
		Kind:       models.EventKindLocation,
		Location:   &models.EventLocation{Lat: 20.21, Lon: -87.46, Label: "Av. Tulum 123"},
	})

	sess := f.sessions.Get(reporterID)
	assert.Equal(t, session.StepAwaitingLandmark, sess.Step)
	assert.Equal(t, 20.21, sess.Draft.Lat)
	assert.Equal(t, "Av. Tulum 123", sess.Draft.AddressText)
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything)
}

func TestEngine_GeocodedAddress(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil)

	t.Run("hit inside region advances", func(t *testing.T) {
		f.walkToStep(t, session.StepAwaitingLocation)
		f.geocoder.On("Geocode", "calle sol s/n").Return(20.2, -87.45, true, nil).Once()

		f.handle(t, textEvent("calle sol s/n"))
		assert.Equal(t, session.StepAwaitingLandmark, f.sessions.Get(reporterID).Step)
	})

	f.sessions.Reset(reporterID)

	t.Run("hit outside region re-prompts", func(t *testing.T) {
		f.walkToStep(t, session.StepAwaitingLocation)
		f.geocoder.On("Geocode", "cancún centro").Return(21.16, -86.85, true, nil).Once()

		f.handle(t, textEvent("cancún centro"))
		assert.Equal(t, session.StepAwaitingLocation, f.sessions.Get(reporterID).Step)
	})

	f.sessions.Reset(reporterID)

	t.Run("miss re-prompts", func(t *testing.T) {
		f.walkToStep(t, session.StepAwaitingLocation)
		f.geocoder.On("Geocode", "dirección inventada").Return(0.0, 0.0, false, nil).Once()

		f.handle(t, textEvent("dirección inventada"))
		assert.Equal(t, session.StepAwaitingLocation, f.sessions.Get(reporterID).Step)
		msgs := f.notifier.Sent(reporterID)
		assert.Contains(t, msgs[len(msgs)-1], "No encontré")
	})
}

func TestEngine_GeocoderFailureKeepsSessionRetryable(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil)
	f.walkToStep(t, session.StepAwaitingLocation)
	f.geocoder.On("Geocode", "avenida kukulkán").Return(0.0, 0.0, false, errors.New("timeout")).Once()

	err := f.engine.HandleEvent(context.Background(), textEvent("avenida kukulkán"))
	assert.Error(t, err)
	assert.Equal(t, session.StepAwaitingLocation, f.sessions.Get(reporterID).Step)

	// Retry of the exact same input succeeds.
	f.geocoder.On("Geocode", "avenida kukulkán").Return(20.2, -87.45, true, nil).Once()
	f.handle(t, textEvent("avenida kukulkán"))
	assert.Equal(t, session.StepAwaitingLandmark, f.sessions.Get(reporterID).Step)
}

func TestEngine_PhotoUploadFailureKeepsSessionRetryable(t *testing.T) {
	f := newEngineFixture()
	f.walkToStep(t, session.StepAwaitingPhoto)

	imageEv := models.InboundEvent{ReporterID: reporterID, Kind: models.EventImage, ImageRef: "photo-1"}
	f.fetcher.On("Fetch", "photo-1").Return("", errors.New("s3 down")).Once()
	err := f.engine.HandleEvent(context.Background(), imageEv)
	assert.Error(t, err)
	assert.Equal(t, session.StepAwaitingPhoto, f.sessions.Get(reporterID).Step)

	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil).Once()
	f.handle(t, imageEv)
	assert.Equal(t, session.StepAwaitingDescription, f.sessions.Get(reporterID).Step)
}

func TestEngine_InsertFailureDoesNotLoseQuestionnaire(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil)
	f.walkToStep(t, session.StepAwaitingSeverity)

	f.storage.On("InsertReport", mock.AnythingOfType("*models.Report")).Return(errors.New("db down")).Once()
	err := f.engine.HandleEvent(context.Background(), textEvent("4"))
	assert.Error(t, err)

	// Session still at severity with the full draft, so re-sending works.
	sess := f.sessions.Get(reporterID)
	assert.Equal(t, session.StepAwaitingSeverity, sess.Step)
	assert.Equal(t, "hoyo grande", sess.Draft.Description)

	f.storage.On("InsertReport", mock.AnythingOfType("*models.Report")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Report).ID = "report-2"
	}).Return(nil).Once()
	f.issuer.On("Issue", "report-2", reporterID).Return(&editlink.Issued{ShortID: "zz"}, nil)

	f.handle(t, textEvent("4"))
	assert.Equal(t, session.StepInitial, f.sessions.Get(reporterID).Step)
	f.storage.AssertNumberOfCalls(t, "InsertReport", 2)
}

func TestEngine_InvalidSeverityReprompts(t *testing.T) {
	f := newEngineFixture()
	f.fetcher.On("Fetch", "photo-1").Return("https://cdn.example.test/p.jpg", nil)
	f.walkToStep(t, session.StepAwaitingSeverity)

	for _, input := range []string{"0", "6", "muy grave"} {
		f.handle(t, textEvent(input))
		assert.Equal(t, session.StepAwaitingSeverity, f.sessions.Get(reporterID).Step)
	}
	f.storage.AssertNotCalled(t, "InsertReport", mock.Anything)
}

func TestEngine_DuplicateDeliveryIgnored(t *testing.T) {
	f := newEngineFixture()

	ev := textEvent("hola")
	ev.DeliveryID = "42"

	f.storage.On("SeenDelivery", reporterID+":42", config.DeliveryDedupWindow).Return(false, nil).Once()
	f.handle(t, ev)
	assert.Equal(t, session.StepAwaitingCategory, f.sessions.Get(reporterID).Step)

	f.storage.On("SeenDelivery", reporterID+":42", config.DeliveryDedupWindow).Return(true, nil).Once()
	f.handle(t, ev)

	// Only the first delivery produced a prompt.
	assert.Len(t, f.notifier.Sent(reporterID), 1)
}

func TestEngine_CategoryMenuMentionsEmergencyLine(t *testing.T) {
	f := newEngineFixture()
	f.handle(t, textEvent("hola"))

	msgs := f.notifier.Sent(reporterID)
	require.Len(t, msgs, 1)
	assert.True(t, strings.Contains(msgs[0], "911"))
	assert.Contains(t, msgs[0], "1. Calles y Carreteras 🚗")
	assert.Contains(t, msgs[0], "0. Otro tipo de problema")
}

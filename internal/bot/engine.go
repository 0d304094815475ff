// Package bot contains the per-reporter conversation state machine and the
// dispatcher that feeds it transport events in order.
package bot

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"tulumreporta/backend/internal/config"
	"tulumreporta/backend/internal/editlink"
	"tulumreporta/backend/internal/geocoder"
	"tulumreporta/backend/internal/media"
	"tulumreporta/backend/internal/models"
	"tulumreporta/backend/internal/session"
	"tulumreporta/backend/internal/storage"
)

// Notifier delivers a text message to a chat recipient. Delivery is
// best-effort; the engine logs failures and moves on.
type Notifier interface {
	Send(recipientID, text string) error
}

// TokenIssuer creates edit links for freshly submitted reports.
type TokenIssuer interface {
	Issue(reportID, reporterID string) (*editlink.Issued, error)
}

// coordPattern matches a bare "lat,lon" answer at the location step.
var coordPattern = regexp.MustCompile(`^\s*(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)

// Engine advances one reporter session per inbound event. Invalid input
// re-prompts without moving the session; a failing external call leaves the
// session at its pre-event step so the same input can simply be re-sent.
type Engine struct {
	Sessions *session.Store
	Storage  storage.Storage
	Geocoder geocoder.Geocoder
	Media    media.Fetcher
	Notifier Notifier
	Links    TokenIssuer
	Bounds   config.BoundingBox

	PublicBaseURL string
	AdminPanelURL string
	AdminChatID   string
}

// HandleEvent runs exactly one state transition for the event's reporter.
// The dispatcher guarantees events for one reporter arrive here serially.
func (e *Engine) HandleEvent(ctx context.Context, ev models.InboundEvent) error {
	if ev.DeliveryID != "" {
		seen, err := e.Storage.SeenDelivery(ev.ReporterID+":"+ev.DeliveryID, config.DeliveryDedupWindow)
		if err != nil {
			log.Printf("ERROR: Delivery dedup check failed for %s: %v", ev.ReporterID, err)
		} else if seen {
			return nil
		}
	}

	sess := e.Sessions.Get(ev.ReporterID)
	switch sess.Step {
	case session.StepInitial:
		return e.handleInitial(ev)
	case session.StepAwaitingCategory:
		return e.handleCategory(ev)
	case session.StepAwaitingSubcategory:
		return e.handleSubcategory(ev, sess)
	case session.StepAwaitingPhoto:
		return e.handlePhoto(ctx, ev)
	case session.StepAwaitingDescription:
		return e.handleDescription(ev)
	case session.StepAwaitingLocation:
		return e.handleLocation(ctx, ev)
	case session.StepAwaitingLandmark:
		return e.handleLandmark(ev)
	case session.StepAwaitingSeverity:
		return e.handleSeverity(ev, sess)
	default:
		log.Printf("ERROR: Reporter %s in unknown step %q, resetting", ev.ReporterID, sess.Step)
		e.Sessions.Reset(ev.ReporterID)
		return e.handleInitial(ev)
	}
}

// handleInitial greets any first event with the category menu. Re-delivery
// of a conversation's first message lands here again and is harmless.
func (e *Engine) handleInitial(ev models.InboundEvent) error {
	e.send(ev.ReporterID, msgCategoryMenuHeader+config.CategoryMenu()+msgCategoryMenuFooter)
	e.Sessions.Set(ev.ReporterID, session.StepAwaitingCategory, session.Draft{})
	return nil
}

func (e *Engine) handleCategory(ev models.InboundEvent) error {
	cat, ok := config.CategoryByKey(strings.TrimSpace(ev.Text))
	if !ok {
		e.send(ev.ReporterID, msgInvalidCategory)
		return nil
	}

	// Categories without subcategories (the free-form one) skip straight to
	// the photo question with a generic subcategory.
	if len(cat.Subcategories) == 0 {
		e.Sessions.Set(ev.ReporterID, session.StepAwaitingPhoto, session.Draft{
			Category:    cat.Name,
			Subcategory: cat.Other,
		})
		e.send(ev.ReporterID, msgAskPhoto)
		return nil
	}

	e.Sessions.Set(ev.ReporterID, session.StepAwaitingSubcategory, session.Draft{Category: cat.Name})
	e.send(ev.ReporterID, msgSubcategoryMenu(cat.Name, cat.SubcategoryMenu()))
	return nil
}

func (e *Engine) handleSubcategory(ev models.InboundEvent, sess session.Session) error {
	cat, ok := config.CategoryByName(sess.Draft.Category)
	if !ok {
		// Draft lost its category somehow; start over.
		e.Sessions.Reset(ev.ReporterID)
		return e.handleInitial(ev)
	}

	var sub string
	if len(cat.Subcategories) == 0 {
		// Open subcategory: free text is accepted as-is.
		sub = strings.TrimSpace(ev.Text)
		if sub == "" {
			e.send(ev.ReporterID, msgInvalidSubcategory)
			return nil
		}
	} else {
		idx, err := strconv.Atoi(strings.TrimSpace(ev.Text))
		if err != nil {
			e.send(ev.ReporterID, msgInvalidSubcategory)
			return nil
		}
		sub, ok = cat.Subcategory(idx)
		if !ok {
			e.send(ev.ReporterID, msgInvalidSubcategory)
			return nil
		}
	}

	e.Sessions.Set(ev.ReporterID, session.StepAwaitingPhoto, session.Draft{Subcategory: sub})
	e.send(ev.ReporterID, msgAskPhoto)
	return nil
}

func (e *Engine) handlePhoto(ctx context.Context, ev models.InboundEvent) error {
	if ev.Kind != models.EventImage || ev.ImageRef == "" {
		e.send(ev.ReporterID, "Necesito una foto.")
		return nil
	}

	photoURL, err := e.Media.Fetch(ctx, ev.ImageRef)
	if err != nil {
		// Session stays at the photo step; re-sending the image retries.
		e.send(ev.ReporterID, msgPhotoUploadFailed)
		return fmt.Errorf("store photo for %s: %w", ev.ReporterID, err)
	}

	e.Sessions.Set(ev.ReporterID, session.StepAwaitingDescription, session.Draft{PhotoURL: photoURL})
	e.send(ev.ReporterID, msgAskDescription)
	return nil
}

func (e *Engine) handleDescription(ev models.InboundEvent) error {
	text := strings.TrimSpace(ev.Text)
	if ev.Kind != models.EventText || text == "" {
		e.send(ev.ReporterID, "Escribe la descripción.")
		return nil
	}
	e.Sessions.Set(ev.ReporterID, session.StepAwaitingLocation, session.Draft{Description: text})
	e.send(ev.ReporterID, msgAskLocation)
	return nil
}

// handleLocation resolves coordinates in priority order: native share, bare
// "lat,lon" text, then geocoded address. Every branch is bounds-checked.
func (e *Engine) handleLocation(ctx context.Context, ev models.InboundEvent) error {
	var (
		lat, lon float64
		label    string
	)

	switch {
	case ev.Location != nil:
		lat, lon = ev.Location.Lat, ev.Location.Lon
		label = ev.Location.Label
	case coordPattern.MatchString(ev.Text):
		m := coordPattern.FindStringSubmatch(ev.Text)
		lat, _ = strconv.ParseFloat(m[1], 64)
		lon, _ = strconv.ParseFloat(m[2], 64)
	case strings.TrimSpace(ev.Text) != "":
		label = strings.TrimSpace(ev.Text)
		var ok bool
		var err error
		lat, lon, ok, err = e.Geocoder.Geocode(ctx, label)
		if err != nil {
			e.send(ev.ReporterID, msgGeocoderDown)
			return fmt.Errorf("geocode %q for %s: %w", label, ev.ReporterID, err)
		}
		if !ok {
			e.send(ev.ReporterID, msgAddressNotFound)
			return nil
		}
	default:
		e.send(ev.ReporterID, msgAskLocation)
		return nil
	}

	if !e.Bounds.Contains(lat, lon) {
		e.send(ev.ReporterID, msgOutOfRegion)
		return nil
	}

	e.Sessions.Set(ev.ReporterID, session.StepAwaitingLandmark, session.Draft{
		Lat: lat, Lon: lon, HasCoords: true,
		AddressText: label,
	})
	e.send(ev.ReporterID, msgAskLandmark)
	return nil
}

func (e *Engine) handleLandmark(ev models.InboundEvent) error {
	text := strings.TrimSpace(ev.Text)
	if ev.Kind != models.EventText || text == "" {
		e.send(ev.ReporterID, msgAskLandmark)
		return nil
	}
	e.Sessions.Set(ev.ReporterID, session.StepAwaitingSeverity, session.Draft{Landmark: text})
	e.send(ev.ReporterID, msgAskSeverity)
	return nil
}

// handleSeverity validates the final answer and performs the submission:
// insert, edit link, notifications, session reset. An insert failure keeps
// the session here so the reporter retries instead of losing the whole
// questionnaire.
func (e *Engine) handleSeverity(ev models.InboundEvent, sess session.Session) error {
	severity, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil || severity < 1 || severity > 5 {
		e.send(ev.ReporterID, msgInvalidSeverity)
		return nil
	}

	draft := sess.Draft
	report := &models.Report{
		ReporterID:  ev.ReporterID,
		Category:    draft.Category,
		Subcategory: draft.Subcategory,
		Description: draft.Description,
		PhotoURLs:   []string{draft.PhotoURL},
		Lat:         draft.Lat,
		Lon:         draft.Lon,
		AddressText: draft.AddressText,
		Landmark:    draft.Landmark,
		Severity:    severity,
		Priority:    severity * config.PriorityMultiplier,
		Status:      models.StatusPending,
	}

	if err := e.Storage.InsertReport(report); err != nil {
		e.send(ev.ReporterID, msgSubmitFailed)
		return fmt.Errorf("insert report for %s: %w", ev.ReporterID, err)
	}

	editURL := ""
	issued, err := e.Links.Issue(report.ID, ev.ReporterID)
	if err != nil {
		// The report is in; a missing edit link is not worth failing over.
		log.Printf("ERROR: Failed to issue edit link for report %s: %v", report.ID, err)
	} else {
		editURL = e.PublicBaseURL + "/e/" + issued.ShortID
	}

	if e.AdminChatID != "" {
		e.send(e.AdminChatID, msgAdminNewReport(report.Category, report.Subcategory, e.AdminPanelURL))
	}
	e.send(ev.ReporterID, msgReportReceived(report.Category, editURL))

	e.Sessions.Reset(ev.ReporterID)
	return nil
}

// send is fire-and-forget: a lost notification never blocks a transition.
func (e *Engine) send(recipientID, text string) {
	if err := e.Notifier.Send(recipientID, text); err != nil {
		log.Printf("ERROR: Failed to send message to %s: %v", recipientID, err)
	}
}

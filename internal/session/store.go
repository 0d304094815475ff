// Package session keeps each reporter's conversational position and partial
// answers in memory. Sessions do not survive a restart.
package session

import "sync"

// Step is the reporter's position in the questionnaire.
type Step string

const (
	StepInitial             Step = "initial"
	StepAwaitingCategory    Step = "awaiting_category"
	StepAwaitingSubcategory Step = "awaiting_subcategory"
	StepAwaitingPhoto       Step = "awaiting_photo"
	StepAwaitingDescription Step = "awaiting_description"
	StepAwaitingLocation    Step = "awaiting_location"
	StepAwaitingLandmark    Step = "awaiting_landmark"
	StepAwaitingSeverity    Step = "awaiting_severity"
)

// Draft holds the answers accumulated so far. Merging a delta never erases
// a field set by an earlier step.
type Draft struct {
	Category    string
	Subcategory string
	PhotoURL    string
	Description string
	Lat         float64
	Lon         float64
	HasCoords   bool
	AddressText string
	Landmark    string
	Severity    int
}

func (d *Draft) merge(delta Draft) {
	if delta.Category != "" {
		d.Category = delta.Category
	}
	if delta.Subcategory != "" {
		d.Subcategory = delta.Subcategory
	}
	if delta.PhotoURL != "" {
		d.PhotoURL = delta.PhotoURL
	}
	if delta.Description != "" {
		d.Description = delta.Description
	}
	if delta.HasCoords {
		d.Lat = delta.Lat
		d.Lon = delta.Lon
		d.HasCoords = true
	}
	if delta.AddressText != "" {
		d.AddressText = delta.AddressText
	}
	if delta.Landmark != "" {
		d.Landmark = delta.Landmark
	}
	if delta.Severity != 0 {
		d.Severity = delta.Severity
	}
}

// Session is one reporter's current step plus accumulated answers.
type Session struct {
	Step  Step
	Draft Draft
}

// Store is a keyed session map guarded by a mutex. Per-reporter ordering of
// mutations is the dispatcher's job; the store only guarantees that single
// get/set operations are atomic.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns a copy of the reporter's session, creating an initial one if
// none exists. It never fails.
func (s *Store) Get(reporterID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[reporterID]
	if !ok {
		sess = &Session{Step: StepInitial}
		s.sessions[reporterID] = sess
	}
	return *sess
}

// Set replaces the reporter's step and merges delta into the accumulated
// answers.
func (s *Store) Set(reporterID string, step Step, delta Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[reporterID]
	if !ok {
		sess = &Session{}
		s.sessions[reporterID] = sess
	}
	sess.Step = step
	sess.Draft.merge(delta)
}

// Reset puts the reporter back at the initial step with a fresh empty draft.
// A completed or abandoned conversation never leaks answers into the next
// one.
func (s *Store) Reset(reporterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[reporterID] = &Session{Step: StepInitial}
}

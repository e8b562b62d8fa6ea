package audit

import (
	"time"
)

// Event is a single audit record. Fields are set through the builder
// methods so call sites read as one chain, mirroring how activity
// events are assembled by the login pipeline.
type Event struct {
	App           string            `json:"app"`
	Type          string            `json:"type"`
	Author        string            `json:"author"`
	AffectedUser  string            `json:"affected_user"`
	Subject       string            `json:"subject"`
	SubjectParams map[string]string `json:"subject_params,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewEvent creates an empty event stamped with the current time.
func NewEvent() *Event {
	return &Event{
		Timestamp: time.Now().UTC(),
	}
}

// SetApp sets the originating app identifier
func (e *Event) SetApp(app string) *Event {
	e.App = app
	return e
}

// SetType sets the event category, e.g. "security"
func (e *Event) SetType(eventType string) *Event {
	e.Type = eventType
	return e
}

// SetAuthor sets the acting user id
func (e *Event) SetAuthor(author string) *Event {
	e.Author = author
	return e
}

// SetAffectedUser sets the user id the event is about
func (e *Event) SetAffectedUser(userID string) *Event {
	e.AffectedUser = userID
	return e
}

// SetSubject sets the event subject together with its parameters
func (e *Event) SetSubject(subject string, params map[string]string) *Event {
	e.Subject = subject
	e.SubjectParams = params
	return e
}

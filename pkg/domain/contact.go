package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatusNew is the status of every stored submission.
const ContactStatusNew = "new"

// PasswordResetStatusRequested is the status of every logged reset request.
const PasswordResetStatusRequested = "requested"

// ContactSubmission is a message sent through the contact form.
type ContactSubmission struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Subject   string
	Message   string
	Fields    map[string]string
	Timestamp time.Time
	Status    string
	Replied   bool
	Requester Requester
}

// Requester describes who sent a submission.
type Requester struct {
	UserID    string
	UserEmail string
	UserAgent string
	Referrer  string
}

// PasswordResetRequest logs a reset email dispatch.
type PasswordResetRequest struct {
	ID        uuid.UUID
	Email     string
	Timestamp time.Time
	Status    string
}

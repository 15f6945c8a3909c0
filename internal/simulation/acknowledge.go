package simulation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"afriqar/internal/content"
)

// ErrInvalidSubmission reports a contact form or newsletter signup with missing fields.
var ErrInvalidSubmission = errors.New("simulation: invalid submission")

// Submission is a contact form or newsletter signup.
type Submission struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Receipt confirms a submission until the banner resets.
type Receipt struct {
	Kind       string     `json:"kind"`
	Submission Submission `json:"submission"`
	ReceivedAt time.Time  `json:"receivedAt"`
}

// ContactLoader supplies the contact document for department checks.
type ContactLoader func(ctx context.Context) (content.ContactDocument, error)

// Acknowledgement completes immediately and resets after the configured delay.
type Acknowledgement struct {
	kind    string
	clock   Clock
	contact ContactLoader
	machine *Machine[Receipt]
}

// NewContactForm acknowledges contact messages; departments are checked
// against the contact document when contact is set.
func NewContactForm(opts Options, contact ContactLoader) *Acknowledgement {
	return newAcknowledgement(content.SimContactForm, opts, contact)
}

// NewNewsletter acknowledges newsletter signups.
func NewNewsletter(opts Options) *Acknowledgement {
	return newAcknowledgement(content.SimNewsletter, opts, nil)
}

func newAcknowledgement(kind string, opts Options, contact ContactLoader) *Acknowledgement {
	if opts.Name == "" {
		opts.Name = kind
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	opts.Delay = 0
	return &Acknowledgement{kind: kind, clock: opts.Clock, contact: contact, machine: NewMachine[Receipt](opts, nil)}
}

// Submit validates s and shows the acknowledgement.
func (a *Acknowledgement) Submit(ctx context.Context, s Submission) error {
	if err := a.validate(ctx, s); err != nil {
		return err
	}
	receipt := Receipt{Kind: a.kind, Submission: s, ReceivedAt: a.clock.Now()}
	return a.machine.Start(func() Receipt { return receipt })
}

func (a *Acknowledgement) validate(ctx context.Context, s Submission) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(s.Email)); err != nil {
		return fmt.Errorf("%w: email %q", ErrInvalidSubmission, s.Email)
	}
	if a.kind == content.SimNewsletter {
		return nil
	}
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Message) == "" {
		return fmt.Errorf("%w: name and message required", ErrInvalidSubmission)
	}
	if s.Department != "" && a.contact != nil {
		doc, err := a.contact(ctx)
		if err != nil {
			return err
		}
		if !doc.HasDepartment(s.Department) {
			return fmt.Errorf("%w: unknown department %q", ErrInvalidSubmission, s.Department)
		}
	}
	return nil
}

func (a *Acknowledgement) Kind() string { return a.kind }

// Machine exposes the acknowledgement banner state.
func (a *Acknowledgement) Machine() *Machine[Receipt] { return a.machine }

func (a *Acknowledgement) View() Snapshot[Receipt] { return a.machine.Snapshot() }

func (a *Acknowledgement) Close() { a.machine.Close() }

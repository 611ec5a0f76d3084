// Package invite submits multi-address invitation batches. Each address is
// its own remote call; partial failure is a first-class outcome, not an
// error. Failed addresses are handed back for correction and resubmission,
// successes are cleared from the entry.
package invite

import (
	"context"
	"strings"

	"github.com/listd/listd/internal/models"
)

// Outcome classifies a batch into exactly three results.
type Outcome int

const (
	AllSucceeded Outcome = iota
	AllFailed
	Partial
)

func (o Outcome) String() string {
	switch o {
	case AllSucceeded:
		return "all succeeded"
	case AllFailed:
		return "all failed"
	default:
		return "partial"
	}
}

// Failure is one address that could not be invited, with its reason.
type Failure struct {
	Email string
	Err   error
}

// Result reports how a batch went. Failed keeps submission order so the
// re-entry field reads the way the user typed it.
type Result struct {
	Outcome   Outcome
	Succeeded []models.Invitation
	Failed    []Failure
}

// Retry returns the failed addresses joined for the entry field, ready for
// correction and resubmission.
func (r *Result) Retry() string {
	emails := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		emails[i] = f.Email
	}
	return strings.Join(emails, ", ")
}

// Sender issues one invitation. Implemented by the docsync client.
type Sender func(ctx context.Context, email string, role models.Role) (*models.Invitation, error)

// SplitEmails parses a comma- or whitespace-separated address entry.
func SplitEmails(entry string) []string {
	fields := strings.FieldsFunc(entry, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Send submits every address independently and classifies the outcome.
// Per-address errors are collected, never escalated to a hard failure when
// at least one address succeeded. An empty batch is AllSucceeded with
// nothing in it.
func Send(ctx context.Context, send Sender, emails []string, role models.Role) Result {
	var res Result
	for _, email := range emails {
		inv, err := send(ctx, email, role)
		if err != nil {
			res.Failed = append(res.Failed, Failure{Email: email, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, *inv)
	}

	switch {
	case len(res.Failed) == 0:
		res.Outcome = AllSucceeded
	case len(res.Succeeded) == 0:
		res.Outcome = AllFailed
	default:
		res.Outcome = Partial
	}
	return res
}

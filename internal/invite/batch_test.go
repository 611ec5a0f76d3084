package invite

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/listd/listd/internal/models"
)

// failingSender fails the given addresses and succeeds everything else.
func failingSender(bad map[string]error) Sender {
	return func(ctx context.Context, email string, role models.Role) (*models.Invitation, error) {
		if err, ok := bad[email]; ok {
			return nil, err
		}
		return &models.Invitation{
			ID:        "inv-" + email,
			Email:     email,
			Role:      role,
			CreatedAt: time.Now(),
		}, nil
	}
}

func TestSendAllSucceeded(t *testing.T) {
	res := Send(context.Background(), failingSender(nil),
		[]string{"x@example.com", "y@example.com"}, models.RoleEditor)

	if res.Outcome != AllSucceeded {
		t.Fatalf("outcome = %v, want all succeeded", res.Outcome)
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 0 {
		t.Fatalf("succeeded=%d failed=%d", len(res.Succeeded), len(res.Failed))
	}
	if res.Retry() != "" {
		t.Errorf("retry entry = %q, want empty", res.Retry())
	}
}

func TestSendAllFailed(t *testing.T) {
	bad := map[string]error{
		"x@example.com": errors.New("mailbox full"),
		"y@example.com": errors.New("bounced"),
	}
	res := Send(context.Background(), failingSender(bad),
		[]string{"x@example.com", "y@example.com"}, models.RoleViewer)

	if res.Outcome != AllFailed {
		t.Fatalf("outcome = %v, want all failed", res.Outcome)
	}
	if res.Retry() != "x@example.com, y@example.com" {
		t.Errorf("retry entry = %q", res.Retry())
	}
}

func TestSendPartial(t *testing.T) {
	bad := map[string]error{"bad": errors.New("invalid address")}
	res := Send(context.Background(), failingSender(bad),
		[]string{"x@example.com", "bad", "y@example.com"}, models.RoleEditor)

	// Partial is a first-class outcome, never a hard failure.
	if res.Outcome != Partial {
		t.Fatalf("outcome = %v, want partial", res.Outcome)
	}

	// The re-entry field contains only the failed address.
	if res.Retry() != "bad" {
		t.Errorf("retry entry = %q, want %q", res.Retry(), "bad")
	}

	var invited []string
	for _, inv := range res.Succeeded {
		invited = append(invited, inv.Email)
	}
	if want := []string{"x@example.com", "y@example.com"}; !reflect.DeepEqual(invited, want) {
		t.Fatalf("invited = %v, want %v", invited, want)
	}

	// Per-address errors are kept for the status message.
	if len(res.Failed) != 1 || res.Failed[0].Err.Error() != "invalid address" {
		t.Fatalf("failed = %+v", res.Failed)
	}
}

func TestSendEmpty(t *testing.T) {
	res := Send(context.Background(), failingSender(nil), nil, models.RoleEditor)
	if res.Outcome != AllSucceeded {
		t.Fatalf("empty batch outcome = %v", res.Outcome)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{
		AllSucceeded: "all succeeded",
		AllFailed:    "all failed",
		Partial:      "partial",
	} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", o, got, want)
		}
	}
}

func TestSplitEmails(t *testing.T) {
	tests := []struct {
		entry string
		want  []string
	}{
		{"x@example.com", []string{"x@example.com"}},
		{"x@example.com, y@example.com", []string{"x@example.com", "y@example.com"}},
		{"x@example.com y@example.com", []string{"x@example.com", "y@example.com"}},
		{" x@example.com ,\n y@example.com ", []string{"x@example.com", "y@example.com"}},
		{"", nil},
		{" , , ", nil},
	}
	for i, tt := range tests {
		got := SplitEmails(tt.entry)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%d: SplitEmails(%q) = %v, want %v", i, tt.entry, got, tt.want)
		}
	}
}

func TestSendOrderPreserved(t *testing.T) {
	var bad []string
	for i := 0; i < 5; i++ {
		bad = append(bad, fmt.Sprintf("bad%d", i))
	}
	badMap := make(map[string]error, len(bad))
	for _, b := range bad {
		badMap[b] = errors.New("nope")
	}

	res := Send(context.Background(), failingSender(badMap),
		[]string{"bad3", "ok@example.com", "bad0", "bad4"}, models.RoleEditor)

	var failed []string
	for _, f := range res.Failed {
		failed = append(failed, f.Email)
	}
	if want := []string{"bad3", "bad0", "bad4"}; !reflect.DeepEqual(failed, want) {
		t.Fatalf("failed order = %v, want submission order %v", failed, want)
	}
}

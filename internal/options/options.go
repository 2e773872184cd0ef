// Package options is the settings surface for the Todoist credential.
package options

import (
	"context"
	"strings"

	"leetdoist/internal/store"
)

// Tone is how a status line is presented.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
	ToneInfo    Tone = "info"
)

// Status is a user-facing message.
type Status struct {
	Text string
	Tone Tone
}

// Save stores token after trimming it. An empty token is rejected.
func Save(ctx context.Context, st store.Store, token string) Status {
	token = strings.TrimSpace(token)
	if token == "" {
		return Status{Text: "Please enter your Todoist API token.", Tone: ToneError}
	}
	if err := st.Set(ctx, store.TokenKey, token); err != nil {
		return Status{Text: "Unable to save token: " + err.Error(), Tone: ToneError}
	}
	return Status{Text: "Saved! You can now add problems to Todoist.", Tone: ToneSuccess}
}

// Load returns the stored token, if any.
func Load(ctx context.Context, st store.Store) (string, Status) {
	token, ok, err := st.Get(ctx, store.TokenKey)
	if err != nil {
		return "", Status{Text: "Unable to load token: " + err.Error(), Tone: ToneError}
	}
	if !ok || token == "" {
		return "", Status{Text: "No Todoist API token stored.", Tone: ToneInfo}
	}
	return token, Status{Text: "Your Todoist token is stored securely.", Tone: ToneInfo}
}

// Clear removes the stored token.
func Clear(ctx context.Context, st store.Store) Status {
	if err := st.Remove(ctx, store.TokenKey); err != nil {
		return Status{Text: "Unable to remove token: " + err.Error(), Tone: ToneError}
	}
	return Status{Text: "Todoist API token removed.", Tone: ToneSuccess}
}

// Mask hides all but the last four characters of token.
func Mask(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

package sim

import (
	"context"
	"slices"
	"time"
)

// AllowListVerifier accepts a token on the panel reader when its UID is in
// the allow-list.
type AllowListVerifier struct {
	panel   *Panel
	allowed []string
}

// NewAllowListVerifier creates a verifier over normalized hex UIDs.
func NewAllowListVerifier(panel *Panel, allowed []string) *AllowListVerifier {
	return &AllowListVerifier{
		panel:   panel,
		allowed: slices.Clone(allowed),
	}
}

// Poll implements device.TokenVerifier.
func (v *AllowListVerifier) Poll(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		changed := v.panel.Changed()

		if uid, ok := v.panel.Token(); ok && slices.Contains(v.allowed, uid) {
			return true
		}

		select {
		case <-changed:
		case <-timer.C:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

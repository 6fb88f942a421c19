package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/staysvc/domain"
)

func TestOwnershipPolicy_Allowed(t *testing.T) {
	policy, err := NewOwnershipPolicy(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		subject  string
		owner    string
		resource string
		action   string
		expected bool
	}{
		{name: "owner updates", subject: "host-1", owner: "host-1", resource: domain.ResourceListing, action: domain.ActionUpdate, expected: true},
		{name: "owner deletes", subject: "host-1", owner: "host-1", resource: domain.ResourceListing, action: domain.ActionDelete, expected: true},
		{name: "owner attaches image", subject: "host-1", owner: "host-1", resource: domain.ResourceListing, action: domain.ActionAttachImage, expected: true},
		{name: "stranger updates", subject: "guest-1", owner: "host-1", resource: domain.ResourceListing, action: domain.ActionUpdate},
		{name: "stranger deletes", subject: "guest-1", owner: "host-1", resource: domain.ResourceListing, action: domain.ActionDelete},
		{name: "unknown action", subject: "host-1", owner: "host-1", resource: domain.ResourceListing, action: "transfer"},
		{name: "action prefix is not enough", subject: "host-1", owner: "host-1", resource: domain.ResourceListing, action: "update_host"},
		{name: "unknown resource", subject: "host-1", owner: "host-1", resource: "booking", action: domain.ActionDelete},
		{name: "anonymous subject", subject: "", owner: "", resource: domain.ResourceListing, action: domain.ActionUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := policy.Allowed(tt.subject, tt.owner, tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, allowed)
		})
	}
}

func TestOwnershipPolicy_SeedIsIdempotent(t *testing.T) {
	policy, err := NewOwnershipPolicy(nil)
	require.NoError(t, err)

	require.NoError(t, policy.seed())
	require.NoError(t, policy.seed())

	allowed, err := policy.Allowed("host-1", "host-1", domain.ResourceListing, domain.ActionUpdate)
	require.NoError(t, err)
	assert.True(t, allowed)
}

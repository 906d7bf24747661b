package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTopics(t *testing.T) {
	tp := NewTopics("/site-a/")
	assert.Equal(t, "site-a/alerts/active", tp.ActiveAlerts)
	assert.Equal(t, "site-a/alerts/new", tp.NewAlerts)
	assert.Equal(t, "site-a/status", tp.Status)
	assert.Equal(t, "site-a/producer", tp.Producer)
	assert.Equal(t, "site-a/online", tp.Online)

	assert.Equal(t, "mineguard/status", NewTopics("").Status)
}

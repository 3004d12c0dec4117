package mailingservices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgun_InitUsesSuppliedConfig(t *testing.T) {
	m := &Mailgun{}
	m.Init("mg.example.com", "key-test", "noreply@example.com")

	require.NotNil(t, m.Client)
	assert.Equal(t, "mg.example.com", m.Client.Domain())
	assert.Equal(t, "noreply@example.com", m.From)
}

package notification_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-lab/hyttevakt/internal/notification"
)

func TestLoadSettings(t *testing.T) {
	t.Run("missing file yields disabled settings", func(t *testing.T) {
		s, err := notification.LoadSettings(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.False(t, s.Enabled)
	})

	t.Run("parses smtp settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notifications.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
enabled: true
smtp:
  host: smtp.example.com
  port: 587
  from_address: hyttevakt@example.com
  to_addresses: me@example.com
  encryption: starttls
`), 0600))

		s, err := notification.LoadSettings(path)
		require.NoError(t, err)
		assert.True(t, s.Enabled)
		assert.Equal(t, "smtp.example.com", s.SMTP.Host)
		assert.Equal(t, 587, s.SMTP.Port)
		assert.Equal(t, "starttls", s.SMTP.Encryption)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notifications.yaml")
		require.NoError(t, os.WriteFile(path, []byte("enabled: ["), 0600))
		_, err := notification.LoadSettings(path)
		assert.Error(t, err)
	})
}

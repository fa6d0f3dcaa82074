package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"missing secret", Config{CloudName: "demo", APIKey: "key"}},
		{"missing key", Config{CloudName: "demo", APISecret: "secret"}},
		{"missing cloud", Config{APIKey: "key", APISecret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestNew_BuildsClient(t *testing.T) {
	s, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret"})
	require.NoError(t, err)
	assert.NotNil(t, s.client)
}

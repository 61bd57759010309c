package middleware

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateMessageContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "schedule my day", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 100001), true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
		{"at limit", strings.Repeat("a", 100000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageContent(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateThreadID(t *testing.T) {
	assert.NoError(t, ValidateThreadID(uuid.Must(uuid.NewV7()).String()))
	assert.Error(t, ValidateThreadID("not-a-uuid"))
	assert.Error(t, ValidateThreadID(""))
}

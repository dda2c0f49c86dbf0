package distro

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/imamik/wsldev/internal/platform/wsl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisioningRequest_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		distro  string
		user    string
		wantErr string
	}{
		{name: "valid", distro: "Ubuntu", user: "alice"},
		{name: "digits allowed", distro: "Ubuntu-22.04", user: "dev2"},
		{name: "missing distro", distro: "", user: "alice", wantErr: "DistroName: is required"},
		{name: "uppercase user", distro: "Ubuntu", user: "Alice", wantErr: "Username: must be lowercase"},
		{name: "punctuation", distro: "Ubuntu", user: "al;ice", wantErr: "Username"},
		{name: "root", distro: "Ubuntu", user: "root", wantErr: "Username"},
		{name: "too long", distro: "Ubuntu", user: strings.Repeat("a", 33), wantErr: "Username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := newRequest(t, tt.distro, tt.user, "pw").Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvisioningRequest_ValidateMissingPassword(t *testing.T) {
	t.Parallel()
	req := &ProvisioningRequest{DistroName: "Ubuntu", Username: "alice"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password")

	var nilReq *ProvisioningRequest
	assert.Error(t, nilReq.Validate())
}

func TestDetailOf(t *testing.T) {
	t.Parallel()
	cmdErr := &wsl.CommandError{Op: "install Ubuntu", ExitCode: -1, Output: "Wsl/0x80070005"}
	wrapped := fmt.Errorf("operation failed after 2 attempts: %w", cmdErr)

	assert.Equal(t, cmdErr.Error(), detailOf(wrapped))
	assert.Equal(t, "plain", detailOf(errors.New("plain")))
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()
	ok := succeeded("Ubuntu", "alice")
	assert.True(t, ok.Success)
	assert.Empty(t, ok.ErrorDetail)

	bad := failed("Ubuntu", "alice", errors.New("boom"))
	assert.False(t, bad.Success)
	assert.Equal(t, "boom", bad.ErrorDetail)
	assert.Equal(t, "alice", bad.Username)
}

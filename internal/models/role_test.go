package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "upper snake", input: "SUPER_ADMIN", want: RoleSuperAdmin},
		{name: "hyphenated lower", input: "super-admin", want: RoleSuperAdmin},
		{name: "mixed case", input: "Super-Admin", want: RoleSuperAdmin},
		{name: "client", input: "client", want: RoleClient},
		{name: "admin with spaces", input: "  ADMIN ", want: RoleAdmin},
		{name: "unknown", input: "root", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleAdmin.In(RoleAdmin, RoleSuperAdmin))
	assert.False(t, RoleClient.In(RoleAdmin, RoleSuperAdmin))
	assert.False(t, RoleClient.In())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatCredentialKey(t *testing.T) {
	assert.Equal(t, "direct_password_123-45", FlatCredentialKey("123-45"))
	assert.Equal(t, FlatKeyPrefix, FlatCredentialKey(""))
}

func TestCredential_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cred    Credential
		wantErr bool
	}{
		{
			name: "valid credential",
			cred: Credential{AccountNumber: "123-45", InstitutionCode: "0240", Password: "pw"},
		},
		{
			name:    "missing account number",
			cred:    Credential{InstitutionCode: "0240", Password: "pw"},
			wantErr: true,
		},
		{
			name:    "missing institution code",
			cred:    Credential{AccountNumber: "123-45", Password: "pw"},
			wantErr: true,
		},
		{
			name:    "missing password",
			cred:    Credential{AccountNumber: "123-45", InstitutionCode: "0240"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package pasetotoken

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeysHexRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		keys Keys
	}{
		{"local", NewLocalKeys()},
		{"public", NewPublicKeys()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hex := tt.keys.Hex()
			loaded, err := LoadKeys(hex)
			require.NoError(t, err)
			require.Equal(t, hex, loaded.Hex())
		})
	}
}

func TestLoadKeys_PublicOnly(t *testing.T) {
	hex := NewPublicKeys().Hex()
	hex.SecretHex = ""

	loaded, err := LoadKeys(hex)
	require.NoError(t, err)
	require.Nil(t, loaded.Secret)
	require.Equal(t, hex.PublicHex, loaded.Public.ExportHex())
}

func TestLoadKeys_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   KeyStrings
	}{
		{"local without key", KeyStrings{Mode: ModeLocal}},
		{"local bad hex", KeyStrings{Mode: ModeLocal, SymmetricHex: "zz"}},
		{"public without keys", KeyStrings{Mode: ModePublic}},
		{"unknown mode", KeyStrings{Mode: "hybrid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeys(tt.in)
			require.Error(t, err)
		})
	}
}

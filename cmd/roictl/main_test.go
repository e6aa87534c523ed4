package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCmd(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "roictl-test-secret")
	t.Setenv("JWT_ISSUER", "roictl-test")

	cmd := newTokenCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--admin", "ops-1", "--expiry", "5m"})
	require.NoError(t, cmd.Execute())

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(out.String()), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("roictl-test-secret"), nil
	}, jwt.WithIssuer("roictl-test"))
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.Subject)
}

func TestTokenCmd_RequiresAdmin(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cmd := newTokenCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}

func TestCodeCmd_Memory(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cmd := newCodeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--name", "Silver", "--balance", "250", "--code", "SILVER01"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "SILVER01\tSilver\t250.00\n", out.String())

	bad := newCodeCmd()
	bad.SetOut(&bytes.Buffer{})
	bad.SetErr(&bytes.Buffer{})
	bad.SetArgs([]string{"--name", "Silver", "--balance", "lots"})
	assert.ErrorContains(t, bad.Execute(), "invalid --balance")
}

func TestSweepCmd_MemoryHasNothingDue(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cmd := newSweepCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"processedCount": 0`)
}

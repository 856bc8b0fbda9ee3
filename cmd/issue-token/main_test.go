package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_TokenCarriesOwnerSubject(t *testing.T) {
	now := time.Now()
	res, err := issue("k", 42, time.Hour, now)
	require.NoError(t, err)

	tok, err := jwt.Parse(res.Token, func(*jwt.Token) (any, error) { return []byte("k"), nil }, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := tok.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "42", sub)
	assert.NotEmpty(t, res.TokenID)
	assert.WithinDuration(t, now.Add(time.Hour), res.ExpiresAt, time.Second)
}

func TestIssue_RejectsNonPositiveTTL(t *testing.T) {
	_, err := issue("k", 1, 0, time.Now())
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	res := tokenResult{OwnerID: 7, Token: "abc", ExpiresAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}

	var env bytes.Buffer
	require.NoError(t, write(&env, "env", res))
	assert.Equal(t, "COURIER_API_TOKEN=abc\nCOURIER_EXPIRES_AT=2025-01-02T03:04:05Z\nCOURIER_OWNER_ID=7\n", env.String())

	var js bytes.Buffer
	require.NoError(t, write(&js, "JSON", res))
	var decoded tokenResult
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "abc", decoded.Token)

	assert.Error(t, write(&bytes.Buffer{}, "yaml", res))
}

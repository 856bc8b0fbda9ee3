package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corvusHold/courier/internal/config"
)

type tokenResult struct {
	OwnerID   int64     `json:"owner_id"`
	TokenID   string    `json:"token_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		owner  = flag.Int64("owner", 0, "owner id the token acts as (required)")
		ttl    = flag.Duration("ttl", 24*time.Hour, "lifetime for the issued token")
		output = flag.String("output", "env", "output format: env or json")
	)
	flag.Parse()

	if *owner <= 0 {
		log.Fatalf("-owner must be a positive id")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	res, err := issue(cfg.JWTSigningKey, *owner, *ttl, time.Now())
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}

	if err := write(os.Stdout, *output, res); err != nil {
		log.Fatal(err)
	}
}

func issue(signingKey string, owner int64, ttl time.Duration, now time.Time) (tokenResult, error) {
	if ttl <= 0 {
		return tokenResult{}, fmt.Errorf("ttl must be positive")
	}
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(owner, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		return tokenResult{}, err
	}
	return tokenResult{OwnerID: owner, TokenID: jti, Token: tok, ExpiresAt: expiresAt.UTC()}, nil
}

func write(w io.Writer, format string, res tokenResult) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case "env":
		vars := map[string]string{
			"COURIER_API_TOKEN":  res.Token,
			"COURIER_OWNER_ID":   strconv.FormatInt(res.OwnerID, 10),
			"COURIER_EXPIRES_AT": res.ExpiresAt.Format(time.RFC3339),
		}
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s=%s\n", k, vars[k])
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

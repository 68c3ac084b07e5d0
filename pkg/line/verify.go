package line

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cellarline/cellarline-backend/pkg/config"
	"github.com/cellarline/cellarline-backend/pkg/redis"
)

// Profile is the subset of the LINE profile endpoint response the platform
// needs to resolve an identity.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// ErrTokenRejected marks an access token the LINE API refused.
var ErrTokenRejected = errors.New("line access token rejected")

type tokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	LineTokenKey(tokenHash string) string
}

// TokenVerifier resolves LIFF access tokens to LINE profiles, caching
// successful verifications so each request does not hit the LINE API.
type TokenVerifier struct {
	endpoint   string
	httpClient *http.Client
	cache      tokenCache
	cacheTTL   time.Duration
}

// NewTokenVerifier builds a verifier against the configured profile endpoint.
// The cache is optional.
func NewTokenVerifier(cfg config.LineConfig, cache *redis.Client) *TokenVerifier {
	verifier := &TokenVerifier{
		endpoint:   cfg.ProfileEndpoint,
		httpClient: &http.Client{Timeout: cfg.VerifyTimeout},
		cacheTTL:   cfg.VerifyCacheTTL,
	}
	if cache != nil {
		verifier.cache = cache
	}
	return verifier
}

// Verify resolves the access token to a profile. Rejected tokens return
// ErrTokenRejected; transport failures return other errors.
func (v *TokenVerifier) Verify(ctx context.Context, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, ErrTokenRejected
	}

	cacheKey := ""
	if v.cache != nil {
		cacheKey = v.cache.LineTokenKey(hashToken(accessToken))
		if raw, err := v.cache.Get(ctx, cacheKey); err == nil {
			var profile Profile
			if err := json.Unmarshal([]byte(raw), &profile); err == nil && profile.UserID != "" {
				return &profile, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call line profile endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("line profile endpoint returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	if profile.UserID == "" {
		return nil, fmt.Errorf("profile response missing userId")
	}

	if v.cache != nil && cacheKey != "" {
		if payload, err := json.Marshal(profile); err == nil {
			// cache write failures are non-fatal
			_ = v.cache.Set(ctx, cacheKey, string(payload), v.cacheTTL)
		}
	}

	return &profile, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

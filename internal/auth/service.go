package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

const (
	revokedKeyPrefix = "fittrack||revoked||"
	revokedSetKey    = "fittrack||revoked-tokens"
)

// Service issues tokens and keeps the list of revoked ones in redis.
// A revoked token id stays in redis until the token would have expired anyway.
type Service struct {
	tokens      *TokenManager
	redisClient *redis.Client
	now         func() time.Time
}

func NewAuthService(tokens *TokenManager, redisClient *redis.Client) *Service {
	return &Service{
		tokens:      tokens,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (s *Service) IssueToken(ctx context.Context, userID int, username string) (string, *Claims, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "authService.issueToken")
	defer span.End()
	return s.tokens.Issue(userID, username)
}

// Verify parses the token and rejects it if it has been revoked.
func (s *Service) Verify(ctx context.Context, token string) (_ *Claims, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.verify")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	exists, err := s.redisClient.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
	if err != nil {
		return nil, fmt.Errorf("check revoked: %w", err)
	}
	if exists > 0 {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke makes the token unusable for the rest of its lifetime.
func (s *Service) Revoke(ctx context.Context, claims *Claims) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.revoke")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		// already expired, nothing to remember
		return nil
	}

	if err := s.redisClient.Set(ctx, revokedKeyPrefix+claims.ID, claims.UserID, remaining).Err(); err != nil {
		return fmt.Errorf("store revoked token: %w", err)
	}

	if err := s.redisClient.ZAdd(ctx, revokedSetKey, &redis.Z{
		Score:  float64(claims.ExpiresAt.Unix()),
		Member: claims.ID,
	}).Err(); err != nil {
		return fmt.Errorf("index revoked token: %w", err)
	}

	return nil
}

// ScanAndClean drops revoked token ids whose tokens have expired from the index set.
func (s *Service) ScanAndClean(ctx context.Context) {
	max := strconv.FormatInt(s.now().Unix(), 10)
	removed, err := s.redisClient.ZRemRangeByScore(ctx, revokedSetKey, "-inf", max).Result()
	if err != nil {
		log.Errorf("!!! auth service, scan and clean: %s", err)
		return
	}
	log.Debugf("=> auth service, scan and clean removed %d expired revocations", removed)
}

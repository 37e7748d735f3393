package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ipinfo/go/v2/ipinfo"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

const (
	// DevTimezone is returned for local and docker-network clients.
	DevTimezone    = "Europe/Berlin"
	cacheKeyFmt    = "ip-tz::%s"
	cacheTTL       = 7 * 24 * time.Hour
	breakerName    = "ipinfo"
	failuresToTrip = 5
)

var ErrNoTimezone = errors.New("no timezone for ip")

type ipInfoClient interface {
	GetIPInfo(ip net.IP) (*ipinfo.Core, error)
}

// TimezoneResolver finds the IANA timezone of a client IP through ipinfo.io.
// Results are cached in redis, and calls to ipinfo go through a circuit breaker.
type TimezoneResolver struct {
	lookups     singleflight.Group
	client      ipInfoClient
	redisClient *redis.Client
	breaker     *gobreaker.CircuitBreaker[string]
}

func NewTimezoneResolver(ipInfoAPIKey string, httpClient *http.Client, redisClient *redis.Client) *TimezoneResolver {
	return newTimezoneResolver(ipinfo.NewClient(httpClient, nil, ipInfoAPIKey), redisClient)
}

func newTimezoneResolver(client ipInfoClient, redisClient *redis.Client) *TimezoneResolver {
	return &TimezoneResolver{
		client:      client,
		redisClient: redisClient,
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failuresToTrip
			},
			IsSuccessful: func(err error) bool {
				// an ip without a timezone is a valid answer, not an outage
				return err == nil || errors.Is(err, ErrNoTimezone)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnf("circuit breaker [%s]: %s -> %s", name, from, to)
			},
		}),
	}
}

func (tr *TimezoneResolver) TimezoneForRequest(ctx context.Context, r *http.Request) (string, error) {
	userIP, err := pkg.ReadUserIP(r)
	if err != nil {
		return "", fmt.Errorf("get user ip: %w", err)
	}
	return tr.TimezoneForIP(ctx, userIP)
}

func (tr *TimezoneResolver) TimezoneForIP(ctx context.Context, userIP string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "geoIp.timezoneForIP")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.ip", userIP))

	if userIP == pkg.LocalhostIP {
		return DevTimezone, nil
	}

	ip := net.ParseIP(userIP)
	if ip == nil {
		return "", fmt.Errorf("invalid ip: %s", userIP)
	}

	// concurrent registrations from the same ip hit redis and ipinfo once
	tz, err, shared := tr.lookups.Do(userIP, func() (interface{}, error) {
		return tr.lookup(ctx, userIP, ip)
	})
	span.SetAttributes(attribute.Bool("user.ip.shared-lookup", shared))
	if err != nil {
		return "", err
	}
	return tz.(string), nil
}

func (tr *TimezoneResolver) lookup(ctx context.Context, userIP string, ip net.IP) (string, error) {
	span := trace.SpanFromContext(ctx)

	cacheKey := fmt.Sprintf(cacheKeyFmt, userIP)
	cached, err := tr.redisClient.Get(ctx, cacheKey).Result()
	switch {
	case err == nil && cached != "":
		span.SetAttributes(attribute.Bool("user.ip.from-cache", true))
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		log.Errorf("failed to get ip timezone from redis for [%s]: %s", cacheKey, err)
	}
	span.SetAttributes(attribute.Bool("user.ip.from-cache", false))

	tz, err := tr.breaker.Execute(func() (string, error) {
		info, err := tr.client.GetIPInfo(ip)
		if err != nil {
			return "", fmt.Errorf("ipinfo lookup: %w", err)
		}
		if info == nil || info.Timezone == "" {
			return "", ErrNoTimezone
		}
		return info.Timezone, nil
	})
	if err != nil {
		return "", err
	}

	if _, err := time.LoadLocation(tz); err != nil {
		return "", fmt.Errorf("ipinfo returned unknown timezone %s: %w", tz, err)
	}

	if err := tr.redisClient.Set(ctx, cacheKey, tz, cacheTTL).Err(); err != nil {
		log.Errorf("failed to cache ip timezone in redis for %s: %s", userIP, err)
	}

	return tz, nil
}

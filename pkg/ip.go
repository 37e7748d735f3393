package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1(:\d{1,5})?$`)

const LocalhostIP = "localhost"

func IPIsLocal(ipAddr string) bool {
	if ipAddr == "::1" || strings.HasPrefix(ipAddr, "[::1]") {
		return true
	}
	if ipAddr == "127.0.0.1" || strings.HasPrefix(ipAddr, "127.0.0.1:") {
		return true
	}
	// request coming from within a docker network
	return localDockerIpRegex.MatchString(ipAddr)
}

// ReadUserIP returns the client IP without the port. Proxy headers are only trusted when the
// request comes from the local reverse proxy, otherwise anyone could pick their own address.
// X-Forwarded-For is read from the end, the last hop is the one our proxy appended.
// Local and docker-network addresses are reported as LocalhostIP.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.RemoteAddr
	if IPIsLocal(ipAddr) {
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
			ipAddr = realIP
		} else if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			hops := strings.Split(fwd, ",")
			ipAddr = strings.TrimSpace(hops[len(hops)-1])
		}
	}

	if IPIsLocal(ipAddr) {
		return LocalhostIP, nil
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	if net.ParseIP(ipAddr) == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}

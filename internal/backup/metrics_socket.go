package backup

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/pkg"
)

const (
	SocketFileName = "fittrack-backup.sock"

	countKey    = "workouts-count"
	durationKey = "duration"
)

// MetricsListenerSetup accepts backup reports from the backup cmd on a unix socket
// and records them on the service metrics, so the cmd needs no metrics endpoint of its own.
func MetricsListenerSetup(
	ctx context.Context,
	socketAddrDir, socketFileName string,
	metricsManager *metrics.Manager,
) (net.Addr, error) {
	socket := filepath.Join(socketAddrDir, socketFileName)
	// a previous run may have left the socket file behind
	_ = os.Remove(socket)

	listener, err := net.Listen("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("binding to unix socket %s: %w", socket, err)
	}

	if err := os.Chmod(socket, os.ModeSocket|0666); err != nil {
		_ = listener.Close()
		return nil, err
	}

	go func() {
		<-ctx.Done()
		log.Debugln("backup unix socket listener context done, closing listener")
		_ = listener.Close()
	}()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() == nil {
					log.Errorf("backup unix socket listener conn accept: %s", err)
				}
				return
			}
			log.Debugf("backup unix socket got new conn: %s", conn.RemoteAddr().String())

			if err := conn.SetDeadline(time.Now().Add(time.Minute)); err != nil {
				log.Errorf("failed to set conn timeout: %s", err)
				_ = conn.Close()
				continue
			}

			go handleReport(conn, metricsManager)
		}
	}()

	return listener.Addr(), nil
}

func handleReport(conn net.Conn, metricsManager *metrics.Manager) {
	defer func() { _ = conn.Close() }()

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}

	messageReceived := pkg.BytesToString(buf[:n])
	log.Infof("backup unix socket received: %s", messageReceived)

	count, duration, err := parseReport(messageReceived)
	if err != nil {
		log.Errorf("backup conn, invalid message received: %s", err)
		_, _ = conn.Write([]byte("error"))
		return
	}

	metricsManager.CounterWorkoutsBackedUp.Add(float64(count))
	metricsManager.HistBackupDuration.Observe(duration.Seconds())

	if _, err := conn.Write([]byte("ok")); err != nil {
		log.Errorf("backup conn, send response: %s", err)
	}
}

func formatReport(count int, duration time.Duration) string {
	return fmt.Sprintf("%s::%d||%s::%f", countKey, count, durationKey, duration.Seconds())
}

func parseReport(msg string) (int, time.Duration, error) {
	msgParts := strings.Split(msg, "||")
	if len(msgParts) != 2 {
		return 0, 0, fmt.Errorf("expected 2 parts: %s", msg)
	}

	countRaw, ok := strings.CutPrefix(msgParts[0], countKey+"::")
	if !ok {
		return 0, 0, fmt.Errorf("missing %s: %s", countKey, msg)
	}
	count, err := strconv.Atoi(countRaw)
	if err != nil || count < 0 {
		return 0, 0, fmt.Errorf("invalid workouts count: %s", countRaw)
	}

	durationRaw, ok := strings.CutPrefix(msgParts[1], durationKey+"::")
	if !ok {
		return 0, 0, fmt.Errorf("missing %s: %s", durationKey, msg)
	}
	seconds, err := strconv.ParseFloat(durationRaw, 64)
	if err != nil || seconds < 0 {
		return 0, 0, fmt.Errorf("invalid duration: %s", durationRaw)
	}

	return count, time.Duration(seconds * float64(time.Second)), nil
}

// SendReport tells the service listening on the socket how a backup run went.
func SendReport(socketAddrDir, socketFileName string, count int, duration time.Duration) error {
	socket := filepath.Join(socketAddrDir, socketFileName)
	conn, err := net.DialTimeout("unix", socket, 10*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", socket, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	if _, err := conn.Write([]byte(formatReport(count, duration))); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp := pkg.BytesToString(buf[:n]); resp != "ok" {
		return fmt.Errorf("unexpected response: %s", resp)
	}
	return nil
}

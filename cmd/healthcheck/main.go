// Command healthcheck probes the running server's health endpoint and exits
// 0 or 1. It exists so a scratch container, which has no curl or wget, can
// declare a HEALTHCHECK.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	loopbackAddr = "127.0.0.1:8080"
	probeTimeout = 2 * time.Second
)

func main() {
	os.Exit(probe())
}

func probe() int {
	addr := probeAddr(os.Getenv("SHERPA_LISTEN_ADDR"))

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s/api/v1/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 1
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

// probeAddr maps the server's bind address to something the probe can dial
// from inside the same container: a 0.0.0.0 bind is reachable on loopback.
func probeAddr(raw string) string {
	if raw == "" {
		return loopbackAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return loopbackAddr
	}
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

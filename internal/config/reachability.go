package config

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"
)

// Probe reports whether base answers HTTP on probePath: a quick TCP dial
// followed by a GET. Any HTTP response counts, whatever its status.
func Probe(ctx context.Context, base, probePath string) bool {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	d := net.Dialer{Timeout: 750 * time.Millisecond}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	client := &http.Client{Timeout: 3 * time.Second}
	target := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(probePath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// DetectReachableBaseURL keeps initial when it answers, otherwise tries local
// variants of it (same port, then common ports on localhost and 127.0.0.1)
// and returns the first that answers. initial is returned when none do.
func DetectReachableBaseURL(ctx context.Context, initial, probePath string) string {
	start := time.Now()
	if Probe(ctx, initial, probePath) {
		return initial
	}

	tried := []string{initial}
	for _, c := range localCandidates(initial) {
		tried = append(tried, c)
		if Probe(ctx, c, probePath) {
			log.Info().Str("from", initial).Str("to", c).Dur("elapsed", time.Since(start)).
				Strs("tried", tried).Msg("auto-detect switched base url")
			return c
		}
	}
	log.Warn().Str("base_url", initial).Strs("tried", tried).Dur("elapsed", time.Since(start)).
		Msg("auto-detect kept unreachable base url")
	return initial
}

func localCandidates(initial string) []string {
	var candidates []string
	if u, err := url.Parse(initial); err == nil {
		host, port := u.Hostname(), u.Port()
		ports := []string{"80", "8080", "8089"}
		if port != "" {
			ports = append([]string{port}, ports...)
		}
		if host != "localhost" && host != "127.0.0.1" {
			for _, h := range []string{"localhost", "127.0.0.1"} {
				for _, p := range ports {
					candidates = append(candidates, "http://"+h+":"+p)
				}
			}
		}
	}
	candidates = append(candidates, "http://localhost:8080")

	seen := map[string]struct{}{initial: {}}
	uniq := candidates[:0]
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	return uniq
}

// ResolveTarget applies auto-detection to the target base URL when enabled.
func (c *Config) ResolveTarget(ctx context.Context) {
	if !c.Target.Autodetect || c.Target.Fake {
		return
	}
	c.Target.BaseURL = DetectReachableBaseURL(ctx, c.Target.BaseURL, c.Target.LoginPath)
}

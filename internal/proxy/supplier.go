// Package proxy keeps a round-robin pool of outbound proxies that passed a health check.
package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	maxConcurrentChecks = 16
	checkTimeout        = 5 * time.Second
)

// Supplier hands out proxy URLs in round-robin order. Get returns "" when the pool is empty.
type Supplier interface {
	Get() string
	Len() int
}

type roundRobin struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier checks every proxy in parallel by fetching pingURL through it and
// keeps the ones that answered, in their configured order.
func NewSupplier(ctx context.Context, proxies []string, pingURL string) Supplier {
	if len(proxies) == 0 {
		return &roundRobin{}
	}

	log.Infof("🔄 Checking %d proxies against %s...", len(proxies), pingURL)

	healthy := make([]bool, len(proxies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)

	for i, proxyURL := range proxies {
		g.Go(func() error {
			healthy[i] = isProxyHealthy(gctx, proxyURL, pingURL)
			return nil
		})
	}
	_ = g.Wait()

	valid := make([]string, 0, len(proxies))
	for i, ok := range healthy {
		if ok {
			valid = append(valid, proxies[i])
		} else {
			log.Warnf("❌ Proxy %s failed its health check, skipping", proxies[i])
		}
	}

	log.Infof("✅ Proxy pool ready with %d of %d proxies", len(valid), len(proxies))
	return &roundRobin{proxies: valid}
}

func (p *roundRobin) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)
	return proxy
}

func (p *roundRobin) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

func isProxyHealthy(ctx context.Context, proxyURL, pingURL string) bool {
	client := resty.New().
		SetTimeout(checkTimeout).
		SetRetryCount(0).
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{MinVersion: tls.VersionTLS12})

	resp, err := client.R().
		SetContext(ctx).
		Get(pingURL)
	if err != nil {
		log.Debugf("Proxy check failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Proxy check failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}

package useragent

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync/atomic"
)

// Browser user agents, grouped so the header can match the TLS fingerprint
// presented by the same client.
var (
	Chrome = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	}
	Firefox = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:133.0) Gecko/20100101 Firefox/133.0",
	}
	Safari = []string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Mobile/15E148 Safari/604.1",
	}
)

// Pool hands out user agents from a fixed list.
type Pool struct {
	uas     []string
	counter atomic.Uint64
}

// NewPool creates a pool over a copy of uas. An empty list yields a pool
// whose getters return "".
func NewPool(uas []string) *Pool {
	copied := make([]string, len(uas))
	copy(copied, uas)
	return &Pool{uas: copied}
}

// ForBrowser returns the pool for a browser name (chrome, firefox, safari).
// Any other name, including "random", draws from all browsers.
func ForBrowser(name string) *Pool {
	switch strings.ToLower(name) {
	case "chrome":
		return NewPool(Chrome)
	case "firefox":
		return NewPool(Firefox)
	case "safari":
		return NewPool(Safari)
	}
	all := append(append(append([]string{}, Chrome...), Firefox...), Safari...)
	return NewPool(all)
}

// GetSequential returns the next user agent in round-robin order.
// It is safe for concurrent use.
func (p *Pool) GetSequential() string {
	if len(p.uas) == 0 {
		return ""
	}
	idx := p.counter.Add(1) - 1
	return p.uas[idx%uint64(len(p.uas))]
}

// GetRandom returns a random user agent using crypto/rand.
func (p *Pool) GetRandom() string {
	if len(p.uas) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.uas))))
	if err != nil {
		return p.GetSequential()
	}
	return p.uas[n.Int64()]
}

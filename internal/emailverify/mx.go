// Package emailverify checks that a mail domain can actually receive mail.
package emailverify

import (
	"context"
	"sync"

	"github.com/miekg/dns"

	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

// defaultResolvers are tried in order until one answers.
var defaultResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// MXChecker verifies mail domains by querying for MX records. Results are
// cached per domain for the lifetime of the checker: one extraction job
// sees many addresses on the same few domains.
type MXChecker struct {
	client    *dns.Client
	resolvers []string
	log       logger.Interface

	mu    sync.Mutex
	cache map[string]bool
}

// NewMXChecker creates a checker using the default public resolvers.
func NewMXChecker(log logger.Interface) *MXChecker {
	return &MXChecker{
		client:    new(dns.Client),
		resolvers: defaultResolvers,
		log:       log.WithComponent("emailverify"),
		cache:     make(map[string]bool),
	}
}

// HasMX reports whether the domain has at least one MX record. A lookup
// failure counts as no MX: callers treat the address as unverifiable.
func (c *MXChecker) HasMX(ctx context.Context, mailDomain string) bool {
	if mailDomain == "" {
		return false
	}

	c.mu.Lock()
	cached, ok := c.cache[mailDomain]
	c.mu.Unlock()
	if ok {
		return cached
	}

	found := c.lookup(ctx, mailDomain)

	c.mu.Lock()
	c.cache[mailDomain] = found
	c.mu.Unlock()

	return found
}

func (c *MXChecker) lookup(ctx context.Context, mailDomain string) bool {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(mailDomain), dns.TypeMX)
	msg.RecursionDesired = true

	for _, server := range c.resolvers {
		resp, _, err := c.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			continue
		}
		if resp != nil && resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0 {
			return true
		}
	}

	c.log.Debug("no MX records found", "domain", mailDomain)
	return false
}

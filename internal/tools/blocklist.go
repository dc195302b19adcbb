package tools

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Blocklist holds domains the investigation tools must not touch.
// Wikipedia and its mirrors live here: a judge citing Wikipedia to
// verify a Wikidata edit would be circular.
type Blocklist struct {
	domains map[string]bool
}

type blocklistFile struct {
	Domains []struct {
		Domain string `yaml:"domain"`
		Reason string `yaml:"reason"`
	} `yaml:"domains"`
}

// NewBlocklist builds a blocklist from a list of domains
func NewBlocklist(domains []string) *Blocklist {
	b := &Blocklist{domains: make(map[string]bool)}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			b.domains[d] = true
		}
	}
	return b
}

// LoadBlocklist reads a blocked-domain YAML file. An empty path or a
// missing file yields an empty blocklist, not an error.
func LoadBlocklist(path string) (*Blocklist, error) {
	if path == "" {
		return NewBlocklist(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewBlocklist(nil), nil
		}
		return nil, fmt.Errorf("read blocklist %s: %w", path, err)
	}

	var parsed blocklistFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse blocklist %s: %w", path, err)
	}

	domains := make([]string, 0, len(parsed.Domains))
	for _, entry := range parsed.Domains {
		domains = append(domains, entry.Domain)
	}
	return NewBlocklist(domains), nil
}

// Blocks reports whether the URL's host is blocked. A blocked domain
// covers itself and every subdomain: "wikipedia.org" blocks
// "en.wikipedia.org" but not "mywikipedia.org". Unparseable URLs are
// not blocked.
func (b *Blocklist) Blocks(rawURL string) bool {
	if len(b.domains) == 0 {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return false
	}

	for domain := range b.domains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}

// Len returns the number of blocked domains
func (b *Blocklist) Len() int {
	return len(b.domains)
}

package shortener

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

const (
	TypeAll    = "all"
	TypeSuffix = "suffix"
)

// ISet decides whether a host belongs to a shortener service.
type ISet interface {
	Name() string
	Type() string
	Match(host string) bool
}

type Factory func(name string, args interface{}) (ISet, error)

var m = make(map[string]Factory)

func Register(typ string, fac Factory) {
	m[typ] = fac
}

func MakeSet(typ string, name string, args interface{}) (ISet, error) {
	cr, ok := m[typ]
	if !ok {
		return nil, fmt.Errorf("shortener set type:%s not found", typ)
	}
	return cr(name, args)
}

// IsAll reports whether every host is treated as shortened.
func IsAll(s ISet) bool {
	return s != nil && s.Type() == TypeAll
}

// NormalizeHost lower-cases the host and strips a trailing dot.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	return strings.TrimSuffix(dns.CanonicalName(host), ".")
}

func splitLabels(host string) []string {
	host = NormalizeHost(host)
	if host == "" {
		return nil
	}
	return dns.SplitDomainName(host)
}

package shortener

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/utils"
)

type config struct {
	Builtin bool     `json:"builtin"`
	Domains []string `json:"domains"`
	Files   []string `json:"files"`
}

type suffixSet struct {
	name    string
	root    *suffixNode
	domains []string
}

func (s *suffixSet) Name() string {
	return s.name
}

func (s *suffixSet) Type() string {
	return TypeSuffix
}

func (s *suffixSet) Match(host string) bool {
	return s.root.match(host)
}

// Domains returns the normalized domains in insertion order.
func (s *suffixSet) Domains() []string {
	return append([]string(nil), s.domains...)
}

// NewSuffixSet builds a set matching the given domains and any of their subdomains.
func NewSuffixSet(name string, domains ...string) ISet {
	s := &suffixSet{name: name, root: newSuffixNode()}
	seen := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = NormalizeHost(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		s.root.add(d)
		s.domains = append(s.domains, d)
	}
	return s
}

// Builtin returns a set holding the well known shortener domains.
func Builtin() ISet {
	return NewSuffixSet("builtin", builtinDomains...)
}

func createSuffixSet(name string, args interface{}) (ISet, error) {
	c := &config{}
	if args != nil {
		if err := utils.ConvStructJson(args, c); err != nil {
			return nil, err
		}
	}
	domains := make([]string, 0, len(c.Domains)+len(builtinDomains))
	if c.Builtin {
		domains = append(domains, builtinDomains...)
	}
	for _, d := range c.Domains {
		if strings.TrimSpace(d) == "" {
			return nil, fmt.Errorf("empty shortener domain found")
		}
		domains = append(domains, d)
	}
	fileDomains, err := loadDomainFiles(c.Files)
	if err != nil {
		return nil, err
	}
	domains = append(domains, fileDomains...)
	return NewSuffixSet(name, domains...), nil
}

func init() {
	Register(TypeSuffix, createSuffixSet)
}

func loadDomainFiles(files []string) ([]string, error) {
	var domains []string
	for _, path := range files {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open domain file %s: %w", path, err)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			domains = append(domains, line)
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, fmt.Errorf("read domain file %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("close domain file %s: %w", path, err)
		}
	}
	return domains, nil
}

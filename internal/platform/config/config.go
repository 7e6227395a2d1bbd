// Package config reads process configuration from environment variables
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"djnic/internal/platform/logger"
)

// Conf is a prefixed view over the environment, e.g. New().Prefix("TELEGRAM_")
type Conf struct{ prefix string }

// New returns the root view with no prefix
func New() Conf { return Conf{} }

// Prefix returns a child view that prepends p to every key
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the fully qualified variable name for k
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

func (c Conf) missing(k string) {
	logger.Get().Panic().Str("key", c.Key(k)).Msg("missing required env")
}

func (c Conf) invalid(k, v, want string) {
	logger.Get().Panic().Str("key", c.Key(k)).Str("value", v).Msg("invalid " + want)
}

func (c Conf) fallback(k, v, want string) {
	logger.Get().Warn().Str("key", c.Key(k)).Str("value", v).Msg("invalid " + want + "; using default")
}

// MustString returns the value of key or panics when it is unset
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		c.missing(key)
	}
	return v
}

// MustInt returns key parsed as an int or panics
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		c.invalid(key, s, "int")
	}
	return n
}

// MustURL returns key parsed as an absolute URL or panics
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		c.invalid(key, s, "absolute URL")
	}
	return u
}

// MustPort returns a listen address like ":8080" after checking the 1..65535 range
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		c.invalid(key, s, "TCP port")
	}
	return ":" + s
}

// Require panics on the first key that is unset
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.lookup(k) == "" {
			c.missing(k)
		}
	}
}

// MayString returns the value of key or def
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns key parsed as an int, def when unset or invalid
func (c Conf) MayInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		c.fallback(key, s, "int")
		return def
	}
	return n
}

// MayBool returns key parsed as a bool, def when unset or invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		c.fallback(key, s, "bool")
		return def
	}
	return b
}

// MayDuration returns key parsed with time.ParseDuration, def when unset or invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		c.fallback(key, s, "duration")
		return def
	}
	return d
}

// MayCSV splits a comma separated value, dropping blanks
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for p := range strings.SplitSeq(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed (case insensitive), def when unset.
// Any other value panics.
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

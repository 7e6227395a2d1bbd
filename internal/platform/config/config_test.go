package config

import (
	"testing"
	"time"

	kit "djnic/internal/platform/testkit"
)

func TestPrefixKey(t *testing.T) {
	c := New().Prefix("TELEGRAM_").Prefix("WEBHOOK_")
	if got := c.Key("SECRET"); got != "TELEGRAM_WEBHOOK_SECRET" {
		t.Fatalf("Key = %q", got)
	}
}

func TestMust(t *testing.T) {
	c := New().Prefix("CFGT_")
	t.Setenv("CFGT_NAME", "  djnic ")
	t.Setenv("CFGT_PORT", "8080")
	t.Setenv("CFGT_BADPORT", "70000")
	t.Setenv("CFGT_URL", "https://nic.example/")
	t.Setenv("CFGT_REL", "/relative")

	if got := c.MustString("NAME"); got != "djnic" {
		t.Fatalf("MustString = %q", got)
	}
	if got := c.MustPort("PORT"); got != ":8080" {
		t.Fatalf("MustPort = %q", got)
	}
	if u := c.MustURL("URL"); u.Host != "nic.example" {
		t.Fatalf("MustURL host = %q", u.Host)
	}
	kit.MustPanic(t, func() { c.MustString("MISSING") })
	kit.MustPanic(t, func() { c.MustPort("BADPORT") })
	kit.MustPanic(t, func() { c.MustURL("REL") })
	kit.MustPanic(t, func() { c.Require("NAME", "MISSING") })
}

func TestMay(t *testing.T) {
	c := New().Prefix("CFGM_")
	t.Setenv("CFGM_LIMIT", " 250 ")
	t.Setenv("CFGM_BADINT", "x")
	t.Setenv("CFGM_DRY", "true")
	t.Setenv("CFGM_TTL", "30m")
	t.Setenv("CFGM_BADTTL", "soon")
	t.Setenv("CFGM_CHANNELS", " telegram, ,email ")

	cases := []struct {
		name string
		got  any
		want any
	}{
		{"int", c.MayInt("LIMIT", 1), 250},
		{"int fallback", c.MayInt("BADINT", 7), 7},
		{"int unset", c.MayInt("NOPE", 3), 3},
		{"bool", c.MayBool("DRY", false), true},
		{"duration", c.MayDuration("TTL", time.Minute), 30 * time.Minute},
		{"duration fallback", c.MayDuration("BADTTL", time.Minute), time.Minute},
		{"string default", c.MayString("NOPE", "def"), "def"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, tc.got, tc.want)
		}
	}

	csv := c.MayCSV("CHANNELS", nil)
	if len(csv) != 2 || csv[0] != "telegram" || csv[1] != "email" {
		t.Fatalf("MayCSV = %#v", csv)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("CFGE_")
	t.Setenv("CFGE_MODE", "JSON")
	if got := c.MayEnum("MODE", "console", "console", "json"); got != "json" {
		t.Fatalf("MayEnum = %q", got)
	}
	t.Setenv("CFGE_BAD", "xml")
	kit.MustPanic(t, func() { c.MayEnum("BAD", "json", "console", "json") })
}

package cache

import "testing"

func TestRedisKeyPrefix(t *testing.T) {
	c := newRedisCache(nil, "finsignal")
	if got := c.key("scan:lock"); got != "finsignal:scan:lock" {
		t.Fatalf("key = %q", got)
	}
	if got := c.keys([]string{"a", "b"}); got[0] != "finsignal:a" || got[1] != "finsignal:b" {
		t.Fatalf("keys = %v", got)
	}
	if got := newRedisCache(nil, "").key("signals:latest"); got != "signals:latest" {
		t.Fatalf("empty prefix should keep key, got %q", got)
	}
}

func TestRedisOwnerTokensDiffer(t *testing.T) {
	a, b := newRedisCache(nil, ""), newRedisCache(nil, "")
	if a.owner == "" || a.owner == b.owner {
		t.Fatalf("owners must be unique, got %q and %q", a.owner, b.owner)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	if got := GenerateKeyWithParams("candles", "BTCUSDT", "1h", 200); got != "candles:BTCUSDT:1h:200" {
		t.Fatalf("key = %q", got)
	}
	if got := GenerateKeyWithParams("signals"); got != "signals" {
		t.Fatalf("key without params = %q", got)
	}
}

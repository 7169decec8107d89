package http

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const (
	volumeA = "/api/v1/markets/bonds/securities/SU26238RMFS4/metrics/volume"
	volumeB = "/api/v1/markets/bonds/securities/SU26240RMFS0/metrics/volume"
)

func newCachedHandler(t *testing.T) (*Handler, *stubSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	src := newStubSource()
	return newHandlerWith(t, src, client), src, mr
}

func TestCache_MissFallsThroughThenHits(t *testing.T) {
	h, src, mr := newCachedHandler(t)

	first := doGet(h, volumeA)
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", first.Code, first.Body.String())
	}
	if src.calls != 1 {
		t.Fatalf("source calls after miss = %d, want 1", src.calls)
	}

	second := doGet(h, volumeA)
	if second.Code != http.StatusOK {
		t.Fatalf("cached status = %d, want 200", second.Code)
	}
	if src.calls != 1 {
		t.Errorf("source calls after hit = %d, want 1", src.calls)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("cached body = %s, want %s", second.Body.String(), first.Body.String())
	}

	cached, err := mr.Get("quotes:GET:" + volumeA + "?")
	if err != nil {
		t.Fatalf("cache entry: %v", err)
	}
	if cached != first.Body.String() {
		t.Errorf("cache entry = %s, want %s", cached, first.Body.String())
	}
	if ttl := mr.TTL("quotes:GET:" + volumeA + "?"); ttl <= 0 {
		t.Errorf("cache entry ttl = %v, want positive", ttl)
	}
}

func TestCache_KeyPerSecurity(t *testing.T) {
	h, src, mr := newCachedHandler(t)

	a := decodeBody(t, doGet(h, volumeA))
	b := decodeBody(t, doGet(h, volumeB))

	if a["value"] != "1000" || b["value"] != "2000" {
		t.Errorf("values = %v / %v, want 1000 / 2000", a["value"], b["value"])
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}

	want := []string{"quotes:GET:" + volumeA + "?", "quotes:GET:" + volumeB + "?"}
	if got := mr.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestCache_QueryIsPartOfKey(t *testing.T) {
	h, _, _ := newCachedHandler(t)

	rub := decodeBody(t, doGet(h, volumeA))
	usd := decodeBody(t, doGet(h, volumeA+"?arg=usd"))

	if rub["value"] != "1000" || usd["value"] != "11" {
		t.Errorf("values = %v / %v, want 1000 / 11", rub["value"], usd["value"])
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	h, src, mr := newCachedHandler(t)

	for _, target := range []string{
		"/api/v1/markets/bonds/securities/NOPE/metrics/volume",
		volumeA + "?arg=eur",
	} {
		for i := 0; i < 2; i++ {
			if rec := doGet(h, target); rec.Code < 400 {
				t.Fatalf("%s: status = %d, want an error", target, rec.Code)
			}
		}
	}

	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("keys = %v, want none", keys)
	}
	if src.calls != 4 {
		t.Errorf("source calls = %d, want 4", src.calls)
	}
}

func TestCache_RedisDownServesFromSource(t *testing.T) {
	h, src, mr := newCachedHandler(t)
	mr.Close()

	for i := 0; i < 2; i++ {
		rec := doGet(h, volumeA)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestResolveLocalAddressesSkipLookup(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"status":"success","country":"Nowhere","regionName":"NA","city":"Nowhere"}`))
	}))
	defer srv.Close()

	resolver := NewGeoResolverWithBaseURL(zap.NewNop(), srv.URL)
	local := Location{Country: "Local", City: "Local", Region: "Local"}

	for _, ip := range []string{"127.0.0.1", "::1", "192.168.1.44", "10.0.0.5", "172.16.0.9", "169.254.10.1", "localhost", ""} {
		if got := resolver.Resolve(context.Background(), ip); got != local {
			t.Errorf("Resolve(%q) = %+v, want Local triple", ip, got)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("local addresses triggered %d lookup(s), want 0", n)
	}
}

func TestResolvePublicAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/8.8.8.8" {
			t.Errorf("unexpected lookup path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","country":"United States","regionName":"California","city":"Mountain View"}`))
	}))
	defer srv.Close()

	resolver := NewGeoResolverWithBaseURL(zap.NewNop(), srv.URL)
	got := resolver.Resolve(context.Background(), "8.8.8.8")
	want := Location{Country: "United States", City: "Mountain View", Region: "California"}
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "lookup status fail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			resolver := NewGeoResolverWithBaseURL(zap.NewNop(), srv.URL)
			if got := resolver.Resolve(context.Background(), "8.8.8.8"); got != (Location{}) {
				t.Errorf("Resolve = %+v, want empty Location", got)
			}
		})
	}
}

func TestResolveUnreachableResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	resolver := NewGeoResolverWithBaseURL(zap.NewNop(), srv.URL)
	if got := resolver.Resolve(context.Background(), "8.8.8.8"); got != (Location{}) {
		t.Errorf("Resolve = %+v, want empty Location on network error", got)
	}
}

package targetloading

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jheddings/safenet/internal/config"
	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/model/mocks"
	"github.com/jheddings/safenet/internal/runtimex"
	"github.com/jheddings/safenet/internal/sourceip"
	"github.com/jheddings/safenet/internal/testingx"
)

type sourceResolverFunc func(cidr string) (netip.Addr, error)

func (fx sourceResolverFunc) ResolveSourceIP(cidr string) (netip.Addr, error) {
	return fx(cidr)
}

func mustParse(doc string) *config.Config {
	return runtimex.Try1(config.ParseConfig([]byte(doc), config.FormatYAML))
}

func TestLoaderLoad(t *testing.T) {
	t.Run("builds targets in scan order", func(t *testing.T) {
		cfg := mustParse(`
targets:
  - name: a
    kind: http
    address: http://a.example/
    safe: true
networks:
  - name: b
    address: 10.0.0.2
    port: 22
    network: 10.0.2.0/24
systems:
  - name: c
    address: 10.0.0.3
websites:
  - name: d
    address: https://d.example/
`)
		var cidrs []string
		loader := &Loader{
			Config: cfg,
			SourceResolver: sourceResolverFunc(func(cidr string) (netip.Addr, error) {
				cidrs = append(cidrs, cidr)
				return netip.MustParseAddr("10.0.2.7"), nil
			}),
		}
		targets, err := loader.Load()
		if err != nil {
			t.Fatal(err)
		}
		type row struct {
			Name    string
			Kind    model.ProbeKind
			Address string
			Policy  model.PolicyName
		}
		var got []row
		for _, tg := range targets {
			got = append(got, row{tg.Name(), tg.Kind(), tg.Address(), tg.Policy()})
		}
		expect := []row{
			{"a", model.ProbeKindHTTP, "http://a.example/", model.PolicyExpectAvailable},
			{"d", model.ProbeKindHTTP, "https://d.example/", model.PolicyExpectBlocked},
			{"c", model.ProbeKindPing, "10.0.0.3", model.PolicyExpectBlocked},
			{"b", model.ProbeKindTCP, "10.0.0.2:22", model.PolicyExpectBlocked},
		}
		if diff := cmp.Diff(expect, got); diff != "" {
			t.Fatal(diff)
		}
		if diff := cmp.Diff([]string{"10.0.2.0/24"}, cidrs); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("fails before building targets when no interface matches", func(t *testing.T) {
		cfg := mustParse(`
networks:
  - name: guest
    address: 10.0.0.2
    port: 22
    network: 192.0.2.0/24
`)
		loader := &Loader{
			Config: cfg,
			SourceResolver: sourceResolverFunc(func(cidr string) (netip.Addr, error) {
				return netip.Addr{}, fmt.Errorf("%w: %s", sourceip.ErrNoMatchingInterface, cidr)
			}),
		}
		targets, err := loader.Load()
		if !errors.Is(err, sourceip.ErrNoMatchingInterface) {
			t.Fatal("unexpected error", err)
		}
		if targets != nil {
			t.Fatal("expected no targets")
		}
	})

	t.Run("with the real source resolver and loopback", func(t *testing.T) {
		acceptor := testingx.MustNewTCPAcceptor(
			&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}, &testingx.TCPListenerStdlib{})
		defer acceptor.Close()
		cfg := mustParse(fmt.Sprintf(`
networks:
  - name: loopback
    address: 127.0.0.1
    port: %d
    network: 127.0.0.1/32
    safe: true
`, acceptor.Addr().Port))
		targets, err := (&Loader{Config: cfg}).Load()
		if err != nil {
			t.Fatal(err)
		}
		if !targets[0].Check(context.Background()) {
			t.Fatal("expected the check to pass", targets[0].Last().Result.Detail)
		}
	})

	t.Run("with an unknown probe kind", func(t *testing.T) {
		cfg := &config.Config{Targets: []config.Target{{Name: "x", Kind: "carrier-pigeon", Address: "x"}}}
		_, err := (&Loader{Config: cfg}).Load()
		if !errors.Is(err, ErrUnknownProbeKind) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("uses the given resolver", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		_, port := runtimex.Try2(net.SplitHostPort(server.Listener.Addr().String()))
		cfg := mustParse(fmt.Sprintf(`
websites:
  - name: named
    address: http://www.example.com:%s/
    safe: true
`, port))
		var lookups []string
		resolver := &mocks.Resolver{
			MockLookupHost: func(ctx context.Context, domain string) ([]string, error) {
				lookups = append(lookups, domain)
				return []string{"127.0.0.1"}, nil
			},
			MockCloseIdleConnections: func() {},
		}
		targets, err := (&Loader{Config: cfg, Resolver: resolver}).Load()
		if err != nil {
			t.Fatal(err)
		}
		if !targets[0].Check(context.Background()) {
			t.Fatal("expected the check to pass", targets[0].Last().Result.Detail)
		}
		if diff := cmp.Diff([]string{"www.example.com"}, lookups); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("uses the configured DNS server", func(t *testing.T) {
		listener := testingx.MustNewDNSOverUDPListener(
			&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)},
			&testingx.DNSOverUDPStdlibListener{},
			testingx.NewDNSRoundTripperWithRecords(testingx.DNSRecords{}),
		)
		defer listener.Close()
		cfg := mustParse(fmt.Sprintf(`
resolver:
  server: %s
  timeout: 1s
networks:
  - name: missing
    address: nonexistent.example
    port: 80
`, listener.LocalAddr().String()))
		targets, err := (&Loader{Config: cfg}).Load()
		if err != nil {
			t.Fatal(err)
		}
		outcome := targets[0].Evaluate(context.Background())
		if outcome.Result.Available || outcome.Result.Failure != "dns_nxdomain_error" {
			t.Fatal("unexpected result", outcome.Result)
		}
		if !outcome.Verdict.Passed {
			t.Fatal("expected an unsafe unresolvable target to pass")
		}
	})
}

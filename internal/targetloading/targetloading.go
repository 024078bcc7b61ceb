// Package targetloading builds the targets to scan from the configuration.
package targetloading

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/jheddings/safenet/internal/config"
	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/netxlite"
	"github.com/jheddings/safenet/internal/policy"
	"github.com/jheddings/safenet/internal/probe"
	"github.com/jheddings/safenet/internal/sourceip"
	"github.com/jheddings/safenet/internal/target"
	pkgerrors "github.com/pkg/errors"
)

// ErrUnknownProbeKind indicates a target declaration with a kind
// for which we have no probe.
var ErrUnknownProbeKind = errors.New("targetloading: unknown probe kind")

// SourceResolver maps a subnet to a local address.
type SourceResolver interface {
	ResolveSourceIP(cidr string) (netip.Addr, error)
}

// Loader builds targets from the configuration.
//
// Every source subnet is resolved before any target is built, so that
// a missing interface aborts the run before the first check.
type Loader struct {
	// Config is the MANDATORY validated configuration.
	Config *config.Config

	// Logger is the OPTIONAL logger. When nil we discard logs.
	Logger model.Logger

	// SourceResolver is the OPTIONAL source resolver. When nil we
	// use a sourceip.Resolver enumerating the local interfaces.
	SourceResolver SourceResolver

	// Resolver is the OPTIONAL resolver for targets' names. When nil
	// we use the resolver named by the configuration.
	Resolver model.Resolver
}

// Load returns the targets in scan order.
func (l *Loader) Load() ([]*target.Target, error) {
	logger := model.ValidLoggerOrDefault(l.Logger)
	decls := l.Config.AllTargets()

	sources, err := l.resolveSources(logger, decls)
	if err != nil {
		return nil, err
	}

	resolver := l.resolver(logger)
	var out []*target.Target
	for idx, decl := range decls {
		p, err := newProbe(logger, resolver, decl, sources[idx])
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "target %s", decl.Name)
		}
		out = append(out, target.New(decl.Name, p, policy.FromSafe(decl.Safe), logger))
	}
	return out, nil
}

// resolveSources returns the source address of each declaration, or
// the zero netip.Addr when the declaration has no network.
func (l *Loader) resolveSources(logger model.Logger, decls []config.Target) ([]netip.Addr, error) {
	sr := l.SourceResolver
	if sr == nil {
		sr = sourceip.NewResolver(logger)
	}
	sources := make([]netip.Addr, len(decls))
	for idx, decl := range decls {
		if decl.Network == "" {
			continue
		}
		addr, err := sr.ResolveSourceIP(decl.Network)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "target %s", decl.Name)
		}
		logger.Debugf("target %s: using source address %s", decl.Name, addr)
		sources[idx] = addr
	}
	return sources, nil
}

func (l *Loader) resolver(logger model.Logger) model.Resolver {
	if l.Resolver != nil {
		return l.Resolver
	}
	rc := l.Config.Resolver
	if rc.Server == "" {
		return netxlite.NewResolverStdlib(logger)
	}
	var timeout = config.DefaultTimeout
	if rc.Timeout != nil {
		timeout = rc.Timeout.Std()
	}
	return netxlite.NewResolverUDP(logger, rc.Server, timeout)
}

func newProbe(logger model.Logger, resolver model.Resolver, decl config.Target, source netip.Addr) (model.Probe, error) {
	var timeout = config.DefaultTimeout
	if decl.Timeout != nil {
		timeout = decl.Timeout.Std()
	}
	switch decl.Kind {
	case model.ProbeKindPing:
		pc := probe.PingConfig{
			Count:      valueOr(decl.Count, config.DefaultCount),
			Timeout:    timeout,
			TTL:        valueOr(decl.TTL, config.DefaultTTL),
			Size:       valueOr(decl.Size, config.DefaultSize),
			Privileged: decl.Privileged,
		}
		return probe.NewPing(decl.Address, pc, netxlite.NewEchoDialer(logger, resolver), logger), nil
	case model.ProbeKindTCP:
		dialer := netxlite.NewDialerWithResolver(logger, resolver, source)
		return probe.NewTCP(decl.Address, decl.Port, timeout, dialer, logger), nil
	case model.ProbeKindHTTP:
		dialer := netxlite.NewDialerWithResolver(logger, resolver, netip.Addr{})
		txp := netxlite.NewHTTPTransport(logger, dialer)
		return probe.NewHTTP(decl.Address, timeout, txp, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProbeKind, decl.Kind)
	}
}

func valueOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

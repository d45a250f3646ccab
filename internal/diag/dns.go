package diag

import (
	"context"
	"fmt"
	"net"
	"time"

	"mytunnel_ops/internal/shared/types"
)

const dnsLookupTimeout = 5 * time.Second

// lookupFn is one interchangeable resolution mechanism in the fallback chain.
type lookupFn func(ctx context.Context, host string) ([]string, error)

// defaultLookups is the resolution chain: system resolver first, then direct
// queries to public resolvers for the case where the local stub is broken.
func defaultLookups() []lookupFn {
	return []lookupFn{
		net.DefaultResolver.LookupHost,
		directLookup("1.1.1.1:53"),
		directLookup("8.8.8.8:53"),
	}
}

func directLookup(server string) lookupFn {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, server)
		},
	}
	return r.LookupHost
}

// dnsStage resolves the configured server host. A literal IP short-circuits
// to pass without touching any resolver.
func dnsStage(host string, lookups []lookupFn) types.TestOutcome {
	out := types.TestOutcome{Name: "dns", Kind: types.Required}

	if net.ParseIP(host) != nil {
		out.Result = types.Pass
		out.Detail = fmt.Sprintf("%s is a literal IP address, no lookup needed", host)
		return out
	}

	var lastErr error
	for _, lookup := range lookups {
		ctx, cancel := context.WithTimeout(context.Background(), dnsLookupTimeout)
		addrs, err := lookup(ctx, host)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if len(addrs) > 0 {
			out.Result = types.Pass
			out.Detail = fmt.Sprintf("resolved %d address(es) for %s, first: %s", len(addrs), host, addrs[0])
			return out
		}
		lastErr = fmt.Errorf("no addresses returned for %s", host)
	}

	out.Result = types.Fail
	out.Detail = fmt.Sprintf("failed to resolve %s: %v (check server.address and your DNS settings)", host, lastErr)
	return out
}

// Package ip implements the ip diagnostics commands.
package ip

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	"github.com/jheddings/safenet/internal/cli/root"
	"github.com/jheddings/safenet/internal/sourceip"
)

// Resolver lists and searches local addresses.
type Resolver interface {
	ListIPv4() ([]netip.Addr, error)
	ResolveSourceIP(cidr string) (netip.Addr, error)
}

func init() {
	cmd := root.Command("ip", "Local IPv4 address diagnostics.")

	listCmd := cmd.Command("list", "List the IPv4 addresses of the local interfaces.")
	listCmd.Action(func(_ *kingpin.ParseContext) error {
		return List(os.Stdout, os.Stderr, sourceip.NewResolver(nil))
	})

	findCmd := cmd.Command("find", "Find the local IPv4 address within a network.")
	cidr := findCmd.Arg("cidr", "The network to search (e.g., 10.0.1.0/24).").Required().String()
	findCmd.Action(func(_ *kingpin.ParseContext) error {
		return Find(os.Stdout, os.Stderr, sourceip.NewResolver(nil), *cidr)
	})
}

// List prints every local IPv4 address.
func List(stdout, stderr io.Writer, r Resolver) error {
	addrs, err := r.ListIPv4()
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		fmt.Fprintln(stderr, "No IP addresses found")
		return nil
	}
	fmt.Fprintln(stdout, "Available IP addresses:")
	for _, addr := range addrs {
		fmt.Fprintf(stdout, "  - %s\n", color.CyanString(addr.String()))
	}
	return nil
}

// Find prints the first local IPv4 address within cidr. It returns an
// exit status of 1 when there is no such address.
func Find(stdout, stderr io.Writer, r Resolver, cidr string) error {
	addr, err := r.ResolveSourceIP(cidr)
	if errors.Is(err, sourceip.ErrNoMatchingInterface) {
		fmt.Fprintf(stderr, "No IP address found in network %s\n", cidr)
		return &root.ExitError{Code: 1}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Found device IP in network %s: %s\n", cidr, color.GreenString(addr.String()))
	return nil
}

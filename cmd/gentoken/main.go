// gentoken mints a signed compact token with a chosen lifetime.
// Handy to seed sessiond or to fake an authority locally.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/service/token"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating token: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		secret  string
		subject string
		alg     string
		ttl     time.Duration
		verbose bool
	)

	fs := pflag.NewFlagSet("gentoken", pflag.ContinueOnError)
	fs.StringVarP(&secret, "secret", "s", "", "Secret key to sign token with")
	fs.StringVar(&subject, "subject", "sessiond", "Token subject")
	fs.StringVar(&alg, "alg", "HS256", "Signing algorithm (HS256, HS384, HS512)")
	fs.DurationVarP(&ttl, "ttl", "t", 15*time.Minute, "Token lifetime, negative for already expired token")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Print expiration along with the token")

	if err := fs.Parse(args); err != nil {
		return err
	}

	issuer, err := token.NewIssuer(token.Config{SecretKey: secret, Alg: alg})
	if err != nil {
		return err
	}

	issued, err := issuer.IssueExpiring(subject, time.Now().Add(ttl))
	if err != nil {
		return err
	}

	if verbose {
		_, err = fmt.Fprintf(out, "%s\nexpires at %s\n", issued.Value, issued.ExpiresAt.UTC().Format(time.RFC3339))
		return err
	}

	_, err = fmt.Fprintln(out, issued.Value)
	return err
}

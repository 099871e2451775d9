// Package main writes a development CA and a server certificate for the
// task service into a directory (./certs by default).
//
//	go run ./tools/certgen --hosts localhost,127.0.0.1
//	server --tls-cert certs/server.crt --tls-key certs/server.key
//	gophtasks --url https://localhost:8080 --ca-file certs/ca.crt list
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/atinyakov/GophTasks/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("certgen", pflag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.StringSlice("hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs the server certificate is valid for")
	reuse := fs.Bool("reuse-ca", false, "sign with the CA already in --dir instead of creating one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		ca  *certgen.CA
		err error
	)
	if *reuse {
		ca, err = certgen.LoadCA(filepath.Join(*dir, certgen.CACertFile), filepath.Join(*dir, certgen.CAKeyFile))
	} else {
		ca, err = certgen.NewCA("GophTasks dev CA")
	}
	if err != nil {
		return err
	}

	if err := certgen.WriteBundle(*dir, ca, *hosts); err != nil {
		return err
	}
	fmt.Fprintf(out, "Certificates for %v generated into %s\n", *hosts, *dir)
	return nil
}

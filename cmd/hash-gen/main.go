package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"parcelhub.backend/pkg/crypto"
)

var (
	stdout = io.Writer(os.Stdout)
	fatalf = log.Fatalf
)

// run prints the bcrypt hash of a password, or with -token the SHA-256 digest
// stored for a verification or reset link token.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("hash-gen", flag.ContinueOnError)
	fs.SetOutput(out)
	token := fs.Bool("token", false, "print the stored digest of an emailed link token")
	cost := fs.Int("cost", crypto.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: hash-gen [-token] [-cost n] <value>")
	}
	value := fs.Arg(0)

	if *token {
		_, _ = fmt.Fprintf(out, "Token Hash: %s\n", crypto.HashToken(value))
		return nil
	}

	hash, err := crypto.NewBcryptHasher(*cost).Hash(value)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Bcrypt Hash: %s\n", hash)
	return nil
}

func main() {
	if err := run(os.Args[1:], stdout); err != nil {
		fatalf("%v", err)
	}
}

// Command signet-gensecret prints a freshly generated signing secret,
// base64url-encoded, suitable for Config.Secret or a FileKeyResolver
// target file.
//
// Usage:
//
//	signet-gensecret [-bytes N]
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
)

func main() {
	size := flag.Int("bytes", 64, "secret length in bytes before encoding")
	flag.Parse()

	if *size < 32 {
		fmt.Fprintln(os.Stderr, "refusing to generate a secret shorter than 32 bytes")
		os.Exit(2)
	}

	secret := make([]byte, *size)
	if _, err := rand.Read(secret); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read random bytes: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(base64.RawURLEncoding.EncodeToString(secret))
}

// Command tokengen issues signed development tokens accepted by the
// relay's /ws endpoint.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"relay-lab/auth"
)

func main() {
	secret := flag.String("secret", "", "signing secret shared with the relay")
	subject := flag.String("sub", "", "user id placed in the subject claim")
	name := flag.String("name", "", "display name claim")
	email := flag.String("email", "", "optional email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *secret == "" || *subject == "" {
		fmt.Fprintln(os.Stderr, "both -secret and -sub are required")
		os.Exit(2)
	}

	token, err := auth.GenerateToken(*secret, *subject, *name, *email, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token generation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

package api

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptCredentials resolves the basic-auth credentials for a run. The
// username comes from the argument (flag/config/env) or an interactive
// prompt; the password from NANOPI_API_PASSWORD or a non-echoing prompt.
func PromptCredentials(username string) (BasicAuth, error) {
	if username == "" {
		fmt.Print("API Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return BasicAuth{}, fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	password := os.Getenv("NANOPI_API_PASSWORD")
	if password == "" {
		fmt.Print("API Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return BasicAuth{}, fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	}
	return BasicAuth{Username: username, Password: password}, nil
}

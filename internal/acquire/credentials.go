package acquire

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Credentials holds the secrets both downloads need. Values present in the
// environment (or a .env file loaded at startup) are used as-is; anything
// missing is prompted for interactively. Secrets are never written to disk
// or logged.
type Credentials struct {
	HFToken            string
	CityscapesUser     string
	CityscapesPassword string
}

// CredentialsFromEnv reads whatever credentials the environment provides.
func CredentialsFromEnv() Credentials {
	return Credentials{
		HFToken:            os.Getenv("HF_TOKEN"),
		CityscapesUser:     os.Getenv("CITYSCAPES_USERNAME"),
		CityscapesPassword: os.Getenv("CITYSCAPES_PASSWORD"),
	}
}

// EnsureHFToken prompts for the HuggingFace token if it is not already set.
func (c *Credentials) EnsureHFToken() error {
	if c.HFToken != "" {
		return nil
	}

	fmt.Println("\nPlease enter your Hugging Face credentials")
	token, err := promptSecret("Token (from https://huggingface.co/settings/tokens): ")
	if err != nil {
		return err
	}
	c.HFToken = token
	return nil
}

// EnsureCityscapes prompts for Cityscapes credentials if they are not
// already set.
func (c *Credentials) EnsureCityscapes() error {
	if c.CityscapesUser == "" {
		fmt.Println("\nPlease enter your Cityscapes credentials")
		user, err := promptLine("Cityscapes Username: ")
		if err != nil {
			return err
		}
		c.CityscapesUser = user
	}

	if c.CityscapesPassword == "" {
		password, err := promptSecret("Cityscapes Password: ")
		if err != nil {
			return err
		}
		c.CityscapesPassword = password
	}

	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line with terminal echo disabled.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ngrsoftlab/ftppush/secret"
)

// keyStore is the part of secret.Keyring the secret commands use
type keyStore interface {
	Set(service, account, secret string) error
	Delete(service, account string) error
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage passwords in the OS keyring",
	}
	cmd.AddCommand(newSecretSetCmd(secret.Keyring{}))
	cmd.AddCommand(newSecretDeleteCmd(secret.Keyring{}))
	return cmd
}

func newSecretSetCmd(store keyStore) *cobra.Command {
	var host, user string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the password for a host and user",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("empty password")
			}
			if err := store.Set(host, user, password); err != nil {
				return fmt.Errorf("store password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password stored for %s@%s\n", user, host)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "remote host")
	cmd.Flags().StringVarP(&user, "user", "u", "", "remote user")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSecretDeleteCmd(store keyStore) *cobra.Command {
	var host, user string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the password for a host and user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Delete(host, user); err != nil {
				if errors.Is(err, secret.ErrNotFound) {
					return fmt.Errorf("no password stored for %s@%s", user, host)
				}
				return fmt.Errorf("delete password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password deleted for %s@%s\n", user, host)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "remote host")
	cmd.Flags().StringVarP(&user, "user", "u", "", "remote user")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// readPassword prompts without echo on a terminal, otherwise reads one line
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

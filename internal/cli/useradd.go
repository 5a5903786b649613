package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shandysiswandi/otpservice/internal/identity/usecase"
	"github.com/spf13/cobra"
)

var (
	// ErrPasswordMismatch is returned when the two prompted passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrNoTerminal is returned when a password prompt is needed but stdin is not a terminal.
	ErrNoTerminal = errors.New("stdin is not a terminal, use --password-stdin")
)

func newUserAddCommand(env *Env) *cobra.Command {
	var (
		admin         bool
		host          string
		qrOut         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "useradd USERNAME",
		Short: "Create a user and provision its OTP secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])

			password, err := promptPassword(cmd, env, passwordStdin)
			if err != nil {
				return err
			}

			svc, release, err := env.Identity()
			if err != nil {
				return err
			}
			defer release(cmd.Context())

			if err := svc.UserCreate(cmd.Context(), usecase.UserCreateInput{
				Username: username,
				Password: password,
				IsAdmin:  admin,
			}); err != nil {
				return fmt.Errorf("create user %s: %w", username, err)
			}

			out, err := svc.Provision(cmd.Context(), usecase.ProvisionInput{Username: username, Host: host})
			if err != nil {
				return fmt.Errorf("provision %s: %w", username, err)
			}

			if qrOut != "" {
				qr, err := svc.QRCode(cmd.Context(), usecase.QRCodeInput{Username: username, Host: host})
				if err != nil {
					return fmt.Errorf("qrcode %s: %w", username, err)
				}
				if err := os.WriteFile(qrOut, qr.PNG, 0o600); err != nil {
					return fmt.Errorf("write qrcode: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "user %s created (admin=%t)\n", username, admin)
			printProvision(w, out)
			if qrOut != "" {
				fmt.Fprintf(w, "qrcode: %s\n", qrOut)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "grant the manager role")
	cmd.Flags().StringVar(&host, "host", "", "hostname used to pick the tenant issuer")
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "write the enrollment QR code PNG to this file")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")

	return cmd
}

// promptPassword reads the password from stdin, or asks for it twice on a
// terminal without echo.
func promptPassword(cmd *cobra.Command, env *Env, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if !env.isTerminal(env.StdinFd) {
		return "", ErrNoTerminal
	}

	w := cmd.ErrOrStderr()

	fmt.Fprint(w, "Password: ")
	first, err := env.readPassword(env.StdinFd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(w, "Retype password: ")
	second, err := env.readPassword(env.StdinFd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if !bytes.Equal(first, second) {
		return "", ErrPasswordMismatch
	}

	return string(first), nil
}

func printProvision(w io.Writer, out *usecase.ProvisionOutput) {
	fmt.Fprintf(w, "issuer: %s\n", out.Issuer)
	fmt.Fprintf(w, "secret: %s\n", out.Secret)
	fmt.Fprintf(w, "uri: %s\n", out.URI)
}

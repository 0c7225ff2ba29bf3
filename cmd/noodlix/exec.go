package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
)

func newExecCommand() *cobra.Command {
	var (
		user     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "exec [command line]",
		Short: "Run one command line as a user",
		Long: `Log in, run a single command line and print its output. Results that need an
interactive terminal (clear, logout, note, noodl) are printed as markers.`,
		Example: `  noodlix exec --user root --password toor -- ls -la /etc`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sys, err := openSystem(ctx, cmd)
			if err != nil {
				return err
			}

			sess, err := sys.Login(ctx, user, password)
			if err != nil {
				return fmt.Errorf("login failed: %s", core.Message(err))
			}
			res := sess.Execute(ctx, strings.Join(args, " "))
			sess.Logout()

			out := cmd.OutOrStdout()
			if res.Kind == shell.KindOutput {
				for _, line := range res.Lines {
					fmt.Fprintln(out, line)
				}
			} else {
				fmt.Fprintln(out, res.Marker())
			}
			return sys.Close(ctx)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "root", "User to run as")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password of the user")

	return cmd
}

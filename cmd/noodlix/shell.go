package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/noodlix/pkg/noodlix"
	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
)

const clearSequence = "\033[H\033[2J"

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Log in, then type commands; "help" lists them.
"logout" returns to the login prompt, end of input quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sys, err := openSystem(ctx, cmd)
			if err != nil {
				return err
			}
			r := &repl{sys: sys, in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			r.run(ctx)
			return sys.Close(ctx)
		},
	}
}

// repl drives one terminal: a login loop around a command loop
type repl struct {
	sys *noodlix.System
	in  *bufio.Scanner
	out io.Writer
}

// readLine prints prompt and reads one line; ok is false at end of input
func (r *repl) readLine(prompt string) (string, bool) {
	fmt.Fprint(r.out, prompt)
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}

func (r *repl) println(lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(r.out, line)
	}
}

func (r *repl) run(ctx context.Context) {
	for {
		sess, ok := r.login(ctx)
		if !ok {
			return
		}
		if !r.session(ctx, sess) {
			return
		}
	}
}

func (r *repl) login(ctx context.Context) (*noodlix.Session, bool) {
	for {
		username, ok := r.readLine(r.sys.Config().Hostname + " login: ")
		if !ok {
			return nil, false
		}
		username = strings.TrimSpace(username)
		if username == "" {
			continue
		}
		password, ok := r.readLine("Password: ")
		if !ok {
			return nil, false
		}

		sess, err := r.sys.Login(ctx, username, password)
		if err != nil {
			r.println(core.Message(err), "")
			continue
		}
		r.println(sess.Welcome()...)
		return sess, true
	}
}

// session runs commands until logout (true) or end of input (false)
func (r *repl) session(ctx context.Context, sess *noodlix.Session) bool {
	defer sess.Logout()
	for {
		line, ok := r.readLine(sess.Prompt())
		if !ok {
			return false
		}

		res := sess.Execute(ctx, line)
		switch res.Kind {
		case shell.KindClearScreen:
			fmt.Fprint(r.out, clearSequence)
		case shell.KindLogout:
			r.println("logout", "")
			return true
		case shell.KindEnterEditor:
			if !r.edit(sess, res.Path) {
				return false
			}
		case shell.KindEnterBrowser:
			r.browse(ctx, sess, res.URL)
		default:
			r.println(res.Lines...)
		}
		r.warnUnsaved(sess)
	}
}

// warnUnsaved reports a failed autosave until a later save succeeds
func (r *repl) warnUnsaved(sess *noodlix.Session) {
	if err := sess.SaveError(); err != nil {
		r.println("warning: filesystem not saved: " + core.Message(err))
	}
}

// edit is the line editor behind note: the current content is shown, then
// new content is read up to a line holding a single "."
func (r *repl) edit(sess *noodlix.Session, path string) bool {
	current, err := sess.ReadFile(path)
	if err != nil && !core.HasCode(err, core.CodeNotFound) {
		r.println("note: " + core.Message(err))
		return true
	}

	r.println(fmt.Sprintf("-- note: %s (end with a line containing only '.') --", path))
	if current != "" {
		r.println(strings.Split(current, "\n")...)
		r.println("-- new content --")
	}

	var lines []string
	done := false
	for !done && r.in.Scan() {
		if line := r.in.Text(); line == "." {
			done = true
		} else {
			lines = append(lines, line)
		}
	}
	if !done {
		return false
	}

	content := strings.Join(lines, "\n")
	if err := sess.WriteFile(path, content); err != nil {
		r.println("note: failed to save " + path + ": " + core.Reason(err))
		return true
	}
	r.println(fmt.Sprintf("note: saved %s (%d bytes)", path, len(content)))
	return true
}

// browse shows a fetched page as text followed by its numbered links
func (r *repl) browse(ctx context.Context, sess *noodlix.Session, url string) {
	doc, err := sess.Browse(ctx, url)
	if err != nil {
		r.println("noodl: " + core.Message(err))
		return
	}

	title := doc.Title
	if title == "" {
		title = url
	}
	r.println("== "+title+" ==", "")
	r.println(doc.Lines...)
	if len(doc.Links) > 0 {
		r.println("", "Links:")
		for i, link := range doc.Links {
			r.println(fmt.Sprintf("  [%d] %s -> %s", i+1, link.Text, link.Href))
		}
	}
}

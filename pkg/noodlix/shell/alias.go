package shell

import (
	"fmt"
	"regexp"
	"strings"

	errs "github.com/jmgilman/go/errors"

	"github.com/arthur-debert/noodlix/pkg/noodlix/core"
	"github.com/arthur-debert/noodlix/pkg/noodlix/vpath"
)

// GlobalAliasFile holds the aliases admins define for everybody
const GlobalAliasFile = "/etc/shellcfg/aliases"

var (
	aliasLine = regexp.MustCompile(`^([a-zA-Z0-9_-]+)=(.*)$`)
	aliasName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// reservedAliases can never be shadowed
var reservedAliases = map[string]bool{"alias": true, "unalias": true}

// Alias is one name=command definition
type Alias struct {
	Name    string
	Command string
}

// aliasTable keeps definitions in the order they were first set
type aliasTable struct {
	order  []string
	values map[string]string
}

func newAliasTable() *aliasTable {
	return &aliasTable{values: map[string]string{}}
}

// parseAliases reads one definition per line, skipping blanks, comments,
// reserved names and anything malformed
func parseAliases(content string) *aliasTable {
	table := newAliasTable()
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := aliasLine.FindStringSubmatch(line); m != nil && !reservedAliases[m[1]] {
			table.set(m[1], m[2])
		}
	}
	return table
}

func (a *aliasTable) get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

func (a *aliasTable) set(name, command string) {
	if _, exists := a.values[name]; !exists {
		a.order = append(a.order, name)
	}
	a.values[name] = command
}

func (a *aliasTable) remove(name string) bool {
	if _, exists := a.values[name]; !exists {
		return false
	}
	delete(a.values, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *aliasTable) list() []Alias {
	out := make([]Alias, len(a.order))
	for i, name := range a.order {
		out[i] = Alias{Name: name, Command: a.values[name]}
	}
	return out
}

// render produces the file format: one name=command per line with a
// trailing newline, or nothing for an empty table
func (a *aliasTable) render() string {
	var b strings.Builder
	for _, name := range a.order {
		fmt.Fprintf(&b, "%s=%s\n", name, a.values[name])
	}
	return b.String()
}

// PersistError reports that an alias change took effect in memory but could
// not be written to its backing file
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save aliases to %s: %s", e.Path, core.Reason(e.Err))
}

func (e *PersistError) Unwrap() error { return e.Err }

// ValidateAliasName checks an alias name for allowed characters and
// reserved words
func ValidateAliasName(name string) error {
	if reservedAliases[name] {
		return errs.Newf(core.CodeInvalidName, "cannot alias command with reserved name '%s'", name)
	}
	if !aliasName.MatchString(name) {
		return errs.Newf(core.CodeInvalidName, "invalid alias name '%s'", name)
	}
	return nil
}

// UserAliasFile returns the per-user alias file for the session's user
func (p *Processor) UserAliasFile() string {
	return vpath.Join(p.localConfigDir(), "aliases")
}

func (p *Processor) localConfigDir() string {
	return vpath.Join(vpath.Normalize(p.user.HomeDirectory), "localcfg")
}

// loadAliases rereads both tables; unreadable files give empty tables
func (p *Processor) loadAliases() {
	p.global = p.readAliases(GlobalAliasFile)
	p.local = p.readAliases(p.UserAliasFile())
}

func (p *Processor) readAliases(path string) *aliasTable {
	content, err := p.tree.ReadFile(path)
	if err != nil {
		if !core.HasCode(err, core.CodeNotFound) {
			p.logger.Debug().Str("path", path).Err(err).Msg("alias file unreadable")
		}
		return newAliasTable()
	}
	return parseAliases(content)
}

// ResolveAlias returns the expansion of name; user aliases win
func (p *Processor) ResolveAlias(name string) (string, bool) {
	if cmd, ok := p.local.get(name); ok {
		return cmd, true
	}
	return p.global.get(name)
}

// GlobalAliases lists the global table in definition order
func (p *Processor) GlobalAliases() []Alias { return p.global.list() }

// UserAliases lists the user table in definition order
func (p *Processor) UserAliases() []Alias { return p.local.list() }

// IsGlobalAlias reports whether a global alias of that name exists
func (p *Processor) IsGlobalAlias(name string) bool {
	_, ok := p.global.get(name)
	return ok
}

// AliasFile returns the file the session's alias changes go to
func (p *Processor) AliasFile() string {
	if p.user.IsAdmin() {
		return GlobalAliasFile
	}
	return p.UserAliasFile()
}

// AddAlias defines an alias. Admins write the global table, everybody else
// their own. A *PersistError means the alias is active but was not saved.
func (p *Processor) AddAlias(name, command string) error {
	if err := ValidateAliasName(name); err != nil {
		return err
	}
	if p.user.IsAdmin() {
		p.global.set(name, command)
		return p.saveGlobal()
	}
	p.local.set(name, command)
	return p.saveLocal()
}

// RemoveAlias deletes an alias from the table the session writes to.
// found is false when no such alias existed there.
func (p *Processor) RemoveAlias(name string) (found bool, err error) {
	if p.user.IsAdmin() {
		if !p.global.remove(name) {
			return false, nil
		}
		return true, p.saveGlobal()
	}
	if !p.local.remove(name) {
		return false, nil
	}
	return true, p.saveLocal()
}

func (p *Processor) saveGlobal() error {
	if err := p.tree.WriteFile(GlobalAliasFile, p.global.render(), p.user); err != nil {
		return &PersistError{Path: GlobalAliasFile, Err: err}
	}
	return nil
}

func (p *Processor) saveLocal() error {
	dir, file := p.localConfigDir(), p.UserAliasFile()

	e, ok := p.tree.GetNode(dir)
	switch {
	case !ok:
		if _, err := p.tree.CreateDirectory(dir, p.user.Username, ""); err != nil {
			return &PersistError{Path: file, Err: err}
		}
	case !e.IsDir():
		return &PersistError{Path: file, Err: core.NewPathError("mkdir", dir, core.CodeNotADirectory)}
	}

	if err := p.tree.WriteFile(file, p.local.render(), p.user); err != nil {
		return &PersistError{Path: file, Err: err}
	}
	return nil
}

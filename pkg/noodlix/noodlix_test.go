package noodlix_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/jmgilman/go/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/arthur-debert/noodlix/pkg/noodlix"
	"github.com/arthur-debert/noodlix/pkg/noodlix/config"
	"github.com/arthur-debert/noodlix/pkg/noodlix/fetch"
	"github.com/arthur-debert/noodlix/pkg/noodlix/shell"
	"github.com/arthur-debert/noodlix/pkg/noodlix/store"
)

type staticFetcher map[string]*fetch.Page

func (f staticFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	if p, ok := f[url]; ok {
		return p, nil
	}
	return &fetch.Page{URL: url, Status: 404, StatusText: "Not Found"}, nil
}

func newSystem(t *testing.T, cfg *config.Config, opts ...noodlix.Option) *noodlix.System {
	t.Helper()
	opts = append([]noodlix.Option{noodlix.WithPasswordCost(bcrypt.MinCost)}, opts...)
	sys, err := noodlix.New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return sys
}

func login(t *testing.T, sys *noodlix.System, user, password string) *noodlix.Session {
	t.Helper()
	sess, err := sys.Login(context.Background(), user, password)
	if err != nil {
		t.Fatalf("Login as %s failed: %v", user, err)
	}
	return sess
}

func run(t *testing.T, sess *noodlix.Session, line string) string {
	t.Helper()
	res := sess.Execute(context.Background(), line)
	if res.Kind != shell.KindOutput {
		t.Fatalf("%q: expected output, got %s", line, res.Kind)
	}
	return res.Text()
}

func TestNew_InMemory(t *testing.T) {
	sys := newSystem(t, nil)

	if sys.Restored() {
		t.Error("A fresh store should be seeded, not restored")
	}
	if !sys.Tree().Exists("/etc/motd") {
		t.Error("Expected the default layout")
	}
	if sys.Registry().Len() != 25 {
		t.Errorf("Expected 25 built-in commands, got %d", sys.Registry().Len())
	}
	if _, err := sys.Store().Get(context.Background(), "noodlix_filesystem"); err != nil {
		t.Errorf("Seeded filesystem should have been saved: %v", err)
	}
}

func TestLogin(t *testing.T) {
	sys := newSystem(t, nil)
	ctx := context.Background()

	t.Run("Root with default password", func(t *testing.T) {
		sess := login(t, sys, "root", "toor")
		if sess.ID() == "" {
			t.Error("Expected a session id")
		}
		if got := sess.Prompt(); got != "root@noodlix:~# " {
			t.Errorf("Unexpected prompt %q", got)
		}
		welcome := sess.Welcome()
		if len(welcome) == 0 || welcome[0] != "Welcome to Noodlix v1.0 (Bashimi Shell)" {
			t.Errorf("Unexpected welcome %v", welcome)
		}
		if got := run(t, sess, "pwd"); got != "/root" {
			t.Errorf("Expected to start in /root, got %s", got)
		}
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := sys.Login(ctx, "root", "nope")
		if errs.GetCode(err) != errs.CodeUnauthorized {
			t.Errorf("Expected unauthorized, got %v", err)
		}
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := sys.Login(ctx, "ghost", "x")
		if errs.GetCode(err) != errs.CodeUnauthorized {
			t.Errorf("Expected unauthorized, got %v", err)
		}
	})
}

func TestSession_UserLifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.Hostname, cfg.RootPassword = "box", "secret"
	sys := newSystem(t, cfg)

	admin := login(t, sys, "root", "secret")
	if got := run(t, admin, "useradd carol pw"); !strings.Contains(got, "created successfully") {
		t.Fatalf("useradd failed: %s", got)
	}
	admin.Logout()
	if got := admin.Execute(context.Background(), "whoami").Text(); got != "session closed" {
		t.Errorf("Expected a closed session, got %q", got)
	}

	carol := login(t, sys, "carol", "pw")
	if got := carol.Prompt(); got != "carol@box:~# " {
		t.Errorf("Unexpected prompt %q", got)
	}
	if got := run(t, carol, "touch notes.txt"); got != "" {
		t.Errorf("touch failed: %s", got)
	}
	if err := carol.WriteFile("notes.txt", "hello"); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	content, err := carol.ReadFile("/home/carol/notes.txt")
	if err != nil || content != "hello" {
		t.Errorf("Unexpected content %q (%v)", content, err)
	}
	if err := carol.WriteFile("/etc/motd", "defaced"); err == nil {
		t.Error("Expected carol to be refused writing /etc/motd")
	}

	if res := carol.Execute(context.Background(), "logout"); res.Kind != shell.KindLogout {
		t.Errorf("Expected logout signal, got %s", res.Kind)
	}
}

func TestNew_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Compress = true

	first := newSystem(t, cfg)
	root := login(t, first, "root", "toor")
	run(t, root, "mkdir /tmp/kept")
	run(t, root, "useradd dave pw")
	run(t, root, "alias ll='ls -la'")
	if err := first.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "noodlix_filesystem.json.zst")); err != nil {
		t.Errorf("Expected a compressed snapshot on disk: %v", err)
	}

	second := newSystem(t, cfg)
	if !second.Restored() {
		t.Fatal("Expected the filesystem to be restored")
	}
	if !second.Tree().Exists("/tmp/kept") {
		t.Error("Expected /tmp/kept to survive the restart")
	}
	dave := login(t, second, "dave", "pw")
	if got := run(t, dave, "alias"); !strings.Contains(got, "alias ll='ls -la'") {
		t.Errorf("Expected the global alias to survive, got %q", got)
	}
}

func TestNew_AutosavesEveryMutation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	sys := newSystem(t, nil, noodlix.WithStore(st))
	sess := login(t, sys, "root", "toor")

	before, err := st.Get(ctx, "noodlix_filesystem")
	if err != nil {
		t.Fatal(err)
	}
	run(t, sess, "touch /tmp/fresh")
	after, err := st.Get(ctx, "noodlix_filesystem")
	if err != nil {
		t.Fatal(err)
	}
	if string(before) == string(after) || !strings.Contains(string(after), `"fresh"`) {
		t.Error("Expected the snapshot to be rewritten after touch")
	}
}

type flakyStore struct {
	store.Store
	fail bool
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte) error {
	if f.fail {
		return errs.New(errs.CodeInternal, "disk full")
	}
	return f.Store.Put(ctx, key, data)
}

func TestSession_SaveError(t *testing.T) {
	st := &flakyStore{Store: store.NewMemory()}
	sys := newSystem(t, nil, noodlix.WithStore(st))
	sess := login(t, sys, "root", "toor")

	if err := sess.SaveError(); err != nil {
		t.Fatalf("Expected no save error after seeding, got %v", err)
	}

	st.fail = true
	if got := run(t, sess, "touch /tmp/lost"); got != "" {
		t.Errorf("touch should still succeed in memory, got %q", got)
	}
	if err := sess.SaveError(); errs.GetCode(err) != errs.CodeInternal {
		t.Errorf("Expected the failed autosave to be reported, got %v", err)
	}

	st.fail = false
	run(t, sess, "touch /tmp/kept")
	if err := sys.SaveError(); err != nil {
		t.Errorf("Expected a successful save to clear the error, got %v", err)
	}
}

func TestNew_SeedFile(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "layout.yaml")
	layout := "entries:\n  - path: /srv\n    type: dir\n  - path: /srv/readme\n    type: file\n    content: hi\n"
	if err := os.WriteFile(seed, []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.SeedFile = seed
	sys := newSystem(t, cfg)
	if !sys.Tree().Exists("/srv/readme") || sys.Tree().Exists("/etc/motd") {
		t.Error("Expected the custom layout instead of the default one")
	}

	cfg.SeedFile = filepath.Join(dir, "missing.yaml")
	_, err := noodlix.New(context.Background(), cfg)
	if errs.GetCode(err) != errs.CodeInvalidConfig {
		t.Errorf("Expected invalid config for a missing seed file, got %v", err)
	}
}

func TestSession_Browse(t *testing.T) {
	pages := staticFetcher{
		"http://example.com": {
			URL: "http://example.com", Status: 200, ContentType: "text/html",
			Body: []byte("<html><head><title>Example</title></head><body><p>Hello there</p></body></html>"),
		},
	}
	sys := newSystem(t, nil, noodlix.WithFetcher(pages))
	sess := login(t, sys, "root", "toor")
	ctx := context.Background()

	res := sess.Execute(ctx, "noodl example.com")
	if res.Kind != shell.KindEnterBrowser {
		t.Fatalf("Expected browser signal, got %s", res.Kind)
	}
	doc, err := sess.Browse(ctx, res.URL)
	if err != nil {
		t.Fatalf("Browse failed: %v", err)
	}
	if doc.Title != "Example" || len(doc.Lines) != 1 || doc.Lines[0] != "Hello there" {
		t.Errorf("Unexpected document %+v", doc)
	}

	if _, err := sess.Browse(ctx, "http://example.com/missing"); err == nil {
		t.Error("Expected an error for a 404 page")
	}
}

package store

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	errs "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillyStore_PutGet(t *testing.T) {
	ctx := context.Background()

	for _, compress := range []bool{false, true} {
		fs := memfs.New()
		s, err := New(fs, WithCompression(compress))
		require.NoError(t, err)

		payload := []byte(`{"name":"/","type":"dir"}`)
		require.NoError(t, s.Put(ctx, "noodlix_filesystem", payload))

		got, err := s.Get(ctx, "noodlix_filesystem")
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		_, err = fs.Stat(s.filename("noodlix_filesystem", compress))
		assert.NoError(t, err, "value should be stored in its own file")
		_, err = fs.Stat(s.filename("noodlix_filesystem", compress) + ".tmp")
		assert.Error(t, err, "temporary file should be renamed away")
	}
}

func TestBillyStore_CompressedOnDisk(t *testing.T) {
	fs := memfs.New()
	s, err := New(fs, WithCompression(true))
	require.NoError(t, err)

	payload := []byte(`{"content":"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}`)
	require.NoError(t, s.Put(context.Background(), "snap", payload))

	raw, err := util.ReadFile(fs, "snap.json.zst")
	require.NoError(t, err)
	assert.NotEqual(t, payload, raw)
	assert.Less(t, len(raw), len(payload))
}

func TestBillyStore_SwitchingCompression(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()

	plain, err := New(fs)
	require.NoError(t, err)
	require.NoError(t, plain.Put(ctx, "users", []byte("v1")))

	zipped, err := New(fs, WithCompression(true))
	require.NoError(t, err)

	got, err := zipped.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got, "plain files stay readable")

	require.NoError(t, zipped.Put(ctx, "users", []byte("v2")))
	_, err = fs.Stat("users.json")
	assert.Error(t, err, "stale plain copy should be removed")

	got, err = plain.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestBillyStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := s.Get(ctx, "missing")
	assert.Equal(t, errs.CodeNotFound, errs.GetCode(err))

	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.Equal(t, errs.CodeInvalidInput, errs.GetCode(s.Put(ctx, key, nil)), "key %q", key)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Put(cancelled, "k", nil), context.Canceled)
}

func TestBillyStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	assert.Equal(t, errs.CodeNotFound, errs.GetCode(err))

	assert.NoError(t, s.Delete(ctx, "k"), "deleting twice is fine")
}

func TestNewOS(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewOS(dir + "/data")
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("on disk")))

	reopened, err := NewOS(dir + "/data")
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(got))
}

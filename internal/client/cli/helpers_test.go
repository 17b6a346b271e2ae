package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvvault/internal/crypto"
	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/internal/vault"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// fakeIO собирает вывод и отдает заранее заданный ввод
type fakeIO struct {
	out       bytes.Buffer
	inputs    []string
	passwords []string
	prompts   []string
}

func (f *fakeIO) Println(a ...any) {
	_, _ = fmt.Fprintln(&f.out, a...)
}

func (f *fakeIO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(&f.out, format, a...)
}

func (f *fakeIO) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

func (f *fakeIO) ReadInput(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.inputs) == 0 {
		return "", io.EOF
	}
	v := f.inputs[0]
	f.inputs = f.inputs[1:]
	return v, nil
}

func (f *fakeIO) ReadPassword(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.passwords) == 0 {
		return "", io.EOF
	}
	v := f.passwords[0]
	f.passwords = f.passwords[1:]
	return v, nil
}

// testEnv CLI над временным каталогом хранилища
type testEnv struct {
	io  *fakeIO
	env map[string]string
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		io:  &fakeIO{},
		env: map[string]string{},
		dir: filepath.Join(t.TempDir(), "vault"),
	}
}

// run выполняет команду новым экземпляром CLI с каталогом env.dir
func (e *testEnv) run(args ...string) error {
	c := New(e.io)
	c.getenv = func(key string) string { return e.env[key] }
	return c.Execute(context.Background(), "test", append([]string{"--vault-dir", e.dir}, args...))
}

// output возвращает накопленный вывод и очищает буфер
func (e *testEnv) output() string {
	s := e.io.out.String()
	e.io.out.Reset()
	return s
}

func (e *testEnv) store() *vault.Store {
	return vault.NewStore(e.dir, slog.New(slog.DiscardHandler))
}

// ids возвращает id документов pin, newest first
func (e *testEnv) ids(t *testing.T, pin string) []string {
	t.Helper()
	files, err := e.store().List(context.Background(), crypto.HashPIN(pin))
	require.NoError(t, err)
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}

func (e *testEnv) open(t *testing.T, pin, id string) *models.Document {
	t.Helper()
	creds, err := vault.NewCredentials(pin)
	require.NoError(t, err)
	doc, err := e.store().Open(context.Background(), creds, id)
	require.NoError(t, err)
	return doc
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

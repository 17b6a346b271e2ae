package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvvault/internal/crypto"
	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/internal/vault"
)

func TestCli_DocumentLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"

	require.NoError(t, e.run("create", "My CV"))
	ids := e.ids(t, "7421")
	require.Len(t, ids, 1)
	id := ids[0]
	assert.Contains(t, e.output(), "Document created: "+id)

	// без --detailed имена не расшифровываются
	require.NoError(t, e.run("list"))
	out := e.output()
	assert.Contains(t, out, "Found 1 document(s)")
	assert.Contains(t, out, "1. "+id)
	assert.NotContains(t, out, "My CV")
	assert.Contains(t, out, "--detailed")

	require.NoError(t, e.run("list", "--detailed"))
	out = e.output()
	assert.Contains(t, out, "1. My CV")
	assert.Contains(t, out, "ID:       "+id)

	require.NoError(t, e.run("show", id))
	var shown models.Document
	require.NoError(t, json.Unmarshal([]byte(e.output()), &shown))
	assert.Equal(t, "My CV", shown.Meta.Name)
	assert.Empty(t, shown.Name)

	// show -o → правка → save
	exported := filepath.Join(t.TempDir(), "cv.json")
	require.NoError(t, e.run("show", id, "-o", exported))
	assert.Contains(t, e.output(), "Document written to "+exported)

	info, err := os.Stat(exported)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	var edited models.Document
	require.NoError(t, json.Unmarshal(data, &edited))
	edited.Name = "Alice Example"
	edited.Skills = []string{"Go", "SQL"}
	data, err = json.Marshal(edited)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(exported, data, 0o600))

	require.NoError(t, e.run("save", id, exported))
	assert.Contains(t, e.output(), "Document saved: "+id)

	saved := e.open(t, "7421", id)
	assert.Equal(t, "Alice Example", saved.Name)
	assert.Equal(t, []string{"Go", "SQL"}, saved.Skills)
	assert.Equal(t, "My CV", saved.Meta.Name)
	assert.True(t, shown.Meta.Created.Equal(saved.Meta.Created))

	require.NoError(t, e.run("rename", id, "Backend CV"))
	assert.Contains(t, e.output(), `renamed to "Backend CV"`)
	assert.Equal(t, "Backend CV", e.open(t, "7421", id).Meta.Name)

	require.NoError(t, e.run("delete", id, "--force"))
	assert.Contains(t, e.output(), "Document deleted: "+id)

	require.NoError(t, e.run("list"))
	assert.Contains(t, e.output(), "No documents found.")
}

func TestCli_CreateWithoutName(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"

	require.NoError(t, e.run("create"))
	ids := e.ids(t, "7421")
	require.Len(t, ids, 1)
	assert.Equal(t, defaultDocumentName, e.open(t, "7421", ids[0]).Meta.Name)
}

func TestCli_CreateBlankName(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"

	err := e.run("create", "   ")
	require.Error(t, err)
	assert.Empty(t, e.ids(t, "7421"))
}

func TestCli_PromptsForPIN(t *testing.T) {
	e := newTestEnv(t)
	e.io.passwords = []string{"7421"}

	require.NoError(t, e.run("create", "Prompted"))
	assert.Equal(t, []string{"PIN: "}, e.io.prompts)
	assert.Len(t, e.ids(t, "7421"), 1)
}

func TestCli_PINFileFlag(t *testing.T) {
	e := newTestEnv(t)
	pinFile := writeFile(t, "pin", "7421\n")

	require.NoError(t, e.run("--pin-file", pinFile, "create", "From file"))
	assert.Empty(t, e.io.prompts)
	assert.Len(t, e.ids(t, "7421"), 1)
}

func TestCli_DocumentsAreSeparatedByPIN(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"
	require.NoError(t, e.run("create", "Mine"))
	id := e.ids(t, "7421")[0]
	e.output()

	e.env[PinEnv] = "1234"
	require.NoError(t, e.run("list", "--detailed"))
	assert.Contains(t, e.output(), "No documents found.")

	err := e.run("show", id)
	require.Error(t, err)
	assert.EqualError(t, err, "document not found")
}

// PIN из окружения, файла и промпта с пробелами ведет к одним документам
func TestCli_PINWhitespaceIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = " 7421 "
	require.NoError(t, e.run("create", "Mine"))
	require.Len(t, e.ids(t, "7421"), 1)
	e.output()

	delete(e.env, PinEnv)
	e.io.passwords = []string{"7421  "}
	require.NoError(t, e.run("list", "--detailed"))
	assert.Contains(t, e.output(), "Mine")

	pinFile := writeFile(t, "pin", "7421\n")
	require.NoError(t, e.run("--pin-file", pinFile, "list", "--detailed"))
	assert.Contains(t, e.output(), "Mine")
}

func TestCli_Delete_Confirmation(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"
	require.NoError(t, e.run("create", "Keep me"))
	id := e.ids(t, "7421")[0]
	e.output()

	e.io.inputs = []string{"no"}
	require.NoError(t, e.run("delete", id))
	out := e.output()
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "Deletion cancelled.")
	assert.Equal(t, []string{id}, e.ids(t, "7421"))

	e.io.inputs = []string{"YES"}
	require.NoError(t, e.run("delete", id))
	assert.Contains(t, e.output(), "Document deleted")
	assert.Empty(t, e.ids(t, "7421"))
}

func TestCli_Delete_Missing(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"

	err := e.run("delete", "does-not-exist", "--force")
	require.Error(t, err)
	assert.EqualError(t, err, "document not found")
}

func TestCli_Save_InvalidFile(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"
	require.NoError(t, e.run("create", "My CV"))
	id := e.ids(t, "7421")[0]
	before := e.open(t, "7421", id)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name:    "unknown field",
			path:    writeFile(t, "unknown.json", `{"name":"A","nickname":"B"}`),
			wantErr: "invalid document",
		},
		{
			name:    "trailing data",
			path:    writeFile(t, "trailing.json", `{"name":"A"} {"name":"B"}`),
			wantErr: "unexpected data",
		},
		{
			name:    "not json",
			path:    writeFile(t, "broken.json", `name: A`),
			wantErr: "invalid document",
		},
		{
			name:    "missing file",
			path:    filepath.Join(t.TempDir(), "absent.json"),
			wantErr: "failed to open",
		},
		{
			name:    "too large",
			path:    writeFile(t, "large.json", fmt.Sprintf(`{"summary":%q}`, make([]byte, crypto.MaxPayloadSize))),
			wantErr: "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.run("save", id, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	after := e.open(t, "7421", id)
	assert.True(t, before.Meta.Modified.Equal(after.Meta.Modified))
}

func TestCli_Rekey(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"
	require.NoError(t, e.run("create", "First"))
	require.NoError(t, e.run("create", "Second"))
	e.output()

	newPIN := writeFile(t, "new-pin", "1234\n")
	require.NoError(t, e.run("rekey", "--new-pin-file", newPIN))
	out := e.output()
	assert.Contains(t, out, "PIN changed, 2 document(s) re-encrypted")
	assert.Contains(t, out, "Remember to update "+PinEnv)

	assert.Empty(t, e.ids(t, "7421"))
	require.Len(t, e.ids(t, "1234"), 2)

	e.env[PinEnv] = "1234"
	require.NoError(t, e.run("list", "--detailed"))
	out = e.output()
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "Second")
}

func TestCli_Rekey_Interactive(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.run("--pin-file", writeFile(t, "pin", "7421"), "create", "Only"))

	e.io.passwords = []string{"1234", "1234"}
	require.NoError(t, e.run("--pin-file", writeFile(t, "pin", "7421"), "rekey"))
	assert.Contains(t, e.output(), "1 document(s) re-encrypted")
	assert.Len(t, e.ids(t, "1234"), 1)
}

func TestCli_Rekey_Mismatch(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"
	require.NoError(t, e.run("create", "Only"))
	e.io.passwords = []string{"1234", "4321"}

	err := e.run("rekey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
	assert.Len(t, e.ids(t, "7421"), 1)
}

func TestCli_ArgumentValidation(t *testing.T) {
	e := newTestEnv(t)
	e.env[PinEnv] = "7421"

	assert.Error(t, e.run("show"))
	assert.Error(t, e.run("rename", "only-id"))
	assert.Error(t, e.run("list", "extra"))
	assert.Error(t, e.run("unknown"))
}

func TestCli_Version(t *testing.T) {
	e := newTestEnv(t)

	require.NoError(t, e.run("--version"))
	assert.Contains(t, e.output(), "test")
}

func TestUserError(t *testing.T) {
	custom := errors.New("disk on fire")

	tests := []struct {
		err  error
		want string
		name string
	}{
		{name: "auth failure", err: fmt.Errorf("open: %w", vault.ErrAuthenticationFailed), want: errOpen.Error()},
		{name: "corrupt", err: vault.ErrCorruptVault, want: errOpen.Error()},
		{name: "not found", err: vault.ErrNotFound, want: "document not found"},
		{name: "too large", err: vault.ErrPayloadTooLarge, want: "document is too large"},
		{name: "other", err: custom, want: "disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, userError(tt.err), tt.want)
		})
	}
	assert.NoError(t, userError(nil))
}

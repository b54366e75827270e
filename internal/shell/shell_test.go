package shell_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/directory"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/form"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/shell"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store/storetest"
)

func session(t *testing.T, gw *storetest.Fake, input string) (string, *directory.Directory) {
	t.Helper()
	d := directory.New(gw, directory.WithLogger(logger.Discard()))
	t.Cleanup(func() { _ = d.Close() })
	_ = d.Mount(context.Background())
	var out bytes.Buffer
	require.NoError(t, shell.New(d, strings.NewReader(input), &out).Run(context.Background()))
	return out.String(), d
}

func TestPrintUsersEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, shell.PrintUsers(&buf, nil))
	assert.Equal(t, shell.MsgNoUsers+"\n", buf.String())
}

func TestPrintUsersTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, shell.PrintUsers(&buf, []store.User{
		{ID: "1", Name: "Ana", Email: "a@x.com", Phone: "555"},
		{ID: "2", Name: "Beto", Email: "b@x.com", Address: "Main St"},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Ana")
	assert.Contains(t, lines[1], "555")
	assert.Contains(t, lines[2], "Main St")
	assert.Equal(t, strings.Index(lines[0], "EMAIL"), strings.Index(lines[1], "a@x.com"), "columns are aligned")
}

func TestShellEmptyDirectory(t *testing.T) {
	out, _ := session(t, storetest.NewFake(), "quit\n")
	assert.Contains(t, out, shell.MsgNoUsers)
}

func TestShellSearchAndClear(t *testing.T) {
	gw := storetest.NewFake()
	gw.Seed(store.Fields{Name: "Ana", Email: "a@x.com"}, store.Fields{Name: "Beto", Email: "b@x.com"})

	out, d := session(t, gw, "search Be\n")

	assert.Contains(t, out, `search "Be" (remote): 1 match(es)`)
	assert.Len(t, d.Visible(), 1)

	_, d = session(t, gw, "search Be\nclear\n")
	assert.Len(t, d.Visible(), 2)
	assert.Equal(t, directory.ModeAll, d.Mode())
}

func TestShellAddValidatesAndRetries(t *testing.T) {
	gw := storetest.NewFake()
	// First attempt leaves email empty; the retry keeps the name and
	// supplies the email.
	input := strings.Join([]string{
		"add",
		"Ana", "", "", "",
		"y",
		"", "a@x.com", "", "",
		"quit",
	}, "\n") + "\n"

	out, d := session(t, gw, input)

	assert.Contains(t, out, form.MsgRequired)
	assert.Contains(t, out, "name [Ana]: ")
	users := d.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
	assert.Equal(t, "a@x.com", users[0].Email)
	assert.Equal(t, 1, gw.Calls(store.OpAdd))
	assert.Equal(t, directory.NoSession, d.Session().Kind())
}

func TestShellAddStoreFailure(t *testing.T) {
	gw := storetest.NewFake()
	gw.Fail(store.OpAdd, nil)

	out, d := session(t, gw, "add\nAna\na@x.com\n\n\nn\n")

	assert.Contains(t, out, form.MsgCreateFailed)
	assert.Empty(t, d.Users())
	assert.Equal(t, directory.NoSession, d.Session().Kind())
}

func TestShellEditKeepsDefaults(t *testing.T) {
	gw := storetest.NewFake()
	users := gw.Seed(store.Fields{Name: "Ana", Email: "a@x.com", Phone: "555"})

	_, d := session(t, gw, "edit "+users[0].ID+"\n\nana@x.com\n\n\n")

	got := d.Users()
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "ana@x.com", got[0].Email)
	assert.Equal(t, "555", got[0].Phone)
}

func TestShellDeleteConfirmAndCancel(t *testing.T) {
	gw := storetest.NewFake()
	users := gw.Seed(store.Fields{Name: "Ana", Email: "a@x.com"}, store.Fields{Name: "Beto", Email: "b@x.com"})

	out, d := session(t, gw, "delete "+users[1].ID+"\nn\n")
	assert.Contains(t, out, "delete Beto <b@x.com>")
	assert.Len(t, d.Users(), 2)
	assert.Zero(t, gw.Calls(store.OpDelete))

	_, d = session(t, gw, "delete "+users[1].ID+"\ny\n")
	assert.Len(t, d.Users(), 1)
	assert.Equal(t, 1, gw.Calls(store.OpDelete))
}

func TestShellDeleteFailureShowsNotice(t *testing.T) {
	gw := storetest.NewFake()
	users := gw.Seed(store.Fields{Name: "Ana", Email: "a@x.com"})
	gw.Fail(store.OpDelete, nil)

	out, d := session(t, gw, "delete "+users[0].ID+"\nyes\n")

	assert.Contains(t, out, "! "+directory.MsgDeleteFailed)
	assert.Len(t, d.Users(), 1)
}

func TestShellLoadFailureBanner(t *testing.T) {
	gw := storetest.NewFake()
	gw.Fail(store.OpFetchAll, nil)

	out, _ := session(t, gw, "help\n")

	assert.Contains(t, out, "! "+directory.MsgLoadFailed)
	assert.Contains(t, out, "search <term>")
}

func TestShellUnknownCommand(t *testing.T) {
	out, _ := session(t, storetest.NewFake(), "frobnicate\n")
	assert.Contains(t, out, `unknown command "frobnicate"`)
}

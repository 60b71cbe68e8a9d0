package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/config"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/services"
)

type result struct {
	out, errOut string
	err         error
}

// run executes one daybook invocation against dbPath with stdin as input.
func run(t *testing.T, dbPath, stdin string, args ...string) result {
	t.Helper()

	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = isTerminalDefault })

	a := NewApp()
	root := a.Command()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--db", dbPath, "--log-level", "error"))

	err := root.ExecuteContext(context.Background())
	require.NoError(t, a.Close())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

var isTerminalDefault = isTerminal

func newDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "daybook.db")
}

func addEntry(t *testing.T, db string, args ...string) string {
	t.Helper()
	r := run(t, db, "", append([]string{"add"}, args...)...)
	require.NoError(t, r.err, r.errOut)
	id := strings.TrimSpace(r.out)
	require.NotEmpty(t, id)
	return id
}

func showJSON(t *testing.T, db, id string, stdin string) models.Entry {
	t.Helper()
	r := run(t, db, stdin, "show", id, "--json")
	require.NoError(t, r.err, r.errOut)
	var e models.Entry
	require.NoError(t, json.Unmarshal([]byte(r.out), &e))
	return e
}

func TestAddListShow(t *testing.T) {
	db := newDB(t)

	r := run(t, db, "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "No entries yet")

	id := addEntry(t, db, "--title", "Seaside", "--content", "Cold water", "--mood", "great",
		"--category", "travel", "--tag", "beach", "--tag", " beach ", "--location", "Jurmala")

	r = run(t, db, "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, id)
	assert.Contains(t, r.out, "Seaside")
	assert.Contains(t, r.out, "travel")

	e := showJSON(t, db, id, "")
	assert.Equal(t, "Seaside", e.Title)
	assert.Equal(t, models.MoodGreat, e.Mood)
	assert.Equal(t, []string{"beach"}, e.Tags)
	require.NotNil(t, e.Location)
	assert.Equal(t, "Jurmala", *e.Location)

	r = run(t, db, "", "show", id)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "location: Jurmala")
	assert.Contains(t, r.out, "Cold water")
}

func TestAdd_Validation(t *testing.T) {
	db := newDB(t)

	r := run(t, db, "", "add", "--mood", "great")
	require.ErrorIs(t, r.err, common.ErrValidation)

	r = run(t, db, "", "add", "--content", "x", "--mood", "ecstatic")
	require.ErrorIs(t, r.err, common.ErrValidation)
}

func TestAdd_ContentFromStdin(t *testing.T) {
	db := newDB(t)

	r := run(t, db, "line one\nline two\n", "add", "--content", "-")
	require.NoError(t, r.err, r.errOut)

	e := showJSON(t, db, strings.TrimSpace(r.out), "")
	assert.Equal(t, "line one\nline two", e.Content)
}

func TestAdd_MediaAsDataURL(t *testing.T) {
	db := newDB(t)
	img := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nrest"), 0o600))

	id := addEntry(t, db, "--content", "photo day", "--image", img, "--drawing", img)

	e := showJSON(t, db, id, "")
	require.Len(t, e.Images, 1)
	assert.True(t, strings.HasPrefix(e.Images[0], "data:image/png;base64,"), e.Images[0])
	require.NotNil(t, e.Drawing)
	assert.Nil(t, e.Audio)

	r := run(t, db, "", "add", "--content", "x", "--audio", filepath.Join(t.TempDir(), "missing.m4a"))
	require.Error(t, r.err)
}

func TestEdit_AppliesOnlyChangedFlags(t *testing.T) {
	db := newDB(t)
	id := addEntry(t, db, "--title", "Draft", "--content", "body", "--tag", "a", "--tag", "b", "--mood", "bad")
	before := showJSON(t, db, id, "")

	r := run(t, db, "", "edit", id, "--title", "Final", "--add-tag", "c", "--remove-tag", "a")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "updated "+id)

	after := showJSON(t, db, id, "")
	assert.Equal(t, "Final", after.Title)
	assert.Equal(t, "body", after.Content)
	assert.Equal(t, models.MoodBad, after.Mood)
	assert.Equal(t, []string{"b", "c"}, after.Tags)
	assert.Equal(t, before.Date, after.Date, "edit keeps the entry date")

	r = run(t, db, "", "edit", "missing", "--title", "x")
	require.ErrorIs(t, r.err, common.ErrNotFound)
}

func TestFavAndRm(t *testing.T) {
	db := newDB(t)
	id := addEntry(t, db, "--content", "keep me")
	other := addEntry(t, db, "--content", "not a favorite")

	r := run(t, db, "", "fav", id)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "marked "+id)

	r = run(t, db, "", "list", "--favorites", "--json")
	require.NoError(t, r.err)
	var favs []models.Entry
	require.NoError(t, json.Unmarshal([]byte(r.out), &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, id, favs[0].ID)

	r = run(t, db, "", "fav", id)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "unmarked")

	r = run(t, db, "", "rm", id, other, "never-existed")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "deleted 3 entries")

	r = run(t, db, "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "No entries yet")
}

func TestCalendarAndStats(t *testing.T) {
	db := newDB(t)
	addEntry(t, db, "--title", "Today", "--content", "x", "--mood", "good", "--favorite")

	r := run(t, db, "", "calendar")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, time.Now().Format("January 2006"))
	assert.Contains(t, r.out, "Today")

	r = run(t, db, "", "calendar", "--month", "1999-02")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "no entries")

	r = run(t, db, "", "calendar", "--month", "02/1999")
	require.Error(t, r.err)

	r = run(t, db, "", "stats", "--json")
	require.NoError(t, r.err)
	var st services.Stats
	require.NoError(t, json.Unmarshal([]byte(r.out), &st))
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.Favorites)
	assert.Equal(t, 1, st.ByMood[models.MoodGood])
	assert.Equal(t, 1, st.Streak)

	r = run(t, db, "", "stats")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Entries:      1")
}

func TestSettings(t *testing.T) {
	db := newDB(t)

	r := run(t, db, "", "settings", "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "theme:          light")
	assert.Contains(t, r.out, "pin:            not set")

	r = run(t, db, "", "settings", "set", "--theme", "dark", "--reminder", "--reminder-time", "07:30")
	require.NoError(t, r.err, r.errOut)

	r = run(t, db, "", "settings", "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "theme:          dark")
	assert.Contains(t, r.out, "daily reminder: true at 07:30")
	assert.Contains(t, r.out, "view:           list")

	r = run(t, db, "", "settings", "set", "--reminder-time", "25:00")
	require.ErrorIs(t, r.err, common.ErrValidation)
}

func TestPIN_GatesCommands(t *testing.T) {
	db := newDB(t)
	id := addEntry(t, db, "--content", "secret")

	r := run(t, db, "12\n12\n", "pin", "set")
	require.ErrorIs(t, r.err, common.ErrValidation)

	r = run(t, db, "1234\n4321\n", "pin", "set")
	require.ErrorIs(t, r.err, common.ErrValidation)

	r = run(t, db, "1234\n1234\n", "pin", "set")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "New PIN")

	r = run(t, db, "0000\n", "list")
	require.ErrorIs(t, r.err, common.ErrLocked)

	r = run(t, db, "", "list")
	require.Error(t, r.err)

	r = run(t, db, "1234\n", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, id)

	r = run(t, db, "", "settings", "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "pin:            set")
	assert.Contains(t, r.out, "security:       true")
	assert.NotContains(t, r.out, "1234")

	r = run(t, db, "9999\n", "unlock")
	require.ErrorIs(t, r.err, common.ErrLocked)

	r = run(t, db, "1234\n", "unlock")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "PIN accepted")

	r = run(t, db, "1234\n", "pin", "clear")
	require.NoError(t, r.err)

	r = run(t, db, "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, id)

	r = run(t, db, "", "unlock")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "security is disabled")
}

func TestPIN_ReadsFromTerminalWithoutEcho(t *testing.T) {
	db := newDB(t)
	r := run(t, db, "1234\n1234\n", "pin", "set")
	require.NoError(t, r.err)

	a := NewApp()
	root := a.Command()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"list", "--db", db, "--log-level", "error"})

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("1234"), nil }
	t.Cleanup(func() {
		isTerminal = isTerminalDefault
		readPassword = readPasswordDefault
	})

	require.NoError(t, root.ExecuteContext(context.Background()))
	require.NoError(t, a.Close())
	assert.Equal(t, "PIN: \n", errOut.String())
}

var readPasswordDefault = readPassword

func TestExportImport(t *testing.T) {
	src := newDB(t)
	id := addEntry(t, src, "--title", "Portable", "--content", "travels well", "--tag", "x")

	r := run(t, src, "", "export")
	require.NoError(t, r.err)
	var exported []models.Entry
	require.NoError(t, json.Unmarshal([]byte(r.out), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, id, exported[0].ID)

	file := filepath.Join(t.TempDir(), "backup.json")
	r = run(t, src, "", "export", "-o", file)
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "exported to "+file)

	dst := newDB(t)
	keep := addEntry(t, dst, "--content", "already here")

	r = run(t, dst, "", "import", file)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "imported 1 entries")

	r = run(t, dst, "", "list", "--json")
	require.NoError(t, r.err)
	var all []models.Entry
	require.NoError(t, json.Unmarshal([]byte(r.out), &all))
	ids := []string{all[0].ID, all[1].ID}
	assert.ElementsMatch(t, []string{id, keep}, ids)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	r = run(t, dst, string(data), "import", "-")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "imported 1 entries")

	r = run(t, dst, `[{"id":"x"}]`, "import", "-")
	require.ErrorIs(t, r.err, common.ErrInvalidFormat)

	r = run(t, dst, "", "import", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, r.err)
}

func TestMetricsFileWrittenAtExit(t *testing.T) {
	db := newDB(t)
	prom := filepath.Join(t.TempDir(), "daybook.prom")

	r := run(t, db, "", "add", "--content", "counted", "--metrics-file", prom)
	require.NoError(t, r.err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `daybook_storage_ops_total{collection="entries",op="put",result="ok"} 1`)
}

func TestVersionSkipsStorage(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing", "dir", "daybook.db")

	r := run(t, db, "", "version")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Build version:")

	_, err := os.Stat(db)
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_ExitCode(t *testing.T) {
	assert.Equal(t, 0, Execute(context.Background(), []string{"version"}))
	assert.Equal(t, 1, Execute(context.Background(), []string{"no-such-command"}))
}

func TestServe(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.DBPath = newDB(t)

	a := NewApp()
	a.cfg = cfg
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.open(ctx))
	t.Cleanup(func() { _ = a.Close() })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/settings")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/publish"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
	"github.com/PaulieB14/grc20-publisher/pkg/report"
	"github.com/PaulieB14/grc20-publisher/pkg/server"
)

type testEnv struct {
	dir      string
	config   string
	registry string
}

func setup(t *testing.T) *testEnv {
	for _, k := range []string{"WALLET_ADDRESS", "PRIVATE_KEY", "SPACE_ID", "PERMITS_SPACE_ID", "DATA_DIR", "GRC20_CONFIG"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	records, err := filepath.Abs(filepath.Join("..", "..", "pkg", "records", "testdata"))
	require.NoError(t, err)

	env := &testEnv{
		dir:      dir,
		config:   filepath.Join(dir, "config.yaml"),
		registry: filepath.Join(dir, "entity-ids.json"),
	}
	cfg := fmt.Sprintf(`network:
  browser_url: https://browser.test
spaces:
  deeds: deed-space
storage:
  backend: file
  registry: %s
  data_dir: %s
inputs:
  deeds: %s
  permits: %s
  addresses: %s
log_level: error
`, env.registry, filepath.Join(dir, "spaces"),
		filepath.Join(records, "deeds.csv"),
		filepath.Join(records, "permits.csv"),
		filepath.Join(records, "addresses.json"))
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))
	return env
}

func (e *testEnv) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), append([]string{"--config", e.config}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestTransformWritesOps(t *testing.T) {
	env := setup(t)

	out, err := env.run("transform", "deeds")
	require.NoError(t, err)

	var ops []graph.Op
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.NotEmpty(t, ops)
	for _, op := range ops {
		assert.NoError(t, op.Validate())
	}

	// Transforming never saves IDs.
	_, err = os.Stat(env.registry)
	assert.True(t, os.IsNotExist(err))
}

func TestTransformToFilePrintsStats(t *testing.T) {
	env := setup(t)
	path := filepath.Join(env.dir, "ops.json")

	out, err := env.run("transform", "permits", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "3 permit records")
	assert.Contains(t, out, "record-type")
	assert.FileExists(t, path)
}

func TestUnknownKind(t *testing.T) {
	env := setup(t)

	_, err := env.run("transform", "leases")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestPublishDryRun(t *testing.T) {
	env := setup(t)

	out, err := env.run("publish", "deeds", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "3 deed records")
	assert.Contains(t, out, "CREATE_RELATION")
}

func TestPublishNeedsWallet(t *testing.T) {
	env := setup(t)

	_, err := env.run("publish", "deeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingConfig))
	assert.Contains(t, err.Error(), "WALLET_ADDRESS")
}

func seedRegistry(t *testing.T, env *testEnv, keys ...string) map[string]string {
	fs, err := registry.OpenFile(env.registry)
	require.NoError(t, err)
	ids := make(map[string]string)
	for _, k := range keys {
		id := string(graph.GenerateID())
		require.NoError(t, fs.PutID("deed", k, id))
		ids[k] = id
	}
	return ids
}

func TestIDsSuggest(t *testing.T) {
	env := setup(t)
	ids := seedRegistry(t, env, "2025035356", "2025035363", "1999000001")

	out, err := env.run("ids", "suggest", "deeds", "2025035357")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "2025035356\t1\t"+ids["2025035356"], lines[0])

	_, err = env.run("ids", "suggest", "deeds", "abc", "--max-distance", "1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestIDsRemapAndCheck(t *testing.T) {
	env := setup(t)
	triples := filepath.Join("..", "..", "pkg", "registry", "testdata", "deeds-triples.json")
	mapFile := filepath.Join(env.dir, "map.json")
	require.NoError(t, os.WriteFile(mapFile, []byte(`{"old-deed-1": "new-deed-1"}`), 0o644))
	out := filepath.Join(env.dir, "remapped.json")

	stdout, err := env.run("ids", "remap", "--triples", triples, "--map", mapFile, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 3")

	entities, err := registry.LoadTriples(out)
	require.NoError(t, err)
	require.Len(t, entities, 3)
	assert.Equal(t, "new-deed-1", entities[0].EntityID)
	for _, tr := range entities[0].Triples {
		assert.Equal(t, "new-deed-1", tr.EntityID)
	}

	working := filepath.Join(env.dir, "working.json")
	require.NoError(t, os.WriteFile(working, []byte(`["new-deed-1", "old-deed-2", "gone"]`), 0o644))
	stdout, err = env.run("ids", "check", "deeds", "--triples", out, "--working", working)
	require.NoError(t, err)
	assert.Contains(t, stdout, "missing (working, not in file): 1\n  gone\n")
	assert.Contains(t, stdout, "extra (in file, not working): 1\n  old-deed-3\n")
}

func TestIDsRemapNeedsMapping(t *testing.T) {
	env := setup(t)
	triples := filepath.Join("..", "..", "pkg", "registry", "testdata", "deeds-triples.json")

	_, err := env.run("ids", "remap", "--triples", triples)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestReport(t *testing.T) {
	env := setup(t)
	ids := seedRegistry(t, env, "2025035356")

	out, err := env.run("report", "--kind", "deeds")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, report.Header, rows[0])
	assert.Equal(t, []string{"deed", "", "2025035356", ids["2025035356"],
		"https://browser.test/space/deed-space/" + ids["2025035356"]}, rows[1])
}

func TestPublishRejectsForeignKey(t *testing.T) {
	env := setup(t)
	t.Setenv("WALLET_ADDRESS", "0x0000000000000000000000000000000000000001")
	t.Setenv("PRIVATE_KEY", "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")

	_, err := env.run("publish", "deeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestSaveConfirmed(t *testing.T) {
	env := setup(t)
	a := &app{configPath: env.config, stdout: io.Discard, stderr: io.Discard}
	require.NoError(t, a.init())
	t.Cleanup(a.close)

	reg, err := a.registryFor("deed-space")
	require.NoError(t, err)
	p, err := a.prepare(context.Background(), "deed", "", reg)
	require.NoError(t, err)
	require.NotEmpty(t, p.schemaOps)

	// schema still pending
	saved, err := a.saveConfirmed("deed-space", p, reg, []*publish.Receipt{{Ops: 1}})
	require.NoError(t, err)
	assert.Zero(t, saved)
	_, err = reg.Schema("deed")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	saved, err = a.saveConfirmed("deed-space", p, reg, []*publish.Receipt{{Ops: len(p.schemaOps)}})
	require.NoError(t, err)
	assert.Zero(t, saved)
	_, err = reg.Schema("deed")
	require.NoError(t, err)

	all := len(p.ops())
	saved, err = a.saveConfirmed("deed-space", p, reg, []*publish.Receipt{{Ops: len(p.schemaOps)}, {Ops: all - len(p.schemaOps)}})
	require.NoError(t, err)
	assert.Equal(t, len(p.result.Entities), saved)
	deeds, err := reg.Entries("deed")
	require.NoError(t, err)
	require.NotEmpty(t, deeds)

	srv := server.NewServer(a.storeManager(), nil, "https://browser.test", zerolog.Nop())
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/v1/spaces/deed-space/entities?kind=deed", nil))
	require.Equal(t, 200, w.Code)
	var rows []report.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, len(deeds))
}

func TestRenameDryRun(t *testing.T) {
	env := setup(t)
	ids := seedRegistry(t, env, "2025035363", "1999000001")
	fs, err := registry.OpenFile(env.registry)
	require.NoError(t, err)
	person := string(graph.GenerateID())
	require.NoError(t, fs.PutID("person", "SMITH JOHN", person))

	out, err := env.run("rename", "deeds", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "deed\t2025035363\t"+ids["2025035363"]+"\tDeed from Acme holdings llc to Nguyen an\n")
	assert.Contains(t, out, "person\tSMITH JOHN\t"+person+"\tSmith john\n")
	assert.NotContains(t, out, ids["1999000001"])
}

func TestRenameNeedsWallet(t *testing.T) {
	env := setup(t)

	_, err := env.run("rename", "deeds")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingConfig))
}

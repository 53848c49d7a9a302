package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssargent/csvmap/pkg/api"
	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/query"
	"github.com/ssargent/csvmap/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeCommand(t *testing.T) {
	configPath := writeTestConfig(t)

	t.Run("json array from stdin", func(t *testing.T) {
		res, err := runCommand(t, nil,
			`[{"id":1,"name":"Ada","score":9.5,"grade":"A"},{"id":2,"name":"Grace","grade":"B"}]`,
			"serialize", "--config", configPath, "--schema", "people")
		require.NoError(t, err)
		assert.Equal(t, "1;Ada;9.5;A\n2;Grace;NULL;B\n", res.stdout)
	})

	t.Run("request object to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "people.txt")
		_, err := runCommand(t, nil,
			`{"records":[{"id":3,"name":null,"score":null,"grade":"C"}]}`,
			"serialize", "--config", configPath, "-s", "people", "--out", out)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "3;NULL;NULL;C", string(data), "files hold the table without a trailing newline")
	})

	t.Run("separator override", func(t *testing.T) {
		res, err := runCommand(t, nil, `[{"id":1,"name":"Ada","grade":"A"}]`,
			"serialize", "--config", configPath, "-s", "people", "--separator", ",")
		require.NoError(t, err)
		assert.Equal(t, "1,Ada,NULL,A\n", res.stdout)
	})

	t.Run("empty input", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "serialize", "--config", configPath, "-s", "people")
		require.NoError(t, err)
		assert.Empty(t, res.stdout)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := runCommand(t, nil, `[{"id":`, "serialize", "--config", configPath, "-s", "people")
		assert.ErrorContains(t, err, "invalid JSON records")
	})

	t.Run("value of wrong type", func(t *testing.T) {
		_, err := runCommand(t, nil, `[{"id":"one"}]`, "serialize", "--config", configPath, "-s", "people")
		assert.ErrorIs(t, err, api.ErrInvalidRecord)
	})

	t.Run("unknown schema", func(t *testing.T) {
		_, err := runCommand(t, nil, `[]`, "serialize", "--config", configPath, "-s", "missing")
		assert.ErrorIs(t, err, api.ErrSchemaNotFound)
	})

	t.Run("schema flag is required", func(t *testing.T) {
		_, err := runCommand(t, nil, `[]`, "serialize", "--config", configPath)
		assert.ErrorContains(t, err, "schema")
	})
}

func TestDeserializeCommand(t *testing.T) {
	configPath := writeTestConfig(t)

	t.Run("stdin with trailing newline", func(t *testing.T) {
		res, err := runCommand(t, nil, "1;Ada;9.5;A\n2;Grace;oops;B\n", "deserialize", "--config", configPath, "-s", "people")
		require.NoError(t, err)

		var records []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
		require.Len(t, records, 2)
		assert.Equal(t, map[string]any{"id": float64(1), "name": "Ada", "score": 9.5, "grade": "A"}, records[0])
		assert.Nil(t, records[1]["score"], "unparseable nullable value falls back to null")
	})

	t.Run("file is read exactly", func(t *testing.T) {
		dir := t.TempDir()
		in := filepath.Join(dir, "people.txt")
		require.NoError(t, os.WriteFile(in, []byte("1;Ada;9.5;A\n2;Grace;oops;B"), 0600))

		out := filepath.Join(dir, "people.json")
		_, err := runCommand(t, nil, "", "deserialize", "--config", configPath, "-s", "people", "--in", in, "--out", out)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		var records []map[string]any
		require.NoError(t, json.Unmarshal(data, &records))
		assert.Len(t, records, 2)

		require.NoError(t, os.WriteFile(in, []byte("1;Ada;9.5;A\n"), 0600))
		_, err = runCommand(t, nil, "", "deserialize", "--config", configPath, "-s", "people", "--in", in)
		assert.ErrorIs(t, err, codec.ErrFieldCountMismatch)

		_, err = runCommand(t, nil, "", "deserialize", "--config", configPath, "-s", "people", "--in", filepath.Join(dir, "missing.txt"))
		assert.ErrorContains(t, err, "failed to read table file")
	})

	t.Run("custom separator", func(t *testing.T) {
		res, err := runCommand(t, nil, "7,Linus,NULL,L", "deserialize", "--config", configPath, "-s", "people", "--separator", ",")
		require.NoError(t, err)

		var records []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "Linus", records[0]["name"])
	})

	t.Run("field count mismatch", func(t *testing.T) {
		_, err := runCommand(t, nil, "1;Ada;9.5;A\n2;Grace", "deserialize", "--config", configPath, "-s", "people")
		assert.ErrorIs(t, err, codec.ErrFieldCountMismatch)
	})

	t.Run("empty table", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "deserialize", "--config", configPath, "-s", "people")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", res.stdout)
	})
}

func TestArchiveCommands(t *testing.T) {
	configPath := writeTestConfig(t)

	res, err := runCommand(t, nil, "1;Ada;9.50;A\n2;Grace;null;B\n", "import", "--config", configPath, "-s", "people")
	require.NoError(t, err)
	ids := strings.Fields(res.stdout)
	require.Len(t, ids, 2)
	assert.Contains(t, res.stderr, "Imported 2 records into people")

	t.Run("export", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "export", "--config", configPath, "-s", "people")
		require.NoError(t, err)
		assert.Equal(t, "1;Ada;9.5;A\n2;Grace;NULL;B\n", res.stdout)
	})

	t.Run("export to file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "export.txt")
		_, err := runCommand(t, nil, "", "export", "--config", configPath, "-s", "people", "-o", out)
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "1;Ada;9.5;A\n2;Grace;NULL;B", string(data))
	})

	t.Run("export where", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "export", "--config", configPath, "-s", "people", "--where", "score>=9", "-w", "grade=A")
		require.NoError(t, err)
		assert.Equal(t, "1;Ada;9.5;A\n", res.stdout)

		_, err = runCommand(t, nil, "", "export", "--config", configPath, "-s", "people", "--where", "score")
		assert.ErrorIs(t, err, query.ErrInvalidQuery)
	})

	t.Run("get line", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "get", "people", ids[1], "--config", configPath)
		require.NoError(t, err)
		assert.Equal(t, "2;Grace;NULL;B\n", res.stdout)
	})

	t.Run("get json", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "get", "people", ids[0], "--config", configPath, "--json")
		require.NoError(t, err)

		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &rec))
		assert.Equal(t, "Ada", rec["name"])
		assert.Equal(t, 9.5, rec["score"])
	})

	t.Run("get invalid id", func(t *testing.T) {
		_, err := runCommand(t, nil, "", "get", "people", "nope", "--config", configPath)
		assert.Error(t, err)
	})

	t.Run("rejected table archives nothing", func(t *testing.T) {
		_, err := runCommand(t, nil, "3;Linus;1;C\nbroken", "import", "--config", configPath, "-s", "people")
		assert.ErrorIs(t, err, codec.ErrFieldCountMismatch)

		res, err := runCommand(t, nil, "", "export", "--config", configPath, "-s", "people")
		require.NoError(t, err)
		assert.Equal(t, "1;Ada;9.5;A\n2;Grace;NULL;B\n", res.stdout)
	})

	t.Run("delete", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "delete", "people", ids[0], "--config", configPath)
		require.NoError(t, err)
		assert.Contains(t, res.stdout, "Deleted "+ids[0])

		_, err = runCommand(t, nil, "", "get", "people", ids[0], "--config", configPath)
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)

		_, err = runCommand(t, nil, "", "delete", "people", ids[0], "--config", configPath)
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	})

	t.Run("import from file", func(t *testing.T) {
		in := filepath.Join(t.TempDir(), "more.txt")
		require.NoError(t, os.WriteFile(in, []byte("3;;1;C"), 0600))

		res, err := runCommand(t, nil, "", "import", "--config", configPath, "-s", "people", "--in", in)
		require.NoError(t, err)
		added := strings.Fields(res.stdout)
		require.Len(t, added, 1)

		res, err = runCommand(t, nil, "", "export", "--config", configPath, "-s", "people", "-w", "name=NULL")
		require.NoError(t, err)
		assert.Equal(t, "3;;1;C\n", res.stdout)
	})

	t.Run("data dir override", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "export", "--config", configPath, "-s", "people", "--data-dir", t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, res.stdout)
	})
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/envschema/i18n"
)

const personSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0},
    "active": {"type": "boolean"}
  },
  "required": ["name", "age"]
}`

// lockedBuffer lets the watch test read output while run is still writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func defaults(prefix, schema string) options {
	return options{Prefix: prefix, Schema: schema, Indent: 2, Lang: "en"}
}

func execute(t *testing.T, opts options, stdin string, environ ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), opts, streams{
		stdin:   strings.NewReader(stdin),
		stdout:  &out,
		stderr:  &errOut,
		environ: environ,
	})
	return code, out.String(), errOut.String()
}

func TestRun_PrintsDocument(t *testing.T) {
	schema := writeFile(t, "schema.json", personSchema)
	code, out, errOut := execute(t, defaults("TEST_", schema), "",
		"TEST_NAME=Alice", "TEST_AGE=30", "TEST_ACTIVE=true", "OTHER_NAME=Bob")

	assert.Equal(t, 0, code)
	assert.Empty(t, errOut)
	assert.Equal(t, "{\n  \"name\": \"Alice\",\n  \"age\": 30,\n  \"active\": true\n}\n", out)
}

func TestRun_SchemaFromStdinCompact(t *testing.T) {
	opts := defaults("TEST_", "")
	opts.Indent = 0
	code, out, _ := execute(t, opts, personSchema, "TEST_NAME=Alice", "TEST_AGE=30")

	assert.Equal(t, 0, code)
	assert.Equal(t, `{"name":"Alice","age":30}`+"\n", out)
}

func TestRun_KeepsHTMLCharacters(t *testing.T) {
	opts := defaults("TEST_", "")
	opts.Indent = 0
	code, out, _ := execute(t, opts, `{"type":"object","properties":{"name":{"type":"string"}}}`, "TEST_NAME=a<b&c>")

	assert.Equal(t, 0, code)
	assert.Equal(t, `{"name":"a<b&c>"}`+"\n", out)
}

func TestRun_YAMLSchema(t *testing.T) {
	schema := writeFile(t, "schema.yaml", "type: object\nproperties:\n  port:\n    type: integer\n  hosts:\n    type: array\n    items:\n      type: string\n")
	opts := defaults("APP_", schema)
	opts.Indent = 0
	code, out, _ := execute(t, opts, "", "APP_PORT=8080", "APP_HOSTS=a, b")

	assert.Equal(t, 0, code)
	assert.Equal(t, `{"port":8080,"hosts":["a","b"]}`+"\n", out)
}

func TestRun_IssuesSuppressOutput(t *testing.T) {
	schema := writeFile(t, "schema.json", personSchema)
	code, out, errOut := execute(t, defaults("TEST_", schema), "", "TEST_AGE=-5")

	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "name TEST_NAME: required property missing")
	assert.Contains(t, errOut, "age TEST_AGE: -5 is below the minimum 0")
	assert.Contains(t, errOut, "2 issues")
}

func TestRun_PartialOutput(t *testing.T) {
	schema := writeFile(t, "schema.json", personSchema)
	opts := defaults("TEST_", schema)
	opts.Partial = true
	opts.Indent = 0
	code, out, errOut := execute(t, opts, "", "TEST_AGE=-5", "TEST_ACTIVE=maybe")

	assert.Equal(t, 1, code)
	assert.Equal(t, `{"age":-5}`+"\n", out)
	assert.Contains(t, errOut, "cannot convert maybe to boolean")
}

func TestRun_EnvFileUnderProcessEnvironment(t *testing.T) {
	schema := writeFile(t, "schema.json", personSchema)
	envFile := writeFile(t, ".env", "TEST_NAME=\"From File\"\nTEST_AGE=40\nUNRELATED=x\n")
	opts := defaults("TEST_", schema)
	opts.EnvFile = envFile
	opts.Indent = 0
	code, out, _ := execute(t, opts, "", "TEST_AGE=41")

	assert.Equal(t, 0, code)
	assert.Equal(t, `{"name":"From File","age":41}`+"\n", out)
}

func TestRun_FatalErrors(t *testing.T) {
	dir := t.TempDir()
	badType := writeFile(t, "bad.json", `{"type":"object","properties":{"a":{"type":"date"}}}`)
	dup := writeFile(t, "dup.json", `{"properties":{"a":{},"a":{}}}`)

	cases := []struct {
		name string
		opts options
		want string
	}{
		{"no prefix", defaults("", badType), "--prefix is required"},
		{"bad indent", options{Prefix: "A_", Schema: badType, Indent: -1, Lang: "en"}, "--indent"},
		{"bad lang", options{Prefix: "A_", Schema: badType, Indent: 2, Lang: "fr"}, "--lang"},
		{"watch stdin", options{Prefix: "A_", Indent: 2, Lang: "en", Watch: true}, "--watch"},
		{"schema error", defaults("A_", badType), "schema error at /properties/a/type"},
		{"duplicate key", defaults("A_", dup), "duplicated at /properties/a"},
		{"missing schema", defaults("A_", filepath.Join(dir, "missing.json")), "missing.json"},
		{"missing env file", options{Prefix: "A_", Schema: dup, EnvFile: filepath.Join(dir, "nope.env"), Indent: 2, Lang: "en"}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, out, errOut := execute(t, tc.opts, "")
			assert.Equal(t, 1, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tc.want)
		})
	}
}

func TestRun_JapaneseDiagnostics(t *testing.T) {
	t.Cleanup(func() { i18n.SetLanguage("en") })
	schema := writeFile(t, "schema.json", personSchema)
	opts := defaults("TEST_", schema)
	opts.Lang = "ja"
	code, _, errOut := execute(t, opts, "", "TEST_AGE=30")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "必須プロパティが不足しています")
}

func TestRun_DebugLogsToStderr(t *testing.T) {
	schema := writeFile(t, "schema.json", personSchema)
	opts := defaults("TEST_", schema)
	opts.Debug = true
	code, out, errOut := execute(t, opts, "", "TEST_NAME=Alice", "TEST_AGE=30")

	assert.Equal(t, 0, code)
	assert.NotContains(t, out, "coercing")
	assert.Contains(t, errOut, "coercing")
	assert.Contains(t, errOut, "TEST_")
}

func TestRun_WatchRebuildsOnChange(t *testing.T) {
	schema := writeFile(t, "schema.json", `{"type":"object","properties":{"name":{"type":"string"}}}`)
	opts := defaults("TEST_", schema)
	opts.Indent = 0
	opts.Watch = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out, errOut lockedBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, opts, streams{
			stdin:   strings.NewReader(""),
			stdout:  &out,
			stderr:  &errOut,
			environ: []string{"TEST_NAME=Alice", "TEST_AGE=30"},
		})
	}()

	require.Eventually(t, func() bool {
		return out.String() == `{"name":"Alice"}`+"\n"
	}, 2*time.Second, 10*time.Millisecond)

	// The watcher is registered right after the first build; keep rewriting
	// until a rebuild shows up.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(schema, []byte(`{"type":"object","properties":{"age":{"type":"integer"}}}`), 0o644)
		return strings.Contains(out.String(), `{"age":30}`)
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

package envschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/envschema"
)

func TestCaptureEnv_FiltersAndNormalizes(t *testing.T) {
	env := envschema.CaptureEnv("TEST_", []string{
		"TEST_FOO_BAR=value1",
		"TEST_baz__qux=value2",
		"test_lower=ignored",
		"OTHER=ignored",
		"TEST_EQUALS=a=b",
		"MALFORMED",
	})

	assert.Equal(t, 3, env.Len())
	assert.Equal(t, []string{"BAZ__QUX", "EQUALS", "FOO_BAR"}, env.Keys())

	v, ok := env.Lookup("FOO_BAR")
	assert.True(t, ok)
	assert.Equal(t, "value1", v)

	v, _ = env.Lookup("EQUALS")
	assert.Equal(t, "a=b", v)

	_, ok = env.Lookup("LOWER")
	assert.False(t, ok)
}

func TestCaptureEnv_StripsMatchingQuotes(t *testing.T) {
	env := envschema.CaptureEnv("", []string{
		`DOUBLE="a b"`,
		`SINGLE='x'`,
		`PADDED=  "y"  `,
		`MIXED="z'`,
		`LONE="`,
		`PLAIN= keep `,
	})

	for key, want := range map[string]string{
		"DOUBLE": "a b",
		"SINGLE": "x",
		"PADDED": "y",
		"MIXED":  `"z'`,
		"LONE":   `"`,
		"PLAIN":  " keep ",
	} {
		got, ok := env.Lookup(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestCaptureMap_AndMerge(t *testing.T) {
	file := envschema.CaptureMap("APP_", map[string]string{"APP_HOST": "file", "APP_PORT": "1", "NOPE": "x"})
	proc := envschema.CaptureEnv("APP_", []string{"APP_HOST=process"})

	merged := file.Merge(proc)
	assert.Equal(t, []string{"HOST", "PORT"}, merged.Keys())
	host, _ := merged.Lookup("HOST")
	assert.Equal(t, "process", host)

	// inputs are untouched
	host, _ = file.Lookup("HOST")
	assert.Equal(t, "file", host)
	assert.Equal(t, 1, proc.Len())
}

func TestFlatEnv_KeysUnder(t *testing.T) {
	env := envschema.NewFlatEnv(map[string]string{
		"labels_b": "2",
		"LABELS_A": "1",
		"LABELS_":  "edge",
		"LABEL":    "x",
	})

	assert.Equal(t, []string{"LABELS_A", "LABELS_B"}, env.KeysUnder("LABELS_"))
	assert.Len(t, env.KeysUnder(""), 4)
}

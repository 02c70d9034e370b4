package envschema

// Package envschema assembles a JSON document from environment variables,
// using a JSON Schema to decide which variables to read and how to coerce them.
//
// Variable names are derived from schema paths: the prefix is stripped, every
// path segment is upper-cased and segments are joined with "_". Array elements
// use their index as a segment. A literal "_" inside a property name may be
// written as "__".
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place schema document decoding under source/ and the CLI under cmd/envschema.
// - Collect every finding as an Issue instead of stopping at the first one.
//
// Typical usage:
//
//	doc, err := source.ReadFile("schema.json")
//	root, err := envschema.ParseSchema(doc)
//	env := envschema.CaptureEnv("APP_", os.Environ())
//	res := envschema.Build(root, env, envschema.BuildOptions{})
//	if err := res.Err(); err != nil {
//		// res.Value still holds the partial document
//	}

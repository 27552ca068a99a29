package structure

import "embed"

// builtinFS embeds the builtin structure layouts.
//
//go:embed builtin/*.yml
var builtinFS embed.FS

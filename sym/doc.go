// Package sym implements a parser for SYM, a human-oriented textual data
// format positioned against JSON, YAML and TOML.
//
// SYM is designed to be:
//   - Quote-free: unquoted strings, with inline commas and colons literal
//   - Line-oriented: the element separator is newline + optional
//     whitespace + comma
//   - Composable: @import with deep merge, per-key ! (replace) and
//     + (append) modifiers
//   - Parameterized: $variables defined in defs blocks, substituted into
//     values and interpolated into strings
//
// # Pipeline
//
// The parser operates in three phases:
//
//  1. Lexer: a context-sensitive tokenizer. Whether :name is a key or a
//     symbol, whether , separates or is a literal byte, and whether //
//     opens a comment all depend on the position within the line and the
//     enclosing container.
//
//  2. Parser: recursive descent over the token stream, producing a
//     Document of imports, defs blocks and the single data block.
//
//  3. Resolver: executes imports in order (with cycle detection),
//     accumulates variable bindings left to right, substitutes $name
//     references, and deep-merges imported data under modifier rules.
//
// # Syntax
//
//	// a comment (only after whitespace; https://... stays intact)
//	@import ./base.sym
//
//	{ $env production
//	}
//	{ :name Alice
//	, :greeting Hello, world
//	, :status :active
//	, :host db.$env.example.com
//	, :port 5432
//	, :price \$99.99
//	, :plugins+ [ :cache
//	  , :ratelimit
//	  ]
//	}
//
// # Entry points
//
// ParseDocument runs the full pipeline with a pluggable import Loader.
// ParseAST stops after parsing, for tools that inspect documents.
// ToJSONValue and MarshalJSON expose the resolved value in its generic
// JSON view; Emit renders it back as SYM text.
package sym

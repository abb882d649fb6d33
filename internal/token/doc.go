// Package token defines lexical token kinds for Nix source.
// Invariants:
//   - Token.Text is the exact source text of the token (no unescaping).
//   - Token.Span matches Text exactly (Start..End) for lexer-produced tokens.
//     Tokens synthesised by tree edits carry an empty span.
//   - Trivia (whitespace and comments) are ordinary tokens in the stream;
//     concatenating every token's Text reproduces the input.
//   - true, false and null are identifiers; the parser turns them into
//     literal nodes.
package token

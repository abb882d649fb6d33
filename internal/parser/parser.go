package parser

import (
	"errors"
	"fmt"
	"strings"

	"nixscan/internal/diag"
	"nixscan/internal/lexer"
	"nixscan/internal/source"
	"nixscan/internal/syntax"
	"nixscan/internal/token"
)

// DefaultMaxDepth bounds expression nesting so hostile input cannot exhaust
// the stack.
const DefaultMaxDepth = 512

// ErrInvalidFragment is returned by ParseFragment for text that does not
// parse as a single expression.
var ErrInvalidFragment = errors.New("invalid nix fragment")

type Options struct {
	// File is the source the tokens came from; nil for detached fragments.
	File          *source.File
	MaxErrors     uint
	CurrentErrors uint
	// MaxDepth limits recursion; 0 means DefaultMaxDepth.
	MaxDepth int
	// Reporter, when set, receives every diagnostic as well.
	Reporter diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Parser — состояние парсера на один файл
type Parser struct {
	toks []token.Token
	// sig holds the indices of non-trivia tokens; the last one is EOF.
	sig []int
	si  int
	// pos is the next raw token (trivia included) not yet in the tree.
	pos      int
	b        *syntax.Builder
	opts     Options
	diags    []diag.Diagnostic
	lastSpan source.Span
	depth    int
	tooDeep  bool
}

// Parse builds a lossless tree from a token stream produced by the lexer.
// It never fails: problems become diagnostics and Error nodes.
func Parse(tokens []token.Token, opts Options) (*syntax.Tree, []diag.Diagnostic) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
		var end source.Span
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1].Span
			end = source.Span{File: last.File, Start: last.End, End: last.End}
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.Token{Kind: token.EOF, Span: end})
	}
	p := &Parser{
		toks: tokens,
		sig:  make([]int, 0, len(tokens)/2+1),
		b:    syntax.NewBuilder(opts.File, uint(len(tokens))),
		opts: opts,
	}
	for i, tok := range tokens {
		if !tok.IsTrivia() {
			p.sig = append(p.sig, i)
		}
	}
	p.parseRoot()
	return p.b.Finish(), p.diags
}

func (p *Parser) parseRoot() {
	p.b.StartNode(syntax.KindRoot)
	if !p.at(token.EOF) {
		p.parseExpr()
	}
	if !p.at(token.EOF) {
		p.err(diag.SynTrailingInput, fmt.Sprintf("unexpected %s after expression", describe(p.peek())))
		p.start(syntax.KindError)
		for !p.at(token.EOF) {
			p.bump()
		}
		p.finish()
	}
	p.flushTrivia()
	p.b.FinishNode()
}

// ParseFile lexes and parses a file registered in fs.
func ParseFile(fs *source.FileSet, id source.FileID, opts Options) *syntax.SourceFile {
	file := fs.Get(id)
	lexBag := diag.NewBag(int(opts.MaxErrors))
	var lexReporter diag.Reporter = diag.BagReporter{Bag: lexBag}
	if opts.Reporter != nil {
		lexReporter = fanout{lexReporter, opts.Reporter}
	}
	toks := lexer.Tokenize(file, lexer.Options{Reporter: lexReporter})

	opts.File = file
	tree, parseDiags := Parse(toks, opts)

	diags := make([]diag.Diagnostic, 0, lexBag.Len()+len(parseDiags))
	diags = append(diags, lexBag.Items()...)
	diags = append(diags, parseDiags...)
	bag := diag.NewBag(len(diags))
	for _, d := range diags {
		bag.Add(d)
	}
	bag.Sort()

	return &syntax.SourceFile{
		Path:        file.Path,
		Text:        string(file.Content),
		File:        file,
		Tree:        tree,
		Diagnostics: bag.Items(),
	}
}

// ParseSource parses text held in memory under the given path.
func ParseSource(path, text string) *syntax.SourceFile {
	fs := source.NewFileSet()
	id := fs.Add(path, []byte(text), source.FileVirtual)
	return ParseFile(fs, id, Options{})
}

// ParseFragment parses text as a single standalone expression and returns
// its tree and the expression node. Fragments with errors are rejected.
func ParseFragment(text string) (*syntax.Tree, syntax.NodeID, error) {
	sf := ParseSource("<fragment>", text)
	if sf.HasErrors() {
		msgs := make([]string, 0, len(sf.Diagnostics))
		for _, d := range sf.Diagnostics {
			msgs = append(msgs, d.Message)
		}
		return nil, syntax.NoNodeID, fmt.Errorf("%w %q: %s", ErrInvalidFragment, text, strings.Join(msgs, "; "))
	}
	if children := sf.Tree.ChildNodes(sf.Tree.Root); len(children) > 0 {
		return sf.Tree, children[0], nil
	}
	return nil, syntax.NoNodeID, fmt.Errorf("%w: empty expression", ErrInvalidFragment)
}

type fanout []diag.Reporter

func (f fanout) Report(code diag.Code, sev diag.Severity, sp source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	for _, r := range f {
		r.Report(code, sev, sp, msg, notes, fixes)
	}
}

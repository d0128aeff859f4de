package morph

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/SamHutchings/structmorph/schema"
)

// --- Participle grammar ---

// pathExpr parses: segment ( '.' segment )*
type pathExpr struct {
	First string   `parser:"@Ident"`
	Rest  []string `parser:"( '.' @Ident )*"`
}

var pathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Dot", Pattern: `\.`},
})

var pathParser = participle.MustBuild[pathExpr](
	participle.Lexer(pathLexer),
	participle.Elide("Whitespace"),
)

// ParsePath parses a dot-separated field path like "billing_address.city"
// into its normalized key segments.
func ParsePath(path string) ([]string, error) {
	expr, err := pathParser.ParseString("path", path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	segs := make([]string, 0, 1+len(expr.Rest))
	segs = append(segs, schema.NormalizeKey(expr.First))
	for _, s := range expr.Rest {
		segs = append(segs, schema.NormalizeKey(s))
	}
	return segs, nil
}

// pathTree is a key whitelist. An empty subtree admits the whole value under
// its key; a non-empty subtree restricts nested maps to its own keys.
type pathTree map[string]pathTree

func newPathTree(paths []string) (pathTree, error) {
	tree := make(pathTree)
	for _, p := range paths {
		segs, err := ParsePath(p)
		if err != nil {
			return nil, err
		}
		node := tree
		for i, seg := range segs {
			last := i == len(segs)-1
			child, ok := node[seg]
			if ok && len(child) == 0 && !last {
				// An earlier path already admitted this whole subtree.
				break
			}
			if !ok || (last && len(child) > 0) {
				// A path ending here admits the whole subtree, dropping any
				// narrower paths inserted earlier.
				child = make(pathTree)
				node[seg] = child
			}
			node = child
		}
	}
	return tree, nil
}

// filterParams restricts params to the keys admitted by the tree, recursing
// into nested maps and slices of maps.
func (t pathTree) filterParams(params map[string]any) map[string]any {
	out := make(map[string]any)
	for key, val := range params {
		sub, ok := t[schema.NormalizeKey(key)]
		if !ok {
			continue
		}
		if len(sub) == 0 {
			out[key] = val
			continue
		}
		switch v := val.(type) {
		case map[string]any:
			out[key] = sub.filterParams(v)
		case []any:
			elems := make([]any, len(v))
			for i, e := range v {
				if m, ok := e.(map[string]any); ok {
					elems[i] = sub.filterParams(m)
				} else {
					elems[i] = e
				}
			}
			out[key] = elems
		default:
			out[key] = val
		}
	}
	return out
}

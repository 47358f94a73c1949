package parser

import (
	"strings"

	"sweepq/internal/sweep"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// tree-sitter-python node kinds used by the sweep extractor.
const (
	pyNodeAssignment          = "assignment"
	pyNodeAugmentedAssignment = "augmented_assignment"
	pyNodeCall                = "call"
	pyNodeAttribute           = "attribute"
	pyNodeIdentifier          = "identifier"
	pyNodeKeywordArgument     = "keyword_argument"
	pyNodeTuple               = "tuple"
	pyNodeParenthesized       = "parenthesized_expression"
	pyNodeString              = "string"
	pyNodeComment             = "comment"
)

var sweepClasses = map[string]sweep.Type{
	"Sweep0D":     sweep.TypeSweep0D,
	"Sweep1D":     sweep.TypeSweep1D,
	"Sweep2D":     sweep.TypeSweep2D,
	"SimulSweep":  sweep.TypeSimulSweep,
	"SweepTo":     sweep.TypeSweepTo,
	"GateLeakage": sweep.TypeGateLeakage,
}

// cellFacts accumulates markers in source order; later statements refer to
// sweeps by variable name.
type cellFacts struct {
	markers []Marker
	byVar   map[string]int
}

func (f *cellFacts) lookup(name string) *Marker {
	idx, ok := f.byVar[name]
	if !ok {
		return nil
	}
	return &f.markers[idx]
}

type sweepExtractor struct {
	engine *ExtractorEngine
}

func newSweepExtractor() *sweepExtractor {
	e := &sweepExtractor{}
	e.engine = NewExtractorEngine(map[string]NodeHandler{
		pyNodeAssignment:          e.extractAssignment,
		pyNodeAugmentedAssignment: e.extractQueueAdd,
		pyNodeCall:                e.extractCall,
	})
	return e
}

func (e *sweepExtractor) Extract(root *sitter.Node, source []byte) []Marker {
	facts := &cellFacts{byVar: make(map[string]int)}
	ctx := &ExtractionContext{Source: source, facts: facts}
	e.engine.Walk(ctx, root)
	return facts.markers
}

func (e *sweepExtractor) extractAssignment(ctx *ExtractionContext, node *sitter.Node) bool {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || left.Kind() != pyNodeIdentifier || right.Kind() != pyNodeCall {
		return false
	}

	class := lastComponent(ctx.Text(right.ChildByFieldName("function")))
	sweepType, ok := sweepClasses[class]
	if !ok {
		return false
	}

	marker := Marker{
		Variable:  ctx.Text(left),
		Class:     class,
		SweepType: sweepType,
		Line:      ctx.Line(node),
		Args:      e.arguments(ctx, right.ChildByFieldName("arguments")),
	}
	if sweepType == sweep.TypeSweep1D && isRampTo(marker) {
		marker.SweepType = sweep.TypeSweepTo
	}

	ctx.facts.markers = append(ctx.facts.markers, marker)
	ctx.facts.byVar[marker.Variable] = len(ctx.facts.markers) - 1
	// Nested calls inside the constructor carry nothing of interest.
	return true
}

func (e *sweepExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	args := e.arguments(ctx, node.ChildByFieldName("arguments"))

	switch fn.Kind() {
	case pyNodeAttribute:
		object := fn.ChildByFieldName("object")
		if object == nil || object.Kind() != pyNodeIdentifier {
			return false
		}
		marker := ctx.facts.lookup(ctx.Text(object))
		if marker == nil {
			return false
		}
		switch ctx.Text(fn.ChildByFieldName("attribute")) {
		case "follow_param":
			for _, a := range args {
				if a.Name == "" {
					marker.Follows = append(marker.Follows, a.Value)
				}
			}
		case "start":
			marker.Started = true
		}
	case pyNodeIdentifier:
		if ctx.Text(fn) != "init_database" || len(args) < 4 {
			return false
		}
		if marker := ctx.facts.lookup(args[3].Value); marker != nil {
			marker.Database = &sweep.Database{
				Database:   unquote(args[0].Value),
				Experiment: unquote(args[1].Value),
				Sample:     unquote(args[2].Value),
			}
		}
	}
	return false
}

// extractQueueAdd handles `sq += sweep` and `sq += (DatabaseEntry(...), sweep)`.
func (e *sweepExtractor) extractQueueAdd(ctx *ExtractionContext, node *sitter.Node) bool {
	op := node.ChildByFieldName("operator")
	if op == nil || ctx.Text(op) != "+=" {
		return false
	}
	right := node.ChildByFieldName("right")
	for right != nil && right.Kind() == pyNodeParenthesized {
		children := ctx.NamedChildren(right)
		if len(children) != 1 {
			break
		}
		right = children[0]
	}
	if right == nil {
		return false
	}

	switch right.Kind() {
	case pyNodeIdentifier:
		if marker := ctx.facts.lookup(ctx.Text(right)); marker != nil {
			marker.Queued = true
		}
	case pyNodeTuple:
		items := ctx.NamedChildren(right)
		if len(items) != 2 || items[1].Kind() != pyNodeIdentifier {
			return false
		}
		marker := ctx.facts.lookup(ctx.Text(items[1]))
		if marker == nil {
			return false
		}
		marker.Queued = true
		if db := e.databaseEntry(ctx, items[0]); db != nil {
			marker.Database = db
		}
	}
	return false
}

func (e *sweepExtractor) databaseEntry(ctx *ExtractionContext, node *sitter.Node) *sweep.Database {
	if node == nil || node.Kind() != pyNodeCall {
		return nil
	}
	if lastComponent(ctx.Text(node.ChildByFieldName("function"))) != "DatabaseEntry" {
		return nil
	}
	args := e.arguments(ctx, node.ChildByFieldName("arguments"))
	if len(args) < 3 {
		return nil
	}
	return &sweep.Database{
		Database:   unquote(args[0].Value),
		Experiment: unquote(args[1].Value),
		Sample:     unquote(args[2].Value),
	}
}

func (e *sweepExtractor) arguments(ctx *ExtractionContext, list *sitter.Node) []Argument {
	if list == nil {
		return nil
	}
	children := ctx.NamedChildren(list)
	out := make([]Argument, 0, len(children))
	for _, child := range children {
		if child.Kind() == pyNodeKeywordArgument {
			out = append(out, Argument{
				Name:  ctx.Text(child.ChildByFieldName("name")),
				Value: ctx.Text(child.ChildByFieldName("value")),
			})
			continue
		}
		out = append(out, Argument{Value: ctx.Text(child)})
	}
	return out
}

// isRampTo recognises Sweep1D(p, p.get(), target, step), the ramp-to form.
func isRampTo(m Marker) bool {
	param := strings.TrimSpace(m.Positional(0))
	from := strings.ReplaceAll(m.Positional(1), " ", "")
	return param != "" && from == strings.ReplaceAll(param, " ", "")+".get()"
}

func lastComponent(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func unquote(value string) string {
	value = strings.TrimSpace(value)
	prefixEnd := strings.IndexAny(value, `"'`)
	if prefixEnd < 0 {
		return value
	}
	prefix := strings.ToLower(value[:prefixEnd])
	if strings.Trim(prefix, "rbuf") != "" {
		return value
	}
	body := value[prefixEnd:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			body = body[len(q) : len(body)-len(q)]
			break
		}
	}
	if strings.Contains(prefix, "r") {
		return body
	}
	return strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\'`, `'`, `\n`, "\n").Replace(body)
}

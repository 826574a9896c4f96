package typescript

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

// testFrameworkCallees are call expressions whose function-literal argument
// is synthesized a name from the call's first string argument.
var testFrameworkCallees = map[string]bool{
	"describe": true, "it": true, "test": true, "before": true, "after": true,
	"beforeEach": true, "afterEach": true, "beforeAll": true, "afterAll": true,
	"suite": true, "spec": true, "context": true,
}

// eventCallees are callback-shaped methods whose function-literal argument
// is recorded with the event-name first argument as its callback context
// where one is present, and with the method name otherwise.
var eventCallees = map[string]bool{
	"then": true, "catch": true, "finally": true, "on": true, "once": true,
	"addEventListener": true, "action": true, "command": true, "option": true,
	"use": true, "subscribe": true, "handle": true,
}

// arrayMethodBlocklist are excluded from callback extraction even though
// they take function-literal arguments — these are plain array
// iteration, not event/async callback wiring.
var arrayMethodBlocklist = map[string]bool{
	"map": true, "filter": true, "reduce": true, "forEach": true, "find": true,
	"some": true, "every": true, "flatMap": true, "sort": true,
	"findIndex": true, "reduceRight": true,
}

var slugNonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func slugify(s string, maxLen int) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// maybeExtractCallback inspects a call_expression; if its callee is in the
// allowlist (and not in the blocklist) and it has a function-literal
// argument, emits a callback symbol.
func (c *collector) maybeExtractCallback(call *sitter.Node, parentFunction *string, parentClass *string, depth int) {
	fn := fieldName(call, "function")
	if fn == nil {
		return
	}
	calleeName := trailingIdentifier(c.text(fn))

	if arrayMethodBlocklist[calleeName] {
		return
	}
	isTestFramework := testFrameworkCallees[calleeName]
	isEvent := eventCallees[calleeName]
	if !isTestFramework && !isEvent {
		return
	}

	args := fieldName(call, "arguments")
	if args == nil {
		return
	}

	var literalArg *sitter.Node
	var firstStringArg string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case "arrow_function", "function_expression", "generator_function":
			if literalArg == nil {
				literalArg = arg
			}
		case "string":
			if firstStringArg == "" {
				firstStringArg = trimQuotes(c.text(arg))
			}
		}
	}
	if literalArg == nil {
		return
	}

	loc := c.loc(literalArg)
	key := [2]uint32{literalArg.StartByte(), literalArg.EndByte()}
	if c.seenCallbacks == nil {
		c.seenCallbacks = make(map[[2]uint32]bool)
	}
	if c.seenCallbacks[key] {
		return
	}
	c.seenCallbacks[key] = true

	var name string
	var context *string
	if isTestFramework {
		name = slugify(firstStringArg, 60)
		if name == "" {
			name = calleeName
		}
		context = ptr(calleeName)
	} else {
		name = calleeName
		if firstStringArg != "" {
			context = ptr(firstStringArg)
		} else {
			context = ptr(calleeName)
		}
	}

	qualified := name
	if parentFunction != nil {
		qualified = *parentFunction + "." + name
	}

	isAsync := hasChildOfType(literalArg, "async")
	params := c.extractParameters(fieldName(literalArg, "parameters"))

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, qualified, string(types.KindCallback), loc.StartLine),
		Name:          name,
		QualifiedName: qualified,
		Kind:          types.KindCallback,
		Signature:     calleeName + "(" + name + ")",
		Location:      loc,
		Function: &types.FunctionPayload{
			Parameters: params,
			Modifiers: types.Modifiers{
				Async:           isAsync,
				CallbackContext: context,
			},
			ParentClass:    parentClass,
			ParentFunction: parentFunction,
			NestingDepth:   depth,
			LocalName:      name,
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	if depth < MaxNestingDepth {
		body := fieldName(literalArg, "body")
		c.extractNestedFromBlock(body, &qualified, parentClass, depth+1)
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

// walkTopLevel dispatches over a program's direct children, unwrapping
// export_statement wrappers.
func (c *collector) walkTopLevel(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		c.handleStatement(child, false)
	}
}

// handleStatement processes one top-level (or export-wrapped) declaration.
func (c *collector) handleStatement(node *sitter.Node, exported bool) {
	switch node.Type() {
	case "export_statement":
		inner := node.NamedChild(0)
		if inner == nil {
			return
		}
		if inner.Type() == "default" {
			return
		}
		c.handleStatement(inner, true)
	case "function_declaration", "generator_function_declaration":
		c.processFunctionDeclaration(node, exported, nil, nil, 0)
	case "class_declaration":
		c.processClass(node, exported)
	case "interface_declaration":
		c.processInterface(node, exported)
	case "type_alias_declaration":
		c.processTypeAlias(node, exported)
	case "lexical_declaration", "variable_declaration":
		c.processVariableStatement(node, exported, nil, 0)
	case "expression_statement":
		if call := node.NamedChild(0); call != nil && call.Type() == "call_expression" {
			c.maybeExtractCallback(call, nil, nil, 0)
		}
	}
}

func fieldName(n *sitter.Node, name string) *sitter.Node {
	return n.ChildByFieldName(name)
}

// processFunctionDeclaration handles `function foo() {}` at any nesting
// level. parentFunction/parentClass/depth describe the enclosing context.
func (c *collector) processFunctionDeclaration(node *sitter.Node, exported bool, parentFunction *string, parentClass *string, depth int) *types.Symbol {
	nameNode := fieldName(node, "name")
	if nameNode == nil {
		return nil
	}
	name := c.text(nameNode)
	loc := c.loc(node)

	qualified := name
	if parentFunction != nil {
		qualified = *parentFunction + "." + name
	}

	isAsync := hasChildOfType(node, "async")
	isGenerator := node.Type() == "generator_function_declaration"

	params := c.extractParameters(fieldName(node, "parameters"))
	returnType := c.extractReturnType(node)

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, qualified, string(types.KindFunction), loc.StartLine),
		Name:          name,
		QualifiedName: qualified,
		Kind:          types.KindFunction,
		Signature:     c.text(node.ChildByFieldName("name")) + c.text(fieldName(node, "parameters")),
		Location:      loc,
		Function: &types.FunctionPayload{
			Parameters: params,
			ReturnType: returnType,
			Modifiers: types.Modifiers{
				Async:     isAsync,
				Exported:  exported,
				Private:   isPrivateName(name),
				Generator: isGenerator,
			},
			ParentClass:    parentClass,
			ParentFunction: parentFunction,
			NestingDepth:   depth,
			LocalName:      name,
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	if depth < MaxNestingDepth {
		body := fieldName(node, "body")
		c.extractNestedFromBlock(body, &qualified, parentClass, depth+1)
	}
	return &sym
}

// processVariableStatement handles const/let/var declarations, emitting a
// function symbol when the initializer is an arrow/function expression and
// a variable symbol otherwise.
func (c *collector) processVariableStatement(node *sitter.Node, exported bool, parentFunction *string, depth int) {
	declKind := types.VarKindLet
	switch {
	case hasChildOfType(node, "const"):
		declKind = types.VarKindConst
	case hasChildOfType(node, "var"):
		declKind = types.VarKindVar
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := fieldName(decl, "name")
		valueNode := fieldName(decl, "value")
		if nameNode == nil {
			continue
		}
		name := c.text(nameNode)
		loc := c.loc(decl)
		qualified := name
		if parentFunction != nil {
			qualified = *parentFunction + "." + name
		}

		if valueNode != nil && (valueNode.Type() == "arrow_function" || valueNode.Type() == "function_expression" || valueNode.Type() == "generator_function") {
			if parentFunction != nil && lineSpan(loc) < MinNestedLines {
				continue
			}
			isAsync := hasChildOfType(valueNode, "async")
			params := c.extractParameters(fieldName(valueNode, "parameters"))
			returnType := c.extractReturnType(valueNode)

			sym := types.Symbol{
				ID:            hashutil.SymbolID(c.path, qualified, string(types.KindFunction), loc.StartLine),
				Name:          name,
				QualifiedName: qualified,
				Kind:          types.KindFunction,
				Signature:     declString(declKind) + " " + name + " = " + c.text(fieldName(valueNode, "parameters")),
				Location:      loc,
				Function: &types.FunctionPayload{
					Parameters: params,
					ReturnType: returnType,
					Modifiers: types.Modifiers{
						Async:    isAsync,
						Exported: exported,
						Private:  isPrivateName(name),
					},
					ParentFunction: parentFunction,
					NestingDepth:   depth,
					LocalName:      name,
				},
			}
			c.result.Symbols = append(c.result.Symbols, sym)

			if depth < MaxNestingDepth {
				body := fieldName(valueNode, "body")
				c.extractNestedFromBlock(body, &qualified, nil, depth+1)
			}
			continue
		}

		if parentFunction == nil {
			typeText := c.extractTypeAnnotation(decl)
			c.result.Symbols = append(c.result.Symbols, types.Symbol{
				ID:            hashutil.SymbolID(c.path, qualified, string(types.KindVariable), loc.StartLine),
				Name:          name,
				QualifiedName: qualified,
				Kind:          types.KindVariable,
				Signature:     declString(declKind) + " " + name,
				Location:      loc,
				Variable: &types.VariablePayload{
					DeclKind: declKind,
					Type:     typeText,
					Exported: exported,
				},
			})
		}
	}
}

func declString(k types.VariableKind) string { return string(k) }

// extractNestedFromBlock scans a statement block (function body) for
// directly-contained function declarations, arrow/function-expression
// bindings, and callback call-expressions, stopping recursion at any
// function ancestor it finds (never attributing a descendant to an outer
// ancestor when another function appears in between — the recursive call
// that processes that intermediate function owns its own descendants).
func (c *collector) extractNestedFromBlock(block *sitter.Node, parentFunction *string, parentClass *string, depth int) {
	if block == nil || depth > MaxNestingDepth {
		return
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "function_declaration", "generator_function_declaration":
				loc := c.loc(child)
				if lineSpan(loc) >= MinNestedLines {
					c.processFunctionDeclaration(child, false, parentFunction, parentClass, depth)
				}
				// do not descend further here: processFunctionDeclaration
				// already recursed into this function's own body.
			case "lexical_declaration", "variable_declaration":
				c.processVariableStatement(child, false, parentFunction, depth)
			case "call_expression":
				c.maybeExtractCallback(child, parentFunction, parentClass, depth)
				walk(child)
			default:
				walk(child)
			}
		}
	}
	walk(block)
}

func hasChildOfType(n *sitter.Node, t string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == t {
			return true
		}
	}
	return false
}

func (c *collector) extractParameters(paramsNode *sitter.Node) []types.Parameter {
	if paramsNode == nil {
		return nil
	}
	var out []types.Parameter
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		p := paramsNode.NamedChild(i)
		param := types.Parameter{}
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			pat := fieldName(p, "pattern")
			param.Name = c.text(pat)
			param.Optional = p.Type() == "optional_parameter"
			if t := fieldName(p, "type"); t != nil {
				param.Type = ptr(c.text(t))
			}
			if v := fieldName(p, "value"); v != nil {
				param.Default = ptr(c.text(v))
				param.Optional = true
			}
		case "rest_pattern":
			param.Name = c.text(p)
			param.Rest = true
		case "identifier", "object_pattern", "array_pattern":
			param.Name = c.text(p)
		case "assignment_pattern":
			param.Name = c.text(fieldName(p, "left"))
			param.Default = ptr(c.text(fieldName(p, "right")))
			param.Optional = true
		default:
			param.Name = c.text(p)
		}
		out = append(out, param)
	}
	return out
}

func (c *collector) extractReturnType(fnNode *sitter.Node) *string {
	if t := fieldName(fnNode, "return_type"); t != nil {
		return ptr(c.text(t))
	}
	return nil
}

func (c *collector) extractTypeAnnotation(declarator *sitter.Node) *string {
	if t := fieldName(declarator, "type"); t != nil {
		return ptr(c.text(t))
	}
	return nil
}

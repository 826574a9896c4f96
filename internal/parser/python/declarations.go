package python

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

// extractImports walks top-level import_statement/import_from_statement
// nodes into types.Import records.
func (c *collector) extractImports(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			c.processImportStatement(child)
		case "import_from_statement":
			c.processImportFromStatement(child)
		}
	}
}

func (c *collector) processImportStatement(node *sitter.Node) {
	loc := c.loc(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			c.result.Imports = append(c.result.Imports, types.Import{
				ModuleSpecifier: c.text(child),
				Line:            loc.StartLine,
			})
		case "aliased_import":
			var path, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "dotted_name":
					path = c.text(gc)
				case "identifier":
					alias = c.text(gc)
				}
			}
			if path != "" {
				spec := types.ImportSpecifier{Name: path}
				if alias != "" {
					spec.Alias = ptr(alias)
				}
				c.result.Imports = append(c.result.Imports, types.Import{
					ModuleSpecifier: path,
					Specifiers:      []types.ImportSpecifier{spec},
					Line:            loc.StartLine,
				})
			}
		}
	}
}

func (c *collector) processImportFromStatement(node *sitter.Node) {
	loc := c.loc(node)
	var modulePath string
	var isRelative bool
	var sawImport bool
	var specs []types.ImportSpecifier

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			isRelative = true
			var prefix, name string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "import_prefix":
					prefix = c.text(gc)
				case "dotted_name":
					name = c.text(gc)
				}
			}
			modulePath = prefix + name
		case "dotted_name":
			name := c.text(child)
			if !sawImport {
				modulePath = name
			} else {
				specs = append(specs, types.ImportSpecifier{Name: name})
			}
		case "wildcard_import":
			specs = append(specs, types.ImportSpecifier{Name: "*", Namespace: true})
		case "aliased_import":
			var name, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					if name == "" {
						name = c.text(gc)
					} else {
						alias = c.text(gc)
					}
				case "dotted_name":
					if name == "" {
						name = c.text(gc)
					}
				}
			}
			spec := types.ImportSpecifier{Name: name}
			if alias != "" {
				spec.Alias = ptr(alias)
			}
			specs = append(specs, spec)
		case "identifier":
			if sawImport {
				specs = append(specs, types.ImportSpecifier{Name: c.text(child)})
			}
		}
	}

	if modulePath == "" && !isRelative {
		return
	}
	if modulePath == "" && isRelative {
		modulePath = "."
	}
	c.result.Imports = append(c.result.Imports, types.Import{
		ModuleSpecifier: modulePath,
		Specifiers:      specs,
		Line:            loc.StartLine,
	})
}

// extractClasses walks top-level class_definition / decorated_definition
// (wrapping a class) nodes.
func (c *collector) extractClasses(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "class_definition":
			c.processClass(child, nil)
		case "decorated_definition":
			c.processDecoratedClass(child)
		}
	}
}

func (c *collector) processDecoratedClass(node *sitter.Node) {
	decorators := c.extractDecorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "class_definition" {
			c.processClass(child, decorators)
			return
		}
	}
}

func (c *collector) processClass(node *sitter.Node, decorators []string) {
	var name string
	var bases []string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = c.text(child)
			}
		case "argument_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				arg := child.Child(j)
				if arg.Type() == "identifier" || arg.Type() == "attribute" {
					bases = append(bases, c.text(arg))
				}
			}
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return
	}
	loc := c.loc(node)

	var extends *string
	var implements []string
	if len(bases) > 0 {
		extends = ptr(bases[0])
		implements = bases[1:]
	}

	var methods []string
	var properties []types.Property
	var ctorSig *string
	if bodyNode != nil {
		methods, properties, ctorSig = c.extractClassMembers(bodyNode, name)
	}

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, name, string(types.KindClass), loc.StartLine),
		Name:          name,
		QualifiedName: name,
		Kind:          types.KindClass,
		Signature:     "class " + name,
		Location:      loc,
		Class: &types.ClassPayload{
			Extends:              extends,
			Implements:           implements,
			Methods:              methods,
			Properties:           properties,
			ConstructorSignature: ctorSig,
			Decorators:           decorators,
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	for _, base := range bases {
		c.result.TypeRelationships = append(c.result.TypeRelationships, types.TypeRelationship{
			ID:             hashutil.EdgeID(c.path, name, base, string(types.RelExtends)),
			SourceID:       sym.ID,
			SourceName:     name,
			TargetName:     base,
			TargetBaseName: base,
			Kind:           types.RelExtends,
		})
	}
}

// extractClassMembers walks a class body's direct children for methods and
// class-level variable assignments.
func (c *collector) extractClassMembers(body *sitter.Node, className string) ([]string, []types.Property, *string) {
	var methods []string
	var properties []types.Property
	var ctorSig *string

	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			qualified := c.processMethod(child, nil, className)
			if qualified != "" {
				if methodSimpleName(qualified) == "__init__" {
					sig := c.text(paramsChild(child))
					ctorSig = &sig
				}
				methods = append(methods, qualified)
			}
		case "decorated_definition":
			qualified := c.processDecoratedMethod(child, className)
			if qualified != "" {
				methods = append(methods, qualified)
			}
		case "expression_statement":
			if child.ChildCount() > 0 {
				assign := child.Child(0)
				if assign.Type() == "assignment" || assign.Type() == "augmented_assignment" {
					if prop, ok := c.processClassVariable(assign); ok {
						properties = append(properties, prop)
					}
				}
			}
		}
	}
	return methods, properties, ctorSig
}

func paramsChild(fnNode *sitter.Node) *sitter.Node {
	for i := 0; i < int(fnNode.ChildCount()); i++ {
		if fnNode.Child(i).Type() == "parameters" {
			return fnNode.Child(i)
		}
	}
	return nil
}

func methodSimpleName(qualified string) string {
	if i := lastDot(qualified); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func (c *collector) processClassVariable(node *sitter.Node) (types.Property, bool) {
	var name string
	var typeStr *string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = c.text(child)
			}
		case "type":
			typeStr = ptr(c.text(child))
		}
	}
	if name == "" {
		return types.Property{}, false
	}
	return types.Property{Name: name, Type: typeStr}, true
}

// processMethod handles a method's function_definition node and returns its
// qualified name, or "" if the node had no identifiable name.
func (c *collector) processMethod(node *sitter.Node, decorators []string, className string) string {
	sym := c.processFunction(node, decorators, className, nil, 0)
	if sym == nil {
		return ""
	}
	return sym.QualifiedName
}

func (c *collector) processDecoratedMethod(node *sitter.Node, className string) string {
	decorators := c.extractDecorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "function_definition" {
			return c.processMethod(child, decorators, className)
		}
	}
	return ""
}

// extractFunctions walks top-level function_definition / decorated_definition
// (wrapping a function) nodes, recursing into each for nested functions.
func (c *collector) extractFunctions(root *sitter.Node, parentFunction *string, depth int) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			c.processFunction(child, nil, "", parentFunction, depth)
		case "decorated_definition":
			c.processDecoratedFunction(child, parentFunction, depth)
		}
	}
}

func (c *collector) processDecoratedFunction(node *sitter.Node, parentFunction *string, depth int) {
	decorators := c.extractDecorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "function_definition" {
			c.processFunction(child, decorators, "", parentFunction, depth)
			return
		}
	}
}

// processFunction extracts one function/method definition, recursing into
// its block for nested function definitions (depth-bounded, like the TS/JS
// parser: never descend past a nested function already owned by its own
// recursive call).
func (c *collector) processFunction(node *sitter.Node, decorators []string, className string, parentFunction *string, depth int) *types.Symbol {
	var name string
	var paramsNode *sitter.Node
	var returnTypeNode *sitter.Node
	var bodyNode *sitter.Node
	isAsync := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			if name == "" {
				name = c.text(child)
			}
		case "parameters":
			paramsNode = child
		case "type":
			returnTypeNode = child
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}
	loc := c.loc(node)

	qualified := name
	if className != "" {
		qualified = className + "." + name
	} else if parentFunction != nil {
		qualified = *parentFunction + "." + name
	}

	kind := types.KindFunction
	if className != "" {
		kind = types.KindMethod
	}

	isStatic := false
	for _, dec := range decorators {
		if dec == "staticmethod" || dec == "classmethod" {
			isStatic = true
		}
	}

	params := c.extractParameters(paramsNode)
	var returnType *string
	if returnTypeNode != nil {
		returnType = ptr(c.text(returnTypeNode))
	}

	signature := "def " + name + "(...)"
	if paramsNode != nil {
		signature = "def " + name + c.text(paramsNode)
	}
	if isAsync {
		signature = "async " + signature
	}

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, qualified, string(kind), loc.StartLine),
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		Signature:     signature,
		Location:      loc,
		Function: &types.FunctionPayload{
			Parameters: params,
			ReturnType: returnType,
			Modifiers: types.Modifiers{
				Async:    isAsync,
				Exported: isExported(name),
				Static:   isStatic,
				Private:  !isExported(name),
			},
			ParentFunction: parentFunction,
			NestingDepth:   depth,
			LocalName:      name,
			Decorators:     decorators,
		},
	}
	if className != "" {
		sym.Function.ParentClass = ptr(className)
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	if bodyNode != nil && depth < MaxNestingDepth {
		c.extractNestedFunctions(bodyNode, &qualified, depth+1)
	}
	return &sym
}

// extractNestedFunctions scans a function body's block for directly nested
// function definitions (and decorated wrappers around them).
func (c *collector) extractNestedFunctions(block *sitter.Node, parentFunction *string, depth int) {
	if block == nil || depth > MaxNestingDepth {
		return
	}
	for i := 0; i < int(block.ChildCount()); i++ {
		stmt := block.Child(i)
		switch stmt.Type() {
		case "function_definition":
			loc := c.loc(stmt)
			if lineSpan(loc) >= MinNestedLines {
				c.processFunction(stmt, nil, "", parentFunction, depth)
			}
		case "decorated_definition":
			decorators := c.extractDecorators(stmt)
			for j := 0; j < int(stmt.ChildCount()); j++ {
				def := stmt.Child(j)
				if def.Type() == "function_definition" {
					if lineSpan(c.loc(def)) >= MinNestedLines {
						c.processFunction(def, decorators, "", parentFunction, depth)
					}
					break
				}
			}
		}
	}
}

func (c *collector) extractDecorators(node *sitter.Node) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, c.text(gc))
			case "call":
				for k := 0; k < int(gc.ChildCount()); k++ {
					ggc := gc.Child(k)
					if ggc.Type() == "identifier" || ggc.Type() == "attribute" {
						decorators = append(decorators, c.text(ggc))
						break
					}
				}
			}
		}
	}
	return decorators
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
		case "identifier":
			param.Name = c.text(p)
		case "typed_parameter":
			for j := 0; j < int(p.ChildCount()); j++ {
				gc := p.Child(j)
				switch gc.Type() {
				case "identifier":
					param.Name = c.text(gc)
				case "type":
					param.Type = ptr(c.text(gc))
				}
			}
		case "default_parameter", "typed_default_parameter":
			for j := 0; j < int(p.ChildCount()); j++ {
				gc := p.Child(j)
				switch gc.Type() {
				case "identifier":
					if param.Name == "" {
						param.Name = c.text(gc)
					}
				case "type":
					param.Type = ptr(c.text(gc))
				}
			}
			param.Optional = true
			if p.ChildCount() > 0 {
				last := p.Child(int(p.ChildCount()) - 1)
				if last.Type() != "identifier" && last.Type() != "type" {
					param.Default = ptr(c.text(last))
				}
			}
		case "list_splat_pattern":
			param.Name = c.text(p)
			param.Rest = true
		case "dictionary_splat_pattern":
			param.Name = c.text(p)
			param.Rest = true
		default:
			param.Name = c.text(p)
		}
		if param.Name == "self" || param.Name == "cls" {
			continue
		}
		out = append(out, param)
	}
	return out
}

// extractModuleVariables walks top-level expression_statement assignments.
func (c *collector) extractModuleVariables(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "expression_statement" || child.ChildCount() == 0 {
			continue
		}
		expr := child.Child(0)
		if expr.Type() != "assignment" {
			continue
		}
		c.processModuleVariable(expr)
	}
}

func (c *collector) processModuleVariable(node *sitter.Node) {
	var name string
	var typeStr *string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = c.text(child)
			}
		case "type":
			typeStr = ptr(c.text(child))
		}
	}
	if name == "" {
		return
	}
	loc := c.loc(node)

	declKind := types.VarKindVar
	if isAllCaps(name) {
		declKind = types.VarKindConst
	}

	c.result.Symbols = append(c.result.Symbols, types.Symbol{
		ID:            hashutil.SymbolID(c.path, name, string(types.KindVariable), loc.StartLine),
		Name:          name,
		QualifiedName: name,
		Kind:          types.KindVariable,
		Signature:     name,
		Location:      loc,
		Variable: &types.VariablePayload{
			DeclKind: declKind,
			Type:     typeStr,
			Exported: isExported(name),
		},
	})
}

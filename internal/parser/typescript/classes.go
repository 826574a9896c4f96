package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/solanumlabs/codelens/internal/hashutil"
	"github.com/solanumlabs/codelens/pkg/types"
)

func (c *collector) processClass(node *sitter.Node, exported bool) {
	nameNode := fieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := c.text(nameNode)
	loc := c.loc(node)

	var extends *string
	var implements []string
	if heritage := fieldName(node, "heritage"); heritage != nil {
		extends, implements = c.parseHeritage(heritage, name)
	} else {
		// heritage clauses are direct children in this grammar, not a
		// single named field; scan for them explicitly.
		for i := 0; i < int(node.NamedChildCount()); i++ {
			ch := node.NamedChild(i)
			if ch.Type() == "class_heritage" {
				extends, implements = c.parseHeritage(ch, name)
			}
		}
	}

	abstract := hasChildOfType(node, "abstract")

	body := fieldName(node, "body")
	var methodNames []string
	var properties []types.Property
	var ctorSig *string

	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_definition":
				mNameNode := fieldName(member, "name")
				if mNameNode == nil {
					continue
				}
				mName := c.text(mNameNode)
				if mName == "constructor" {
					sig := mName + c.text(fieldName(member, "parameters"))
					ctorSig = &sig
					continue
				}
				qualified := name + "." + mName
				c.processMethod(member, mName, qualified, name)
				methodNames = append(methodNames, qualified)
			case "public_field_definition", "field_definition":
				properties = append(properties, c.parseProperty(member))
			}
		}
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
			Methods:              methodNames,
			Properties:           properties,
			ConstructorSignature: ctorSig,
			Abstract:             abstract,
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	if extends != nil {
		c.emitTypeRelationship(sym.ID, name, *extends, types.RelExtends)
	}
	for _, impl := range implements {
		c.emitTypeRelationship(sym.ID, name, impl, types.RelImplements)
	}
}

func (c *collector) parseHeritage(heritage *sitter.Node, className string) (*string, []string) {
	var extends *string
	var implements []string
	for i := 0; i < int(heritage.NamedChildCount()); i++ {
		clause := heritage.NamedChild(i)
		switch clause.Type() {
		case "extends_clause":
			for j := 0; j < int(clause.NamedChildCount()); j++ {
				t := c.text(clause.NamedChild(j))
				if extends == nil {
					extends = ptr(t)
				}
			}
		case "implements_clause":
			for j := 0; j < int(clause.NamedChildCount()); j++ {
				implements = append(implements, c.text(clause.NamedChild(j)))
			}
		}
	}
	return extends, implements
}

func (c *collector) processMethod(node *sitter.Node, name, qualified, className string) {
	loc := c.loc(node)
	isAsync := hasChildOfType(node, "async")
	isStatic := hasChildOfType(node, "static")
	isAbstract := hasChildOfType(node, "abstract")
	visibility := types.VisibilityPublic
	if hasChildOfType(node, "private") || isPrivateName(name) {
		visibility = types.VisibilityPrivate
	} else if hasChildOfType(node, "protected") {
		visibility = types.VisibilityProtected
	}

	params := c.extractParameters(fieldName(node, "parameters"))
	returnType := c.extractReturnType(node)

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, qualified, string(types.KindMethod), loc.StartLine),
		Name:          name,
		QualifiedName: qualified,
		Kind:          types.KindMethod,
		Signature:     name + c.text(fieldName(node, "parameters")),
		Location:      loc,
		Function: &types.FunctionPayload{
			Parameters: params,
			ReturnType: returnType,
			Modifiers: types.Modifiers{
				Async:     isAsync,
				Static:    isStatic,
				Abstract:  isAbstract,
				Private:   visibility == types.VisibilityPrivate,
				Protected: visibility == types.VisibilityProtected,
			},
			ParentClass:  ptr(className),
			NestingDepth: 0,
			LocalName:    name,
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	if body := fieldName(node, "body"); body != nil {
		c.extractNestedFromBlock(body, &qualified, ptr(className), 1)
	}
}

func (c *collector) parseProperty(node *sitter.Node) types.Property {
	nameNode := fieldName(node, "name")
	prop := types.Property{
		Name:     c.text(nameNode),
		Readonly: hasChildOfType(node, "readonly"),
		Static:   hasChildOfType(node, "static"),
	}
	if t := fieldName(node, "type"); t != nil {
		prop.Type = ptr(c.text(t))
	}
	if v := fieldName(node, "value"); v != nil {
		prop.Default = ptr(c.text(v))
	}
	switch {
	case hasChildOfType(node, "private"):
		prop.Visibility = types.VisibilityPrivate
	case hasChildOfType(node, "protected"):
		prop.Visibility = types.VisibilityProtected
	default:
		prop.Visibility = types.VisibilityPublic
	}
	return prop
}

func (c *collector) processInterface(node *sitter.Node, exported bool) {
	nameNode := fieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := c.text(nameNode)
	loc := c.loc(node)

	var extends []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		ch := node.NamedChild(i)
		if ch.Type() == "extends_type_clause" || ch.Type() == "extends_clause" {
			for j := 0; j < int(ch.NamedChildCount()); j++ {
				extends = append(extends, c.text(ch.NamedChild(j)))
			}
		}
	}

	var methods []string
	var properties []types.Property
	if body := fieldName(node, "body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_signature":
				mName := c.text(fieldName(member, "name"))
				methods = append(methods, name+"."+mName)
			case "property_signature":
				properties = append(properties, c.parseProperty(member))
			}
		}
	}

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, name, string(types.KindInterface), loc.StartLine),
		Name:          name,
		QualifiedName: name,
		Kind:          types.KindInterface,
		Signature:     "interface " + name,
		Location:      loc,
		Interface: &types.InterfacePayload{
			Extends:    extends,
			Properties: properties,
			Methods:    methods,
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)

	for _, ext := range extends {
		c.emitTypeRelationship(sym.ID, name, ext, types.RelExtends)
	}
}

func (c *collector) processTypeAlias(node *sitter.Node, exported bool) {
	nameNode := fieldName(node, "name")
	if nameNode == nil {
		return
	}
	name := c.text(nameNode)
	loc := c.loc(node)
	valueNode := fieldName(node, "value")

	sym := types.Symbol{
		ID:            hashutil.SymbolID(c.path, name, string(types.KindTypeAlias), loc.StartLine),
		Name:          name,
		QualifiedName: name,
		Kind:          types.KindTypeAlias,
		Signature:     "type " + name,
		Location:      loc,
		TypeAlias: &types.TypeAliasPayload{
			TypeText: c.text(valueNode),
		},
	}
	c.result.Symbols = append(c.result.Symbols, sym)
}

func (c *collector) emitTypeRelationship(sourceID, sourceName, targetText string, kind types.TypeRelationshipKind) {
	base := stripGenerics(targetText)
	c.result.TypeRelationships = append(c.result.TypeRelationships, types.TypeRelationship{
		ID:             hashutil.EdgeID(c.path, sourceName, targetText, string(kind)),
		SourceID:       sourceID,
		SourceName:     sourceName,
		TargetName:     targetText,
		TargetBaseName: base,
		Kind:           kind,
	})
}

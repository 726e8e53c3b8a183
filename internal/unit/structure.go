package unit

import (
	"strings"
	"unicode"

	"smellsense/internal/signals/utils"
	"smellsense/internal/syntax"
)

// extractor builds the Structure of one tree
type extractor struct {
	lang       syntax.Language
	tree       *syntax.Tree
	accessors  *utils.AccessorDetector
	complexity *utils.ComplexityCalculator
	fieldUse   *utils.FieldAccessAnalyzer
}

func newExtractor(tree *syntax.Tree) *extractor {
	return &extractor{
		lang:       tree.Language,
		tree:       tree,
		accessors:  utils.NewAccessorDetector(),
		complexity: utils.NewComplexityCalculator(),
		fieldUse:   utils.NewFieldAccessAnalyzer(),
	}
}

func (e *extractor) extract() *Structure {
	s := &Structure{Selves: make(map[string]bool)}
	root := e.tree.Root

	class := e.findClass(root)
	if class != nil {
		s.Class = class
		s.ClassName = nodeText(class.ChildByField("name"))
		s.HasClass = s.ClassName != "" && !IsSynthetic(s.ClassName)
	}

	switch {
	case class != nil && e.lang == syntax.LanguageGo:
		e.extractGoStruct(s, root, class)
	case class != nil:
		e.extractClassMembers(s, class)
	default:
		for _, fn := range topLevelFunctions(root) {
			s.Methods = append(s.Methods, e.method(fn, false))
		}
	}

	e.analyzeMethods(s)
	return s
}

// findClass returns the outermost class-like declaration. For Go only
// struct type declarations qualify.
func (e *extractor) findClass(root *syntax.Node) *syntax.Node {
	var found *syntax.Node
	root.Walk(func(n *syntax.Node) bool {
		if found != nil {
			return false
		}
		if n.Is(syntax.CatClass) {
			if e.lang == syntax.LanguageGo {
				if t := n.ChildByField("type"); t == nil || t.Kind != "struct_type" {
					return false
				}
			}
			found = n
			return false
		}
		return true
	})
	return found
}

// topLevelFunctions collects functions that are not nested in another one
func topLevelFunctions(root *syntax.Node) []*syntax.Node {
	var result []*syntax.Node
	root.Walk(func(n *syntax.Node) bool {
		if n.Is(syntax.CatMethod, syntax.CatConstructor) {
			result = append(result, n)
			return false
		}
		return true
	})
	return result
}

func (e *extractor) extractClassMembers(s *Structure, class *syntax.Node) {
	body := class.ChildByField("body")
	if body == nil {
		body = class.FirstChild(syntax.CatClassBody, syntax.CatBlock)
	}
	if body == nil {
		return
	}

	for _, member := range body.NamedChildren() {
		decl := member
		if member.Kind == "decorated_definition" {
			decl = member.ChildByField("definition")
		}
		switch {
		case decl.Is(syntax.CatMethod, syntax.CatConstructor):
			m := e.method(decl, true)
			if member != decl && decoratedWith(member, "staticmethod", "classmethod") {
				m.IsStatic = true
			}
			s.Methods = append(s.Methods, m)
		case decl.Is(syntax.CatField):
			s.Fields = append(s.Fields, e.fields(decl)...)
		case e.lang == syntax.LanguagePython && decl.Is(syntax.CatExprStmt):
			if f := e.pythonClassAttribute(decl); f != nil {
				s.Fields = append(s.Fields, f)
			}
		}
	}

	switch e.lang {
	case syntax.LanguagePython:
		s.Selves["self"] = true
		s.Selves["cls"] = true
		e.addAssignedFields(s, func(n *syntax.Node) bool {
			return n.Is(syntax.CatIdentifier) && n.Text == "self"
		})
	case syntax.LanguageJavaScript, syntax.LanguageTypeScript:
		e.addAssignedFields(s, func(n *syntax.Node) bool {
			return n.Is(syntax.CatThis)
		})
	}
}

func (e *extractor) extractGoStruct(s *Structure, root, class *syntax.Node) {
	if list := class.ChildByField("type").FirstChild(syntax.CatClassBody); list != nil {
		for _, decl := range list.NamedChildren() {
			if decl.Is(syntax.CatField) {
				s.Fields = append(s.Fields, e.fields(decl)...)
			}
		}
	}

	for _, fn := range topLevelFunctions(root) {
		receiver := fn.ChildByField("receiver")
		if receiver == nil {
			m := e.method(fn, false)
			m.IsStatic = true
			m.IsConstructor = m.Name == "New"+s.ClassName
			s.Methods = append(s.Methods, m)
			continue
		}
		param := receiver.FirstChild(syntax.CatParameter)
		if param == nil || goTypeName(nodeText(param.ChildByField("type"))) != s.ClassName {
			continue
		}
		if name := param.ChildByField("name"); name != nil {
			s.Selves[name.Text] = true
		}
		s.Methods = append(s.Methods, e.method(fn, true))
	}
}

// method builds a Method from a function-like node
func (e *extractor) method(n *syntax.Node, inClass bool) *Method {
	name := nodeText(n.ChildByField("name"))
	m := &Method{
		Name:          name,
		Node:          n,
		Body:          n.ChildByField("body"),
		IsConstructor: n.Is(syntax.CatConstructor),
		Synthetic:     IsSynthetic(name),
		Line:          n.Line,
		EndLine:       n.EndLine,
		IsStatic:      n.HasKeyword("static"),
	}
	switch e.lang {
	case syntax.LanguagePython:
		m.IsConstructor = name == "__init__"
	case syntax.LanguageJavaScript, syntax.LanguageTypeScript:
		m.IsConstructor = name == "constructor"
	}
	m.Visibility = e.visibility(n, name)
	m.Params = e.params(n.ChildByField("parameters"), inClass)
	return m
}

func (e *extractor) params(list *syntax.Node, inClass bool) []Param {
	if list == nil {
		return nil
	}
	var result []Param
	for _, p := range list.NamedChildren() {
		if p.Is(syntax.CatComment) || p.Kind == "accessibility_modifier" {
			continue
		}
		typ := syntax.CollapseSpace(nodeText(p.ChildByField("type")))
		names := p.ChildrenByField("name")
		if e.lang == syntax.LanguageGo && len(names) > 1 {
			for _, name := range names {
				result = append(result, Param{Name: name.Text, Type: typ})
			}
			continue
		}
		result = append(result, Param{Name: paramName(p), Type: strings.TrimPrefix(typ, ": ")})
	}
	if e.lang == syntax.LanguagePython && inClass && len(result) > 0 {
		if first := result[0].Name; first == "self" || first == "cls" {
			result = result[1:]
		}
	}
	return result
}

func paramName(p *syntax.Node) string {
	if p.Is(syntax.CatIdentifier) {
		return p.Text
	}
	if name := p.ChildByField("name", "pattern", "left"); name != nil {
		return name.Text
	}
	var first string
	p.Walk(func(n *syntax.Node) bool {
		if first != "" || n.Field == "type" || n.Field == "value" {
			return false
		}
		if n.Is(syntax.CatIdentifier) {
			first = n.Text
			return false
		}
		return true
	})
	return first
}

// fields expands a field declaration into one Field per declared name
func (e *extractor) fields(decl *syntax.Node) []*Field {
	typ := syntax.CollapseSpace(strings.TrimPrefix(nodeText(decl.ChildByField("type")), ": "))
	static := decl.HasKeyword("static")
	final := decl.HasKeyword("final") || decl.HasKeyword("readonly")

	var names []*syntax.Node
	switch e.lang {
	case syntax.LanguageJava:
		for _, d := range decl.ChildrenByField("declarator") {
			if name := d.ChildByField("name"); name != nil {
				names = append(names, name)
			}
		}
	case syntax.LanguageGo:
		names = decl.ChildrenByField("name")
		if len(names) == 0 {
			// embedded field
			return []*Field{{
				Name:       goTypeName(typ),
				Type:       typ,
				Visibility: goVisibility(goTypeName(typ)),
				Line:       decl.Line,
				Node:       decl,
			}}
		}
	default:
		if name := decl.ChildByField("property", "name"); name != nil {
			names = append(names, name)
		}
	}

	result := make([]*Field, 0, len(names))
	for _, name := range names {
		result = append(result, &Field{
			Name:       name.Text,
			Type:       typ,
			Visibility: e.visibility(decl, name.Text),
			IsStatic:   static,
			IsFinal:    final,
			Line:       decl.Line,
			Node:       decl,
		})
	}
	return result
}

// pythonClassAttribute turns a class-level `name = value` into a field
func (e *extractor) pythonClassAttribute(stmt *syntax.Node) *Field {
	assign := utils.StatementExpression(stmt)
	if !assign.Is(syntax.CatAssign) {
		return nil
	}
	left := assign.ChildByField("left")
	if !left.Is(syntax.CatIdentifier) {
		return nil
	}
	return &Field{
		Name:       left.Text,
		Type:       inferredType(assign.ChildByField("right"), nil),
		Visibility: e.visibility(stmt, left.Text),
		IsStatic:   true,
		Line:       stmt.Line,
		Node:       stmt,
	}
}

// addAssignedFields records `self.x = ...` / `this.x = ...` assignments in
// methods as fields, in order of first assignment.
func (e *extractor) addAssignedFields(s *Structure, isSelf func(*syntax.Node) bool) {
	known := s.FieldNames()
	for _, m := range s.Methods {
		paramTypes := make(map[string]string, len(m.Params))
		for _, p := range m.Params {
			paramTypes[p.Name] = p.Type
		}
		m.Body.Walk(func(n *syntax.Node) bool {
			if n.Is(syntax.CatMethod, syntax.CatClass) {
				return false
			}
			if !n.Is(syntax.CatAssign) {
				return true
			}
			left := syntax.Unwrap(n.ChildByField("left"))
			if !left.Is(syntax.CatMember) || !isSelf(syntax.Unwrap(syntax.Receiver(left))) {
				return true
			}
			name := syntax.MemberName(left)
			if name == "" || known[name] {
				return true
			}
			known[name] = true
			s.Fields = append(s.Fields, &Field{
				Name:       name,
				Type:       inferredType(n.ChildByField("right"), paramTypes),
				Visibility: e.visibility(n, name),
				Line:       n.Line,
				Node:       n,
			})
			return true
		})
	}
}

// inferredType guesses a field type from its initializer: a constructor
// call names the class, a parameter carries its annotation.
func inferredType(value *syntax.Node, paramTypes map[string]string) string {
	value = syntax.Unwrap(value)
	switch {
	case value.Is(syntax.CatCall, syntax.CatNew):
		callee := value.ChildByField("function", "constructor", "type")
		if callee != nil {
			name := callee.Text
			if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
				name = name[idx+1:]
			}
			if name != "" && unicode.IsUpper([]rune(name)[0]) {
				return name
			}
		}
	case value.Is(syntax.CatIdentifier):
		return paramTypes[value.Text]
	}
	return ""
}

func (e *extractor) visibility(n *syntax.Node, name string) Visibility {
	switch e.lang {
	case syntax.LanguageJava:
		switch {
		case n.HasKeyword("public"):
			return Public
		case n.HasKeyword("private"):
			return Private
		case n.HasKeyword("protected"):
			return Protected
		}
		return Package
	case syntax.LanguagePython:
		if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
			return Public
		}
		if strings.HasPrefix(name, "_") {
			return Private
		}
		return Public
	case syntax.LanguageGo:
		return goVisibility(name)
	default:
		if strings.HasPrefix(name, "#") {
			return Private
		}
		for _, child := range n.Children {
			if child.Kind == "accessibility_modifier" {
				return Visibility(strings.TrimSpace(child.Text))
			}
		}
		return Public
	}
}

// analyzeMethods fills the derived per-method data once fields are known
func (e *extractor) analyzeMethods(s *Structure) {
	fields := s.FieldNames()
	bare := e.lang == syntax.LanguageJava
	for _, m := range s.Methods {
		m.Locals = localNames(m.Body, e.lang)
		shadowed := m.ParamNames()
		for _, local := range m.Locals {
			shadowed[local] = true
		}
		m.CodeLines = e.codeLines(m.Node)
		m.Complexity = e.complexity.Calculate(m.Node)
		m.AccessedFields = e.fieldUse.FindAccessedFields(m.Body, fields, s.Selves, shadowed, bare)
		if !m.IsConstructor && !m.Synthetic {
			m.Accessor, m.AccessorField = e.accessors.Classify(m.Name, len(m.Params), m.Body, fields, s.Selves)
		}
	}
}

// codeLines counts distinct lines of n that carry a token other than a brace
func (e *extractor) codeLines(n *syntax.Node) int {
	lines := make(map[int]bool)
	for _, tok := range e.tree.TokensIn(n) {
		if tok.Value == "{" || tok.Value == "}" {
			continue
		}
		lines[tok.Line] = true
	}
	return len(lines)
}

// localNames returns the variables declared in a body, in order. Python has
// no declarations, so plain assignments count there.
func localNames(body *syntax.Node, lang syntax.Language) []string {
	if body == nil {
		return nil
	}
	seen := make(map[string]bool)
	var result []string
	add := func(n *syntax.Node) {
		if n.Is(syntax.CatIdentifier) && !seen[n.Text] {
			seen[n.Text] = true
			result = append(result, n.Text)
		}
	}
	body.Walk(func(n *syntax.Node) bool {
		switch n.Category {
		case syntax.CatMethod, syntax.CatClass, syntax.CatLambda:
			return n == body
		case syntax.CatDeclarator:
			add(n.ChildByField("name"))
		case syntax.CatLocalVar:
			if left := n.ChildByField("left"); left != nil {
				for _, id := range left.NamedChildren() {
					add(id)
				}
			}
			for _, spec := range n.NamedChildren() {
				if spec.Kind == "var_spec" {
					for _, id := range spec.ChildrenByField("name") {
						add(id)
					}
				}
			}
		case syntax.CatAssign:
			if lang == syntax.LanguagePython {
				add(n.ChildByField("left"))
			}
		case syntax.CatLoop:
			add(n.ChildByField("left", "name"))
		}
		return true
	})
	return result
}

func decoratedWith(n *syntax.Node, names ...string) bool {
	for _, child := range n.Children {
		if !child.Is(syntax.CatAnnotation) {
			continue
		}
		text := strings.TrimPrefix(strings.TrimSpace(child.Text), "@")
		for _, name := range names {
			if text == name {
				return true
			}
		}
	}
	return false
}

// goTypeName strips pointers, packages and type arguments
func goTypeName(typ string) string {
	typ = strings.TrimLeft(strings.TrimSpace(typ), "*")
	if idx := strings.IndexByte(typ, '['); idx >= 0 {
		typ = typ[:idx]
	}
	if idx := strings.LastIndexByte(typ, '.'); idx >= 0 {
		typ = typ[idx+1:]
	}
	return typ
}

func goVisibility(name string) Visibility {
	if name != "" && unicode.IsUpper([]rune(name)[0]) {
		return Public
	}
	return Private
}

func nodeText(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	return n.Text
}

package parse

import (
	"unsafe"

	"smellsense/internal/syntax"

	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// JavaProfile maps the tree-sitter-java grammar
func JavaProfile() *Profile {
	return &Profile{
		Language:      syntax.LanguageJava,
		Extensions:    []string{".java"},
		grammar:       func() unsafe.Pointer { return java.Language() },
		atomic:        defaultAtomic,
		preferWrapped: javaHasMembers,
		Wrappers: []Wrapper{
			{Prefix: "class __SmellUnit__ {\n", Suffix: "\n}"},
			{Prefix: "class __SmellUnit__ {\nvoid __smellUnitBody() {\n", Suffix: "\n}\n}"},
		},
		categories: map[string]syntax.Category{
			"program":                         syntax.CatRoot,
			"class_declaration":               syntax.CatClass,
			"interface_declaration":           syntax.CatClass,
			"enum_declaration":                syntax.CatClass,
			"record_declaration":              syntax.CatClass,
			"class_body":                      syntax.CatClassBody,
			"interface_body":                  syntax.CatClassBody,
			"enum_body":                       syntax.CatClassBody,
			"method_declaration":              syntax.CatMethod,
			"constructor_declaration":         syntax.CatConstructor,
			"compact_constructor_declaration": syntax.CatConstructor,
			"field_declaration":               syntax.CatField,
			"constant_declaration":            syntax.CatField,
			"formal_parameters":               syntax.CatParameters,
			"formal_parameter":                syntax.CatParameter,
			"spread_parameter":                syntax.CatParameter,
			"variable_declarator":             syntax.CatDeclarator,
			"modifiers":                       syntax.CatModifiers,
			"annotation":                      syntax.CatAnnotation,
			"marker_annotation":               syntax.CatAnnotation,
			"block":                           syntax.CatBlock,
			"constructor_body":                syntax.CatBlock,
			"switch_block_statement_group":    syntax.CatBlock,
			"if_statement":                    syntax.CatIf,
			"for_statement":                   syntax.CatLoop,
			"enhanced_for_statement":          syntax.CatLoop,
			"while_statement":                 syntax.CatLoop,
			"do_statement":                    syntax.CatLoop,
			"try_statement":                   syntax.CatTry,
			"try_with_resources_statement":    syntax.CatTry,
			"catch_clause":                    syntax.CatCatch,
			"switch_label":                    syntax.CatCase,
			"return_statement":                syntax.CatReturn,
			"throw_statement":                 syntax.CatThrow,
			"break_statement":                 syntax.CatBreak,
			"continue_statement":              syntax.CatContinue,
			"expression_statement":            syntax.CatExprStmt,
			"local_variable_declaration":      syntax.CatLocalVar,
			"method_invocation":               syntax.CatCall,
			"field_access":                    syntax.CatMember,
			"object_creation_expression":      syntax.CatNew,
			"assignment_expression":           syntax.CatAssign,
			"unary_expression":                syntax.CatUnary,
			"update_expression":               syntax.CatUnary,
			"binary_expression":               syntax.CatBinary,
			"ternary_expression":              syntax.CatTernary,
			"parenthesized_expression":        syntax.CatParen,
			"lambda_expression":               syntax.CatLambda,
			"decimal_integer_literal":         syntax.CatNumber,
			"hex_integer_literal":             syntax.CatNumber,
			"octal_integer_literal":           syntax.CatNumber,
			"binary_integer_literal":          syntax.CatNumber,
			"decimal_floating_point_literal":  syntax.CatNumber,
			"hex_floating_point_literal":      syntax.CatNumber,
			"string_literal":                  syntax.CatString,
			"character_literal":               syntax.CatString,
			"text_block":                      syntax.CatString,
			"true":                            syntax.CatTrue,
			"false":                           syntax.CatFalse,
			"null_literal":                    syntax.CatNull,
			"identifier":                      syntax.CatIdentifier,
			"type_identifier":                 syntax.CatType,
			"generic_type":                    syntax.CatGenericType,
			"this":                            syntax.CatThis,
			"line_comment":                    syntax.CatComment,
			"block_comment":                   syntax.CatComment,
		},
	}
}

// javaHasMembers spots top-level methods and modifier-qualified variables,
// which the grammar accepts in a program but which are really members of an
// omitted class.
func javaHasMembers(root *syntax.Node) bool {
	for _, child := range root.Children {
		if child.Is(syntax.CatMethod, syntax.CatConstructor) {
			return true
		}
		if child.Is(syntax.CatLocalVar) {
			for _, kw := range []string{"public", "private", "protected", "static"} {
				if child.HasKeyword(kw) {
					return true
				}
			}
		}
	}
	return false
}

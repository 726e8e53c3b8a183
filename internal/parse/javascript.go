package parse

import (
	"unsafe"

	"smellsense/internal/syntax"

	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ecmaCategories is shared by the JavaScript and TypeScript grammars
func ecmaCategories() map[string]syntax.Category {
	return map[string]syntax.Category{
		"program":                         syntax.CatRoot,
		"class_declaration":               syntax.CatClass,
		"abstract_class_declaration":      syntax.CatClass,
		"class":                           syntax.CatClass,
		"class_body":                      syntax.CatClassBody,
		"method_definition":               syntax.CatMethod,
		"function_declaration":            syntax.CatMethod,
		"field_definition":                syntax.CatField,
		"public_field_definition":         syntax.CatField,
		"formal_parameters":               syntax.CatParameters,
		"required_parameter":              syntax.CatParameter,
		"optional_parameter":              syntax.CatParameter,
		"variable_declarator":             syntax.CatDeclarator,
		"decorator":                       syntax.CatAnnotation,
		"statement_block":                 syntax.CatBlock,
		"if_statement":                    syntax.CatIf,
		"else_clause":                     syntax.CatElse,
		"for_statement":                   syntax.CatLoop,
		"for_in_statement":                syntax.CatLoop,
		"while_statement":                 syntax.CatLoop,
		"do_statement":                    syntax.CatLoop,
		"try_statement":                   syntax.CatTry,
		"catch_clause":                    syntax.CatCatch,
		"switch_case":                     syntax.CatCase,
		"return_statement":                syntax.CatReturn,
		"throw_statement":                 syntax.CatThrow,
		"break_statement":                 syntax.CatBreak,
		"continue_statement":              syntax.CatContinue,
		"expression_statement":            syntax.CatExprStmt,
		"lexical_declaration":             syntax.CatLocalVar,
		"variable_declaration":            syntax.CatLocalVar,
		"call_expression":                 syntax.CatCall,
		"member_expression":               syntax.CatMember,
		"new_expression":                  syntax.CatNew,
		"assignment_expression":           syntax.CatAssign,
		"augmented_assignment_expression": syntax.CatAssign,
		"unary_expression":                syntax.CatUnary,
		"binary_expression":               syntax.CatBinary,
		"ternary_expression":              syntax.CatTernary,
		"parenthesized_expression":        syntax.CatParen,
		"arrow_function":                  syntax.CatLambda,
		"number":                          syntax.CatNumber,
		"string":                          syntax.CatString,
		"template_string":                 syntax.CatString,
		"true":                            syntax.CatTrue,
		"false":                           syntax.CatFalse,
		"null":                            syntax.CatNull,
		"undefined":                       syntax.CatNull,
		"identifier":                      syntax.CatIdentifier,
		"property_identifier":             syntax.CatIdentifier,
		"private_property_identifier":     syntax.CatIdentifier,
		"shorthand_property_identifier":   syntax.CatIdentifier,
		"type_identifier":                 syntax.CatType,
		"generic_type":                    syntax.CatGenericType,
		"this":                            syntax.CatThis,
		"comment":                         syntax.CatComment,
	}
}

// JavaScriptProfile maps the tree-sitter-javascript grammar
func JavaScriptProfile() *Profile {
	return &Profile{
		Language:   syntax.LanguageJavaScript,
		Extensions: []string{".js", ".jsx", ".mjs"},
		grammar:    func() unsafe.Pointer { return javascript.Language() },
		atomic:     defaultAtomic,
		categories: ecmaCategories(),
	}
}

// TypeScriptProfile maps the tree-sitter-typescript grammar
func TypeScriptProfile() *Profile {
	return &Profile{
		Language:   syntax.LanguageTypeScript,
		Extensions: []string{".ts", ".tsx"},
		grammar:    func() unsafe.Pointer { return typescript.LanguageTypescript() },
		atomic:     defaultAtomic,
		categories: ecmaCategories(),
	}
}

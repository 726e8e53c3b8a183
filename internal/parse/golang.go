package parse

import (
	"unsafe"

	"smellsense/internal/syntax"

	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// GoProfile maps the tree-sitter-go grammar. A struct type_spec plays the
// role of a class; its methods are declared at file level.
func GoProfile() *Profile {
	return &Profile{
		Language:   syntax.LanguageGo,
		Extensions: []string{".go"},
		grammar:    func() unsafe.Pointer { return golang.Language() },
		atomic:     defaultAtomic,
		Wrappers: []Wrapper{
			{Prefix: "package smellunit\nfunc __smellUnitBody() {\n", Suffix: "\n}"},
		},
		categories: map[string]syntax.Category{
			"source_file":                    syntax.CatRoot,
			"type_spec":                      syntax.CatClass,
			"field_declaration_list":         syntax.CatClassBody,
			"function_declaration":           syntax.CatMethod,
			"method_declaration":             syntax.CatMethod,
			"field_declaration":              syntax.CatField,
			"parameter_list":                 syntax.CatParameters,
			"parameter_declaration":          syntax.CatParameter,
			"variadic_parameter_declaration": syntax.CatParameter,
			"block":                          syntax.CatBlock,
			"statement_list":                 syntax.CatBlock,
			"if_statement":                   syntax.CatIf,
			"for_statement":                  syntax.CatLoop,
			"expression_case":                syntax.CatCase,
			"type_case":                      syntax.CatCase,
			"return_statement":               syntax.CatReturn,
			"break_statement":                syntax.CatBreak,
			"continue_statement":             syntax.CatContinue,
			"expression_statement":           syntax.CatExprStmt,
			"short_var_declaration":          syntax.CatLocalVar,
			"var_declaration":                syntax.CatLocalVar,
			"call_expression":                syntax.CatCall,
			"selector_expression":            syntax.CatMember,
			"composite_literal":              syntax.CatNew,
			"assignment_statement":           syntax.CatAssign,
			"unary_expression":               syntax.CatUnary,
			"binary_expression":              syntax.CatBinary,
			"parenthesized_expression":       syntax.CatParen,
			"func_literal":                   syntax.CatLambda,
			"int_literal":                    syntax.CatNumber,
			"float_literal":                  syntax.CatNumber,
			"imaginary_literal":              syntax.CatNumber,
			"interpreted_string_literal":     syntax.CatString,
			"raw_string_literal":             syntax.CatString,
			"rune_literal":                   syntax.CatString,
			"true":                           syntax.CatTrue,
			"false":                          syntax.CatFalse,
			"nil":                            syntax.CatNull,
			"identifier":                     syntax.CatIdentifier,
			"field_identifier":               syntax.CatIdentifier,
			"type_identifier":                syntax.CatType,
			"generic_type":                   syntax.CatGenericType,
			"comment":                        syntax.CatComment,
		},
	}
}

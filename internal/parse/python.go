package parse

import (
	"unsafe"

	"smellsense/internal/syntax"

	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonProfile maps the tree-sitter-python grammar
func PythonProfile() *Profile {
	return &Profile{
		Language:   syntax.LanguagePython,
		Extensions: []string{".py", ".pyw"},
		grammar:    func() unsafe.Pointer { return python.Language() },
		atomic:     defaultAtomic,
		categories: map[string]syntax.Category{
			"module":                   syntax.CatRoot,
			"class_definition":         syntax.CatClass,
			"function_definition":      syntax.CatMethod,
			"parameters":               syntax.CatParameters,
			"typed_parameter":          syntax.CatParameter,
			"default_parameter":        syntax.CatParameter,
			"typed_default_parameter":  syntax.CatParameter,
			"list_splat_pattern":       syntax.CatParameter,
			"dictionary_splat_pattern": syntax.CatParameter,
			"decorator":                syntax.CatAnnotation,
			"block":                    syntax.CatBlock,
			"if_statement":             syntax.CatIf,
			"elif_clause":              syntax.CatIf,
			"else_clause":              syntax.CatElse,
			"for_statement":            syntax.CatLoop,
			"while_statement":          syntax.CatLoop,
			"try_statement":            syntax.CatTry,
			"except_clause":            syntax.CatCatch,
			"case_clause":              syntax.CatCase,
			"return_statement":         syntax.CatReturn,
			"raise_statement":          syntax.CatThrow,
			"break_statement":          syntax.CatBreak,
			"continue_statement":       syntax.CatContinue,
			"pass_statement":           syntax.CatPass,
			"expression_statement":     syntax.CatExprStmt,
			"global_statement":         syntax.CatGlobal,
			"call":                     syntax.CatCall,
			"attribute":                syntax.CatMember,
			"assignment":               syntax.CatAssign,
			"augmented_assignment":     syntax.CatAssign,
			"not_operator":             syntax.CatUnary,
			"unary_operator":           syntax.CatUnary,
			"binary_operator":          syntax.CatBinary,
			"boolean_operator":         syntax.CatBinary,
			"comparison_operator":      syntax.CatBinary,
			"conditional_expression":   syntax.CatTernary,
			"parenthesized_expression": syntax.CatParen,
			"lambda":                   syntax.CatLambda,
			"integer":                  syntax.CatNumber,
			"float":                    syntax.CatNumber,
			"string":                   syntax.CatString,
			"concatenated_string":      syntax.CatString,
			"true":                     syntax.CatTrue,
			"false":                    syntax.CatFalse,
			"none":                     syntax.CatNull,
			"identifier":               syntax.CatIdentifier,
			"generic_type":             syntax.CatGenericType,
			"comment":                  syntax.CatComment,
		},
	}
}

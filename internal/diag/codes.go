package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexUnterminatedInterp       Code = 1004
	LexBadNumber                Code = 1005
	LexBadSearchPath            Code = 1006

	// Синтаксические
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectExpression  Code = 2002
	SynExpectSemicolon   Code = 2003
	SynExpectIdentifier  Code = 2004
	SynExpectAssign      Code = 2005
	SynExpectColon       Code = 2006
	SynExpectIn          Code = 2007
	SynExpectThen        Code = 2008
	SynExpectElse        Code = 2009
	SynUnclosedParen     Code = 2010
	SynUnclosedBrace     Code = 2011
	SynUnclosedBracket   Code = 2012
	SynUnclosedString    Code = 2013
	SynUnclosedInterp    Code = 2014
	SynTrailingInput     Code = 2015
	SynNestingTooDeep    Code = 2016
	SynBadPattern        Code = 2017
	SynExpectAttrName    Code = 2018
	SynTooManyDiagnostic Code = 2019

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Проект / граф зависимостей
	ProjInfo              Code = 5000
	ProjMissingDependency Code = 5001
	ProjSelfImport        Code = 5002
	ProjImportCycle       Code = 5003

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexUnterminatedInterp:       "Unterminated interpolation",
	LexBadNumber:                "Malformed number",
	LexBadSearchPath:            "Malformed search path",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynExpectExpression:         "Expected expression",
	SynExpectSemicolon:          "Expected ';'",
	SynExpectIdentifier:         "Expected identifier",
	SynExpectAssign:             "Expected '='",
	SynExpectColon:              "Expected ':'",
	SynExpectIn:                 "Expected 'in'",
	SynExpectThen:               "Expected 'then'",
	SynExpectElse:               "Expected 'else'",
	SynUnclosedParen:            "Unclosed parenthesis",
	SynUnclosedBrace:            "Unclosed brace",
	SynUnclosedBracket:          "Unclosed bracket",
	SynUnclosedString:           "Unclosed string",
	SynUnclosedInterp:           "Unclosed interpolation",
	SynTrailingInput:            "Unexpected input after expression",
	SynNestingTooDeep:           "Expression nesting too deep",
	SynBadPattern:               "Malformed lambda pattern",
	SynExpectAttrName:           "Expected attribute name",
	SynTooManyDiagnostic:        "Too many diagnostics",
	IOLoadFileError:             "I/O load file error",
	ProjInfo:                    "Project information",
	ProjMissingDependency:       "Missing dependency",
	ProjSelfImport:              "File imports itself",
	ProjImportCycle:             "Import cycle detected",
	ObsInfo:                     "Observability information",
	ObsTimings:                  "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

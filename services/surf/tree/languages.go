// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Language identifies a supported grammar.
type Language string

// Supported languages.
const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
)

// ErrUnsupportedLanguage is returned for languages without a registered grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// grammars maps languages to their tree-sitter bindings.
var grammars = map[Language]*sitter.Language{
	LangGo:         golang.GetLanguage(),
	LangJavaScript: javascript.GetLanguage(),
	LangHTML:       html.GetLanguage(),
	LangCSS:        css.GetLanguage(),
}

// extensions maps file extensions to languages.
var extensions = map[string]Language{
	".go":   LangGo,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".html": LangHTML,
	".htm":  LangHTML,
	".css":  LangCSS,
}

// Grammar returns the tree-sitter grammar for a language.
//
// Outputs:
//   - *sitter.Language: The grammar binding.
//   - error: ErrUnsupportedLanguage if no grammar is registered.
func Grammar(lang Language) (*sitter.Language, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return g, nil
}

// LanguageForPath derives the language from a file path's extension.
//
// Outputs:
//   - Language: The detected language.
//   - error: ErrUnsupportedLanguage if the extension is unknown.
func LanguageForPath(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedLanguage, ext)
	}
	return lang, nil
}

// SupportedLanguages returns every language with a registered grammar.
func SupportedLanguages() []Language {
	langs := make([]Language, 0, len(grammars))
	for l := range grammars {
		langs = append(langs, l)
	}
	return langs
}

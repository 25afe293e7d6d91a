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
	sitter "github.com/smacker/go-tree-sitter"
)

// Node types involved in HTML language injection.
const (
	htmlNodeScriptElement = "script_element"
	htmlNodeStyleElement  = "style_element"
	htmlNodeRawText       = "raw_text"
)

// injectionRegion is one embedded-language region inside a host tree.
type injectionRegion struct {
	lang Language
	span sitter.Range
}

// scanInjections finds embedded-language regions in a host tree.
//
// Only HTML hosts carry injections today: <script> bodies parse as
// JavaScript and <style> bodies as CSS. Other hosts return nil.
func scanInjections(host *parsedTree) []injectionRegion {
	if host.lang != LangHTML || host.tree == nil {
		return nil
	}

	var regions []injectionRegion
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case htmlNodeScriptElement:
			if span, ok := rawTextSpan(n); ok {
				regions = append(regions, injectionRegion{lang: LangJavaScript, span: span})
			}
			return
		case htmlNodeStyleElement:
			if span, ok := rawTextSpan(n); ok {
				regions = append(regions, injectionRegion{lang: LangCSS, span: span})
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(host.tree.RootNode())

	return regions
}

// rawTextSpan returns the span of an element's raw_text child.
func rawTextSpan(element *sitter.Node) (sitter.Range, bool) {
	for i := 0; i < int(element.ChildCount()); i++ {
		c := element.Child(i)
		if c.Type() != htmlNodeRawText {
			continue
		}
		return sitter.Range{
			StartPoint: c.StartPoint(),
			EndPoint:   c.EndPoint(),
			StartByte:  c.StartByte(),
			EndByte:    c.EndByte(),
		}, true
	}
	return sitter.Range{}, false
}

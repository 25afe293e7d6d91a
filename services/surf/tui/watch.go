// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// waitForChange blocks on the watcher until the backing file is
// written or replaced, then emits fileChangedMsg into the event loop.
//
// Editors that save via rename (vim, most IDEs) produce Create or
// Rename events rather than Write, so all three count as a change.
func waitForChange(watcher *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					// Re-add the path after a rename; the old watch
					// follows the renamed inode.
					if event.Op&fsnotify.Rename != 0 {
						_ = watcher.Add(event.Name)
					}
					return fileChangedMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// readFile reads the backing file for a reload.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

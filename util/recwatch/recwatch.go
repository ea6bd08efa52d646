// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package recwatch provides file watching events via fsnotify.
package recwatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/purpleidea/genson/util/errwrap"

	"github.com/fsnotify/fsnotify"
)

// Event represents a watcher event. These can include errors.
type Event struct {
	Error error
	Body  *fsnotify.Event
}

// RecWatcher is the struct for the file watcher. A file is watched through its
// parent directory, so that it keeps being followed when an editor replaces it
// with a rename. A directory is specified with a trailing slash, and gets an
// event for anything below it. Run Init() on it.
type RecWatcher struct {
	// Path is the path that we're watching.
	Path string

	// Recurse specifies if we should watch the subdirectories of a
	// directory as well.
	Recurse bool

	Debug bool
	Logf  func(format string, v ...interface{})

	isDir    bool   // computed isDir
	safename string // safe path
	watcher  *fsnotify.Watcher
	events   chan Event // one channel for events and err...
	closed   bool       // is the events channel closed?
	mutex    sync.Mutex // lock guarding the channel closing
	wg       sync.WaitGroup
	exit     chan struct{}
}

// NewRecWatcher creates an initializes a new watcher.
func NewRecWatcher(path string, recurse bool) (*RecWatcher, error) {
	obj := &RecWatcher{
		Path:    path,
		Recurse: recurse,
	}
	return obj, obj.Init()
}

// Init starts the file watcher.
func (obj *RecWatcher) Init() error {
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	obj.events = make(chan Event)
	obj.exit = make(chan struct{})
	obj.isDir = strings.HasSuffix(obj.Path, "/") // dirs have trailing slashes
	obj.safename = filepath.Clean(obj.Path)      // no trailing slash

	var err error
	obj.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return errwrap.Wrapf(err, "can't create watcher")
	}

	dir := filepath.Dir(obj.safename)
	if obj.isDir {
		dir = obj.safename
	}
	if obj.Debug {
		obj.Logf("watching: %s", dir)
	}
	if err := obj.watcher.Add(dir); err != nil {
		obj.watcher.Close()
		return errwrap.Wrapf(err, "can't watch %s", dir)
	}
	if obj.isDir {
		if err := obj.addSubFolders(obj.safename); err != nil {
			obj.watcher.Close()
			return err
		}
	}

	obj.wg.Add(1)
	go func() {
		defer obj.wg.Done()
		if err := obj.Watch(); err != nil {
			// we need this mutex, because if we Init and then Close
			// immediately, this can send after closed which panics!
			obj.mutex.Lock()
			if !obj.closed {
				select {
				case obj.events <- Event{Error: err}:
				case <-obj.exit:
				}
			}
			obj.mutex.Unlock()
		}
	}()
	return nil
}

// Close shuts down the watcher.
func (obj *RecWatcher) Close() error {
	close(obj.exit) // send exit signal
	obj.wg.Wait()
	err := obj.watcher.Close()
	obj.mutex.Lock()
	obj.closed = true
	close(obj.events)
	obj.mutex.Unlock()
	return err
}

// Events returns a channel of events. These include events for errors.
func (obj *RecWatcher) Events() chan Event { return obj.events }

// Watch is the primary listener for this watcher and it outputs events.
func (obj *RecWatcher) Watch() error {
	if obj.watcher == nil {
		return fmt.Errorf("the watcher is not initialized")
	}
	for {
		select {
		case event, ok := <-obj.watcher.Events:
			if !ok {
				return nil
			}
			if obj.Debug {
				obj.Logf("event(%s): %v", event.Name, event.Op)
			}
			if !obj.match(event.Name) {
				continue
			}
			if obj.isDir && event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := obj.addSubFolders(event.Name); err != nil {
					return err
				}
			}
			select {
			case obj.events <- Event{Body: &event}:
			case <-obj.exit:
				return nil
			}

		case err, ok := <-obj.watcher.Errors:
			if !ok {
				return nil
			}
			return errwrap.Wrapf(err, "unknown watcher error")

		case <-obj.exit:
			return nil
		}
	}
}

// match returns true if an event for name concerns the watched path.
func (obj *RecWatcher) match(name string) bool {
	name = filepath.Clean(name)
	if name == obj.safename {
		return true
	}
	return obj.isDir && strings.HasPrefix(name, obj.safename+string(filepath.Separator))
}

// addSubFolders is a helper that is used to add recursive dirs to the watches.
func (obj *RecWatcher) addSubFolders(p string) error {
	if !obj.Recurse {
		return nil // if we're not watching recursively, just exit early
	}
	// look at all subfolders...
	walkFn := func(path string, info os.FileInfo, err error) error {
		if obj.Debug {
			obj.Logf("walk: %s (%v): %v", path, info, err)
		}
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return obj.watcher.Add(path)
		}
		return nil
	}
	return filepath.Walk(p, walkFn)
}

func isDir(path string) bool {
	finfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return finfo.IsDir()
}

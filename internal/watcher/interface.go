package watcher

import "context"

// Watcher defines the interface for inbox monitoring
type Watcher interface {
	// Start handles files already in the inbox, then new ones, until ctx is done.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is a function that handles one audio file dropped into the inbox
type EventHandler func(ctx context.Context, filePath string) error

// AudioExtensions are the inbox file types handed to the EventHandler.
var AudioExtensions = []string{".wav", ".mp3", ".m4a", ".ogg", ".flac"}

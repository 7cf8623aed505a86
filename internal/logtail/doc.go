// Package logtail reads the tail of the client log for the log pane.
//
// # Reading Log Files
//
// Read extracts the last maxLines lines of a file with a ring buffer of size
// maxLines, so memory stays O(maxLines) whatever the file size. Lines come
// back in chronological order. A maxLines of zero or less returns the whole
// file. Files are opened through an afero.Fs.
//
//	lines, err := logtail.Read(afero.NewOsFs(), cfg.LogPath(), 200)
//
// # Levels
//
// The client logs with slog's text handler, so every record carries a
// level=LEVEL attribute. Level pulls it out so the UI can color lines
// without parsing the whole record.
//
// # Error Handling
//
// Read returns nil, nil for a missing file. Other errors (permission denied,
// I/O errors, overlong lines) are returned wrapped.
package logtail

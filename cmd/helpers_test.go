package cmd

import "io"

// blockingReader returns a reader whose Read blocks until the writer closes.
func blockingReader() (io.Reader, io.Closer) {
	r, w := io.Pipe()
	return r, w
}

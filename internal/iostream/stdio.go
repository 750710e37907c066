// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iostream

import (
	"bufio"
	"io"
	"os"

	"github.com/solidcoredata/dcstore/chunkerr"
)

// StdinPath and StdoutPath are the literal paths reserved for the
// process's standard streams.
const (
	StdinPath  = "stdin"
	StdoutPath = "stdout"
)

// Open dispatches to the stdio wrappers for the reserved path names, or to
// OpenFileReader otherwise.
func Open(path string) (Reader, error) {
	if path == StdinPath {
		return &stdinReader{br: bufio.NewReaderSize(os.Stdin, 64*1024)}, nil
	}
	return OpenFileReader(path)
}

// Create dispatches to the stdio wrappers for the reserved path names, or
// to OpenFileWriter otherwise.
func Create(path string) (Writer, error) {
	if path == StdoutPath {
		return &stdoutWriter{bw: bufio.NewWriterSize(os.Stdout, 64*1024)}, nil
	}
	return OpenFileWriter(path)
}

// stdinReader adapts standard input to Reader. Seek is unsupported, as a
// pipe has no stable position to return to; callers that only read
// sequentially (the packed and textual codecs) never call it.
type stdinReader struct {
	br  *bufio.Reader
	pos int64
}

func (r *stdinReader) Read(p []byte) (int, error) {
	n, err := r.br.Read(p)
	r.pos += int64(n)
	return n, err
}

func (r *stdinReader) ReadByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err == nil {
		r.pos++
	}
	return b, err
}

func (r *stdinReader) Peek(n int) ([]byte, error) {
	b, err := r.br.Peek(n)
	if err != nil && err != io.EOF {
		return b, chunkerr.Wrap(chunkerr.IoError, err, "iostream: peek stdin")
	}
	return b, err
}

func (r *stdinReader) Seek(offset int64, whence int) (int64, error) {
	return 0, chunkerr.New(chunkerr.NotImplemented, "iostream: stdin is not seekable")
}

func (r *stdinReader) Eof() bool {
	_, err := r.br.Peek(1)
	return err == io.EOF
}

func (r *stdinReader) ReadLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", chunkerr.Wrap(chunkerr.IoError, err, "iostream: read line from stdin")
	}
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	return line, nil
}

func (r *stdinReader) Close() error { return nil }

// stdoutWriter adapts standard output to Writer.
type stdoutWriter struct {
	bw *bufio.Writer
}

func (w *stdoutWriter) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	if err != nil {
		return n, chunkerr.Wrap(chunkerr.IoError, err, "iostream: write stdout")
	}
	return n, nil
}

func (w *stdoutWriter) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return chunkerr.Wrap(chunkerr.IoError, err, "iostream: flush stdout")
	}
	return nil
}

func (w *stdoutWriter) Close() error { return w.Flush() }

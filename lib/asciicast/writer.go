// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package asciicast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ErrDurationOverflow is returned by Close when the rendered duration
// field does not fit in the reserved header pad. The pad is left as
// whitespace so the file stays valid JSON.
var ErrDurationOverflow = errors.New("asciicast: duration does not fit in reserved header pad")

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("asciicast: writer closed")

// Output is the file a Writer streams into. WriteAt is used once, to
// patch the duration into the header. *os.File satisfies it.
type Output interface {
	io.Writer
	io.WriterAt
	io.Closer
}

// Writer streams an asciicast session into an Output. Each event record
// is assembled in memory and flushed as a single write, so a killed
// process leaves only whole records behind.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	output   Output
	buffered *bufio.Writer
	version  Version
	encoder  Encoder
	record   []byte
	events   int
	closed   bool
}

// Create truncates or creates the file at path and writes the header.
func Create(path string, header Header) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating session file: %w", err)
	}
	writer, err := NewWriter(file, header)
	if err != nil {
		file.Close()
		return nil, err
	}
	return writer, nil
}

// NewWriter writes the header to output and returns a Writer positioned
// for event records. The header is flushed before NewWriter returns.
func NewWriter(output Output, header Header) (*Writer, error) {
	if !header.Version.Valid() {
		return nil, fmt.Errorf("unsupported asciicast version %d", header.Version)
	}

	writer := &Writer{
		output:   output,
		buffered: bufio.NewWriter(output),
		version:  header.Version,
	}
	if _, err := writer.buffered.Write(appendHeader(nil, header)); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if err := writer.buffered.Flush(); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return writer, nil
}

// Version returns the format version being written.
func (writer *Writer) Version() Version {
	return writer.version
}

// Events returns the number of event records written so far, not
// counting the v1 placeholder record.
func (writer *Writer) Events() int {
	return writer.events
}

// WriteOutput appends one output event for raw. deltaMS is the time
// since the previous event (v1); totalMS is the time since the start of
// the session (v2). Both are milliseconds.
func (writer *Writer) WriteOutput(deltaMS, totalMS float64, raw []byte) error {
	if writer.closed {
		return ErrClosed
	}

	record := writer.record[:0]
	switch writer.version {
	case V2:
		record = append(record, '[')
		record = strconv.AppendFloat(record, totalMS/1000, 'f', 4, 64)
		record = append(record, `,"o","`...)
	case V1:
		record = append(record, ",["...)
		record = strconv.AppendFloat(record, deltaMS/1000, 'f', 4, 64)
		record = append(record, `,"`...)
	}
	record = writer.encoder.Append(record, raw)
	record = append(record, "\"]\n"...)
	writer.record = record

	if _, err := writer.buffered.Write(record); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if err := writer.buffered.Flush(); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	writer.events++
	return nil
}

// Close finalizes the file: closes the v1 array and object, patches the
// duration (totalMS, milliseconds) into the header pad, and closes the
// output. Close runs once; later calls return ErrClosed. Every step is
// attempted even when an earlier one fails, and all failures are
// returned together.
func (writer *Writer) Close(totalMS float64) error {
	if writer.closed {
		return ErrClosed
	}
	writer.closed = true

	var errs []error
	if writer.version == V1 {
		if _, err := writer.buffered.WriteString("]}\n"); err != nil {
			errs = append(errs, fmt.Errorf("closing stdout array: %w", err))
		}
	}
	if err := writer.buffered.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing session file: %w", err))
	}

	field, err := DurationField(totalMS)
	if err != nil {
		errs = append(errs, err)
	} else if _, err := writer.output.WriteAt(field, durationPadOffset); err != nil {
		errs = append(errs, fmt.Errorf("patching duration: %w", err))
	}

	if err := writer.output.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing session file: %w", err))
	}
	return errors.Join(errs...)
}

// DurationField renders the header duration field for totalMS
// milliseconds, with nine significant digits of seconds. It returns
// ErrDurationOverflow when the field is wider than DurationPadWidth.
func DurationField(totalMS float64) ([]byte, error) {
	if math.IsNaN(totalMS) || math.IsInf(totalMS, 0) || totalMS < 0 {
		return nil, fmt.Errorf("asciicast: invalid duration %v ms", totalMS)
	}
	field := []byte(`"duration": `)
	field = strconv.AppendFloat(field, totalMS/1000, 'g', 9, 64)
	field = append(field, ", "...)
	if len(field) > DurationPadWidth {
		return nil, fmt.Errorf("%w: %q", ErrDurationOverflow, field)
	}
	return field, nil
}

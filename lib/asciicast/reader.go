// Copyright 2026 The Castty Authors
// SPDX-License-Identifier: Apache-2.0

package asciicast

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Recording is a parsed session file.
type Recording struct {
	Header RecordedHeader
	Events []Event
}

// RecordedHeader is the header as it appears in a finished file.
type RecordedHeader struct {
	Duration float64 `json:"duration"`
	Version  Version `json:"version"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Command  string  `json:"command"`
	Title    string  `json:"title"`

	// Env is kept as written; it need not be an object.
	Env json.RawMessage `json:"env"`
}

// Event is one output record. Time is seconds since the start of the
// session for both versions; v1 deltas are accumulated while reading.
type Event struct {
	Time float64
	Type string
	Data string
}

// Output concatenates the data of every output event.
func (recording *Recording) Output() string {
	var total int
	for _, event := range recording.Events {
		total += len(event.Data)
	}
	output := make([]byte, 0, total)
	for _, event := range recording.Events {
		if event.Type == "o" {
			output = append(output, event.Data...)
		}
	}
	return string(output)
}

// Read parses a v1 or v2 session file.
func Read(reader io.Reader) (*Recording, error) {
	decoder := json.NewDecoder(reader)

	var raw struct {
		RecordedHeader
		Stdout []json.RawMessage `json:"stdout"`
	}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}

	recording := &Recording{Header: raw.RecordedHeader}
	switch raw.Version {
	case V1:
		if err := readV1(recording, raw.Stdout); err != nil {
			return nil, err
		}
		if decoder.More() {
			return nil, errors.New("trailing data after v1 session object")
		}
	case V2:
		if raw.Stdout != nil {
			return nil, errors.New("v2 header must not carry a stdout array")
		}
		if err := readV2(recording, decoder); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported asciicast version %d", raw.Version)
	}
	return recording, nil
}

func readV1(recording *Recording, records []json.RawMessage) error {
	var elapsed float64
	for index, record := range records {
		var pair []json.RawMessage
		if err := json.Unmarshal(record, &pair); err != nil || len(pair) != 2 {
			return fmt.Errorf("stdout record %d: want [delta, text]", index)
		}
		var delta float64
		var data string
		if err := json.Unmarshal(pair[0], &delta); err != nil {
			return fmt.Errorf("stdout record %d delta: %w", index, err)
		}
		if err := json.Unmarshal(pair[1], &data); err != nil {
			return fmt.Errorf("stdout record %d text: %w", index, err)
		}
		elapsed += delta
		if index == 0 && delta == 0 && data == "" {
			continue
		}
		recording.Events = append(recording.Events, Event{Time: elapsed, Type: "o", Data: data})
	}
	return nil
}

func readV2(recording *Recording, decoder *json.Decoder) error {
	for index := 0; ; index++ {
		var triple []json.RawMessage
		err := decoder.Decode(&triple)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", index, err)
		}
		if len(triple) != 3 {
			return fmt.Errorf("event %d: want [time, type, data], got %d elements", index, len(triple))
		}
		var event Event
		if err := json.Unmarshal(triple[0], &event.Time); err != nil {
			return fmt.Errorf("event %d time: %w", index, err)
		}
		if err := json.Unmarshal(triple[1], &event.Type); err != nil {
			return fmt.Errorf("event %d type: %w", index, err)
		}
		if err := json.Unmarshal(triple[2], &event.Data); err != nil {
			return fmt.Errorf("event %d data: %w", index, err)
		}
		recording.Events = append(recording.Events, event)
	}
}

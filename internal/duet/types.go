package duet

import (
	"bytes"
	"encoding/json"
)

// PrinterStatus is the flat status record filled by a poll cycle. Values are
// kept as the text the printer sent; numbers are not reformatted.
type PrinterStatus struct {
	State                 string `json:"state"`
	ProgressCompletion    string `json:"progressCompletion"`
	ProgressFilepos       string `json:"progressFilepos"`
	ProgressPrintTime     string `json:"progressPrintTime"`
	ProgressPrintTimeLeft string `json:"progressPrintTimeLeft"`
	ToolTemp              string `json:"toolTemp"`
	ToolTargetTemp        string `json:"toolTargetTemp"`
	BedTemp               string `json:"bedTemp"`
	BedTargetTemp         string `json:"bedTargetTemp"`
	FileName              string `json:"fileName"`
	FileSize              string `json:"fileSize"`
	FilamentLength        string `json:"filamentLength"`

	// Not present in either response; always empty.
	AveragePrintTime   string `json:"averagePrintTime"`
	EstimatedPrintTime string `json:"estimatedPrintTime"`
	LastPrintTime      string `json:"lastPrintTime"`

	Printing    bool   `json:"isPrinting"`
	PSUOff      bool   `json:"isPSUoff"`
	Error       string `json:"error"`
	PrinterName string `json:"printerName"`
}

// statusPayload is the subset of /rr_status?type=3 the client consumes.
type statusPayload struct {
	Status          *jsonText         `json:"status"`
	FractionPrinted jsonText          `json:"fractionPrinted"`
	FilePosition    jsonText          `json:"filePosition"`
	PrintDuration   jsonText          `json:"printDuration"`
	TimesLeft       object[timesLeft] `json:"timesLeft"`
	Temps           object[temps]     `json:"temps"`
	Tools           object[tools]     `json:"tools"`
}

type timesLeft struct {
	Filament jsonText `json:"filament"`
}

type temps struct {
	Current list[jsonText]   `json:"current"`
	Bed     object[bedTemps] `json:"bed"`
}

type bedTemps struct {
	Current jsonText `json:"current"`
	Active  jsonText `json:"active"`
}

// tools.active is read as a scalar. Firmware that reports a per-tool array
// here yields an empty target temperature.
type tools struct {
	Active jsonText `json:"active"`
}

func (p *statusPayload) missingFields() []string {
	if p.Status == nil {
		return []string{"status"}
	}
	return nil
}

// fileInfoPayload is the subset of /rr_fileinfo the client consumes. When
// nothing is printing the firmware answers {"err":1}, which leaves every
// field empty.
type fileInfoPayload struct {
	FileName jsonText       `json:"fileName"`
	Size     jsonText       `json:"size"`
	Filament list[jsonText] `json:"filament"`
}

func (p *fileInfoPayload) missingFields() []string { return nil }

// jsonText captures any JSON scalar as text: strings unquoted, numbers and
// booleans verbatim. Objects, arrays and null become the empty string.
type jsonText string

func (t *jsonText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = jsonText(s)
	case data[0] == '{', data[0] == '[':
		*t = ""
	default:
		*t = jsonText(data)
	}
	return nil
}

func (t *jsonText) String() string {
	if t == nil {
		return ""
	}
	return string(*t)
}

// object decodes into Value only when the JSON value is an object, so a
// shape mismatch degrades to zero values instead of failing the document.
type object[T any] struct {
	Value T
}

func (o *object[T]) UnmarshalJSON(data []byte) error {
	if firstByte(data) != '{' {
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// list is the array counterpart of object.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	if firstByte(data) != '[' {
		*l = nil
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

func (l list[T]) at(i int) T {
	var zero T
	if i < 0 || i >= len(l) {
		return zero
	}
	return l[i]
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

package record

import (
	"encoding/json"

	"github.com/nao1215/avlabel/internal/model"
)

// Extract looks up one field in the document. The boolean result reports
// presence; a missing field is not an error and must not affect extraction
// of other fields from the same record.
//
// FieldFamily has no accessor here because it is produced by the external
// classifier, not by record lookup.
func Extract(doc Document, field model.Field) (string, bool) {
	switch field {
	case model.FieldCPU:
		return cpu(doc)
	case model.FieldFirstSeen:
		return firstSeen(doc)
	case model.FieldSize:
		return size(doc)
	case model.FieldMD5:
		return md5(doc)
	default:
		return "", false
	}
}

// cpu returns the CPU architecture from the ELF analysis metadata at
// additional_info.gandelf.header.machine.
func cpu(doc Document) (string, bool) {
	additional, ok := doc.object()["additional_info"].(map[string]any)
	if !ok {
		return "", false
	}
	gandelf, ok := additional["gandelf"].(map[string]any)
	if !ok {
		return "", false
	}
	header, ok := gandelf["header"].(map[string]any)
	if !ok {
		return "", false
	}
	return stringValue(header["machine"])
}

// firstSeen returns the top-level first_seen value.
func firstSeen(doc Document) (string, bool) {
	return stringValue(doc.object()["first_seen"])
}

// size returns the top-level size value rendered as decimal text.
func size(doc Document) (string, bool) {
	return stringValue(doc.object()["size"])
}

// md5 returns the top-level md5 value.
func md5(doc Document) (string, bool) {
	return stringValue(doc.object()["md5"])
}

// stringValue renders a JSON scalar as output-cell text. Strings pass
// through unchanged and numbers keep their original decimal form thanks
// to json.Number. Non-scalar or null values count as absent.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}

// Package memory implements the memory-document read/write contract named
// in spec.md §6: a minimal schema ({id, timestamp, type}) with an optional
// git block and a free-form, type-specific extra object, persisted verbatim
// through internal/store's memories table. The checkpoint/recall tool
// semantics built on top of this contract are out of scope (spec.md §1:
// "Memory/checkpoint... tools beyond their read/write contracts on the
// core"); this package is the contract, not the tool.
package memory

import "encoding/json"

// GitContext is the optional git-state snapshot a memory document may
// carry (spec.md §6: "git block { branch, commit, dirty, files_changed? }").
type GitContext struct {
	Branch       string   `json:"branch"`
	Commit       string   `json:"commit"`
	Dirty        bool     `json:"dirty"`
	FilesChanged []string `json:"files_changed,omitempty"`
}

// Document is one memory: the three required fields, an optional git
// block, and every other top-level field the caller included, preserved
// under Extra rather than forced into a fixed schema (spec.md §6: "a free-
// form extra object"; the original implementation achieves the same thing
// via serde's #[serde(flatten)]).
type Document struct {
	ID        string
	Timestamp int64
	Type      string
	Git       *GitContext
	Extra     json.RawMessage // a JSON object of every field besides id/timestamp/type/git
}

// knownFields mirrors Document's typed fields for the flatten/unflatten
// round trip below.
type knownFields struct {
	ID        string      `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Type      string      `json:"type"`
	Git       *GitContext `json:"git,omitempty"`
}

// Parse decodes a memory document from its wire JSON form, splitting the
// known fields from whatever else the caller sent (spec.md §6's "flexible
// schema": checkpoint, decision, and other memory types each carry
// different extra fields under the same three-field envelope).
func Parse(data []byte) (*Document, error) {
	var kf knownFields
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	delete(raw, "id")
	delete(raw, "timestamp")
	delete(raw, "type")
	delete(raw, "git")

	doc := &Document{ID: kf.ID, Timestamp: kf.Timestamp, Type: kf.Type, Git: kf.Git}
	if len(raw) > 0 {
		extra, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		doc.Extra = extra
	}
	return doc, nil
}

// Render re-assembles the document into one flat JSON object — id,
// timestamp, type, git, and every Extra field as top-level siblings, the
// same shape Parse accepts (spec.md §6: "pretty-printed round-trip
// preserved"). Key order is not reproduced byte-for-byte (encoding/json
// sorts map keys on marshal, unlike serde_json's insertion-order-preserving
// map); every field's value round-trips exactly, which is what callers
// programmatically inspecting a memory depend on.
func (d *Document) Render(pretty bool) ([]byte, error) {
	merged := map[string]json.RawMessage{}
	if len(d.Extra) > 0 {
		if err := json.Unmarshal(d.Extra, &merged); err != nil {
			return nil, err
		}
	}

	idB, err := json.Marshal(d.ID)
	if err != nil {
		return nil, err
	}
	tsB, err := json.Marshal(d.Timestamp)
	if err != nil {
		return nil, err
	}
	typeB, err := json.Marshal(d.Type)
	if err != nil {
		return nil, err
	}
	merged["id"] = idB
	merged["timestamp"] = tsB
	merged["type"] = typeB
	if d.Git != nil {
		gitB, err := json.Marshal(d.Git)
		if err != nil {
			return nil, err
		}
		merged["git"] = gitB
	}

	if pretty {
		return json.MarshalIndent(merged, "", "  ")
	}
	return json.Marshal(merged)
}

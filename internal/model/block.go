package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Block types for the timeline tagged union.
const (
	BlockTypeEvent = "event"
	BlockTypeImage = "image"
)

// Block is one entry in a draft timeline. Concrete variants are
// *EventBlock and *ImageBlock, discriminated by their "type" field.
type Block interface {
	BlockID() string
	BlockType() string
}

// EventBlock is the event variant: the legacy flat event fields plus a
// generated identifier and the type tag. Date is a plain string here
// (empty when unknown), unlike GeneratedEvent's nullable date.
type EventBlock struct {
	ID            string       `json:"id"`
	Type          string       `json:"type,omitempty"`
	Date          string       `json:"date"`
	Event         string       `json:"event"`
	Description   string       `json:"description"`
	Significance  int          `json:"significance"`
	Sources       []SourceItem `json:"sources"`
	FactStatus    string       `json:"factStatus,omitempty"`
	FactNote      string       `json:"factNote,omitempty"`
	FactUpdatedAt *time.Time   `json:"factUpdatedAt,omitempty"`
}

// BlockID implements Block.
func (b *EventBlock) BlockID() string { return b.ID }

// BlockType implements Block.
func (b *EventBlock) BlockType() string { return BlockTypeEvent }

// ImageBlock is the image variant of a timeline block.
type ImageBlock struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
	Credit  string `json:"credit,omitempty"`
}

// BlockID implements Block.
func (b *ImageBlock) BlockID() string { return b.ID }

// BlockType implements Block.
func (b *ImageBlock) BlockType() string { return BlockTypeImage }

// BlockList is a timeline. Marshalling relies on the concrete variant
// types; unmarshalling dispatches on the "type" discriminator. Records
// written before the tagged shape existed carry no discriminator and
// decode as event blocks. The shim applies on read only and is never
// written back by the decoder itself.
type BlockList []Block

// UnmarshalJSON decodes a heterogeneous block array.
func (l *BlockList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("model: decode block list: %w", err)
	}
	out := make(BlockList, 0, len(raws))
	for _, raw := range raws {
		b, err := DecodeBlock(raw)
		if err != nil {
			return err
		}
		out = append(out, b)
	}
	*l = out
	return nil
}

// DecodeBlock decodes a single block, applying the missing-type
// compatibility shim.
func DecodeBlock(raw json.RawMessage) (Block, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("model: decode block tag: %w", err)
	}
	switch probe.Type {
	case BlockTypeImage:
		var b ImageBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("model: decode image block: %w", err)
		}
		return &b, nil
	case BlockTypeEvent, "":
		// Untagged blocks predate the union shape and are events.
		var b EventBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("model: decode event block: %w", err)
		}
		return &b, nil
	default:
		return nil, fmt.Errorf("model: unknown block type %q", probe.Type)
	}
}

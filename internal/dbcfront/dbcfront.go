// Package dbcfront parses a .dbc file with the real
// go.einride.tech/can/pkg/dbc lexer/parser and compiles the result
// into a descriptor.Database the same way go.einride.tech/can's own
// generator does internally, then adapts that database into this
// repository's desc contract: the boundary past which the rest of
// this repository never again looks at DBC-specific types.
package dbcfront

import (
	"fmt"
	"os"
	"sort"
	"time"

	cdbc "go.einride.tech/can/pkg/dbc"
	"go.einride.tech/can/pkg/descriptor"

	"dbc-bitgen/internal/desc"
)

// UnknownAttribute is recorded, not raised, when the parser hands back
// definitions this front end does not know how to fold into the
// descriptor database: tolerated, parsing continues with whatever it
// salvaged.
type UnknownAttribute struct {
	Def string
}

// Load reads and compiles a .dbc file into one descriptor.Database plus
// a list of attributes this front end chose to ignore.
func Load(path string) (*descriptor.Database, []UnknownAttribute, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dbcfront: read %s: %w", path, err)
	}

	parser := cdbc.NewParser(path, raw)
	if err := parser.Parse(); err != nil {
		return nil, nil, fmt.Errorf("dbcfront: parse %s: %w", path, err)
	}

	db := &descriptor.Database{SourceFile: path}
	var unknown []UnknownAttribute

	for _, def := range parser.File().Defs {
		switch d := def.(type) {
		case *cdbc.VersionDef:
			db.Version = d.Version
		case *cdbc.MessageDef:
			if d.MessageID == cdbc.IndependentSignalsMessageID {
				continue
			}
			db.Messages = append(db.Messages, compileMessage(d))
		case *cdbc.NodesDef:
			for _, n := range d.NodeNames {
				db.Nodes = append(db.Nodes, &descriptor.Node{Name: string(n)})
			}
		case *cdbc.ValueDescriptionsDef:
			applyValueDescriptions(db, d)
		case *cdbc.AttributeValueForObjectDef:
			applyAttribute(db, d)
		case *cdbc.CommentDef:
			applyComment(db, d)
		case *cdbc.NewSymbolsDef, *cdbc.BitTimingDef, *cdbc.AttributeDef, *cdbc.AttributeDefaultValueDef:
			// Structural and attribute-declaration lines carry nothing a
			// message accessor needs; skipped without a warning.
		default:
			unknown = append(unknown, UnknownAttribute{Def: fmt.Sprintf("%T", d)})
		}
	}

	sort.Slice(db.Messages, func(i, j int) bool { return db.Messages[i].ID < db.Messages[j].ID })
	for _, m := range db.Messages {
		sort.Slice(m.Signals, func(i, j int) bool { return m.Signals[i].Start < m.Signals[j].Start })
	}

	return db, unknown, nil
}

func compileMessage(d *cdbc.MessageDef) *descriptor.Message {
	msg := &descriptor.Message{
		Name:       string(d.Name),
		ID:         d.MessageID.ToCAN(),
		IsExtended: d.MessageID.IsExtended(),
		Length:     uint8(d.Size),
		SenderNode: string(d.Transmitter),
	}
	for _, s := range d.Signals {
		sig := &descriptor.Signal{
			Name:        string(s.Name),
			IsBigEndian: s.IsBigEndian,
			IsSigned:    s.IsSigned,
			Start:       uint8(s.StartBit),
			Length:      uint8(s.Size),
			Scale:       s.Factor,
			Offset:      s.Offset,
			Min:         s.Minimum,
			Max:         s.Maximum,
			Unit:        s.Unit,
		}
		for _, r := range s.Receivers {
			sig.ReceiverNodes = append(sig.ReceiverNodes, string(r))
		}
		msg.Signals = append(msg.Signals, sig)
	}
	return msg
}

func applyValueDescriptions(db *descriptor.Database, d *cdbc.ValueDescriptionsDef) {
	if d.MessageID == cdbc.IndependentSignalsMessageID || d.ObjectType != cdbc.ObjectTypeSignal {
		return
	}
	sig, ok := db.Signal(d.MessageID.ToCAN(), string(d.SignalName))
	if !ok {
		return
	}
	for _, vd := range d.ValueDescriptions {
		sig.ValueDescriptions = append(sig.ValueDescriptions, &descriptor.ValueDescription{
			Value:       int64(vd.Value),
			Description: vd.Description,
		})
	}
	sort.Slice(sig.ValueDescriptions, func(i, j int) bool {
		return sig.ValueDescriptions[i].Value < sig.ValueDescriptions[j].Value
	})
}

func applyAttribute(db *descriptor.Database, d *cdbc.AttributeValueForObjectDef) {
	switch d.ObjectType {
	case cdbc.ObjectTypeMessage:
		msg, ok := db.Message(d.MessageID.ToCAN())
		if !ok {
			return
		}
		if d.AttributeName == "GenMsgCycleTime" {
			msg.CycleTime = time.Duration(d.IntValue) * time.Millisecond
		}
	case cdbc.ObjectTypeSignal:
		sig, ok := db.Signal(d.MessageID.ToCAN(), string(d.SignalName))
		if !ok {
			return
		}
		if d.AttributeName == "GenSigStartValue" {
			sig.DefaultValue = int(d.IntValue)
		}
	}
}

func applyComment(db *descriptor.Database, d *cdbc.CommentDef) {
	switch d.ObjectType {
	case cdbc.ObjectTypeMessage:
		if msg, ok := db.Message(d.MessageID.ToCAN()); ok {
			msg.Description = d.Comment
		}
	case cdbc.ObjectTypeSignal:
		if sig, ok := db.Signal(d.MessageID.ToCAN(), string(d.SignalName)); ok {
			sig.Description = d.Comment
		}
	}
}

// ToDescriptions adapts a compiled descriptor.Database into this
// repository's own MessageDescription/SignalDescription contract.
func ToDescriptions(db *descriptor.Database) []desc.MessageDescription {
	out := make([]desc.MessageDescription, 0, len(db.Messages))
	for _, m := range db.Messages {
		md := desc.MessageDescription{
			Name:     m.Name,
			ID:       m.ID,
			Extended: m.IsExtended,
			DLC:      m.Length,
		}
		if m.CycleTime != 0 {
			v := uint32(m.CycleTime / time.Millisecond)
			md.CycleTime = &v
		}
		for _, s := range m.Signals {
			sd := desc.SignalDescription{
				Name:     s.Name,
				StartBit: s.Start,
				Width:    s.Length,
				Scale:    orOne(s.Scale),
				Offset:   s.Offset,
			}
			if s.IsBigEndian {
				sd.ByteOrder = desc.BigEndian
			}
			if s.IsSigned {
				sd.Signedness = desc.Signed
			}
			for _, vd := range s.ValueDescriptions {
				sd.ValueTable = append(sd.ValueTable, desc.ValueDescription{Raw: vd.Value, Label: vd.Description})
			}
			md.Signals = append(md.Signals, sd)
		}
		out = append(out, md)
	}
	return out
}

// orOne treats a zero Scale (a DBC file that omitted the factor, or a
// signal whose factor really is 0) as the unscaled identity; a
// genuine factor of 0 is nonsensical for a physical quantity and the
// DBC format always writes 1 for unscaled signals, so this never
// collides with a real scale.
func orOne(scale float64) float64 {
	if scale == 0 {
		return 1
	}
	return scale
}

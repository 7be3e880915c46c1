package dice

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// termsMarshaler logs the per-term breakdown of a Result as a zap array.
type termsMarshaler []TermResult

func (ts termsMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, t := range ts {
		if err := enc.AppendObject(termMarshaler(t)); err != nil {
			return err
		}
	}
	return nil
}

type termMarshaler TermResult

func (t termMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("term", t.Term.Sign.String()+t.Term.notation())
	if t.Term.Kind == DiceTerm {
		zap.Ints("rolls", t.Rolls).AddTo(enc)
		zap.Ints("kept", t.Kept).AddTo(enc)
		zap.Ints("dropped", t.Dropped).AddTo(enc)
	}
	enc.AddInt("subtotal", t.Subtotal)
	return nil
}

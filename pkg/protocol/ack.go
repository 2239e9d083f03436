package protocol

// Ack acknowledges one applied op batch. Seq is the cycle sequence number;
// Applied is the number of ops the display applied.
type Ack struct {
	Seq     uint64
	Applied uint64
}

// EncodeAck encodes ack as a FrameAck payload.
func EncodeAck(e *Encoder, ack *Ack) {
	e.WriteUvarint(ack.Seq)
	e.WriteUvarint(ack.Applied)
}

// DecodeAck decodes a FrameAck payload.
func DecodeAck(d *Decoder) (*Ack, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	applied, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return &Ack{Seq: seq, Applied: applied}, nil
}

// ErrorReport is a FrameError payload. Code is a stable machine code,
// Message human-readable detail. Fatal displays should reconnect and
// resync.
type ErrorReport struct {
	Code    string
	Message string
	Fatal   bool
}

// EncodeError encodes rep as a FrameError payload.
func EncodeError(e *Encoder, rep *ErrorReport) {
	e.WriteString(rep.Code)
	e.WriteString(rep.Message)
	e.WriteBool(rep.Fatal)
}

// DecodeError decodes a FrameError payload.
func DecodeError(d *Decoder) (*ErrorReport, error) {
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return &ErrorReport{Code: code, Message: msg, Fatal: fatal}, nil
}

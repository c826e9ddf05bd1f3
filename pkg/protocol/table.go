package protocol

// TablePushFrame carries one of the rule-plane table-push opcodes
// (MSTWRID = whitelist RID, MSTBRID = blacklist RID, MSTTID = active
// TGID, MSTDTID = deactive TGID): count(4) then that many 32-bit ids,
// per spec.md §4.1 and §4.6. All four opcodes share this layout, so
// one struct serves all four; Tag records which.
type TablePushFrame struct {
	Tag string
	IDs []uint32
}

func (f *TablePushFrame) Opcode() string { return f.Tag }

func (f *TablePushFrame) Encode() []byte {
	tagLen := len(f.Tag)
	b := make([]byte, tagLen+4+4*len(f.IDs))
	copy(b[0:tagLen], f.Tag)
	put32(b[tagLen:tagLen+4], uint32(len(f.IDs)))
	off := tagLen + 4
	for _, id := range f.IDs {
		put32(b[off:off+4], id)
		off += 4
	}
	return b
}

func parseTablePush(tag string, data []byte) (Frame, error) {
	tagLen := len(tag)
	if len(data) < tagLen+4 {
		return nil, ErrShortFrame
	}
	count := get32(data[tagLen : tagLen+4])
	want := tagLen + 4 + int(count)*4
	if len(data) < want {
		return nil, ErrShortFrame
	}
	f := &TablePushFrame{Tag: tag, IDs: make([]uint32, count)}
	off := tagLen + 4
	for i := range f.IDs {
		f.IDs[i] = get32(data[off : off+4])
		off += 4
	}
	return f, nil
}

// NewWhitelistRIDPush builds an MSTWRID table push.
func NewWhitelistRIDPush(ids []uint32) *TablePushFrame {
	return &TablePushFrame{Tag: TagMSTWRID, IDs: ids}
}

// NewBlacklistRIDPush builds an MSTBRID table push.
func NewBlacklistRIDPush(ids []uint32) *TablePushFrame {
	return &TablePushFrame{Tag: TagMSTBRID, IDs: ids}
}

// NewActiveTGIDPush builds an MSTTID table push.
func NewActiveTGIDPush(ids []uint32) *TablePushFrame {
	return &TablePushFrame{Tag: TagMSTTID, IDs: ids}
}

// NewDeactiveTGIDPush builds an MSTDTID table push.
func NewDeactiveTGIDPush(ids []uint32) *TablePushFrame {
	return &TablePushFrame{Tag: TagMSTDTID, IDs: ids}
}

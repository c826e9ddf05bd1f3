package lc

import "testing"

func samplePayload() Payload {
	return Payload{
		FLCO:        FLCOGroupVoice,
		FID:         0,
		ServiceOpts: 0x80,
		DstID:       12345,
		SrcID:       678910,
	}
}

func TestPayloadBytesRoundTrip(t *testing.T) {
	p := samplePayload()
	got := PayloadFromBytes(p.Bytes())
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestFullLCRoundTrip(t *testing.T) {
	p := samplePayload()
	coded := EncodeFullLC(p.Bytes())
	if len(coded) != 196 {
		t.Fatalf("len = %d, want 196", len(coded))
	}
	got, ok := DecodeFullLC(coded)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got != p.Bytes() {
		t.Fatalf("got %v, want %v", got, p.Bytes())
	}
}

func TestFullLCCorrectsBitErrors(t *testing.T) {
	p := samplePayload()
	coded := EncodeFullLC(p.Bytes())
	coded[10] ^= 1
	coded[150] ^= 1
	got, ok := DecodeFullLC(coded)
	if !ok {
		t.Fatalf("decode failed after correctable errors")
	}
	if got != p.Bytes() {
		t.Fatalf("got %v, want %v", got, p.Bytes())
	}
}

func TestSlotTypeRoundTrip(t *testing.T) {
	for cc := byte(0); cc < 16; cc++ {
		for dt := byte(0); dt < 16; dt++ {
			coded := EncodeSlotType(cc, dt)
			gotCC, gotDT, ok := DecodeSlotType(coded)
			if !ok || gotCC != cc || gotDT != dt {
				t.Fatalf("cc=%d dt=%d: got cc=%d dt=%d ok=%v", cc, dt, gotCC, gotDT, ok)
			}
		}
	}
}

func TestEMBRoundTrip(t *testing.T) {
	e := EMB{ColorCode: 5, PI: true, LCSS: LCSSFirstFragment}
	coded := e.Encode()
	got, ok := DecodeEMB(coded)
	if !ok || got != e {
		t.Fatalf("got %+v ok=%v, want %+v", got, ok, e)
	}
}

func TestEmbeddedFragmentsRoundTrip(t *testing.T) {
	p := samplePayload()
	b, c, d, e, f := BuildEmbeddedFragments(p.Bytes())
	got, ok := DecodeEmbeddedFragments(b, c, d, e)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got != p.Bytes() {
		t.Fatalf("got %v, want %v", got, p.Bytes())
	}
	// Null fragment carries no payload but must itself check out clean.
	zero, ok := DecodeEmbeddedFragments(f, f, f, f)
	if !ok {
		t.Fatalf("null fragment checksum failed")
	}
	for _, b := range zero {
		if b != 0 {
			t.Fatalf("null fragment payload not all zero: %v", zero)
		}
	}
}

func TestEmbeddedFragmentDetectsCorruption(t *testing.T) {
	p := samplePayload()
	b, c, d, e, _ := BuildEmbeddedFragments(p.Bytes())
	b.Bits[3] ^= 1
	_, ok := DecodeEmbeddedFragments(b, c, d, e)
	if ok {
		t.Fatalf("expected checksum mismatch to be detected")
	}
}

func TestP25LCRoundTrip(t *testing.T) {
	p := samplePayload()
	coded := EncodeP25LC(p.Bytes())
	if len(coded) != 12 {
		t.Fatalf("len = %d, want 12", len(coded))
	}
	got, ok := DecodeP25LC(coded)
	if !ok || got != p.Bytes() {
		t.Fatalf("got %v ok=%v, want %v", got, ok, p.Bytes())
	}
}

func TestP25LCCorrectsSingleByteError(t *testing.T) {
	p := samplePayload()
	coded := EncodeP25LC(p.Bytes())
	coded[2] ^= 0xFF
	got, ok := DecodeP25LC(coded)
	if !ok || got != p.Bytes() {
		t.Fatalf("got %v ok=%v, want %v", got, ok, p.Bytes())
	}
}

func TestLDUChecksumRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	sum := LDUChecksum(payload)
	if !VerifyLDUChecksum(payload, sum) {
		t.Fatalf("checksum verification failed")
	}
	payload[0] ^= 0xFF
	if VerifyLDUChecksum(payload, sum) {
		t.Fatalf("expected checksum mismatch after payload corruption")
	}
}

func TestDataSyncBurstRoundTrip(t *testing.T) {
	p := samplePayload()
	info := make([]byte, 196)
	copy(info, EncodeFullLC(p.Bytes()))
	slotType := EncodeSlotType(1, 3)
	sync := make([]byte, 48)
	for i := range sync {
		sync[i] = byte(i % 2)
	}

	burst := AssembleDataSyncBurst(info, slotType, sync)
	if len(burst) != 264 {
		t.Fatalf("len = %d, want 264", len(burst))
	}
	gotInfo, gotSlotType, gotSync := DisassembleDataSyncBurst(burst)
	for i := range info {
		if gotInfo[i] != info[i] {
			t.Fatalf("info mismatch at %d", i)
		}
	}
	for i := range slotType {
		if gotSlotType[i] != slotType[i] {
			t.Fatalf("slot type mismatch at %d", i)
		}
	}
	for i := range sync {
		if gotSync[i] != sync[i] {
			t.Fatalf("sync mismatch at %d", i)
		}
	}
}

func TestVoiceBurstRoundTrip(t *testing.T) {
	ambe := make([]byte, 216)
	for i := range ambe {
		ambe[i] = byte((i * 7) % 2)
	}
	embedded := make([]byte, 48)
	for i := range embedded {
		embedded[i] = byte((i * 3) % 2)
	}

	burst := AssembleVoiceBurst(ambe, embedded)
	if len(burst) != 264 {
		t.Fatalf("len = %d, want 264", len(burst))
	}
	gotAmbe, gotEmbedded := DisassembleVoiceBurst(burst)
	for i := range ambe {
		if gotAmbe[i] != ambe[i] {
			t.Fatalf("ambe mismatch at %d", i)
		}
	}
	for i := range embedded {
		if gotEmbedded[i] != embedded[i] {
			t.Fatalf("embedded mismatch at %d", i)
		}
	}
}

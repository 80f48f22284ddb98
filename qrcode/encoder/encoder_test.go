package encoder

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"
	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
	"github.com/EvotecIT/CodeGlyphX-sub011/internal"
	"github.com/EvotecIT/CodeGlyphX-sub011/qrcode/decoder"
)

func intPtr(v int) *int { return &v }

func decodeCode(t *testing.T, bits *bitutil.BitMatrix) *internal.DecoderResult {
	t.Helper()
	result, diag, err := decoder.NewDecoder().Decode(bits, nil)
	if err != nil {
		t.Fatalf("decode: %v (%s)", err, diag)
	}
	return result
}

func TestChooseMode(t *testing.T) {
	tests := []struct {
		content string
		want    decoder.Mode
	}{
		{"", decoder.ModeByte},
		{"0123456789", decoder.ModeNumeric},
		{"HELLO WORLD", decoder.ModeAlphanumeric},
		{"A1 $%*+-./:", decoder.ModeAlphanumeric},
		{"hello", decoder.ModeByte},
		{"点茗", decoder.ModeKanji},
		{"点a", decoder.ModeByte},
		{"ｱｲｳ", decoder.ModeByte},
	}
	for _, tt := range tests {
		if got := ChooseMode(tt.content); got != tt.want {
			t.Errorf("ChooseMode(%q) = %s, want %s", tt.content, got, tt.want)
		}
	}
}

func TestKnownCodewords(t *testing.T) {
	// 01234567 at 1-M, ISO/IEC 18004 Annex I.
	seg, err := NewNumericSegment("01234567")
	if err != nil {
		t.Fatal(err)
	}
	version, _ := decoder.GetVersionForNumber(1)
	bits := bitutil.NewBitArray(0)
	if err := seg.AppendTo(bits, version); err != nil {
		t.Fatal(err)
	}
	if err := terminateBits(version.NumDataCodewords(decoder.ECLevelM), bits); err != nil {
		t.Fatal(err)
	}
	final, err := interleaveWithECBytes(bits, version, decoder.ECLevelM)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11,
		0xA5, 0x24, 0xD4, 0xC1, 0xED, 0x36, 0xC7, 0x87, 0x2C, 0x55,
	}
	if got := final.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("codewords = % X\nwant       % X", got, want)
	}
}

func TestHelloWorldRoundTrip(t *testing.T) {
	hints := &EncodeHints{MinVersion: 1, MaxVersion: 5, Mode: decoder.ModeByte}
	qr, err := Encode("Hello, world!", decoder.ECLevelM, hints)
	if err != nil {
		t.Fatal(err)
	}
	if qr.Version.Number != 1 || qr.Mode != decoder.ModeByte {
		t.Errorf("version %d mode %s", qr.Version.Number, qr.Mode)
	}
	result := decodeCode(t, qr.BitMatrix())
	if result.Text != "Hello, world!" {
		t.Errorf("text = %q", result.Text)
	}
	if result.ECLevel != "M" || result.Mask != qr.MaskPattern {
		t.Errorf("level %s mask %d, want M %d", result.ECLevel, result.Mask, qr.MaskPattern)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ecLevel decoder.ErrorCorrectionLevel
		hints   *EncodeHints
		mode    decoder.Mode
	}{
		{"numeric", "31415926535897932384626433832795", decoder.ECLevelH, nil, decoder.ModeNumeric},
		{"alphanumeric", "HTTPS://EXAMPLE.COM/QR-CODE", decoder.ECLevelQ, nil, decoder.ModeAlphanumeric},
		{"utf8", "Grüße aus Köln", decoder.ECLevelL, nil, decoder.ModeByte},
		{"kanji", "点茗漢字", decoder.ECLevelM, nil, decoder.ModeKanji},
		{"latin2 eci", "Zażółć gęślą jaźń", decoder.ECLevelL, &EncodeHints{CharacterSet: "ISO-8859-2"}, decoder.ModeByte},
		{"shift_jis eci", "こんにちは", decoder.ECLevelM, &EncodeHints{CharacterSet: "Shift_JIS", Mode: decoder.ModeByte}, decoder.ModeByte},
		{"forced byte", "12345", decoder.ECLevelL, &EncodeHints{Mode: decoder.ModeByte}, decoder.ModeByte},
		{"forced mask", "MASK", decoder.ECLevelL, &EncodeHints{MaskPattern: intPtr(5)}, decoder.ModeAlphanumeric},
		{"version 7", strings.Repeat("version information ", 6), decoder.ECLevelM, nil, decoder.ModeByte},
		{"version 40", strings.Repeat("9", 7089), decoder.ECLevelL, nil, decoder.ModeNumeric},
		{"min version", "A", decoder.ECLevelL, &EncodeHints{MinVersion: 10}, decoder.ModeAlphanumeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qr, err := Encode(tt.content, tt.ecLevel, tt.hints)
			if err != nil {
				t.Fatal(err)
			}
			if qr.Mode != tt.mode {
				t.Errorf("mode = %s, want %s", qr.Mode, tt.mode)
			}
			if tt.hints != nil && tt.hints.MaskPattern != nil && qr.MaskPattern != *tt.hints.MaskPattern {
				t.Errorf("mask = %d, want %d", qr.MaskPattern, *tt.hints.MaskPattern)
			}
			if tt.hints != nil && tt.hints.MinVersion > 0 && qr.Version.Number < tt.hints.MinVersion {
				t.Errorf("version %d below minimum %d", qr.Version.Number, tt.hints.MinVersion)
			}
			result := decodeCode(t, qr.BitMatrix())
			if result.Text != tt.content {
				t.Errorf("text = %q, want %q", result.Text, tt.content)
			}
			if result.Version != qr.Version.Number || result.ECLevel != tt.ecLevel.String() {
				t.Errorf("decoded v%d-%s, encoded v%d-%s", result.Version, result.ECLevel, qr.Version.Number, tt.ecLevel)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	qr, err := EncodeBytes(nil, decoder.ECLevelM, nil)
	if err != nil {
		t.Fatal(err)
	}
	if qr.Version.Number != 1 || len(qr.Segments) != 1 || qr.Segments[0].Count != 0 {
		t.Errorf("version %d segments %+v", qr.Version.Number, qr.Segments)
	}
	result := decodeCode(t, qr.BitMatrix())
	if result.Text != "" || len(result.ByteSegments) != 1 || len(result.ByteSegments[0]) != 0 {
		t.Errorf("text %q segments %v", result.Text, result.ByteSegments)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	qr, err := EncodeBytes(data, decoder.ECLevelQ, nil)
	if err != nil {
		t.Fatal(err)
	}
	result := decodeCode(t, qr.BitMatrix())
	if len(result.ByteSegments) != 1 || !bytes.Equal(result.ByteSegments[0], data) {
		t.Errorf("byte segments differ")
	}
}

func TestCapacityBoundary(t *testing.T) {
	hints := &EncodeHints{MinVersion: 1, MaxVersion: 1}
	if _, err := EncodeBytes(bytes.Repeat([]byte{'x'}, 17), decoder.ECLevelL, hints); err != nil {
		t.Fatalf("17 bytes at 1-L: %v", err)
	}
	_, err := EncodeBytes(bytes.Repeat([]byte{'x'}, 18), decoder.ECLevelL, hints)
	if !errors.Is(err, codeglyphx.ErrCapacityExceeded) {
		t.Errorf("18 bytes at 1-L: error = %v, want ErrCapacityExceeded", err)
	}
	if _, err := Encode(strings.Repeat("9", 7090), decoder.ECLevelL, nil); !errors.Is(err, codeglyphx.ErrCapacityExceeded) {
		t.Errorf("7090 digits: error = %v", err)
	}
}

func TestCountIndicatorBand(t *testing.T) {
	// 9-L holds 230 bytes with an 8-bit count; 231 bytes need 10-L and the
	// 16-bit count.
	for n, want := range map[int]int{230: 9, 231: 10} {
		qr, err := EncodeBytes(bytes.Repeat([]byte{'a'}, n), decoder.ECLevelL, nil)
		if err != nil {
			t.Fatal(err)
		}
		if qr.Version.Number != want {
			t.Errorf("%d bytes: version %d, want %d", n, qr.Version.Number, want)
		}
	}
}

func TestInvalidHints(t *testing.T) {
	tests := []struct {
		name    string
		content string
		hints   *EncodeHints
		want    error
	}{
		{"mask", "A", &EncodeHints{MaskPattern: intPtr(8)}, codeglyphx.ErrInvalidInput},
		{"range", "A", &EncodeHints{MinVersion: 5, MaxVersion: 3}, codeglyphx.ErrInvalidInput},
		{"max version", "A", &EncodeHints{MaxVersion: 41}, codeglyphx.ErrInvalidInput},
		{"charset", "a", &EncodeHints{CharacterSet: "EBCDIC"}, codeglyphx.ErrInvalidInput},
		{"alphanumeric", "abc", &EncodeHints{Mode: decoder.ModeAlphanumeric}, codeglyphx.ErrUnsupportedCharacter},
		{"numeric", "12a", &EncodeHints{Mode: decoder.ModeNumeric}, codeglyphx.ErrUnsupportedCharacter},
		{"kanji", "abc", &EncodeHints{Mode: decoder.ModeKanji}, codeglyphx.ErrUnsupportedCharacter},
		{"latin1", "点", &EncodeHints{CharacterSet: "ISO-8859-1", Mode: decoder.ModeByte}, codeglyphx.ErrUnsupportedCharacter},
		{"eci mode", "A", &EncodeHints{Mode: decoder.ModeECI}, codeglyphx.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.content, decoder.ECLevelL, tt.hints)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGS1AndECIHeaders(t *testing.T) {
	qr, err := Encode("01049123451234591597033130128", decoder.ECLevelM, &EncodeHints{GS1Format: true})
	if err != nil {
		t.Fatal(err)
	}
	result := decodeCode(t, qr.BitMatrix())
	if result.SymbologyModifier != 3 {
		t.Errorf("GS1 modifier = %d, want 3", result.SymbologyModifier)
	}

	qr, err = Encode("café", decoder.ECLevelM, &EncodeHints{CharacterSet: "UTF-8"})
	if err != nil {
		t.Fatal(err)
	}
	result = decodeCode(t, qr.BitMatrix())
	if len(result.ECIValues) != 1 || result.ECIValues[0] != 26 || result.Text != "café" {
		t.Errorf("ECI %v text %q", result.ECIValues, result.Text)
	}

	qr, err = Encode("café", decoder.ECLevelM, &EncodeHints{CharacterSet: "ISO-8859-1", DisableECI: true})
	if err != nil {
		t.Fatal(err)
	}
	if qr.Segments[0].Mode != decoder.ModeByte {
		t.Errorf("first segment %s with ECI disabled", qr.Segments[0].Mode)
	}
}

func TestDeterminism(t *testing.T) {
	for _, content := range []string{"determinism", "0000000000", "https://example.com/a?b=c"} {
		a, err := Encode(content, decoder.ECLevelQ, nil)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Encode(content, decoder.ECLevelQ, nil)
		if err != nil {
			t.Fatal(err)
		}
		if a.MaskPattern != b.MaskPattern || !a.BitMatrix().Equals(b.BitMatrix()) {
			t.Errorf("%q: encodings differ", content)
		}
	}
}

func TestMaskOptimality(t *testing.T) {
	inputs := []string{"HELLO WORLD", "Hello, world!", "1234567890123456", strings.Repeat("mask ", 40), "点茗"}
	for _, content := range inputs {
		for _, ec := range []decoder.ErrorCorrectionLevel{decoder.ECLevelL, decoder.ECLevelH} {
			chosen, err := Encode(content, ec, nil)
			if err != nil {
				t.Fatal(err)
			}
			best := MaskPenalty(chosen.Matrix)
			for mask := 0; mask < numMaskPatterns; mask++ {
				forced, err := Encode(content, ec, &EncodeHints{MaskPattern: intPtr(mask)})
				if err != nil {
					t.Fatal(err)
				}
				p := MaskPenalty(forced.Matrix)
				if p < best || (p == best && mask < chosen.MaskPattern) {
					t.Errorf("%q-%s: mask %d penalty %d beats chosen %d penalty %d",
						content, ec, mask, p, chosen.MaskPattern, best)
				}
			}
		}
	}
}

func TestMaskPenaltyRules(t *testing.T) {
	// All dark 21x21: N1 = 2*21*(3+16), N2 = 3*20*20, N3 = 0, N4 = 100.
	dark := NewByteMatrix(21, 21)
	dark.Clear(1)
	if got, want := MaskPenalty(dark), 2*21*19+3*400+100; got != want {
		t.Errorf("all dark penalty = %d, want %d", got, want)
	}

	finder := NewByteMatrix(11, 1)
	for x, v := range finderLike[0] {
		finder.Set(x, 0, v)
	}
	if got := applyMaskPenaltyRule3(finder); got != penaltyN3 {
		t.Errorf("rule 3 on finder window = %d", got)
	}

	checker := NewByteMatrix(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			checker.SetBool(x, y, (x+y)%2 == 0)
		}
	}
	if got := MaskPenalty(checker); got != 0 {
		t.Errorf("checkerboard penalty = %d, want 0", got)
	}
}

func TestMaskPenaltyRule4(t *testing.T) {
	tests := []struct {
		dark int // of 441 cells
		want int
	}{
		{0, 100},
		{199, 10}, // 45.1% truncates to 45, one step
		{198, 10}, // 44.9% truncates to 44
		{220, 0},  // 49.9%
		{221, 0},
		{243, 10}, // 55.1%
		{242, 0},  // 54.9%
		{441, 100},
	}
	for _, tt := range tests {
		m := NewByteMatrix(21, 21)
		for i := 0; i < tt.dark; i++ {
			m.Set(i%21, i/21, 1)
		}
		if got := applyMaskPenaltyRule4(m); got != tt.want {
			t.Errorf("%d dark cells: penalty %d, want %d", tt.dark, got, tt.want)
		}
	}
}

// codewordCells returns, per codeword of the interleaved stream, the cells
// its eight bits occupy.
func codewordCells(version *decoder.Version) [][][2]int {
	dimension := version.DimensionForVersion()
	function := version.BuildFunctionPattern()
	cells := make([][][2]int, version.TotalCodewords)
	bit := 0
	upward := true
	for right := dimension - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for count := 0; count < dimension; count++ {
			y := count
			if upward {
				y = dimension - 1 - count
			}
			for col := 0; col < 2; col++ {
				x := right - col
				if function.Get(x, y) || bit/8 >= len(cells) {
					continue
				}
				cells[bit/8] = append(cells[bit/8], [2]int{x, y})
				bit++
			}
		}
		upward = !upward
	}
	return cells
}

func TestErrorCorrectionCapacity(t *testing.T) {
	tests := []struct {
		version int
		ecLevel decoder.ErrorCorrectionLevel
	}{
		{1, decoder.ECLevelL},
		{1, decoder.ECLevelH},
		{3, decoder.ECLevelQ},
		{5, decoder.ECLevelQ},
		{7, decoder.ECLevelH},
		{10, decoder.ECLevelM},
	}
	for _, tt := range tests {
		version, _ := decoder.GetVersionForNumber(tt.version)
		ecBlocks := version.ECBlocksForLevel(tt.ecLevel)
		numBlocks := ecBlocks.NumBlocks()
		totalData := ecBlocks.TotalDataCodewords()
		shortData := ecBlocks.Blocks[0].DataCodewords
		correctable := ecBlocks.ECCodewordsPerBlock / 2
		payload := strings.Repeat("E", version.NumDataCodewords(tt.ecLevel)-3)

		qr, err := EncodeBytes([]byte(payload), tt.ecLevel, &EncodeHints{MinVersion: tt.version, MaxVersion: tt.version})
		if err != nil {
			t.Fatalf("%d-%s: %v", tt.version, tt.ecLevel, err)
		}
		cells := codewordCells(version)
		for block := 0; block < numBlocks; block += max(1, numBlocks-1) {
			bits := qr.BitMatrix()
			for k := 0; k < correctable; k++ {
				// Alternate between the block's data and ECC codewords.
				index := totalData + (k/2)*numBlocks + block
				if k%2 == 0 {
					index = (k/2%shortData)*numBlocks + block
				}
				for _, c := range cells[index] {
					bits.Flip(c[0], c[1])
				}
			}
			result := decodeCode(t, bits)
			if result.Text != payload {
				t.Errorf("%d-%s block %d: text mismatch", tt.version, tt.ecLevel, block)
			}
			if result.ErrorsCorrected != correctable {
				t.Errorf("%d-%s block %d: corrected %d, want %d", tt.version, tt.ecLevel, block, result.ErrorsCorrected, correctable)
			}
		}
	}
}

func TestFormatInfoFaultTolerance(t *testing.T) {
	qr, err := Encode("FORMAT INFO", decoder.ECLevelQ, &EncodeHints{MaskPattern: intPtr(6)})
	if err != nil {
		t.Fatal(err)
	}
	a, b := decoder.FormatInfoPositions(qr.Matrix.Width)
	flipSets := [][]int{{0}, {7, 8}, {2, 9, 14}, {12, 13, 14}}
	for _, copyCells := range [][15][2]int{a, b} {
		for _, flips := range flipSets {
			bits := qr.BitMatrix()
			for _, i := range flips {
				bits.Flip(copyCells[i][0], copyCells[i][1])
			}
			result := decodeCode(t, bits)
			if result.ECLevel != "Q" || result.Mask != 6 || result.Text != "FORMAT INFO" {
				t.Errorf("flips %v: level %s mask %d text %q", flips, result.ECLevel, result.Mask, result.Text)
			}
		}
	}
}

func TestMirroredRead(t *testing.T) {
	qr, err := Encode("MIRROR", decoder.ECLevelM, nil)
	if err != nil {
		t.Fatal(err)
	}
	result := decodeCode(t, qr.BitMatrix().Transposed())
	if result.Text != "MIRROR" || !result.Mirrored {
		t.Errorf("text %q mirrored %v", result.Text, result.Mirrored)
	}
}

func TestRender(t *testing.T) {
	qr, err := Encode("RENDER", decoder.ECLevelL, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := Render(qr, 3, 4)
	if want := (21 + 8) * 3; out.Width() != want || out.Height() != want {
		t.Fatalf("size %dx%d, want %d", out.Width(), out.Height(), want)
	}
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			want := qr.Matrix.Get(x, y) == 1
			for dy := 0; dy < 3; dy++ {
				for dx := 0; dx < 3; dx++ {
					if out.Get((4+x)*3+dx, (4+y)*3+dy) != want {
						t.Fatalf("module (%d,%d) rendered wrong", x, y)
					}
				}
			}
		}
	}
	if out.Get(0, 0) || out.Get(11, 11) {
		t.Error("quiet zone not light")
	}
}

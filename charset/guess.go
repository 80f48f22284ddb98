package charset

// GuessEncoding picks the character set of a byte segment that carries no
// ECI. A non-empty hint that names a known set wins. Otherwise valid UTF-8
// with multi-byte sequences is UTF-8, bytes that read as Shift_JIS words are
// Shift_JIS, and everything else is ISO-8859-1.
func GuessEncoding(data []byte, hint string) *ECI {
	if hint != "" {
		if eci := ForName(hint); eci != nil {
			return eci
		}
	}
	if len(data) > 2 && ((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE)) {
		return ECIUTF16BE
	}

	var g guesser
	g.utf8OK, g.sjisOK, g.latin1OK = true, true, true
	for _, b := range data {
		if !g.utf8OK && !g.sjisOK && !g.latin1OK {
			break
		}
		g.feed(b)
	}
	if g.utf8Left > 0 {
		g.utf8OK = false
	}
	if g.sjisLeft > 0 {
		g.sjisOK = false
	}

	utf8BOM := len(data) > 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF
	switch {
	case g.utf8OK && (utf8BOM || g.utf8MultiByte > 0):
		return ECIUTF8
	case g.sjisOK && (g.maxKatakanaRun >= 3 || g.maxDoubleByteRun >= 3):
		return ECISJIS
	case g.latin1OK && g.sjisOK:
		if (g.maxKatakanaRun == 2 && g.katakana == 2) || g.latin1High*10 >= len(data) {
			return ECISJIS
		}
		return ECIISO8859_1
	case g.latin1OK:
		return ECIISO8859_1
	case g.sjisOK:
		return ECISJIS
	default:
		return ECIUTF8
	}
}

type guesser struct {
	utf8OK, sjisOK, latin1OK bool

	utf8Left      int
	utf8MultiByte int

	sjisLeft         int
	katakana         int
	katakanaRun      int
	doubleByteRun    int
	maxKatakanaRun   int
	maxDoubleByteRun int

	latin1High int
}

func (g *guesser) feed(b byte) {
	v := int(b)

	if g.utf8OK {
		switch {
		case g.utf8Left > 0:
			if v&0xC0 != 0x80 {
				g.utf8OK = false
			} else {
				g.utf8Left--
			}
		case v&0x80 == 0:
		case v&0xE0 == 0xC0:
			g.utf8Left = 1
			g.utf8MultiByte++
		case v&0xF0 == 0xE0:
			g.utf8Left = 2
			g.utf8MultiByte++
		case v&0xF8 == 0xF0:
			g.utf8Left = 3
			g.utf8MultiByte++
		default:
			g.utf8OK = false
		}
	}

	if g.latin1OK {
		if v > 0x7F && v < 0xA0 {
			g.latin1OK = false
		} else if v > 0x9F && (v < 0xC0 || v == 0xD7 || v == 0xF7) {
			g.latin1High++
		}
	}

	if g.sjisOK {
		switch {
		case g.sjisLeft > 0:
			if v < 0x40 || v == 0x7F || v > 0xFC {
				g.sjisOK = false
			} else {
				g.sjisLeft--
			}
		case v == 0x80 || v == 0xA0 || v > 0xEF:
			g.sjisOK = false
		case v > 0xA0 && v < 0xE0:
			g.katakana++
			g.doubleByteRun = 0
			g.katakanaRun++
			g.maxKatakanaRun = max(g.maxKatakanaRun, g.katakanaRun)
		case v > 0x7F:
			g.sjisLeft++
			g.katakanaRun = 0
			g.doubleByteRun++
			g.maxDoubleByteRun = max(g.maxDoubleByteRun, g.doubleByteRun)
		default:
			g.katakanaRun = 0
			g.doubleByteRun = 0
		}
	}
}

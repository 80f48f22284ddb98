package qrcode

import codeglyphx "github.com/EvotecIT/CodeGlyphX-sub011"

func init() {
	codeglyphx.RegisterReader(codeglyphx.FormatQRCode, func() codeglyphx.Reader {
		return NewReader()
	})
	codeglyphx.RegisterWriter(codeglyphx.FormatQRCode, func() codeglyphx.Writer {
		return NewWriter()
	})
}

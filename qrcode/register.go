package qrcode

import "github.com/ericlevine/zxpipe"

func init() {
	zxpipe.RegisterReader(zxpipe.FormatQRCode, func(*zxpipe.Hints) zxpipe.Reader {
		return NewReader()
	})
}

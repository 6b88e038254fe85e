package oned

import "github.com/ericlevine/zxpipe"

func init() {
	zxpipe.RegisterReader(zxpipe.FormatCode128, func(*zxpipe.Hints) zxpipe.Reader {
		return NewCode128Reader()
	})
	zxpipe.RegisterReader(zxpipe.FormatCode39, func(hints *zxpipe.Hints) zxpipe.Reader {
		return &Code39Reader{
			CheckDigit: hints.AssumeCode39CheckDigit(),
			Extended:   hints.Code39FullASCII(),
		}
	})
	zxpipe.RegisterReader(zxpipe.FormatEAN13, func(*zxpipe.Hints) zxpipe.Reader {
		return NewEAN13Reader()
	})
	zxpipe.RegisterReader(zxpipe.FormatEAN8, func(*zxpipe.Hints) zxpipe.Reader {
		return NewEAN8Reader()
	})
	zxpipe.RegisterReader(zxpipe.FormatUPCA, func(*zxpipe.Hints) zxpipe.Reader {
		return NewUPCAReader()
	})
}

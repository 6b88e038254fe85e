package decoder

import (
	"fmt"

	"github.com/ericlevine/zxpipe"
)

func formatError(format string, args ...any) error {
	return fmt.Errorf("qrcode: "+format+": %w", append(args, zxpipe.ErrFormat)...)
}

package cmd

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	// imaging registers JPEG, PNG, GIF, BMP and TIFF; WebP needs its own decoder.
	_ "golang.org/x/image/webp"

	"github.com/ericlevine/zxpipe"
	"github.com/ericlevine/zxpipe/pipeline"
)

func newDecodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <image>...",
		Short: "Decode barcodes in image files",
		Long: `Decode reads each image, applies its EXIF orientation and prints the
symbols found. It exits non-zero when any image yields nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.decodeFiles(cmd.OutOrStdout(), args)
		},
	}

	f := cmd.Flags()
	f.Bool("try-harder", false, "spend more time looking for symbols")
	f.Bool("pure-barcode", false, "the image is a clean render of a single symbol")
	f.Bool("also-inverted", false, "also try light-on-dark symbols")
	f.Bool("assume-gs1", false, "report a leading Code 128 FNC1 as ]C1 and later ones as GS")
	f.Bool("code39-check-digit", false, "verify and strip the Code 39 mod 43 check character")
	f.Bool("code39-full-ascii", false, "expand Code 39 full ASCII escapes")
	f.String("character-set", "", "character set for byte segments without ECI, e.g. Shift_JIS")
	f.StringSlice("possible-formats", nil, "restrict decoding to these formats, e.g. QR_CODE,CODE_128")
	f.Bool("auto-rotate", true, "retry at 90, 180 and 270 degrees")
	f.Bool("multi", false, "report every symbol instead of the first")
	f.String("binarizer", "hybrid", "binarizer: hybrid or global")
	f.StringP("format", "f", "text", "output format: text, json or yaml")

	a.bind(f, "decode.try_harder", "try-harder")
	a.bind(f, "decode.pure_barcode", "pure-barcode")
	a.bind(f, "decode.also_inverted", "also-inverted")
	a.bind(f, "decode.assume_gs1", "assume-gs1")
	a.bind(f, "decode.code39_check_digit", "code39-check-digit")
	a.bind(f, "decode.code39_full_ascii", "code39-full-ascii")
	a.bind(f, "decode.character_set", "character-set")
	a.bind(f, "decode.possible_formats", "possible-formats")
	a.bind(f, "decode.auto_rotate", "auto-rotate")
	a.bind(f, "decode.multi", "multi")
	a.bind(f, "decode.binarizer", "binarizer")
	a.bind(f, "output.format", "format")
	return cmd
}

// decodeFiles runs one pipeline over every path so reader state is reused
// between images.
func (a *app) decodeFiles(w io.Writer, paths []string) error {
	opts, err := a.cfg.Decode.PipelineOptions()
	if err != nil {
		return err
	}
	p := pipeline.New(append(opts, pipeline.WithLogger(a.logger))...)

	files := make([]fileResult, 0, len(paths))
	missing := 0
	for _, path := range paths {
		fr := a.decodeFile(p, path)
		if !fr.Found {
			missing++
		}
		files = append(files, fr)
	}
	if err := render(w, a.cfg.Output.Format, files); err != nil {
		return err
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d images had no barcode", missing, len(paths))
	}
	return nil
}

func (a *app) decodeFile(p *pipeline.Pipeline, path string) fileResult {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		a.logger.Warn("cannot open image", "file", path, "error", err)
		return fileResult{File: path, Error: err.Error(), Results: []resultView{}}
	}
	results, _, err := decodeImage(p, img, a.cfg.Decode.Multi)
	if err != nil {
		a.logger.Warn("decode failed", "file", path, "error", err)
		return fileResult{File: path, Error: err.Error(), Results: []resultView{}}
	}
	a.logger.Debug("decoded", "file", path, "symbols", len(results))
	return newFileResult(path, results)
}

// decodeImage returns every symbol in multi mode, otherwise at most one.
func decodeImage(p *pipeline.Pipeline, img image.Image, multi bool) ([]*zxpipe.Result, bool, error) {
	if multi {
		return p.DecodeMultipleImage(img)
	}
	r, found, err := p.DecodeImage(img)
	if !found {
		return nil, false, err
	}
	return []*zxpipe.Result{r}, true, nil
}

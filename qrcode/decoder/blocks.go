package decoder

// dataBlock is one Reed-Solomon block: data codewords then check codewords.
type dataBlock struct {
	numData   int
	codewords []byte
}

// splitBlocks undoes the codeword interleaving of a symbol. Data codewords
// are dealt round-robin across blocks; longer blocks, which come last,
// take one extra data codeword after the shorter ones run out. Check
// codewords are dealt the same way.
func splitBlocks(raw []byte, v *Version, level ECLevel) []dataBlock {
	ecb := v.ECBlocks(level)
	blocks := make([]dataBlock, 0, ecb.numBlocks())
	for _, b := range ecb.Blocks {
		for range b.Count {
			blocks = append(blocks, dataBlock{
				numData:   b.DataCodewords,
				codewords: make([]byte, b.DataCodewords+ecb.ECCodewordsPerBlock),
			})
		}
	}

	off := 0
	longest := blocks[len(blocks)-1].numData
	for i := 0; i < longest; i++ {
		for k := range blocks {
			if i < blocks[k].numData {
				blocks[k].codewords[i] = raw[off]
				off++
			}
		}
	}
	for i := 0; i < ecb.ECCodewordsPerBlock; i++ {
		for k := range blocks {
			blocks[k].codewords[blocks[k].numData+i] = raw[off]
			off++
		}
	}
	return blocks
}

package decoder

import "fmt"

// DataBlock represents a block of data and error-correction codewords.
type DataBlock struct {
	NumDataCodewords int
	Codewords        []byte
}

// GetDataBlocks separates the interleaved codeword stream of a symbol into
// its blocks. Short blocks come first; long blocks carry one more data
// codeword, which sits after the round-robin data section.
func GetDataBlocks(rawCodewords []byte, version *Version, ecLevel ErrorCorrectionLevel) ([]DataBlock, error) {
	if len(rawCodewords) != version.TotalCodewords {
		return nil, fmt.Errorf("%w: %d codewords for version %d", errInvalidVersion, len(rawCodewords), version.Number)
	}
	ecBlocks := version.ECBlocksForLevel(ecLevel)
	ecc := ecBlocks.ECCodewordsPerBlock

	var result []DataBlock
	for _, group := range ecBlocks.Blocks {
		for i := 0; i < group.Count; i++ {
			result = append(result, DataBlock{
				NumDataCodewords: group.DataCodewords,
				Codewords:        make([]byte, group.DataCodewords+ecc),
			})
		}
	}
	shortData := result[0].NumDataCodewords

	offset := 0
	for i := 0; i < shortData; i++ {
		for j := range result {
			result[j].Codewords[i] = rawCodewords[offset]
			offset++
		}
	}
	for j := range result {
		if result[j].NumDataCodewords > shortData {
			result[j].Codewords[shortData] = rawCodewords[offset]
			offset++
		}
	}
	for i := 0; i < ecc; i++ {
		for j := range result {
			result[j].Codewords[result[j].NumDataCodewords+i] = rawCodewords[offset]
			offset++
		}
	}
	return result, nil
}

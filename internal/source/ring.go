package source

import "fmt"

// computeRingSize picks AF_PACKET ring dimensions for a memory budget.
// Frames are page multiples (or page fractions for small snap lengths) and
// each block holds 128 frames.
func computeRingSize(targetMB, snapLen, pageSize int) (frameSize, blockSize, numBlocks int, err error) {
	if targetMB <= 0 {
		return 0, 0, 0, fmt.Errorf("buffer size must be positive, got %d MB", targetMB)
	}
	if snapLen <= 0 {
		return 0, 0, 0, fmt.Errorf("snap length must be positive, got %d", snapLen)
	}
	if pageSize <= 0 {
		return 0, 0, 0, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	if snapLen < pageSize {
		frameSize = pageSize / (pageSize / snapLen)
	} else {
		frameSize = (snapLen/pageSize + 1) * pageSize
	}

	blockSize = frameSize * 128
	numBlocks = (targetMB * 1024 * 1024) / blockSize
	if numBlocks == 0 {
		return 0, 0, 0, fmt.Errorf("buffer of %d MB is too small for snap length %d", targetMB, snapLen)
	}
	return frameSize, blockSize, numBlocks, nil
}

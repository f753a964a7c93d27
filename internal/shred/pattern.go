package shred

import (
	"crypto/rand"
	"fmt"
)

// PassPatterns returns the overwrite pattern sequence for the given
// pass count. A single pass is one random pass. Larger counts repeat
// the zeros/ones/random cycle and top up the remainder: one extra pass
// is random, two extra are zeros then random. The sequence always ends
// with a random pass.
func PassPatterns(passes int) []Pattern {
	if passes <= 1 {
		return []Pattern{PatternRandom}
	}

	seq := make([]Pattern, 0, passes)
	for i := 0; i < passes/3; i++ {
		seq = append(seq, PatternZeros, PatternOnes, PatternRandom)
	}
	switch passes % 3 {
	case 1:
		seq = append(seq, PatternRandom)
	case 2:
		seq = append(seq, PatternZeros, PatternRandom)
	}
	return seq
}

// fillPattern fills buf according to the pattern. Random data comes
// from the crypto/rand source.
func fillPattern(buf []byte, p Pattern) error {
	switch p {
	case PatternZeros:
		for i := range buf {
			buf[i] = 0x00
		}
	case PatternOnes:
		for i := range buf {
			buf[i] = 0xFF
		}
	case PatternRandom:
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate random data: %w", err)
		}
	default:
		return fmt.Errorf("unknown pattern: %d", p)
	}
	return nil
}

// Package blend implements the per-pixel compositing functions used when
// drawing one layer over another, following the W3C Compositing and
// Blending Level 1 specification.
//
// The div255 family avoids integer division with shift approximations;
// mulDiv255 runs for every pixel of every blended layer, so the +1
// maximum error of the fast form is an accepted trade.
package blend

// div255 divides x by 255 using a fast shift approximation.
// The maximum error is +1, imperceptible in alpha blending.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// addDiv255 adds two bytes, clamping to 255.
func addDiv255(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}
